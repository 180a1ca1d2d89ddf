package export

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

const (
	coreFont    = "Helvetica"
	unicodeFont = "unicode"

	// FontEnv names a TrueType font file to embed in PDF reports.
	FontEnv = "CYBERSHIELD_PDF_FONT"
)

// pdfText carries the font family in use and the encoder matching it.
type pdfText struct {
	family string
	encode func(string) string
}

// WritePDF renders r as a single A4 report at path.
func WritePDF(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("cybershield", false)
	pdf.AddPage()

	tx := initFont(pdf, fontCandidates())

	pdf.SetFont(tx.family, "B", 16)
	pdf.CellFormat(0, 9, tx.text(r.Title), "", 1, "L", false, 0, "")

	pdf.SetFont(tx.family, "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, "Generated at: "+time.Now().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	tx.sectionTitle(pdf, "Result")
	tx.kv(pdf, "Module", r.Module)
	tx.kv(pdf, "Result ID", r.ResultID)
	tx.kv(pdf, "Threat Level", r.ThreatLevel)
	tx.kv(pdf, "Scanned", r.Timestamp)
	pdf.Ln(2)

	if len(r.Fields) > 0 {
		tx.sectionTitle(pdf, "Details")
		for _, f := range r.Fields {
			tx.kv(pdf, f.Label, f.Value)
		}
		pdf.Ln(2)
	}

	if len(r.Notes) > 0 {
		tx.sectionTitle(pdf, "Findings")
		pdf.SetFont(tx.family, "", 10)
		pdf.SetTextColor(40, 40, 40)
		for _, n := range r.Notes {
			pdf.MultiCell(0, 5, "- "+tx.text(n), "", "L", false)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (tx pdfText) text(s string) string {
	return tx.encode(flatten(s))
}

func (tx pdfText) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(tx.family, "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, tx.text(title), "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdf.GetX(), pdf.GetY(), 196, pdf.GetY())
	pdf.Ln(2)
}

func (tx pdfText) kv(pdf *gofpdf.Fpdf, key, value string) {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	pdf.SetFont(tx.family, "B", 10)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(40, 5.2, tx.text(key)+":", "", 0, "L", false, 0, "")
	pdf.SetFont(tx.family, "", 10)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, 5.2, tx.text(value), "", "L", false)
}

// initFont embeds the first loadable TrueType font from candidates. When
// none loads, the core font is used and text is translated to cp1252, with
// runes outside that code page drawn as '.'.
func initFont(pdf *gofpdf.Fpdf, candidates []string) pdfText {
	for _, p := range candidates {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		pdf.AddUTF8Font(unicodeFont, "", p)
		if pdf.Err() {
			pdf.ClearError()
			continue
		}
		// Bold shares the regular file so SetFont(..., "B", ...) resolves.
		pdf.AddUTF8Font(unicodeFont, "B", p)
		if pdf.Err() {
			pdf.ClearError()
		}
		return pdfText{family: unicodeFont, encode: func(s string) string { return s }}
	}
	return pdfText{family: coreFont, encode: pdf.UnicodeTranslatorFromDescriptor("")}
}

func fontCandidates() []string {
	var out []string
	if v := strings.TrimSpace(os.Getenv(FontEnv)); v != "" {
		out = append(out, v)
	}
	switch runtime.GOOS {
	case "darwin":
		out = append(out,
			"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
			"/Library/Fonts/Arial Unicode.ttf",
		)
	case "windows":
		out = append(out,
			`C:\Windows\Fonts\arialuni.ttf`,
			`C:\Windows\Fonts\arial.ttf`,
		)
	default:
		out = append(out,
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
		)
	}
	return out
}

func flatten(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s)
	return strings.TrimSpace(s)
}
