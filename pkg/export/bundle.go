package export

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Algorithm represents a bundle compression algorithm.
type Algorithm string

const (
	// AlgorithmZSTD is Zstandard, the default.
	AlgorithmZSTD Algorithm = "zstd"

	// AlgorithmGzip is gzip, for tools without zstd support.
	AlgorithmGzip Algorithm = "gzip"
)

// BundleBaseName is the history bundle file name without extension.
const BundleBaseName = "cybershield_history.json"

// ParseAlgorithm maps a name to an Algorithm; empty means zstd.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zstd", "zst":
		return AlgorithmZSTD, nil
	case "gzip", "gz":
		return AlgorithmGzip, nil
	default:
		return "", fmt.Errorf("unsupported compression algorithm: %s", s)
	}
}

// Extension returns the file extension including the dot.
func (a Algorithm) Extension() string {
	if a == AlgorithmGzip {
		return ".gz"
	}
	return ".zst"
}

// BundleFileName returns the history bundle file name for a.
func BundleFileName(a Algorithm) string {
	return BundleBaseName + a.Extension()
}

// AlgorithmForPath infers the algorithm from a bundle file name.
func AlgorithmForPath(path string) (Algorithm, error) {
	switch {
	case strings.HasSuffix(path, ".zst"):
		return AlgorithmZSTD, nil
	case strings.HasSuffix(path, ".gz"):
		return AlgorithmGzip, nil
	default:
		return "", fmt.Errorf("unknown bundle extension: %s", path)
	}
}

// HistoryBundle is the content of a history bundle: every module's history
// list keyed by module name.
type HistoryBundle struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Modules     map[string][]any `json:"modules"`
}

// BundleStats describes a written bundle.
type BundleStats struct {
	Path           string    `json:"path"`
	Algorithm      Algorithm `json:"algorithm"`
	Entries        int       `json:"entries"`
	OriginalSize   int       `json:"original_size"`
	CompressedSize int       `json:"compressed_size"`
	Ratio          float64   `json:"ratio"` // compressed/original
}

// Compressor compresses bundle payloads.
type Compressor struct {
	algorithm Algorithm

	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
}

// NewCompressor creates a compressor for algorithm.
func NewCompressor(algorithm Algorithm) *Compressor {
	c := &Compressor{algorithm: algorithm}
	if algorithm == AlgorithmZSTD {
		c.zstdEncoderPool = sync.Pool{
			New: func() any {
				enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
				return enc
			},
		}
		c.zstdDecoderPool = sync.Pool{
			New: func() any {
				dec, _ := zstd.NewReader(nil)
				return dec
			},
		}
	}
	return c
}

// Algorithm returns the compression algorithm.
func (c *Compressor) Algorithm() Algorithm {
	return c.algorithm
}

// Compress compresses data.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	switch c.algorithm {
	case AlgorithmZSTD:
		enc := c.zstdEncoderPool.Get().(*zstd.Encoder)
		defer c.zstdEncoderPool.Put(enc)

		var buf bytes.Buffer
		enc.Reset(&buf)
		if _, err := enc.Write(data); err != nil {
			return nil, fmt.Errorf("zstd write error: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("zstd close error: %w", err)
		}
		return buf.Bytes(), nil
	case AlgorithmGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip write error: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip close error: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", c.algorithm)
	}
}

// Decompress reverses Compress.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	switch c.algorithm {
	case AlgorithmZSTD:
		dec := c.zstdDecoderPool.Get().(*zstd.Decoder)
		defer c.zstdDecoderPool.Put(dec)

		if err := dec.Reset(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("zstd reset error: %w", err)
		}
		out, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress error: %w", err)
		}
		return out, nil
	case AlgorithmGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader error: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gzip decompress error: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", c.algorithm)
	}
}

// WriteBundle encodes b as JSON, compresses it and writes it to path.
func WriteBundle(path string, algorithm Algorithm, b *HistoryBundle) (*BundleStats, error) {
	if b.GeneratedAt.IsZero() {
		b.GeneratedAt = time.Now().UTC()
	}
	if b.Modules == nil {
		b.Modules = map[string][]any{}
	}

	data, err := MarshalPretty(b)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	compressed, err := NewCompressor(algorithm).Compress(data)
	if err != nil {
		return nil, err
	}
	if err := writeFile(path, compressed); err != nil {
		return nil, err
	}

	entries := 0
	for _, list := range b.Modules {
		entries += len(list)
	}
	stats := &BundleStats{
		Path:           path,
		Algorithm:      algorithm,
		Entries:        entries,
		OriginalSize:   len(data),
		CompressedSize: len(compressed),
	}
	if len(data) > 0 {
		stats.Ratio = float64(len(compressed)) / float64(len(data))
	}
	return stats, nil
}

// ReadBundle reads a bundle written by WriteBundle and returns its JSON.
func ReadBundle(path string) ([]byte, error) {
	algorithm, err := AlgorithmForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	return NewCompressor(algorithm).Decompress(data)
}
