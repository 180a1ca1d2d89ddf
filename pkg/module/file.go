package module

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
	"github.com/cybershieldio/sdk/pkg/scan"
)

// MaxFileSize is the largest local file ScanFile accepts.
const MaxFileSize = 100 << 20

// FileController is the file module controller.
type FileController struct {
	*Controller[scan.FileResult]
}

// NewFile creates the file controller.
func NewFile(svc Service, n *scan.Normalizer, opts *Options) *FileController {
	return &FileController{Controller: NewController(svc, FileBinding(n), opts)}
}

// ScanFile scans a local file by metadata. The file name and type are sent
// to the service; the contents are not. The stored result carries the local
// file size.
func (f *FileController) ScanFile(ctx context.Context, path string) (scan.FileResult, error) {
	const op = "module.ScanFile"
	info, err := os.Stat(path)
	if err != nil {
		return scan.FileResult{}, sdkerrors.E(sdkerrors.KindInvalidInput, op, "cannot read file", err)
	}
	if info.IsDir() {
		return scan.FileResult{}, sdkerrors.E(sdkerrors.KindInvalidInput, op, path+" is a directory")
	}
	if info.Size() > MaxFileSize {
		return scan.FileResult{}, sdkerrors.E(sdkerrors.KindInvalidInput, op, "file exceeds 100MB")
	}

	result, err := f.Scan(ctx, FileRequestFor(path))
	if err != nil {
		return result, err
	}

	result.FileSize = FormatSize(info.Size())
	f.setCurrent(result)
	return result, nil
}

// FileRequestFor builds the scan payload for a local path. The type is the
// MIME type registered for the extension, else the bare extension.
func FileRequestFor(path string) scan.FileRequest {
	name := filepath.Base(path)
	ext := filepath.Ext(name)

	typ := ""
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			typ, _, _ = strings.Cut(mt, ";")
		}
	}
	if typ == "" {
		if ext != "" {
			typ = strings.TrimPrefix(ext, ".")
		} else {
			typ = name
		}
	}
	return scan.FileRequest{FileName: name, Type: typ}
}

// FormatSize renders a byte count in megabytes with two decimals.
func FormatSize(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
}
