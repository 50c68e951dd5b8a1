package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Runner abstracts external process execution so tests can stub out
// tesseract and pdftoppm.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// tesseract OCRs a single image file on disk.
func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %s: %w", truncate(string(errb), 512), err)
	}
	return string(out), nil
}

// ocrImage writes the payload to a temp file, normalizes it for OCR, and
// runs tesseract over the result.
func (e *Extractor) ocrImage(ctx context.Context, data []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "rp-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "image.png")
	normalized, err := normalizeImage(data)
	if err != nil {
		// Unrecognized encodings go to tesseract as-is.
		normalized = data
	}
	if err := os.WriteFile(path, normalized, 0o600); err != nil {
		return "", err
	}
	return e.tesseract(ctx, path)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
