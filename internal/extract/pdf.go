package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kartikey004/resume-parser-ai/internal/shared/telemetry"
)

// pdfPlainText is a hook so tests can exercise the cascade's fallback
// routing without constructing real PDF payloads.
var pdfPlainText = extractPDFText

// extractPDF tries the direct text layer first and falls back to per-page
// OCR when the layer is missing, too short, or the parser errors out.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, string) {
	text, err := pdfPlainText(data)
	if err == nil && len(strings.TrimSpace(text)) >= e.cfg.MinTextLen {
		return text, methodPDFText
	}
	if err != nil {
		telemetry.Warn("extract.pdf_text_failed", map[string]any{"error": err.Error()})
	} else {
		telemetry.Warn("extract.pdf_text_short", map[string]any{"chars": len(strings.TrimSpace(text)), "threshold": e.cfg.MinTextLen})
	}

	ocrText, ocrErr := e.ocrPDF(ctx, data)
	if ocrErr != nil {
		telemetry.Error("extract.pdf_ocr_failed", map[string]any{"error": ocrErr.Error()})
		return "", methodPDFOCR
	}
	return ocrText, methodPDFOCR
}

// extractPDFText concatenates each page's text layer in page order.
// The pdf package panics on some malformed documents; a panic is folded
// into the error return so the caller can take the OCR path.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text layer: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		buf.WriteString(pageText)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// ocrPDF renders each page to PNG with pdftoppm, normalizes it, and OCRs
// the pages in order.
func (e *Extractor) ocrPDF(ctx context.Context, data []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "rp-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", err
	}

	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %s: %w", truncate(string(errb), 512), err)
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", err
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(pages)
	if len(pages) == 0 {
		return "", errors.New("pdftoppm produced no pages")
	}

	var buf strings.Builder
	for _, page := range pages {
		if err := normalizeImageFile(page); err != nil {
			telemetry.Warn("extract.normalize_failed", map[string]any{"page": filepath.Base(page), "error": err.Error()})
		}
		pageText, err := e.tesseract(ctx, page)
		if err != nil {
			return "", err
		}
		buf.WriteString(pageText)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}
