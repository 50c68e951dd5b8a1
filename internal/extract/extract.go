package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kartikey004/resume-parser-ai/internal/shared/telemetry"
)

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// Extraction methods, logged per run and observable in tests.
const (
	methodNone     = "none"
	methodText     = "text"
	methodDOCX     = "docx"
	methodImageOCR = "image-ocr"
	methodPDFText  = "pdf-text"
	methodPDFOCR   = "pdf-ocr"
)

// Config controls the extraction cascade.
type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	Lang string // tesseract language, default "eng"
	DPI  int    // rasterization DPI for scanned PDFs, default 300

	// MinTextLen is the minimum trimmed length of a PDF's direct text-layer
	// extraction before falling back to OCR. Below it the document is
	// treated as a scanned PDF. Tunable heuristic, default 100.
	MinTextLen int
}

// Extractor converts uploaded payloads into raw text.
type Extractor struct {
	cfg    Config
	runner Runner
}

// New constructs an Extractor with defaults applied.
func New(cfg Config) *Extractor {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = 100
	}
	return &Extractor{cfg: cfg, runner: execRunner{}}
}

// Extract pulls text from an uploaded payload. It never returns an error:
// the empty string is the single failure signal consumed by the pipeline
// orchestrator. Each strategy is attempted exactly once.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType, fileName string) string {
	text, method := e.extract(ctx, data, mimeType, fileName)
	telemetry.Info("extract.done", map[string]any{
		"file_name": fileName,
		"mime_type": mimeType,
		"method":    method,
		"chars":     len(text),
	})
	return text
}

func (e *Extractor) extract(ctx context.Context, data []byte, mimeType, fileName string) (string, string) {
	if ctx.Err() != nil || len(data) == 0 {
		return "", methodNone
	}

	normalized := normalizeMimeType(mimeType, fileName, data)
	switch {
	case normalized == mimePDF:
		return e.extractPDF(ctx, data)
	case normalized == mimeDOCX || normalized == mimeDOC:
		text, err := extractDOCX(data)
		if err != nil {
			telemetry.Warn("extract.docx_failed", map[string]any{"file_name": fileName, "error": err.Error()})
			return "", methodDOCX
		}
		return text, methodDOCX
	case strings.HasPrefix(normalized, "image/"):
		text, err := e.ocrImage(ctx, data)
		if err != nil {
			telemetry.Warn("extract.image_ocr_failed", map[string]any{"file_name": fileName, "error": err.Error()})
			return "", methodImageOCR
		}
		return text, methodImageOCR
	case normalized == mimeText:
		return string(data), methodText
	default:
		// Best-effort plain-text read for unrecognized types.
		telemetry.Warn("extract.unsupported_mime", map[string]any{"file_name": fileName, "mime_type": normalized})
		return string(data), methodText
	}
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean != "application/zip" {
		return clean
	}

	if hasDocxPayload(data) {
		return mimeDOCX
	}

	if strings.ToLower(filepath.Ext(fileName)) == ".docx" {
		return mimeDOCX
	}
	return clean
}

func hasDocxPayload(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := newZipReader(data)
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
