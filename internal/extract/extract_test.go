package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRunner stands in for tesseract and pdftoppm. It answers tesseract
// calls from a canned map keyed by image base name, and simulates pdftoppm
// by writing the requested page files to disk.
type fakeRunner struct {
	pages        []string
	ocrByPage    map[string]string
	pdftoppmErr  error
	tesseractErr error
	calls        []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	_ = ctx
	f.calls = append(f.calls, name)
	if strings.Contains(name, "pdftoppm") {
		if f.pdftoppmErr != nil {
			return nil, []byte("render error"), f.pdftoppmErr
		}
		prefix := args[len(args)-1]
		for _, page := range f.pages {
			if err := os.WriteFile(prefix+"-"+page+".png", []byte("not a real png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}
	if f.tesseractErr != nil {
		return nil, []byte("ocr error"), f.tesseractErr
	}
	base := filepath.Base(args[0])
	text, ok := f.ocrByPage[base]
	if !ok {
		text = "ocr text"
	}
	return []byte(text), nil, nil
}

func newTestExtractor(runner Runner, minTextLen int) *Extractor {
	e := New(Config{MinTextLen: minTextLen})
	e.runner = runner
	return e
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractPlainTextPassthrough(t *testing.T) {
	e := newTestExtractor(&fakeRunner{}, 100)
	got := e.Extract(context.Background(), []byte("just words"), "text/plain; charset=utf-8", "resume.txt")
	if got != "just words" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestExtractEmptyPayload(t *testing.T) {
	e := newTestExtractor(&fakeRunner{}, 100)
	if got := e.Extract(context.Background(), nil, "text/plain", "resume.txt"); got != "" {
		t.Fatalf("expected empty result for empty payload, got %q", got)
	}
}

func TestExtractDocxParagraphOrder(t *testing.T) {
	data := buildDocx(t, "John Doe", "Software Engineer")
	e := newTestExtractor(&fakeRunner{}, 100)

	got := e.Extract(context.Background(), data, mimeDOCX, "resume.docx")
	want := "John Doe\nSoftware Engineer"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractDocxFromZipMime(t *testing.T) {
	data := buildDocx(t, "hidden behind zip mime")
	e := newTestExtractor(&fakeRunner{}, 100)

	got := e.Extract(context.Background(), data, "application/zip", "resume.docx")
	if got != "hidden behind zip mime" {
		t.Fatalf("expected docx extraction via zip sniff, got %q", got)
	}
}

func TestExtractPlainZipNotTreatedAsDocx(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if got := normalizeMimeType("application/zip", "notes.zip", buf.Bytes()); got != "application/zip" {
		t.Fatalf("expected zip mime preserved, got %q", got)
	}
}

func TestExtractImageOCR(t *testing.T) {
	runner := &fakeRunner{ocrByPage: map[string]string{"image.png": "scanned resume text"}}
	e := newTestExtractor(runner, 100)

	got := e.Extract(context.Background(), []byte("fake image bytes"), "image/png", "resume.png")
	if got != "scanned resume text" {
		t.Fatalf("expected OCR output, got %q", got)
	}
}

func TestExtractImageOCRFailure(t *testing.T) {
	runner := &fakeRunner{tesseractErr: errors.New("boom")}
	e := newTestExtractor(runner, 100)

	if got := e.Extract(context.Background(), []byte("fake image bytes"), "image/jpeg", "resume.jpg"); got != "" {
		t.Fatalf("expected empty result on OCR failure, got %q", got)
	}
}

func TestExtractPDFUsesTextLayerWhenLongEnough(t *testing.T) {
	orig := pdfPlainText
	defer func() { pdfPlainText = orig }()
	pdfPlainText = func(data []byte) (string, error) {
		return strings.Repeat("resume text ", 20), nil
	}

	runner := &fakeRunner{}
	e := newTestExtractor(runner, 100)
	got := e.Extract(context.Background(), []byte("%PDF-1.4"), "application/pdf", "resume.pdf")
	if !strings.HasPrefix(got, "resume text") {
		t.Fatalf("expected text-layer result, got %q", got)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("expected no external tools for text-layer PDF, ran %v", runner.calls)
	}
}

func TestExtractPDFFallsBackToOCRWhenTextShort(t *testing.T) {
	orig := pdfPlainText
	defer func() { pdfPlainText = orig }()
	pdfPlainText = func(data []byte) (string, error) {
		return "too short", nil
	}

	runner := &fakeRunner{
		pages: []string{"1", "2"},
		ocrByPage: map[string]string{
			"page-1.png": "first page",
			"page-2.png": "second page",
		},
	}
	e := newTestExtractor(runner, 100)

	got := e.Extract(context.Background(), []byte("%PDF-1.4"), "application/pdf", "scan.pdf")
	want := "first page\nsecond page\n"
	if got != want {
		t.Fatalf("expected pages OCRed in order, got %q", got)
	}
}

func TestExtractPDFFallsBackToOCRWhenTextLayerErrors(t *testing.T) {
	orig := pdfPlainText
	defer func() { pdfPlainText = orig }()
	pdfPlainText = func(data []byte) (string, error) {
		return "", errors.New("malformed xref")
	}

	runner := &fakeRunner{
		pages:     []string{"1"},
		ocrByPage: map[string]string{"page-1.png": "recovered via ocr"},
	}
	e := newTestExtractor(runner, 100)

	got := e.Extract(context.Background(), []byte("%PDF-1.4"), "application/pdf", "broken.pdf")
	if got != "recovered via ocr\n" {
		t.Fatalf("expected OCR fallback result, got %q", got)
	}
}

func TestExtractPDFOCRFailureReturnsEmpty(t *testing.T) {
	orig := pdfPlainText
	defer func() { pdfPlainText = orig }()
	pdfPlainText = func(data []byte) (string, error) {
		return "", errors.New("no text layer")
	}

	runner := &fakeRunner{pdftoppmErr: errors.New("render failed")}
	e := newTestExtractor(runner, 100)

	if got := e.Extract(context.Background(), []byte("%PDF-1.4"), "application/pdf", "scan.pdf"); got != "" {
		t.Fatalf("expected empty result when both strategies fail, got %q", got)
	}
}

func TestExtractMalformedPDFNoPanic(t *testing.T) {
	runner := &fakeRunner{pdftoppmErr: errors.New("render failed")}
	e := newTestExtractor(runner, 100)

	// Real parser path against garbage bytes: must not panic.
	if got := e.Extract(context.Background(), []byte("%PDF-1.4 garbage"), "application/pdf", "bad.pdf"); got != "" {
		t.Fatalf("expected empty result for malformed PDF, got %q", got)
	}
}
