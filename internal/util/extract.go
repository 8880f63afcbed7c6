package util

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Extractor turns uploaded or on-disk documents into plain text.
type Extractor struct {
	log *zap.Logger
	// OCR enables the tesseract pass for PDFs without a text layer.
	OCR bool
}

func NewExtractor(log *zap.Logger) *Extractor {
	return &Extractor{log: logger.OrNop(log), OCR: true}
}

// ExtractFile reads text from a .pdf, .txt or .md file. An empty result is an
// *apperror.ExtractionError.
func (e *Extractor) ExtractFile(path string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = e.extractPDF(path)
	case ".txt", ".md", ".markdown":
		var raw []byte
		raw, err = os.ReadFile(path)
		text = string(raw)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return "", &apperror.ExtractionError{Source: filepath.Base(path), Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &apperror.ExtractionError{Source: filepath.Base(path)}
	}
	e.log.Debug("text extracted", zap.String("file", filepath.Base(path)), zap.Int("length", len(text)))
	return text, nil
}

func (e *Extractor) extractPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var fullText bytes.Buffer
	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			e.log.Warn("pdf page text failed", zap.Int("page", n+1), zap.Error(err))
			continue
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result != "" || !e.OCR {
		return result, nil
	}

	e.log.Info("pdf has no text layer, falling back to OCR", zap.String("file", filepath.Base(path)))
	return e.extractPDFOCR(doc)
}

// extractPDFOCR renders every page and runs tesseract over it.
func (e *Extractor) extractPDFOCR(doc *fitz.Document) (string, error) {
	if err := checkTesseract(); err != nil {
		return "", fmt.Errorf("tesseract check failed: %w", err)
	}

	var fullText bytes.Buffer
	var lastErr error

	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to extract image: %w", n+1, err)
			e.log.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}

		pageText, err := ocrImage(img)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			e.log.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}

		e.log.Debug("ocr page done", zap.Int("page", n+1), zap.Int("length", len(pageText)))
		if len(pageText) > 0 {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result == "" && lastErr != nil {
		return "", fmt.Errorf("failed to extract text via OCR: %w", lastErr)
	}
	return result, nil
}

func ocrImage(img image.Image) (string, error) {
	tmpFile, err := os.CreateTemp("", "page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	err = png.Encode(tmpFile, img)
	tmpFile.Close()
	if err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	out, err := exec.Command("tesseract", tmpPath, "stdout", "-l", "eng").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tesseract error: %w, output: %s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// checkTesseract verifies tesseract is installed and runnable.
func checkTesseract() error {
	out, err := exec.Command("tesseract", "-v").CombinedOutput()
	if err != nil {
		return fmt.Errorf("tesseract not found or not executable: %w\nOutput: %s", err, string(out))
	}
	return nil
}
