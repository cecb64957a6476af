package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ledongthuc/pdf"
)

// PDFConverterService rasterizes the first page of a PDF to a PNG sized for
// vision analysis. Rasterization shells out to poppler's pdftoppm; the bytes
// are validated as a PDF first so malformed uploads fail before the
// subprocess runs.
type PDFConverterService interface {
	ConvertFirstPage(ctx context.Context, pdfBytes []byte) ([]byte, error)
}

type pdfConverterService struct {
	pdftoppmPath string
}

func NewPDFConverterService(pdftoppmPath string) PDFConverterService {
	return &pdfConverterService{pdftoppmPath: pdftoppmPath}
}

// ConvertFirstPage implements PDFConverterService. The temp dir is removed on
// every exit path.
func (p *pdfConverterService) ConvertFirstPage(ctx context.Context, pdfBytes []byte) ([]byte, error) {
	log.Println("📄 Converting PDF to image...")

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return nil, &ConversionError{Err: fmt.Errorf("not a readable PDF: %w", err)}
	}
	if reader.NumPage() < 1 {
		return nil, &ConversionError{Err: fmt.Errorf("PDF has no pages")}
	}

	tempDir, err := os.MkdirTemp("", "cert-verify-")
	if err != nil {
		return nil, &ConversionError{Err: fmt.Errorf("failed to create temp dir: %w", err)}
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			log.Printf("⚠️ Cleanup error: %v\n", err)
		}
	}()

	pdfPath := filepath.Join(tempDir, "certificate.pdf")
	outputPrefix := filepath.Join(tempDir, "page")

	if err := os.WriteFile(pdfPath, pdfBytes, 0644); err != nil {
		return nil, &ConversionError{Err: fmt.Errorf("failed to write temp PDF: %w", err)}
	}

	// First page only, long edge scaled to 1024px.
	cmd := exec.CommandContext(ctx, p.pdftoppmPath,
		"-png", "-f", "1", "-l", "1", "-scale-to", "1024", pdfPath, outputPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &ConversionError{Err: fmt.Errorf("pdftoppm failed: %w (%s)", err, bytes.TrimSpace(out))}
	}

	imageBytes, err := os.ReadFile(outputPrefix + "-1.png")
	if err != nil {
		return nil, &ConversionError{Err: fmt.Errorf("failed to read converted image: %w", err)}
	}

	log.Println("✅ PDF converted to image")
	return imageBytes, nil
}
