package tools

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// SetPDFLicense registers a metered unipdf key. Without one, PDF extraction fails
// with the library's license error.
func SetPDFLicense(key string) error {
	if key == "" {
		return nil
	}
	return license.SetMeteredKey(key)
}

// pdfText concatenates the text of every page, skipping pages that fail.
func pdfText(data []byte) (string, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to count PDF pages: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			log.Printf("[WebParser] Warning: failed to load PDF page %d: %v", i, err)
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			log.Printf("[WebParser] Warning: failed to create extractor for page %d: %v", i, err)
			continue
		}
		txt, err := ex.ExtractText()
		if err != nil {
			log.Printf("[WebParser] Warning: failed to extract text from page %d: %v", i, err)
			continue
		}
		b.WriteString(txt)
		b.WriteString("\n")
	}
	if b.Len() == 0 && numPages > 0 {
		return "", fmt.Errorf("no text extracted from %d PDF pages", numPages)
	}
	return b.String(), nil
}
