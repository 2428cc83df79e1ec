package extraction

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// extractPDF concatenates the plain text of every page in page order, one
// page per line group. Pages that fail to decode are skipped; a document with
// no readable page is an error.
func extractPDF(data []byte, pageMarkers bool) (string, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", errors.New("missing %PDF- header")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return "", errors.New("pdf has no pages")
	}

	var (
		pages    []string
		readable int
	)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		readable++
		text = strings.TrimSpace(text)
		if pageMarkers {
			text = fmt.Sprintf("[Page %d]\n%s", i, text)
		}
		pages = append(pages, text)
	}

	if readable == 0 {
		return "", errors.New("no readable pages")
	}
	return strings.Join(pages, "\n"), nil
}
