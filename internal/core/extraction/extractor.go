// Package extraction turns uploaded .txt, .docx and .pdf files into plain text.
package extraction

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/markdave123-py/Docsense/internal/core"
)

var (
	// ErrUnsupported is returned for file names without a recognised suffix.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrExtraction wraps every parse failure of a supported file.
	ErrExtraction = errors.New("extraction failed")
)

// Format identifies a supported document type by its suffix.
type Format string

const (
	FormatTXT  Format = ".txt"
	FormatDOCX Format = ".docx"
	FormatPDF  Format = ".pdf"
)

var _ core.DocumentExtractor = (*Extractor)(nil)

// Extractor dispatches on the exact, case-sensitive file-name suffix.
type Extractor struct {
	pageMarkers bool
}

// NewExtractor builds an extractor. With pageMarkers set, every PDF page is
// prefixed by a "[Page N]" line.
func NewExtractor(pageMarkers bool) *Extractor {
	return &Extractor{pageMarkers: pageMarkers}
}

// FormatOf returns the format for name, or false when the suffix is not supported.
func FormatOf(name string) (Format, bool) {
	for _, f := range []Format{FormatTXT, FormatDOCX, FormatPDF} {
		if strings.HasSuffix(name, string(f)) {
			return f, true
		}
	}
	return "", false
}

func (e *Extractor) Supports(name string) bool {
	_, ok := FormatOf(name)
	return ok
}

// Extract returns the text of data. Unknown suffixes yield ErrUnsupported and
// parse failures yield an error wrapping ErrExtraction; malformed input never panics.
func (e *Extractor) Extract(name string, data []byte) (text string, err error) {
	format, ok := FormatOf(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("extractor panicked", "file", name, "format", format, "panic", r)
			text, err = "", fmt.Errorf("%w: %s: %v", ErrExtraction, name, r)
		}
	}()

	switch format {
	case FormatTXT:
		text, err = extractPlainText(data)
	case FormatDOCX:
		text, err = extractDocx(data)
	case FormatPDF:
		text, err = extractPDF(data, e.pageMarkers)
	}
	if err != nil {
		slog.Warn("text extraction failed", "file", name, "format", format, "error", err)
		return "", fmt.Errorf("%w: %s: %v", ErrExtraction, name, err)
	}
	return text, nil
}
