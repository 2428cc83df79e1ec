package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/markdave123-py/Docsense/internal/core"
	"github.com/markdave123-py/Docsense/internal/core/archive"
	"github.com/markdave123-py/Docsense/internal/core/formatter"
	"github.com/markdave123-py/Docsense/internal/core/textcache"
	"github.com/markdave123-py/Docsense/internal/core/truncate"
	"github.com/markdave123-py/Docsense/internal/models"
)

// AskErrorKind tags why a question could not be answered.
type AskErrorKind int

const (
	KindInternal AskErrorKind = iota
	KindUnsupported
	KindParseFailure
	KindProviderFailure
)

func (k AskErrorKind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindParseFailure:
		return "parse_failure"
	case KindProviderFailure:
		return "provider_failure"
	default:
		return "internal"
	}
}

// AskError is the only error type Ask returns.
type AskError struct {
	Kind AskErrorKind
	File string
	Err  error
}

func (e *AskError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AskError) Unwrap() error { return e.Err }

// Message is the text shown to the user.
func (e *AskError) Message() string {
	switch e.Kind {
	case KindUnsupported:
		return "Unsupported file type: " + e.File
	case KindParseFailure:
		return "Failed to extract text from " + e.File
	case KindProviderFailure:
		return "Failed to get a response from the language model. Please try again later."
	default:
		return "An unexpected error occurred."
	}
}

// Completer produces the raw answer and explanation for a document.
type Completer interface {
	Answer(ctx context.Context, documentText, question string) (*models.CompletionResult, error)
}

// Archiver receives a copy of every upload whose text was not yet cached.
type Archiver interface {
	Enqueue(job archive.Job) bool
}

type AskRequest struct {
	Document models.UploadedDocument
	Question string
	UserID   string
}

// AskService runs one question through extraction, caching, truncation,
// completion and formatting.
type AskService struct {
	extractor core.DocumentExtractor
	cache     core.TextCache
	completer Completer
	formatter *formatter.Formatter
	archiver  Archiver
	maxChars  int
}

// NewAskService wires the pipeline. archiver may be nil.
func NewAskService(
	extractor core.DocumentExtractor,
	cache core.TextCache,
	completer Completer,
	f *formatter.Formatter,
	archiver Archiver,
	maxChars int,
) *AskService {
	if maxChars <= 0 {
		maxChars = truncate.DefaultMaxChars
	}
	return &AskService{
		extractor: extractor,
		cache:     cache,
		completer: completer,
		formatter: f,
		archiver:  archiver,
		maxChars:  maxChars,
	}
}

// Ask answers req.Question about req.Document. Every failure is an *AskError.
func (s *AskService) Ask(ctx context.Context, req AskRequest) (resp *models.FormattedResponse, err error) {
	name := req.Document.Name
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ask pipeline panic", "file", name, "panic", r)
			resp, err = nil, &AskError{Kind: KindInternal, File: name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if !s.extractor.Supports(name) {
		return nil, &AskError{Kind: KindUnsupported, File: name}
	}

	text, err := s.documentText(req)
	if err != nil {
		return nil, &AskError{Kind: KindParseFailure, File: name, Err: err}
	}

	text = truncate.Truncate(text, s.maxChars)

	result, err := s.completer.Answer(ctx, text, req.Question)
	if err != nil {
		slog.Error("language model call failed", "file", name, "err", err)
		return nil, &AskError{Kind: KindProviderFailure, File: name, Err: err}
	}

	return &models.FormattedResponse{
		Answer:      s.formatter.Answer(result.AnswerText),
		Explanation: s.formatter.Explanation(result.ExplanationText),
	}, nil
}

// documentText returns the extracted text, loading it at most once per
// fingerprint. Identical bytes under another name with the same suffix share
// the entry. Archiving happens inside the load, so a document is archived once
// per cache lifetime for whichever user uploaded it first.
func (s *AskService) documentText(req AskRequest) (string, error) {
	doc := req.Document
	fp := textcache.Fingerprint(doc.Bytes)
	key := path.Ext(doc.Name) + ":" + fp

	text, hit, err := s.cache.GetOrLoad(key, func() (string, error) {
		slog.Info("extracting text from new file", "file", doc.Name, "fingerprint", fp)
		text, err := s.extractor.Extract(doc.Name, doc.Bytes)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", errors.New("document contains no text")
		}
		if s.archiver != nil {
			s.archiver.Enqueue(archive.Job{Fingerprint: fp, FileName: doc.Name, Data: doc.Bytes, UserID: req.UserID})
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	if hit {
		slog.Info("reusing cached file content", "file", doc.Name, "fingerprint", fp)
	}
	return text, nil
}
