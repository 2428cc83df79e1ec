package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	middleware "github.com/markdave123-py/Docsense/internal/api/middlewares"
	"github.com/markdave123-py/Docsense/internal/models"
	"github.com/markdave123-py/Docsense/internal/services"
)

// Asker answers a question about an uploaded document.
type Asker interface {
	Ask(ctx context.Context, req services.AskRequest) (*models.FormattedResponse, error)
}

type AskHandler struct {
	asker    Asker
	maxBytes int64
}

func NewAskHandler(asker Asker, maxBytes int64) *AskHandler {
	return &AskHandler{asker: asker, maxBytes: maxBytes}
}

// Ask handles POST /ask: a multipart form with a "file" part and a
// "question" field.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "Request must be a multipart form with a file and a question.")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	question := strings.TrimSpace(r.FormValue("question"))
	file, header, err := r.FormFile("file")
	if err != nil || question == "" {
		writeError(w, http.StatusBadRequest, "Both a file and a question are required.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload", "file", header.Filename, "err", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	req := services.AskRequest{
		Document: models.UploadedDocument{Name: header.Filename, Bytes: data},
		Question: question,
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		req.UserID = claims.UserID
	}

	resp, err := h.asker.Ask(r.Context(), req)
	if err != nil {
		var askErr *services.AskError
		if !errors.As(err, &askErr) {
			askErr = &services.AskError{Kind: services.KindInternal, File: header.Filename, Err: err}
		}
		slog.Warn("ask failed", "file", header.Filename, "kind", askErr.Kind.String(), "err", askErr.Err)
		writeError(w, askStatus(askErr.Kind), askErr.Message())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func askStatus(kind services.AskErrorKind) int {
	switch kind {
	case services.KindUnsupported:
		return http.StatusUnsupportedMediaType
	case services.KindParseFailure:
		return http.StatusUnprocessableEntity
	case services.KindProviderFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
