package objectclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Docsense/internal/config"
)

type recordedCall struct {
	method      string
	path        string
	contentType string
	body        string
}

func fakeS3(t *testing.T, status int) (*httptest.Server, func() []recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(body)})
		mu.Unlock()
		if status >= 300 {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
			return
		}
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func newTestS3(t *testing.T, endpoint string) *S3Client {
	t.Helper()
	c, err := NewS3Client(context.Background(), &config.Config{
		AwsAccessKey: "AKIDEXAMPLE",
		AwsSecretKey: "secret",
		AwsRegion:    "us-east-2",
		AwsEndpoint:  endpoint,
	})
	require.NoError(t, err)
	return c
}

func TestUploadFile(t *testing.T) {
	srv, calls := fakeS3(t, http.StatusOK)
	c := newTestS3(t, srv.URL+"/")

	url, err := c.UploadFile(context.Background(), "docs", "uploads/fp/notes.txt", strings.NewReader("Paris"), "text/plain")

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/docs/uploads/fp/notes.txt", url)
	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/docs/uploads/fp/notes.txt", got[0].path)
	assert.Equal(t, "text/plain", got[0].contentType)
	assert.Contains(t, got[0].body, "Paris")
}

func TestUploadFileError(t *testing.T) {
	srv, _ := fakeS3(t, http.StatusForbidden)
	c := newTestS3(t, srv.URL)

	_, err := c.UploadFile(context.Background(), "docs", "k", strings.NewReader("x"), "text/plain")

	assert.ErrorContains(t, err, "s3 upload failed")
}

func TestDeleteFile(t *testing.T) {
	srv, calls := fakeS3(t, http.StatusNoContent)
	c := newTestS3(t, srv.URL)

	require.NoError(t, c.DeleteFile(context.Background(), "docs", "uploads/fp/a.pdf"))

	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodDelete, got[0].method)
	assert.Equal(t, "/docs/uploads/fp/a.pdf", got[0].path)
}

func TestNewS3ClientRequiresCredentials(t *testing.T) {
	_, err := NewS3Client(context.Background(), &config.Config{AwsRegion: "us-east-2"})
	assert.Error(t, err)
}

func TestObjectURLOnAWS(t *testing.T) {
	c := &S3Client{region: "eu-west-1"}
	assert.Equal(t, "https://docs.s3.eu-west-1.amazonaws.com/uploads/x/a.txt", c.objectURL("docs", "uploads/x/a.txt"))
}
