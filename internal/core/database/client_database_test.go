package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Docsense/internal/core"
	"github.com/markdave123-py/Docsense/internal/models"
)

func newTestClient(t *testing.T) *DatabaseClient {
	t.Helper()
	c, err := NewDatabaseClient(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDriverFor(t *testing.T) {
	cases := []struct {
		url        string
		wantDriver string
		wantErr    bool
	}{
		{"postgres://u:p@localhost:5432/docsense", "pgx", false},
		{"postgresql://localhost/docsense", "pgx", false},
		{"sqlite::memory:", "sqlite", false},
		{"sqlite://data/docsense.db", "sqlite", false},
		{"sqlite://", "", true},
		{"mysql://localhost/docsense", "", true},
	}
	for _, tc := range cases {
		driver, _, err := driverFor(tc.url)
		if tc.wantErr {
			assert.Error(t, err, tc.url)
			continue
		}
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.wantDriver, driver, tc.url)
	}
}

func TestUsersRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	u := &models.User{
		ID:           uuid.NewString(),
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Provider:     models.ProviderLocal,
	}
	require.NoError(t, c.CreateUser(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	byName, err := c.GetUserByUsername(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)
	assert.WithinDuration(t, u.CreatedAt, byName.CreatedAt, time.Second)

	byEmail, err := c.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "ada", byEmail.Username)

	missing, err := c.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	none, err := c.GetUserByEmail(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "ada", Provider: models.ProviderLocal}))
	err := c.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "ada", Provider: models.ProviderLocal})
	assert.ErrorIs(t, err, core.ErrDuplicate)

	require.NoError(t, c.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "ada.w", Email: "ada@example.com", Provider: models.ProviderLocal}))
	err = c.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "ada.l", Email: "ada@example.com", Provider: models.ProviderLocal})
	assert.ErrorIs(t, err, core.ErrDuplicate)

	// Users without an email do not collide on the email index.
	require.NoError(t, c.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "grace", Provider: models.ProviderLocal}))
}

func TestDocuments(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	older := &models.Document{
		ID: uuid.NewString(), UserID: "u1", FileName: "a.txt", Fingerprint: "fp-a",
		StorageURL: "https://bucket/a", ContentType: "text/plain", SizeBytes: 10,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	newer := &models.Document{
		ID: uuid.NewString(), UserID: "u1", FileName: "b.pdf", Fingerprint: "fp-b",
		StorageURL: "https://bucket/b", ContentType: "application/pdf", SizeBytes: 20,
	}
	other := &models.Document{ID: uuid.NewString(), UserID: "u2", FileName: "c.txt", Fingerprint: "fp-c", StorageURL: "x"}

	for _, d := range []*models.Document{older, newer, other} {
		require.NoError(t, c.CreateDocument(ctx, d))
	}

	docs, err := c.ListDocumentsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b.pdf", docs[0].FileName)
	assert.Equal(t, "a.txt", docs[1].FileName)
	assert.Equal(t, int64(20), docs[0].SizeBytes)

	empty, err := c.ListDocumentsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsense.db")
	ctx := context.Background()

	first, err := NewDatabaseClient(ctx, "sqlite://"+path)
	require.NoError(t, err)
	require.NoError(t, first.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "ada", Provider: models.ProviderLocal}))
	require.NoError(t, first.Close())

	second, err := NewDatabaseClient(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer second.Close()

	u, err := second.GetUserByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.NotNil(t, u)
	require.NoError(t, runBootstrap(ctx, second.db))
}
