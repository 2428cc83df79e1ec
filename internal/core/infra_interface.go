package core

import (
	"context"
	"errors"
	"io"

	"github.com/markdave123-py/Docsense/internal/models"
)

// ErrDuplicate is wrapped by DbClient writes that hit a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/SQLite so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
}
