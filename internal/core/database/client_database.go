package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/markdave123-py/Docsense/internal/core"
	"github.com/markdave123-py/Docsense/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

// driverFor maps DATABASE_URL onto a database/sql driver name and DSN.
//
//	postgres://... | postgresql://...  -> pgx
//	sqlite://path/to/file.db           -> sqlite (file)
//	sqlite::memory:                    -> sqlite (in memory)
func driverFor(databaseURL string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "pgx", databaseURL, nil
	case databaseURL == "sqlite::memory:":
		return "sqlite", ":memory:?_time_format=sqlite", nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("DATABASE_URL %q has no file path", databaseURL)
		}
		return "sqlite", path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite", nil
	default:
		return "", "", fmt.Errorf("DATABASE_URL scheme not supported: %q", databaseURL)
	}
}

// NewDatabaseClient opens the database named by databaseURL and makes sure the
// schema exists.
func NewDatabaseClient(ctx context.Context, databaseURL string) (*DatabaseClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	driver, dsn, err := driverFor(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if driver == "sqlite" {
		// SQLite serialises writers; an in-memory database also lives only as
		// long as its single connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	const q = `
		INSERT INTO users (id, username, email, password_hash, provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Provider, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", core.ErrDuplicate, err)
	}
	return err
}

// isUniqueViolation reports whether err is a unique constraint failure from
// either backend.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

const userColumns = `id, username, email, password_hash, provider, created_at, updated_at`

func (c *DatabaseClient) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, nil
	}
	return c.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (c *DatabaseClient) getUser(ctx context.Context, q string, arg string) (*models.User, error) {
	var u models.User
	err := c.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Provider, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO documents
			(id, user_id, file_name, fingerprint, storage_url, content_type, size_bytes, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.FileName, doc.Fingerprint, doc.StorageURL, doc.ContentType, doc.SizeBytes, doc.CreatedAt)
	return err
}

func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const q = `
		SELECT id, user_id, file_name, fingerprint, storage_url, content_type, size_bytes, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.FileName, &d.Fingerprint, &d.StorageURL, &d.ContentType, &d.SizeBytes, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ core.DbClient = (*DatabaseClient)(nil)
