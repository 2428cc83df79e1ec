package models

import (
	"time"
)

// Auth providers recorded on a user row.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Provider     string    `db:"provider" json:"provider"` // local | google
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document is the archive record of an uploaded file copied to object storage.
type Document struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	Fingerprint string    `db:"fingerprint" json:"fingerprint"`
	StorageURL  string    `db:"storage_url" json:"storage_url"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UploadedDocument is a file received with a question. It lives for one request.
type UploadedDocument struct {
	Name  string
	Bytes []byte
}

// CompletionResult holds the two raw replies from the text-generation provider.
type CompletionResult struct {
	AnswerText      string
	ExplanationText string
}

// FormattedResponse is the body returned by POST /ask on success.
type FormattedResponse struct {
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}
