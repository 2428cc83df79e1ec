package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"code.sajari.com/docconv"
	"github.com/google/uuid"

	"github.com/markdave123-py/Docsense/internal/core"
	"github.com/markdave123-py/Docsense/internal/models"
)

// QueueSize bounds the number of uploads waiting for a worker.
const QueueSize = 64

// Job is one uploaded file to copy into object storage.
type Job struct {
	Fingerprint string
	FileName    string
	Data        []byte
	UserID      string
}

// Archiver copies uploads to object storage in the background and records a
// documents row for each when a database is configured.
//
// db:      optional; nil skips the documents row.
// obj:     object storage the bytes are written to.
// bucket:  destination bucket.
// jobs:    bounded in-memory queue drained by Start's workers.
type Archiver struct {
	db     core.DbClient
	obj    core.ObjectClient
	bucket string
	jobs   chan Job
	wg     sync.WaitGroup
}

func NewArchiver(db core.DbClient, obj core.ObjectClient, bucket string) *Archiver {
	return &Archiver{
		db: db, obj: obj, bucket: bucket,
		jobs: make(chan Job, QueueSize),
	}
}

// Start launches numWorkers goroutines that drain the queue until ctx is done.
func (a *Archiver) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for w := 1; w <= numWorkers; w++ {
		a.wg.Add(1)
		go func(w int) {
			defer a.wg.Done()
			for {
				select {
				case <-ctx.Done():
					slog.Debug("archive worker stopping", "worker", w)
					return
				case job := <-a.jobs:
					if err := a.processOne(ctx, job); err != nil {
						slog.Error("archive upload failed", "worker", w, "file", job.FileName, "fingerprint", job.Fingerprint, "err", err)
					}
				}
			}
		}(w)
	}
}

// Wait blocks until every worker has returned.
func (a *Archiver) Wait() {
	a.wg.Wait()
}

// Enqueue schedules job without blocking. It reports false, and drops the job,
// when the queue is full.
func (a *Archiver) Enqueue(job Job) bool {
	select {
	case a.jobs <- job:
		return true
	default:
		slog.Warn("archive queue full, dropping upload", "file", job.FileName, "fingerprint", job.Fingerprint)
		return false
	}
}

// ObjectKey is where a file lands in the bucket.
func ObjectKey(fingerprint, fileName string) string {
	return fmt.Sprintf("uploads/%s/%s", fingerprint, path.Base("/"+fileName))
}

func (a *Archiver) processOne(ctx context.Context, job Job) error {
	procCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Minute)
	defer cancel()

	key := ObjectKey(job.Fingerprint, job.FileName)
	contentType := docconv.MimeTypeByExtension(job.FileName)

	url, err := a.obj.UploadFile(procCtx, a.bucket, key, bytes.NewReader(job.Data), contentType)
	if err != nil {
		return err
	}
	slog.Info("upload archived", "key", key, "bytes", len(job.Data))

	if a.db == nil {
		return nil
	}
	doc := &models.Document{
		ID:          uuid.NewString(),
		UserID:      job.UserID,
		FileName:    job.FileName,
		Fingerprint: job.Fingerprint,
		StorageURL:  url,
		ContentType: contentType,
		SizeBytes:   int64(len(job.Data)),
	}
	if err := a.db.CreateDocument(procCtx, doc); err != nil {
		// Keep the bucket in step with the table.
		if delErr := a.obj.DeleteFile(procCtx, a.bucket, key); delErr != nil {
			slog.Warn("archive rollback failed", "key", key, "err", delErr)
		}
		return fmt.Errorf("record document: %w", err)
	}
	return nil
}
