package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// Archiver keeps a durable copy of a stored certificate.
type Archiver interface {
	Archive(ctx context.Context, localPath, name string) error
}

// GCSArchiver writes each certificate once to a bucket under prefix.
type GCSArchiver struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	logger *slog.Logger
}

func NewGCSArchiver(ctx context.Context, bucket, prefix string, logger *slog.Logger) (*GCSArchiver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSArchiver{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: prefix,
		logger: logger.With("bucket", bucket),
	}, nil
}

func (a *GCSArchiver) ObjectName(name string) string {
	return a.prefix + name
}

// Archive uploads localPath unless the object already exists.
func (a *GCSArchiver) Archive(ctx context.Context, localPath, name string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	object := a.ObjectName(name)
	w := a.bucket.Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		if alreadyExists(err) {
			a.logger.Info("certificate already archived", "object", object)
			return nil
		}
		return fmt.Errorf("write gs object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		if alreadyExists(err) {
			a.logger.Info("certificate already archived", "object", object)
			return nil
		}
		return fmt.Errorf("finalize gs object %s: %w", object, err)
	}
	a.logger.Info("certificate archived", "object", object)
	return nil
}

func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

// alreadyExists reports a failed DoesNotExist precondition.
func alreadyExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
