// Package storage keeps uploaded certificate files on local disk and, when
// configured, archives a write-once copy to Google Cloud Storage.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
)

// Stored describes a file written by a FileStore.
type Stored struct {
	Name   string // base name inside the store, "<uuid>.<ext>"
	Path   string
	Ext    string
	Kind   constants.DocumentKind
	Size   int64
	SHA256 string
}

type FileStore interface {
	Save(ctx context.Context, r io.Reader, originalName string) (Stored, error)
	Remove(ctx context.Context, name string) error
	Path(name string) string
}

// Local stores files flat in one directory under generated names.
type Local struct {
	dir    string
	logger *slog.Logger
}

// NewLocal creates dir if needed.
func NewLocal(dir string, logger *slog.Logger) (*Local, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, logger: logger}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Path(name string) string {
	return filepath.Join(l.dir, filepath.Base(name))
}

// Save copies r into a new file named after a fresh uuid and the extension
// of originalName, hashing it on the way.
func (l *Local) Save(ctx context.Context, r io.Reader, originalName string) (Stored, error) {
	ext := constants.NormalizeExt(filepath.Ext(originalName))
	kind := constants.MapExtToKind(ext)
	if kind == "" {
		return Stored{}, common.NewValidationError(fmt.Sprintf("unsupported certificate file type %q", ext))
	}
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}

	name := uuid.NewString() + "." + ext
	path := l.Path(name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Stored{}, common.NewAppError(common.CodeStorage, "could not store certificate file", err)
	}

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, h), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return Stored{}, common.NewAppError(common.CodeStorage, "could not store certificate file", err)
	}

	l.logger.Debug("certificate stored", "name", name, "original", originalName, "bytes", size)
	return Stored{
		Name:   name,
		Path:   path,
		Ext:    ext,
		Kind:   kind,
		Size:   size,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (l *Local) Remove(ctx context.Context, name string) error {
	if err := os.Remove(l.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("failed to remove stored certificate", "name", name, "error", err)
		return err
	}
	return nil
}
