package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(filepath.Join(t.TempDir(), "uploads"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return l
}

func TestLocal_SaveHashesAndNamesFile(t *testing.T) {
	l := newTestLocal(t)
	content := []byte("%PDF-1.7 fake certificate")

	got, err := l.Save(context.Background(), bytes.NewReader(content), "My Certificate.PDF")
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), got.SHA256)
	assert.EqualValues(t, len(content), got.Size)
	assert.Equal(t, "pdf", got.Ext)
	assert.Equal(t, constants.PDF, got.Kind)
	assert.True(t, strings.HasSuffix(got.Name, ".pdf"))
	assert.NotContains(t, got.Name, "Certificate")
	assert.Equal(t, l.Path(got.Name), got.Path)

	onDisk, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
}

func TestLocal_SaveGeneratesDistinctNames(t *testing.T) {
	l := newTestLocal(t)
	a, err := l.Save(context.Background(), strings.NewReader("a"), "scan.jpg")
	require.NoError(t, err)
	b, err := l.Save(context.Background(), strings.NewReader("a"), "scan.jpg")
	require.NoError(t, err)
	assert.NotEqual(t, a.Name, b.Name)
	assert.Equal(t, a.SHA256, b.SHA256)
	assert.Equal(t, constants.IMAGE, b.Kind)
}

func TestLocal_SaveRejectsUnknownType(t *testing.T) {
	l := newTestLocal(t)
	_, err := l.Save(context.Background(), strings.NewReader("MZ"), "setup.exe")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)

	entries, err := os.ReadDir(l.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocal_SaveCleansUpOnReadError(t *testing.T) {
	l := newTestLocal(t)
	_, err := l.Save(context.Background(), io.MultiReader(strings.NewReader("partial"), failingReader{}), "scan.png")
	require.Error(t, err)
	assert.Equal(t, common.CodeStorage, err.(*common.AppError).Code)

	entries, err := os.ReadDir(l.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocal_Remove(t *testing.T) {
	l := newTestLocal(t)
	got, err := l.Save(context.Background(), strings.NewReader("x"), "scan.heic")
	require.NoError(t, err)

	require.NoError(t, l.Remove(context.Background(), got.Name))
	_, err = os.Stat(got.Path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, l.Remove(context.Background(), got.Name), "removing twice is fine")
}

func TestLocal_PathStaysInsideDir(t *testing.T) {
	l := newTestLocal(t)
	assert.Equal(t, filepath.Join(l.Dir(), "passwd"), l.Path("../../etc/passwd"))
}

func TestAlreadyExists(t *testing.T) {
	assert.True(t, alreadyExists(&googleapi.Error{Code: 412}))
	assert.True(t, alreadyExists(fmt.Errorf("close: %w", &googleapi.Error{Code: 412})))
	assert.False(t, alreadyExists(&googleapi.Error{Code: 403}))
	assert.False(t, alreadyExists(errors.New("boom")))
}

func TestGCSArchiver_ObjectName(t *testing.T) {
	a := &GCSArchiver{prefix: "certificates/"}
	assert.Equal(t, "certificates/abc.pdf", a.ObjectName("abc.pdf"))
}
