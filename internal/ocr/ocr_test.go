package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/certificate-verifier/constants"
)

type fakeTextLayer struct {
	text  string
	pages int
	err   error
	calls int
}

func (f *fakeTextLayer) ExtractText(ctx context.Context, path string) (string, int, error) {
	f.calls++
	return f.text, f.pages, f.err
}

type fakeRasterizer struct {
	pages int
	err   error
	got   struct{ dpi, maxPages int }
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, path, outDir string, dpi, maxPages int) ([]string, error) {
	f.got.dpi, f.got.maxPages = dpi, maxPages
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, f.pages)
	for i := range out {
		out[i] = filepath.Join(outDir, fmt.Sprintf("page-%03d.png", i+1))
	}
	return out, nil
}

// fakeRecognizer answers by file base name.
type fakeRecognizer struct {
	mu    sync.Mutex
	texts map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	base := filepath.Base(imagePath)
	f.mu.Lock()
	f.calls = append(f.calls, base)
	f.mu.Unlock()
	if err := f.errs[base]; err != nil {
		return "", err
	}
	return f.texts[base], nil
}

type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	run   func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.run == nil {
		return nil, nil, nil
	}
	return f.run(name, args)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAcquire_PDFTextLayerWins(t *testing.T) {
	text := &fakeTextLayer{text: "Registration Number: 123456789", pages: 1}
	rec := &fakeRecognizer{}
	e := NewExtractor(Config{}, quietLogger(), WithTextLayer(text), WithRasterizer(&fakeRasterizer{pages: 1}), WithRecognizer(rec))

	res, err := e.Acquire(context.Background(), "cert.pdf", constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, MethodPDFText, res.Method)
	assert.Equal(t, "Registration Number: 123456789", res.Text)
	assert.Equal(t, 1, res.Pages)
	assert.Empty(t, rec.calls, "recognition must not run when the text layer has text")
}

func TestAcquire_BlankPDFFallsBackToRecognition(t *testing.T) {
	raster := &fakeRasterizer{pages: 3}
	rec := &fakeRecognizer{texts: map[string]string{
		"page-001.png": "University of Bath",
		"page-002.png": "   ",
		"page-003.png": "Student Number 123456789",
	}}
	e := NewExtractor(Config{DPI: 200, MaxPages: 5}, quietLogger(),
		WithTextLayer(&fakeTextLayer{text: " \n\f ", pages: 3}), WithRasterizer(raster), WithRecognizer(rec))

	res, err := e.Acquire(context.Background(), "scan.pdf", constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, MethodPDFOCR, res.Method)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, "University of Bath\n\f\nStudent Number 123456789", res.Text)
	assert.Equal(t, 200, raster.got.dpi)
	assert.Equal(t, 5, raster.got.maxPages)
	assert.Len(t, rec.calls, 3)
}

func TestAcquire_TextLayerErrorIsNotFatal(t *testing.T) {
	rec := &fakeRecognizer{texts: map[string]string{"page-001.png": "Kuwait University"}}
	e := NewExtractor(Config{}, quietLogger(),
		WithTextLayer(&fakeTextLayer{err: errors.New("encrypted")}), WithRasterizer(&fakeRasterizer{pages: 1}), WithRecognizer(rec))

	res, err := e.Acquire(context.Background(), "locked.pdf", constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, "Kuwait University", res.Text)
	assert.Equal(t, MethodPDFOCR, res.Method)
	assert.Contains(t, res.Warnings, "encrypted")
}

func writeGarbagePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf container"), 0o644))
	return path
}

func TestAcquire_InvalidPDFStillReadsTextLayer(t *testing.T) {
	text := &fakeTextLayer{text: "Student ID: 123456789", pages: 1}
	rec := &fakeRecognizer{}
	e := NewExtractor(Config{ValidatePDF: true}, quietLogger(),
		WithTextLayer(text), WithRasterizer(&fakeRasterizer{pages: 1}), WithRecognizer(rec))

	res, err := e.Acquire(context.Background(), writeGarbagePDF(t), constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, MethodPDFText, res.Method)
	assert.Equal(t, "Student ID: 123456789", res.Text)
	assert.Equal(t, 1, text.calls)
	assert.Empty(t, rec.calls)
	require.NotEmpty(t, res.Warnings, "validation failure is reported")
	assert.Contains(t, res.Warnings[0], "invalid pdf")
}

func TestAcquire_InvalidPDFFallsBackToRecognition(t *testing.T) {
	text := &fakeTextLayer{err: errors.New("cannot open document")}
	rec := &fakeRecognizer{texts: map[string]string{"page-001.png": "Arab Open University"}}
	e := NewExtractor(Config{ValidatePDF: true}, quietLogger(),
		WithTextLayer(text), WithRasterizer(&fakeRasterizer{pages: 1}), WithRecognizer(rec))

	res, err := e.Acquire(context.Background(), writeGarbagePDF(t), constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, MethodPDFOCR, res.Method)
	assert.Equal(t, "Arab Open University", res.Text)
	assert.Equal(t, 1, text.calls)
	assert.Equal(t, []string{"page-001.png"}, rec.calls)
}

func TestPasswordProtected(t *testing.T) {
	assert.True(t, passwordProtected(fmt.Errorf("invalid pdf: %w", pdfcpu.ErrWrongPassword)))
	assert.False(t, passwordProtected(errors.New("invalid pdf: no header")))
	assert.False(t, passwordProtected(nil))
}

func TestAcquire_ImageSkipsTextLayer(t *testing.T) {
	text := &fakeTextLayer{text: "should not be read"}
	rec := &fakeRecognizer{texts: map[string]string{"photo.jpg": "HESA Number 0000012345678\n-----\nEnd"}}
	e := NewExtractor(Config{}, quietLogger(), WithTextLayer(text), WithRecognizer(rec))

	res, err := e.Acquire(context.Background(), "/uploads/photo.jpg", constants.IMAGE)
	require.NoError(t, err)
	assert.Equal(t, MethodImageOCR, res.Method)
	assert.Equal(t, "HESA Number 0000012345678\n\nEnd", res.Text)
	assert.Zero(t, text.calls)
}

func TestAcquire_NoTextAnywhere(t *testing.T) {
	rec := &fakeRecognizer{texts: map[string]string{"page-001.png": "\n \t"}}
	e := NewExtractor(Config{}, quietLogger(),
		WithTextLayer(&fakeTextLayer{text: ""}), WithRasterizer(&fakeRasterizer{pages: 1}), WithRecognizer(rec))

	res, err := e.Acquire(context.Background(), "blank.pdf", constants.PDF)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoText)
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Equal(t, "blank.pdf", acqErr.Path)
	assert.Empty(t, res.Text)
}

func TestAcquire_AllPagesFailWrapsCauses(t *testing.T) {
	boom := errors.New("tesseract crashed")
	rec := &fakeRecognizer{errs: map[string]error{"page-001.png": boom, "page-002.png": boom}}
	e := NewExtractor(Config{}, quietLogger(),
		WithTextLayer(&fakeTextLayer{err: errors.New("corrupt xref")}), WithRasterizer(&fakeRasterizer{pages: 2}), WithRecognizer(rec))

	_, err := e.Acquire(context.Background(), "bad.pdf", constants.PDF)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoText)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "no text detected in certificate", err.Error())
}

func TestAcquire_PartialPageFailureKeepsOtherPages(t *testing.T) {
	rec := &fakeRecognizer{
		texts: map[string]string{"page-002.png": "Arab Open University"},
		errs:  map[string]error{"page-001.png": errors.New("bad image")},
	}
	e := NewExtractor(Config{Concurrency: 1}, quietLogger(),
		WithTextLayer(&fakeTextLayer{}), WithRasterizer(&fakeRasterizer{pages: 2}), WithRecognizer(rec))

	res, err := e.Acquire(context.Background(), "two.pdf", constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, "Arab Open University", res.Text)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "page 1")
}

func TestAcquire_RasterizeErrorBecomesAcquisitionError(t *testing.T) {
	e := NewExtractor(Config{}, quietLogger(),
		WithTextLayer(&fakeTextLayer{}), WithRasterizer(&fakeRasterizer{err: errors.New("cannot open")}), WithRecognizer(&fakeRecognizer{}))

	_, err := e.Acquire(context.Background(), "x.pdf", constants.PDF)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestAcquire_UnknownKind(t *testing.T) {
	e := NewExtractor(Config{}, quietLogger(), WithRecognizer(&fakeRecognizer{}))
	_, err := e.Acquire(context.Background(), "x.doc", constants.DocumentKind("DOC"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoText)
}

func TestTesseractCLI_UsesAllLanguages(t *testing.T) {
	runner := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		return []byte("Kuwait University"), nil, nil
	}}
	e := NewExtractor(Config{Engine: "tesseract", TessdataDir: "/opt/tessdata"}, quietLogger(), WithRunner(runner))

	res, err := e.Acquire(context.Background(), "scan.png", constants.IMAGE)
	require.NoError(t, err)
	assert.Equal(t, "Kuwait University", res.Text)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"tesseract", "scan.png", "stdout", "-l", "eng+ara", "--tessdata-dir", "/opt/tessdata"}, runner.calls[0])
}

func TestPopplerTextLayer_CountsPages(t *testing.T) {
	runner := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		return []byte("page one\fpage two\f"), nil, nil
	}}
	layer := &popplerTextLayer{runner: runner, bin: "pdftotext", logger: quietLogger()}

	text, pages, err := layer.ExtractText(context.Background(), "in.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Contains(t, text, "page two")
	assert.Equal(t, []string{"pdftotext", "-layout", "-enc", "UTF-8", "-eol", "unix", "in.pdf", "-"}, runner.calls[0])
}

func TestPopplerRasterizer_LimitsPages(t *testing.T) {
	runner := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		for _, n := range []string{"2", "1"} {
			if err := os.WriteFile(prefix+"-"+n+".png", []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}}
	r := &popplerRasterizer{runner: runner, bin: "pdftoppm", logger: quietLogger()}
	dir := t.TempDir()

	files, err := r.Rasterize(context.Background(), "in.pdf", dir, 150, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "page-1.png"), filepath.Join(dir, "page-2.png")}, files)
	assert.Equal(t, []string{"pdftoppm", "-r", "150", "-png", "-f", "1", "-l", "2", "in.pdf", filepath.Join(dir, "page")}, runner.calls[0])
}

func TestHEICConversionIsCachedByContentHash(t *testing.T) {
	cacheDir := t.TempDir()
	runner := &fakeRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		return nil, nil, os.WriteFile(args[len(args)-1], []byte("png"), 0o644)
	}}
	rec := &fakeRecognizer{texts: map[string]string{"abc123.png": "Kuwait University"}}
	e := NewExtractor(Config{HeicConverter: "magick", ArtifactCacheDir: cacheDir}, quietLogger(), WithRunner(runner), WithRecognizer(rec))
	ctx := WithContentHash(context.Background(), "abc123")

	for i := 0; i < 2; i++ {
		res, err := e.Acquire(ctx, "photo.HEIC", constants.IMAGE)
		require.NoError(t, err)
		assert.Equal(t, "Kuwait University", res.Text)
	}
	assert.Len(t, runner.calls, 1, "second call must reuse the cached png")
	assert.FileExists(t, filepath.Join(cacheDir, "abc123.png"))
}

func TestHEICUnknownConverter(t *testing.T) {
	e := NewExtractor(Config{HeicConverter: "paint"}, quietLogger(), WithRunner(&fakeRunner{}), WithRecognizer(&fakeRecognizer{}))
	_, err := e.Acquire(context.Background(), "photo.heic", constants.IMAGE)
	assert.ErrorIs(t, err, ErrNoText)
}
