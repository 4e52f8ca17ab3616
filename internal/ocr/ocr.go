package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/certificate-verifier/constants"
)

// Acquisition methods reported on Result.
const (
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
)

type Config struct {
	Engine    string // "gosseract" (default) | "tesseract"
	PDFEngine string // "fitz" (default) | "poppler"

	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages   []string // default eng + ara
	DPI         int      // rasterization DPI for scanned PDFs, default 300
	MaxPages    int      // 0 = no limit
	Concurrency int      // pages recognized in parallel, default 4
	ValidatePDF bool     // run pdfcpu validation before reading the text layer

	TessdataDir      string
	HeicConverter    string
	ArtifactCacheDir string
}

type Result struct {
	Text     string
	Pages    int
	Kind     constants.DocumentKind
	Method   string // MethodPDFText | MethodPDFOCR | MethodImageOCR
	Duration time.Duration
	Warnings []string
}

// Extractor acquires raw text from a stored certificate.
// It holds no per-request state and is safe for concurrent use.
type Extractor struct {
	cfg        Config
	runner     Runner
	text       TextLayer
	raster     Rasterizer
	recognizer Recognizer
	logger     *slog.Logger
}

type Option func(*Extractor)

func WithRunner(r Runner) Option         { return func(e *Extractor) { e.runner = r } }
func WithTextLayer(t TextLayer) Option   { return func(e *Extractor) { e.text = t } }
func WithRasterizer(r Rasterizer) Option { return func(e *Extractor) { e.raster = r } }
func WithRecognizer(r Recognizer) Option { return func(e *Extractor) { e.recognizer = r } }

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Engine == "" {
		cfg.Engine = "gosseract"
	}
	if cfg.PDFEngine == "" {
		cfg.PDFEngine = "fitz"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng", "ara"}
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.ArtifactCacheDir == "" {
		cfg.ArtifactCacheDir = "./tmp"
	}

	e := &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}

	if e.text == nil {
		if cfg.PDFEngine == "poppler" {
			e.text = &popplerTextLayer{runner: e.runner, bin: cfg.Pdftotext, logger: logger}
		} else {
			e.text = fitzTextLayer{}
		}
	}
	if e.raster == nil {
		if cfg.PDFEngine == "poppler" {
			e.raster = &popplerRasterizer{runner: e.runner, bin: cfg.Pdftoppm, logger: logger}
		} else {
			e.raster = fitzRasterizer{}
		}
	}
	if e.recognizer == nil {
		if cfg.Engine == "tesseract" {
			e.recognizer = &tesseractCLI{runner: e.runner, bin: cfg.Tesseract, langs: cfg.Languages, tessdata: cfg.TessdataDir, logger: logger}
		} else {
			e.recognizer = &gosseractRecognizer{langs: cfg.Languages, tessdata: cfg.TessdataDir}
		}
	}
	return e
}

// Acquire returns the text of the document at path.
// PDFs try the embedded text layer first and fall back to recognition when it
// is blank or unreadable. Images always go through recognition. The only
// error a caller should expect is *AcquisitionError.
func (e *Extractor) Acquire(ctx context.Context, path string, kind constants.DocumentKind) (Result, error) {
	start := time.Now()
	logger := e.logger.With("path", path, "kind", kind)
	logger.Debug("starting text acquisition", "engine", e.cfg.Engine, "pdf_engine", e.cfg.PDFEngine)

	res := Result{Kind: kind}
	var attempts []error

	switch kind {
	case constants.PDF:
		layer, layerPages, layerWarns, err := e.structuredText(ctx, path)
		res.Warnings = append(res.Warnings, layerWarns...)
		switch {
		case err != nil:
			logger.Warn("pdf text layer unreadable, falling back to recognition", "error", err)
			attempts = append(attempts, fmt.Errorf("pdf text: %w", err))
			res.Warnings = append(res.Warnings, err.Error())
		case !isBlank(layer):
			res.Text, res.Pages, res.Method = layer, layerPages, MethodPDFText
			res.Duration = time.Since(start)
			logger.Info("pdf text layer extracted", "pages", layerPages, "bytes", len(layer), "duration_ms", res.Duration.Milliseconds())
			return res, nil
		default:
			logger.Debug("pdf has no text layer", "pages", layerPages)
		}

		text, pages, warns, err := e.recognizePDF(ctx, path)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			attempts = append(attempts, fmt.Errorf("pdf recognition: %w", err))
		}
		res.Text, res.Pages, res.Method = text, pages, MethodPDFOCR

	case constants.IMAGE:
		text, warns, err := e.recognizeImage(ctx, path)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			attempts = append(attempts, fmt.Errorf("image recognition: %w", err))
		}
		res.Text, res.Pages, res.Method = text, 1, MethodImageOCR

	default:
		return res, fmt.Errorf("unsupported document kind: %q", kind)
	}

	res.Duration = time.Since(start)
	if isBlank(res.Text) {
		logger.Warn("no text detected", "method", res.Method, "attempts", len(attempts), "duration_ms", res.Duration.Milliseconds())
		return Result{Kind: kind, Warnings: res.Warnings, Duration: res.Duration}, &AcquisitionError{Path: path, Attempts: attempts}
	}
	logger.Info("text recognized", "method", res.Method, "pages", res.Pages, "bytes", len(res.Text), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// structuredText reads the text layer. A failed validation only skips the
// layer for password protected files; other failures are reported as
// warnings and the layer is read anyway.
func (e *Extractor) structuredText(ctx context.Context, path string) (string, int, []string, error) {
	var warns []string
	if e.cfg.ValidatePDF {
		pages, err := inspectPDF(path)
		switch {
		case passwordProtected(err):
			return "", 0, nil, err
		case err != nil:
			e.logger.Warn("pdf failed validation, reading text layer anyway", "path", path, "error", err)
			warns = append(warns, err.Error())
		default:
			e.logger.Debug("pdf validated", "path", path, "pages", pages)
		}
	}
	text, pages, err := e.text.ExtractText(ctx, path)
	return text, pages, warns, err
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ErrNoText is matched by every AcquisitionError.
var ErrNoText = errors.New("no text detected in certificate")

// AcquisitionError means neither the text layer nor recognition produced text.
type AcquisitionError struct {
	Path     string
	Attempts []error
}

func (e *AcquisitionError) Error() string {
	return ErrNoText.Error()
}

func (e *AcquisitionError) Is(target error) bool {
	return target == ErrNoText
}

func (e *AcquisitionError) Unwrap() []error {
	return e.Attempts
}
