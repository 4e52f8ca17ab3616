package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/catalog"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	"github.com/joseph-ayodele/certificate-verifier/internal/extract"
	"github.com/joseph-ayodele/certificate-verifier/internal/ocr"
)

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <certificate-file>")
		os.Exit(2)
	}
	path := os.Args[1]
	kind := constants.MapExtToKind(filepath.Ext(path))
	if kind == "" {
		logger.Error("unsupported file type", "path", path)
		os.Exit(2)
	}

	names, err := catalog.SeedNames(constants.DefaultUniversities, cfg.Catalog.SeedFile)
	if err != nil {
		logger.Error("failed to read catalog file", "error", err)
		os.Exit(1)
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Engine:           cfg.OCR.Engine,
		PDFEngine:        cfg.OCR.PDFEngine,
		Languages:        cfg.OCR.Languages,
		DPI:              cfg.OCR.DPI,
		MaxPages:         cfg.OCR.MaxPages,
		Concurrency:      cfg.OCR.Concurrency,
		ValidatePDF:      cfg.OCR.ValidatePDF,
		TessdataDir:      cfg.OCR.TessdataDir,
		HeicConverter:    cfg.OCR.HeicConverter,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, logger)
	p := extract.NewPipeline(extract.NewOCRAdapter(extractor), catalog.New(names), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	res, err := p.Run(ctx, path, kind)
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("extraction OK", "path", path, "duration_ms", time.Since(start).Milliseconds())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("write result", "error", err)
		os.Exit(1)
	}
}
