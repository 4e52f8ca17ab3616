package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/async"
	"github.com/joseph-ayodele/certificate-verifier/internal/catalog"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	"github.com/joseph-ayodele/certificate-verifier/internal/export"
	"github.com/joseph-ayodele/certificate-verifier/internal/extract"
	"github.com/joseph-ayodele/certificate-verifier/internal/ocr"
	repo "github.com/joseph-ayodele/certificate-verifier/internal/repository"
	"github.com/joseph-ayodele/certificate-verifier/internal/server"
	"github.com/joseph-ayodele/certificate-verifier/internal/services/submissions"
	"github.com/joseph-ayodele/certificate-verifier/internal/storage"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	if err := repo.Migrate(ctx, db, logger); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	universitiesRepo := repo.NewUniversityRepository(db, logger)
	seed, err := catalog.SeedNames(constants.DefaultUniversities, cfg.Catalog.SeedFile)
	if err != nil {
		logger.Error("failed to read catalog file", "file", cfg.Catalog.SeedFile, "error", err)
		os.Exit(1)
	}
	if _, err := universitiesRepo.Seed(ctx, seed); err != nil {
		logger.Error("failed to seed universities", "error", err)
		os.Exit(1)
	}
	cat, err := catalog.Load(ctx, universitiesRepo)
	if err != nil {
		logger.Error("failed to load university catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("university catalog loaded", "names", cat.Len())

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
	pipeline := extract.NewPipeline(extract.NewOCRAdapter(extractor), cat, logger)
	queue := async.NewExtractionQueue(pipeline, logger,
		async.WithWorkers(cfg.OCR.ExtractWorkers),
		async.WithQueueSize(cfg.OCR.ExtractQueueSize),
	)

	files, err := storage.NewLocal(cfg.Storage.UploadDir, logger)
	if err != nil {
		logger.Error("failed to prepare upload dir", "dir", cfg.Storage.UploadDir, "error", err)
		os.Exit(1)
	}
	var archiver storage.Archiver
	if cfg.Storage.GCSBucket != "" {
		gcs, err := storage.NewGCSArchiver(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSPrefix, logger)
		if err != nil {
			logger.Error("failed to create GCS archiver", "bucket", cfg.Storage.GCSBucket, "error", err)
			os.Exit(1)
		}
		defer gcs.Close()
		archiver = gcs
	}

	submissionsRepo := repo.NewSubmissionRepository(db, logger)
	submissionService := submissions.NewService(submissionsRepo, files, queue, archiver, logger)
	exportService := export.NewService(submissionsRepo, logger)

	ping := func(ctx context.Context) error {
		return repo.HealthCheck(ctx, db, 2*time.Second, logger)
	}
	api := server.New(server.Config{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		UploadDir:      cfg.Storage.UploadDir,
	}, submissionService, exportService, ping, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       time.Minute,
	}
	go func() {
		logger.Info("certificate-verifier listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	var grpcServer *grpc.Server
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer()
		healthServer := health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

		logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC serve error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
