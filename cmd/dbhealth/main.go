package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/certificate-verifier/internal/catalog"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	repo "github.com/joseph-ayodele/certificate-verifier/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		DSN:         cfg.Database.DSN,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer repo.Close(db, slog.New(slog.DiscardHandler))

	if err := repo.HealthCheck(ctx, db, 1*time.Second, logger); err != nil {
		log.Fatalf("DB health: FAIL (%v)", err)
	}
	log.Printf("DB health: OK (%s)", db.Dialect)

	if err := repo.Migrate(ctx, db, logger); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cat, err := catalog.Load(ctx, repo.NewUniversityRepository(db, logger))
	if err != nil {
		log.Fatalf("loading catalog: %v", err)
	}
	log.Printf("catalog size: %d", cat.Len())
	for i, n := range cat.Names() {
		log.Printf("- [%d] %s", i+1, n)
	}
}
