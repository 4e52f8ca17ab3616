package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/certificate-verifier/internal/common"
)

const universitiesTable = "universities"

type UniversityRepository interface {
	Seed(ctx context.Context, names []string) (int, error)
	ListKnownUniversities(ctx context.Context) ([]string, error)
}

type universityRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewUniversityRepository(db *DB, logger *slog.Logger) UniversityRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &universityRepository{db: db, logger: logger}
}

// Seed inserts names that are not stored yet and returns how many were added.
// Insert order is kept, so the catalog lists defaults first.
func (r *universityRepository) Seed(ctx context.Context, names []string) (int, error) {
	now := time.Now().UTC()
	added := 0
	for _, name := range names {
		query, args := r.db.builder().Insert(universitiesTable).
			Columns("name", "created_at").
			Values(name, now).
			OnConflict(entsql.ConflictColumns("name"), entsql.DoNothing()).
			Query()
		res, err := r.db.SQL.ExecContext(ctx, query, args...)
		if err != nil {
			r.logger.Error("failed to seed university", "name", name, "error", err)
			return added, fmt.Errorf("%w: seed universities: %v", common.ErrDatabase, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	r.logger.Info("universities seeded", "added", added, "total", len(names))
	return added, nil
}

// ListKnownUniversities returns every stored name in insertion order.
func (r *universityRepository) ListKnownUniversities(ctx context.Context) ([]string, error) {
	b := r.db.builder()
	query, args := b.Select("name").
		From(b.Table(universitiesTable)).
		OrderBy("id").
		Query()

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list universities", "error", err)
		return nil, fmt.Errorf("%w: list universities: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan university: %v", common.ErrDatabase, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list universities: %v", common.ErrDatabase, err)
	}
	return names, nil
}
