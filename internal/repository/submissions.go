package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	"github.com/joseph-ayodele/certificate-verifier/internal/entity"
)

const submissionsTable = "submissions"

var submissionColumns = []string{
	"id",
	"full_name",
	"phone",
	"civil_id",
	"certificate_path",
	"ocr_text",
	"extracted_student_id",
	"extracted_university",
	"status",
	"notes",
	"created_at",
	"updated_at",
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *entity.Submission) (int64, error)
	GetByID(ctx context.Context, id int64) (*entity.Submission, error)
	List(ctx context.Context) ([]*entity.Submission, error)
	ListByPhone(ctx context.Context, phone string) ([]*entity.Submission, error)
	UpdateStatus(ctx context.Context, id int64, status constants.SubmissionStatus, notes *string) (int64, error)
}

type submissionRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewSubmissionRepository(db *DB, logger *slog.Logger) SubmissionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &submissionRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts s as a new PENDING record and fills in its id and timestamps.
func (r *submissionRepository) Create(ctx context.Context, s *entity.Submission) (int64, error) {
	now := r.now()
	insert := r.db.builder().Insert(submissionsTable).
		Columns(submissionColumns[1:]...).
		Values(
			s.FullName,
			s.Phone,
			s.CivilID,
			s.CertificatePath,
			nullable(s.OCRText),
			nullable(s.ExtractedStudentID),
			nullable(s.ExtractedUniversity),
			string(constants.StatusPending),
			nullable(s.Notes),
			now,
			now,
		)

	id, err := r.insertID(ctx, insert)
	if err != nil {
		r.logger.Error("failed to insert submission", "phone", s.Phone, "error", err)
		return 0, fmt.Errorf("%w: insert submission: %v", common.ErrDatabase, err)
	}

	s.ID = id
	s.Status = constants.StatusPending
	s.CreatedAt = now
	s.UpdatedAt = now
	return id, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*entity.Submission, error) {
	query, args := r.selectSubmissions().Where(entsql.EQ("id", id)).Query()

	s, err := scanSubmission(r.db.SQL.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get submission", "id", id, "error", err)
		return nil, fmt.Errorf("%w: get submission: %v", common.ErrDatabase, err)
	}
	return s, nil
}

// List returns every submission, newest first.
func (r *submissionRepository) List(ctx context.Context) ([]*entity.Submission, error) {
	query, args := r.selectSubmissions().
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()
	return r.query(ctx, query, args...)
}

// ListByPhone returns the submissions made with phone, newest first.
func (r *submissionRepository) ListByPhone(ctx context.Context, phone string) ([]*entity.Submission, error) {
	query, args := r.selectSubmissions().
		Where(entsql.EQ("phone", phone)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()
	return r.query(ctx, query, args...)
}

// UpdateStatus overwrites status and notes and returns the number of rows changed.
func (r *submissionRepository) UpdateStatus(ctx context.Context, id int64, status constants.SubmissionStatus, notes *string) (int64, error) {
	query, args := r.db.builder().Update(submissionsTable).
		Set("status", string(status)).
		Set("notes", nullable(notes)).
		Set("updated_at", r.now()).
		Where(entsql.EQ("id", id)).
		Query()

	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to update submission status", "id", id, "status", status, "error", err)
		return 0, fmt.Errorf("%w: update submission status: %v", common.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: update submission status: %v", common.ErrDatabase, err)
	}
	return n, nil
}

// insertID runs insert and returns the new row id, using RETURNING on
// Postgres and the driver's last insert id elsewhere.
func (r *submissionRepository) insertID(ctx context.Context, insert *entsql.InsertBuilder) (int64, error) {
	if r.db.Dialect == dialect.Postgres {
		query, args := insert.Returning("id").Query()
		var id int64
		err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&id)
		return id, err
	}
	query, args := insert.Query()
	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *submissionRepository) selectSubmissions() *entsql.Selector {
	b := r.db.builder()
	return b.Select(submissionColumns...).From(b.Table(submissionsTable))
}

func (r *submissionRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Submission, error) {
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list submissions", "error", err)
		return nil, fmt.Errorf("%w: list submissions: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	result := []*entity.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan submission: %v", common.ErrDatabase, err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list submissions: %v", common.ErrDatabase, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*entity.Submission, error) {
	var (
		s      entity.Submission
		status string
	)
	err := row.Scan(
		&s.ID,
		&s.FullName,
		&s.Phone,
		&s.CivilID,
		&s.CertificatePath,
		&s.OCRText,
		&s.ExtractedStudentID,
		&s.ExtractedUniversity,
		&status,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = constants.SubmissionStatus(status)
	return &s, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
