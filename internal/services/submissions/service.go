// Package submissions runs the certificate submission flow and the reviewer
// status updates on stored submissions.
package submissions

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
	"github.com/joseph-ayodele/certificate-verifier/internal/entity"
	"github.com/joseph-ayodele/certificate-verifier/internal/extract"
	"github.com/joseph-ayodele/certificate-verifier/internal/ocr"
	"github.com/joseph-ayodele/certificate-verifier/internal/repository"
	"github.com/joseph-ayodele/certificate-verifier/internal/storage"
)

const missingFieldsMessage = "All fields (name, phone, civil_id) and certificate file are required"

// Extractor runs the extraction pipeline on a stored file.
type Extractor interface {
	Run(ctx context.Context, path string, kind constants.DocumentKind) (extract.Result, error)
}

// Service handles submission business logic.
type Service struct {
	repo      repository.SubmissionRepository
	files     storage.FileStore
	extractor Extractor
	archiver  storage.Archiver
	logger    *slog.Logger
}

// NewService creates a new submission service. archiver may be nil.
func NewService(repo repository.SubmissionRepository, files storage.FileStore, extractor Extractor, archiver storage.Archiver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		files:     files,
		extractor: extractor,
		archiver:  archiver,
		logger:    logger,
	}
}

// SubmitRequest represents an uploaded certificate and its submitter.
type SubmitRequest struct {
	FullName string
	Phone    string
	CivilID  string
	FileName string
	File     io.Reader
}

// SubmitResult is what the submitter gets back.
type SubmitResult struct {
	SubmissionID   int64
	StudentID      *string
	UniversityName *string
	Extraction     extract.Result
}

// Submit stores the certificate, extracts its fields and records a PENDING
// submission. When no text can be read from the file, the file is removed
// and nothing is recorded.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	logger := common.LoggerFrom(ctx, s.logger)

	fileName := req.FileName
	if req.File == nil {
		fileName = ""
	}
	validator := common.NewValidator()
	validator.Field("full_name", req.FullName, common.Required)
	validator.Field("phone", req.Phone, common.Required)
	validator.Field("civil_id", req.CivilID, common.Required)
	validator.Field("certificate", fileName, common.Required, common.CertificateFile)
	if validator.HasErrors() {
		logger.Info("submission rejected", "reason", validator.ErrorMessage())
		if validator.Failed("certificate") && fileName != "" {
			return nil, common.NewValidationError("Certificate must be a PDF or image file")
		}
		return nil, common.NewValidationError(missingFieldsMessage)
	}

	logger.Info("new submission", "full_name", req.FullName, "phone", req.Phone)

	stored, err := s.files.Save(ctx, req.File, fileName)
	if err != nil {
		logger.Error("failed to store certificate", "file", fileName, "error", err)
		return nil, err
	}

	// Extraction and the insert run to completion even if the caller goes away.
	runCtx := ocr.WithContentHash(context.WithoutCancel(ctx), stored.SHA256)

	res, err := s.extractor.Run(runCtx, stored.Path, stored.Kind)
	if err != nil {
		s.discard(runCtx, logger, stored.Name)
		if errors.Is(err, ocr.ErrNoText) {
			return nil, common.NewAppError(common.CodeAcquisition, "Error processing submission: "+ocr.ErrNoText.Error(), err)
		}
		return nil, common.NewAppError(common.CodeInternal, "Error processing submission: "+err.Error(), err)
	}

	rawText := res.RawText
	rec := &entity.Submission{
		FullName:            req.FullName,
		Phone:               req.Phone,
		CivilID:             req.CivilID,
		CertificatePath:     stored.Name,
		OCRText:             &rawText,
		ExtractedStudentID:  res.StudentID,
		ExtractedUniversity: res.UniversityName,
	}
	id, err := s.repo.Create(runCtx, rec)
	if err != nil {
		s.discard(runCtx, logger, stored.Name)
		return nil, common.NewAppError(common.CodeStorage, "Error processing submission: "+err.Error(), err)
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(runCtx, stored.Path, stored.Name); err != nil {
			logger.Warn("failed to archive certificate", "submission_id", id, "name", stored.Name, "error", err)
		}
	}

	logger.Info("submission saved",
		"submission_id", id,
		"method", res.Method,
		"student_id_found", res.StudentID != nil,
		"university_found", res.UniversityName != nil,
	)
	return &SubmitResult{
		SubmissionID:   id,
		StudentID:      res.StudentID,
		UniversityName: res.UniversityName,
		Extraction:     res,
	}, nil
}

func (s *Service) discard(ctx context.Context, logger *slog.Logger, name string) {
	if err := s.files.Remove(ctx, name); err != nil {
		logger.Warn("failed to remove discarded certificate", "name", name, "error", err)
	}
}

// List returns every submission, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.Submission, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "Error fetching submissions", err)
	}
	return subs, nil
}

// Get returns one submission.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewNotFoundError("Submission not found")
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "Error fetching submission", err)
	}
	return sub, nil
}

// ListByPhone returns the submissions made with phone, newest first.
func (s *Service) ListByPhone(ctx context.Context, phone string) ([]*entity.Submission, error) {
	subs, err := s.repo.ListByPhone(ctx, phone)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "Error fetching submissions", err)
	}
	return subs, nil
}

// UpdateStatus overwrites a submission's status and notes. Any status may be
// set from any status; an unknown status never reaches the store.
func (s *Service) UpdateStatus(ctx context.Context, id int64, upd StatusUpdate) error {
	status, ok := constants.ParseStatus(upd.Status)
	if !ok {
		return common.NewValidationError(invalidStatusMessage)
	}
	notes := upd.Notes
	if notes != nil && *notes == "" {
		notes = nil
	}

	n, err := s.repo.UpdateStatus(ctx, id, status, notes)
	if err != nil {
		return common.NewAppError(common.CodeStorage, "Error updating submission status", err)
	}
	if n == 0 {
		return common.NewNotFoundError("Submission not found")
	}

	common.LoggerFrom(ctx, s.logger).Info("submission status updated", "submission_id", id, "status", status)
	return nil
}
