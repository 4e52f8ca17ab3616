package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/catalog"
	"github.com/joseph-ayodele/certificate-verifier/internal/common"
)

// Pipeline runs acquisition, normalization and both field extractors.
// It keeps no per-run state; concurrent Run calls are independent.
type Pipeline struct {
	acquirer TextAcquirer
	catalog  *catalog.Catalog
	logger   *slog.Logger
}

func NewPipeline(acquirer TextAcquirer, cat *catalog.Catalog, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{acquirer: acquirer, catalog: cat, logger: logger}
}

// Run extracts the student id and university from the file at path.
// The only error returned is the acquirer's, when no text could be read.
func (p *Pipeline) Run(ctx context.Context, path string, kind constants.DocumentKind) (Result, error) {
	logger := common.LoggerFrom(ctx, p.logger)

	acq, err := p.acquirer.Acquire(ctx, path, kind)
	if err != nil {
		logger.Warn("text acquisition failed", "path", path, "kind", kind, "error", err)
		return Result{}, err
	}

	doc := Normalize(acq.Text)
	res := Result{
		RawText: acq.Text,
		Method:  acq.Method,
		Pages:   acq.Pages,
	}
	if id, rule, ok := extractStudentID(doc.Text); ok {
		res.StudentID = &id
		res.StudentIDRule = rule
	}
	if name, rule, ok := extractUniversity(doc, p.catalog); ok {
		res.UniversityName = &name
		res.UniversityRule = rule
	}

	logger.Info("certificate fields extracted",
		"path", path,
		"method", res.Method,
		"student_id_rule", res.StudentIDRule,
		"university_rule", res.UniversityRule,
		"needs_review", res.Unresolved(),
	)
	return res, nil
}
