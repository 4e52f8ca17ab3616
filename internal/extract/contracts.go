package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/certificate-verifier/constants"
)

// TextAcquirer is stage 1: file -> raw text.
// It fails only when no text at all could be obtained.
type TextAcquirer interface {
	Acquire(ctx context.Context, path string, kind constants.DocumentKind) (AcquiredText, error)
}

type AcquiredText struct {
	Text     string
	Pages    int
	Kind     constants.DocumentKind
	Method   string // "pdf-text" | "pdf-ocr" | "image-ocr"
	Duration time.Duration
	Warnings []string
}

// Result is the outcome of one pipeline run. Either field may be nil;
// that is a request for manual review, not an error.
type Result struct {
	RawText        string  `json:"raw_text"`
	StudentID      *string `json:"student_id"`
	UniversityName *string `json:"university_name"`

	Method         string `json:"method"`
	Pages          int    `json:"pages"`
	StudentIDRule  string `json:"student_id_rule,omitempty"`
	UniversityRule string `json:"university_rule,omitempty"`
}

// Unresolved reports that neither field was found.
func (r Result) Unresolved() bool {
	return r.StudentID == nil && r.UniversityName == nil
}
