package extract

import (
	"context"

	"github.com/joseph-ayodele/certificate-verifier/constants"
	"github.com/joseph-ayodele/certificate-verifier/internal/ocr"
)

// OCRAdapter exposes an ocr.Extractor as a TextAcquirer.
type OCRAdapter struct {
	e *ocr.Extractor
}

func NewOCRAdapter(e *ocr.Extractor) *OCRAdapter {
	return &OCRAdapter{e: e}
}

func (a *OCRAdapter) Acquire(ctx context.Context, path string, kind constants.DocumentKind) (AcquiredText, error) {
	r, err := a.e.Acquire(ctx, path, kind)
	return AcquiredText{
		Text:     r.Text,
		Pages:    r.Pages,
		Kind:     r.Kind,
		Method:   r.Method,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, err
}
