package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// TextLayer reads text already embedded in a PDF. No recognition happens here.
type TextLayer interface {
	ExtractText(ctx context.Context, path string) (text string, pages int, err error)
}

type fitzTextLayer struct{}

func (fitzTextLayer) ExtractText(ctx context.Context, path string) (string, int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	var b strings.Builder
	for p := 0; p < n; p++ {
		if err := ctx.Err(); err != nil {
			return "", n, err
		}
		txt, err := doc.Text(p)
		if err != nil {
			return "", n, fmt.Errorf("page %d text: %w", p+1, err)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return b.String(), n, nil
}

// popplerTextLayer shells out to pdftotext.
type popplerTextLayer struct {
	runner Runner
	bin    string
	logger *slog.Logger
}

func (p *popplerTextLayer) ExtractText(ctx context.Context, path string) (string, int, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := p.runner.Run(ctx, p.bin, p.logger, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	text := string(out)
	// A form-feed \f is used as page separator by default
	pages := 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	return text, pages, nil
}
