package ocr

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"
)

// Rasterizer renders PDF pages to PNG files inside outDir and returns them in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, path, outDir string, dpi, maxPages int) ([]string, error)
}

type fitzRasterizer struct{}

func (fitzRasterizer) Rasterize(ctx context.Context, path, outDir string, dpi, maxPages int) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}
	files := make([]string, 0, n)
	for p := 0; p < n; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(p, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", p+1, err)
		}
		out := filepath.Join(outDir, fmt.Sprintf("page-%03d.png", p+1))
		f, err := os.Create(out)
		if err != nil {
			return nil, err
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("encode page %d: %w", p+1, err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		files = append(files, out)
	}
	return files, nil
}

// popplerRasterizer shells out to pdftoppm.
type popplerRasterizer struct {
	runner Runner
	bin    string
	logger *slog.Logger
}

func (p *popplerRasterizer) Rasterize(ctx context.Context, path, outDir string, dpi, maxPages int) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	// pdftoppm -r 300 -png [-f 1 -l N] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(dpi), "-png"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := p.runner.Run(ctx, p.bin, p.logger, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	return matches, nil
}

// recognizePDF rasterizes a scanned PDF and recognizes its pages concurrently.
// A failed page is reported as a warning; the call fails only when every page failed.
func (e *Extractor) recognizePDF(ctx context.Context, path string) (string, int, []string, error) {
	tmpDir, err := os.MkdirTemp("", "cv-pages-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	images, err := e.raster.Rasterize(ctx, path, tmpDir, e.cfg.DPI, e.cfg.MaxPages)
	if err != nil {
		return "", 0, nil, fmt.Errorf("rasterize: %w", err)
	}
	if len(images) == 0 {
		return "", 0, []string{"rasterizer produced no images"}, errors.New("no pages rendered")
	}

	texts := make([]string, len(images))
	errs := make([]error, len(images))

	var eg errgroup.Group
	eg.SetLimit(e.cfg.Concurrency)
	for i, img := range images {
		eg.Go(func() error {
			txt, err := e.recognizer.Recognize(ctx, img)
			if err != nil {
				errs[i] = fmt.Errorf("page %d: %w", i+1, err)
				return nil
			}
			texts[i] = stripBoxNoise(txt)
			return nil
		})
	}
	_ = eg.Wait()

	var b strings.Builder
	var warns []string
	failed := 0
	for i := range images {
		if errs[i] != nil {
			failed++
			warns = append(warns, errs[i].Error())
			continue
		}
		if isBlank(texts[i]) {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(texts[i])
	}
	if failed == len(images) {
		return "", len(images), warns, errors.Join(errs...)
	}
	return b.String(), len(images), warns, nil
}
