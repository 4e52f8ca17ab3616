package ocr

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type ctxKey string

const (
	ctxKeyContentHash ctxKey = "ocr.content_hash_hex"
)

// WithContentHash stores the hex-encoded SHA256 of the upload so converted
// artifacts can be cached under it.
func WithContentHash(ctx context.Context, hex string) context.Context {
	return context.WithValue(ctx, ctxKeyContentHash, hex)
}

func contentHashFromCtx(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyContentHash).(string)
	return v, ok && v != ""
}

// heicCommand returns the argv that converts in to out for a converter name.
func heicCommand(converter, in, out string) (string, []string, error) {
	switch converter {
	case "heif-convert":
		return "heif-convert", []string{in, out}, nil
	case "magick":
		return "magick", []string{in, out}, nil
	case "sips":
		return "sips", []string{"-s", "format", "png", in, "--out", out}, nil
	default:
		return "", nil, fmt.Errorf("HEIC not supported: set HEIC_CONVERTER to one of: heif-convert | magick | sips")
	}
}

// convertHEICtoPNG converts a HEIC/HEIF photo to PNG.
// With cacheDir and hashHex set, the PNG is kept at {cacheDir}/{hashHex}.png
// and reused on the next call; cleanup is nil in that case.
// Otherwise the PNG lives in a temp dir that cleanup removes.
func convertHEICtoPNG(
	ctx context.Context,
	r Runner,
	logger *slog.Logger,
	converter string,
	in string,
	cacheDir string,
	hashHex string,
) (string, []string, func(), error) {
	var cached string
	if cacheDir != "" && hashHex != "" {
		cached = filepath.Join(cacheDir, hashHex+".png")
		if st, err := os.Stat(cached); err == nil && !st.IsDir() {
			logger.Debug("using cached heic->png", "cache", cached)
			return cached, nil, nil, nil
		}
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return "", nil, nil, err
		}
	}

	tmpDir, err := os.MkdirTemp("", "cv-heic-*")
	if err != nil {
		return "", nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "page.png")

	name, args, err := heicCommand(converter, in, out)
	if err != nil {
		return "", nil, cleanup, err
	}
	if _, errb, err := r.Run(ctx, name, logger, args...); err != nil {
		return "", []string{string(errb)}, cleanup, fmt.Errorf("%s failed: %w", name, err)
	}
	if _, statErr := os.Stat(out); statErr != nil {
		return "", nil, cleanup, fmt.Errorf("HEIC conversion produced no output: %v", statErr)
	}

	if cached == "" {
		return out, nil, cleanup, nil
	}
	if err := persist(out, cached); err != nil {
		// the converted temp file is still usable for this request
		logger.Warn("failed to cache heic->png", "cache", cached, "error", err)
		return out, nil, cleanup, nil
	}
	cleanup()
	logger.Debug("cached heic->png", "cache", cached)
	return cached, nil, nil, nil
}

// persist moves src to dst, copying when a rename crosses devices.
func persist(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// another request may have written it first
	if st, err := os.Stat(dst); err == nil && !st.IsDir() {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
