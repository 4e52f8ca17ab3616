package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer turns an image file into text.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// gosseractRecognizer runs tesseract in-process. A client is not safe to share,
// so every call builds its own.
type gosseractRecognizer struct {
	langs    []string
	tessdata string
}

func (g *gosseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := gosseract.NewClient()
	defer c.Close()

	if g.tessdata != "" {
		if err := c.SetTessdataPrefix(g.tessdata); err != nil {
			return "", fmt.Errorf("set tessdata: %w", err)
		}
	}
	if err := c.SetLanguage(g.langs...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

// tesseractCLI runs the tesseract binary through the Runner.
type tesseractCLI struct {
	runner   Runner
	bin      string
	langs    []string
	tessdata string
	logger   *slog.Logger
}

func (t *tesseractCLI) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", strings.Join(t.langs, "+")}
	if t.tessdata != "" {
		args = append(args, "--tessdata-dir", t.tessdata)
	}

	// tesseract <file> stdout -l eng+ara
	out, errb, err := t.runner.Run(ctx, t.bin, t.logger, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
