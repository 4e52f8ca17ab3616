package ocr

import (
	"context"
	"path/filepath"

	"github.com/joseph-ayodele/certificate-verifier/constants"
)

func (e *Extractor) recognizeImage(ctx context.Context, path string) (string, []string, error) {
	var warns []string
	if constants.IsHEICExt(filepath.Ext(path)) {
		hashHex, _ := contentHashFromCtx(ctx)
		out, w, cleanup, err := convertHEICtoPNG(ctx, e.runner, e.logger, e.cfg.HeicConverter, path, e.cfg.ArtifactCacheDir, hashHex)
		warns = append(warns, w...)
		if cleanup != nil {
			defer cleanup()
		}
		if err != nil {
			e.logger.Error("heic conversion failed", "path", path, "error", err)
			return "", warns, err
		}
		path = out
	}

	txt, err := e.recognizer.Recognize(ctx, path)
	if err != nil {
		return "", warns, err
	}
	return stripBoxNoise(txt), warns, nil
}
