package ocr

import (
	"regexp"
)

// lines made only of underscores or dashes (table rules, signature lines)
var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

func stripBoxNoise(s string) string {
	return reBoxNoise.ReplaceAllString(s, "")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
