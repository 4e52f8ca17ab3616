package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/certificate-verifier/internal/catalog"
)

// Field captions that text layers tend to glue onto the end of the previous line.
var reMergedLabel = regexp.MustCompile(`(?i)(?:Registration|HESA|Student)\s*Number`)

// Document is normalized certificate text plus its case-folded copy.
type Document struct {
	Text  string
	Lower string
}

// Normalize prepares raw acquired text for the field extractors.
func Normalize(raw string) Document {
	text := NormalizeText(raw)
	return Document{Text: text, Lower: catalog.Fold(text)}
}

// NormalizeText strips carriage returns, applies NFKC and starts a new line
// before every known field caption that does not already start one.
// NormalizeText(NormalizeText(s)) == NormalizeText(s).
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = norm.NFKC.String(s)
	return breakBeforeLabels(s)
}

func breakBeforeLabels(s string) string {
	locs := reMergedLabel.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(locs))
	last := 0
	for _, loc := range locs {
		start := loc[0]
		if start == 0 || s[start-1] == '\n' {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteByte('\n')
		last = start
	}
	b.WriteString(s[last:])
	return b.String()
}
