package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/certificate-verifier/internal/catalog"
)

var (
	reUniversityLabel  = regexp.MustCompile(`(?i)University\s*(?:Name)?\s*[:\-]\s*([^\n]+)`)
	reUniversityOf     = regexp.MustCompile(`(?i)(University of [A-Za-z ,&]+)`)
	reUniversitySuffix = regexp.MustCompile(`(?i)([A-Za-z ,&]+ University)`)

	reNotNameChar = regexp.MustCompile(`[^A-Za-z ,&]`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

func universityRules(cat *catalog.Catalog) []Rule[Document] {
	return []Rule[Document]{
		namePattern("label", reUniversityLabel),
		namePattern("university-of", reUniversityOf),
		namePattern("university-suffix", reUniversitySuffix),
		{Name: "catalog", Match: func(d Document) (string, bool) {
			name, ok := cat.Find(d.Lower)
			if !ok {
				return "", false
			}
			return cleanUniversityName(name)
		}},
	}
}

// namePattern matches against the normalized-case text. A capture that cleans
// down to nothing does not count, so the next rule gets its turn.
func namePattern(name string, re *regexp.Regexp) Rule[Document] {
	return Rule[Document]{Name: name, Match: func(d Document) (string, bool) {
		m := re.FindStringSubmatch(d.Text)
		if m == nil {
			return "", false
		}
		return cleanUniversityName(m[1])
	}}
}

// ExtractUniversity finds the awarding university in a normalized document,
// using cat only when no pattern matches.
func ExtractUniversity(doc Document, cat *catalog.Catalog) (string, bool) {
	name, _, ok := extractUniversity(doc, cat)
	return name, ok
}

func extractUniversity(doc Document, cat *catalog.Catalog) (name, rule string, ok bool) {
	return FirstMatch(doc, universityRules(cat))
}

func cleanUniversityName(v string) (string, bool) {
	v = reNotNameChar.ReplaceAllString(v, " ")
	v = strings.TrimSpace(reWhitespace.ReplaceAllString(v, " "))
	return v, v != ""
}
