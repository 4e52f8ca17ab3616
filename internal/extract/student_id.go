package extract

import (
	"regexp"
	"strings"
)

var (
	reRegistrationNumber         = regexp.MustCompile(`(?i)Registration\s*Number\s*[:\s]\s*(\d{6,13})`)
	reRegistrationNumberNextLine = regexp.MustCompile(`(?i)Registration\s*Number\s*[:\s]*\n?\s*(\d{6,13})`)
	reStudentNumber              = regexp.MustCompile(`(?i)Student\s*Number\s*[:\s]\s*(\d{6,13})`)
	reHESANumber                 = regexp.MustCompile(`(?i)HESA\s*Number\s*[:\s]\s*(\d{6,13})`)
	reIDNumber                   = regexp.MustCompile(`(?i)ID\s*(?:Number|No\.?)\s*[:\s]\s*(\d{6,13})`)

	reDigitRun = regexp.MustCompile(`\b\d{6,13}\b`)
	reNotAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// studentIDRules run in priority order; labeled captions beat bare numbers.
var studentIDRules = []Rule[string]{
	captured("registration-number", reRegistrationNumber),
	captured("registration-number-next-line", reRegistrationNumberNextLine),
	captured("student-number", reStudentNumber),
	captured("hesa-number", reHESANumber),
	captured("id-number", reIDNumber),
	{Name: "numeric-fallback", Match: pickNumericCandidate},
}

func captured(name string, re *regexp.Regexp) Rule[string] {
	return Rule[string]{Name: name, Match: func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return m[1], true
	}}
}

// pickNumericCandidate chooses among all standalone 6-13 digit runs:
// the first 9 digit run, else the first run not padded with "0000",
// else the longest run (earliest wins a tie).
func pickNumericCandidate(text string) (string, bool) {
	candidates := reDigitRun.FindAllString(text, -1)
	if len(candidates) == 0 {
		return "", false
	}
	for _, c := range candidates {
		if len(c) == 9 {
			return c, true
		}
	}
	for _, c := range candidates {
		if !strings.HasPrefix(c, "0000") {
			return c, true
		}
	}
	longest := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) > len(longest) {
			longest = c
		}
	}
	return longest, true
}

// ExtractStudentID finds the student number in normalized certificate text.
func ExtractStudentID(text string) (string, bool) {
	id, _, ok := extractStudentID(text)
	return id, ok
}

func extractStudentID(text string) (id, rule string, ok bool) {
	v, rule, ok := FirstMatch(text, studentIDRules)
	if !ok {
		return "", "", false
	}
	id = sanitizeID(v)
	if id == "" {
		return "", "", false
	}
	return id, rule, true
}

func sanitizeID(v string) string {
	return reNotAlnum.ReplaceAllString(v, "")
}
