package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstMatch(t *testing.T) {
	var evaluated []string
	rule := func(name string, hit bool) Rule[string] {
		return Rule[string]{Name: name, Match: func(in string) (string, bool) {
			evaluated = append(evaluated, name)
			if !hit {
				return "", false
			}
			return strings.ToUpper(in) + "-" + name, true
		}}
	}

	v, name, ok := FirstMatch("x", []Rule[string]{rule("a", false), rule("b", true), rule("c", true)})
	assert.True(t, ok)
	assert.Equal(t, "X-b", v)
	assert.Equal(t, "b", name)
	assert.Equal(t, []string{"a", "b"}, evaluated, "rules after the first hit must not run")

	_, _, ok = FirstMatch("x", []Rule[string]{rule("a", false)})
	assert.False(t, ok)

	_, _, ok = FirstMatch[string]("x", nil)
	assert.False(t, ok)
}

func TestStudentIDRuleOrder(t *testing.T) {
	names := make([]string, len(studentIDRules))
	for i, r := range studentIDRules {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		"registration-number",
		"registration-number-next-line",
		"student-number",
		"hesa-number",
		"id-number",
		"numeric-fallback",
	}, names)
}
