// Package catalog holds the reference list of known university names used as
// the last-resort match when no pattern finds a university on a certificate.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Source lists known universities in catalog order.
type Source interface {
	ListKnownUniversities(ctx context.Context) ([]string, error)
}

// Catalog is immutable once built and safe for concurrent reads.
type Catalog struct {
	names  []string
	folded []string
}

// New trims names, drops blanks and keeps the first of any case-insensitive duplicates.
func New(names []string) *Catalog {
	c := &Catalog{}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.Join(strings.Fields(n), " ")
		if n == "" {
			continue
		}
		f := Fold(n)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		c.names = append(c.names, n)
		c.folded = append(c.folded, f)
	}
	return c
}

// Load builds a Catalog from src. Call it once at startup.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	names, err := src.ListKnownUniversities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	return New(names), nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Names returns a copy of the catalog in order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// Find returns the first catalog name contained in foldedText.
// foldedText must already be lower-cased with Fold.
func (c *Catalog) Find(foldedText string) (string, bool) {
	if c == nil {
		return "", false
	}
	for i, f := range c.folded {
		if strings.Contains(foldedText, f) {
			return c.names[i], true
		}
	}
	return "", false
}

// Fold lower-cases s the same way for catalog names and certificate text.
// A Caser keeps state, so one is made per call.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
