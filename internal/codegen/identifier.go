package codegen

import (
	"regexp"
	"strconv"
	"strings"
)

// fallbackIdentifier is used when a name normalizes to nothing, so blank
// names still produce valid output.
const fallbackIdentifier = "element"

var (
	separatorRe    = regexp.MustCompile(`[\s-]+`)
	nonIdentTailRe = regexp.MustCompile(`[^a-z0-9_]`)
)

// idAllocator derives code-safe identifiers from element names. Identifiers
// are memoized per name for the duration of one generation pass, so the same
// element maps to the same identifier across the markup, style and script
// outputs. Distinct names that normalize to the same base get incrementing
// numeric suffixes, the second one ending in "2".
type idAllocator struct {
	counts map[string]int
	byName map[string]string
}

func newIDAllocator() *idAllocator {
	return &idAllocator{
		counts: make(map[string]int),
		byName: make(map[string]string),
	}
}

// idFor returns the identifier for an element name, allocating one on first
// use.
func (a *idAllocator) idFor(name string) string {
	if id, ok := a.byName[name]; ok {
		return id
	}

	base := normalizeIdentifier(name)
	a.counts[base]++
	id := base
	if n := a.counts[base]; n > 1 {
		id = base + strconv.Itoa(n)
	}
	a.byName[name] = id
	return id
}

// lookup returns the already-allocated identifier without creating one.
func (a *idAllocator) lookup(name string) string {
	return a.byName[name]
}

// normalizeIdentifier lowercases the name, collapses whitespace and hyphens
// to underscores, and strips everything that is not an identifier character.
func normalizeIdentifier(name string) string {
	s := strings.ToLower(name)
	s = separatorRe.ReplaceAllString(s, "_")
	s = nonIdentTailRe.ReplaceAllString(s, "")
	if s == "" {
		return fallbackIdentifier
	}
	return s
}
