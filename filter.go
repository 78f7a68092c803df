package gridsheet

import (
	"fmt"
	"strings"
)

// ColumnFilter is the extension point for row-visibility predicates consumed
// by the store's filtering queries.
type ColumnFilter interface {
	Match(c Cell) bool
}

// PatternMode selects how a PatternFilter compares cell text to its pattern.
type PatternMode int

const (
	PatternStartsWith PatternMode = iota
	PatternEndsWith
	PatternContains
	PatternNotStartsWith
	PatternNotEndsWith
	PatternNotContains
)

// String returns a human-readable name for the PatternMode.
func (m PatternMode) String() string {
	switch m {
	case PatternStartsWith:
		return "StartsWith"
	case PatternEndsWith:
		return "EndsWith"
	case PatternContains:
		return "Contains"
	case PatternNotStartsWith:
		return "NotStartsWith"
	case PatternNotEndsWith:
		return "NotEndsWith"
	case PatternNotContains:
		return "NotContains"
	default:
		return "Unknown"
	}
}

// PatternFilter is a stateless predicate over a cell's textual representation.
type PatternFilter struct {
	mode    PatternMode
	pattern string
}

// NewPatternFilter creates a PatternFilter. An unrecognized mode is a
// programming error and panics.
func NewPatternFilter(mode PatternMode, pattern string) *PatternFilter {
	if mode < PatternStartsWith || mode > PatternNotContains {
		panic(fmt.Sprintf("gridsheet: invalid pattern filter mode %d", mode))
	}
	return &PatternFilter{mode: mode, pattern: pattern}
}

// Match tests the cell's text against the pattern. A cell whose value has no
// string representation never matches, including for the negated modes: an
// absent value fails every pattern test rather than passing the negations.
func (f *PatternFilter) Match(c Cell) bool {
	text, ok := c.Value.Text()
	if !ok {
		return false
	}
	switch f.mode {
	case PatternStartsWith:
		return strings.HasPrefix(text, f.pattern)
	case PatternEndsWith:
		return strings.HasSuffix(text, f.pattern)
	case PatternContains:
		return strings.Contains(text, f.pattern)
	case PatternNotStartsWith:
		return !strings.HasPrefix(text, f.pattern)
	case PatternNotEndsWith:
		return !strings.HasSuffix(text, f.pattern)
	case PatternNotContains:
		return !strings.Contains(text, f.pattern)
	default:
		panic(fmt.Sprintf("gridsheet: invalid pattern filter mode %d", f.mode))
	}
}
