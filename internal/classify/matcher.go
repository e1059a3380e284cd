package classify

import (
	"fmt"
	"regexp"
)

// Matcher decides whether a path belongs to a class of files.
type Matcher interface {
	Matches(path string) bool
}

// MatcherFunc adapts an ordinary function to Matcher.
type MatcherFunc func(path string) bool

func (f MatcherFunc) Matches(path string) bool {
	return f(path)
}

// PatternMatcher matches paths against a regular expression.
type PatternMatcher struct {
	re *regexp.Regexp
}

// NewPatternMatcher compiles pattern into a PatternMatcher.
func NewPatternMatcher(pattern string) (*PatternMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return &PatternMatcher{re: re}, nil
}

func (m *PatternMatcher) Matches(path string) bool {
	return m.re.MatchString(path)
}

// String returns the source pattern.
func (m *PatternMatcher) String() string {
	return m.re.String()
}
