package common

import "strings"

// FoldSet is a case-insensitive set of strings.
type FoldSet map[string]struct{}

// NewFoldSet builds a FoldSet from values, ignoring blanks.
func NewFoldSet(values ...string) FoldSet {
	s := make(FoldSet, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Contains reports whether v matches a member regardless of case and surrounding space.
func (s FoldSet) Contains(v string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
