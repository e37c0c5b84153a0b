package search

import (
	"strings"
)

// Query describes one search. It is immutable once a session starts.
type Query struct {
	Pattern       string
	MatchNames    bool
	MatchNotes    bool
	CaseSensitive bool
	Root          string
}

// MatchKind records which dimension of an entry matched.
type MatchKind int

const (
	MatchedName MatchKind = iota + 1
	MatchedNote
	MatchedBoth
)

func (k MatchKind) String() string {
	switch k {
	case MatchedName:
		return "name"
	case MatchedNote:
		return "note"
	case MatchedBoth:
		return "name+note"
	default:
		return "none"
	}
}

// Match is one search hit. Excerpt carries the first matching note line so
// the UI can show context without re-reading the attribute.
type Match struct {
	Path    string
	Kind    MatchKind
	Excerpt string
}

// Diag reports a subtree the search had to skip.
type Diag struct {
	Path string
	Err  error
}

const excerptRunes = 120

// evaluator turns a query pattern into a predicate over a single string:
// substring containment, case-folded unless the query is case-sensitive.
type evaluator struct {
	pattern string
	fold    bool
}

func newEvaluator(q Query) evaluator {
	e := evaluator{pattern: q.Pattern, fold: !q.CaseSensitive}
	if e.fold {
		e.pattern = strings.ToLower(e.pattern)
	}
	return e
}

func (e evaluator) matches(s string) bool {
	if e.pattern == "" {
		return false
	}
	if e.fold {
		s = strings.ToLower(s)
	}
	return strings.Contains(s, e.pattern)
}

// excerpt returns the first note line containing the pattern, trimmed to a
// displayable length.
func (e evaluator) excerpt(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if !e.matches(line) {
			continue
		}
		line = strings.TrimSpace(line)
		if runes := []rune(line); len(runes) > excerptRunes {
			return string(runes[:excerptRunes])
		}
		return line
	}
	return ""
}
