package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Matcher decides whether a search term refers to a symbol name.
type Matcher interface {
	Matches(term, identifier string) bool
}

// TermMatcher matches case-insensitively on substrings and on stemmed
// identifier words, so "foo" matches "fooBar" and "users" matches "getUser".
type TermMatcher struct {
	// MinSubstring is the shortest term matched as a raw substring.
	// Shorter terms must match a whole word.
	MinSubstring int
}

// NewTermMatcher returns the default matcher.
func NewTermMatcher() TermMatcher {
	return TermMatcher{MinSubstring: 3}
}

func (m TermMatcher) Matches(term, identifier string) bool {
	term = strings.TrimSpace(term)
	if term == "" || identifier == "" {
		return false
	}

	foldedTerm := fold(term)
	foldedIdent := fold(identifier)
	if foldedTerm == foldedIdent {
		return true
	}
	if len(foldedTerm) >= m.MinSubstring && strings.Contains(foldedIdent, foldedTerm) {
		return true
	}

	termWords := SplitWords(term)
	if len(termWords) == 0 {
		return false
	}
	identWords := SplitWords(identifier)
	for _, tw := range termWords {
		found := false
		for _, iw := range identWords {
			if wordsMatch(tw, iw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// SplitWords splits an identifier or phrase on case changes and on any
// rune that is neither a letter nor a digit. Words are case-folded.
func SplitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, fold(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// fooBar | HTTPServer -> HTTP Server
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

func wordsMatch(a, b string) bool {
	if a == b {
		return true
	}
	sa, sb := stem(a), stem(b)
	if sa == sb {
		return true
	}
	// parsed -> pars, parse
	if len(sa) >= 4 && strings.HasPrefix(b, sa) {
		return true
	}
	return len(sb) >= 4 && strings.HasPrefix(a, sb)
}

// stem strips a few common English suffixes. It is deliberately crude.
func stem(w string) string {
	n := len(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:n-3] + "y"
	case n > 5 && strings.HasSuffix(w, "ing"):
		return w[:n-3]
	case n > 4 && strings.HasSuffix(w, "ed"):
		return w[:n-2]
	case n > 4 && (strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "xes") || strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes") || strings.HasSuffix(w, "zes")):
		return w[:n-2]
	case n > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:n-1]
	}
	return w
}
