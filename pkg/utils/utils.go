package utils

import "strings"

// EstimateTokens provides a rough estimate of the number of tokens in a given text.
// 4 characters per token is close enough for prompt budgeting.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// HeadLines returns at most n leading lines of s and whether anything was cut.
func HeadLines(s string, n int) (string, bool) {
	if n <= 0 {
		return "", s != ""
	}
	lines := strings.SplitAfter(s, "\n")
	if len(lines) <= n {
		return s, false
	}
	return strings.Join(lines[:n], ""), true
}
