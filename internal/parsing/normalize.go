// Package parsing provides the rule-based profile extractor that turns resume and
// job-description text into candidate and role profiles. Every function is pure.
package parsing

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	sentenceBreaks = regexp.MustCompile(`[.!?\n]`)
)

// NormalizeText lowercases text and collapses runs of whitespace.
func NormalizeText(value string) string {
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "\r", " ")
	value = whitespaceRun.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// splitLines returns the trimmed, non-empty lines of text.
func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitSentences splits on sentence punctuation and newlines. Commas and
// semicolons do not end a sentence.
func splitSentences(text string) []string {
	raw := sentenceBreaks.Split(text, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// uniqueStrings keeps the first occurrence of every non-empty value.
func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
