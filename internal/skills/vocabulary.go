// Package skills provides the skill vocabulary, alias normalization and the
// keyword matching used to read skills out of resumes, job descriptions and answers.
package skills

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Vocabulary is the ordered list of canonical skill keywords. Matching results
// are always returned in this order.
var Vocabulary = []string{
	"react",
	"javascript",
	"typescript",
	"node",
	"express",
	"next.js",
	"redux",
	"css",
	"html",
	"tailwind",
	"graphql",
	"rest",
	"sql",
	"postgres",
	"mongodb",
	"docker",
	"kubernetes",
	"aws",
	"gcp",
	"testing",
	"jest",
	"cypress",
	"microservices",
	"golang",
	"python",
	"java",
	"redis",
	"kafka",
	"terraform",
	"ansible",
	"jenkins",
	"ci/cd",
	"linux",
	"azure",
	"prometheus",
	"grafana",
	"selenium",
	"playwright",
}

// aliases maps common variants to a canonical vocabulary keyword
var aliases = map[string]string{
	"reactjs":             "react",
	"react.js":            "react",
	"js":                  "javascript",
	"ts":                  "typescript",
	"nodejs":              "node",
	"node.js":             "node",
	"nextjs":              "next.js",
	"postgresql":          "postgres",
	"mongo":               "mongodb",
	"k8s":                 "kubernetes",
	"amazon web services": "aws",
	"google cloud":        "gcp",
	"go lang":             "golang",
	"restful":             "rest",
	"unit testing":        "testing",
	"continuous delivery": "ci/cd",
}

// displayNames holds spellings that title casing gets wrong
var displayNames = map[string]string{
	"javascript": "JavaScript",
	"typescript": "TypeScript",
	"node":       "Node.js",
	"next.js":    "Next.js",
	"css":        "CSS",
	"html":       "HTML",
	"graphql":    "GraphQL",
	"rest":       "REST",
	"sql":        "SQL",
	"postgres":   "PostgreSQL",
	"mongodb":    "MongoDB",
	"aws":        "AWS",
	"gcp":        "GCP",
	"golang":     "Go",
	"ci/cd":      "CI/CD",
}

var (
	vocabIndex = buildIndex()
	patterns   = buildPatterns()
)

func buildIndex() map[string]int {
	idx := make(map[string]int, len(Vocabulary))
	for i, s := range Vocabulary {
		idx[s] = i
	}
	return idx
}

func buildPatterns() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(Vocabulary)+len(aliases))
	for _, s := range Vocabulary {
		out[s] = wordPattern(s)
	}
	for a := range aliases {
		out[a] = wordPattern(a)
	}
	return out
}

func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
}

// Normalize maps a skill name or alias to its canonical keyword. Unknown names
// are returned lowercased and trimmed.
func Normalize(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return ""
	}
	if canonical, ok := aliases[lower]; ok {
		return canonical
	}
	return lower
}

// IsKnown reports whether name normalizes to a vocabulary keyword.
func IsKnown(name string) bool {
	_, ok := vocabIndex[Normalize(name)]
	return ok
}

// DisplayName returns a human-facing spelling of a skill.
func DisplayName(name string) string {
	canonical := Normalize(name)
	if d, ok := displayNames[canonical]; ok {
		return d
	}
	return cases.Title(language.English).String(canonical)
}

// FindMentioned returns the vocabulary skills mentioned in text, matched on word
// boundaries, deduplicated and in vocabulary order.
func FindMentioned(text string) []string {
	normalized := strings.ToLower(text)
	if strings.TrimSpace(normalized) == "" {
		return []string{}
	}

	found := make(map[string]bool)
	for _, s := range Vocabulary {
		if patterns[s].MatchString(normalized) {
			found[s] = true
		}
	}
	for alias, canonical := range aliases {
		// two-letter aliases collide with file extensions such as next.js
		if len(alias) < 3 {
			continue
		}
		if !found[canonical] && patterns[alias].MatchString(normalized) {
			found[canonical] = true
		}
	}

	out := make([]string, 0, len(found))
	for _, s := range Vocabulary {
		if found[s] {
			out = append(out, s)
		}
	}
	return out
}

// Mentions reports whether text mentions the given skill.
func Mentions(text, skill string) bool {
	canonical := Normalize(skill)
	for _, s := range FindMentioned(text) {
		if s == canonical {
			return true
		}
	}
	return false
}
