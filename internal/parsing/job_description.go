package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/interview-agent/internal/skills"
	"github.com/jonathan/interview-agent/internal/types"
)

const maxResponsibilities = 6

var (
	requiredMarkers   = []string{"must", "required", "strong", "need", "minimum"}
	niceToHaveMarkers = []string{"preferred", "plus", "good to have", "nice to have"}
	responsibilityRe  = regexp.MustCompile(`(?i)build|design|deliver|own|improve|lead|collaborate`)
)

// requirementLevel is how a sentence frames the skills it mentions
type requirementLevel int

const (
	levelNeutral requirementLevel = iota
	levelRequired
	levelNiceToHave
)

// classifySentence decides the requirement level of a normalized sentence.
// Required markers win over nice-to-have markers.
func classifySentence(normalized string) requirementLevel {
	for _, marker := range requiredMarkers {
		if strings.Contains(normalized, marker) {
			return levelRequired
		}
	}
	for _, marker := range niceToHaveMarkers {
		if strings.Contains(normalized, marker) {
			return levelNiceToHave
		}
	}
	return levelNeutral
}

// ParseJobDescription extracts a role profile from job-description text. A skill
// can be both required and nice-to-have when different sentences say so.
func ParseJobDescription(text string) types.RoleProfile {
	sentences := splitSentences(text)

	required := make([]string, 0)
	nice := make([]string, 0)
	for _, sentence := range sentences {
		normalized := NormalizeText(sentence)
		mentioned := skills.FindMentioned(normalized)
		if len(mentioned) == 0 {
			continue
		}
		switch classifySentence(normalized) {
		case levelRequired:
			required = append(required, mentioned...)
		case levelNiceToHave:
			nice = append(nice, mentioned...)
		}
	}

	responsibilities := make([]string, 0)
	for _, sentence := range sentences {
		if responsibilityRe.MatchString(sentence) {
			responsibilities = append(responsibilities, sentence)
		}
		if len(responsibilities) == maxResponsibilities {
			break
		}
	}

	return types.RoleProfile{
		RequiredSkills:   uniqueStrings(required),
		NiceToHaveSkills: uniqueStrings(nice),
		Responsibilities: uniqueStrings(responsibilities),
	}
}
