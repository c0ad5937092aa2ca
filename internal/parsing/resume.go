package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/interview-agent/internal/skills"
	"github.com/jonathan/interview-agent/internal/types"
)

const maxProjectMentions = 5

var (
	yearsPattern   = regexp.MustCompile(`(\d{1,2})\+?\s*(years|yrs)`)
	projectMarkers = []string{"project", "built", "developed", "implemented", "launched"}
)

// ParseResume extracts a candidate profile from resume text. Empty text yields
// an empty profile.
func ParseResume(text string) types.CandidateProfile {
	return types.CandidateProfile{
		Skills:          ExtractSkills(text),
		YearsExperience: ExtractYearsOfExperience(text),
		ProjectMentions: ExtractProjects(text),
	}
}

// ExtractSkills returns the vocabulary skills mentioned in text.
func ExtractSkills(text string) []string {
	return skills.FindMentioned(NormalizeText(text))
}

// ExtractYearsOfExperience returns the first "N years" / "N+ yrs" figure in text, or 0.
func ExtractYearsOfExperience(text string) int {
	m := yearsPattern.FindStringSubmatch(NormalizeText(text))
	if m == nil {
		return 0
	}
	years, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return years
}

// ExtractProjects returns up to five distinct lines that read like project claims.
func ExtractProjects(text string) []string {
	var projects []string
	for _, line := range splitLines(text) {
		lower := strings.ToLower(line)
		for _, marker := range projectMarkers {
			if strings.Contains(lower, marker) {
				projects = append(projects, line)
				break
			}
		}
	}
	projects = uniqueStrings(projects)
	if len(projects) > maxProjectMentions {
		projects = projects[:maxProjectMentions]
	}
	return projects
}
