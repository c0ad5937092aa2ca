package skills

import (
	"sort"
	"strings"

	"github.com/jonathan/interview-agent/internal/types"
)

const (
	// Weight constants for skill sources (requirement level)
	weightRequired       = 1.0
	weightNiceToHave     = 0.5
	weightResponsibility = 0.3

	// Source constants
	SourceRequired       = "required"
	SourceNiceToHave     = "nice_to_have"
	SourceResponsibility = "responsibility"
)

// Target is a role skill weighted by how strongly the role asks for it.
type Target struct {
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Source  string  `json:"source"`
	Covered bool    `json:"covered"`
}

// BuildTargets weights the skills a role asks for and marks the ones the
// candidate already lists. Duplicates keep their strongest weight. The result is
// sorted by weight (descending), ties in vocabulary order.
func BuildTargets(role types.RoleProfile, candidate types.CandidateProfile) []Target {
	skillMap := make(map[string]*skillInfo)

	for _, s := range role.RequiredSkills {
		addOrUpdateSkill(skillMap, Normalize(s), weightRequired, SourceRequired)
	}
	for _, s := range role.NiceToHaveSkills {
		addOrUpdateSkill(skillMap, Normalize(s), weightNiceToHave, SourceNiceToHave)
	}
	for _, s := range FindMentioned(strings.Join(role.Responsibilities, ". ")) {
		addOrUpdateSkill(skillMap, s, weightResponsibility, SourceResponsibility)
	}

	have := toSet(candidate.Skills)
	targets := make([]Target, 0, len(skillMap))
	for name, info := range skillMap {
		if name == "" {
			continue
		}
		targets = append(targets, Target{
			Name:    name,
			Weight:  info.weight,
			Source:  info.source,
			Covered: have[name],
		})
	}

	sort.Slice(targets, func(i, j int) bool {
		if targets[i].Weight != targets[j].Weight {
			return targets[i].Weight > targets[j].Weight
		}
		return order(targets[i].Name) < order(targets[j].Name)
	})
	return targets
}

func order(name string) int {
	if i, ok := vocabIndex[name]; ok {
		return i
	}
	return len(Vocabulary)
}

// skillInfo holds temporary information about a skill during building
type skillInfo struct {
	weight float64
	source string
}

// addOrUpdateSkill adds a skill to the map or raises its weight when a stronger
// source mentions it again.
func addOrUpdateSkill(skillMap map[string]*skillInfo, skillName string, weight float64, source string) {
	if skillName == "" {
		return
	}
	if existing, exists := skillMap[skillName]; exists {
		if weight > existing.weight {
			existing.weight = weight
			existing.source = source
		}
		return
	}
	skillMap[skillName] = &skillInfo{weight: weight, source: source}
}
