package types

// Competency is the tag a question is scored under.
type Competency string

// Competencies used by the built-in banks and the personalized questions.
const (
	CompetencyTechnical      Competency = "technical"
	CompetencyBehavioral     Competency = "behavioral"
	CompetencyCommunication  Competency = "communication"
	CompetencyProblemSolving Competency = "problem-solving"
	CompetencyAdaptability   Competency = "adaptability"
	// CompetencyGeneral is used when a record carries no tag
	CompetencyGeneral Competency = "general"
)

// OrGeneral returns the competency, or CompetencyGeneral when empty.
func (c Competency) OrGeneral() Competency {
	if c == "" {
		return CompetencyGeneral
	}
	return c
}

// QuestionKind distinguishes planned questions from follow-ups.
type QuestionKind string

const (
	// KindMain is a planned question
	KindMain QuestionKind = "main"
	// KindFollowUp is a follow-up that was part of the plan from the start
	KindFollowUp QuestionKind = "followup"
	// KindDynamicFollowUp is a follow-up spliced in after a scored answer
	KindDynamicFollowUp QuestionKind = "dynamic_followup"
)

// IsFollowUp reports whether the kind is one of the follow-up kinds.
func (k QuestionKind) IsFollowUp() bool {
	return k == KindFollowUp || k == KindDynamicFollowUp
}

// QuestionSource records where a question came from.
type QuestionSource string

// Question provenance values.
const (
	SourceIntro         QuestionSource = "intro"
	SourceTemplate      QuestionSource = "template"
	SourceResumeJD      QuestionSource = "resume+jd"
	SourceJDGap         QuestionSource = "jd-gap"
	SourceResumeProject QuestionSource = "resume-project"
	SourceAdvisor       QuestionSource = "advisor"
	SourceFollowUp      QuestionSource = "follow-up"
)

// QuestionRecord is one entry of an interview plan. Records are never mutated once created.
type QuestionRecord struct {
	ID           string         `json:"id"`
	Prompt       string         `json:"prompt"`
	Competency   Competency     `json:"competency"`
	Kind         QuestionKind   `json:"kind"`
	Source       QuestionSource `json:"source,omitempty"`
	ParentPrompt string         `json:"parent_prompt,omitempty"`
	SkillTag     string         `json:"skill_tag,omitempty"`
}
