package plan

import "math"

// DefaultDurationMinutes is used when no positive duration is configured
const DefaultDurationMinutes = 20

// Limits are the session caps derived from the interview duration.
type Limits struct {
	MaxMainQuestions int `json:"max_main_questions"`
	FollowUpBudget   int `json:"follow_up_budget"`
	TotalTurnsLimit  int `json:"total_turns_limit"`
}

// LimitsFor derives the caps for a duration in minutes: one main question per
// three minutes (4 to 9), a follow-up budget of half that (2 to 5), and four
// turns of slack on top of the main questions.
func LimitsFor(durationMinutes int) Limits {
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}
	maxMain := clamp(int(math.Floor(float64(durationMinutes)/3+0.5)), 4, 9)
	return Limits{
		MaxMainQuestions: maxMain,
		FollowUpBudget:   clamp(maxMain/2, 2, 5),
		TotalTurnsLimit:  maxMain + 4,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
