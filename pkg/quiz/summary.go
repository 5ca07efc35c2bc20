package quiz

import "math"

// Outcome classifies a finished session.
type Outcome string

const (
	OutcomePerfect Outcome = "perfect"
	OutcomeNormal  Outcome = "normal"
	OutcomePoor    Outcome = "poor"
)

// Outcome thresholds.
const (
	perfectPercentage = 100
	poorBelow         = 80
)

// Summary is the aggregate result of one finished session.
type Summary struct {
	CorrectCount    int     `json:"correct_count"`
	Total           int     `json:"total"`
	Percentage      int     `json:"percentage"`
	DurationSeconds int     `json:"duration_seconds"`
	Outcome         Outcome `json:"outcome"`
}

// Summarize reduces a result sequence and session duration to a Summary.
// Pure; requires a non-empty result sequence.
func Summarize(results []AttemptRecord, durationSeconds int) Summary {
	correct := 0
	for _, r := range results {
		if r.IsCorrect {
			correct++
		}
	}

	total := len(results)
	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(correct) / float64(total)))
	}

	outcome := OutcomeNormal
	switch {
	case pct == perfectPercentage:
		outcome = OutcomePerfect
	case pct < poorBelow:
		outcome = OutcomePoor
	}

	return Summary{
		CorrectCount:    correct,
		Total:           total,
		Percentage:      pct,
		DurationSeconds: durationSeconds,
		Outcome:         outcome,
	}
}
