package engine

import "math"

// Scoring constants, matching the original game's tuning.
const (
	greenLetterBase   = 50
	yellowLetterBase  = 20
	perfectGuessBonus = 200
	comboMultiplier   = 1.2
	maxTimeBonus      = 100
	timePenaltyStart  = 10 // seconds; under this a speed bonus applies
	timePenaltyMax    = 60 // seconds; the slow penalty saturates here
)

// Breakdown itemizes the points awarded for a single guess.
type Breakdown struct {
	Green     int `json:"green"`
	Yellow    int `json:"yellow"`
	Base      int `json:"base"`
	TimeBonus int `json:"timeBonus"`
	Total     int `json:"total"`
}

// Score converts a guess's feedback plus the elapsed time into points.
// Pure and deterministic: same inputs, same breakdown.
func Score(fb Feedback, elapsedSeconds float64) Breakdown {
	var green, yellow int
	for _, m := range fb {
		switch m {
		case MarkCorrect:
			green++
		case MarkPresent:
			yellow++
		}
	}

	base := green*greenLetterBase + yellow*yellowLetterBase
	if green == len(fb) && len(fb) > 0 {
		base += perfectGuessBonus
	}
	if green > 0 && yellow > 0 {
		base = int(math.Floor(float64(base) * comboMultiplier))
	}

	var timeBonus int
	if elapsedSeconds <= timePenaltyStart {
		speedRatio := (timePenaltyStart - elapsedSeconds) / timePenaltyStart
		timeBonus = int(math.Floor(maxTimeBonus * math.Sqrt(speedRatio)))
	} else {
		penaltyRatio := math.Min((elapsedSeconds-timePenaltyStart)/(timePenaltyMax-timePenaltyStart), 1)
		timeBonus = -int(math.Floor(maxTimeBonus * penaltyRatio * 0.5))
	}

	total := base + timeBonus
	if total < 0 {
		total = 0
	}
	return Breakdown{Green: green, Yellow: yellow, Base: base, TimeBonus: timeBonus, Total: total}
}
