// game/scoring.go
package game

import (
	"math"
	"time"
)

const (
	QuestionsPerGame    = 10
	TimePerQuestion     = 15.0 // seconds
	BaseScore           = 100.0
	TimeBonusMultiplier = 50.0

	// GracePeriod is added to the question time to form the advance
	// deadline; SettleDelay is the pause between a question resolving and
	// the next one going out.
	GracePeriod = 2 * time.Second
	SettleDelay = 2 * time.Second

	// QuestionDeadline bounds how long a single question can stay open.
	QuestionDeadline = time.Duration(TimePerQuestion)*time.Second + GracePeriod
)

// DifficultyMultipliers scale the score per difficulty. Unknown difficulties
// fall back to 1.
var DifficultyMultipliers = map[string]float64{
	"easy":   1,
	"medium": 1.5,
	"hard":   2,
}

// Score computes the points for one answer. Faster answers earn a larger
// time bonus; incorrect answers earn nothing. math.Round keeps the
// half-away-from-zero rounding identical everywhere scores are computed.
func Score(timeSpent float64, difficulty string, isCorrect bool) int {
	if !isCorrect {
		return 0
	}

	timeRemaining := TimePerQuestion - timeSpent
	if timeRemaining < 0 {
		timeRemaining = 0
	}
	timeBonus := (timeRemaining / TimePerQuestion) * TimeBonusMultiplier

	multiplier, ok := DifficultyMultipliers[difficulty]
	if !ok {
		multiplier = 1
	}

	return int(math.Round((BaseScore + timeBonus) * multiplier))
}
