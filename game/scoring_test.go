package game

import (
	"testing"
)

func TestScore_KnownValues(t *testing.T) {
	cases := []struct {
		name       string
		timeSpent  float64
		difficulty string
		isCorrect  bool
		want       int
	}{
		{"instant easy", 0, "easy", true, 150},
		{"mid hard", 10, "hard", true, 300},
		{"slowest medium", 15, "medium", true, 150},
		{"instant hard", 0, "hard", true, 300},
		{"instant medium", 0, "medium", true, 225},
		{"slowest easy", 15, "easy", true, 100},
		{"incorrect earns nothing", 0, "hard", false, 0},
		{"unknown difficulty defaults to 1x", 0, "extreme", true, 150},
		{"overtime clamps to base", 30, "easy", true, 100},
	}

	for _, tc := range cases {
		got := Score(tc.timeSpent, tc.difficulty, tc.isCorrect)
		if got != tc.want {
			t.Errorf("%s: Score(%v, %q, %v) = %d, want %d",
				tc.name, tc.timeSpent, tc.difficulty, tc.isCorrect, got, tc.want)
		}
	}
}

func TestScore_MonotonicInTimeSpent(t *testing.T) {
	for _, difficulty := range []string{"easy", "medium", "hard"} {
		prev := Score(0, difficulty, true)
		for spent := 1; spent <= 15; spent++ {
			current := Score(float64(spent), difficulty, true)
			if current > prev {
				t.Errorf("Score(%d, %q) = %d exceeds Score(%d) = %d; must be non-increasing",
					spent, difficulty, current, spent-1, prev)
			}
			prev = current
		}
	}
}

func TestScore_IncorrectAlwaysZero(t *testing.T) {
	for _, difficulty := range []string{"easy", "medium", "hard", "unknown"} {
		for spent := 0; spent <= 15; spent += 5 {
			if got := Score(float64(spent), difficulty, false); got != 0 {
				t.Errorf("Score(%d, %q, false) = %d, want 0", spent, difficulty, got)
			}
		}
	}
}
