package models

import (
	"testing"
	"time"
)

func TestUserProfile_Stats(t *testing.T) {
	empty := &UserProfile{}
	if stats := empty.Stats(); stats.WinRate != 0 || stats.AverageScore != 0 {
		t.Errorf("empty profile stats = %+v, want zeros", stats)
	}

	u := &UserProfile{TotalGames: 4, TotalWins: 3, TotalScore: 4200}
	stats := u.Stats()
	if stats.WinRate != 75 {
		t.Errorf("WinRate = %v, want 75", stats.WinRate)
	}
	if stats.AverageScore != 1050 {
		t.Errorf("AverageScore = %d, want 1050", stats.AverageScore)
	}
}

func TestBuckets(t *testing.T) {
	if got := CategoryBucket(18); got != "category:18" {
		t.Errorf("CategoryBucket(18) = %q", got)
	}

	// 2026-01-01 is a Thursday in ISO week 1
	day := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := WeekBucket(day); got != "weekly:2026-W01" {
		t.Errorf("WeekBucket = %q, want weekly:2026-W01", got)
	}

	// early January can belong to the previous ISO year
	edge := time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := WeekBucket(edge); got != "weekly:2026-W53" {
		t.Errorf("WeekBucket year edge = %q, want weekly:2026-W53", got)
	}
}
