// models/models.go
package models

import (
	"fmt"
	"time"
)

// UserProfile 玩家档案
type UserProfile struct {
	UserID     string    `json:"userId"`
	Nickname   string    `json:"nickname"`
	TotalGames int       `json:"totalGames"`
	TotalWins  int       `json:"totalWins"`
	TotalScore int       `json:"totalScore"`
	BestScore  int       `json:"bestScore"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}

// UserStats are the values derived from a profile.
type UserStats struct {
	WinRate      float64 `json:"winRate"`
	AverageScore int     `json:"averageScore"`
}

// Stats computes the derived numbers; both are zero with no games played.
func (u *UserProfile) Stats() UserStats {
	if u.TotalGames == 0 {
		return UserStats{}
	}
	return UserStats{
		WinRate:      float64(u.TotalWins) / float64(u.TotalGames) * 100,
		AverageScore: u.TotalScore / u.TotalGames,
	}
}

// PlayerResult 单局玩家成绩
type PlayerResult struct {
	UserID         string `json:"userId"`
	Nickname       string `json:"nickname"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalQuestions int    `json:"totalQuestions"`
}

// GameResult 游戏结果记录（不可变，追加写入）
type GameResult struct {
	GameID     string         `json:"gameId"`
	RoomID     string         `json:"roomId"`
	Category   int            `json:"category"`
	Difficulty string         `json:"difficulty"`
	Players    []PlayerResult `json:"players"`
	Winner     string         `json:"winner"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// RankingEntry is one row of a ranking bucket.
type RankingEntry struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// Ranking buckets. Scores accumulate per user within a bucket.
const OverallBucket = "overall"

func CategoryBucket(categoryID int) string {
	return fmt.Sprintf("category:%d", categoryID)
}

// WeekBucket keys a week by ISO year and week number.
func WeekBucket(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("weekly:%d-W%02d", year, week)
}
