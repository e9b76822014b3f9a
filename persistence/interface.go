// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/triviaserver/models"
)

// Database 数据库接口
type Database interface {
	UpsertUser(user *models.UserProfile) error
	GetUser(userID string) (*models.UserProfile, error)
	UpdateUserStats(userID string, score int, won bool) error
	SaveGameResult(result *models.GameResult) error
	IncrementRanking(bucket, userID, nickname string, delta int) error
	TopRankings(bucket string, limit int) ([]models.RankingEntry, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
