// services/result_service.go
package services

import (
	"fmt"
	"time"

	"github.com/wfunc/triviaserver/logger"
	"github.com/wfunc/triviaserver/models"
	"github.com/wfunc/triviaserver/persistence"
)

// ResultService persists finished games: the immutable result record,
// per-user stats and the ranking buckets. It is invoked best-effort after
// game:finished; a failed write is logged, never surfaced to players.
type ResultService struct {
	db persistence.Database
}

func NewResultService(db persistence.Database) *ResultService {
	return &ResultService{db: db}
}

// RecordGameResult applies every write for one finished game. Writes are
// independent: one failing does not stop the rest, and all failures are
// collected into the returned error for the caller to log.
func (s *ResultService) RecordGameResult(result *models.GameResult) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(s.db.SaveGameResult(result))

	categoryBucket := ""
	if result.Category > 0 {
		categoryBucket = models.CategoryBucket(result.Category)
	}
	weekBucket := models.WeekBucket(time.Now())

	for _, p := range result.Players {
		won := p.UserID == result.Winner

		if err := s.db.UpdateUserStats(p.UserID, p.Score, won); err != nil {
			keep(fmt.Errorf("update stats for %s: %w", p.UserID, err))
		}
		if err := s.db.IncrementRanking(models.OverallBucket, p.UserID, p.Nickname, p.Score); err != nil {
			keep(fmt.Errorf("overall ranking for %s: %w", p.UserID, err))
		}
		if categoryBucket != "" {
			if err := s.db.IncrementRanking(categoryBucket, p.UserID, p.Nickname, p.Score); err != nil {
				keep(fmt.Errorf("category ranking for %s: %w", p.UserID, err))
			}
		}
		if err := s.db.IncrementRanking(weekBucket, p.UserID, p.Nickname, p.Score); err != nil {
			keep(fmt.Errorf("weekly ranking for %s: %w", p.UserID, err))
		}
	}

	return firstErr
}

// RecordGameResultAsync runs RecordGameResult on its own goroutine and logs
// any failure. The live game flow never waits on it.
func (s *ResultService) RecordGameResultAsync(result *models.GameResult) {
	go func() {
		if err := s.RecordGameResult(result); err != nil {
			logger.Log.Errorf("Failed to persist result for game %s: %v", result.GameID, err)
		}
	}()
}

// TopRankings 查询榜单
func (s *ResultService) TopRankings(bucket string, limit int) ([]models.RankingEntry, error) {
	return s.db.TopRankings(bucket, limit)
}
