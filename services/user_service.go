// services/user_service.go
package services

import (
	"github.com/wfunc/triviaserver/models"
	"github.com/wfunc/triviaserver/persistence"
)

type UserService struct {
	db persistence.Database
}

func NewUserService(db persistence.Database) *UserService {
	return &UserService{db: db}
}

// EnsureUser upserts the profile for a connecting player. New players get
// zeroed stats; returning players keep theirs and refresh the nickname.
func (s *UserService) EnsureUser(userID, nickname string) error {
	return s.db.UpsertUser(&models.UserProfile{
		UserID:   userID,
		Nickname: nickname,
	})
}

// GetUser 获取玩家档案
func (s *UserService) GetUser(userID string) (*models.UserProfile, error) {
	return s.db.GetUser(userID)
}

// GetUserWithStats 获取玩家档案和派生统计
func (s *UserService) GetUserWithStats(userID string) (*models.UserProfile, *models.UserStats, error) {
	profile, err := s.db.GetUser(userID)
	if err != nil {
		return nil, nil, err
	}
	stats := profile.Stats()
	return profile, &stats, nil
}
