// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/triviaserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// 定义GORM模型
type UserModel struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     string `gorm:"uniqueIndex;not null"`
	Nickname   string `gorm:"not null"`
	TotalGames int    `gorm:"default:0"`
	TotalWins  int    `gorm:"default:0"`
	TotalScore int    `gorm:"default:0"`
	BestScore  int    `gorm:"default:0"`
	CreatedAt  time.Time
	LastActive time.Time
}

type GameResultModel struct {
	ID         uint                  `gorm:"primaryKey"`
	GameID     string                `gorm:"uniqueIndex;not null"`
	RoomID     string                `gorm:"index;not null"`
	Category   int                   `gorm:"not null"`
	Difficulty string                `gorm:"not null"`
	Players    []models.PlayerResult `gorm:"type:jsonb;serializer:json"`
	Winner     string
	StartedAt  time.Time
	FinishedAt time.Time
	CreatedAt  time.Time
}

type RankingModel struct {
	ID       uint   `gorm:"primaryKey"`
	Bucket   string `gorm:"uniqueIndex:idx_bucket_user;not null"`
	UserID   string `gorm:"uniqueIndex:idx_bucket_user;not null"`
	Nickname string `gorm:"not null"`
	Score    int    `gorm:"default:0"`
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&GameResultModel{},
		&RankingModel{},
	)
}

// UpsertUser 保存玩家档案
func (p *GormPostgreSQL) UpsertUser(user *models.UserProfile) error {
	var record UserModel
	result := p.db.Where("user_id = ?", user.UserID).First(&record)

	if result.Error == gorm.ErrRecordNotFound {
		record = UserModel{
			UserID:     user.UserID,
			Nickname:   user.Nickname,
			TotalGames: user.TotalGames,
			TotalWins:  user.TotalWins,
			TotalScore: user.TotalScore,
			BestScore:  user.BestScore,
			LastActive: time.Now(),
		}
		return p.db.Create(&record).Error
	} else if result.Error != nil {
		return result.Error
	}

	record.Nickname = user.Nickname
	record.LastActive = time.Now()
	return p.db.Save(&record).Error
}

// GetUser 加载玩家档案
func (p *GormPostgreSQL) GetUser(userID string) (*models.UserProfile, error) {
	var record UserModel
	if err := p.db.Where("user_id = ?", userID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &models.UserProfile{
		UserID:     record.UserID,
		Nickname:   record.Nickname,
		TotalGames: record.TotalGames,
		TotalWins:  record.TotalWins,
		TotalScore: record.TotalScore,
		BestScore:  record.BestScore,
		CreatedAt:  record.CreatedAt,
		LastActive: record.LastActive,
	}, nil
}

// UpdateUserStats 更新玩家战绩（事务内原子更新）
func (p *GormPostgreSQL) UpdateUserStats(userID string, score int, won bool) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var record UserModel
		if err := tx.Where("user_id = ?", userID).First(&record).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrRecordNotFound
			}
			return err
		}

		record.TotalGames++
		record.TotalScore += score
		if won {
			record.TotalWins++
		}
		if score > record.BestScore {
			record.BestScore = score
		}
		record.LastActive = time.Now()

		return tx.Save(&record).Error
	})
}

// SaveGameResult 保存游戏结果
func (p *GormPostgreSQL) SaveGameResult(result *models.GameResult) error {
	record := GameResultModel{
		GameID:     result.GameID,
		RoomID:     result.RoomID,
		Category:   result.Category,
		Difficulty: result.Difficulty,
		Players:    result.Players,
		Winner:     result.Winner,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}
	return p.db.Create(&record).Error
}

// IncrementRanking 累加榜单积分
func (p *GormPostgreSQL) IncrementRanking(bucket, userID, nickname string, delta int) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var record RankingModel
		result := tx.Where("bucket = ? AND user_id = ?", bucket, userID).First(&record)

		if result.Error == gorm.ErrRecordNotFound {
			record = RankingModel{
				Bucket:   bucket,
				UserID:   userID,
				Nickname: nickname,
				Score:    delta,
			}
			return tx.Create(&record).Error
		} else if result.Error != nil {
			return result.Error
		}

		record.Nickname = nickname
		return tx.Model(&record).Updates(map[string]interface{}{
			"nickname": nickname,
			"score":    gorm.Expr("score + ?", delta),
		}).Error
	})
}

// TopRankings 查询榜单
func (p *GormPostgreSQL) TopRankings(bucket string, limit int) ([]models.RankingEntry, error) {
	var records []RankingModel
	err := p.db.Where("bucket = ?", bucket).
		Order("score DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	entries := make([]models.RankingEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, models.RankingEntry{
			UserID:   r.UserID,
			Nickname: r.Nickname,
			Score:    r.Score,
		})
	}
	return entries, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
