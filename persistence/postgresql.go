// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/triviaserver/models"
)

// PostgreSQL 数据库实现（database/sql）
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            user_id VARCHAR(255) UNIQUE NOT NULL,
            nickname VARCHAR(255) NOT NULL,
            total_games INT NOT NULL DEFAULT 0,
            total_wins INT NOT NULL DEFAULT 0,
            total_score INT NOT NULL DEFAULT 0,
            best_score INT NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            last_active TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_results (
            id SERIAL PRIMARY KEY,
            game_id VARCHAR(255) UNIQUE NOT NULL,
            room_id VARCHAR(255) NOT NULL,
            category INT NOT NULL,
            difficulty VARCHAR(50) NOT NULL,
            players JSONB NOT NULL,
            winner VARCHAR(255),
            started_at TIMESTAMP,
            finished_at TIMESTAMP,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS rankings (
            id SERIAL PRIMARY KEY,
            bucket VARCHAR(255) NOT NULL,
            user_id VARCHAR(255) NOT NULL,
            nickname VARCHAR(255) NOT NULL,
            score INT NOT NULL DEFAULT 0,
            UNIQUE (bucket, user_id)
        )
    `)
	if err != nil {
		return err
	}

	// 创建索引以提高查询性能
	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_game_results_room_id ON game_results(room_id);
        CREATE INDEX IF NOT EXISTS idx_game_results_created_at ON game_results(created_at);
        CREATE INDEX IF NOT EXISTS idx_rankings_bucket_score ON rankings(bucket, score DESC);
    `)

	return err
}

// UpsertUser 保存玩家档案
func (p *PostgreSQL) UpsertUser(user *models.UserProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO users (user_id, nickname)
        VALUES ($1, $2)
        ON CONFLICT (user_id)
        DO UPDATE SET nickname = $2, last_active = CURRENT_TIMESTAMP
    `

	_, err := p.db.ExecContext(ctx, query, user.UserID, user.Nickname)
	return err
}

// GetUser 加载玩家档案
func (p *PostgreSQL) GetUser(userID string) (*models.UserProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var u models.UserProfile
	query := `
        SELECT user_id, nickname, total_games, total_wins, total_score, best_score, created_at, last_active
        FROM users WHERE user_id = $1
    `
	err := p.db.QueryRowContext(ctx, query, userID).Scan(
		&u.UserID, &u.Nickname, &u.TotalGames, &u.TotalWins,
		&u.TotalScore, &u.BestScore, &u.CreatedAt, &u.LastActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateUserStats 更新玩家战绩
func (p *PostgreSQL) UpdateUserStats(userID string, score int, won bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	winInc := 0
	if won {
		winInc = 1
	}

	query := `
        UPDATE users SET
            total_games = total_games + 1,
            total_wins = total_wins + $2,
            total_score = total_score + $3,
            best_score = GREATEST(best_score, $3),
            last_active = CURRENT_TIMESTAMP
        WHERE user_id = $1
    `

	result, err := p.db.ExecContext(ctx, query, userID, winInc, score)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SaveGameResult 保存游戏结果
func (p *PostgreSQL) SaveGameResult(result *models.GameResult) error {
	playersJSON, err := json.Marshal(result.Players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO game_results (game_id, room_id, category, difficulty, players, winner, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err = p.db.ExecContext(ctx, query,
		result.GameID, result.RoomID, result.Category, result.Difficulty,
		playersJSON, result.Winner, result.StartedAt, result.FinishedAt)
	return err
}

// IncrementRanking 累加榜单积分 (UPSERT)
func (p *PostgreSQL) IncrementRanking(bucket, userID, nickname string, delta int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO rankings (bucket, user_id, nickname, score)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (bucket, user_id)
        DO UPDATE SET score = rankings.score + $4, nickname = $3
    `

	_, err := p.db.ExecContext(ctx, query, bucket, userID, nickname, delta)
	return err
}

// TopRankings 查询榜单
func (p *PostgreSQL) TopRankings(bucket string, limit int) ([]models.RankingEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        SELECT user_id, nickname, score FROM rankings
        WHERE bucket = $1 ORDER BY score DESC LIMIT $2
    `
	rows, err := p.db.QueryContext(ctx, query, bucket, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.RankingEntry
	for rows.Next() {
		var e models.RankingEntry
		if err := rows.Scan(&e.UserID, &e.Nickname, &e.Score); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
