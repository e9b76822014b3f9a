package main

import (
	"github.com/wfunc/triviaserver/config"
	"github.com/wfunc/triviaserver/logger"
	"github.com/wfunc/triviaserver/persistence"
	"github.com/wfunc/triviaserver/server"
	"github.com/wfunc/triviaserver/trivia"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	db, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	// Initialize question provider
	provider := trivia.NewClient(cfg.Trivia.BaseURL, cfg.Trivia.CategoriesURL, cfg.Trivia.Timeout)

	// Initialize trivia server
	gameServer := server.NewGameServer(cfg, db, provider)

	// Start Server
	logger.Log.Infof("Starting trivia server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
