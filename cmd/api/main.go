package main

import (
	"github.com/joho/godotenv"
	"github.com/mentorhive/achievements-backend/internal/config"
	"github.com/mentorhive/achievements-backend/internal/db"
	"github.com/mentorhive/achievements-backend/internal/logger"
	"github.com/mentorhive/achievements-backend/internal/model"
	"github.com/mentorhive/achievements-backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config load error: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	conn, err := db.Connect(cfg)
	if err != nil {
		logger.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.UserLevel{},
		&model.Notification{},
	); err != nil {
		logger.Fatalf("auto migrate error: %v", err)
	}

	srv := server.New(conn, cfg.FirebaseProjectID)

	addr := ":" + cfg.Port
	logger.Infof("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
