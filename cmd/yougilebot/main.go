package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/bot"
	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/config"
	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/repository"
	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/yougile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local development convenience; absence of .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)

	client, err := yougile.NewClient(yougile.Config{
		BaseURL:         cfg.Yougile.BaseURL,
		APIKey:          cfg.Yougile.APIKey,
		ProjectID:       cfg.Yougile.ProjectID,
		DefaultColumnID: cfg.Yougile.DefaultColumnID,
	})
	if err != nil {
		log.Fatalf("yougile: %v", err)
	}

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, client)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	log.Println("YouGile bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
