package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"taskman/internal/config"
	"taskman/internal/database"
	"taskman/internal/services/task"
	"taskman/internal/services/user"
	"taskman/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx := context.Background()

	// Initialize database
	db, err := database.InitDB(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Create repository wrapping the database
	repo := database.NewRepository(db)

	// Wire services over the shared repository
	taskService := task.NewService(repo)
	userService := user.NewService(repo)

	menu := ui.New(os.Stdin, os.Stdout, taskService, userService)
	if err := menu.Run(ctx); err != nil {
		log.Fatalf("Error running task manager: %v", err)
	}
}
