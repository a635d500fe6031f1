package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/linkora/linkora-server/cache"
	"github.com/linkora/linkora-server/cmd/api"
	"github.com/linkora/linkora-server/cmd/models"
	"github.com/linkora/linkora-server/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations(logger)
			return
		default:
			logger.Fatal("unknown command", zap.String("command", os.Args[1]))
		}
	}

	startServer(logger)
}

func runMigrations(logger *zap.Logger) {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		logger.Fatal("database initialization error", zap.Error(err))
	}
	defer closeDB(DB, logger)

	if err := performMigrations(DB, logger); err != nil {
		logger.Fatal("migration error", zap.Error(err))
	}
	logger.Info("migrations completed successfully")
}

func performMigrations(DB *gorm.DB, logger *zap.Logger) error {
	migrations := []struct {
		model interface{}
		name  string
	}{
		{&models.User{}, "User"},
		{&models.Follow{}, "Follow"},
		{&models.Post{}, "Post"},
		{&models.Like{}, "Like"},
		{&models.Comment{}, "Comment"},
	}

	for _, m := range migrations {
		logger.Info("migrating table", zap.String("table", m.name))
		if err := DB.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", m.name, err)
		}
	}

	if err := os.MkdirAll("uploads/images", 0755); err != nil {
		return fmt.Errorf("could not create upload directory: %w", err)
	}

	return nil
}

func startServer(logger *zap.Logger) {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		logger.Fatal("database initialization error", zap.Error(err))
	}
	defer closeDB(DB, logger)
	logger.Info("connected to the database")

	feedCache, err := cache.New(os.Getenv("REDIS_URL"))
	if err != nil {
		logger.Fatal("redis initialization error", zap.Error(err))
	}
	if feedCache != nil {
		defer feedCache.Close()
		logger.Info("feed cache enabled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewAPIServer(":"+port, DB, feedCache, logger)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")
}

func closeDB(DB *gorm.DB, logger *zap.Logger) {
	sqlDB, err := DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
	logger.Info("database connection closed")
}
