package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/reviewhub/reviewhub/internal/api"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/config"
	"github.com/reviewhub/reviewhub/internal/db"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	storage "github.com/reviewhub/reviewhub/pkg/redis"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/driver/postgres"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	auth.SetSecret(cfg.JWTSecret)

	log, err := logger.NewLogger()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	redisClient, err := storage.NewRedis(ctx, cfg.RedisAddr, "")
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize Redis")
		panic(err)
	}
	defer redisClient.Close(log)

	gormDB, err := db.NewDB(
		ctx,
		postgres.Open(cfg.DSN()),
		db.WithLogger(log),
		models.Migrate,
	)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize PostgreSQL database")
		panic("DB init failed")
	}
	defer db.CloseDB(gormDB, log)

	app := fiber.New(fiber.Config{
		AppName: "reviewhub",
	})

	email := utils.EmailConfig{
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
		AppURL:       cfg.AppURL,
		FromEmail:    cfg.FromEmail,
	}
	api.SetupRoutes(app, gormDB, redisClient, log, email)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info(ctx).Logs("Shutting down server")
		app.Shutdown()
	}()

	log.Info(ctx).WithFields(cfg.ServerAddr).Logs("Server listening on %s")
	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Server stopped")
	}
}
