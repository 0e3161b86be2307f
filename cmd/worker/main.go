package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"qrlink-backend/pkg/container"
	"qrlink-backend/pkg/logger"
)

// Worker xử lý scan queue (SCAN_MODE=queue) và dọn logo mồ côi theo cron
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using system environment variables")
	}
	logger.Init(os.Getenv("APP_ENV"))

	c, err := container.NewContainer()
	if err != nil {
		log.Fatalf("[Container] Failed to initialize: %v", err)
	}
	defer c.Cleanup()

	cfg := loadConfig(c.Config)
	if err := startServices(cfg); err != nil {
		log.Fatalf("[Startup] %v", err)
	}

	srv := setupAsynqServer(cfg, initializeHandlers(c))
	scheduler := setupScheduler(cfg, c.Config.Jobs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("[Shutdown] Gracefully stopping...")
	// ngừng enqueue trước, rồi chờ job đang chạy
	scheduler.Shutdown()
	srv.Shutdown()
	log.Println("[Shutdown] ✓ Stopped")
}
