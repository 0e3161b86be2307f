package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	"qrlink-backend/internal/infrastructure/queue"
)

// startServices ping Redis trước khi nhận job rồi mở health endpoint
func startServices(cfg *Config) error {
	log.Println("🚀 QR Link worker starting...")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		// managed Redis cũ không hỗ trợ CLIENT MAINT_NOTIFICATIONS
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}
	log.Println("✓ Redis: OK")

	go serveHealth(cfg)
	return nil
}

type queueStats struct {
	Pending int  `json:"pending"`
	Active  int  `json:"active"`
	Retry   int  `json:"retry"`
	Paused  bool `json:"paused"`
}

// serveHealth: /health cho liveness, /ready kèm số job từng queue
func serveHealth(cfg *Config) {
	inspector := asynq.NewInspector(cfg.Redis)
	defer inspector.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "UP", "service": "qrlink-worker"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		stats := make(map[string]queueStats)
		for _, name := range []string{queue.QueueDefault, queue.QueueLow} {
			info, err := inspector.GetQueueInfo(name)
			if errors.Is(err, asynq.ErrQueueNotFound) {
				// queue chưa có job nào
				stats[name] = queueStats{}
				continue
			}
			if err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "NOT_READY", "error": err.Error()})
				return
			}
			stats[name] = queueStats{Pending: info.Pending, Active: info.Active, Retry: info.Retry, Paused: info.Paused}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "READY", "queues": stats})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("[Health] Listening on :%s", cfg.HealthPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[Health] Stopped: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
