package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"qrlink-backend/pkg/container"
)

const shutdownTimeout = 10 * time.Second

// Serve build container, chạy HTTP server và chờ SIGINT/SIGTERM
// Thứ tự shutdown: ngừng nhận request -> drain scan goroutine -> đóng store
func Serve() error {
	appContainer, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer appContainer.Cleanup()

	port := appContainer.Config.App.Port
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           SetupRouter(appContainer),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second, // upload logo 5MB
		WriteTimeout:      30 * time.Second, // PNG 2000px có logo
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server listening on :%s (env: %s)", port, appContainer.Config.App.Environment)
		log.Printf("🔗 QR payload base: %s/r/{slug}", appContainer.Config.App.PublicBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	// redirect cuối cùng có thể vừa spawn scan goroutine
	if err := appContainer.Resolver.Drain(shutdownCtx); err != nil {
		log.Printf("⚠️  Pending scans dropped: %v", err)
	}

	log.Println("✅ Server exited gracefully")
	return nil
}
