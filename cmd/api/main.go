package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/queuelinehq/queueline/internal/config"
	dbpkg "github.com/queuelinehq/queueline/internal/db"
	"github.com/queuelinehq/queueline/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		// Snapshot and wait caches degrade gracefully without redis.
		log.Printf("redis unavailable at %s: %v", cfg.RedisAddr, err)
	}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	app := routes.RegisterRoutes(r, db, rdb, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Deferred appointment actions survive restarts through rehydration.
	if err := app.Scheduler.Rehydrate(ctx); err != nil {
		log.Fatalf("failed to rehydrate scheduler: %v", err)
	}

	// Periodic refresh corrects estimate drift on otherwise idle boards.
	go app.Broadcaster.Run(ctx, 30*time.Second)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Printf("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	app.Scheduler.Close()
	app.Hub.Close()
}
