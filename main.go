package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mountly/coverage-backend/internal/app"
	"github.com/mountly/coverage-backend/internal/auth"
	"github.com/mountly/coverage-backend/internal/config"
	"github.com/mountly/coverage-backend/internal/db"
	"github.com/mountly/coverage-backend/internal/workers"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := db.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	auth.Init()
	workers.Init()

	a := app.New(cfg, db.DB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the boundary index so the first coverage request does not pay for it.
	go func() {
		n, err := a.Boundaries.Count(ctx)
		if err != nil {
			log.Printf("[zcta] warm-up failed: %v", err)
			return
		}
		log.Printf("[zcta] loaded %d boundaries", n)
	}()

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port :%s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
