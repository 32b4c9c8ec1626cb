package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/e-motion/backend/internal/auth"
	"github.com/e-motion/backend/internal/config"
	"github.com/e-motion/backend/internal/emotions"
	"github.com/e-motion/backend/internal/httpapi"
	"github.com/e-motion/backend/internal/obs"
	"github.com/e-motion/backend/internal/users"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, auth.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	var usersStore users.Store = users.NewMemoryStore()
	var emotionsStore emotions.Store = emotions.NewMemoryStore()
	if db != nil {
		usersStore = users.NewPGStore(db)
		emotionsStore = emotions.NewPGStore(db)
	}

	usersSvc, err := users.NewService(usersStore)
	if err != nil {
		log.Fatalf("users service: %v", err)
	}
	emotionsSvc, err := emotions.NewService(emotionsStore)
	if err != nil {
		log.Fatalf("emotions service: %v", err)
	}

	api := httpapi.New(cfg, httpapi.ReadyProbe{DB: db}, version, tokens, usersSvc, emotionsSvc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting e-motion-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
