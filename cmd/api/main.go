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

	"studentdocs.org/internal/audit"
	"studentdocs.org/internal/auth"
	"studentdocs.org/internal/config"
	"studentdocs.org/internal/docs"
	"studentdocs.org/internal/gateway"
	"studentdocs.org/internal/httpapi"
	"studentdocs.org/internal/obs"
	"studentdocs.org/internal/storage"
	"studentdocs.org/internal/throttle"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	closeAudit, err := audit.OpenFile(cfg.AuditLogPath)
	if err != nil {
		log.Fatalf("open audit log: %v", err)
	}
	defer func() { _ = closeAudit() }()

	var (
		db        *sql.DB
		userStore auth.Store
		docStore  docs.Store
	)
	if cfg.DatabaseDSN != "" {
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		userStore = auth.NewPGStore(db)
		docStore = docs.NewPGStore(db)
	} else {
		log.Println("no DSN configured, running with in-memory stores")
		userStore = auth.NewMemoryStore()
		docStore = docs.NewMemoryStore()
	}

	if cfg.SeedUsers {
		created, err := auth.EnsureSeedUsers(context.Background(), userStore, auth.DefaultSeedUsers)
		if err != nil {
			log.Fatalf("seed users: %v", err)
		}
		if created > 0 {
			log.Printf("created %d seed account(s)", created)
		}
	}

	files, err := storage.NewDir(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	limiter := throttle.New(cfg.ThrottleThreshold, cfg.BlockDuration)
	gw := gateway.New(userStore, limiter)
	registry := docs.NewRegistry(docStore, limiter)

	api := httpapi.New(httpapi.Options{
		Gateway:        gw,
		Users:          userStore,
		Registry:       registry,
		Files:          files,
		ReadyProbe:     httpapi.ReadyProbe{DB: db},
		Version:        version,
		TokenTTL:       cfg.TokenTTL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting studentdocs-api %s on %s", version, srv.Addr)

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
