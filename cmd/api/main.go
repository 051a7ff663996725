package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streetpoints.org/internal/config"
	"streetpoints.org/internal/directory"
	"streetpoints.org/internal/httpapi"
	"streetpoints.org/internal/ledger"
	"streetpoints.org/internal/obs"
	"streetpoints.org/internal/session"
	"streetpoints.org/internal/store/pg"
	"streetpoints.org/internal/stream"
	"streetpoints.org/internal/token"
)

var version = "0.3.1"

func main() {
	cfg, err := config.Load(os.Getenv("STREETPOINTS_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()

	codec, err := token.NewCodec(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret,
		token.WithAccessTTL(cfg.Auth.AccessTTL),
		token.WithRefreshTTL(cfg.Auth.RefreshTTL),
		token.WithIssuer(cfg.Auth.Issuer),
	)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	// The Postgres deployment shares one pool between the directory and the
	// ledger; without a DSN both run in memory with the demo fixtures.
	var (
		dir    directory.Directory
		store  ledger.Service
		probe  httpapi.ReadyProbe
		closer func()
	)
	if cfg.PostgresDSN != "" {
		pgStore, err := pg.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		dir = directory.NewPostgres(pgStore.DB())
		store = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
		closer = func() { _ = pgStore.Close() }
	} else {
		dir = directory.NewMemory(directory.Seed()...)
		mem := ledger.NewInMemory()
		mem.Load(ledger.SeedBeneficiaries(), ledger.SeedStores())
		store = mem
	}

	api := httpapi.New(httpapi.Options{
		Sessions:      session.NewService(dir, codec),
		Cookies:       session.NewCookieWriter(cfg.Production(), codec.AccessTTL(), codec.RefreshTTL()),
		Ledger:        store,
		Stream:        stream.New(),
		ReadyProbe:    probe,
		Version:       version,
		ClientOrigin:  cfg.ClientOrigin,
		RateBurst:     cfg.RateLimit.Burst,
		RatePerSecond: cfg.RateLimit.PerSecond,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	log.Printf("Starting streetpoints-api %s on %s (%s mode)", version, srv.Addr, cfg.Mode)

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
	if closer != nil {
		closer()
	}
	log.Println("Stopped")
}
