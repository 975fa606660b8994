// server wires the auth subsystem and serves its HTTP boundary together
// with the public verification-key endpoint.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fittrack/backend/internal/audit"
	auditrepo "fittrack/backend/internal/audit/repository"
	"fittrack/backend/internal/auth"
	"fittrack/backend/internal/config"
	"fittrack/backend/internal/db"
	"fittrack/backend/internal/logger"
	onetimerepo "fittrack/backend/internal/onetime/repository"
	refreshrepo "fittrack/backend/internal/refreshtoken/repository"
	"fittrack/backend/internal/security"
	"fittrack/backend/internal/server"
	sessionrepo "fittrack/backend/internal/session/repository"
	userrepo "fittrack/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("config", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database", "error", err)
	}
	defer database.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatal("parse JWT_PRIVATE_KEY", "error", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatal("parse JWT_PUBLIC_KEY", "error", err)
	}

	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)
	recorder := audit.NewStoreRecorder(auditrepo.NewPostgresRepository(database), log)

	svc := auth.NewService(
		userrepo.NewPostgresRepository(database),
		sessionrepo.NewPostgresRepository(database),
		refreshrepo.NewPostgresRepository(database),
		onetimerepo.NewPostgresRepository(database),
		hasher,
		tokens,
		recorder,
		nil, // rate limiter is provided by the deployment environment
		auth.Options{
			VerifyTokenTTL:  cfg.VerifyTTL(),
			ResetTokenTTL:   cfg.ResetTTL(),
			ResendWindow:    cfg.ResendWindow(),
			ResendLimit:     int64(cfg.TokenResendLimit),
			TokenRetention:  cfg.Retention(),
			ReturnRawTokens: cfg.ReturnRawTokens,
		},
	)

	jwks, err := security.PublicJWKS(tokens.PublicKey())
	if err != nil {
		log.Fatal("build JWKS", "error", err)
	}

	mux := http.NewServeMux()
	server.New(svc, tokens, log).Register(mux)
	mux.HandleFunc("GET /.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=300")
		_, _ = w.Write(jwks)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("serve", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
