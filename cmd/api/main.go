package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"customshipping/internal/config"
	"customshipping/internal/db"
	"customshipping/internal/logging"
	"customshipping/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := server.Options{Logger: log, MaxBodyBytes: cfg.MaxBodyBytes}
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.NewPool(connectCtx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			log.Fatal("failed to connect db", zap.Error(err))
		}
		defer pool.Close()

		quotes := db.NewQuoteLog(pool)
		if cfg.QuoteLogSchema {
			if err := quotes.EnsureSchema(connectCtx); err != nil {
				cancel()
				log.Fatal("quote log schema", zap.Error(err))
			}
		}
		cancel()
		opts.Quotes = quotes
	} else {
		log.Info("DATABASE_URL not set; quote log disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(opts),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", zap.String("addr", srv.Addr), zap.Bool("quote_log", opts.Quotes != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}
