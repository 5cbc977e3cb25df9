package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/wordarena/word-arena-backend/internal/config"
	"github.com/wordarena/word-arena-backend/internal/engine"
	"github.com/wordarena/word-arena-backend/internal/httpapi"
	"github.com/wordarena/word-arena-backend/internal/registry"
	"github.com/wordarena/word-arena-backend/internal/session"
	"github.com/wordarena/word-arena-backend/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	bank, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal("load word lists", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rules := engine.Rules{
		MaxGuesses:      cfg.MaxGuesses,
		RealtimeSeconds: cfg.RealtimeSeconds,
		TurnSeconds:     cfg.TurnSeconds,
	}
	scfg := session.Config{
		Retention: time.Duration(cfg.SessionRetentionSeconds) * time.Second,
		Grace:     time.Duration(cfg.DisconnectGraceSeconds) * time.Second,
	}
	reg := registry.New(ctx, bank, rules, scfg, log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(reg, bank, log),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Duration(cfg.EvictIntervalSeconds) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				reg.Inbox() <- registry.EvictStale{Now: now}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
