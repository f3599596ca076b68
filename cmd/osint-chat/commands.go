package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/osint-chat/internal/api"
	"github.com/xaenox/osint-chat/internal/bot"
	"github.com/xaenox/osint-chat/internal/models"
)

const shutdownTimeout = 15 * time.Second

var askLastUsername string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and the Telegram bot when a token is configured)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the Telegram bot only",
	Args:  cobra.NoArgs,
	RunE:  runTelegram,
}

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer one query and print the JSON response",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	router := api.NewRouter(api.Config{
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		Gatherer:       a.registry,
	}, a.router, a.analyzer, a.store, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token, a.router, a.store, logger)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		g.Go(func() error { return b.Start(gctx) })
	} else {
		logger.Info("No Telegram token configured; bot disabled")
	}

	return g.Wait()
}

func runTelegram(cmd *cobra.Command, args []string) error {
	if cfg.Telegram.Token == "" {
		return errors.New("telegram token is not configured (set TELEGRAM_TOKEN)")
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := bot.New(cfg.Telegram.Token, a.router, a.store, logger)
	if err != nil {
		return err
	}
	logger.Info("Telegram bot started")
	return b.Start(ctx)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	resp := a.router.Handle(ctx, models.ChatRequest{
		Query:        strings.Join(args, " "),
		LastUsername: askLastUsername,
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
