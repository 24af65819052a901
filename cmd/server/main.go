package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UkralStul/minifeed/internal/app"
	"github.com/UkralStul/minifeed/internal/config"
	"github.com/UkralStul/minifeed/internal/logger"
	"github.com/UkralStul/minifeed/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		stop()
		log.Printf("server exited: %v", err)
		os.Exit(1)
	}
}

// run поднимает сервер и блокируется до отмены ctx или падения сервера.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage type (in-memory, postgres, redis, nats, mongo or minio)")
	fs.StringVar(&cfg.Namespace, "namespace", cfg.Namespace, "Key prefix for all stored values")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn or error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logger.Init(stdout, cfg.LogLevel)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Error("failed to start", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			l.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	// Восстанавливаем сессию, сохраненную прошлым запуском
	if sess, err := a.Accounts.Restore(ctx); err != nil {
		l.Warn("failed to restore session", slog.Any("error", err))
	} else if sess.Authenticated() {
		l.Info("session restored", "username", sess.Username)
	}

	if err := server.Run(ctx, ":"+cfg.Port, a); err != nil {
		l.Error("server failed", slog.Any("error", err))
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
