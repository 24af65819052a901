package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/UkralStul/minifeed/internal/app"
	"github.com/UkralStul/minifeed/internal/config"
	"github.com/UkralStul/minifeed/internal/domain"
	"github.com/UkralStul/minifeed/internal/logger"
)

var (
	cfg = config.Load()

	// current заполняется в PersistentPreRunE и закрывается после команды
	current *app.App

	openApp = app.New
)

var RootCmd = &cobra.Command{
	Use:           "minifeed [command] [flags]",
	Short:         "Mini Facebook: a tiny social feed in your terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		l, err := logger.New(os.Stderr, cfg.LogLevel)
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context(), cfg, l)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil {
			return nil
		}
		err := current.Close(context.Background())
		current = nil
		return err
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage type (in-memory, postgres, redis, nats, mongo or minio)")
	RootCmd.PersistentFlags().StringVar(&cfg.Namespace, "namespace", cfg.Namespace, "Key prefix for all stored values")
	RootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "warn", "Log level (debug, info, warn or error)")
}

func Execute() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func session(ctx context.Context) (domain.Session, error) {
	return current.Repos.Session.Current(ctx)
}

// requireSession возвращает сессию или ErrUnauthenticated.
func requireSession(ctx context.Context) (domain.Session, error) {
	sess, err := session(ctx)
	if err != nil {
		return sess, err
	}
	if !sess.Authenticated() {
		return sess, domain.ErrUnauthenticated
	}
	return sess, nil
}

// resolvePostID принимает ID поста или его номер в ленте (с единицы).
func resolvePostID(ctx context.Context, sess domain.Session, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	items, err := current.Feed.ListFeed(ctx, sess)
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(items) {
		return "", fmt.Errorf("%w: no post #%d in the feed", domain.ErrNotFound, n)
	}
	return items[n-1].ID, nil
}
