package cli

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/UkralStul/minifeed/internal/server"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GraphQL server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if sess, err := current.Accounts.Restore(ctx); err != nil {
			current.Logger.Warn("failed to restore session", slog.Any("error", err))
		} else if sess.Authenticated() {
			current.Logger.Info("session restored", "username", sess.Username)
		}

		return server.Run(ctx, ":"+servePort, current)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", cfg.Port, "Port to listen on")
	RootCmd.AddCommand(serveCmd)
}
