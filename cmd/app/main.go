package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"userpost-service/configs"
	"userpost-service/internal/shared/logx"

	"github.com/spf13/cobra"
)

func main() {
	cfg := configs.LoadConfig()
	slog.SetDefault(logx.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		slog.Error("exit", "err", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *configs.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "userpost",
		Short:         "User and Post API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(cfg), newMigrateCmd(cfg), newSeedCmd(cfg))
	// bare invocation serves, like the container entrypoint expects
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), cfg)
	}
	return root
}
