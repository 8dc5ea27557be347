package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/insightscout/internal/logging"
	"github.com/csheth/insightscout/internal/stubserver"
)

func newStubCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "stub",
		Short: "Serve a local answer service backed by a YAML fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level, Console: true})
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			fixture, err := stubserver.LoadFixture(cfg.Stub.Fixture)
			if err != nil {
				return err
			}
			server := stubserver.New(stubserver.Config{
				Addr:    cfg.Stub.Addr,
				TopK:    cfg.Stub.TopK,
				Latency: cfg.Stub.Latency,
			}, fixture, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info("point the client at the stub",
				zap.String("endpoint", fmt.Sprintf("http://%s%s", cfg.Stub.Addr, stubserver.GeneratePath)),
			)
			return server.Run(ctx)
		},
	}
	flags := command.Flags()
	flags.String("addr", "", "listen address")
	flags.String("fixture", "", "YAML fixture of canned answers (default: built-in)")
	flags.Int("top-k", 0, "maximum sources per answer")
	flags.Duration("latency", 0, "artificial delay before each answer")
	return command
}
