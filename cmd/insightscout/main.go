package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/insightscout/internal/answer"
	"github.com/csheth/insightscout/internal/config"
	"github.com/csheth/insightscout/internal/engine"
	"github.com/csheth/insightscout/internal/logging"
	"github.com/csheth/insightscout/internal/tui"
)

var configFile string

// flagKeys maps config keys to the flags that may override them. A command
// binds whichever of these it defines.
var flagKeys = map[string]string{
	"service.endpoint":  "endpoint",
	"service.timeout":   "timeout",
	"log.file":          "log-file",
	"log.level":         "log-level",
	"ui.entrance_delay": "entrance-delay",
	"stub.addr":         "addr",
	"stub.fixture":      "fixture",
	"stub.top_k":        "top-k",
	"stub.latency":      "latency",
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var noAltScreen bool

	root := &cobra.Command{
		Use:          "insightscout",
		Short:        "Ask questions about Maharashtra policy documents from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, noAltScreen)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to a YAML config file")
	flags.String("endpoint", "", "answer service URL")
	flags.Duration("timeout", 0, "answer service request timeout")
	flags.String("log-file", "", "write JSON logs to this file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	root.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	root.Flags().Duration("entrance-delay", 0, "delay before the header tagline appears")

	root.AddCommand(newAskCommand(), newExamplesCommand(), newStubCommand())
	return root
}

func runInteractive(cmd *cobra.Command, noAltScreen bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	client := answer.NewClient(cfg.AnswerConfig())
	defer func() { _ = client.Close() }()
	panel := newPanel(cfg, client, logger)

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.UI.AltScreen && !noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	revealOpts := cfg.RevealOptions()
	program := tea.NewProgram(
		tui.New(tui.Config{
			Panel:         panel,
			Logger:        logger,
			Reveal:        &revealOpts,
			EntranceDelay: cfg.UI.EntranceDelay,
		}),
		opts...,
	)
	logger.Info("interactive session started", zap.String("endpoint", client.Endpoint()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader(configFile)
	for key, name := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := loader.BindFlag(key, flag); err != nil {
			return nil, err
		}
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newPanel(cfg *config.Config, client answer.Client, logger *zap.Logger) *engine.Panel {
	return engine.NewPanel(client,
		engine.WithLogger(logger),
		engine.WithExamples(cfg.Examples),
		engine.WithTransitionHook(func(t engine.Transition) {
			logger.Debug("panel transition",
				zap.Stringer("from", t.From),
				zap.Stringer("to", t.To),
				zap.String("id", t.SubmissionID),
			)
		}),
	)
}
