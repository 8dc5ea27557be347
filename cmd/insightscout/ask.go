package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/csheth/insightscout/internal/answer"
	"github.com/csheth/insightscout/internal/engine"
	"github.com/csheth/insightscout/internal/logging"
)

var errEmptyQuestion = errors.New("question is empty")

func newAskCommand() *cobra.Command {
	var example int

	command := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question without the interactive panel",
		Long: "Ask one question and print the generated answer with its sources.\n" +
			"Use --example to send one of the configured example questions instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var (
				sub engine.Submission
				ok  bool
			)
			if example > 0 {
				examples := panel.Examples()
				if example > len(examples) {
					return fmt.Errorf("--example must be between 1 and %d", len(examples))
				}
				sub, ok = panel.BeginExample(examples[example-1])
			} else {
				sub, ok = panel.Begin(strings.Join(args, " "))
			}
			if !ok {
				return errEmptyQuestion
			}

			out := panel.Run(cmd.Context(), sub)
			panel.Finish(out)
			printView(cmd.OutOrStdout(), sub.Query, panel.View())
			if out.Err != nil {
				return fmt.Errorf("generation failed: %w", out.Err)
			}
			return nil
		},
	}
	command.Flags().IntVar(&example, "example", 0, "send the Nth configured example question (1-based)")
	return command
}

var (
	questionColor = color.New(color.FgHiBlack)
	headingColor  = color.New(color.FgCyan, color.Bold)
	failureColor  = color.New(color.FgRed)
	titleColor    = color.New(color.FgYellow, color.Bold)
)

func printView(w io.Writer, question string, view engine.ViewState) {
	questionColor.Fprintf(w, "Q: %s\n\n", question)
	headingColor.Fprintln(w, "Generated Answer")
	if view.State == engine.StateFailed {
		failureColor.Fprintln(w, view.Answer)
	} else {
		fmt.Fprintln(w, view.Answer)
	}
	if !view.ShowSources {
		return
	}
	fmt.Fprintln(w)
	headingColor.Fprintln(w, "Sources Found")
	for _, source := range view.Sources {
		titleColor.Fprintln(w, source.Title)
		fmt.Fprintf(w, "  %s\n", source.Content)
	}
}
