package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExamplesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List the example questions offered by the panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			panel := newPanel(cfg, nil, zap.NewNop())
			for idx, question := range panel.Examples() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", idx+1, question)
			}
			return nil
		},
	}
}
