package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mcdev12/elevator/go/internal/game"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "elevator",
		Short:         "Floor button reaction game server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", getEnv("ELEVATOR_CONFIG", "config.yaml"), "path to YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newLayoutsCmd(),
	)
	return root
}

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "Print the button layouts in play order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLayouts(cmd.OutOrStdout())
		},
	}
}

func printLayouts(w io.Writer) error {
	for i, l := range game.GenerateLayouts() {
		left, right := l.Columns()
		if _, err := fmt.Fprintf(w, "layout %d: %v\n", i, []int(l)); err != nil {
			return err
		}
		for row := range left {
			if _, err := fmt.Fprintf(w, "  %2d  %2d\n", left[row], right[row]); err != nil {
				return err
			}
		}
	}
	return nil
}
