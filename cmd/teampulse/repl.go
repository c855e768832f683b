package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teampulse/teampulse/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive console",
	Long: `Start an interactive console for exploring team health data.

The console wraps the same engines as the CLI commands: metrics, trends,
predict, monitor, and alert management.

Type 'help' in the console for available commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		r, err := repl.New(&repl.Config{
			Store:      store,
			Actor:      currentActor(),
			WindowDays: cfg.Metrics.WindowDays,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create console: %v\n", err)
			os.Exit(1)
		}

		if err := r.Run(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
