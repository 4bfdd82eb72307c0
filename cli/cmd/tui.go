// ABOUTME: Interactive TUI command
// ABOUTME: Launches the full-screen lottery app against the configured backend

package cmd

import (
	"log/slog"

	"github.com/markalston/live-lottery/cli/internal/client"
	"github.com/markalston/live-lottery/cli/internal/tui"
	"github.com/markalston/live-lottery/cli/internal/tui/recentkeywords"
	"github.com/spf13/cobra"
)

var tuiDebug bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the interactive lottery app",
	Long: `Start the full-screen lottery app: log in, pick a keyword and winner count,
collect chat from your watched rooms and draw winners.

Debug logs are written to debug.log in the config directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if tuiDebug {
			level = slog.LevelDebug
		}
		return tui.Run(client.New(GetAPIURL()), recentkeywords.DefaultConfigDir(), level)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().BoolVar(&tuiDebug, "debug", false, "Write debug-level logs")
}
