// ABOUTME: Status command for the luckydraw CLI
// ABOUTME: Shows the login, watched rooms and collection state of the backend

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/markalston/live-lottery/cli/internal/client"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show login and collection status",
	Long: `Display the logged-in account, watched rooms and whether chat is being collected.

Exit codes: 0 logged in, 1 not logged in, 2 error.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatus(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusReport is the combined view printed by the status command
type statusReport struct {
	LoggedIn     bool            `json:"logged_in"`
	Account      *client.Account `json:"account,omitempty"`
	WatchedRooms []int64         `json:"watched_rooms"`
	Collecting   bool            `json:"collecting"`
	Participants int             `json:"participants"`
}

// runStatus gathers the status and returns exit code
func runStatus(ctx context.Context, w io.Writer) int {
	c := client.New(GetAPIURL())

	report, err := gatherStatus(ctx, c)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(report))
	} else {
		fmt.Fprintln(w, formatStatusHuman(report))
	}

	if !report.LoggedIn {
		return 1
	}
	return 0
}

func gatherStatus(ctx context.Context, c *client.Client) (*statusReport, error) {
	report := &statusReport{WatchedRooms: []int64{}}

	loggedIn, err := c.IsLoggedIn(ctx)
	if err != nil {
		return nil, err
	}
	report.LoggedIn = loggedIn
	if !loggedIn {
		return report, nil
	}

	if report.Account, err = c.AccountInfo(ctx); err != nil {
		return nil, fmt.Errorf("fetching account: %w", err)
	}
	if report.WatchedRooms, err = c.WatchedRooms(ctx); err != nil {
		return nil, fmt.Errorf("fetching rooms: %w", err)
	}
	if report.Collecting, err = c.IsCollectionRunning(ctx); err != nil {
		return nil, fmt.Errorf("fetching collection state: %w", err)
	}
	if report.Collecting {
		if report.Participants, err = c.ParticipantCount(ctx); err != nil {
			return nil, fmt.Errorf("fetching participants: %w", err)
		}
	}
	return report, nil
}

// formatStatusHuman formats the status for human readability
func formatStatusHuman(report *statusReport) string {
	if !report.LoggedIn {
		return "Not logged in.\nRun \"luckydraw tui\" to log in with a QR code or cookie."
	}

	rooms := "none"
	if len(report.WatchedRooms) > 0 {
		ids := make([]string, len(report.WatchedRooms))
		for i, id := range report.WatchedRooms {
			ids[i] = strconv.FormatInt(id, 10)
		}
		rooms = strings.Join(ids, ", ")
	}

	collection := "stopped"
	if report.Collecting {
		collection = fmt.Sprintf("running (%s participants)", humanize.Comma(int64(report.Participants)))
	}

	return fmt.Sprintf(`Account:       %s (uid %d)
Watched rooms: %s
Collection:    %s`,
		report.Account.Name, report.Account.ID,
		rooms,
		collection)
}

// formatStatusJSON formats the status as JSON
func formatStatusJSON(report *statusReport) string {
	data, _ := json.MarshalIndent(report, "", "  ")
	return string(data)
}
