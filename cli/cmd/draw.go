// ABOUTME: Non-interactive lottery command
// ABOUTME: Connects watched rooms, collects chat for a fixed time, then draws winners

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/markalston/live-lottery/cli/internal/client"
	"github.com/spf13/cobra"
)

var (
	drawDuration time.Duration
	drawCount    int
	drawKeyword  string
)

// drawStopTimeout bounds stop+draw, which still runs after an interrupt
const drawStopTimeout = 15 * time.Second

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Run a lottery without the TUI",
	Long: `Collect chat from every watched room for a fixed time, then draw winners.

Press Ctrl+C to stop collecting early; winners are still drawn.

Exit codes: 0 winners drawn, 1 no participants, 2 error.

Example:
  luckydraw draw --duration 2m --count 3 --keyword lucky --json`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		opts := drawOptions{
			Duration: drawDuration,
			Count:    drawCount,
			Keyword:  drawKeyword,
			JSON:     IsJSONOutput(),
			Progress: 5 * time.Second,
		}
		exitCode := runDraw(ctx, client.New(GetAPIURL()), os.Stdout, opts)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(drawCmd)
	drawCmd.Flags().DurationVar(&drawDuration, "duration", time.Minute, "How long to collect chat")
	drawCmd.Flags().IntVar(&drawCount, "count", 1, "Number of winners to draw")
	drawCmd.Flags().StringVar(&drawKeyword, "keyword", "", "Only count messages containing this text (empty accepts all)")
}

type drawOptions struct {
	Duration time.Duration
	Count    int
	Keyword  string
	JSON     bool
	// Progress is the interval between participant count lines; zero disables them
	Progress time.Duration
}

// drawReport is the JSON output of a run
type drawReport struct {
	Rooms        []int64         `json:"rooms"`
	Keyword      string          `json:"keyword"`
	Requested    int             `json:"requested"`
	Participants int             `json:"participants"`
	DurationSecs float64         `json:"duration_seconds"`
	Winners      []client.Winner `json:"winners"`
}

// runDraw performs one lottery run and returns the exit code
func runDraw(ctx context.Context, c *client.Client, w io.Writer, opts drawOptions) int {
	if opts.Count < 1 {
		opts.Count = 1
	}

	rooms, err := c.WatchedRooms(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if len(rooms) == 0 {
		fmt.Fprintln(w, "Error: no watched rooms; add one with \"luckydraw rooms add\"")
		return 2
	}

	if err := c.ConnectLiveRooms(ctx, rooms); err != nil {
		fmt.Fprintf(w, "Error: connecting rooms: %v\n", err)
		return 2
	}
	if err := c.StartCollection(ctx, opts.Keyword); err != nil {
		fmt.Fprintf(w, "Error: starting collection: %v\n", err)
		// Release the room connections the connect opened
		stopCtx, cancel := context.WithTimeout(context.Background(), drawStopTimeout)
		defer cancel()
		_ = c.StopCollection(stopCtx)
		return 2
	}

	started := time.Now()
	participants := collect(ctx, c, w, opts)
	elapsed := time.Since(started)

	// A fresh context so an interrupt still stops the run and draws
	stopCtx, cancel := context.WithTimeout(context.Background(), drawStopTimeout)
	defer cancel()

	if n, err := c.ParticipantCount(stopCtx); err == nil {
		participants = n
	}
	if err := c.StopCollection(stopCtx); err != nil {
		fmt.Fprintf(w, "Error: stopping collection: %v\n", err)
		return 2
	}
	winners, err := c.DrawWinners(stopCtx, opts.Count)
	if err != nil {
		fmt.Fprintf(w, "Error: drawing winners: %v\n", err)
		return 2
	}

	report := drawReport{
		Rooms:        rooms,
		Keyword:      opts.Keyword,
		Requested:    opts.Count,
		Participants: participants,
		DurationSecs: elapsed.Round(time.Millisecond).Seconds(),
		Winners:      winners,
	}
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(report)
	} else {
		fmt.Fprint(w, formatDrawHuman(report, elapsed))
	}

	if len(winners) == 0 {
		return 1
	}
	return 0
}

// collect waits out the collection window, printing the participant count
// as it goes. It returns early when ctx is cancelled.
func collect(ctx context.Context, c *client.Client, w io.Writer, opts drawOptions) int {
	deadline := time.NewTimer(opts.Duration)
	defer deadline.Stop()

	var progress <-chan time.Time
	if opts.Progress > 0 && !opts.JSON {
		ticker := time.NewTicker(opts.Progress)
		defer ticker.Stop()
		progress = ticker.C
		fmt.Fprintf(w, "Collecting chat from %s for %s...\n", describeRooms(opts), opts.Duration)
	}

	participants := 0
	for {
		select {
		case <-ctx.Done():
			if !opts.JSON {
				fmt.Fprintln(w, "Interrupted, drawing now")
			}
			return participants
		case <-deadline.C:
			return participants
		case <-progress:
			n, err := c.ParticipantCount(ctx)
			if err != nil {
				continue
			}
			participants = n
			fmt.Fprintf(w, "  %s participants\n", humanize.Comma(int64(n)))
		}
	}
}

func describeRooms(opts drawOptions) string {
	if opts.Keyword == "" {
		return "watched rooms"
	}
	return fmt.Sprintf("watched rooms matching %q", opts.Keyword)
}

func formatDrawHuman(report drawReport, elapsed time.Duration) string {
	var out string
	out += fmt.Sprintf("\nCollected for %s from %d rooms, %s participants\n",
		elapsed.Round(time.Second), len(report.Rooms), humanize.Comma(int64(report.Participants)))

	if len(report.Winners) == 0 {
		return out + "No participants matched; no winners drawn.\n"
	}

	out += fmt.Sprintf("Winners (%d of %d requested):\n", len(report.Winners), report.Requested)
	for i, winner := range report.Winners {
		name := winner.Name
		if name == "" {
			name = "unknown"
		}
		out += fmt.Sprintf("  %-5s %s (uid %d, %s messages)\n",
			humanize.Ordinal(i+1), name, winner.ID, humanize.Comma(int64(winner.MessageCount)))
	}
	return out
}
