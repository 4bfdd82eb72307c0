// ABOUTME: Watched-room management commands
// ABOUTME: Lists, adds and removes the live rooms a lottery collects chat from

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/markalston/live-lottery/cli/internal/client"
	"github.com/markalston/live-lottery/cli/internal/tui/settings"
	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Manage watched live rooms",
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched rooms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runRoomsList(ctx, client.New(GetAPIURL()), os.Stdout, IsJSONOutput())
	},
}

var roomsAddCmd = &cobra.Command{
	Use:   "add [room-id]",
	Short: "Add a room to the watched list",
	Long:  `Add a live room by id. Without an argument you are prompted for the id.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var input string
		if len(args) == 1 {
			input = args[0]
		} else {
			var err error
			if input, err = promptRoomID(); err != nil {
				return err
			}
		}
		id, err := settings.ParseRoomID(input)
		if err != nil {
			return err
		}
		return runRoomsAdd(ctx, client.New(GetAPIURL()), os.Stdout, id)
	},
}

var roomsRemoveCmd = &cobra.Command{
	Use:   "remove <room-id>",
	Short: "Remove a room from the watched list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		id, err := settings.ParseRoomID(args[0])
		if err != nil {
			return err
		}
		return runRoomsRemove(ctx, client.New(GetAPIURL()), os.Stdout, id)
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
	roomsCmd.AddCommand(roomsListCmd, roomsAddCmd, roomsRemoveCmd)
}

// promptRoomID asks for a room id interactively. Replaced in tests.
var promptRoomID = func() (string, error) {
	var input string
	err := huh.NewInput().
		Title("Live room id").
		Placeholder("e.g. 21452505").
		Validate(func(s string) error {
			_, err := settings.ParseRoomID(s)
			return err
		}).
		Value(&input).
		Run()
	return input, err
}

func runRoomsList(ctx context.Context, c *client.Client, w io.Writer, jsonOut bool) error {
	rooms, err := c.WatchedRooms(ctx)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rooms)
	}

	if len(rooms) == 0 {
		fmt.Fprintln(w, "No watched rooms. Add one with \"luckydraw rooms add\".")
		return nil
	}
	for _, id := range rooms {
		fmt.Fprintln(w, id)
	}
	return nil
}

func runRoomsAdd(ctx context.Context, c *client.Client, w io.Writer, id int64) error {
	if err := c.AddWatchedRoom(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(w, "Added room %d\n", id)
	return nil
}

func runRoomsRemove(ctx context.Context, c *client.Client, w io.Writer, id int64) error {
	if err := c.RemoveWatchedRoom(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(w, "Removed room %d\n", id)
	return nil
}
