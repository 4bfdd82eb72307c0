// ABOUTME: Logout command
// ABOUTME: Ends the backend login session after confirmation

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/markalston/live-lottery/cli/internal/client"
	"github.com/spf13/cobra"
)

var logoutYes bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the live platform",
	Long:  `Clear the stored login session on the backend. Asks for confirmation unless --yes is given.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if !logoutYes {
			ok, err := confirmLogout()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(os.Stdout, "Cancelled")
				return nil
			}
		}
		return runLogout(ctx, client.New(GetAPIURL()), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVarP(&logoutYes, "yes", "y", false, "Skip the confirmation prompt")
}

// confirmLogout asks before ending the session. Replaced in tests.
var confirmLogout = func() (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title("Log out?").
		Description("You will need to scan a QR code or paste a cookie again.").
		Affirmative("Log out").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

func runLogout(ctx context.Context, c *client.Client, w io.Writer) error {
	if err := c.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, "Logged out")
	return nil
}
