// ABOUTME: Entry point for the luckydraw CLI
// ABOUTME: Interactive and headless live-stream chat lotteries

package main

import (
	"fmt"
	"os"

	"github.com/markalston/live-lottery/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
