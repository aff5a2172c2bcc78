// Command sentryguard runs the Telegram-fronted command guard and
// approval core: it classifies every shell command and filesystem
// access a connected LLM loop proposes, mediates human approval of
// dangerous commands, and paces outbound Telegram sends.
//
// Start the server:
//
//	sentryguard serve --settings configs/settings.yaml --patterns configs/patterns.yaml
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sentryguard",
		Short:         "Command guard and approval core for a sandboxed Telegram agent",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newApproveCmd())
	root.AddCommand(newDenyCmd())
	root.AddCommand(newStatusCmd())
	return root
}
