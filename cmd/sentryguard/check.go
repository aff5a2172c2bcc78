package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sentrybot/guard/internal/classify"
	"github.com/sentrybot/guard/internal/config"
	"github.com/sentrybot/guard/internal/injection"
)

// newCheckCmd exposes C1 and C6 as a one-shot CLI check, useful for
// dry-running the pattern tables against a candidate command or
// message without starting the server.
func newCheckCmd() *cobra.Command {
	var patternsPath string

	cmd := &cobra.Command{
		Use:   "check [command...]",
		Short: "Classify a shell command (or, with --message, a chat message) against the guard's pattern tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := config.DefaultPatterns()
			if patternsPath != "" {
				loaded, err := config.LoadPatternFile(patternsPath)
				if err == nil {
					patterns = loaded
				}
			}

			command := strings.Join(args, " ")
			asMessage, _ := cmd.Flags().GetBool("message")
			if asMessage {
				f := injection.New(patterns)
				if f.IsInjection(command) {
					fmt.Printf("injection: %s\n", f.Reason(command))
				} else {
					fmt.Println("clean")
				}
				return nil
			}

			c := classify.New(patterns)
			decision := c.Classify(command)
			fmt.Printf("%s: %s\n", decision.Kind, decision.Reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&patternsPath, "patterns", "", "path to a pattern YAML file (default: built-in table)")
	cmd.Flags().Bool("message", false, "classify as a chat message (C6) instead of a shell command (C1)")
	return cmd
}
