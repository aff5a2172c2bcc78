package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// newApproveCmd and newDenyCmd are thin HTTP clients over a running
// serve process's approval callback endpoints (spec.md §6's "show
// approval" callback: the front-end calls back into the core with
// command_id once a human decides). They exist so an operator can
// approve or deny from a terminal without a Telegram client at hand.
func newApproveCmd() *cobra.Command {
	return newApprovalDecisionCmd("approve", "/api/approvals/approve")
}

func newDenyCmd() *cobra.Command {
	return newApprovalDecisionCmd("deny", "/api/approvals/deny")
}

func newApprovalDecisionCmd(use, path string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   use + " <command-id>",
		Short: fmt.Sprintf("%s a pending dangerous command by its approval id", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postApprovalDecision(addr, path, args[0])
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "base URL of a running sentryguard serve instance")
	return cmd
}

func postApprovalDecision(addr, path, commandID string) error {
	body, err := json.Marshal(map[string]string{"command_id": commandID})
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(addr+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contact guard server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("guard server rejected decision (%s): %s", resp.Status, msg)
	}
	fmt.Println("ok")
	return nil
}

func newStatusCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether a running sentryguard serve instance is healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(addr + "/healthz")
			if err != nil {
				return fmt.Errorf("contact guard server: %w", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("%s: %s\n", resp.Status, body)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "base URL of a running sentryguard serve instance")
	return cmd
}
