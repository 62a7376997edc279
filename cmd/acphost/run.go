// ABOUTME: acphost run <command> [args...] — spawn an agent, prompt once from stdin, stream to stdout

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nullstream/acp-go/pkg/acp"
)

func newRunCmd() *cobra.Command {
	var cwd string
	cmd := &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Spawn an agent over the process transport and run one prompt turn",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cwd == "" {
				var err error
				cwd, err = os.Getwd()
				if err != nil {
					return err
				}
			}
			client := acp.NewProcessClient(args[0], args[1:], cwd, nil,
				acp.WithDelegate(&printingDelegate{}),
				acp.WithTiming(flagTiming),
				acp.WithBatching(flagBatching, flagBatchMs),
			)
			return runSession(cmd.Context(), client, cwd)
		},
	}
	cmd.Flags().StringVar(&cwd, "cwd", "", "working directory for the spawned agent (defaults to the current directory)")
	return cmd
}

func newConnectCmd() *cobra.Command {
	var cwd string
	cmd := &cobra.Command{
		Use:   "connect <url>",
		Short: "Connect to a remote agent over the HTTP transport and run one prompt turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cwd == "" {
				var err error
				cwd, err = os.Getwd()
				if err != nil {
					return err
				}
			}
			client := acp.NewHTTPClient(args[0],
				acp.WithDelegate(&printingDelegate{}),
				acp.WithTiming(flagTiming),
				acp.WithBatching(flagBatching, flagBatchMs),
			)
			return runSession(cmd.Context(), client, cwd)
		},
	}
	cmd.Flags().StringVar(&cwd, "cwd", "", "working directory advertised to the agent in session/new")
	return cmd
}

// runSession performs connect + new_session, reads one line of prompt text
// from stdin, streams the turn to stdout, and prints the stop reason.
func runSession(ctx context.Context, client *acp.Client, cwd string) error {
	initResp, err := client.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	fmt.Fprintf(os.Stderr, "connected to %s %s\n", initResp.AgentInfo.Name, initResp.AgentInfo.Version)

	if _, err := client.NewSession(ctx, cwd, nil, ""); err != nil {
		return fmt.Errorf("session/new: %w", err)
	}

	fmt.Fprint(os.Stderr, "prompt> ")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	if !scanner.Scan() {
		return scanner.Err()
	}
	text := strings.TrimSpace(scanner.Text())

	resp, err := client.PromptText(ctx, text)
	if err != nil {
		return fmt.Errorf("session/prompt: %w", err)
	}

	fmt.Printf("\nstop_reason: %s\n", resp.StopReason)
	return client.Disconnect()
}
