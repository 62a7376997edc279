// ABOUTME: acphost manifest — print the negotiated InitializeResponse and agent manifest as JSON

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nullstream/acp-go/pkg/acp"
)

func newManifestCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "manifest <command> [args...]",
		Short: "Print the negotiated InitializeResponse and agent manifest as JSON",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var client *acp.Client
			if url != "" {
				client = acp.NewHTTPClient(url, acp.WithTiming(flagTiming))
			} else {
				if len(args) == 0 {
					return fmt.Errorf("manifest requires either --url or a command to spawn")
				}
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				client = acp.NewProcessClient(args[0], args[1:], cwd, nil, acp.WithTiming(flagTiming))
			}

			ctx := cmd.Context()
			initResp, err := client.Connect(ctx)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer client.Disconnect()

			manifest, err := client.GetAgentManifest(ctx, "")
			out := map[string]any{"initialize": initResp}
			if err == nil {
				out["manifest"] = manifest
			} else {
				out["manifestError"] = err.Error()
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "connect over HTTP instead of spawning a process")
	return cmd
}
