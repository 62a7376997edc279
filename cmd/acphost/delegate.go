// ABOUTME: Default delegate for the CLI: prints streamed updates to stdout, auto-allows permission

package main

import (
	"context"
	"fmt"

	"github.com/nullstream/acp-go/pkg/acp"
)

// printingDelegate renders streaming updates to stdout and grants every
// permission request, suitable for a non-interactive terminal session.
type printingDelegate struct {
	acp.DefaultDelegate
}

func (d *printingDelegate) OnUpdate(update acp.SessionUpdate) {
	for _, chunk := range update.MessageChunks {
		if chunk.Type == acp.ContentText {
			fmt.Print(chunk.Text)
		}
	}
	for _, tc := range update.ToolCalls {
		fmt.Printf("\n[tool %s: %s]\n", tc.ID, tc.Status)
	}
	if update.Plan != nil {
		fmt.Printf("\n[plan: %s]\n", update.Plan.Title)
	}
}

func (d *printingDelegate) ChoosePermission(ctx context.Context, req acp.RequestPermissionRequest) (acp.PermissionOptionId, error) {
	for _, opt := range req.Options {
		if opt.Kind == "allow_once" || opt.Kind == "allow_always" {
			return opt.OptionID, nil
		}
	}
	return "reject_once", nil
}
