// ABOUTME: Stub process transport for platforms without child-process APIs (§4.B.1 "Platform guard")

//go:build js

package acprpc

import "context"

// ProcessTransport is unavailable on this platform; every operation reports
// ErrUnsupportedPlatform (Connect) or ErrDisconnected (everything else).
type ProcessTransport struct {
	Command    string
	Args       []string
	WorkingDir string
	ExtraEnv   []string
}

func NewProcessTransport(command string, args []string, workingDir string, extraEnv ...string) *ProcessTransport {
	return &ProcessTransport{Command: command, Args: args, WorkingDir: workingDir, ExtraEnv: extraEnv}
}

func (t *ProcessTransport) Connect(ctx context.Context) error { return ErrUnsupportedPlatform }
func (t *ProcessTransport) Disconnect() error                 { return ErrDisconnected }
func (t *ProcessTransport) WriteFrame(data []byte) error       { return ErrDisconnected }
func (t *ProcessTransport) Inbound() <-chan *Frame             { return nil }
func (t *ProcessTransport) Errs() <-chan error                 { return nil }
