// ABOUTME: Shared Transport contract for the process and HTTP variants (§4.B)
// ABOUTME: A Transport is a low-level full-duplex frame channel; Router adds correlation

package acprpc

import (
	"context"
	"errors"
)

// Transport abstracts a full-duplex channel to the agent. Both the process
// variant (§4.B.1) and the HTTP variant (§4.B.2) implement it identically so
// the Router and Session Engine above never see the distinction.
//
// WriteFrame serializes a single already-encoded line; callers (the Router)
// are responsible for building frames via the codec's Encode* helpers. Writes
// from multiple goroutines are safe and never interleave within one frame.
//
// Inbound delivers every classified frame the transport receives that this
// side did not itself write: responses, error responses, inbound requests,
// and notifications. The Router demultiplexes by Kind.
//
// Errs reports transport-level terminal failures (disconnect, child death,
// unrecoverable write failure). Exactly one error is sent and the channel is
// then closed; a zero-value Transport never sends more than once.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect() error
	WriteFrame(data []byte) error
	Inbound() <-chan *Frame
	Errs() <-chan error
}

// ErrNotConnected is returned when an operation requires a connected
// transport but Connect has not been called or has failed.
var ErrNotConnected = errors.New("acprpc: transport not connected")

// ErrAlreadyConnected is returned from a second Connect call.
var ErrAlreadyConnected = errors.New("acprpc: transport already connected")

// ErrDisconnected is the terminal error delivered on Errs (and to every
// parked caller) once Disconnect has completed or the peer has vanished.
var ErrDisconnected = errors.New("acprpc: transport disconnected")

// ErrUnsupportedPlatform is returned by Connect on platforms that cannot
// spawn child processes (§4.B.1 "Platform guard").
var ErrUnsupportedPlatform = errors.New("acprpc: process transport unsupported on this platform")
