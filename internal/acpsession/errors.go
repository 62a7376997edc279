// ABOUTME: Session Engine error taxonomy (§7 "Session errors")

package acpsession

import "errors"

var (
	// ErrNoActiveSession is returned by prompt/cancel/set_* when no session
	// has been created or loaded on this connection.
	ErrNoActiveSession = errors.New("acpsession: no active session")

	// ErrCapabilityNotAdvertised is returned when an operation requires a
	// capability bit the agent did not advertise during initialize (e.g.
	// load_session when the agent does not support loadSession).
	ErrCapabilityNotAdvertised = errors.New("acpsession: capability not advertised by agent")

	// ErrNotInitialized is returned by any operation that requires a
	// completed initialize handshake.
	ErrNotInitialized = errors.New("acpsession: connection not initialized")

	// ErrAlreadyConnected is returned by Connect on a non-Idle engine.
	ErrAlreadyConnected = errors.New("acpsession: engine already connected")

	// ErrPromptInFlight is returned by Prompt when a prior prompt turn has
	// not yet resolved (§3 invariant: at most one in-flight prompt turn).
	ErrPromptInFlight = errors.New("acpsession: a prompt turn is already in flight")

	// ErrManifestUnavailable is returned by GetAgentManifest when no name
	// was supplied and the engine has no default to fall back to.
	ErrManifestUnavailable = errors.New("acpsession: no agent name available for manifest lookup")
)
