// ABOUTME: Public SDK entry point: Client wires a Transport, Router, and Session Engine together
// ABOUTME: Construction follows functional options, grounded on the teacher's client constructor idiom

package acp

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nullstream/acp-go/internal/acpconfig"
	"github.com/nullstream/acp-go/internal/acpmetrics"
	"github.com/nullstream/acp-go/internal/acprpc"
	"github.com/nullstream/acp-go/internal/acpsession"
)

// Client is the application-facing handle to one ACP connection. It owns a
// Transport (process or HTTP), a Router, and a Session Engine, and exposes
// the Session Engine's public operations directly.
type Client struct {
	transport acprpc.Transport
	router    *acprpc.Router
	engine    *acpsession.Engine
	fanout    *fanoutDelegate
}

// Option configures a Client at construction time.
type Option func(*clientConfig)

type clientConfig struct {
	delegate          Delegate
	clientInfo        acpsession.ClientInfo
	supportedVersions []acpsession.SupportedVersion
	timingEnabled     bool
	batchingEnabled   bool
	batchWindowMillis int
	registerer        prometheus.Registerer
}

// WithDelegate attaches the host application's capability set. If omitted,
// every inbound hook is answered with DefaultDelegate's refusal.
func WithDelegate(d Delegate) Option {
	return func(c *clientConfig) { c.delegate = d }
}

// WithClientInfo sets the name/version advertised during initialize.
func WithClientInfo(name, version string) Option {
	return func(c *clientConfig) { c.clientInfo = acpsession.ClientInfo{Name: name, Version: version} }
}

// WithTiming enables per-request and per-flush timing instrumentation
// (structured log lines, and Prometheus metrics if WithMetricsRegisterer is
// also supplied). Equivalent to ACP_TIMING=1 (§6.4).
func WithTiming(enabled bool) Option {
	return func(c *clientConfig) { c.timingEnabled = enabled }
}

// WithBatching controls update batching (§6.4 ACP_BATCHING); windowMillis <=
// 0 uses the default 50ms window.
func WithBatching(enabled bool, windowMillis int) Option {
	return func(c *clientConfig) {
		c.batchingEnabled = enabled
		c.batchWindowMillis = windowMillis
	}
}

// WithMetricsRegisterer registers ACP's Prometheus metrics against reg
// instead of a private, unexposed registry. Only takes effect when timing
// is enabled.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *clientConfig) { c.registerer = reg }
}

// WithEnvironment seeds timing/batching from the process environment
// (ACP_TIMING, ACP_BATCHING, ACP_BATCH_MS per §6.4), as a convenience
// alternative to setting WithTiming/WithBatching explicitly.
func WithEnvironment() Option {
	env := acpconfig.FromEnvironment()
	return func(c *clientConfig) {
		c.timingEnabled = env.Timing
		c.batchingEnabled = env.Batching
		c.batchWindowMillis = int(env.BatchWindow.Milliseconds())
	}
}

func newClient(transport acprpc.Transport, opts ...Option) *Client {
	cfg := &clientConfig{
		clientInfo:      acpsession.ClientInfo{Name: "acp-go", Version: "0.1.0"},
		batchingEnabled: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var metrics *acpmetrics.Metrics
	if cfg.timingEnabled {
		reg := cfg.registerer
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		metrics = acpmetrics.New(reg)
	}

	router := acprpc.NewRouter(transport, cfg.timingEnabled)
	router.SetObserver(metrics)

	fanout := newFanoutDelegate(cfg.delegate)
	engine := acpsession.NewEngine(router, fanout, acpsession.EngineOptions{
		ClientInfo:        cfg.clientInfo,
		SupportedVersions: cfg.supportedVersions,
		BatchingEnabled:   cfg.batchingEnabled,
		BatchWindowMillis: cfg.batchWindowMillis,
		TimingEnabled:     cfg.timingEnabled,
		Metrics:           metrics,
	})

	return &Client{transport: transport, router: router, engine: engine, fanout: fanout}
}

// NewProcessClient builds a Client that will spawn command as a child
// process on Connect, speaking line-delimited JSON over its pipes (§4.B.1).
func NewProcessClient(command string, args []string, workingDir string, extraEnv []string, opts ...Option) *Client {
	transport := acprpc.NewProcessTransport(command, args, workingDir, extraEnv...)
	return newClient(transport, opts...)
}

// NewHTTPClient builds a Client targeting a remote agent reachable at
// baseURL (§4.B.2).
func NewHTTPClient(baseURL string, opts ...Option) *Client {
	transport := acprpc.NewHTTPTransport(baseURL)
	return newClient(transport, opts...)
}

// NewProfileClient builds a Client from a named acpconfig.Profile, choosing
// the process or HTTP transport according to the profile's shape.
func NewProfileClient(profile acpconfig.Profile, workingDir string, opts ...Option) *Client {
	if profile.IsHTTP() {
		return NewHTTPClient(profile.URL, opts...)
	}
	cwd := profile.Cwd
	if cwd == "" {
		cwd = workingDir
	}
	return NewProcessClient(profile.Command, profile.Args, cwd, acpconfig.EnvSlice(profile.Env), opts...)
}

// Connect performs the initialize handshake (§4.D "connect").
func (c *Client) Connect(ctx context.Context) (*acpsession.InitializeResponse, error) {
	return c.engine.Connect(ctx)
}

// NewSession creates a session and makes it current (§4.D "new_session").
func (c *Client) NewSession(ctx context.Context, cwd string, mcpServers []acpsession.Value, model string) (*acpsession.NewSessionResponse, error) {
	return c.engine.NewSession(ctx, cwd, mcpServers, model, nil)
}

// LoadSession attaches to an existing session (§4.D "load_session").
func (c *Client) LoadSession(ctx context.Context, id acpsession.SessionId) (*acpsession.NewSessionResponse, error) {
	return c.engine.LoadSession(ctx, id)
}

// Prompt sends one prompt turn and blocks for its terminal response (§4.D "prompt").
func (c *Client) Prompt(ctx context.Context, content []acpsession.ContentChunk) (*acpsession.PromptResponse, error) {
	return c.engine.Prompt(ctx, content)
}

// PromptText is a convenience wrapper sending a single text chunk.
func (c *Client) PromptText(ctx context.Context, text string) (*acpsession.PromptResponse, error) {
	return c.Prompt(ctx, []acpsession.ContentChunk{{Type: acpsession.ContentText, Text: text}})
}

// Cancel requests cancellation of the in-flight prompt turn (§4.D "cancel").
func (c *Client) Cancel() error {
	return c.engine.Cancel()
}

// SetSessionModel switches the current session's model.
func (c *Client) SetSessionModel(ctx context.Context, modelID string) error {
	return c.engine.SetSessionModel(ctx, modelID)
}

// SetSessionMode switches the current session's mode.
func (c *Client) SetSessionMode(ctx context.Context, modeID string) error {
	return c.engine.SetSessionMode(ctx, modeID)
}

// GetAgentManifest fetches the agent's identity/status manifest (§3.2, §4.D).
func (c *Client) GetAgentManifest(ctx context.Context, name string) (*acpsession.Manifest, error) {
	return c.engine.GetAgentManifest(ctx, name)
}

// State reports the connection's current state-machine position.
func (c *Client) State() acpsession.EngineState {
	return c.engine.State()
}

// Disconnect tears down the router and transport.
func (c *Client) Disconnect() error {
	return c.engine.Disconnect()
}
