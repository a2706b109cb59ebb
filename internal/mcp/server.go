package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aigameforge/forge/internal/domain/session"
)

const serverInstructions = `AIGameForge turns prompts into playable game prototypes.

Core concepts:
- Project: a saved prototype (title, type, description, script, thumbnail).
  The local slot on this device is the primary store; the cloud store is an
  optional, independent copy reachable only when signed in.
- Engine: an AI provider profile. Exactly one engine is active at a time;
  a stored key for it is forwarded upstream only when that engine's policy
  allows it.
- Flows: generate_project creates a complete project from one prompt;
  modify_element rewrites a script or element properties from an
  instruction. Flow output is schema-checked and rejected outright when it
  does not conform, never patched up.

Rules of engagement:
1) Browse with list_projects (scope: local, cloud, or all) and get_project.
2) Create with generate_project or save_project; new projects always land
   in the local slot first.
3) Edit with modify_element (apply=true writes the new script back) or
   update_script.
4) sync_to_cloud copies a local project to the cloud as a NEW entry every
   time; it never updates an earlier copy. It requires sign-in.
5) push_to_github commits the project's files one by one and stops at the
   first failure; files already pushed stay pushed.
6) Engine credentials: set_engine_key / clear_engine_key / select_engine.
   Keys never appear in tool results.

Docs:
- forge://docs/index (tool map and workflows)
- forge://docs/storage (local vs cloud semantics)
`

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Flows    FlowService
	Settings SettingsService
	GitHub   GitHubService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      SessionResolver
	StaticSession *session.Session
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "aigameforge",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode has no per-request headers; the session, if any, is fixed
	// at startup. HTTP mode resolves the bearer token per request.
	if cfg.TransportMode == "stdio" || cfg.Resolver == nil {
		server.AddReceivingMiddleware(staticSessionMiddleware(cfg.StaticSession))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	handler := NewHandler(cfg.Services.Projects, cfg.Services.Flows, cfg.Services.Settings, cfg.Services.GitHub)
	registerTools(server, handler)

	return server
}
