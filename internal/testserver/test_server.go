// Package testserver wires a full in-process server for integration
// tests: in-memory local slot, in-memory SQLite cloud store, a scripted
// model, and a stub GitHub host, connected over in-memory transports.
package testserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/aigameforge/forge/internal/domain/engine"
	"github.com/aigameforge/forge/internal/domain/project"
	"github.com/aigameforge/forge/internal/domain/session"
	"github.com/aigameforge/forge/internal/flow"
	"github.com/aigameforge/forge/internal/github"
	"github.com/aigameforge/forge/internal/localstore"
	"github.com/aigameforge/forge/internal/mcp"
	"github.com/aigameforge/forge/internal/sqlite"
)

// ScriptedModel replays queued responses in order.
type ScriptedModel struct {
	mu        sync.Mutex
	responses []string
	Requests  []flow.ModelRequest
}

// Enqueue adds one raw model response to the script.
func (m *ScriptedModel) Enqueue(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
}

func (m *ScriptedModel) Generate(_ context.Context, req flow.ModelRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if len(m.responses) == 0 {
		return "", errors.New("no scripted response queued")
	}
	response := m.responses[0]
	m.responses = m.responses[1:]
	return response, nil
}

// TestServer is a fully wired server with a connected client session.
type TestServer struct {
	Client   *sdkmcp.ClientSession
	Model    *ScriptedModel
	Settings *engine.Store
	DB       *sqlite.DB
}

// Options configures the wired server.
type Options struct {
	// Session is the signed-in principal. Nil runs local-only.
	Session *session.Session
	// GitHubHandler serves the stub GitHub API. Nil installs a handler
	// that fails every request.
	GitHubHandler http.Handler
}

// New builds the server and connects a client over in-memory transports.
func New(t *testing.T, opts Options) *TestServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	slot := localstore.NewMemorySlot()
	local := localstore.New(slot, logger)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	remote := sqlite.NewProjectStore(db)

	model := &ScriptedModel{}
	flowSvc := flow.NewService(model, logger)

	settings := engine.NewStore(filepath.Join(t.TempDir(), "settings.json"))

	ghHandler := opts.GitHubHandler
	if ghHandler == nil {
		ghHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
	}
	ghServer := httptest.NewServer(ghHandler)

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: project.NewService(local, remote, logger),
			Flows:    flowSvc,
			Settings: settings,
			GitHub:   github.New(ghServer.URL, logger),
		},
		StaticSession: opts.Session,
		TransportMode: "stdio",
		Logger:        logger,
	})

	ctx := context.Background()
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "forge-test", Version: "0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = clientSession.Close()
		_ = serverSession.Wait()
		ghServer.Close()
		_ = db.Close()
	})

	return &TestServer{
		Client:   clientSession,
		Model:    model,
		Settings: settings,
		DB:       db,
	}
}

// CallTool invokes a tool and fails the test on transport errors. Tool
// level errors come back in the result for the caller to assert on.
func (ts *TestServer) CallTool(t *testing.T, name string, args any) *sdkmcp.CallToolResult {
	t.Helper()

	result, err := ts.Client.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "calling %s", name)
	return result
}

// DecodeResult unmarshals a tool result's structured content into out.
// The destination is zeroed first so reused variables do not keep stale
// fields that the result's JSON omits.
func DecodeResult(t *testing.T, result *sdkmcp.CallToolResult, out any) {
	t.Helper()

	require.False(t, result.IsError, "tool returned error: %s", resultText(result))
	if v := reflect.ValueOf(out); v.Kind() == reflect.Pointer && !v.IsNil() {
		v.Elem().SetZero()
	}
	if result.StructuredContent == nil {
		require.NoError(t, json.Unmarshal([]byte(resultText(result)), out))
		return
	}
	data, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

// ErrorCode extracts the error code from a failed tool result.
func ErrorCode(t *testing.T, result *sdkmcp.CallToolResult) string {
	t.Helper()

	require.True(t, result.IsError, "expected a tool error")
	var apiErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(result)), &apiErr))
	return apiErr.Code
}

func resultText(result *sdkmcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
