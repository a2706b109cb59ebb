package integration_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigameforge/forge/internal/domain/session"
	"github.com/aigameforge/forge/internal/mcp"
	"github.com/aigameforge/forge/internal/testserver"
)

const generateResponse = `{
	"gameTitle": "Star Hopper",
	"gameType": "platformer",
	"description": "Hop between procedurally placed stars.",
	"projectStructure": "res://main.gd drives the whole prototype.",
	"coreMechanics": ["jumping", "star collection"],
	"mainScript": {"filename": "main.gd", "content": "extends Node2D\n"},
	"placeholderAssets": [{"name": "hopper", "type": "sprite", "description": "the player"}]
}`

func modifyResponse(script string) string {
	data, _ := json.Marshal(map[string]any{
		"modifiedGameElementScript":     script,
		"modifiedGameElementProperties": nil,
		"explanation":                   "applied the instruction",
	})
	return string(data)
}

func TestGenerateModifySyncLifecycle(t *testing.T) {
	sess := &session.Session{UserID: "user-1", AccessToken: "tok"}
	ts := testserver.New(t, testserver.Options{Session: sess})

	// Generate a project from a prompt.
	ts.Model.Enqueue(generateResponse)
	result := ts.CallTool(t, "generate_project", mcp.GenerateProjectParams{Prompt: "a platformer about stars"})
	var generated mcp.GenerateProjectResult
	testserver.DecodeResult(t, result, &generated)
	require.NotEmpty(t, generated.Project.ID)
	assert.Equal(t, "Star Hopper", generated.Project.Title)
	assert.Equal(t, []string{"jumping", "star collection"}, generated.CoreMechanics)

	// It landed in the local slot.
	result = ts.CallTool(t, "list_projects", mcp.ListProjectsParams{})
	var listed mcp.ListProjectsResult
	testserver.DecodeResult(t, result, &listed)
	require.Len(t, listed.Local, 1)
	assert.Empty(t, listed.Cloud)

	// Modify and apply the new script.
	ts.Model.Enqueue(modifyResponse("extends Node2D\nvar gravity = 980\n"))
	result = ts.CallTool(t, "modify_element", mcp.ModifyElementParams{
		ProjectID:   generated.Project.ID,
		Instruction: "add gravity",
		Apply:       true,
	})
	var modified mcp.ModifyElementResult
	testserver.DecodeResult(t, result, &modified)
	assert.True(t, modified.Applied)
	assert.NotEmpty(t, modified.Diff)

	result = ts.CallTool(t, "get_project", mcp.GetProjectParams{ID: generated.Project.ID})
	var fetched map[string]any
	testserver.DecodeResult(t, result, &fetched)
	assert.Contains(t, fetched["script"], "gravity")

	// Syncing twice creates two independent cloud entries.
	result = ts.CallTool(t, "sync_to_cloud", mcp.SyncToCloudParams{ID: generated.Project.ID})
	var firstSync mcp.SyncToCloudResult
	testserver.DecodeResult(t, result, &firstSync)
	require.NotEmpty(t, firstSync.Project.ID)
	assert.NotEqual(t, generated.Project.ID, firstSync.Project.ID)

	result = ts.CallTool(t, "sync_to_cloud", mcp.SyncToCloudParams{ID: generated.Project.ID})
	var secondSync mcp.SyncToCloudResult
	testserver.DecodeResult(t, result, &secondSync)
	assert.NotEqual(t, firstSync.Project.ID, secondSync.Project.ID)

	result = ts.CallTool(t, "list_projects", mcp.ListProjectsParams{Scope: "all"})
	testserver.DecodeResult(t, result, &listed)
	assert.Len(t, listed.Local, 1)
	assert.Len(t, listed.Cloud, 2)

	// Deleting the local copy leaves the cloud entries alone.
	ts.CallTool(t, "delete_project", mcp.DeleteProjectParams{ID: generated.Project.ID})
	result = ts.CallTool(t, "list_projects", mcp.ListProjectsParams{Scope: "all"})
	testserver.DecodeResult(t, result, &listed)
	assert.Empty(t, listed.Local)
	assert.Len(t, listed.Cloud, 2)
}

func TestCloudOperationsRequireSession(t *testing.T) {
	ts := testserver.New(t, testserver.Options{}) // no session

	result := ts.CallTool(t, "save_project", mcp.SaveProjectParams{Title: "Local Only", Script: "extends Node2D"})
	var saved map[string]any
	testserver.DecodeResult(t, result, &saved)
	id := saved["id"].(string)

	result = ts.CallTool(t, "sync_to_cloud", mcp.SyncToCloudParams{ID: id})
	assert.Equal(t, "AUTH_REQUIRED", testserver.ErrorCode(t, result))

	result = ts.CallTool(t, "delete_project", mcp.DeleteProjectParams{ID: id, Scope: "cloud"})
	assert.Equal(t, "AUTH_REQUIRED", testserver.ErrorCode(t, result))

	// Cloud listing degrades to empty rather than failing.
	result = ts.CallTool(t, "list_projects", mcp.ListProjectsParams{Scope: "cloud"})
	var listed mcp.ListProjectsResult
	testserver.DecodeResult(t, result, &listed)
	assert.Empty(t, listed.Cloud)
}

func TestMalformedModelResponseIsTerminal(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})

	ts.Model.Enqueue(`null`)
	result := ts.CallTool(t, "generate_project", mcp.GenerateProjectParams{Prompt: "a puzzle game"})
	assert.Equal(t, "SCHEMA_INVALID", testserver.ErrorCode(t, result))

	ts.Model.Enqueue(`{"gameTitle": "No Script"}`)
	result = ts.CallTool(t, "generate_project", mcp.GenerateProjectParams{Prompt: "a puzzle game"})
	assert.Equal(t, "SCHEMA_INVALID", testserver.ErrorCode(t, result))

	// Nothing was saved from the rejected responses.
	result = ts.CallTool(t, "list_projects", mcp.ListProjectsParams{})
	var listed mcp.ListProjectsResult
	testserver.DecodeResult(t, result, &listed)
	assert.Empty(t, listed.Local)
}

// githubStub emulates the contents API, requiring the current sha on
// overwrites the way the real host does.
type githubStub struct {
	shas map[string]string
	puts int
}

func (g *githubStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	idx := strings.Index(r.URL.Path, "/contents/")
	if idx < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := r.URL.Path[idx+len("/contents/"):]

	switch r.Method {
	case http.MethodGet:
		sha, ok := g.shas[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"sha": sha})
	case http.MethodPut:
		var payload struct {
			SHA string `json:"sha"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		if existing, ok := g.shas[path]; ok && payload.SHA != existing {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"is at ` + existing + ` but expected ` + payload.SHA + `"}`))
			return
		}
		g.puts++
		g.shas[path] = "sha-" + path + "-v2"
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"content":{}}`))
	}
}

func TestPushToGithubTwice(t *testing.T) {
	stub := &githubStub{shas: map[string]string{}}
	ts := testserver.New(t, testserver.Options{GitHubHandler: stub})

	require.NoError(t, ts.Settings.SetGitHub("gh-token", "octocat", "my-game"))

	result := ts.CallTool(t, "save_project", mcp.SaveProjectParams{
		Title:       "Star Hopper",
		Description: "Hop between stars.",
		Script:      "extends Node2D\n",
	})
	var saved map[string]any
	testserver.DecodeResult(t, result, &saved)
	id := saved["id"].(string)

	result = ts.CallTool(t, "push_to_github", mcp.PushToGithubParams{ProjectID: id})
	var push mcp.PushToGithubResult
	testserver.DecodeResult(t, result, &push)
	require.True(t, push.Success, push.Error)
	assert.Equal(t, "https://github.com/octocat/my-game", push.URL)

	// The second push must read back the shas from the first one; the
	// stub rejects overwrites with a stale or missing sha.
	result = ts.CallTool(t, "push_to_github", mcp.PushToGithubParams{ProjectID: id})
	testserver.DecodeResult(t, result, &push)
	assert.True(t, push.Success, push.Error)
	assert.Equal(t, 4, stub.puts, "two files pushed twice")
}

func TestEngineManagement(t *testing.T) {
	ts := testserver.New(t, testserver.Options{})

	result := ts.CallTool(t, "list_engines", mcp.ListEnginesParams{})
	var engines mcp.ListEnginesResult
	testserver.DecodeResult(t, result, &engines)
	require.NotEmpty(t, engines.Engines)

	result = ts.CallTool(t, "select_engine", mcp.SelectEngineParams{ID: "claude"})
	var status map[string]any
	testserver.DecodeResult(t, result, &status)

	ts.CallTool(t, "set_engine_key", mcp.SetEngineKeyParams{ID: "claude", Key: "sk-ant-secret"})

	result = ts.CallTool(t, "list_engines", mcp.ListEnginesParams{})
	testserver.DecodeResult(t, result, &engines)
	for _, e := range engines.Engines {
		if e.ID == "claude" {
			assert.True(t, e.Selected)
			assert.True(t, e.HasKey)
		}
	}
	// The stored key itself never appears in any tool result.
	data, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-ant-secret")

	result = ts.CallTool(t, "select_engine", mcp.SelectEngineParams{ID: "midjourney"})
	assert.Equal(t, "UNKNOWN_ENGINE", testserver.ErrorCode(t, result))
}
