package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// handle adapts a typed handler method to the SDK tool handler shape,
// converting domain errors into structured tool errors instead of
// protocol failures. The error is returned to the SDK (rather than as a
// prebuilt result) so the zero output value is never validated against
// the tool's output schema; the SDK packs err.Error() into a text
// content block with IsError set.
func handle[In, Out any](fn func(context.Context, In) (Out, error)) sdkmcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input In) (*sdkmcp.CallToolResult, Out, error) {
		out, err := fn(ctx, input)
		if err != nil {
			var zero Out
			return nil, zero, toolError{MapError(err)}
		}
		return nil, out, nil
	}
}

// toolError renders an APIError as its JSON encoding so the SDK
// surfaces the structured payload verbatim as the tool error content.
type toolError struct {
	apiErr *APIError
}

func (e toolError) Error() string {
	data, err := json.Marshal(e.apiErr)
	if err != nil {
		return e.apiErr.Error()
	}
	return string(data)
}

// registerTools registers all tools on the server.
func registerTools(server *sdkmcp.Server, h *Handler) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "generate_project",
		Description: "Generate a new game project from a prompt and save it locally",
	}, handle(h.GenerateProject))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "modify_element",
		Description: "Modify a game element's script or properties from an instruction, optionally applying the new script to a stored project",
	}, handle(h.ModifyElement))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List saved projects from the local slot and/or the cloud store",
	}, handle(h.ListProjects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get one local project by id",
	}, handle(h.GetProject))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_project",
		Description: "Save a new local project from explicit fields",
	}, handle(h.SaveProject))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_script",
		Description: "Replace a project's script locally, in the cloud, or both",
	}, handle(h.UpdateScript))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project locally, in the cloud, or both",
	}, handle(h.DeleteProject))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "sync_to_cloud",
		Description: "Copy one local project to the cloud store as a new entry (requires sign-in)",
	}, handle(h.SyncToCloud))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "push_to_github",
		Description: "Push a project's files to the configured GitHub repository",
	}, handle(h.PushToGithub))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_engines",
		Description: "List available AI engines with selection and credential state",
	}, handle(func(ctx context.Context, _ ListEnginesParams) (*ListEnginesResult, error) {
		return h.ListEngines(ctx)
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_engine",
		Description: "Select the active AI engine",
	}, handle(h.SelectEngine))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_engine_key",
		Description: "Store an API key for an engine",
	}, handle(h.SetEngineKey))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clear_engine_key",
		Description: "Remove a stored engine API key",
	}, handle(h.ClearEngineKey))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_github_config",
		Description: "Store the GitHub token, owner, and repository used by push_to_github",
	}, handle(h.SetGithubConfig))
}
