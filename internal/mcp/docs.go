package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "forge://docs/index",
		Name:        "docs_index",
		Title:       "AIGameForge docs index",
		Description: "Tool map and default workflows for prototyping games.",
		Content: `# AIGameForge: Docs Index

## Tool map

- Creation: generate_project (prompt in, full project out), save_project
  (explicit fields).
- Editing: modify_element (instruction in, new script and/or properties
  out, apply=true writes back), update_script (direct replacement).
- Browsing: list_projects, get_project.
- Cloud: sync_to_cloud (signed-in only, always creates a new cloud entry).
- Source control: push_to_github, set_github_config.
- Engines: list_engines, select_engine, set_engine_key, clear_engine_key.

## Default workflow

1. generate_project with a one-paragraph game idea.
2. Iterate with modify_element, reading the diff before applying.
3. sync_to_cloud when signed in and the prototype is worth keeping.
4. push_to_github to hand the files to a real editor.

## Known limitations

- modify_element may return null for both script and properties when the
  instruction does not apply; the explanation says why.
- Flow output failing schema validation is an error, never auto-repaired.
`,
	},
	{
		URI:         "forge://docs/storage",
		Name:        "docs_storage",
		Title:       "Local and cloud storage semantics",
		Description: "How the local slot and the cloud store relate, and what sync does.",
		Content: `# Storage semantics

## Local slot

All projects live in a single device-local slot, newest first. Writes
replace the whole slot; two concurrent writers race and the last write
wins wholesale. Malformed entries are dropped on read, not repaired.

## Cloud store

Signed-in users also have a cloud store scoped to their account. It is
independent of the local slot: no id links the two sides, and nothing
reconciles them automatically.

## sync_to_cloud

Copies one local project to the cloud as a brand-new entry with a new
id. Running it twice on the same project creates two cloud entries.
Deleting either copy leaves the other untouched.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
