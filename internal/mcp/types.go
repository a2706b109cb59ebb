package mcp

import (
	"github.com/aigameforge/forge/internal/domain/project"
	"github.com/aigameforge/forge/internal/flow"
	"github.com/aigameforge/forge/internal/github"
)

type GenerateProjectParams struct {
	Prompt string `json:"prompt"`
}

type GenerateProjectResult struct {
	Project           project.Project         `json:"project"`
	ProjectStructure  string                  `json:"project_structure"`
	CoreMechanics     []string                `json:"core_mechanics"`
	PlaceholderAssets []flow.PlaceholderAsset `json:"placeholder_assets"`
}

type ModifyElementParams struct {
	ProjectID      string `json:"project_id,omitempty"`
	Script         string `json:"script,omitempty"`
	Description    string `json:"description,omitempty"`
	Instruction    string `json:"instruction"`
	EngineType     string `json:"engine_type,omitempty"`
	ScriptLanguage string `json:"script_language,omitempty"`
	Apply          bool   `json:"apply,omitempty"`
}

type ModifyElementResult struct {
	Script      *string        `json:"script,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	Explanation string         `json:"explanation"`
	Notes       string         `json:"notes,omitempty"`
	Diff        string         `json:"diff,omitempty"`
	Applied     bool           `json:"applied"`
}

type ListProjectsParams struct {
	Scope string `json:"scope,omitempty"` // local (default), cloud, or all
}

type ListProjectsResult struct {
	Local []project.Project `json:"local,omitempty"`
	Cloud []project.Project `json:"cloud,omitempty"`
}

type GetProjectParams struct {
	ID string `json:"id"`
}

type SaveProjectParams struct {
	Title       string `json:"title"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Script      string `json:"script,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type UpdateScriptParams struct {
	ID     string `json:"id"`
	Script string `json:"script"`
	Scope  string `json:"scope,omitempty"` // local (default), cloud, or both
}

type DeleteProjectParams struct {
	ID    string `json:"id"`
	Scope string `json:"scope,omitempty"` // local (default), cloud, or both
}

type SyncToCloudParams struct {
	ID string `json:"id"`
}

type SyncToCloudResult struct {
	Project project.Project `json:"project"`
}

type PushToGithubParams struct {
	ProjectID     string `json:"project_id"`
	Owner         string `json:"owner,omitempty"`
	Repo          string `json:"repo,omitempty"`
	CommitMessage string `json:"commit_message,omitempty"`
}

type PushToGithubResult = github.SyncResult

type EngineInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Provider        string `json:"provider"`
	ForwardsUserKey bool   `json:"forwards_user_key"`
	HasKey          bool   `json:"has_key"`
	Selected        bool   `json:"selected"`
}

type ListEnginesParams struct{}

type ListEnginesResult struct {
	Engines []EngineInfo `json:"engines"`
}

type SelectEngineParams struct {
	ID string `json:"id"`
}

type SetEngineKeyParams struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

type ClearEngineKeyParams struct {
	ID string `json:"id"`
}

type SetGithubConfigParams struct {
	Token string `json:"token,omitempty"`
	Owner string `json:"owner,omitempty"`
	Repo  string `json:"repo,omitempty"`
}

type StatusResult struct {
	Status string `json:"status"`
}
