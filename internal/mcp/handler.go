package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/aigameforge/forge/internal/domain/engine"
	"github.com/aigameforge/forge/internal/domain/project"
	"github.com/aigameforge/forge/internal/domain/session"
	"github.com/aigameforge/forge/internal/flow"
	"github.com/aigameforge/forge/internal/github"
)

// ProjectService defines reconciler operations needed by MCP.
type ProjectService interface {
	LoadLocal(ctx context.Context) ([]project.Project, error)
	LoadRemote(ctx context.Context, sess *session.Session) ([]project.Project, error)
	SaveNewLocal(ctx context.Context, proj project.Project) error
	UpdateScriptLocal(ctx context.Context, id, script string) error
	UpdateScriptRemote(ctx context.Context, sess *session.Session, id, script string) error
	DeleteLocal(ctx context.Context, id string) error
	DeleteRemote(ctx context.Context, sess *session.Session, id string) error
	SyncToRemote(ctx context.Context, sess *session.Session, proj project.Project) (*project.Project, error)
	FindLocal(ctx context.Context, id string) (*project.Project, error)
}

// FlowService defines AI flow operations needed by MCP.
type FlowService interface {
	GenerateInitialProject(ctx context.Context, req flow.GenerationRequest) (*flow.GenerateInitialProjectOutput, error)
	ModifyGameElement(ctx context.Context, req flow.ModificationRequest) (*flow.ModifyGameElementOutput, error)
}

// SettingsService defines engine settings operations needed by MCP.
type SettingsService interface {
	Select(id string) error
	Selected() (string, error)
	SetKey(id, key string) error
	ClearKey(id string) error
	Key(id string) string
	SetGitHub(token, owner, repo string) error
	Load() (*engine.Settings, error)
}

// GitHubService defines source-control sync operations needed by MCP.
type GitHubService interface {
	SyncFiles(ctx context.Context, token, owner, repo string, files []github.File, commitMessage string) github.SyncResult
}

// Handler implements the tool operations on top of the domain services.
type Handler struct {
	projects ProjectService
	flows    FlowService
	settings SettingsService
	gh       GitHubService
}

// NewHandler creates a new MCP handler.
func NewHandler(projects ProjectService, flows FlowService, settings SettingsService, gh GitHubService) *Handler {
	return &Handler{
		projects: projects,
		flows:    flows,
		settings: settings,
		gh:       gh,
	}
}

// selectedEngine returns the active engine id, falling back to the default.
func (h *Handler) selectedEngine() string {
	selected, err := h.settings.Selected()
	if err != nil || selected == "" {
		return engine.DefaultEngine
	}
	return selected
}

// GenerateProject runs the generation flow and saves the result locally.
func (h *Handler) GenerateProject(ctx context.Context, params GenerateProjectParams) (*GenerateProjectResult, error) {
	req, err := flow.BuildGenerationRequest(params.Prompt, h.selectedEngine(), h.settings)
	if err != nil {
		return nil, err
	}

	out, err := h.flows.GenerateInitialProject(ctx, req)
	if err != nil {
		return nil, err
	}

	proj := project.NewLocal(out.GameTitle, out.GameType, out.Description, out.MainScript.Content, "")
	if err := h.projects.SaveNewLocal(ctx, proj); err != nil {
		return nil, err
	}

	return &GenerateProjectResult{
		Project:           proj,
		ProjectStructure:  out.ProjectStructure,
		CoreMechanics:     out.CoreMechanics,
		PlaceholderAssets: out.PlaceholderAssets,
	}, nil
}

// ModifyElement runs the modification flow against an inline script or a
// stored project's script, optionally applying the result.
func (h *Handler) ModifyElement(ctx context.Context, params ModifyElementParams) (*ModifyElementResult, error) {
	script := params.Script
	if script == "" && params.ProjectID != "" {
		proj, err := h.projects.FindLocal(ctx, params.ProjectID)
		if err != nil {
			return nil, err
		}
		script = proj.Script
	}

	req, err := flow.BuildModificationRequest(script, params.Description, params.Instruction, params.EngineType, params.ScriptLanguage)
	if err != nil {
		return nil, err
	}
	if selected := h.selectedEngine(); engine.ForwardsUserKey(selected) {
		req.UserAPIKey = h.settings.Key(selected)
	}

	out, err := h.flows.ModifyGameElement(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &ModifyElementResult{
		Script:      out.ModifiedGameElementScript,
		Properties:  out.ModifiedGameElementProperties,
		Explanation: out.Explanation,
		Notes:       out.Notes,
	}
	if out.ModifiedGameElementScript != nil && script != "" {
		result.Diff = scriptDiff(script, *out.ModifiedGameElementScript)
	}

	if params.Apply && out.ModifiedGameElementScript != nil && params.ProjectID != "" {
		if err := h.projects.UpdateScriptLocal(ctx, params.ProjectID, *out.ModifiedGameElementScript); err != nil {
			return nil, err
		}
		if err := h.projects.UpdateScriptRemote(ctx, getSession(ctx), params.ProjectID, *out.ModifiedGameElementScript); err != nil {
			return nil, err
		}
		result.Applied = true
	}

	return result, nil
}

// ListProjects lists local and/or cloud projects.
func (h *Handler) ListProjects(ctx context.Context, params ListProjectsParams) (*ListProjectsResult, error) {
	scope := params.Scope
	if scope == "" {
		scope = "local"
	}

	result := &ListProjectsResult{}
	if scope == "local" || scope == "all" {
		local, err := h.projects.LoadLocal(ctx)
		if err != nil {
			return nil, err
		}
		result.Local = local
	}
	if scope == "cloud" || scope == "all" {
		cloud, err := h.projects.LoadRemote(ctx, getSession(ctx))
		if err != nil {
			return nil, err
		}
		result.Cloud = cloud
	}
	return result, nil
}

// GetProject returns one local project by id.
func (h *Handler) GetProject(ctx context.Context, params GetProjectParams) (*project.Project, error) {
	return h.projects.FindLocal(ctx, params.ID)
}

// SaveProject stores a new local project from explicit fields.
func (h *Handler) SaveProject(ctx context.Context, params SaveProjectParams) (*project.Project, error) {
	proj := project.NewLocal(params.Title, params.Type, params.Description, params.Script, params.ImageURL)
	if err := h.projects.SaveNewLocal(ctx, proj); err != nil {
		return nil, err
	}
	return &proj, nil
}

// UpdateScript replaces a project's script in the requested scope.
func (h *Handler) UpdateScript(ctx context.Context, params UpdateScriptParams) (*StatusResult, error) {
	scope := params.Scope
	if scope == "" {
		scope = "local"
	}

	if scope == "local" || scope == "both" {
		if err := h.projects.UpdateScriptLocal(ctx, params.ID, params.Script); err != nil {
			return nil, err
		}
	}
	if scope == "cloud" || scope == "both" {
		if err := h.projects.UpdateScriptRemote(ctx, getSession(ctx), params.ID, params.Script); err != nil {
			return nil, err
		}
	}
	return &StatusResult{Status: "ok"}, nil
}

// DeleteProject removes a project from the requested scope.
func (h *Handler) DeleteProject(ctx context.Context, params DeleteProjectParams) (*StatusResult, error) {
	scope := params.Scope
	if scope == "" {
		scope = "local"
	}

	if scope == "local" || scope == "both" {
		if err := h.projects.DeleteLocal(ctx, params.ID); err != nil {
			return nil, err
		}
	}
	if scope == "cloud" || scope == "both" {
		if err := h.projects.DeleteRemote(ctx, getSession(ctx), params.ID); err != nil {
			return nil, err
		}
	}
	return &StatusResult{Status: "ok"}, nil
}

// SyncToCloud copies one local project to the cloud store as a new row.
func (h *Handler) SyncToCloud(ctx context.Context, params SyncToCloudParams) (*SyncToCloudResult, error) {
	proj, err := h.projects.FindLocal(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	created, err := h.projects.SyncToRemote(ctx, getSession(ctx), *proj)
	if err != nil {
		return nil, err
	}
	return &SyncToCloudResult{Project: *created}, nil
}

// PushToGithub writes a project's files to a GitHub repository. The
// token always comes from settings; owner and repo may be overridden
// per call.
func (h *Handler) PushToGithub(ctx context.Context, params PushToGithubParams) (*PushToGithubResult, error) {
	proj, err := h.projects.FindLocal(ctx, params.ProjectID)
	if err != nil {
		return nil, err
	}

	settings, err := h.settings.Load()
	if err != nil {
		return nil, err
	}
	owner := params.Owner
	if owner == "" {
		owner = settings.GitHubOwner
	}
	repo := params.Repo
	if repo == "" {
		repo = settings.GitHubRepo
	}

	result := h.gh.SyncFiles(ctx, settings.GitHubToken, owner, repo,
		projectFiles(proj), params.CommitMessage)
	return &result, nil
}

// ListEngines returns the engine registry with selection and key state.
func (h *Handler) ListEngines(ctx context.Context) (*ListEnginesResult, error) {
	selected := h.selectedEngine()

	engines := []EngineInfo{}
	for _, e := range engine.Registry() {
		engines = append(engines, EngineInfo{
			ID:              e.ID,
			Name:            e.Name,
			Provider:        e.Provider,
			ForwardsUserKey: e.ForwardsUserKey,
			HasKey:          h.settings.Key(e.ID) != "",
			Selected:        e.ID == selected,
		})
	}
	return &ListEnginesResult{Engines: engines}, nil
}

// SelectEngine makes an engine the active one.
func (h *Handler) SelectEngine(ctx context.Context, params SelectEngineParams) (*StatusResult, error) {
	if err := h.settings.Select(params.ID); err != nil {
		return nil, err
	}
	return &StatusResult{Status: "ok"}, nil
}

// SetEngineKey stores a credential for an engine.
func (h *Handler) SetEngineKey(ctx context.Context, params SetEngineKeyParams) (*StatusResult, error) {
	if err := h.settings.SetKey(params.ID, params.Key); err != nil {
		return nil, err
	}
	return &StatusResult{Status: "ok"}, nil
}

// ClearEngineKey removes a stored engine credential.
func (h *Handler) ClearEngineKey(ctx context.Context, params ClearEngineKeyParams) (*StatusResult, error) {
	if err := h.settings.ClearKey(params.ID); err != nil {
		return nil, err
	}
	return &StatusResult{Status: "ok"}, nil
}

// SetGithubConfig stores the source-control target. Empty fields keep
// their existing values.
func (h *Handler) SetGithubConfig(ctx context.Context, params SetGithubConfigParams) (*StatusResult, error) {
	if err := h.settings.SetGitHub(params.Token, params.Owner, params.Repo); err != nil {
		return nil, err
	}
	return &StatusResult{Status: "ok"}, nil
}

// projectFiles lays out the files pushed for a project: the main script
// plus a short README.
func projectFiles(proj *project.Project) []github.File {
	readme := fmt.Sprintf("# %s\n\n%s\n", proj.Title, proj.Description)
	return []github.File{
		{Path: "main.gd", Content: proj.Script},
		{Path: "README.md", Content: readme},
	}
}

// scriptDiff renders a compact patch between the old and new script.
func scriptDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(before, after)
	if len(patches) == 0 {
		return ""
	}
	return strings.TrimSpace(dmp.PatchToText(patches))
}
