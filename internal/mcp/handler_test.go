package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigameforge/forge/internal/domain/engine"
	"github.com/aigameforge/forge/internal/domain/project"
	"github.com/aigameforge/forge/internal/domain/session"
	"github.com/aigameforge/forge/internal/flow"
	"github.com/aigameforge/forge/internal/github"
)

type projectStub struct {
	loadLocalFn          func(context.Context) ([]project.Project, error)
	loadRemoteFn         func(context.Context, *session.Session) ([]project.Project, error)
	saveNewLocalFn       func(context.Context, project.Project) error
	updateScriptLocalFn  func(context.Context, string, string) error
	updateScriptRemoteFn func(context.Context, *session.Session, string, string) error
	deleteLocalFn        func(context.Context, string) error
	deleteRemoteFn       func(context.Context, *session.Session, string) error
	syncToRemoteFn       func(context.Context, *session.Session, project.Project) (*project.Project, error)
	findLocalFn          func(context.Context, string) (*project.Project, error)
}

func (p projectStub) LoadLocal(ctx context.Context) ([]project.Project, error) {
	return p.loadLocalFn(ctx)
}
func (p projectStub) LoadRemote(ctx context.Context, sess *session.Session) ([]project.Project, error) {
	return p.loadRemoteFn(ctx, sess)
}
func (p projectStub) SaveNewLocal(ctx context.Context, proj project.Project) error {
	return p.saveNewLocalFn(ctx, proj)
}
func (p projectStub) UpdateScriptLocal(ctx context.Context, id, script string) error {
	return p.updateScriptLocalFn(ctx, id, script)
}
func (p projectStub) UpdateScriptRemote(ctx context.Context, sess *session.Session, id, script string) error {
	return p.updateScriptRemoteFn(ctx, sess, id, script)
}
func (p projectStub) DeleteLocal(ctx context.Context, id string) error {
	return p.deleteLocalFn(ctx, id)
}
func (p projectStub) DeleteRemote(ctx context.Context, sess *session.Session, id string) error {
	return p.deleteRemoteFn(ctx, sess, id)
}
func (p projectStub) SyncToRemote(ctx context.Context, sess *session.Session, proj project.Project) (*project.Project, error) {
	return p.syncToRemoteFn(ctx, sess, proj)
}
func (p projectStub) FindLocal(ctx context.Context, id string) (*project.Project, error) {
	return p.findLocalFn(ctx, id)
}

type flowStub struct {
	generateFn func(context.Context, flow.GenerationRequest) (*flow.GenerateInitialProjectOutput, error)
	modifyFn   func(context.Context, flow.ModificationRequest) (*flow.ModifyGameElementOutput, error)
}

func (f flowStub) GenerateInitialProject(ctx context.Context, req flow.GenerationRequest) (*flow.GenerateInitialProjectOutput, error) {
	return f.generateFn(ctx, req)
}
func (f flowStub) ModifyGameElement(ctx context.Context, req flow.ModificationRequest) (*flow.ModifyGameElementOutput, error) {
	return f.modifyFn(ctx, req)
}

// settingsStub is an in-memory SettingsService.
type settingsStub struct {
	selected string
	keys     map[string]string
	ghToken  string
	ghOwner  string
	ghRepo   string
}

func (s *settingsStub) Select(id string) error {
	if !engine.Known(id) {
		return engine.ErrUnknownEngine
	}
	s.selected = id
	return nil
}
func (s *settingsStub) Selected() (string, error) { return s.selected, nil }
func (s *settingsStub) SetKey(id, key string) error {
	if !engine.Known(id) {
		return engine.ErrUnknownEngine
	}
	if s.keys == nil {
		s.keys = map[string]string{}
	}
	s.keys[id] = key
	return nil
}
func (s *settingsStub) ClearKey(id string) error {
	delete(s.keys, id)
	return nil
}
func (s *settingsStub) Key(id string) string { return s.keys[id] }
func (s *settingsStub) SetGitHub(token, owner, repo string) error {
	s.ghToken, s.ghOwner, s.ghRepo = token, owner, repo
	return nil
}
func (s *settingsStub) Load() (*engine.Settings, error) {
	return &engine.Settings{
		SelectedEngine: s.selected,
		Keys:           s.keys,
		GitHubToken:    s.ghToken,
		GitHubOwner:    s.ghOwner,
		GitHubRepo:     s.ghRepo,
	}, nil
}

type ghStub struct {
	lastToken string
	lastOwner string
	lastRepo  string
	lastFiles []github.File
	result    github.SyncResult
}

func (g *ghStub) SyncFiles(_ context.Context, token, owner, repo string, files []github.File, _ string) github.SyncResult {
	g.lastToken, g.lastOwner, g.lastRepo, g.lastFiles = token, owner, repo, files
	return g.result
}

func generateOutput() *flow.GenerateInitialProjectOutput {
	return &flow.GenerateInitialProjectOutput{
		GameTitle:         "Star Hopper",
		GameType:          "platformer",
		Description:       "Hop between stars.",
		ProjectStructure:  "res://main.gd",
		CoreMechanics:     []string{"jumping"},
		MainScript:        flow.MainScript{Filename: "main.gd", Content: "extends Node2D"},
		PlaceholderAssets: []flow.PlaceholderAsset{},
	}
}

func TestGenerateProjectSavesLocally(t *testing.T) {
	var saved *project.Project
	handler := NewHandler(
		projectStub{saveNewLocalFn: func(_ context.Context, proj project.Project) error {
			saved = &proj
			return nil
		}},
		flowStub{generateFn: func(_ context.Context, _ flow.GenerationRequest) (*flow.GenerateInitialProjectOutput, error) {
			return generateOutput(), nil
		}},
		&settingsStub{},
		&ghStub{},
	)

	result, err := handler.GenerateProject(context.Background(), GenerateProjectParams{Prompt: "a platformer in space"})
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, "Star Hopper", saved.Title)
	assert.Equal(t, "extends Node2D", saved.Script)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, saved.ID, result.Project.ID)
	assert.Equal(t, []string{"jumping"}, result.CoreMechanics)
}

func TestGenerateProjectForwardsKeyOnlyForForwardingEngine(t *testing.T) {
	var gotReq flow.GenerationRequest
	flows := flowStub{generateFn: func(_ context.Context, req flow.GenerationRequest) (*flow.GenerateInitialProjectOutput, error) {
		gotReq = req
		return generateOutput(), nil
	}}
	projects := projectStub{saveNewLocalFn: func(context.Context, project.Project) error { return nil }}

	settings := &settingsStub{selected: "gemini", keys: map[string]string{"gemini": "user-key", "gpt4": "other-key"}}
	handler := NewHandler(projects, flows, settings, &ghStub{})
	_, err := handler.GenerateProject(context.Background(), GenerateProjectParams{Prompt: "a platformer"})
	require.NoError(t, err)
	assert.Equal(t, "user-key", gotReq.UserAPIKey)

	settings.selected = "gpt4"
	_, err = handler.GenerateProject(context.Background(), GenerateProjectParams{Prompt: "a platformer"})
	require.NoError(t, err)
	assert.Empty(t, gotReq.UserAPIKey, "non-forwarding engine must not attach a stored key")
}

func TestModifyElementAppliesScript(t *testing.T) {
	newScript := "extends Node2D\nvar speed = 10"
	var localUpdate, remoteUpdate string
	handler := NewHandler(
		projectStub{
			findLocalFn: func(_ context.Context, id string) (*project.Project, error) {
				return &project.Project{ID: id, Script: "extends Node2D"}, nil
			},
			updateScriptLocalFn: func(_ context.Context, _, script string) error {
				localUpdate = script
				return nil
			},
			updateScriptRemoteFn: func(_ context.Context, _ *session.Session, _, script string) error {
				remoteUpdate = script
				return nil
			},
		},
		flowStub{modifyFn: func(_ context.Context, _ flow.ModificationRequest) (*flow.ModifyGameElementOutput, error) {
			return &flow.ModifyGameElementOutput{
				ModifiedGameElementScript: &newScript,
				Explanation:               "added speed",
			}, nil
		}},
		&settingsStub{},
		&ghStub{},
	)

	result, err := handler.ModifyElement(context.Background(), ModifyElementParams{
		ProjectID:   "p1",
		Instruction: "make it faster",
		Apply:       true,
	})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, newScript, localUpdate)
	assert.Equal(t, newScript, remoteUpdate)
	assert.NotEmpty(t, result.Diff)
}

func TestModifyElementNullScriptNotApplied(t *testing.T) {
	handler := NewHandler(
		projectStub{
			findLocalFn: func(_ context.Context, id string) (*project.Project, error) {
				return &project.Project{ID: id, Script: "extends Node2D"}, nil
			},
			updateScriptLocalFn: func(context.Context, string, string) error {
				t.Fatal("no update may happen for a null script")
				return nil
			},
		},
		flowStub{modifyFn: func(_ context.Context, _ flow.ModificationRequest) (*flow.ModifyGameElementOutput, error) {
			return &flow.ModifyGameElementOutput{Explanation: "nothing to change"}, nil
		}},
		&settingsStub{},
		&ghStub{},
	)

	result, err := handler.ModifyElement(context.Background(), ModifyElementParams{
		ProjectID:   "p1",
		Instruction: "do nothing",
		Apply:       true,
	})
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Nil(t, result.Script)
	assert.Equal(t, "nothing to change", result.Explanation)
	assert.Empty(t, result.Diff)
}

func TestListProjectsScopes(t *testing.T) {
	local := []project.Project{{ID: "l1", Title: "Local"}}
	cloud := []project.Project{{ID: "c1", Title: "Cloud"}}
	projects := projectStub{
		loadLocalFn: func(context.Context) ([]project.Project, error) { return local, nil },
		loadRemoteFn: func(_ context.Context, sess *session.Session) ([]project.Project, error) {
			if sess == nil {
				return []project.Project{}, nil
			}
			return cloud, nil
		},
	}
	handler := NewHandler(projects, flowStub{}, &settingsStub{}, &ghStub{})

	// Default scope is local.
	result, err := handler.ListProjects(context.Background(), ListProjectsParams{})
	require.NoError(t, err)
	assert.Equal(t, local, result.Local)
	assert.Empty(t, result.Cloud)

	// Cloud scope without a session yields an empty list, not an error.
	result, err = handler.ListProjects(context.Background(), ListProjectsParams{Scope: "cloud"})
	require.NoError(t, err)
	assert.Empty(t, result.Cloud)

	// With a session, both sides come back.
	ctx := context.WithValue(context.Background(), sessionKey, &session.Session{UserID: "u1"})
	result, err = handler.ListProjects(ctx, ListProjectsParams{Scope: "all"})
	require.NoError(t, err)
	assert.Equal(t, local, result.Local)
	assert.Equal(t, cloud, result.Cloud)
}

func TestSyncToCloudPassesSessionFromContext(t *testing.T) {
	var gotSess *session.Session
	projects := projectStub{
		findLocalFn: func(_ context.Context, id string) (*project.Project, error) {
			return &project.Project{ID: id, Title: "Local"}, nil
		},
		syncToRemoteFn: func(_ context.Context, sess *session.Session, proj project.Project) (*project.Project, error) {
			gotSess = sess
			if sess == nil {
				return nil, session.ErrAuthRequired
			}
			proj.ID = "cloud-id"
			return &proj, nil
		},
	}
	handler := NewHandler(projects, flowStub{}, &settingsStub{}, &ghStub{})

	_, err := handler.SyncToCloud(context.Background(), SyncToCloudParams{ID: "p1"})
	assert.ErrorIs(t, err, session.ErrAuthRequired)

	ctx := context.WithValue(context.Background(), sessionKey, &session.Session{UserID: "u1"})
	result, err := handler.SyncToCloud(ctx, SyncToCloudParams{ID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", gotSess.UserID)
	assert.Equal(t, "cloud-id", result.Project.ID)
}

func TestPushToGithubUsesSettingsFallback(t *testing.T) {
	gh := &ghStub{result: github.SyncResult{Success: true, URL: "https://github.com/stored-owner/stored-repo"}}
	projects := projectStub{
		findLocalFn: func(_ context.Context, id string) (*project.Project, error) {
			return &project.Project{ID: id, Title: "Star Hopper", Description: "Hop.", Script: "extends Node2D"}, nil
		},
	}
	settings := &settingsStub{ghToken: "stored-token", ghOwner: "stored-owner", ghRepo: "stored-repo"}
	handler := NewHandler(projects, flowStub{}, settings, gh)

	result, err := handler.PushToGithub(context.Background(), PushToGithubParams{ProjectID: "p1"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "stored-token", gh.lastToken)
	assert.Equal(t, "stored-owner", gh.lastOwner)
	assert.Equal(t, "stored-repo", gh.lastRepo)
	require.Len(t, gh.lastFiles, 2)
	assert.Equal(t, "main.gd", gh.lastFiles[0].Path)
	assert.Equal(t, "extends Node2D", gh.lastFiles[0].Content)
}

func TestPushToGithubOverridesOwnerRepo(t *testing.T) {
	gh := &ghStub{result: github.SyncResult{Success: true}}
	projects := projectStub{
		findLocalFn: func(_ context.Context, id string) (*project.Project, error) {
			return &project.Project{ID: id, Title: "Star Hopper"}, nil
		},
	}
	settings := &settingsStub{ghToken: "stored-token", ghOwner: "stored-owner", ghRepo: "stored-repo"}
	handler := NewHandler(projects, flowStub{}, settings, gh)

	_, err := handler.PushToGithub(context.Background(), PushToGithubParams{
		ProjectID: "p1", Owner: "other-owner", Repo: "other-repo",
	})
	require.NoError(t, err)
	assert.Equal(t, "other-owner", gh.lastOwner)
	assert.Equal(t, "other-repo", gh.lastRepo)
	assert.Equal(t, "stored-token", gh.lastToken, "the token always comes from settings")
}

func TestListEnginesReportsState(t *testing.T) {
	settings := &settingsStub{selected: "gpt4", keys: map[string]string{"gemini": "k"}}
	handler := NewHandler(projectStub{}, flowStub{}, settings, &ghStub{})

	result, err := handler.ListEngines(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Engines, len(engine.Registry()))

	byID := map[string]EngineInfo{}
	for _, e := range result.Engines {
		byID[e.ID] = e
	}
	assert.True(t, byID["gemini"].HasKey)
	assert.False(t, byID["gemini"].Selected)
	assert.True(t, byID["gpt4"].Selected)
	assert.False(t, byID["gpt4"].HasKey)
}

func TestSelectEngineRejectsUnknown(t *testing.T) {
	handler := NewHandler(projectStub{}, flowStub{}, &settingsStub{}, &ghStub{})

	_, err := handler.SelectEngine(context.Background(), SelectEngineParams{ID: "midjourney"})
	assert.ErrorIs(t, err, engine.ErrUnknownEngine)

	result, err := handler.SelectEngine(context.Background(), SelectEngineParams{ID: "claude"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
}

func TestMapErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{project.ErrProjectNotFound, "PROJECT_NOT_FOUND"},
		{session.ErrAuthRequired, "AUTH_REQUIRED"},
		{flow.ErrInvalidInput, "INVALID_INPUT"},
		{flow.ErrSchemaInvalid, "SCHEMA_INVALID"},
		{flow.ErrUpstream, "UPSTREAM_ERROR"},
		{engine.ErrUnknownEngine, "UNKNOWN_ENGINE"},
		{errors.New("boom"), "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		apiErr := MapError(tc.err)
		require.NotNil(t, apiErr)
		assert.Equal(t, tc.code, apiErr.Code, "for %v", tc.err)
	}
	assert.Nil(t, MapError(nil))
}
