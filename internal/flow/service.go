package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// ModelRequest is a single structured-output request against a generative
// backend. UserAPIKey, when set, replaces the server-side credential for
// this call only.
type ModelRequest struct {
	System     string
	Prompt     string
	Schema     map[string]any
	UserAPIKey string
}

// Model produces raw JSON text for a structured-output request.
type Model interface {
	Generate(ctx context.Context, req ModelRequest) (string, error)
}

// Service runs the two AI flows: single request-response round trips with a
// strict output schema. A failed or malformed response is a terminal error;
// nothing here retries or repairs.
type Service struct {
	model  Model
	logger *slog.Logger
}

// NewService creates a new flow service.
func NewService(model Model, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{model: model, logger: logger}
}

// GenerateInitialProject turns a free-text game idea into a starter project.
// Pure request/response; the caller persists the result.
func (s *Service) GenerateInitialProject(ctx context.Context, req GenerationRequest) (*GenerateInitialProjectOutput, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return nil, ErrInvalidInput
	}

	raw, err := s.model.Generate(ctx, ModelRequest{
		System:     generateSystemPrompt,
		Prompt:     renderGeneratePrompt(req.UserPrompt),
		Schema:     generateOutputSchema(),
		UserAPIKey: req.UserAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out, err := decodeGenerateOutput(raw)
	if err != nil {
		s.logger.Warn("generation output rejected", "error", err)
		return nil, err
	}
	s.logger.Info("generated project", "title", out.GameTitle, "type", out.GameType,
		"mechanics", len(out.CoreMechanics), "assets", len(out.PlaceholderAssets))
	return out, nil
}

// ModifyGameElement applies a natural-language instruction to an existing
// element. Both the script and the properties being null is a valid
// success: the model judged no applicable change.
func (s *Service) ModifyGameElement(ctx context.Context, req ModificationRequest) (*ModifyGameElementOutput, error) {
	if strings.TrimSpace(req.ModificationInstruction) == "" {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(req.GameElementScript) == "" && strings.TrimSpace(req.GameElementDescription) == "" {
		return nil, ErrInvalidInput
	}
	if req.GameEngineType == "" {
		req.GameEngineType = EngineTypeGodot
	}
	if req.ScriptLanguage == "" {
		req.ScriptLanguage = ScriptLanguageGDScript
	}

	raw, err := s.model.Generate(ctx, ModelRequest{
		System:     modifySystemPrompt(req.GameEngineType, req.ScriptLanguage),
		Prompt:     renderModifyPrompt(req),
		Schema:     modifyOutputSchema(),
		UserAPIKey: req.UserAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out, err := decodeModifyOutput(raw)
	if err != nil {
		s.logger.Warn("modification output rejected", "error", err)
		return nil, err
	}
	return out, nil
}

func decodeGenerateOutput(raw string) (*GenerateInitialProjectOutput, error) {
	if strings.TrimSpace(raw) == "" || strings.TrimSpace(raw) == "null" {
		return nil, fmt.Errorf("%w: empty model output", ErrSchemaInvalid)
	}
	var out GenerateInitialProjectOutput
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}

	switch {
	case strings.TrimSpace(out.GameTitle) == "":
		return nil, fmt.Errorf("%w: missing gameTitle", ErrSchemaInvalid)
	case strings.TrimSpace(out.GameType) == "":
		return nil, fmt.Errorf("%w: missing gameType", ErrSchemaInvalid)
	case strings.TrimSpace(out.Description) == "":
		return nil, fmt.Errorf("%w: missing description", ErrSchemaInvalid)
	case strings.TrimSpace(out.ProjectStructure) == "":
		return nil, fmt.Errorf("%w: missing projectStructure", ErrSchemaInvalid)
	case len(out.CoreMechanics) == 0:
		return nil, fmt.Errorf("%w: missing coreMechanics", ErrSchemaInvalid)
	case strings.TrimSpace(out.MainScript.Filename) == "":
		return nil, fmt.Errorf("%w: missing mainScript.filename", ErrSchemaInvalid)
	case strings.TrimSpace(out.MainScript.Content) == "":
		return nil, fmt.Errorf("%w: missing mainScript.content", ErrSchemaInvalid)
	case out.PlaceholderAssets == nil:
		return nil, fmt.Errorf("%w: missing placeholderAssets", ErrSchemaInvalid)
	}
	for _, asset := range out.PlaceholderAssets {
		if strings.TrimSpace(asset.Name) == "" || strings.TrimSpace(asset.Description) == "" {
			return nil, fmt.Errorf("%w: incomplete placeholder asset", ErrSchemaInvalid)
		}
		if !validAssetType(asset.Type) {
			return nil, fmt.Errorf("%w: invalid asset type %q", ErrSchemaInvalid, asset.Type)
		}
	}
	return &out, nil
}

func decodeModifyOutput(raw string) (*ModifyGameElementOutput, error) {
	if strings.TrimSpace(raw) == "" || strings.TrimSpace(raw) == "null" {
		return nil, fmt.Errorf("%w: empty model output", ErrSchemaInvalid)
	}
	var out ModifyGameElementOutput
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if strings.TrimSpace(out.Explanation) == "" {
		return nil, fmt.Errorf("%w: missing explanation", ErrSchemaInvalid)
	}
	// A blank script means no script change; callers only ever see null or
	// a non-empty string.
	if out.ModifiedGameElementScript != nil && strings.TrimSpace(*out.ModifiedGameElementScript) == "" {
		out.ModifiedGameElementScript = nil
	}
	return &out, nil
}

func validAssetType(t string) bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}
