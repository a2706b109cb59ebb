package flow

import (
	"strings"

	"github.com/aigameforge/forge/internal/domain/engine"
)

// Default descriptors for the one target runtime this tool generates for.
const (
	EngineTypeGodot        = "Godot"
	ScriptLanguageGDScript = "GDScript"
)

// CredentialSource looks up the stored credential for an engine id,
// returning "" when none is set. Implemented by engine.Store.
type CredentialSource interface {
	Key(engineID string) string
}

// BuildGenerationRequest normalizes UI state into a GenerationRequest.
// The stored credential is attached only when the active engine's policy
// allows passthrough; a key stored under any other engine is never sent,
// regardless of which engine it was stored for.
func BuildGenerationRequest(userPrompt, activeEngine string, creds CredentialSource) (GenerationRequest, error) {
	prompt := strings.TrimSpace(userPrompt)
	if prompt == "" {
		return GenerationRequest{}, ErrInvalidInput
	}
	req := GenerationRequest{UserPrompt: prompt}
	if creds != nil && engine.ForwardsUserKey(activeEngine) {
		req.UserAPIKey = creds.Key(activeEngine)
	}
	return req, nil
}

// BuildModificationRequest normalizes UI state into a ModificationRequest.
// The instruction is always required; of the existing script and the
// element description, at least one must be present.
func BuildModificationRequest(existingScript, existingDescription, instruction, engineType, scriptLanguage string) (ModificationRequest, error) {
	if strings.TrimSpace(instruction) == "" {
		return ModificationRequest{}, ErrInvalidInput
	}
	if strings.TrimSpace(existingScript) == "" && strings.TrimSpace(existingDescription) == "" {
		return ModificationRequest{}, ErrInvalidInput
	}
	if engineType == "" {
		engineType = EngineTypeGodot
	}
	if scriptLanguage == "" {
		scriptLanguage = ScriptLanguageGDScript
	}
	return ModificationRequest{
		GameElementDescription:  existingDescription,
		GameElementScript:       existingScript,
		ModificationInstruction: instruction,
		GameEngineType:          engineType,
		ScriptLanguage:          scriptLanguage,
	}, nil
}
