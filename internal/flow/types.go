package flow

// GenerationRequest is the input to the GenerateInitialProject flow. The
// optional user key rides along only when the active engine's BYOK policy
// allows passthrough; see BuildGenerationRequest.
type GenerationRequest struct {
	UserPrompt string `json:"userPrompt"`
	UserAPIKey string `json:"userApiKey,omitempty"`
}

// ModificationRequest is the input to the ModifyGameElement flow. At least
// one of the description or the script must be present.
type ModificationRequest struct {
	GameElementDescription  string `json:"gameElementDescription,omitempty"`
	GameElementScript       string `json:"gameElementScript,omitempty"`
	ModificationInstruction string `json:"modificationInstruction"`
	GameEngineType          string `json:"gameEngineType"`
	ScriptLanguage          string `json:"scriptLanguage,omitempty"`
	UserAPIKey              string `json:"-"`
}

// MainScript is the generated main logic file.
type MainScript struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// PlaceholderAsset describes a simple stand-in asset for the generated game.
type PlaceholderAsset struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // sprite, sound, tile or font
	Description string `json:"description"`
}

// AssetTypes is the closed set of placeholder asset types.
var AssetTypes = []string{"sprite", "sound", "tile", "font"}

// GenerateInitialProjectOutput is the schema-validated result of the
// generation flow. Every field is mandatory; a response missing any of them
// is rejected outright, never repaired.
type GenerateInitialProjectOutput struct {
	GameTitle         string             `json:"gameTitle"`
	GameType          string             `json:"gameType"`
	Description       string             `json:"description"`
	ProjectStructure  string             `json:"projectStructure"`
	CoreMechanics     []string           `json:"coreMechanics"`
	MainScript        MainScript         `json:"mainScript"`
	PlaceholderAssets []PlaceholderAsset `json:"placeholderAssets"`
}

// ModifyGameElementOutput is the schema-validated result of the modification
// flow. Script and properties may both be null when the model judged no
// applicable change; the explanation is always present.
type ModifyGameElementOutput struct {
	ModifiedGameElementScript     *string        `json:"modifiedGameElementScript,omitempty"`
	ModifiedGameElementProperties map[string]any `json:"modifiedGameElementProperties,omitempty"`
	Explanation                   string         `json:"explanation"`
	Notes                         string         `json:"notes,omitempty"`
}
