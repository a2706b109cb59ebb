package flow

// JSON schemas constraining the model's structured output. The same shapes
// are re-checked on our side after decoding; the schema narrows what the
// model can emit, the validator is what the contract hangs on.

func generateOutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"gameTitle": map[string]any{
				"type":        "string",
				"description": "A simple, non-generic name for the game.",
			},
			"gameType": map[string]any{
				"type":        "string",
				"description": "The genre or type of the game.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "A brief description of the game.",
			},
			"projectStructure": map[string]any{
				"type":        "string",
				"description": "A high-level description of the recommended Godot project file structure.",
			},
			"coreMechanics": map[string]any{
				"type":        "array",
				"description": "A list of core game mechanics.",
				"items":       map[string]any{"type": "string"},
			},
			"mainScript": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"filename": map[string]any{"type": "string"},
					"content":  map[string]any{"type": "string"},
				},
				"required": []string{"filename", "content"},
			},
			"placeholderAssets": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"type":        map[string]any{"type": "string", "enum": AssetTypes},
						"description": map[string]any{"type": "string"},
					},
					"required": []string{"name", "type", "description"},
				},
			},
		},
		"required": []string{
			"gameTitle", "gameType", "description", "projectStructure",
			"coreMechanics", "mainScript", "placeholderAssets",
		},
	}
}

func modifyOutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modifiedGameElementScript": map[string]any{
				"type":        []string{"string", "null"},
				"description": "The modified script, if applicable.",
			},
			"modifiedGameElementProperties": map[string]any{
				"type":        []string{"object", "null"},
				"description": "Key-value pairs of modified properties, if applicable.",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "A brief explanation of the changes made.",
			},
			"notes": map[string]any{
				"type":        "string",
				"description": "Additional notes or warnings.",
			},
		},
		"required": []string{"explanation"},
	}
}
