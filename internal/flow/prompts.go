package flow

import (
	"fmt"
	"strings"
)

const generateSystemPrompt = `You are an expert game developer AI specialized in generating initial game project structures and basic code for the Godot Engine.
The user will provide a text description of a game idea. Your task is to generate a basic playable game project with its core structure, simple mechanics, initial GDScripts, and placeholder assets.

Focus on generating:
1. A simple, non-generic game title.
2. The game type/genre.
3. A brief description of the game.
4. A high-level description of a typical Godot project file structure.
5. A list of core game mechanics based on the description.
6. A main GDScript with basic setup for the described mechanics.
7. A list of simple placeholder assets (shapes, colors, basic sounds) that would be used in the game.

Respond in JSON only, strictly following the output schema. Ensure all string values are properly escaped.`

func renderGeneratePrompt(userPrompt string) string {
	return fmt.Sprintf("User's game idea: %s", userPrompt)
}

func modifySystemPrompt(engineType, scriptLanguage string) string {
	return fmt.Sprintf(`You are an expert game developer specializing in creating and modifying game elements and scripts for %s using %s.
Your task is to modify a game element based on the user's specific instructions.

Follow these rules:
1. If a script is provided, prioritize modifying the script directly.
2. If only a description is provided, suggest appropriate property changes or script snippets.
3. Always output a valid JSON object matching the specified schema.
4. Provide a clear explanation of the changes made.
5. Populate the modified script or the modified properties based on the change. Either can be null if not applicable.`, engineType, scriptLanguage)
}

func renderModifyPrompt(req ModificationRequest) string {
	var b strings.Builder
	if req.GameElementDescription != "" {
		fmt.Fprintf(&b, "Game Element Description: %s\n", req.GameElementDescription)
	}
	if req.GameElementScript != "" {
		fmt.Fprintf(&b, "Game Element Script:\n```%s\n%s\n```\n", strings.ToLower(req.ScriptLanguage), req.GameElementScript)
	}
	fmt.Fprintf(&b, "Modification Instruction: %s", req.ModificationInstruction)
	return b.String()
}
