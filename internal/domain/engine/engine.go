package engine

import "errors"

// ErrUnknownEngine indicates an engine id outside the registry.
var ErrUnknownEngine = errors.New("unknown engine")

// Engine describes a selectable AI engine. ForwardsUserKey is the explicit
// bring-your-own-key policy: a stored credential is forwarded to the flow
// backend only for engines where it is true. A credential stored under any
// other engine is never sent, even when that engine is active.
type Engine struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Provider        string `json:"provider"`
	ForwardsUserKey bool   `json:"forwardsUserKey"`
}

// DefaultEngine is selected until the user picks another one.
const DefaultEngine = "gemini"

var registry = []Engine{
	{ID: "gemini", Name: "Gemini 2.5", Provider: "Google AI", ForwardsUserKey: true},
	{ID: "gpt4", Name: "GPT-4o", Provider: "OpenAI", ForwardsUserKey: false},
	{ID: "claude", Name: "Claude 3.5", Provider: "Anthropic", ForwardsUserKey: false},
	{ID: "copilot", Name: "Copilot", Provider: "Microsoft", ForwardsUserKey: false},
}

// Registry returns the fixed engine catalog in presentation order.
func Registry() []Engine {
	out := make([]Engine, len(registry))
	copy(out, registry)
	return out
}

// Known reports whether id names a registered engine.
func Known(id string) bool {
	for _, e := range registry {
		if e.ID == id {
			return true
		}
	}
	return false
}

// ForwardsUserKey reports the BYOK policy for the given engine id.
// Unknown ids never forward.
func ForwardsUserKey(id string) bool {
	for _, e := range registry {
		if e.ID == id {
			return e.ForwardsUserKey
		}
	}
	return false
}
