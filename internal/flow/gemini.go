package flow

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiModel runs structured-output requests against the Gemini API.
// When a request carries a user key, a client is built around that key for
// the one call; the server-side key never mixes with it.
type GeminiModel struct {
	apiKey string
	model  string
}

// NewGeminiModel creates a Gemini-backed model. apiKey may be empty when
// every caller brings their own key.
func NewGeminiModel(apiKey, model string) *GeminiModel {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiModel{apiKey: apiKey, model: model}
}

// Generate sends one request and returns the raw JSON text of the response.
func (m *GeminiModel) Generate(ctx context.Context, req ModelRequest) (string, error) {
	key := m.apiKey
	if req.UserAPIKey != "" {
		key = req.UserAPIKey
	}
	if key == "" {
		return "", fmt.Errorf("no API key configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.Schema != nil {
		cfg.ResponseJsonSchema = req.Schema
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, m.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
