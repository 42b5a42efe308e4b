package llm

import (
	"context"
	"errors"
	"strings"

	"rtiassist/internal/config"

	genai "google.golang.org/genai"
)

// GeminiCompleter is a thin wrapper around the official genai client.
type GeminiCompleter struct {
	cli   *genai.Client
	model string
}

func NewGeminiCompleter(ctx context.Context, cfg *config.AIConfig) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; set GEMINI_API_KEY")
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &GeminiCompleter{cli: cli, model: cfg.Model}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	temp := float32(prompt.Temperature)
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt.User, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
			Temperature:       &temp,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
