package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type VertexAIClient struct {
	config *ClientConfig
	client *genai.Client
}

// genaiConfig picks the backend: a project selects Vertex AI, otherwise the
// API key is used against the Gemini API.
func genaiConfig(config *ClientConfig) genai.ClientConfig {
	cc := genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if strings.TrimSpace(config.ProjectID) != "" {
		cc.Backend = genai.BackendVertexAI
		cc.Project = config.ProjectID
		cc.Location = config.Location
		if cc.Location == "" {
			cc.Location = "us-central1"
		}
	}
	if strings.TrimSpace(config.APIKey) != "" {
		cc.APIKey = config.APIKey
	}
	if config.Timeout > 0 {
		timeout := config.Timeout
		cc.HTTPOptions.Timeout = &timeout
	}
	return cc
}

// NewVertexAIClient creates a new client for the Google Gemini API.
func NewVertexAIClient(ctx context.Context, config *ClientConfig) (*VertexAIClient, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	// the CLI's default model is an Ollama tag, not a Gemini model
	if config.Model == "" || config.Model == "gemma:2b" {
		config.Model = "gemini-2.0-flash"
	}
	if strings.TrimSpace(config.APIKey) == "" && strings.TrimSpace(config.ProjectID) == "" {
		return nil, errors.New("vertexai provider needs an API key or a project ID")
	}

	cc := genaiConfig(config)
	client, err := genai.NewClient(ctx, &cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &VertexAIClient{
		config: config,
		client: client,
	}, nil
}

func (c *VertexAIClient) Model() string {
	return c.config.Model
}

// Generate implements the generation call using the Gemini API
func (c *VertexAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", errors.New("gemini client not initialized")
	}
	temp := float32(0.2)
	cfg := genai.GenerateContentConfig{
		Temperature: &temp,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(req.Prompt), &cfg)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no text returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
