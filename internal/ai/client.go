package ai

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Request is one prompt for the model. Path, Language and Content describe
// the excerpt the prompt was built from.
type Request struct {
	Prompt   string
	Path     string
	Language string
	Content  string
}

// Client generates free text for a prompt.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}

// Provider is enumeration of supported inference providers
type Provider string

const (
	ProviderOllama   Provider = "ollama"
	ProviderOpenAI   Provider = "openai"
	ProviderVertexAI Provider = "vertexai"
	ProviderStub     Provider = "stub"
)

// ClientConfig holds configuration for inference clients
type ClientConfig struct {
	Provider  Provider
	Endpoint  string
	Model     string
	APIKey    string
	ProjectID string
	Location  string
	// Timeout bounds one HTTP request; zero waits indefinitely.
	Timeout time.Duration
}

// NewClient creates a new inference client based on configuration
func NewClient(ctx context.Context, config *ClientConfig) (Client, error) {
	if config == nil {
		return nil, errors.New("client config is required")
	}

	switch config.Provider {
	case ProviderOllama:
		return NewOllamaClient(config), nil
	case ProviderOpenAI:
		return NewOpenAIClient(config), nil
	case ProviderVertexAI:
		return NewVertexAIClient(ctx, config)
	case ProviderStub:
		return NewStubClient(config.Model), nil
	default:
		return nil, errors.New("unsupported provider: " + string(config.Provider))
	}
}

// StubClient answers without any model, for offline runs and tests.
type StubClient struct {
	model string
}

// NewStubClient creates a new StubClient
func NewStubClient(model string) *StubClient {
	if model == "" {
		model = "stub"
	}
	return &StubClient{model: model}
}

// Generate returns the first descriptive comment of the excerpt, or a
// generic line naming the file.
func (s *StubClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lines := strings.Split(req.Content, "\n")
	for _, line := range lines[:min(5, len(lines))] {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			if len(line) > 10 {
				return line, nil
			}
		}
	}
	return "Code file: " + req.Path, nil
}

func (s *StubClient) Model() string {
	return s.model
}
