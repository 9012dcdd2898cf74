package ai

import (
	"context"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestProviderConstants(t *testing.T) {
	tests := []struct {
		provider Provider
		expected string
	}{
		{ProviderOllama, "ollama"},
		{ProviderOpenAI, "openai"},
		{ProviderVertexAI, "vertexai"},
		{ProviderStub, "stub"},
	}

	for _, tt := range tests {
		if string(tt.provider) != tt.expected {
			t.Errorf("Expected provider %q, got %q", tt.expected, string(tt.provider))
		}
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		config      *ClientConfig
		expectError bool
		errorMsg    string
		expectType  string
	}{
		{
			name:        "nil config",
			config:      nil,
			expectError: true,
			errorMsg:    "client config is required",
		},
		{
			name:       "ollama provider",
			config:     &ClientConfig{Provider: ProviderOllama, Model: "gemma:2b"},
			expectType: "*ai.OllamaClient",
		},
		{
			name:       "openai provider",
			config:     &ClientConfig{Provider: ProviderOpenAI, Endpoint: "http://localhost:8080"},
			expectType: "*ai.OpenAIClient",
		},
		{
			name:       "stub provider",
			config:     &ClientConfig{Provider: ProviderStub},
			expectType: "*ai.StubClient",
		},
		{
			name:        "vertexai without credentials",
			config:      &ClientConfig{Provider: ProviderVertexAI},
			expectError: true,
			errorMsg:    "vertexai provider needs an API key or a project ID",
		},
		{
			name:        "unsupported provider",
			config:      &ClientConfig{Provider: "bogus"},
			expectError: true,
			errorMsg:    "unsupported provider: bogus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if err.Error() != tt.errorMsg {
					t.Errorf("Expected error %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}

			switch tt.expectType {
			case "*ai.OllamaClient":
				if _, ok := client.(*OllamaClient); !ok {
					t.Errorf("Expected *OllamaClient, got %T", client)
				}
			case "*ai.OpenAIClient":
				if _, ok := client.(*OpenAIClient); !ok {
					t.Errorf("Expected *OpenAIClient, got %T", client)
				}
			case "*ai.StubClient":
				if _, ok := client.(*StubClient); !ok {
					t.Errorf("Expected *StubClient, got %T", client)
				}
			}
		})
	}
}

func TestStubClient_Generate(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		expected string
	}{
		{
			name:     "python comment",
			path:     "main.py",
			content:  "# Entry point for the CLI\nimport sys",
			expected: "# Entry point for the CLI",
		},
		{
			name:     "go comment after package",
			path:     "main.go",
			content:  "package main\n\n// Command server runs things",
			expected: "// Command server runs things",
		},
		{
			name:     "short comment ignored",
			path:     "a.js",
			content:  "// hi\nconsole.log(1)",
			expected: "Code file: a.js",
		},
		{
			name:     "comment beyond first five lines",
			path:     "b.py",
			content:  "a\nb\nc\nd\ne\n# a long enough comment",
			expected: "Code file: b.py",
		},
		{
			name:     "empty content",
			path:     "empty.rb",
			content:  "",
			expected: "Code file: empty.rb",
		},
	}

	client := NewStubClient("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.Generate(context.Background(), Request{Path: tt.path, Content: tt.content})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStubClient_CancelledContext(t *testing.T) {
	client := NewStubClient("stub")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Generate(ctx, Request{Path: "x.go"}); err == nil {
		t.Error("Expected context error, got nil")
	}
}

func TestStubClient_Model(t *testing.T) {
	if m := NewStubClient("").Model(); m != "stub" {
		t.Errorf("Expected default model 'stub', got %q", m)
	}
	if m := NewStubClient("custom").Model(); m != "custom" {
		t.Errorf("Expected model 'custom', got %q", m)
	}
}

func TestGenaiConfig(t *testing.T) {
	cc := genaiConfig(&ClientConfig{APIKey: "key"})
	if cc.Backend != genai.BackendGeminiAPI || cc.APIKey != "key" || cc.Project != "" {
		t.Errorf("Expected Gemini API backend with key, got %+v", cc)
	}
	if cc.HTTPOptions.Timeout != nil {
		t.Errorf("Expected no timeout, got %v", *cc.HTTPOptions.Timeout)
	}

	cc = genaiConfig(&ClientConfig{ProjectID: "proj", Timeout: time.Minute})
	if cc.Backend != genai.BackendVertexAI || cc.Project != "proj" || cc.Location != "us-central1" {
		t.Errorf("Expected Vertex project with default location, got %+v", cc)
	}
	if cc.HTTPOptions.Timeout == nil || *cc.HTTPOptions.Timeout != time.Minute {
		t.Errorf("Expected 1m timeout, got %v", cc.HTTPOptions.Timeout)
	}

	cc = genaiConfig(&ClientConfig{ProjectID: "proj", Location: "europe-west4"})
	if cc.Location != "europe-west4" {
		t.Errorf("Expected location europe-west4, got %q", cc.Location)
	}
}

func TestClientInterfaceCompliance(t *testing.T) {
	var _ Client = (*OllamaClient)(nil)
	var _ Client = (*OpenAIClient)(nil)
	var _ Client = (*VertexAIClient)(nil)
	var _ Client = (*StubClient)(nil)
}
