package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultOllamaEndpoint = "http://localhost:11434"

// OllamaClient is a thin HTTP client for the Ollama generate API.
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
}

func NewOllamaClient(config *ClientConfig) *OllamaClient {
	base := strings.TrimRight(config.Endpoint, "/")
	if base == "" {
		base = defaultOllamaEndpoint
	}
	return &OllamaClient{
		baseURL: base,
		model:   config.Model,
		http:    &http.Client{Timeout: config.Timeout},
	}
}

func (c *OllamaClient) Model() string {
	return c.model
}

// Generate posts the prompt to /api/generate. Replies are read as a stream
// of JSON objects, so both streamed and single-object answers are joined.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
		Stream bool   `json:"stream"`
	}{Model: c.model, Prompt: req.Prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generating: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error != "" {
			return "", fmt.Errorf("generating: HTTP %d: %s", resp.StatusCode, e.Error)
		}
		return "", fmt.Errorf("generating: HTTP %d", resp.StatusCode)
	}

	var out strings.Builder
	dec := json.NewDecoder(resp.Body)
	for {
		var part struct {
			Response string `json:"response"`
			Error    string `json:"error"`
		}
		if err := dec.Decode(&part); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("decoding response: %w", err)
		}
		if part.Error != "" {
			return "", errors.New(part.Error)
		}
		out.WriteString(part.Response)
	}
	return strings.TrimSpace(out.String()), nil
}
