package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gemma:2b", body.Model)
		assert.Equal(t, "summarize this", body.Prompt)
		assert.False(t, body.Stream)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"gemma:2b","response":"  A tidy summary.\n","done":true}`))
	}))
	defer srv.Close()

	client := NewOllamaClient(&ClientConfig{Endpoint: srv.URL, Model: "gemma:2b"})
	got, err := client.Generate(context.Background(), Request{Prompt: "summarize this"})
	require.NoError(t, err)
	assert.Equal(t, "A tidy summary.", got)
}

func TestOllamaClient_Generate_Streamed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"Hello","done":false}
{"response":", ","done":false}
{"response":"world","done":false}
{"response":"","done":true}
`))
	}))
	defer srv.Close()

	client := NewOllamaClient(&ClientConfig{Endpoint: srv.URL + "/", Model: "m"})
	got, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", got)
}

func TestOllamaClient_Generate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer srv.Close()

	client := NewOllamaClient(&ClientConfig{Endpoint: srv.URL, Model: "nope"})
	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Contains(t, err.Error(), "not found")
}

func TestOllamaClient_Generate_ServerErrorNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewOllamaClient(&ClientConfig{Endpoint: srv.URL})
	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestOllamaClient_Generate_ErrorMidStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{\"response\":\"partial\"}\n{\"error\":\"out of memory\"}\n"))
	}))
	defer srv.Close()

	client := NewOllamaClient(&ClientConfig{Endpoint: srv.URL})
	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestOllamaClient_Generate_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewOllamaClient(&ClientConfig{Endpoint: srv.URL})
	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestOllamaClient_Generate_ConnectionError(t *testing.T) {
	client := NewOllamaClient(&ClientConfig{Endpoint: "http://localhost:1"}) // nothing listening
	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
}

func TestOllamaClient_Generate_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewOllamaClient(&ClientConfig{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
}

func TestNewOllamaClient_Defaults(t *testing.T) {
	client := NewOllamaClient(&ClientConfig{Model: "gemma:2b"})
	assert.Equal(t, defaultOllamaEndpoint, client.baseURL)
	assert.Equal(t, "gemma:2b", client.Model())
	assert.Zero(t, client.http.Timeout)
}
