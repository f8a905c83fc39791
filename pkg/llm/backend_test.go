package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimslaev/spaider/pkg/types"
)

func chatCompletionJSON(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func TestOpenAIBackend_SendsSchemaAndParams(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionJSON(`{"editMode":true}`))
	}))
	defer server.Close()

	backend := NewOpenAIBackend(OpenAIConfig{BaseURL: server.URL, APIKey: "test-key", StructuredOutputs: true})
	schema := MustSchemaFor[types.Intent]("intent", "classification")

	out, err := backend.Send(context.Background(), Request{
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   512,
		Messages:    []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}},
		Schema:      schema,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"editMode":true}`, out)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.Equal(t, 0.1, captured["temperature"])
	assert.Equal(t, float64(512), captured["max_completion_tokens"])
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])

	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	jsonSchema := format["json_schema"].(map[string]any)
	assert.Equal(t, "intent", jsonSchema["name"])
	assert.Equal(t, true, jsonSchema["strict"])
}

func TestOpenAIBackend_NoResponseFormatWhenDisabled(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionJSON("{}"))
	}))
	defer server.Close()

	backend := NewOpenAIBackend(OpenAIConfig{BaseURL: server.URL, APIKey: "k"})
	_, err := backend.Send(context.Background(), Request{Model: "m", Schema: MustSchemaFor[types.Intent]("intent", "")})
	require.NoError(t, err)
	assert.NotContains(t, captured, "response_format")
}

func TestOpenAIBackend_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
			return
		}
		fmt.Fprint(w, chatCompletionJSON("done"))
	}))
	defer server.Close()

	backend := WithRetry(NewOpenAIBackend(OpenAIConfig{BaseURL: server.URL, APIKey: "k"}), fastRetry(2), nil)
	out, err := backend.Send(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAIBackend_BadRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad schema","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	backend := WithRetry(NewOpenAIBackend(OpenAIConfig{BaseURL: server.URL, APIKey: "k"}), fastRetry(2), nil)
	_, err := backend.Send(context.Background(), Request{Model: "m"})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.Attempts)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOllamaBackend_Send(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"model":"qwen2.5-coder:7b","message":{"role":"assistant","content":"{\"editMode\":false}"},"done":true}`)
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(server.URL)
	require.NoError(t, err)

	schema := MustSchemaFor[types.Intent]("intent", "")
	out, err := backend.Send(context.Background(), Request{
		Model:    "ollama:qwen2.5-coder:7b",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		Schema:   schema,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"editMode":false}`, out)

	assert.Equal(t, "qwen2.5-coder:7b", captured["model"])
	assert.Equal(t, false, captured["stream"])
	format, ok := captured["format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", format["type"])
	options := captured["options"].(map[string]any)
	assert.Equal(t, float64(4096), options["num_ctx"])
}

func TestOllamaBackend_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, `{}`)
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(server.URL)
	require.NoError(t, err)

	_, err = backend.Send(context.Background(), Request{Model: "m"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.True(t, isRetryable(err))
}
