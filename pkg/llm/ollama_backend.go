package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/dimslaev/spaider/pkg/utils"
)

// OllamaBackend talks to a local or remote Ollama server.
type OllamaBackend struct {
	client *ollama.Client
}

// NewOllamaBackend connects to baseURL, or to OLLAMA_HOST when baseURL is empty.
func NewOllamaBackend(baseURL string) (*OllamaBackend, error) {
	if baseURL == "" {
		client, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
		return &OllamaBackend{client: client}, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	return &OllamaBackend{client: ollama.NewClient(u, http.DefaultClient)}, nil
}

func (b *OllamaBackend) Send(ctx context.Context, req Request) (string, error) {
	messages := make([]ollama.Message, len(req.Messages))
	totalTokens := 0
	for i, m := range req.Messages {
		messages[i] = ollama.Message{Role: m.Role, Content: m.Content}
		totalTokens += utils.EstimateTokens(m.Content)
	}

	// num_ctx slightly above the prompt size, never below 4096
	numCtx := totalTokens + 1000
	if numCtx < 4096 {
		numCtx = 4096
	}
	options := map[string]any{
		"temperature": req.Temperature,
		"num_ctx":     numCtx,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	stream := false
	chatReq := &ollama.ChatRequest{
		Model:    strings.TrimPrefix(req.Model, "ollama:"),
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}
	if req.Schema != nil {
		chatReq.Format = req.Schema.Document()
	}

	var reply strings.Builder
	err := b.client.Chat(ctx, chatReq, func(res ollama.ChatResponse) error {
		reply.WriteString(res.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr ollama.StatusError
		if errors.As(err, &statusErr) {
			return "", &StatusError{Backend: "ollama", StatusCode: statusErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}
	return reply.String(), nil
}
