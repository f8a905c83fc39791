package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dimslaev/spaider/pkg/parser"
	"github.com/dimslaev/spaider/pkg/utils"
)

// jsonOnlyInstruction is prepended to every structured request.
const jsonOnlyInstruction = `You are a JSON API. Respond with a single JSON value that conforms to the schema below.
Output raw JSON only. Do not wrap it in markdown code fences and do not add any commentary.

Schema:
`

// Completer is what pipeline stages depend on.
type Completer interface {
	// Complete returns free-form text for prompt under the given role.
	Complete(ctx context.Context, role, prompt string) (string, error)
	// CompleteStructured decodes a schema-validated reply into out.
	CompleteStructured(ctx context.Context, role, prompt string, schema *Schema, out any) error
}

// Options are the per-request model settings shared by every call of a Client.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client issues completions against a Backend. It is constructed once and
// handed to every stage.
type Client struct {
	backend Backend
	opts    Options
	logger  *utils.Logger
}

var _ Completer = (*Client)(nil)

// NewClient returns a Client. backend should already carry retry behaviour.
func NewClient(backend Backend, opts Options, logger *utils.Logger) *Client {
	if logger == nil {
		logger = utils.Discard()
	}
	return &Client{backend: backend, opts: opts, logger: logger}
}

func (c *Client) request(messages []Message, schema *Schema) Request {
	return Request{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		Messages:    messages,
		Schema:      schema,
	}
}

func (c *Client) send(ctx context.Context, req Request, label string) (string, error) {
	start := time.Now()
	reply, err := c.backend.Send(ctx, req)
	if err != nil {
		c.logger.Logf("%s completion failed after %s: %v", label, time.Since(start).Round(time.Millisecond), err)
		return "", err
	}
	c.logger.Logf("%s completion took %s (%d chars)", label, time.Since(start).Round(time.Millisecond), len(reply))
	return reply, nil
}

func (c *Client) Complete(ctx context.Context, role, prompt string) (string, error) {
	req := c.request([]Message{
		{Role: RoleSystem, Content: role},
		{Role: RoleUser, Content: prompt},
	}, nil)
	return c.send(ctx, req, "text")
}

func (c *Client) CompleteStructured(ctx context.Context, role, prompt string, schema *Schema, out any) error {
	if schema == nil {
		return fmt.Errorf("structured completion requires a schema")
	}
	req := c.request([]Message{
		{Role: RoleSystem, Content: jsonOnlyInstruction + string(schema.Document())},
		{Role: RoleSystem, Content: role},
		{Role: RoleUser, Content: prompt},
	}, schema)

	raw, err := c.send(ctx, req, schema.Name)
	if err != nil {
		return err
	}
	return decodeStructured(raw, schema, out)
}

// decodeStructured strips stray fences, parses and validates raw, then
// decodes it into out (which may be nil).
func decodeStructured(raw string, schema *Schema, out any) error {
	cleaned := parser.StripCodeFences(raw)

	var instance any
	if err := json.Unmarshal([]byte(cleaned), &instance); err != nil {
		return &SchemaValidationError{Schema: schema.Name, Raw: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := schema.Validate(instance); err != nil {
		return &SchemaValidationError{Schema: schema.Name, Raw: raw, Err: err}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &SchemaValidationError{Schema: schema.Name, Raw: raw, Err: err}
	}
	return nil
}

// Structured runs a structured completion and returns the decoded value.
func Structured[T any](ctx context.Context, c Completer, role, prompt string, schema *Schema) (T, error) {
	var out T
	err := c.CompleteStructured(ctx, role, prompt, schema, &out)
	return out, err
}
