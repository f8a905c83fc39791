package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimslaev/spaider/pkg/types"
)

type funcBackend func(ctx context.Context, req Request) (string, error)

func (f funcBackend) Send(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

func replyWith(text string, seen *[]Request) Backend {
	return funcBackend(func(_ context.Context, req Request) (string, error) {
		if seen != nil {
			*seen = append(*seen, req)
		}
		return text, nil
	})
}

var editModeOnly = []byte(`{
  "type": "object",
  "properties": {"editMode": {"type": "boolean"}},
  "required": ["editMode"]
}`)

func TestCompleteStructured_StripsFences(t *testing.T) {
	schema, err := ParseSchema("edit_mode", editModeOnly)
	require.NoError(t, err)

	var seen []Request
	client := NewClient(replyWith("```json\n{\"editMode\":false}\n```", &seen), Options{Model: "m", Temperature: 0.2}, nil)

	var out struct {
		EditMode *bool `json:"editMode"`
	}
	require.NoError(t, client.CompleteStructured(context.Background(), "classify", "hello", schema, &out))
	require.NotNil(t, out.EditMode)
	assert.False(t, *out.EditMode)

	require.Len(t, seen, 1)
	req := seen[0]
	assert.Equal(t, "m", req.Model)
	assert.Equal(t, 0.2, req.Temperature)
	assert.Same(t, schema, req.Schema)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Output raw JSON only")
	assert.Contains(t, req.Messages[0].Content, `"editMode"`)
	assert.Equal(t, Message{Role: RoleSystem, Content: "classify"}, req.Messages[1])
	assert.Equal(t, Message{Role: RoleUser, Content: "hello"}, req.Messages[2])
}

func TestCompleteStructured_Rejections(t *testing.T) {
	schema, err := ParseSchema("edit_mode", editModeOnly)
	require.NoError(t, err)

	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "Sure! editMode is false."},
		{"wrong type", `{"editMode":"no"}`},
		{"missing field", `{}`},
		{"truncated", "```json\n{\"editMode\":"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(replyWith(tt.reply, nil), Options{}, nil)
			var out map[string]any
			err := client.CompleteStructured(context.Background(), "r", "p", schema, &out)

			var sve *SchemaValidationError
			require.ErrorAs(t, err, &sve)
			assert.Equal(t, "edit_mode", sve.Schema)
			assert.Equal(t, tt.reply, sve.Raw)
		})
	}
}

func TestCompleteStructured_PropagatesTransportError(t *testing.T) {
	schema := MustSchemaFor[types.Intent]("intent", "")
	want := &TransportError{Attempts: 3, Err: errors.New("connection refused")}
	client := NewClient(funcBackend(func(context.Context, Request) (string, error) { return "", want }), Options{}, nil)

	_, err := Structured[types.Intent](context.Background(), client, "r", "p", schema)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 3, te.Attempts)
}

func TestStructured_DecodesIntent(t *testing.T) {
	schema := MustSchemaFor[types.Intent]("intent", "")
	reply := `{"editMode":true,"description":"add a button","needsMoreContext":false,"filePaths":["src/app.ts"],"searchTerms":["Button"]}`

	intent, err := Structured[types.Intent](context.Background(), NewClient(replyWith(reply, nil), Options{}, nil), "r", "p", schema)
	require.NoError(t, err)
	assert.True(t, intent.EditMode)
	assert.Equal(t, []string{"src/app.ts"}, intent.FilePaths)
	assert.Equal(t, []string{"Button"}, intent.SearchTerms)
}

func TestComplete_IsUnstructured(t *testing.T) {
	var seen []Request
	client := NewClient(replyWith("```ts\nconst a = 1;\n```", &seen), Options{Model: "m"}, nil)

	out, err := client.Complete(context.Background(), "rewrite", "file")
	require.NoError(t, err)
	assert.Equal(t, "```ts\nconst a = 1;\n```", out)
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0].Schema)
	assert.Len(t, seen[0].Messages, 2)
}
