package template

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/HildaM/logs/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "template-test")
	_ = slog.InitFile(filepath.Join(dir, "test.log"), slog.WithLevel("debug"), slog.WithColor(false))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestRenderGenerate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		vars map[string]any
		want string
	}{
		{
			name: "no search results",
			vars: map[string]any{"tone": "", "history": "", "input": "What is the capital of France?", "search_results": ""},
			want: "\nYou: What is the capital of France?",
		},
		{
			name: "with tone history and results",
			vars: map[string]any{"tone": "Be brief. ", "history": "\nYou: hi\nAssistant: hello", "input": "weather?", "search_results": "sunny"},
			want: "Be brief. \nYou: hi\nAssistant: hello\nYou: weather?\n\nSearch results:\nsunny",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(ctx, Generate, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderRAG(t *testing.T) {
	out, err := Render(context.Background(), RAG, map[string]any{"context": "chunk one\n\nchunk two", "input": "Who can claim?"})
	require.NoError(t, err)
	assert.Equal(t, "Use the following DWP policy context to answer:\nchunk one\n\nchunk two\n\nQuestion: Who can claim?", out)
}

func TestRenderCheckForm(t *testing.T) {
	ctx := context.Background()

	out, err := Render(ctx, CheckForm, map[string]any{"context": "", "content": "Q: relationship? A: friend"})
	require.NoError(t, err)
	assert.NotContains(t, out, "policy context")
	assert.Contains(t, out, "You are a DWP policy expert.")
	assert.Contains(t, out, "Q: relationship? A: friend")

	out, err = Render(ctx, CheckForm, map[string]any{"context": "rule 1", "content": "form"})
	require.NoError(t, err)
	assert.Contains(t, out, "Use the following DWP policy context to check the form:\nrule 1")
}

func TestGetPromptTemplateMissing(t *testing.T) {
	_, err := GetPromptTemplate(context.Background(), "absent")
	assert.Error(t, err)
}
