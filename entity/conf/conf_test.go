package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("funny_prompt", "")

	path := writeConfig(t, `
model:
  default_model:
    model_id: gpt-4o-mini
    api_key: sk-file
rag:
  top_k: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Model.DefaultModel.ModelID)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, ":5050", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 30, cfg.Setting.LLMTimeoutSeconds)
	assert.Equal(t, DefaultKeywords, cfg.RAG.Keywords)
	// 向量模型沿用默认模型密钥
	assert.Equal(t, "sk-file", cfg.Model.Embedding.APIKey)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("TAVILY_API_KEY", "tvly-env")
	t.Setenv("funny_prompt", "Answer like a pirate. ")

	path := writeConfig(t, `
model:
  default_model:
    model_id: gpt-4o-mini
    api_key: sk-file
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Model.DefaultModel.APIKey)
	assert.Equal(t, "tvly-env", cfg.Search.Tavily.APIKey)
	assert.Equal(t, "Answer like a pirate. ", cfg.Setting.TonePrompt)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing api key",
			body: "model:\n  default_model:\n    model_id: gpt-4o-mini\n",
		},
		{
			name: "missing model id",
			body: "model:\n  default_model:\n    api_key: sk-file\n",
		},
		{
			name: "unknown session backend",
			body: "model:\n  default_model:\n    model_id: m\n    api_key: k\nsession:\n  backend: etcd\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadChunkOverlap(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	base := "model:\n  default_model:\n    model_id: m\n    api_key: k\n"
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "absent", body: base, want: 200},
		{name: "explicit zero", body: base + "rag:\n  chunk_overlap: 0\n", want: 0},
		{name: "explicit value", body: base + "rag:\n  chunk_overlap: 50\n", want: 50},
		{name: "not smaller than chunk", body: base + "rag:\n  chunk_size: 100\n  chunk_overlap: 100\n", want: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.RAG.ChunkOverlap)
		})
	}
}
