package responder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/HildaM/logs/slog"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "responder-test")
	_ = slog.InitFile(filepath.Join(dir, "test.log"), slog.WithLevel("debug"), slog.WithColor(false))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Paris.", "Paris."},
		{"  Assistant: Paris.  ", "Paris."},
		{"Assistant:Paris", "Paris"},
		{"The Assistant: label stays", "The Assistant: label stays"},
		{"Assistant:", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.in))
		})
	}
}

func TestInvokeSearchSentinel(t *testing.T) {
	calls := 0
	r := NewResponder(llm.CompleterFunc(func(ctx context.Context, p string) (string, error) {
		calls++
		return "should not be used", nil
	}), "", 3000)

	// 只有文本哨兵、没有类型化错误时同样短路
	state := &model.ConversationState{Input: "q", SearchResults: "[Web search error: timeout]"}
	out, err := r.Invoke(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, "[Web search error: timeout]", out.Response)
	assert.Equal(t, "\nYou: q\nAssistant: [Web search error: timeout]", out.History)
}

func TestInvokeEmptyCompletion(t *testing.T) {
	r := NewResponder(llm.CompleterFunc(func(ctx context.Context, p string) (string, error) {
		return "   ", nil
	}), "", 3000)

	out, err := r.Invoke(context.Background(), &model.ConversationState{Input: "q"})
	require.NoError(t, err)
	assert.Equal(t, consts.GenerateEmpty, out.Response)
	require.NotNil(t, out.Failure)
	assert.Equal(t, consts.KindGenerate, out.Failure.Kind)
}

func TestInvokeTrimsPromptHistory(t *testing.T) {
	var prompt string
	r := NewResponder(llm.CompleterFunc(func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "ok", nil
	}), "", 20)

	history := "\nYou: first question about something long enough\nAssistant: first answer that is also long enough" +
		"\nYou: second\nAssistant: two"
	out, err := r.Invoke(context.Background(), &model.ConversationState{Input: "third", History: history})
	require.NoError(t, err)
	assert.NotContains(t, prompt, "first question")
	assert.Contains(t, prompt, "\nYou: second\nAssistant: two\nYou: third")
	// 保存的历史不截断
	assert.Equal(t, history+"\nYou: third\nAssistant: ok", out.History)
}
