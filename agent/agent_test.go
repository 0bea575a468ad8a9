package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/HildaM/logs/slog"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "agent-test")
	_ = slog.InitFile(filepath.Join(dir, "test.log"), slog.WithLevel("debug"), slog.WithColor(false))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// fakeLLM 按调用顺序返回预设回答
type fakeLLM struct {
	answers []string
	err     error
	prompts []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) == 0 {
		return "", nil
	}
	answer := f.answers[0]
	f.answers = f.answers[1:]
	return answer, nil
}

type fakeSearcher struct {
	result string
	err    error
	calls  int
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (string, error) {
	f.calls++
	return f.result, f.err
}

func TestRouterNoSearch(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{answers: []string{"No", "Paris is the capital of France."}}
	search := &fakeSearcher{}

	router, err := BuildAgentGraph(ctx, Deps{LLM: llm, Search: search, MaxTokens: 3000})
	require.NoError(t, err)

	out, err := router.Run(ctx, &model.ConversationState{Input: "What is the capital of France?"})
	require.NoError(t, err)

	assert.False(t, out.NeedSearch)
	assert.Empty(t, out.SearchResults)
	assert.Equal(t, 0, search.calls)
	assert.Len(t, llm.prompts, 2)
	assert.Equal(t, "Paris is the capital of France.", out.Response)
	assert.Equal(t, "\nYou: What is the capital of France?\nAssistant: Paris is the capital of France.", out.History)
	assert.Nil(t, out.Failure)
}

func TestRouterEmptySearchResult(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{answers: []string{"Yes, it needs current data."}}
	search := &fakeSearcher{result: "  "}

	router, err := BuildAgentGraph(ctx, Deps{LLM: llm, Search: search})
	require.NoError(t, err)

	out, err := router.Run(ctx, &model.ConversationState{Input: "Weather in London today?", History: "\nYou: hi\nAssistant: hello"})
	require.NoError(t, err)

	sentinel := "[Web search error: No results returned from search service]"
	assert.True(t, out.NeedSearch)
	assert.Equal(t, 1, search.calls)
	assert.Equal(t, sentinel, out.SearchResults)
	assert.Equal(t, sentinel, out.Response)
	// 只调用了 decide_search
	assert.Len(t, llm.prompts, 1)
	require.NotNil(t, out.Failure)
	assert.Equal(t, consts.KindSearch, out.Failure.Kind)
	assert.Equal(t, "\nYou: hi\nAssistant: hello\nYou: Weather in London today?\nAssistant: "+sentinel, out.History)
}

func TestRouterSearchResultsInPrompt(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{answers: []string{"YES", "Assistant: It is sunny."}}
	search := &fakeSearcher{result: "London: sunny, 21C"}

	router, err := BuildAgentGraph(ctx, Deps{LLM: llm, Search: search, Tone: "Answer cheerfully. "})
	require.NoError(t, err)

	out, err := router.Run(ctx, &model.ConversationState{Input: "Weather in London?"})
	require.NoError(t, err)

	require.Len(t, llm.prompts, 2)
	assert.Equal(t, "Answer cheerfully. \nYou: Weather in London?\n\nSearch results:\nLondon: sunny, 21C", llm.prompts[1])
	assert.Equal(t, "It is sunny.", out.Response)
}

func TestRouterCompletionFailure(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{err: errors.New("connection refused")}

	router, err := BuildAgentGraph(ctx, Deps{LLM: llm, Search: &fakeSearcher{}})
	require.NoError(t, err)

	out, err := router.Run(ctx, &model.ConversationState{Input: "hello"})
	require.NoError(t, err)

	assert.False(t, out.NeedSearch)
	assert.Equal(t, "[GEN_RESP LLM error: connection refused]", out.Response)
	assert.Equal(t, "\nYou: hello\nAssistant: [GEN_RESP LLM error: connection refused]", out.History)
}

func TestRouterDoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	router, err := BuildAgentGraph(ctx, Deps{LLM: &fakeLLM{answers: []string{"no", "hi"}}, Search: &fakeSearcher{}})
	require.NoError(t, err)

	in := &model.ConversationState{Input: "hello"}
	_, err = router.Run(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, in.History)
	assert.Empty(t, in.Response)
}

func TestBuildAgentGraphMissingDeps(t *testing.T) {
	_, err := BuildAgentGraph(context.Background(), Deps{})
	assert.Error(t, err)
}
