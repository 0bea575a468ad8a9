package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/hildam/funeral-claim-go/biz/assistant"
	"github.com/hildam/funeral-claim-go/biz/handler"
	"github.com/hildam/funeral-claim-go/biz/router"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/kb"
	"github.com/hildam/funeral-claim-go/repo/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "handler-test")
	_ = slog.InitFile(filepath.Join(dir, "test.log"), slog.WithLevel("debug"), slog.WithColor(false))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type fakeAssistant struct {
	sessions []string
	inputs   []string
}

func (f *fakeAssistant) Chat(ctx context.Context, sessionKey, input string, opts ...compose.Option) (*model.ChatResp, error) {
	if strings.TrimSpace(input) == "" {
		return nil, assistant.ErrEmptyInput
	}
	f.sessions = append(f.sessions, sessionKey)
	f.inputs = append(f.inputs, input)
	return &model.ChatResp{Response: "answer to " + input, Source: consts.SourceAgentGraph}, nil
}

func (f *fakeAssistant) AskPolicy(ctx context.Context, input string) (string, error) {
	if input == "" {
		return "", assistant.ErrEmptyInput
	}
	return consts.KnowledgeNotLoaded, nil
}

func (f *fakeAssistant) CheckForm(ctx context.Context, content string) (string, error) {
	if content == "" {
		return "", assistant.ErrEmptyInput
	}
	return "reviewed: " + content, nil
}

type fakeKB struct {
	err   error
	calls int
}

func (f *fakeKB) Refresh(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakeExtractor struct {
	files []string
}

func (f *fakeExtractor) Process(ctx context.Context, filenames []string) *model.ClaimExtraction {
	f.files = filenames
	return &model.ClaimExtraction{Fields: map[string]any{"deceasedFirstName": "John"}}
}

type fakeText struct{}

func (fakeText) Process(ctx context.Context, path string) *model.OCRResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return &model.OCRResult{Error: "File not found"}
	}
	return &model.OCRResult{Success: true, Text: string(data), TextLength: len(data)}
}

type fixture struct {
	srv         *server.Hertz
	assistant   *fakeAssistant
	kb          *fakeKB
	extractor   *fakeExtractor
	policyDir   string
	evidenceDir string
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		assistant:   &fakeAssistant{},
		kb:          &fakeKB{},
		extractor:   &fakeExtractor{},
		policyDir:   t.TempDir(),
		evidenceDir: filepath.Join(t.TempDir(), "evidence"),
	}
	f.srv = server.Default()
	router.Register(f.srv, handler.NewHandler(handler.Option{
		Assistant:   f.assistant,
		KB:          f.kb,
		Policy:      kb.NewPolicyDocs(f.policyDir),
		Extractor:   f.extractor,
		Text:        fakeText{},
		EvidenceDir: f.evidenceDir,
	}))
	return f
}

func (f *fixture) json(method, path, body string, headers ...ut.Header) *ut.ResponseRecorder {
	headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	return ut.PerformRequest(f.srv.Engine, method, path, &ut.Body{Body: strings.NewReader(body), Len: len(body)}, headers...)
}

func (f *fixture) upload(path, field string, files map[string]string) *ut.ResponseRecorder {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for name, content := range files {
		w, _ := mw.CreateFormFile(field, name)
		_, _ = w.Write([]byte(content))
	}
	_ = mw.Close()
	return ut.PerformRequest(f.srv.Engine, "POST", path, &ut.Body{Body: buf, Len: buf.Len()},
		ut.Header{Key: "Content-Type", Value: mw.FormDataContentType()})
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := ut.PerformRequest(f.srv.Engine, "GET", "/ai-agent/health", nil)
	assert.Equal(t, 200, w.Result().StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(w.Result().Body()))
}

func TestChat(t *testing.T) {
	f := newFixture(t)

	w := f.json("POST", "/ai-agent/chat", `{"input":"hello"}`, ut.Header{Key: consts.SessionHeader, Value: "abc"})
	require.Equal(t, 200, w.Result().StatusCode())
	body := w.Result().Body()
	assert.Equal(t, "answer to hello", gjson.GetBytes(body, "response").String())
	assert.Equal(t, "AGENT_GRAPH", gjson.GetBytes(body, "source").String())
	assert.Equal(t, []string{"abc"}, f.assistant.sessions)

	w = f.json("POST", "/ai-agent/chat", `{"input":""}`)
	assert.Equal(t, 400, w.Result().StatusCode())
	assert.Equal(t, consts.NoInput, gjson.GetBytes(w.Result().Body(), "response").String())

	w = f.json("POST", "/ai-agent/chat", `not json`)
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestAskPolicyAndCheckForm(t *testing.T) {
	f := newFixture(t)

	w := f.json("POST", "/ai-agent/rag", `{"input":"who can claim?"}`)
	require.Equal(t, 200, w.Result().StatusCode())
	assert.Equal(t, consts.KnowledgeNotLoaded, gjson.GetBytes(w.Result().Body(), "response").String())

	w = f.json("POST", "/ai-agent/rag", `{}`)
	assert.Equal(t, 400, w.Result().StatusCode())

	w = f.json("POST", "/ai-agent/check-form", `{"content":"Q: name? A: Jane"}`)
	require.Equal(t, 200, w.Result().StatusCode())
	assert.Equal(t, "reviewed: Q: name? A: Jane", gjson.GetBytes(w.Result().Body(), "response").String())

	w = f.json("POST", "/ai-agent/check-form", `{"content":""}`)
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestUpload(t *testing.T) {
	f := newFixture(t)

	w := f.upload("/ai-agent/upload", "file", map[string]string{"rules.txt": "Funeral payment rules"})
	require.Equal(t, 200, w.Result().StatusCode())
	assert.JSONEq(t, `{"success":true,"saved":true,"indexed":true}`, string(w.Result().Body()))
	data, err := os.ReadFile(filepath.Join(f.policyDir, "rules.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Funeral payment rules", string(data))
	assert.Equal(t, 1, f.kb.calls)

	f.kb.err = fmt.Errorf("%w: collection missing", kb.ErrReload)
	w = f.upload("/ai-agent/upload", "file", map[string]string{"more.txt": "More rules"})
	require.Equal(t, 200, w.Result().StatusCode())
	body := w.Result().Body()
	assert.True(t, gjson.GetBytes(body, "success").Bool())
	assert.True(t, gjson.GetBytes(body, "saved").Bool())
	assert.False(t, gjson.GetBytes(body, "indexed").Bool())
	assert.Contains(t, gjson.GetBytes(body, "error").String(), "collection missing")
	assert.FileExists(t, filepath.Join(f.policyDir, "more.txt"))

	w = f.upload("/ai-agent/upload", "file", map[string]string{"virus.exe": "MZ"})
	assert.Equal(t, 400, w.Result().StatusCode())

	w = f.upload("/ai-agent/upload", "other", map[string]string{"rules.txt": "x"})
	assert.Equal(t, 400, w.Result().StatusCode())
	assert.Equal(t, "No file part", gjson.GetBytes(w.Result().Body(), "error").String())
}

func TestDocs(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.policyDir, "b.pdf"), []byte("%PDF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.policyDir, "a.txt"), []byte("rules"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.policyDir, "notes.bin"), []byte{0}, 0o644))

	w := ut.PerformRequest(f.srv.Engine, "GET", "/ai-agent/docs", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	assert.JSONEq(t, `{"documents":["a.txt","b.pdf"]}`, string(w.Result().Body()))

	w = ut.PerformRequest(f.srv.Engine, "DELETE", "/ai-agent/docs/a.txt", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	assert.JSONEq(t, `{"success":true,"deleted":true,"indexed":true}`, string(w.Result().Body()))
	assert.NoFileExists(t, filepath.Join(f.policyDir, "a.txt"))
	assert.Equal(t, 1, f.kb.calls)

	w = ut.PerformRequest(f.srv.Engine, "DELETE", "/ai-agent/docs/a.txt", nil)
	assert.Equal(t, 404, w.Result().StatusCode())
	assert.Equal(t, "File not found", gjson.GetBytes(w.Result().Body(), "error").String())
	assert.Equal(t, 1, f.kb.calls)

	f.kb.err = errors.New("ingest exited with status 1")
	w = ut.PerformRequest(f.srv.Engine, "DELETE", "/ai-agent/docs/b.pdf", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	assert.False(t, gjson.GetBytes(w.Result().Body(), "indexed").Bool())
}

func TestExtractFormData(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantFiles []string
	}{
		{name: "list", body: `{"files":["death.pdf","invoice.txt"]}`, wantCode: 200, wantFiles: []string{"death.pdf", "invoice.txt"}},
		{name: "single string", body: `{"files":"death.pdf"}`, wantCode: 200, wantFiles: []string{"death.pdf"}},
		{name: "empty list", body: `{"files":[]}`, wantCode: 400},
		{name: "missing", body: `{}`, wantCode: 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.json("POST", "/ai-agent/extract-form-data", tt.body)
			assert.Equal(t, tt.wantCode, w.Result().StatusCode())
			assert.Equal(t, tt.wantFiles, f.extractor.files)
			if tt.wantCode == 200 {
				assert.Equal(t, "John", gjson.GetBytes(w.Result().Body(), "fields.deceasedFirstName").String())
			}
		})
	}
}

func TestOCR(t *testing.T) {
	f := newFixture(t)

	w := f.upload("/ai-agent/ocr/process", "file", map[string]string{"letter.txt": "Pension Credit award"})
	require.Equal(t, 200, w.Result().StatusCode())
	var result model.OCRResult
	require.NoError(t, json.Unmarshal(w.Result().Body(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "Pension Credit award", result.Text)
	assert.FileExists(t, filepath.Join(f.evidenceDir, "letter.txt"))

	w = f.upload("/ai-agent/ocr/batch", "files", map[string]string{"a.txt": "first", "b.txt": "second"})
	require.Equal(t, 200, w.Result().StatusCode())
	var results map[string]model.OCRResult
	require.NoError(t, json.Unmarshal(w.Result().Body(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "first", results["a.txt"].Text)
	assert.Equal(t, "second", results["b.txt"].Text)

	w = f.upload("/ai-agent/ocr/batch", "file", map[string]string{"a.txt": "first"})
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t)
	metrics.ChatTurn(string(consts.SourceRAG))

	w := ut.PerformRequest(f.srv.Engine, "GET", "/metrics", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	assert.Contains(t, string(w.Result().Header.ContentType()), "text/plain")
	body := string(w.Result().Body())
	assert.Contains(t, body, "go_goroutines")
	assert.Contains(t, body, `funeral_claim_chat_turns_total{source="RAG"}`)
}
