package selector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/HildaM/logs/slog"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "selector-test")
	_ = slog.InitFile(filepath.Join(dir, "test.log"), slog.WithLevel("debug"), slog.WithColor(false))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestSelect(t *testing.T) {
	s := NewSelector(conf.DefaultKeywords)

	tests := []struct {
		name        string
		input       string
		kbAvailable bool
		want        consts.Source
	}{
		{"kb unavailable with keyword", "What is the DWP funeral payment policy?", false, consts.SourceAgentGraph},
		{"kb unavailable without keyword", "What is the capital of France?", false, consts.SourceAgentGraph},
		{"keyword hit", "What does the DWP say?", true, consts.SourceRAG},
		{"case insensitive", "POLICY details please", true, consts.SourceRAG},
		{"plural", "Which benefits count?", true, consts.SourceRAG},
		{"punctuation", "funeral?", true, consts.SourceRAG},
		{"no keyword", "What is the capital of France?", true, consts.SourceAgentGraph},
		{"substring is not a token", "dwpx policyholder", true, consts.SourceAgentGraph},
		{"empty input", "", true, consts.SourceAgentGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Select(tt.input, tt.kbAvailable))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"who", "can", "claim", "a", "dwp", "payment"}, Tokenize("Who can claim a DWP-payment?"))
	assert.Empty(t, Tokenize(" ,.? "))
}

func TestNewSelectorCustomKeywords(t *testing.T) {
	s := NewSelector([]string{" Grant ", ""})
	assert.Equal(t, consts.SourceRAG, s.Select("any grants available", true))
	assert.Equal(t, consts.SourceAgentGraph, s.Select("policy", true))
}
