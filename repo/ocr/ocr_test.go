package ocr

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/document"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, _ := os.MkdirTemp("", "ocr-test")
	_ = slog.InitFile(filepath.Join(dir, "test.log"), slog.WithLevel("debug"), slog.WithColor(false))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Death Certificate</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Registration Number: </w:t></w:r><w:r><w:t>DX123456</w:t></w:r></w:p>
<w:p><w:r><w:t>Name</w:t><w:tab/><w:t>John Smith</w:t></w:r></w:p>
</w:body>
</w:document>`

func writeDocx(t *testing.T, path, body string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestExtractText(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := NewExtractor(conf.EvidenceConfig{})

	txt := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(txt, []byte("plain text"), 0o644))
	docx := filepath.Join(dir, "cert.docx")
	writeDocx(t, docx, documentXML)
	odd := filepath.Join(dir, "data.xyz")
	require.NoError(t, os.WriteFile(odd, []byte("?"), 0o644))

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "txt", path: txt, want: "plain text"},
		{name: "docx", path: docx, want: "Death Certificate\nRegistration Number: DX123456\nName\tJohn Smith"},
		{name: "unsupported", path: odd, want: "Unsupported file format: .xyz"},
		{name: "missing txt", path: filepath.Join(dir, "absent.txt"), wantErr: true},
		{name: "broken docx", path: txt + ".docx", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractText(ctx, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  a \n\n b\t c  ", "a b c"},
		{"Café £120.00", "Caf   120.00"},
		{"\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestProcess(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := NewExtractor(conf.EvidenceConfig{Tesseract: "tesseract", Lang: "eng"})

	path := filepath.Join(dir, "Invoice.TXT")
	require.NoError(t, os.WriteFile(path, []byte("Funeral   invoice\n total 2,400"), 0o644))

	res := e.Process(ctx, path)
	require.True(t, res.Success)
	assert.Equal(t, "Funeral invoice total 2,400", res.Text)
	assert.Equal(t, len(res.Text), res.TextLength)
	require.NotNil(t, res.Metadata)
	assert.Equal(t, "Invoice.TXT", res.Metadata.Filename)
	assert.Equal(t, ".txt", res.Metadata.FileType)
	assert.EqualValues(t, 30, res.Metadata.FileSize)

	res = e.Process(ctx, filepath.Join(dir, "absent.pdf"))
	assert.False(t, res.Success)
	assert.Equal(t, "File not found", res.Error)
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l := NewLoader(NewExtractor(conf.EvidenceConfig{}))

	path := filepath.Join(dir, "policy.md")
	require.NoError(t, os.WriteFile(path, []byte("# Funeral Expenses Payment\nEligibility rules"), 0o644))

	docs, err := l.Load(ctx, document.Source{URI: path})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "policy.md", docs[0].MetaData["source"])
	assert.Contains(t, docs[0].Content, "Eligibility rules")

	docs, err = l.Load(ctx, document.Source{URI: filepath.Join(dir, "archive.zip")})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".PNG", ".docx", ".txt", ".tif"} {
		assert.True(t, Supported(ext), ext)
	}
	for _, ext := range []string{".zip", "", ".exe"} {
		assert.False(t, Supported(ext), ext)
	}
}
