package processors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pblonline/ops-dashboard/internal/types"
)

func TestParseContactsCSV(t *testing.T) {
	content := "\ufeffName,Email,Tags\n" +
		"Ada Lovelace, ADA@Example.com ,current members;newsletter\n" +
		",,\n" +
		"Grace,grace@example.com,\n"

	contacts, err := ParseContactsCSV([]byte(content))
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	assert.Equal(t, "ada@example.com", contacts[0].Email)
	assert.Equal(t, "Ada Lovelace", contacts[0].Name)
	assert.Equal(t, []string{"current members", "newsletter"}, contacts[0].Tags)
	assert.Equal(t, "grace@example.com", contacts[1].Email)
	assert.Empty(t, contacts[1].Tags)
}

func TestParseContactsCSV_EmailOnly(t *testing.T) {
	contacts, err := ParseContactsCSV([]byte("email\na@example.com\nb@example.com"))
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestParseContactsCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "empty"},
		{"no email column", "name,tags\nAda,x", "email column"},
		{"no rows", "email,name\n", "no data rows"},
		{"invalid email", "email\nnot-an-address", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseContactsCSV([]byte(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTranscriptProcessor_Splits(t *testing.T) {
	f := NewFactory(&types.Config{ChunkSize: 200, ChunkOverlap: 20})
	sentence := "Students design a community garden and present it to the council. "
	p := f.CreateTranscriptProcessor(strings.Repeat(sentence, 20), "Garden project")

	assert.Equal(t, types.SourceTypeTranscript, p.GetSourceType())

	pc, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Greater(t, len(pc.Chunks), 1)
	assert.Equal(t, "Garden project", pc.Topic)
	for i, c := range pc.Chunks {
		assert.Equal(t, i, c.ChunkIndex)
	}

	assert.Len(t, Excerpt(pc, 2), 2)
	assert.Len(t, Excerpt(pc, 0), len(pc.Chunks))
	assert.Nil(t, Excerpt(nil, 3))
}

func TestTextProcessor_Empty(t *testing.T) {
	_, err := NewTextProcessor("", "", nil).Process(context.Background())
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestMarkdownProcessor_Sections(t *testing.T) {
	body := "# Summer course\nJoin us in July.\n\n## What you get\nSix live sessions.\n\n## Sign up\nUse the link."
	pc, err := NewFactory(nil).CreateMarkdownProcessor(body, "draft").Process(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(pc.Chunks), 3)

	assert.Contains(t, pc.Chunks[0].Content, "Join us in July.")
	assert.Equal(t, "Sign up", Heading(pc.Chunks[len(pc.Chunks)-1]))
}

func TestFactory_DocumentRouting(t *testing.T) {
	f := NewFactory(nil)
	assert.Equal(t, types.SourceTypePDF, f.CreateDocumentProcessorFromBytes(nil, "Brief.PDF", "").GetSourceType())
	assert.Equal(t, types.SourceTypePDF, f.CreateDocumentProcessorFromBytes(nil, "brief", "application/pdf").GetSourceType())
	assert.Equal(t, types.SourceTypeMarkdown, f.CreateDocumentProcessorFromBytes(nil, "brief.md", "").GetSourceType())
	assert.Equal(t, types.SourceTypeText, f.CreateDocumentProcessorFromBytes(nil, "brief.txt", "text/plain").GetSourceType())
}

func TestPDFProcessor_Empty(t *testing.T) {
	_, err := NewPDFProcessorFromBytes(nil, "brief.pdf", nil).Process(context.Background())
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestWebsiteProcessor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>Course</title></head><body><p>Project based learning for busy teachers.</p></body></html>"))
	}))
	defer srv.Close()

	pc, err := NewFactory(nil).CreateWebsiteProcessor(srv.URL).Process(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, pc.Chunks)
	assert.Contains(t, pc.Content, "Project based learning")
	assert.Equal(t, srv.URL, pc.Chunks[0].Metadata["source"])
}
