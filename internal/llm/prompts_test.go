package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain", `{"subject":"Hi","previewText":"p","body":"b"}`},
		{"fenced", "```json\n{\"subject\":\"Hi\",\"previewText\":\"p\",\"body\":\"b\"}\n```"},
		{"bare fence", "```\n{\"subject\":\"Hi\",\"previewText\":\"p\",\"body\":\"b\"}\n```  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out EmailCopy
			require.NoError(t, DecodeJSON(tt.raw, &out))
			assert.Equal(t, "Hi", out.Subject)
			assert.Equal(t, "b", out.Body)
		})
	}

	var out EmailCopy
	assert.Error(t, DecodeJSON("not json", &out))
}

func TestEmailPrompt_IncludesContext(t *testing.T) {
	p := EmailPrompt(EmailRequest{
		Instructions: "Announce the summer course",
		Tone:         "warm",
		Subject:      "Summer PBL",
		Reference:    []string{"Course runs in July"},
	})
	assert.Contains(t, p, "Tone: warm.")
	assert.Contains(t, p, "Working subject line: Summer PBL")
	assert.Contains(t, p, "Course runs in July")
	assert.True(t, strings.HasSuffix(p, "Announce the summer course\n"))
}

func TestAnalysisPrompt_SectionNotesOnlyWithSections(t *testing.T) {
	campaigns := []CampaignStats{{Title: "May", Subject: "News", EmailsSent: 100, OpenRate: 0.42, ClickRate: 0.05}}

	p := AnalysisPrompt(campaigns, nil)
	assert.Contains(t, p, "open rate 42.0%")
	assert.NotContains(t, p, "sectionNotes")

	p = AnalysisPrompt(campaigns, []Section{{Heading: "Intro", Content: "Hello"}})
	assert.Contains(t, p, "sectionNotes")
	assert.Contains(t, p, "## Intro\nHello")
}

func TestContentKind_Valid(t *testing.T) {
	assert.True(t, ContentBlog.Valid())
	assert.True(t, ContentSocial.Valid())
	assert.False(t, ContentKind("podcast").Valid())
}

type echoGenerator struct {
	mu    sync.Mutex
	calls int
	fail  string
}

func (g *echoGenerator) Generate(_ context.Context, prompt string, _ bool) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if prompt == g.fail {
		return "", errors.New("boom")
	}
	return "echo:" + prompt, nil
}

func TestGenerateBatch_PreservesOrder(t *testing.T) {
	gen := &echoGenerator{}
	prompts := []string{"a", "b", "c", "d", "e", "f", "g"}

	out, err := GenerateBatch(context.Background(), gen, prompts, false)
	require.NoError(t, err)
	require.Len(t, out, len(prompts))
	for i, p := range prompts {
		assert.Equal(t, "echo:"+p, out[i])
	}
	assert.Equal(t, len(prompts), gen.calls)
}

func TestGenerateBatch_Error(t *testing.T) {
	_, err := GenerateBatch(context.Background(), &echoGenerator{fail: "b"}, []string{"a", "b"}, false)
	assert.ErrorContains(t, err, "prompt 1")

	_, err = GenerateBatch(context.Background(), &echoGenerator{}, nil, false)
	assert.Error(t, err)
}
