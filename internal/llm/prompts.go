package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EmailRequest is everything known about an email before generation.
type EmailRequest struct {
	Instructions string
	Tone         string
	DraftName    string
	Subject      string
	Body         string
	Reference    []string
}

// EmailCopy is the model's answer to an EmailPrompt.
type EmailCopy struct {
	Subject     string `json:"subject"`
	PreviewText string `json:"previewText"`
	Body        string `json:"body"`
}

func EmailPrompt(req EmailRequest) string {
	var b strings.Builder
	b.WriteString("You write marketing emails for PBL Online, a project based learning membership for teachers.\n")
	b.WriteString("Return JSON with the keys subject, previewText and body. The body is Markdown.\n")
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", req.Tone)
	}
	if req.DraftName != "" {
		fmt.Fprintf(&b, "Campaign name: %s\n", req.DraftName)
	}
	if req.Subject != "" {
		fmt.Fprintf(&b, "Working subject line: %s\n", req.Subject)
	}
	if req.Body != "" {
		fmt.Fprintf(&b, "\nCurrent draft:\n%s\n", req.Body)
	}
	if len(req.Reference) > 0 {
		b.WriteString("\nReference material:\n")
		for _, r := range req.Reference {
			b.WriteString(r)
			b.WriteString("\n---\n")
		}
	}
	fmt.Fprintf(&b, "\nInstructions:\n%s\n", req.Instructions)
	return b.String()
}

// CampaignStats is one sent campaign as shown to the model.
type CampaignStats struct {
	Title      string  `json:"title"`
	Subject    string  `json:"subject"`
	SentAt     string  `json:"sentAt"`
	EmailsSent int     `json:"emailsSent"`
	OpenRate   float64 `json:"openRate"`
	ClickRate  float64 `json:"clickRate"`
}

// Section is one heading-delimited part of a draft.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

type SectionNote struct {
	Heading string `json:"heading"`
	Note    string `json:"note"`
}

// CampaignAnalysis is the model's answer to an AnalysisPrompt.
type CampaignAnalysis struct {
	Summary         string        `json:"summary"`
	Highlights      []string      `json:"highlights"`
	Recommendations []string      `json:"recommendations"`
	SectionNotes    []SectionNote `json:"sectionNotes,omitempty"`
}

func AnalysisPrompt(campaigns []CampaignStats, sections []Section) string {
	var b strings.Builder
	b.WriteString("You analyse email campaign performance for PBL Online.\n")
	b.WriteString("Return JSON with the keys summary, highlights (array of strings), recommendations (array of strings)")
	if len(sections) > 0 {
		b.WriteString(" and sectionNotes (array of {heading, note}, one per draft section)")
	}
	b.WriteString(".\n\nRecent campaigns:\n")
	for _, c := range campaigns {
		fmt.Fprintf(&b, "- %q (subject %q, sent %s): %d sent, open rate %.1f%%, click rate %.1f%%\n",
			c.Title, c.Subject, c.SentAt, c.EmailsSent, c.OpenRate*100, c.ClickRate*100)
	}
	if len(sections) > 0 {
		b.WriteString("\nReview each section of the next draft against what worked:\n")
		for _, s := range sections {
			fmt.Fprintf(&b, "\n## %s\n%s\n", s.Heading, s.Content)
		}
	}
	return b.String()
}

// SummaryPrompt condenses one transcript chunk.
func SummaryPrompt(title, chunk string) string {
	return fmt.Sprintf("Summarise this part of the transcript of the video %q in at most five sentences. "+
		"Keep names, frameworks and concrete classroom examples.\n\n%s", title, chunk)
}

// MetadataPrompt asks for YouTube metadata from transcript summaries.
func MetadataPrompt(title string, summaries []string) string {
	var b strings.Builder
	b.WriteString("You optimise YouTube metadata for PBL Online, a channel for teachers using project based learning.\n")
	b.WriteString("Return JSON with the keys title (max 100 characters), description (max 5000 characters) and tags (at most 15 strings).\n")
	fmt.Fprintf(&b, "Current title: %s\n\nTranscript summary:\n", title)
	for _, s := range summaries {
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}

type ContentKind string

const (
	ContentBlog   ContentKind = "blog"
	ContentEmail  ContentKind = "email"
	ContentSocial ContentKind = "social"
)

func (k ContentKind) Valid() bool {
	switch k {
	case ContentBlog, ContentEmail, ContentSocial:
		return true
	}
	return false
}

var contentInstructions = map[ContentKind]string{
	ContentBlog:   "Write a blog post in Markdown of roughly 800 words with a title and subheadings.",
	ContentEmail:  "Write a short newsletter email in Markdown that links to the video.",
	ContentSocial: "Write three social media posts, each under 280 characters, separated by blank lines.",
}

func ContentPrompt(kind ContentKind, title, videoURL string, summaries []string) string {
	var b strings.Builder
	b.WriteString("You repurpose PBL Online videos into other content for teachers.\n")
	b.WriteString(contentInstructions[kind])
	fmt.Fprintf(&b, "\n\nVideo: %s (%s)\n\nTranscript summary:\n", title, videoURL)
	for _, s := range summaries {
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}

// DecodeJSON unmarshals a model answer, tolerating a Markdown code fence.
func DecodeJSON(raw string, v interface{}) error {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), v); err != nil {
		return fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return nil
}
