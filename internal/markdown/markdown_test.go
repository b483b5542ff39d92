package markdown

import (
	"strings"
	"testing"
)

func TestToHTMLBasics(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"heading", "# Title", "<h1"},
		{"emphasis", "some **bold** text", "<strong>bold</strong>"},
		{"link", "[site](https://example.com)", `<a href="https://example.com"`},
		{"list", "- one\n- two", "<li>one</li>"},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", "<table>"},
		{"strikethrough", "~~gone~~", "<del>gone</del>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("output %q does not contain %q", got, tt.want)
			}
		})
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	got, err := ToHTML(`<script>alert("xss")</script>`)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw script tag passed through: %q", got)
	}
}

func TestToHTMLCodeHighlighting(t *testing.T) {
	got, err := ToHTML("```go\nfunc main() {}\n```")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	// The highlighter emits inline styles instead of a bare <pre><code>.
	if !strings.Contains(got, "<pre") {
		t.Errorf("expected a pre block, got %q", got)
	}
	if !strings.Contains(got, "style=") {
		t.Errorf("expected highlighted output, got %q", got)
	}
}

func TestToHTMLHeadingIDs(t *testing.T) {
	got, err := ToHTML("## Getting Started")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(got, `id="getting-started"`) {
		t.Errorf("expected auto heading id, got %q", got)
	}
}

func TestToHTMLEmpty(t *testing.T) {
	got, err := ToHTML("")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.TrimSpace(got) != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
