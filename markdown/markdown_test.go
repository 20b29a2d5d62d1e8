package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRenderMarkdownBasics(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"`code`", "<code>code</code>"},
		{"~~gone~~", "<del>gone</del>"},
		{"- one\n- two", "<li>one</li>"},
	}
	for _, tt := range tests {
		got, err := RenderMarkdown(tt.input)
		if err != nil {
			t.Fatalf("RenderMarkdown(%q): %v", tt.input, err)
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("RenderMarkdown(%q) = %q, want it to contain %q", tt.input, got, tt.want)
		}
	}
}

func TestRenderMarkdownHeadingIDs(t *testing.T) {
	got, err := RenderMarkdown("## Getting Started")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `id="getting-started"`) {
		t.Errorf("heading id missing: %q", got)
	}
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	got, err := RenderMarkdown("hi <script>alert(1)</script>\n\n[x](javascript:alert(1))")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script") || strings.Contains(got, "javascript:") {
		t.Errorf("unsafe markup survived: %q", got)
	}
}

func TestRenderMarkdownExternalLinks(t *testing.T) {
	got, err := RenderMarkdown("[site](https://example.com)")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `rel="nofollow noopener"`) && !strings.Contains(got, "nofollow") {
		t.Errorf("expected nofollow on external link: %q", got)
	}
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("expected target=_blank on external link: %q", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("# Title").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<h1") || !strings.Contains(buf.String(), "Title</h1>") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
