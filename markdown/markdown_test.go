package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(md string) string {
	var buf bytes.Buffer
	Render(&buf, md)
	return buf.String()
}

func TestFormatInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"text **bold** and *it*", "text <strong>bold</strong> and <em>it</em>"},
		{"use `a*b*c` here", "use <code>a*b*c</code> here"},
		{"<script>", "&lt;script&gt;"},
		{"[docs](https://go.dev)", `<a href="https://go.dev" target="_blank" rel="noopener noreferrer">docs</a>`},
		{"[bad](javascript:void)", "bad"},
	}
	for _, tt := range tests {
		if got := FormatInline(tt.input); got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineLinkKeepsURLIntact(t *testing.T) {
	got := FormatInline("[x](https://a.test/*path*)")
	if !strings.Contains(got, `href="https://a.test/*path*"`) {
		t.Errorf("emphasis leaked into href: %q", got)
	}
}

func TestRenderBlocks(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"paragraph joins lines", "one\ntwo", "<p>one two</p>"},
		{"paragraphs split on blank", "one\n\ntwo", "<p>one</p><p>two</p>"},
		{"heading", "## Notes", "<h2>Notes</h2>"},
		{"not a heading", "#tag", "<p>#tag</p>"},
		{"bullets", "- a\n- b", "<ul><li>a</li><li>b</li></ul>"},
		{"numbered", "1. a\n2. b", "<ol><li>a</li><li>b</li></ol>"},
		{"quote", "> said", "<blockquote>said</blockquote>"},
		{"code", "```\n<b>\n```", "<pre><code>&lt;b&gt;\n</code></pre>"},
		{"list then para", "- a\ntext", "<ul><li>a</li></ul><p>text</p>"},
		{"unclosed code", "```\nx", "<pre><code>x\n</code></pre>"},
	}
	for _, tt := range tests {
		if got := render(tt.md); got != tt.want {
			t.Errorf("%s: Render(%q) = %q, want %q", tt.name, tt.md, got, tt.want)
		}
	}
}

func TestSafeURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com": "https://example.com",
		"/articles/1/":        "/articles/1/",
		"#top":                "#top",
		"mailto:me@x.test":    "mailto:me@x.test",
		"javascript:alert(1)": "",
		"data:text/html,hi":   "",
		"   ":                 "",
	}
	for in, want := range tests {
		if got := SafeURL(in); got != want {
			t.Errorf("SafeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("**hi**").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.String() != "<p><strong>hi</strong></p>" {
		t.Errorf("got %q", buf.String())
	}
}
