package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

var cfg = SiteConfig{Name: "monk", URL: "https://monk.test"}

func TestPopupShowsDumpAndUploadControl(t *testing.T) {
	var buf bytes.Buffer
	err := Popup(PopupState{Dump: `{"title": "<T>"}`, Destination: "https://api.test"}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Add to monk?", "&lt;T&gt;", `<button type="button" id="upload">`, "https://api.test"} {
		if !strings.Contains(out, want) {
			t.Errorf("popup missing %q in %s", want, out)
		}
	}
	if strings.Contains(out, "<form") {
		t.Errorf("popup must not post anywhere: %s", out)
	}
}

func TestPopupErrorSuppressesView(t *testing.T) {
	var buf bytes.Buffer
	err := Popup(PopupState{Dump: `{"title": "T"}`, Error: "connection refused"}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Error: connection refused") {
		t.Errorf("expected error text, got %s", out)
	}
	for _, absent := range []string{"Add to monk?", "<pre>", "<button"} {
		if strings.Contains(out, absent) {
			t.Errorf("error view should not contain %q", absent)
		}
	}
}

func TestHomeLayouts(t *testing.T) {
	arts := []Article{{ID: "a1", Name: "Go <notes>", URL: "https://www.go.dev/doc", Tags: []string{"go"}, Saved: "2026-01-02"}}
	tests := []struct {
		layout string
		want   string
	}{
		{"table", `<table class="articles">`},
		{"cards", `<div class="cards">`},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		s := ListState{Articles: arts, Tags: []string{"go"}, Layout: tt.layout}
		if err := Home(cfg, s).Render(context.Background(), &buf); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s layout missing %q", tt.layout, tt.want)
		}
		if !strings.Contains(out, "Go &lt;notes&gt;") {
			t.Errorf("%s layout did not escape name", tt.layout)
		}
		if !strings.Contains(out, `href="/articles/a1/"`) {
			t.Errorf("%s layout missing article link", tt.layout)
		}
	}
}

func TestHomeEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Home(cfg, ListState{Layout: "table"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Nothing saved yet.") {
		t.Errorf("expected empty message")
	}
}

func TestArticlePageAdminForms(t *testing.T) {
	a := Article{ID: "x", Name: "N", URL: "https://a.test", Description: "**hi**", Tags: []string{"t"}}
	var buf bytes.Buffer
	if err := ArticlePage(cfg, a, false, "").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<strong>hi</strong>") {
		t.Errorf("description not rendered as markdown")
	}
	if strings.Contains(buf.String(), "/articles/x/delete/") {
		t.Errorf("visitor should not see admin forms")
	}

	buf.Reset()
	if err := ArticlePage(cfg, a, true, "tok").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`action="/articles/x/delete/"`, `action="/articles/x/edit/"`, `value="tok"`, `value="t"`} {
		if !strings.Contains(out, want) {
			t.Errorf("admin page missing %q", want)
		}
	}
}

func TestListHref(t *testing.T) {
	tests := []struct {
		tag, layout, want string
	}{
		{"", "", "/"},
		{"go", "", "/?tag=go"},
		{"", "cards", "/?view=cards"},
		{"a b", "table", "/?tag=a+b&view=table"},
	}
	for _, tt := range tests {
		if got := ListHref(tt.tag, tt.layout); got != tt.want {
			t.Errorf("ListHref(%q, %q) = %q, want %q", tt.tag, tt.layout, got, tt.want)
		}
	}
}

func TestHost(t *testing.T) {
	tests := map[string]string{
		"https://www.example.com/a": "example.com",
		"http://localhost:3000":     "localhost:3000",
		"not a url":                 "not a url",
	}
	for in, want := range tests {
		if got := Host(in); got != want {
			t.Errorf("Host(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	if got := buildURL("https://monk.test", "articles", "a1"); got != "https://monk.test/articles/a1/" {
		t.Errorf("buildURL = %q", got)
	}
}
