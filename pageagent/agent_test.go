package pageagent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/gommon/log"

	"github.com/eringen/monk/bridge"
	"github.com/eringen/monk/protocol"
)

type captureSender struct {
	mu   sync.Mutex
	sent []protocol.Message
}

func (c *captureSender) SendMessage(msg protocol.Message) error {
	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()
	return nil
}

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetLevel(log.OFF)
	return l
}

func encode(t *testing.T, msg protocol.Message) []byte {
	t.Helper()
	raw, err := protocol.Encode(msg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return raw
}

func TestHandleRequestRepliesWithCurrentState(t *testing.T) {
	doc := NewLiveDocument("Before", "https://example.com/before")
	out := &captureSender{}
	agent := New(doc, out, WithLogger(quietLogger()))

	// The request arrives after the page has changed; the reply must reflect
	// the page at handling time, not at agent creation.
	doc.Navigate("https://example.com/after", "After")
	agent.HandleMessage(encode(t, protocol.RequestPageInfo{Token: "tok"}))

	if len(out.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(out.sent))
	}
	reply, ok := out.sent[0].(protocol.PageInfoReply)
	if !ok {
		t.Fatalf("sent %T, want PageInfoReply", out.sent[0])
	}
	if reply.Token != "tok" {
		t.Errorf("Token = %q, want tok", reply.Token)
	}
	if reply.Info.Title != "After" || reply.Info.URL != "https://example.com/after" {
		t.Errorf("Info = %+v, want After at /after", reply.Info)
	}

	doc.SetTitle("Later")
	agent.HandleMessage(encode(t, protocol.RequestPageInfo{}))
	if got := out.sent[1].(protocol.PageInfoReply).Info.Title; got != "Later" {
		t.Errorf("second reply title = %q, want Later", got)
	}
}

func TestHandleIgnoresOtherKinds(t *testing.T) {
	out := &captureSender{}
	agent := New(NewLiveDocument("T", "U"), out, WithLogger(quietLogger()))

	inputs := [][]byte{
		[]byte(`{"type":"Reload"}`),
		[]byte(`{"type":42}`),
		[]byte(`garbage`),
		encode(t, protocol.PageInfoReply{Info: protocol.PageInfo{Title: "x"}}),
	}
	for _, in := range inputs {
		agent.HandleMessage(in)
	}
	if len(out.sent) != 0 {
		t.Errorf("agent replied to %d non-request messages", len(out.sent))
	}
}

func TestAttachAnswersThroughRuntime(t *testing.T) {
	rt := bridge.NewRuntime(bridge.WithLogger(quietLogger()))
	tab := rt.OpenTabWithID(3, "https://example.com")
	agent := New(NewLiveDocument("Example", "https://example.com"), rt, WithLogger(quietLogger()))
	if err := agent.Attach(rt, tab.ID); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	replies := make(chan []byte, 1)
	rt.AddListener("test", func(raw []byte) { replies <- raw })

	if err := rt.SendToTab(tab.ID, protocol.RequestPageInfo{Token: "t"}); err != nil {
		t.Fatalf("SendToTab failed: %v", err)
	}
	rt.Wait()

	select {
	case raw := <-replies:
		msg, err := protocol.Decode(raw)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if msg.(protocol.PageInfoReply).Info.Title != "Example" {
			t.Errorf("unexpected reply %+v", msg)
		}
	default:
		t.Fatal("no reply delivered")
	}
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"simple", `<html><head><title>Hello</title></head></html>`, "Hello"},
		{"whitespace", "<title>\n  Go   Blog \n</title>", "Go Blog"},
		{"entities", `<title>Tom &amp; Jerry</title>`, "Tom & Jerry"},
		{"svg title ignored", `<body><svg><title>icon</title></svg><title>Real</title></body>`, "Real"},
		{"missing", `<html><body><p>no title</p></body></html>`, ""},
	}
	for _, tt := range tests {
		doc, err := ParseDocument(strings.NewReader(tt.html), "https://x.test")
		if err != nil {
			t.Fatalf("%s: ParseDocument failed: %v", tt.name, err)
		}
		if doc.Title() != tt.want {
			t.Errorf("%s: Title = %q, want %q", tt.name, doc.Title(), tt.want)
		}
		if doc.URL() != "https://x.test" {
			t.Errorf("%s: URL = %q", tt.name, doc.URL())
		}
	}
}

func TestFetchDocumentFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Moved</title></head></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	doc, err := FetchDocument(context.Background(), srv.Client(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	if doc.Title() != "Moved" {
		t.Errorf("Title = %q, want Moved", doc.Title())
	}
	if doc.URL() != srv.URL+"/new" {
		t.Errorf("URL = %q, want %q", doc.URL(), srv.URL+"/new")
	}
}

func TestFetchDocumentStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := FetchDocument(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("expected error for 404 page")
	}
}
