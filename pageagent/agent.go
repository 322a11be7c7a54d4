// Package pageagent answers page-info requests from inside a tab.
package pageagent

import (
	"errors"

	"github.com/labstack/gommon/log"
	"github.com/sanity-io/litter"

	"github.com/eringen/monk/bridge"
	"github.com/eringen/monk/protocol"
)

// Document exposes the live state of the page the agent runs in.
type Document interface {
	Title() string
	URL() string
}

// Sender publishes a message into the cross-context channel.
type Sender interface {
	SendMessage(msg protocol.Message) error
}

// Agent is the content script of one tab. It keeps no state between
// requests; every reply is read from the document at handling time.
type Agent struct {
	doc  Document
	out  Sender
	log  *log.Logger
	dump litter.Options
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the agent's logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Agent) { a.log = l }
}

// New creates an agent reading doc and replying through out.
func New(doc Document, out Sender, opts ...Option) *Agent {
	a := &Agent{
		doc:  doc,
		out:  out,
		log:  log.New("pageagent"),
		dump: litter.Options{Compact: true, HidePrivateFields: true},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attach registers the agent as the content script of tab id.
func (a *Agent) Attach(rt *bridge.Runtime, id int) error {
	return rt.Attach(id, a.HandleMessage)
}

// HandleMessage is the agent's bridge.Listener.
func (a *Agent) HandleMessage(raw []byte) {
	if env, err := protocol.Peek(raw); err == nil {
		a.log.Debugf("inbound %s: %s", env.Type, a.dump.Sdump(env.Token, string(env.Payload)))
	} else {
		a.log.Debugf("inbound: %s", raw)
	}

	msg, err := protocol.Decode(raw)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownKind) {
			a.log.Warnf("unknown message type: %v", err)
		} else {
			a.log.Warnf("ignoring message: %v", err)
		}
		return
	}

	switch m := msg.(type) {
	case protocol.RequestPageInfo:
		reply := protocol.PageInfoReply{
			Token: m.Token,
			Info:  a.Snapshot(),
		}
		if err := a.out.SendMessage(reply); err != nil {
			a.log.Errorf("send page info: %v", err)
		}
	default:
		a.log.Warnf("unexpected message type: %s", msg.Kind())
	}
}

// Snapshot reads the document's current title and URL.
func (a *Agent) Snapshot() protocol.PageInfo {
	return protocol.PageInfo{
		Title: a.doc.Title(),
		URL:   a.doc.URL(),
	}
}
