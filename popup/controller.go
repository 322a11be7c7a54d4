// Package popup drives the extension popup: it asks the active tab for its
// page info, holds the latest answer and uploads it to the collection.
//
// A Controller lives exactly as long as one open popup. The host creates it
// with Open when the popup is shown and calls Close when the popup goes away.
package popup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/eringen/monk/bridge"
	"github.com/eringen/monk/collection"
	"github.com/eringen/monk/protocol"
	"github.com/eringen/monk/views"
)

// Placeholder values shown before any page has replied.
const (
	PlaceholderTitle = "This is a title"
	PlaceholderURL   = "http://localhost:3000"
)

var (
	// ErrNoReply is returned by Wait when the context ends before the reply arrives.
	ErrNoReply = errors.New("popup: no page info reply")
	// ErrSuperseded is returned by Wait for a token replaced by a newer Activate.
	ErrSuperseded = errors.New("popup: request superseded")
)

// Runtime is the part of the extension runtime the popup needs.
type Runtime interface {
	QueryActiveTab() (bridge.Tab, error)
	SendToTab(id int, msg protocol.Message) error
	AddListener(id string, fn bridge.Listener) bool
	RemoveListener(id string)
}

// Uploader creates records in the remote collection.
type Uploader interface {
	Create(ctx context.Context, rec collection.UploadRecord) error
}

// State is a copy of the controller's UI-facing state.
type State struct {
	Info        protocol.PageInfo
	Err         error
	Destination string
}

// Controller is the popup's state holder.
type Controller struct {
	id   string
	rt   Runtime
	up   Uploader
	dest string
	log  *log.Logger

	mu       sync.Mutex
	info     protocol.PageInfo
	err      error
	pending  protocol.Token
	answered map[protocol.Token]protocol.PageInfo
	changed  chan struct{} // closed when info is replaced, then recreated
}

// Option configures a Controller.
type Option func(*Controller)

// WithDestination sets the collection base URL shown to the user.
func WithDestination(base string) Option {
	return func(c *Controller) { c.dest = base }
}

// WithLogger sets the controller's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithPlaceholder replaces the page info shown before the first reply.
func WithPlaceholder(info protocol.PageInfo) Option {
	return func(c *Controller) { c.info = info }
}

// Open creates a controller for a newly shown popup and binds its reply
// listener. It does not activate; the host calls Activate.
func Open(rt Runtime, up Uploader, opts ...Option) *Controller {
	c := &Controller{
		id:      "popup-" + uuid.NewString(),
		rt:      rt,
		up:      up,
		log:     log.New("popup"),
		info:     protocol.PageInfo{Title: PlaceholderTitle, URL: PlaceholderURL},
		answered: make(map[protocol.Token]protocol.PageInfo),
		changed:  make(chan struct{}),
	}
	if b, ok := up.(interface{ BaseURL() string }); ok {
		c.dest = b.BaseURL()
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Bind()
	return c
}

// Bind registers the reply listener. Calling it again is a no-op.
func (c *Controller) Bind() {
	if !c.rt.AddListener(c.id, c.handleMessage) {
		c.log.Debugf("listener %s already bound", c.id)
	}
}

// Close unbinds the reply listener. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.rt.RemoveListener(c.id)
}

// Activate asks the active tab of the current window for its page info and
// returns the request's correlation token without waiting for the reply.
// The host calls it every time the popup is shown.
func (c *Controller) Activate() (protocol.Token, error) {
	tab, err := c.rt.QueryActiveTab()
	if err != nil {
		return "", fmt.Errorf("popup: activate: %w", err)
	}
	token := protocol.NewToken()
	c.mu.Lock()
	c.pending = token
	c.mu.Unlock()

	if err := c.rt.SendToTab(tab.ID, protocol.RequestPageInfo{Token: token}); err != nil {
		return token, fmt.Errorf("popup: request page info from tab %d: %w", tab.ID, err)
	}
	c.log.Debugf("requested page info from tab %d (%s)", tab.ID, token)
	return token, nil
}

func (c *Controller) handleMessage(raw []byte) {
	msg, err := protocol.Decode(raw)
	if err != nil {
		c.log.Warnf("ignoring message: %v", err)
		return
	}
	reply, ok := msg.(protocol.PageInfoReply)
	if !ok {
		c.log.Debugf("ignoring %s", msg.Kind())
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == "" || reply.Token != c.pending {
		c.log.Debugf("dropping stale reply %q (pending %q)", reply.Token, c.pending)
		return
	}
	c.info = reply.Info
	c.answered[reply.Token] = reply.Info
	c.pending = ""
	close(c.changed)
	c.changed = make(chan struct{})
}

// Wait blocks until the reply for token has been applied or ctx ends. It
// returns the page info that reply carried, even after later replies have
// replaced the held info. A token replaced by a newer Activate before its
// reply arrived never gets one and yields ErrSuperseded.
func (c *Controller) Wait(ctx context.Context, token protocol.Token) (protocol.PageInfo, error) {
	for {
		c.mu.Lock()
		if info, ok := c.answered[token]; ok {
			c.mu.Unlock()
			return info, nil
		}
		if c.pending != token {
			c.mu.Unlock()
			return protocol.PageInfo{}, ErrSuperseded
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return protocol.PageInfo{}, fmt.Errorf("%w: %v", ErrNoReply, ctx.Err())
		}
	}
}

// Upload sends the held page info to the collection. A failure is kept as
// the controller's error and returned; nothing is retried.
func (c *Controller) Upload(ctx context.Context) error {
	c.mu.Lock()
	info := c.info
	c.mu.Unlock()

	rec := collection.UploadRecord{
		Name: info.Title,
		URL:  info.URL,
		Tags: []string{},
	}
	if err := c.up.Create(ctx, rec); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		c.log.Errorf("upload %s: %v", info.URL, err)
		return err
	}
	c.log.Infof("uploaded %s", info.URL)
	return nil
}

// PageInfo returns the held page info.
func (c *Controller) PageInfo() protocol.PageInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// Err returns the last upload failure, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// State returns a copy of the UI-facing state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Info: c.info, Err: c.err, Destination: c.dest}
}

// Render writes the popup HTML for the current state.
func (c *Controller) Render(ctx context.Context, w io.Writer) error {
	s := c.State()
	vs := views.PopupState{Destination: s.Destination}
	if s.Err != nil {
		vs.Error = s.Err.Error()
	} else {
		dump, err := json.MarshalIndent(s.Info, "", "    ")
		if err != nil {
			return err
		}
		vs.Dump = string(dump)
	}
	return views.Popup(vs).Render(ctx, w)
}
