// Package bridge is an in-process stand-in for the browser extension runtime:
// it owns the set of tabs, delivers messages between contexts and answers
// active-tab queries.
//
// Delivery is asynchronous and at most once. Each delivery runs on its own
// goroutine and receives its own copy of the encoded message, so contexts
// never share memory. Nothing is ordered across distinct sends.
package bridge

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/eringen/monk/protocol"
)

var (
	// ErrNoActiveTab is returned when no tab is active in the current window.
	ErrNoActiveTab = errors.New("bridge: no active tab in current window")
	// ErrNoSuchTab is returned when sending to a tab id that is not open.
	ErrNoSuchTab = errors.New("bridge: no such tab")
	// ErrNoReceiver is returned when the tab has no content script attached.
	ErrNoReceiver = errors.New("bridge: tab has no receiving end")
)

// Listener receives one encoded message.
type Listener func(raw []byte)

// Tab describes an open browser tab.
type Tab struct {
	ID       int
	WindowID int
	Active   bool
	URL      string
}

type tabEntry struct {
	tab      Tab
	receiver Listener
}

// Runtime connects the popup context with the content scripts of open tabs.
type Runtime struct {
	mu            sync.RWMutex
	listeners     map[string]Listener
	tabs          map[int]*tabEntry
	currentWindow int
	nextTabID     int

	inflight sync.WaitGroup
	drop     func(raw []byte) bool
	log      *log.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Runtime) { r.log = l }
}

// WithDropFunc installs a predicate that discards matching messages before
// delivery. Used to model lost messages.
func WithDropFunc(fn func(raw []byte) bool) Option {
	return func(r *Runtime) { r.drop = fn }
}

// NewRuntime creates an empty runtime whose current window is 1.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		listeners:     make(map[string]Listener),
		tabs:          make(map[int]*tabEntry),
		currentWindow: 1,
		nextTabID:     1,
		log:           log.New("bridge"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddListener registers fn under id for runtime-wide messages. It reports
// false and keeps the existing listener when id is already registered.
func (r *Runtime) AddListener(id string, fn Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listeners[id]; ok {
		return false
	}
	r.listeners[id] = fn
	return true
}

// RemoveListener unregisters id. Unknown ids are ignored.
func (r *Runtime) RemoveListener(id string) {
	r.mu.Lock()
	delete(r.listeners, id)
	r.mu.Unlock()
}

// HasListener reports whether id is registered.
func (r *Runtime) HasListener(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.listeners[id]
	return ok
}

// SendMessage delivers msg to every runtime listener. It does not wait for
// the listeners to run.
func (r *Runtime) SendMessage(msg protocol.Message) error {
	raw, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return r.SendRaw(raw)
}

// SendRaw delivers an already encoded message to every runtime listener.
func (r *Runtime) SendRaw(raw []byte) error {
	r.mu.RLock()
	targets := make([]Listener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		targets = append(targets, fn)
	}
	r.mu.RUnlock()

	if len(targets) == 0 {
		r.log.Debugf("runtime message dropped, no listeners: %s", raw)
		return nil
	}
	for _, fn := range targets {
		r.deliver(fn, raw)
	}
	return nil
}

// SendToTab delivers msg to the content script of tab id.
func (r *Runtime) SendToTab(id int, msg protocol.Message) error {
	raw, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return r.SendRawToTab(id, raw)
}

// SendRawToTab delivers an already encoded message to the content script of tab id.
func (r *Runtime) SendRawToTab(id int, raw []byte) error {
	r.mu.RLock()
	entry, ok := r.tabs[id]
	var receiver Listener
	if ok {
		receiver = entry.receiver
	}
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchTab, id)
	}
	if receiver == nil {
		return fmt.Errorf("%w: tab %d", ErrNoReceiver, id)
	}
	r.deliver(receiver, raw)
	return nil
}

func (r *Runtime) deliver(fn Listener, raw []byte) {
	if r.drop != nil && r.drop(raw) {
		r.log.Debugf("message dropped: %s", raw)
		return
	}
	msg := make([]byte, len(raw))
	copy(msg, raw)
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		fn(msg)
	}()
}

// Wait blocks until every delivery started so far has returned, including
// deliveries started by listeners while Wait is running.
func (r *Runtime) Wait() {
	r.inflight.Wait()
}

// OpenTab opens a tab in the current window and makes it active.
func (r *Runtime) OpenTab(url string) Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openTabLocked(r.nextTabID, url)
}

// OpenTabWithID opens a tab with a caller-chosen id in the current window and
// makes it active. An existing tab with the same id is replaced.
func (r *Runtime) OpenTabWithID(id int, url string) Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openTabLocked(id, url)
}

func (r *Runtime) openTabLocked(id int, url string) Tab {
	if id >= r.nextTabID {
		r.nextTabID = id + 1
	}
	tab := Tab{ID: id, WindowID: r.currentWindow, URL: url}
	r.tabs[id] = &tabEntry{tab: tab}
	r.activateLocked(id)
	return r.tabs[id].tab
}

// Attach registers receiver as the content script of tab id.
func (r *Runtime) Attach(id int, receiver Listener) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.tabs[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchTab, id)
	}
	entry.receiver = receiver
	return nil
}

// Focus makes tab id active and its window current.
func (r *Runtime) Focus(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.tabs[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchTab, id)
	}
	r.currentWindow = entry.tab.WindowID
	r.activateLocked(id)
	return nil
}

// MoveToWindow moves tab id into window and focuses it.
func (r *Runtime) MoveToWindow(id, window int) error {
	r.mu.Lock()
	entry, ok := r.tabs[id]
	if ok {
		entry.tab.WindowID = window
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchTab, id)
	}
	return r.Focus(id)
}

// CloseTab removes tab id along with its content script.
func (r *Runtime) CloseTab(id int) {
	r.mu.Lock()
	delete(r.tabs, id)
	r.mu.Unlock()
}

// activateLocked marks id active and every other tab of its window inactive.
func (r *Runtime) activateLocked(id int) {
	window := r.tabs[id].tab.WindowID
	for tid, e := range r.tabs {
		if e.tab.WindowID == window {
			e.tab.Active = tid == id
		}
	}
}

// QueryActiveTab returns the active tab of the current window.
func (r *Runtime) QueryActiveTab() (Tab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.tabs {
		if e.tab.Active && e.tab.WindowID == r.currentWindow {
			return e.tab, nil
		}
	}
	return Tab{}, ErrNoActiveTab
}

// Tabs returns all open tabs ordered by id.
func (r *Runtime) Tabs() []Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tab, 0, len(r.tabs))
	for _, e := range r.tabs {
		out = append(out, e.tab)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
