// Package protocol defines the messages exchanged between the popup and the
// page agent running inside a browser tab.
//
// Every message travels as a JSON envelope with a "type" tag. Decode turns an
// envelope back into one of the concrete variants below, so receivers switch
// on the Go type instead of trusting an untyped payload.
package protocol

import "github.com/google/uuid"

// Kind tags a message envelope.
type Kind string

const (
	// KindRequestPageInfo asks a page agent to report its page right now.
	KindRequestPageInfo Kind = "GetPageInfo"
	// KindPageInfoReply carries a PageInfo back to the popup.
	KindPageInfoReply Kind = "PageInfo"
)

// Token correlates a reply with the request that caused it.
type Token string

// NewToken returns a fresh correlation token.
func NewToken() Token {
	return Token(uuid.NewString())
}

// PageInfo is a snapshot of one page at one instant.
type PageInfo struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Message is implemented by RequestPageInfo and PageInfoReply only.
type Message interface {
	Kind() Kind
	CorrelationToken() Token
	isMessage()
}

// RequestPageInfo has no payload.
type RequestPageInfo struct {
	Token Token
}

func (RequestPageInfo) Kind() Kind                { return KindRequestPageInfo }
func (m RequestPageInfo) CorrelationToken() Token { return m.Token }
func (RequestPageInfo) isMessage()                {}

// PageInfoReply answers a RequestPageInfo carrying the same token.
type PageInfoReply struct {
	Token Token
	Info  PageInfo
}

func (PageInfoReply) Kind() Kind                { return KindPageInfoReply }
func (m PageInfoReply) CorrelationToken() Token { return m.Token }
func (PageInfoReply) isMessage()                {}
