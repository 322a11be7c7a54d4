package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned by Decode for envelopes with an unrecognized type.
	ErrUnknownKind = errors.New("protocol: unknown message kind")
	// ErrMalformed is returned by Decode when the envelope or payload is not valid JSON.
	ErrMalformed = errors.New("protocol: malformed message")
)

// Envelope is the wire form of a message.
type Envelope struct {
	Type    Kind            `json:"type"`
	Token   Token           `json:"token,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode serializes msg into its envelope.
func Encode(msg Message) ([]byte, error) {
	env := Envelope{Type: msg.Kind(), Token: msg.CorrelationToken()}
	switch m := msg.(type) {
	case RequestPageInfo:
	case PageInfoReply:
		payload, err := json.Marshal(m.Info)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode %s payload: %w", m.Kind(), err)
		}
		env.Payload = payload
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, msg)
	}
	return json.Marshal(env)
}

// Peek returns the envelope of raw without interpreting the payload.
func Peek(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return env, nil
}

// Decode parses raw into RequestPageInfo or PageInfoReply.
func Decode(raw []byte) (Message, error) {
	env, err := Peek(raw)
	if err != nil {
		return nil, err
	}
	switch env.Type {
	case KindRequestPageInfo:
		return RequestPageInfo{Token: env.Token}, nil
	case KindPageInfoReply:
		var info PageInfo
		if len(env.Payload) == 0 || string(env.Payload) == "null" {
			return nil, fmt.Errorf("%w: %s without payload", ErrMalformed, env.Type)
		}
		if err := json.Unmarshal(env.Payload, &info); err != nil {
			return nil, fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
		}
		return PageInfoReply{Token: env.Token, Info: info}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
}
