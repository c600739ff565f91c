package cometd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message is the on-the-wire Bayeux envelope, sent and received as an
// element of a top-level JSON array.
//
// See also: https://docs.cometd.org/current/reference/#_bayeux_message_fields
type Message struct {
	ID                       string                 `json:"id,omitempty"`
	Channel                  Channel                `json:"channel"`
	ClientID                 string                 `json:"clientId,omitempty"`
	Version                  string                 `json:"version,omitempty"`
	MinimumVersion           string                 `json:"minimumVersion,omitempty"`
	SupportedConnectionTypes []string               `json:"supportedConnectionTypes,omitempty"`
	ConnectionType           string                 `json:"connectionType,omitempty"`
	Subscription             interface{}            `json:"subscription,omitempty"`
	Successful               bool                   `json:"successful,omitempty"`
	Error                    string                 `json:"error,omitempty"`
	Advice                   *Advice                `json:"advice,omitempty"`
	Data                     json.RawMessage        `json:"data,omitempty"`
	Ext                      map[string]interface{} `json:"ext,omitempty"`
}

// GetExt returns the Ext map, optionally allocating it if it is nil and
// create is true.
func (m *Message) GetExt(create bool) map[string]interface{} {
	if m.Ext == nil && create {
		m.Ext = make(map[string]interface{})
	}
	return m.Ext
}

// ReconnectAdvice extracts the Reconnect directive carried by this message,
// defaulting to ReconnectNone when advice is absent.
func (m Message) ReconnectAdvice() Reconnect {
	if m.Advice == nil {
		return ReconnectNone
	}
	return m.Advice.ReconnectValue()
}

// ParseError parses the message's Error field, which per the Bayeux
// specification takes the form "<code>:<comma-separated-args>:<message>".
func (m Message) ParseError() (MessageError, error) {
	parts := strings.SplitN(m.Error, ":", 3)
	if len(parts) != 3 {
		return MessageError{}, fmt.Errorf("cometd: malformed error string %q", m.Error)
	}
	code, err := strconv.Atoi(parts[0])
	if err != nil {
		return MessageError{}, fmt.Errorf("cometd: malformed error code in %q: %w", m.Error, err)
	}
	args := strings.Split(parts[1], ",")
	return MessageError{ErrorCode: code, ErrorArgs: args, ErrorMessage: parts[2]}, nil
}

// MessageError is the parsed form of a Message's Error field.
type MessageError struct {
	ErrorCode    int
	ErrorArgs    []string
	ErrorMessage string
}

func (e MessageError) Error() string {
	return fmt.Sprintf("%d: %s", e.ErrorCode, e.ErrorMessage)
}

// Reconnect is the server's advice on how the client should recover from a
// non-successful response.
type Reconnect string

const (
	// ReconnectNone tells the client to give up retrying.
	ReconnectNone Reconnect = "none"
	// ReconnectRetry tells the client to retry the same operation.
	ReconnectRetry Reconnect = "retry"
	// ReconnectHandshake tells the client to re-handshake before retrying.
	ReconnectHandshake Reconnect = "handshake"
)

// Advice carries the server's reconnection hint plus the timeout/interval
// it would like the client to use for its long-poll cadence.
type Advice struct {
	Reconnect string `json:"reconnect,omitempty"`
	Timeout   int    `json:"timeout,omitempty"`
	Interval  int    `json:"interval,omitempty"`
}

// ReconnectValue normalizes Reconnect to one of the three known values,
// matching unknown or absent values to ReconnectNone.
func (a Advice) ReconnectValue() Reconnect {
	switch strings.ToLower(a.Reconnect) {
	case string(ReconnectRetry):
		return ReconnectRetry
	case string(ReconnectHandshake):
		return ReconnectHandshake
	default:
		return ReconnectNone
	}
}

// MustNotRetryOrHandshake reports whether the advice tells the client to
// give up entirely.
func (a Advice) MustNotRetryOrHandshake() bool {
	return a.ReconnectValue() == ReconnectNone
}

// ShouldRetry reports whether the advice tells the client to retry the same
// operation.
func (a Advice) ShouldRetry() bool {
	return a.ReconnectValue() == ReconnectRetry
}

// ShouldHandshake reports whether the advice tells the client to
// re-handshake.
func (a Advice) ShouldHandshake() bool {
	return a.ReconnectValue() == ReconnectHandshake
}

// TimeoutAsDuration converts the millisecond Timeout field to a
// time.Duration.
func (a Advice) TimeoutAsDuration() time.Duration {
	return time.Duration(a.Timeout) * time.Millisecond
}

// IntervalAsDuration converts the millisecond Interval field to a
// time.Duration.
func (a Advice) IntervalAsDuration() time.Duration {
	return time.Duration(a.Interval) * time.Millisecond
}

// Delivery is an application-visible {channel, payload} pair produced from a
// non-meta message observed in a long-poll response.
type Delivery struct {
	Channel Channel
	Payload json.RawMessage
}
