package cometd

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	if ErrMissingEndpoint.Error() == "" {
		t.Error("ErrMissingEndpoint should have a message")
	}
	if !errors.Is(ErrMissingEndpoint, ErrMissingEndpoint) {
		t.Error("sentinel errors must compare equal to themselves")
	}
}

func TestRequestErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := RequestError{Kind: Connect, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("RequestError should unwrap to its inner error")
	}
}

func TestInvalidURLErrorUnwrap(t *testing.T) {
	inner := errors.New("parse error")
	err := InvalidURLError{Err: inner}
	if !errors.Is(err, inner) {
		t.Error("InvalidURLError should unwrap to its inner error")
	}
}

func TestWrongResponseErrorMessage(t *testing.T) {
	err := WrongResponseError{Kind: Handshake, Advice: ReconnectRetry, Message: "boom"}
	want := "cometd: handshake: boom (advice=retry)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMissingClientIDError(t *testing.T) {
	err := MissingClientIDError{Kind: Subscribe}
	if err.Error() == "" {
		t.Error("expected a non-empty message")
	}
}

func TestNewWrongResponseErrorParsesStructuredMessage(t *testing.T) {
	err := newWrongResponseError(Subscribe, ReconnectNone, "403:/foo/bar:Subscription denied")
	if err.Parsed == nil {
		t.Fatal("expected Parsed to be populated for a well-formed error string")
	}
	if err.Parsed.ErrorCode != 403 {
		t.Errorf("Parsed.ErrorCode = %d, want 403", err.Parsed.ErrorCode)
	}
	if err.Parsed.ErrorMessage != "Subscription denied" {
		t.Errorf("Parsed.ErrorMessage = %q, want %q", err.Parsed.ErrorMessage, "Subscription denied")
	}
}

func TestNewWrongResponseErrorLeavesParsedNilOnMalformedMessage(t *testing.T) {
	err := newWrongResponseError(Handshake, ReconnectNone, "Missing client_id")
	if err.Parsed != nil {
		t.Errorf("Parsed = %+v, want nil for a non-structured message", err.Parsed)
	}
}
