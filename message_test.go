package cometd

import (
	"testing"
	"time"
)

func TestAdviceReconnectValue(t *testing.T) {
	cases := []struct {
		name string
		in   Advice
		want Reconnect
	}{
		{"retry", Advice{Reconnect: "retry"}, ReconnectRetry},
		{"handshake", Advice{Reconnect: "handshake"}, ReconnectHandshake},
		{"mixed case", Advice{Reconnect: "Handshake"}, ReconnectHandshake},
		{"none explicit", Advice{Reconnect: "none"}, ReconnectNone},
		{"absent", Advice{}, ReconnectNone},
		{"garbage", Advice{Reconnect: "whatever"}, ReconnectNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.in.ReconnectValue(); got != c.want {
				t.Errorf("ReconnectValue() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestAdvicePredicates(t *testing.T) {
	retry := Advice{Reconnect: "retry"}
	if !retry.ShouldRetry() || retry.ShouldHandshake() || retry.MustNotRetryOrHandshake() {
		t.Errorf("retry advice predicates wrong: %+v", retry)
	}

	handshake := Advice{Reconnect: "handshake"}
	if !handshake.ShouldHandshake() || handshake.ShouldRetry() || handshake.MustNotRetryOrHandshake() {
		t.Errorf("handshake advice predicates wrong: %+v", handshake)
	}

	none := Advice{Reconnect: "none"}
	if !none.MustNotRetryOrHandshake() || none.ShouldRetry() || none.ShouldHandshake() {
		t.Errorf("none advice predicates wrong: %+v", none)
	}
}

func TestAdviceDurations(t *testing.T) {
	a := Advice{Timeout: 1500, Interval: 250}
	if got := a.TimeoutAsDuration(); got != 1500*time.Millisecond {
		t.Errorf("TimeoutAsDuration() = %v, want 1.5s", got)
	}
	if got := a.IntervalAsDuration(); got != 250*time.Millisecond {
		t.Errorf("IntervalAsDuration() = %v, want 250ms", got)
	}
}

func TestMessageReconnectAdvice(t *testing.T) {
	m := Message{}
	if got := m.ReconnectAdvice(); got != ReconnectNone {
		t.Errorf("ReconnectAdvice() with nil advice = %v, want ReconnectNone", got)
	}

	m.Advice = &Advice{Reconnect: "retry"}
	if got := m.ReconnectAdvice(); got != ReconnectRetry {
		t.Errorf("ReconnectAdvice() = %v, want ReconnectRetry", got)
	}
}

func TestMessageParseError(t *testing.T) {
	m := Message{Error: "402:clientId:Unknown client"}
	me, err := m.ParseError()
	if err != nil {
		t.Fatalf("ParseError() error = %v", err)
	}
	if me.ErrorCode != 402 {
		t.Errorf("ErrorCode = %d, want 402", me.ErrorCode)
	}
	if len(me.ErrorArgs) != 1 || me.ErrorArgs[0] != "clientId" {
		t.Errorf("ErrorArgs = %v, want [clientId]", me.ErrorArgs)
	}
	if me.ErrorMessage != "Unknown client" {
		t.Errorf("ErrorMessage = %q, want %q", me.ErrorMessage, "Unknown client")
	}
	if me.Error() != "402: Unknown client" {
		t.Errorf("Error() = %q", me.Error())
	}
}

func TestMessageParseErrorMultipleArgs(t *testing.T) {
	m := Message{Error: "403:a,b,c:Forbidden"}
	me, err := m.ParseError()
	if err != nil {
		t.Fatalf("ParseError() error = %v", err)
	}
	if len(me.ErrorArgs) != 3 {
		t.Errorf("ErrorArgs = %v, want 3 elements", me.ErrorArgs)
	}
}

func TestMessageParseErrorMalformed(t *testing.T) {
	cases := []string{"", "justonepart", "two:parts"}
	for _, in := range cases {
		m := Message{Error: in}
		if _, err := m.ParseError(); err == nil {
			t.Errorf("ParseError(%q) expected an error", in)
		}
	}
}

func TestMessageGetExt(t *testing.T) {
	var m Message
	if got := m.GetExt(false); got != nil {
		t.Errorf("GetExt(false) on empty message = %v, want nil", got)
	}
	ext := m.GetExt(true)
	if ext == nil {
		t.Fatal("GetExt(true) returned nil")
	}
	ext["foo"] = "bar"
	if m.Ext["foo"] != "bar" {
		t.Errorf("GetExt(true) did not allocate the backing map in place")
	}
}
