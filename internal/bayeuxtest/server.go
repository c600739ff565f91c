// Package bayeuxtest provides a small in-process fake Bayeux server for
// exercising the session state machine end to end, adapted from the
// teacher package's internal/gobayeuxtest fake.
package bayeuxtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
)

// wireMessage mirrors the subset of cometd.Message fields the fake server
// needs to read and write, kept independent of the parent module so this
// package has no import cycle back to it.
type wireMessage struct {
	ID                       string          `json:"id,omitempty"`
	Channel                  string          `json:"channel"`
	ClientID                 string          `json:"clientId,omitempty"`
	SupportedConnectionTypes []string        `json:"supportedConnectionTypes,omitempty"`
	Subscription             interface{}     `json:"subscription,omitempty"`
	Successful               bool            `json:"successful,omitempty"`
	Error                    string          `json:"error,omitempty"`
	Advice                   *wireAdvice     `json:"advice,omitempty"`
	Data                     json.RawMessage `json:"data,omitempty"`
}

type wireAdvice struct {
	Reconnect string `json:"reconnect,omitempty"`
	Timeout   int    `json:"timeout,omitempty"`
	Interval  int    `json:"interval,omitempty"`
}

// Server is a scriptable fake Bayeux server. Zero value is a server that
// always succeeds handshake/subscribe/unsubscribe/disconnect and answers
// every connect with zero deliveries.
type Server struct {
	mu sync.Mutex

	// HandshakeFailures controls how many handshake attempts fail (with
	// HandshakeFailureAdvice) before one succeeds.
	HandshakeFailures int
	handshakeAttempts int

	HandshakeFailureAdvice string // "retry" or "handshake"

	// ConnectFailures controls how many connect attempts fail (with
	// ConnectFailureAdvice) before one succeeds.
	ConnectFailures int
	connectAttempts int

	ConnectFailureAdvice string

	// SubscribeShouldFail, when true, makes every subscribe fail with
	// SubscribeFailureAdvice.
	SubscribeShouldFail    bool
	SubscribeFailureAdvice string

	// Deliveries is a one-shot queue of extra messages appended to the
	// *next* successful connect response, in order.
	Deliveries [][]wireMessage

	// SetCookies is a queue of Set-Cookie header values, one emitted per
	// HTTP response in order, until exhausted.
	SetCookies []string

	// DisconnectStatusCode overrides the HTTP status code used for the
	// disconnect response; 0 means 200 with a successful body.
	DisconnectStatusCode int

	clientSeq atomic.Int64

	// ReceivedCookies captures every Cookie header this server has seen.
	ReceivedCookies []string
	// ReceivedAuthorization captures every Authorization header this server
	// has seen.
	ReceivedAuthorization []string
}

// NewServer builds an httptest.Server backed by a fresh Server.
func NewServer() (*httptest.Server, *Server) {
	s := &Server{}
	return httptest.NewServer(s), s
}

func (s *Server) nextSetCookie() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.SetCookies) == 0 {
		return "", false
	}
	v := s.SetCookies[0]
	s.SetCookies = s.SetCookies[1:]
	return v, true
}

func (s *Server) popDeliveries() []wireMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Deliveries) == 0 {
		return nil
	}
	d := s.Deliveries[0]
	s.Deliveries = s.Deliveries[1:]
	return d
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.ReceivedCookies = append(s.ReceivedCookies, r.Header.Get("Cookie"))
	s.ReceivedAuthorization = append(s.ReceivedAuthorization, r.Header.Get("Authorization"))
	s.mu.Unlock()

	if cookie, ok := s.nextSetCookie(); ok {
		w.Header().Add("Set-Cookie", cookie)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	var msgs []wireMessage
	if err := json.Unmarshal(body, &msgs); err != nil || len(msgs) != 1 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	msg := msgs[0]

	switch msg.Channel {
	case "/meta/handshake":
		s.handleHandshake(w, msg)
	case "/meta/connect":
		s.handleConnect(w, msg)
	case "/meta/subscribe":
		s.handleSubscribeUnsubscribe(w, msg, true)
	case "/meta/unsubscribe":
		s.handleSubscribeUnsubscribe(w, msg, false)
	case "/meta/disconnect":
		s.handleDisconnect(w, msg)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (s *Server) handleHandshake(w http.ResponseWriter, msg wireMessage) {
	s.mu.Lock()
	s.handshakeAttempts++
	attempt := s.handshakeAttempts
	shouldFail := attempt <= s.HandshakeFailures
	advice := s.HandshakeFailureAdvice
	s.mu.Unlock()

	if shouldFail {
		writeJSON(w, http.StatusOK, []wireMessage{{
			ID:         msg.ID,
			Channel:    "/meta/handshake",
			Successful: false,
			Error:      "402::handshake denied",
			Advice:     &wireAdvice{Reconnect: advice},
		}})
		return
	}

	clientID := fmt.Sprintf("client-%d", s.clientSeq.Add(1))
	writeJSON(w, http.StatusOK, []wireMessage{{
		ID:                       msg.ID,
		Channel:                  "/meta/handshake",
		ClientID:                 clientID,
		SupportedConnectionTypes: []string{"long-polling"},
		Successful:               true,
	}})
}

func (s *Server) handleConnect(w http.ResponseWriter, msg wireMessage) {
	s.mu.Lock()
	s.connectAttempts++
	attempt := s.connectAttempts
	shouldFail := attempt <= s.ConnectFailures
	advice := s.ConnectFailureAdvice
	s.mu.Unlock()

	if shouldFail {
		writeJSON(w, http.StatusOK, []wireMessage{{
			ID:         msg.ID,
			Channel:    "/meta/connect",
			Successful: false,
			Error:      "402::connect denied",
			Advice:     &wireAdvice{Reconnect: advice},
		}})
		return
	}

	replies := []wireMessage{{
		ID:         msg.ID,
		Channel:    "/meta/connect",
		ClientID:   msg.ClientID,
		Successful: true,
	}}
	replies = append(replies, s.popDeliveries()...)
	writeJSON(w, http.StatusOK, replies)
}

func (s *Server) handleSubscribeUnsubscribe(w http.ResponseWriter, msg wireMessage, subscribing bool) {
	channel := "/meta/subscribe"
	if !subscribing {
		channel = "/meta/unsubscribe"
	}

	s.mu.Lock()
	shouldFail := s.SubscribeShouldFail
	advice := s.SubscribeFailureAdvice
	s.mu.Unlock()

	if shouldFail {
		writeJSON(w, http.StatusOK, []wireMessage{{
			ID:         msg.ID,
			Channel:    channel,
			Successful: false,
			Error:      "403::subscription denied",
			Advice:     &wireAdvice{Reconnect: advice},
		}})
		return
	}

	writeJSON(w, http.StatusOK, []wireMessage{{
		ID:           msg.ID,
		Channel:      channel,
		ClientID:     msg.ClientID,
		Subscription: msg.Subscription,
		Successful:   true,
	}})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, msg wireMessage) {
	s.mu.Lock()
	status := s.DisconnectStatusCode
	s.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		return
	}

	writeJSON(w, http.StatusOK, []wireMessage{{
		ID:         msg.ID,
		Channel:    "/meta/disconnect",
		ClientID:   msg.ClientID,
		Successful: true,
	}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
