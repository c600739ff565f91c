package cometd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// session holds the long-lived state described in SPEC_FULL.md §3 and
// implements the four (five, with Unsubscribe) session primitives of
// component D. It is owned jointly by the orchestrator goroutine and the
// Client handle: client_id, access_token and the cookie jar's cache are all
// read and written through atomic pointers so that readers never observe a
// torn value.
type session struct {
	endpoints      endpoints
	httpClient     *http.Client
	timeout        time.Duration
	interval       time.Duration
	requestTimeout time.Duration

	idCounter atomic.Uint64

	accessToken atomic.Pointer[AccessToken]
	jar         *cookieJar
	clientID    atomic.Pointer[string]

	logger Logger
}

func newSession(ep endpoints, httpClient *http.Client, timeout, interval, requestTimeout time.Duration, logger Logger) *session {
	s := &session{
		endpoints:      ep,
		httpClient:     httpClient,
		timeout:        timeout,
		interval:       interval,
		requestTimeout: requestTimeout,
		jar:            newCookieJar(),
		logger:         logger,
	}
	return s
}

func (s *session) nextID() string {
	return strconv.FormatUint(s.idCounter.Add(1)-1, 10)
}

// SetAccessToken atomically replaces the access token used for subsequent
// requests. In-flight requests keep using whatever token they already
// copied.
func (s *session) SetAccessToken(token AccessToken) {
	s.accessToken.Store(&token)
}

// GetClientID atomically reads the current client id, returning "" if the
// session hasn't (or no longer has) an established handshake.
func (s *session) GetClientID() string {
	p := s.clientID.Load()
	if p == nil {
		return ""
	}
	return *p
}

func (s *session) setClientID(id string) {
	s.clientID.Store(&id)
}

// takeClientID atomically clears the client id and returns whatever value
// it held, implementing invariant I3 (disconnect clears client_id before
// issuing the request).
func (s *session) takeClientID() string {
	empty := ""
	p := s.clientID.Swap(&empty)
	if p == nil {
		return ""
	}
	return *p
}

// Handshake performs the /meta/handshake RPC described in SPEC_FULL.md
// §4.D.
func (s *session) Handshake(ctx context.Context) error {
	msg := Message{
		ID:                       s.nextID(),
		Channel:                  MetaHandshake,
		Version:                  "1.0",
		MinimumVersion:           "1.0",
		SupportedConnectionTypes: []string{"long-polling"},
		Advice: &Advice{
			Timeout:  int(s.timeout.Milliseconds()),
			Interval: int(s.interval.Milliseconds()),
		},
	}

	resp, err := s.do(ctx, Handshake, s.endpoints.handshake, msg)
	if err != nil {
		return err
	}
	if len(resp) == 0 {
		return newWrongResponseError(Handshake, ReconnectNone, "empty handshake response")
	}
	m := resp[0]
	if !m.Successful {
		return newWrongResponseError(Handshake, m.ReconnectAdvice(), m.Error)
	}
	if !containsString(m.SupportedConnectionTypes, "long-polling") {
		return newWrongResponseError(Handshake, ReconnectNone, "server does not support long-polling")
	}
	if m.ClientID == "" {
		return newWrongResponseError(Handshake, ReconnectNone, "Missing client_id")
	}
	s.setClientID(m.ClientID)
	s.logger.WithField("client_id", m.ClientID).Debug("handshake succeeded")
	return nil
}

// Subscribe performs the /meta/subscribe RPC described in SPEC_FULL.md
// §4.D.
func (s *session) Subscribe(ctx context.Context, subscription interface{}) error {
	return s.subscribeOrUnsubscribe(ctx, Subscribe, MetaSubscribe, s.endpoints.subscribe, subscription)
}

// Unsubscribe performs the /meta/unsubscribe RPC added in SPEC_FULL.md
// §4.D.
func (s *session) Unsubscribe(ctx context.Context, subscription interface{}) error {
	return s.subscribeOrUnsubscribe(ctx, Unsubscribe, MetaUnsubscribe, s.endpoints.unsubscribe, subscription)
}

func (s *session) subscribeOrUnsubscribe(ctx context.Context, kind Kind, channel Channel, endpoint string, subscription interface{}) error {
	clientID := s.GetClientID()
	if clientID == "" {
		return MissingClientIDError{Kind: kind}
	}

	msg := Message{
		ID:           s.nextID(),
		Channel:      channel,
		ClientID:     clientID,
		Subscription: subscription,
	}

	resp, err := s.do(ctx, kind, endpoint, msg)
	if err != nil {
		return err
	}
	if len(resp) == 0 {
		return newWrongResponseError(kind, ReconnectNone, "empty response")
	}
	m := resp[0]
	if !m.Successful {
		return newWrongResponseError(kind, m.ReconnectAdvice(), m.Error)
	}
	return nil
}

// Connect performs the /meta/connect long-poll RPC described in
// SPEC_FULL.md §4.D, returning the batch of application-visible deliveries
// carried alongside the meta response.
func (s *session) Connect(ctx context.Context) ([]Delivery, error) {
	clientID := s.GetClientID()
	if clientID == "" {
		return nil, MissingClientIDError{Kind: Connect}
	}

	id := s.nextID()
	msg := Message{
		ID:             id,
		Channel:        MetaConnect,
		ConnectionType: "long-polling",
		ClientID:       clientID,
	}

	resp, err := s.do(ctx, Connect, s.endpoints.connect, msg)
	if err != nil {
		return nil, err
	}

	metaIndex := -1
	for i, m := range resp {
		if m.ID == id {
			metaIndex = i
			break
		}
	}
	if metaIndex == -1 {
		return nil, newWrongResponseError(Connect, ReconnectNone, "response corresponding request id cannot be found")
	}

	meta := resp[metaIndex]
	if !meta.Successful {
		return nil, newWrongResponseError(Connect, meta.ReconnectAdvice(), meta.Error)
	}

	deliveries := make([]Delivery, 0, len(resp)-1)
	for i, m := range resp {
		if i == metaIndex {
			continue
		}
		deliveries = append(deliveries, Delivery{Channel: m.Channel, Payload: m.Data})
	}
	return deliveries, nil
}

// Disconnect performs the /meta/disconnect RPC described in SPEC_FULL.md
// §4.D. It implements invariant I3 by clearing client_id before the
// request is even issued.
func (s *session) Disconnect(ctx context.Context) error {
	clientID := s.takeClientID()
	if clientID == "" {
		return MissingClientIDError{Kind: Disconnect}
	}

	msg := Message{
		ID:       s.nextID(),
		Channel:  MetaDisconnect,
		ClientID: clientID,
	}

	resp, err := s.do(ctx, Disconnect, s.endpoints.disconnect, msg)
	if err != nil {
		return err
	}
	if len(resp) == 0 {
		return newWrongResponseError(Disconnect, ReconnectNone, "empty disconnect response")
	}
	if !resp[0].Successful {
		reason := resp[0].Error
		if reason == "" {
			reason = "disconnect was not successful"
		}
		return newWrongResponseError(Disconnect, ReconnectNone, reason)
	}
	return nil
}

// do implements the Request Builder (component A): it assembles the single-
// message envelope, attaches Authorization and Cookie headers, issues the
// POST, and folds any Set-Cookie headers from the response back into the
// jar before returning the decoded response array.
func (s *session) do(ctx context.Context, kind Kind, endpoint string, msg Message) ([]Message, error) {
	logger := s.logger.WithField("kind", kind).WithField("endpoint", endpoint)
	logger.Debug("sending request")
	start := time.Now()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode([]Message{msg}); err != nil {
		return nil, UnexpectedError{Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, UnexpectedError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if tokenPtr := s.accessToken.Load(); tokenPtr != nil {
		req.Header.Set("Authorization", (*tokenPtr).AuthorizationHeader())
	}
	if cookies := s.jar.Header(); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Debug("request failed")
		return nil, RequestError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	s.absorbCookies(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, FetchBodyError{Kind: kind, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, StatusCodeError{Kind: kind, StatusCode: resp.StatusCode, Body: body}
	}

	var messages []Message
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, ParseBodyError{Kind: kind, Err: err}
	}

	logger.WithField("duration", time.Since(start)).Debug("request finished")
	return messages, nil
}

func (s *session) absorbCookies(resp *http.Response) {
	values := resp.Header.Values("Set-Cookie")
	if len(values) == 0 {
		return
	}
	pairs := make([]cookie, 0, len(values))
	for _, v := range values {
		name, value, ok := parseSetCookie(v)
		if ok {
			pairs = append(pairs, cookie{name: name, value: value})
		}
	}
	s.jar.AddAll(pairs)
}

// parseSetCookie extracts the name=value pair from a Set-Cookie header,
// ignoring attributes such as Path, Domain, or Expires.
func parseSetCookie(header string) (name, value string, ok bool) {
	parts := bytes.SplitN([]byte(header), []byte(";"), 2)
	if len(parts) == 0 {
		return "", "", false
	}
	kv := bytes.SplitN(bytes.TrimSpace(parts[0]), []byte("="), 2)
	if len(kv) != 2 {
		return "", "", false
	}
	return string(kv[0]), string(kv[1]), true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
