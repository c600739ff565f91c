package cometd

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
)

// Client is the public handle to a CometD session. It owns a send-only view
// of the orchestrator's command channel and can mint independent event
// subscriptions; the orchestrator goroutine it spawns owns everything else.
type Client struct {
	session      *session
	events       *eventBus
	commands     chan command
	retryBudget  int
	logger       Logger
	started      atomic.Bool
	orchestrator *orchestrator

	closeMu sync.RWMutex
	closed  bool
}

// NewClient builds a Client for the given base endpoint. See the With*
// options in options.go for everything else the SPEC_FULL.md Builder/CLI
// surface (§6) exposes.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ep, err := buildEndpoints(endpoint, cfg.handshakeBasePath, cfg.subscribeBasePath, cfg.unsubscribeBasePath, cfg.connectBasePath, cfg.disconnectBasePath)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = defaultLogger()
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	s := newSession(ep, httpClient, cfg.timeout, cfg.interval, cfg.requestTimeout, logger)
	if cfg.accessToken != nil {
		s.SetAccessToken(cfg.accessToken)
	}
	for _, c := range cfg.cookies {
		s.jar.Add(c.name, c.value)
	}

	events := newEventBus(cfg.eventsChannelCapacity, logger)
	commands := make(chan command, cfg.commandsChannelCapacity)

	c := &Client{
		session:     s,
		events:      events,
		commands:    commands,
		retryBudget: cfg.numberOfRetries,
		logger:      logger,
	}
	c.orchestrator = newOrchestrator(s, commands, events, cfg.numberOfRetries, logger)
	return c, nil
}

// Start spawns the background session orchestrator described in
// SPEC_FULL.md §4.E and returns the primary event subscription. It is an
// error to call Start more than once on the same Client (invariant I4: at
// most one orchestrator task per client).
func (c *Client) Start(ctx context.Context) (<-chan SessionEvent, error) {
	if !c.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}
	rx := c.events.Subscribe()
	go c.orchestrator.run(ctx)
	return rx, nil
}

// Events mints another independent subscription to the session's event
// broadcast; every subscriber observes the same events in the same order.
func (c *Client) Events() <-chan SessionEvent {
	return c.events.Subscribe()
}

// Subscribe queues a /meta/subscribe command for the orchestrator.
// subscription may be a Channel or a []Channel; either shape is forwarded
// verbatim to the wire "subscription" field per SPEC_FULL.md Open Question
// (c).
func (c *Client) Subscribe(subscription interface{}) error {
	return c.enqueue(command{kind: cmdSubscribe, subscription: subscription})
}

// Unsubscribe queues a /meta/unsubscribe command for the orchestrator.
func (c *Client) Unsubscribe(subscription interface{}) error {
	return c.enqueue(command{kind: cmdUnsubscribe, subscription: subscription})
}

func (c *Client) enqueue(cmd command) error {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()

	if c.closed {
		return ErrOrchestratorStopped
	}
	c.commands <- cmd
	return nil
}

// Close signals the orchestrator to drain and stop: it closes the command
// channel, which the orchestrator observes on its next command-receive as
// the cue to perform a final Disconnect and end. This is the idiomatic Go
// stand-in for the drop-triggered shutdown of the reference implementation,
// which relied on the owning handle's destructor to close its channel.
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.commands)
}

// ClientID returns the current Bayeux client id, or "" if no handshake has
// completed yet (or the session has since disconnected).
func (c *Client) ClientID() string {
	return c.session.GetClientID()
}

// SetAccessToken atomically replaces the access token used by subsequent
// requests.
func (c *Client) SetAccessToken(token AccessToken) {
	c.session.SetAccessToken(token)
}
