package cometd

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout is the default handshake-advertised long-poll timeout.
	DefaultTimeout = 60 * time.Second
	// DefaultInterval is the default handshake-advertised reconnect
	// interval.
	DefaultInterval = 0 * time.Second
	// DefaultCommandsChannelCapacity is the default buffer size of the
	// command FIFO.
	DefaultCommandsChannelCapacity = 2
	// DefaultEventsChannelCapacity is the default per-subscriber buffer
	// size of the event broadcast.
	DefaultEventsChannelCapacity = 500
	// DefaultNumberOfRetries is the default retry budget per operation.
	DefaultNumberOfRetries = 3
	// DefaultRequestTimeout is the default per-HTTP-call deadline.
	DefaultRequestTimeout = 5 * time.Minute
)

type config struct {
	handshakeBasePath   string
	subscribeBasePath   string
	unsubscribeBasePath string
	connectBasePath     string
	disconnectBasePath  string

	timeout  time.Duration
	interval time.Duration

	accessToken AccessToken
	cookies     []cookie

	commandsChannelCapacity int
	eventsChannelCapacity   int
	numberOfRetries         int
	requestTimeout          time.Duration

	httpClient *http.Client
	logger     Logger
}

func defaultConfig() config {
	return config{
		timeout:                 DefaultTimeout,
		interval:                DefaultInterval,
		commandsChannelCapacity: DefaultCommandsChannelCapacity,
		eventsChannelCapacity:   DefaultEventsChannelCapacity,
		numberOfRetries:         DefaultNumberOfRetries,
		requestTimeout:          DefaultRequestTimeout,
	}
}

// Option configures a Client at construction time.
type Option func(*config)

// WithHandshakeBasePath sets the base path inserted between the endpoint
// and "handshake".
func WithHandshakeBasePath(path string) Option {
	return func(c *config) { c.handshakeBasePath = path }
}

// WithSubscribeBasePath sets the path joined onto the endpoint to form the
// subscribe URL. Unlike the handshake/connect/disconnect base paths, this
// is not a prefix with "subscribe" appended to it: the resulting URL is
// exactly endpoint+path.
func WithSubscribeBasePath(path string) Option {
	return func(c *config) { c.subscribeBasePath = path }
}

// WithUnsubscribeBasePath sets the path joined onto the endpoint to form
// the unsubscribe URL. As with WithSubscribeBasePath, no "unsubscribe"
// leaf is appended: the resulting URL is exactly endpoint+path.
func WithUnsubscribeBasePath(path string) Option {
	return func(c *config) { c.unsubscribeBasePath = path }
}

// WithConnectBasePath sets the base path inserted between the endpoint and
// "connect".
func WithConnectBasePath(path string) Option {
	return func(c *config) { c.connectBasePath = path }
}

// WithDisconnectBasePath sets the base path inserted between the endpoint
// and "disconnect".
func WithDisconnectBasePath(path string) Option {
	return func(c *config) { c.disconnectBasePath = path }
}

// WithTimeout overrides the handshake-advertised long-poll timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithInterval overrides the handshake-advertised reconnect interval.
func WithInterval(d time.Duration) Option {
	return func(c *config) { c.interval = d }
}

// WithAccessToken installs the AccessToken attached to every outgoing
// request's Authorization header.
func WithAccessToken(token AccessToken) Option {
	return func(c *config) { c.accessToken = token }
}

// WithCookie adds a single cookie to the session's initial cookie jar.
func WithCookie(name, value string) Option {
	return func(c *config) { c.cookies = append(c.cookies, cookie{name: name, value: value}) }
}

// WithCookies adds a batch of cookies to the session's initial cookie jar.
func WithCookies(pairs map[string]string) Option {
	return func(c *config) {
		for name, value := range pairs {
			c.cookies = append(c.cookies, cookie{name: name, value: value})
		}
	}
}

// WithCommandsChannelCapacity overrides the buffer size of the command
// FIFO.
func WithCommandsChannelCapacity(n int) Option {
	return func(c *config) { c.commandsChannelCapacity = n }
}

// WithEventsChannelCapacity overrides the per-subscriber buffer size of the
// event broadcast.
func WithEventsChannelCapacity(n int) Option {
	return func(c *config) { c.eventsChannelCapacity = n }
}

// WithNumberOfRetries overrides the retry budget per operation.
func WithNumberOfRetries(n int) Option {
	return func(c *config) { c.numberOfRetries = n }
}

// WithRequestTimeout overrides the per-HTTP-call deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *config) { c.requestTimeout = d }
}

// WithHTTPClient overrides the *http.Client used for every request. Useful
// for installing a custom http.RoundTripper (e.g. in tests).
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithLogger overrides the Logger used throughout the client.
func WithLogger(logger Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithLogrusLogger installs a logrus.FieldLogger-backed Logger, mirroring
// the teacher package's logrus integration.
func WithLogrusLogger(fieldLogger logrus.FieldLogger) Option {
	return func(c *config) { c.logger = NewLogrusLogger(fieldLogger) }
}

// WithNoLogging disables logging entirely.
func WithNoLogging() Option {
	return func(c *config) { c.logger = newNullLogger() }
}
