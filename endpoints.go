package cometd

import (
	"net/url"
	"strings"
)

// endpoints holds the absolute URLs a session talks to, computed once at
// construction time.
type endpoints struct {
	handshake   string
	subscribe   string
	unsubscribe string
	connect     string
	disconnect  string
}

// buildEndpoints joins a base endpoint with per-RPC base paths, resolving
// relative segments per RFC 3986 and preserving a trailing slash on the
// base endpoint. handshake, connect and disconnect each append their own
// RPC name onto their base path (".../handshake", ".../connect",
// ".../disconnect"); subscribe and unsubscribe do not — their base path is
// joined as-is, with no appended leaf, matching the reference client's
// builder (base_url.join(subscribe_base_path), with no second join).
func buildEndpoints(base string, handshakeBase, subscribeBase, unsubscribeBase, connectBase, disconnectBase string) (endpoints, error) {
	if base == "" {
		return endpoints{}, ErrMissingEndpoint
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return endpoints{}, InvalidURLError{Err: err}
	}

	return endpoints{
		handshake:   joinPath(parsed, handshakeBase, "handshake"),
		subscribe:   joinBase(parsed, subscribeBase),
		unsubscribe: joinBase(parsed, unsubscribeBase),
		connect:     joinPath(parsed, connectBase, "connect"),
		disconnect:  joinPath(parsed, disconnectBase, "disconnect"),
	}, nil
}

func joinPath(base *url.URL, basePath, leaf string) string {
	u := *base
	elements := make([]string, 0, 2)
	if basePath != "" {
		elements = append(elements, basePath)
	}
	elements = append(elements, leaf)
	return u.JoinPath(elements...).String()
}

func joinBase(base *url.URL, basePath string) string {
	u := *base
	if basePath == "" {
		return u.String()
	}
	return u.JoinPath(basePath).String()
}
