package cometd

import "testing"

func TestBuildEndpointsMissingBase(t *testing.T) {
	if _, err := buildEndpoints("", "", "", "", "", ""); err != ErrMissingEndpoint {
		t.Errorf("buildEndpoints(\"\") error = %v, want ErrMissingEndpoint", err)
	}
}

func TestBuildEndpointsDefaultPaths(t *testing.T) {
	ep, err := buildEndpoints("https://example.com/cometd", "", "", "", "", "")
	if err != nil {
		t.Fatalf("buildEndpoints() error = %v", err)
	}
	cases := map[string]string{
		ep.handshake:   "https://example.com/cometd/handshake",
		ep.subscribe:   "https://example.com/cometd/",
		ep.unsubscribe: "https://example.com/cometd/",
		ep.connect:     "https://example.com/cometd/connect",
		ep.disconnect:  "https://example.com/cometd/disconnect",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("endpoint = %q, want %q", got, want)
		}
	}
}

func TestBuildEndpointsWithBasePaths(t *testing.T) {
	ep, err := buildEndpoints("https://example.com/", "hand/", "sub/", "unsub/", "conn/", "disc/")
	if err != nil {
		t.Fatalf("buildEndpoints() error = %v", err)
	}
	if got, want := ep.handshake, "https://example.com/hand/handshake"; got != want {
		t.Errorf("handshake = %q, want %q", got, want)
	}
	if got, want := ep.subscribe, "https://example.com/sub/"; got != want {
		t.Errorf("subscribe = %q, want %q", got, want)
	}
	if got, want := ep.unsubscribe, "https://example.com/unsub/"; got != want {
		t.Errorf("unsubscribe = %q, want %q", got, want)
	}
}

func TestBuildEndpointsInvalidURL(t *testing.T) {
	if _, err := buildEndpoints("://not-a-url", "", "", "", "", ""); err == nil {
		t.Error("expected an error for an invalid base URL")
	}
}
