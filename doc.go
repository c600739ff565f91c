// Package cometd provides a client for talking to a CometD server over the
// Bayeux long-polling transport.
//
// The best way to create a client is with NewClient. Provided a server
// address for the server you're using, you can create a client like so
//
//	client, err := cometd.NewClient("https://localhost:8080/notifications/")
//
// Construction accepts functional options for everything else: retry
// budgets, timeouts, authentication, cookies, channel capacities and the
// logger.
//
//	client, err := cometd.NewClient(
//		"https://localhost:8080/notifications/",
//		cometd.WithAccessToken(cometd.NewBearerToken("xyz")),
//		cometd.WithNumberOfRetries(5),
//	)
//
// Once built, Start spawns the background session orchestrator: it performs
// the handshake, then alternates between draining queued commands and
// long-polling for server-pushed messages until the client is closed.
//
//	events, err := client.Start(ctx)
//	for ev := range events {
//		switch e := ev.(type) {
//		case cometd.MessageEvent:
//			for _, d := range e.Batch {
//				log.Printf("%s: %s", d.Channel, d.Payload)
//			}
//		case cometd.ErrorEvent:
//			log.Printf("session error: %v", e.Err)
//		}
//	}
//
// Subscriptions are queued as commands and processed by the orchestrator in
// submission order.
//
//	client.Subscribe("/foo/bar")
package cometd
