package cometd

import "context"

// withRetry implements the Retry Coordinator (component C): it repeatedly
// invokes f until it succeeds or a fatal error surfaces, honoring the
// reconnect advice carried by WrongResponseError.
//
//   - On success, the result is returned.
//   - On a retry-advised error, the budget is decremented; once exhausted,
//     the coordinator fails with a WrongResponseError carrying
//     ReconnectNone and the message "exhausted attempts".
//   - On a handshake-advised error, h is invoked (itself retried under its
//     own budget, with its own retry/handshake advice collapsed to plain
//     retry so that a handshake failure can't recursively demand another
//     handshake); the outer budget is then decremented as above.
//   - Any other error surfaces immediately without consuming the budget.
func withRetry[T any](ctx context.Context, logger Logger, budget int, f func() (T, error), h func() error) (T, error) {
	remaining := budget
	for {
		result, err := f()
		if err == nil {
			return result, nil
		}

		wr, ok := err.(WrongResponseError)
		if !ok {
			var zero T
			return zero, err
		}

		switch wr.Advice {
		case ReconnectHandshake:
			if herr := withHandshakeRetry(ctx, logger, budget, h); herr != nil {
				var zero T
				return zero, herr
			}
			if remaining <= 0 {
				var zero T
				return zero, WrongResponseError{Kind: wr.Kind, Advice: ReconnectNone, Message: "exhausted attempts"}
			}
			remaining--
			logger.WithField("kind", wr.Kind).Debug("retrying after handshake")
		case ReconnectRetry:
			if remaining <= 0 {
				var zero T
				return zero, WrongResponseError{Kind: wr.Kind, Advice: ReconnectNone, Message: "exhausted attempts"}
			}
			remaining--
			logger.WithField("kind", wr.Kind).Debug("retrying")
		default:
			var zero T
			return zero, err
		}
	}
}

// withHandshakeRetry runs h under its own retry budget, collapsing any
// handshake advice it produces down to a plain retry so a reseat operation
// can never trigger a further reseat of itself.
func withHandshakeRetry(ctx context.Context, logger Logger, budget int, h func() error) error {
	remaining := budget
	for {
		err := h()
		if err == nil {
			return nil
		}

		wr, ok := err.(WrongResponseError)
		if !ok {
			return err
		}
		if wr.Advice == ReconnectNone {
			return err
		}
		if remaining <= 0 {
			return WrongResponseError{Kind: wr.Kind, Advice: ReconnectNone, Message: "exhausted attempts"}
		}
		remaining--
		logger.WithField("kind", wr.Kind).Debug("retrying handshake")
	}
}
