package cometd

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), newNullLogger(), 3, func() (int, error) {
		calls++
		return 42, nil
	}, func() error { return nil })
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetryBudgetZeroAllowsExactlyOneAttempt(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), newNullLogger(), 0, func() (int, error) {
		calls++
		return 0, WrongResponseError{Kind: Connect, Advice: ReconnectRetry, Message: "denied"}
	}, func() error { return nil })
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetryBudgetNAllowsAtMostNPlusOneAttempts(t *testing.T) {
	budget := 3
	calls := 0
	_, err := withRetry(context.Background(), newNullLogger(), budget, func() (int, error) {
		calls++
		return 0, WrongResponseError{Kind: Connect, Advice: ReconnectRetry, Message: "denied"}
	}, func() error { return nil })
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != budget+1 {
		t.Errorf("calls = %d, want %d", calls, budget+1)
	}
}

func TestWithRetrySucceedsAfterSomeRetries(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), newNullLogger(), 5, func() (string, error) {
		calls++
		if calls < 3 {
			return "", WrongResponseError{Kind: Connect, Advice: ReconnectRetry, Message: "denied"}
		}
		return "ok", nil
	}, func() error { return nil })
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryHandshakeAdviceReseatsFirst(t *testing.T) {
	fCalls, hCalls := 0, 0
	result, err := withRetry(context.Background(), newNullLogger(), 2, func() (int, error) {
		fCalls++
		if fCalls == 1 {
			return 0, WrongResponseError{Kind: Connect, Advice: ReconnectHandshake, Message: "expired"}
		}
		return 7, nil
	}, func() error {
		hCalls++
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if result != 7 {
		t.Errorf("result = %d, want 7", result)
	}
	if hCalls != 1 {
		t.Errorf("reseat calls = %d, want 1", hCalls)
	}
}

func TestWithRetryHandshakeSubRetriesDoNotDepleteOuterBudget(t *testing.T) {
	fCalls, hCalls := 0, 0
	_, err := withRetry(context.Background(), newNullLogger(), 1, func() (int, error) {
		fCalls++
		if fCalls == 1 {
			return 0, WrongResponseError{Kind: Connect, Advice: ReconnectHandshake, Message: "expired"}
		}
		return 9, nil
	}, func() error {
		hCalls++
		if hCalls < 2 {
			return WrongResponseError{Kind: Handshake, Advice: ReconnectRetry, Message: "not yet"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if hCalls != 2 {
		t.Errorf("reseat calls = %d, want 2", hCalls)
	}
	if fCalls != 2 {
		t.Errorf("outer op calls = %d, want 2 (one failure, one success after reseat)", fCalls)
	}
}

func TestWithRetryNoAdviceSurfacesImmediately(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), newNullLogger(), 5, func() (int, error) {
		calls++
		return 0, WrongResponseError{Kind: Connect, Advice: ReconnectNone, Message: "fatal"}
	}, func() error { return nil })
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no advice should not be retried)", calls)
	}
}

func TestWithRetryNonWrongResponseErrorSurfacesImmediately(t *testing.T) {
	sentinelErr := errors.New("boom")
	calls := 0
	_, err := withRetry(context.Background(), newNullLogger(), 5, func() (int, error) {
		calls++
		return 0, sentinelErr
	}, func() error { return nil })
	if !errors.Is(err, sentinelErr) {
		t.Errorf("err = %v, want %v", err, sentinelErr)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
