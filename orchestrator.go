package cometd

import (
	"context"
	"time"
)

type commandKind int

const (
	cmdSubscribe commandKind = iota
	cmdUnsubscribe
)

// command is a single queued control request, submitted by Client through
// the bounded FIFO channel described in SPEC_FULL.md §3 ("commands").
type command struct {
	kind         commandKind
	subscription interface{}
}

// connectResult is what the background long-poll goroutine reports back to
// the orchestrator loop.
type connectResult struct {
	batch []Delivery
	err   error
}

// orchestrator runs the session lifecycle state machine described in
// SPEC_FULL.md §4.E. It is the sole goroutine that mutates the session
// beyond the atomic fields session itself already protects, and it is the
// sole publisher on the event bus.
type orchestrator struct {
	session     *session
	commands    <-chan command
	events      *eventBus
	lifecycle   *lifecycle
	retryBudget int
	logger      Logger
}

func newOrchestrator(s *session, commands <-chan command, events *eventBus, retryBudget int, logger Logger) *orchestrator {
	return &orchestrator{
		session:     s,
		commands:    commands,
		events:      events,
		lifecycle:   newLifecycle(),
		retryBudget: retryBudget,
		logger:      logger,
	}
}

// run is the background task spawned by Client.Start. After a successful
// handshake it returns only once the session has drained (command channel
// closed, or a fatal error was broadcast); if the initial handshake fails it
// broadcasts the error and returns without Draining or a Disconnect.
func (o *orchestrator) run(ctx context.Context) {
	defer o.events.Close()

	o.logger.Debug("handshaking")
	noop := func() error { return nil }
	if _, err := withRetry(ctx, o.logger, o.retryBudget, func() (struct{}, error) {
		return struct{}{}, o.session.Handshake(ctx)
	}, noop); err != nil {
		o.logger.WithError(err).Error("initial handshake failed")
		o.events.Publish(ErrorEvent{Err: err})
		o.lifecycle.transition(stateEnded)
		return
	}

	o.lifecycle.transition(stateRunning)
	o.logger.Info("session running")
	o.runLoop(ctx)

	o.lifecycle.transition(stateDraining)
	o.logger.Info("draining")
	o.drain()

	o.lifecycle.transition(stateEnded)
	o.logger.Info("session ended")
}

// runLoop implements the Running state: a biased cooperative choice between
// command arrival and long-poll completion. Commands are checked first
// (non-blocking) on every iteration so a queued control request always
// preempts starting a fresh long-poll, then the loop blocks on whichever of
// the two sources completes first.
func (o *orchestrator) runLoop(ctx context.Context) {
	resultCh := make(chan connectResult, 1)
	polling := false

	for {
		select {
		case cmd, ok := <-o.commands:
			if !ok {
				return
			}
			if !o.handleCommand(ctx, cmd) {
				return
			}
			continue
		default:
		}

		if !polling {
			go o.connectOnce(ctx, resultCh)
			polling = true
		}

		select {
		case cmd, ok := <-o.commands:
			if !ok {
				return
			}
			if !o.handleCommand(ctx, cmd) {
				return
			}
		case res := <-resultCh:
			polling = false
			if res.err != nil {
				o.logger.WithError(res.err).Error("long-poll failed")
				o.events.Publish(ErrorEvent{Err: res.err})
				return
			}
			if len(res.batch) > 0 {
				o.events.Publish(MessageEvent{Batch: res.batch})
			}
		}
	}
}

// connectOnce runs a single long-poll attempt (with its own retry/handshake
// coordination) and reports the outcome on result.
func (o *orchestrator) connectOnce(ctx context.Context, result chan<- connectResult) {
	batch, err := withRetry(ctx, o.logger, o.retryBudget, func() ([]Delivery, error) {
		return o.session.Connect(ctx)
	}, func() error { return o.session.Handshake(ctx) })
	result <- connectResult{batch: batch, err: err}
}

// handleCommand processes one queued Subscribe/Unsubscribe request. It
// returns false if the failure is fatal and the orchestrator must drain.
func (o *orchestrator) handleCommand(ctx context.Context, cmd command) bool {
	var kind Kind
	op := func() (struct{}, error) {
		var err error
		if cmd.kind == cmdSubscribe {
			err = o.session.Subscribe(ctx, cmd.subscription)
		} else {
			err = o.session.Unsubscribe(ctx, cmd.subscription)
		}
		return struct{}{}, err
	}
	if cmd.kind == cmdSubscribe {
		kind = Subscribe
	} else {
		kind = Unsubscribe
	}

	_, err := withRetry(ctx, o.logger, o.retryBudget, op, func() error { return o.session.Handshake(ctx) })
	if err != nil {
		o.logger.WithError(err).WithField("kind", kind).Error("command failed")
		o.events.Publish(ErrorEvent{Err: err})
		return false
	}
	return true
}

// drain performs the single best-effort Disconnect attempt described in
// SPEC_FULL.md §4.E's Draining state. It uses its own bounded context
// rather than the (possibly already-cancelled) orchestrator context, so
// that a client-initiated shutdown still gets a real chance to notify the
// server.
func (o *orchestrator) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := o.session.Disconnect(ctx); err != nil {
		o.logger.WithError(err).Warn("disconnect failed during drain")
		o.events.Publish(ErrorEvent{Err: err})
	}
}
