// Package session recovers the supervised reconnect loop from the
// original long_run_connection_loop example: reach well-known state,
// connect to a peer, and reconnect whenever the link drops, backing off
// between failed connection attempts. This sits above the
// synchronous bgx.Driver API and does not change its contract.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"

	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/bgx"
	"github.com/juggler-robotics/bgx13p-driver/src/bgx13p-driver/mac"
)

// Event is reported to the caller's onEvent callback as the loop
// progresses, so a host application can show connection state.
type Event struct {
	Kind string // "connecting", "connected", "disconnected", "retry"
	MAC  mac.MAC
	Err  error
}

// Run reaches well-known state, then repeatedly connects to target and
// idles while connected (polling Read so a dropped link is noticed). A
// failed connect attempt is retried after an exponential backoff delay;
// after the link drops, Run disconnects and reconnects at once. It
// returns ctx's error once ctx is cancelled, or an error straight away
// if the well-known state cannot be reached.
func Run(ctx context.Context, d *bgx.Driver, target mac.MAC, onEvent func(Event)) error {
	if onEvent == nil {
		onEvent = func(Event) {}
	}

	if err := d.ReachWellKnownState(); err != nil {
		return fmt.Errorf("session: reach well known state: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0 // retry forever; ctx cancellation is the only exit

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		onEvent(Event{Kind: "connecting", MAC: target})
		if err := d.Connect(target, bgxConnectSeconds); err != nil {
			onEvent(Event{Kind: "retry", MAC: target, Err: err})
			if !sleepFor(ctx, b.NextBackOff()) {
				return ctx.Err()
			}
			continue
		}

		b.Reset()
		onEvent(Event{Kind: "connected", MAC: target})

		for holdLink(ctx, d) {
		}

		onEvent(Event{Kind: "disconnected", MAC: target})
		if err := d.Disconnect(); err != nil {
			onEvent(Event{Kind: "retry", MAC: target, Err: err})
		}
	}
}

// bgxConnectSeconds is the module-side connect timeout used by the
// supervised loop.
const bgxConnectSeconds = 2

// holdLink polls Read while connected; it returns false once Read
// returns any error (a dropped link, or a framed reply where passthrough
// payload was expected) or ctx is cancelled.
func holdLink(ctx context.Context, d *bgx.Driver) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	if _, err := d.Read(200 * time.Millisecond); err != nil {
		return false
	}
	return true
}

// sleepFor waits for d, returning false early if ctx is cancelled first.
func sleepFor(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
