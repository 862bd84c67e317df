// Package probe waits for a TCP port to start accepting connections.
package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultAttemptTimeout = time.Second
	DefaultInterval       = 250 * time.Millisecond

	// minAttemptTimeout bounds a dial made with little or no time left.
	minAttemptTimeout = 10 * time.Millisecond
)

// Dialer opens a single probe connection.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// TimeoutError is returned when the port never accepted a connection within
// the overall timeout.
type TimeoutError struct {
	Host     string
	Port     int
	Timeout  time.Duration
	Attempts int
	LastErr  error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("port %d on %s did not accept connections within %dms (%d attempts)",
		e.Port, e.Host, e.Timeout.Milliseconds(), e.Attempts)
}

func (e *TimeoutError) Unwrap() error { return e.LastErr }

// Prober polls a TCP endpoint at a fixed interval.
type Prober struct {
	Clock          clockwork.Clock
	Dialer         Dialer
	AttemptTimeout time.Duration
	Interval       time.Duration
	// OnAttempt, when set, is called after every failed attempt.
	OnAttempt func(attempt int, err error)
}

// New returns a Prober using the real clock and a net.Dialer.
func New() *Prober {
	return &Prober{
		Clock:          clockwork.NewRealClock(),
		Dialer:         &net.Dialer{},
		AttemptTimeout: DefaultAttemptTimeout,
		Interval:       DefaultInterval,
	}
}

// WaitForReady polls host:port with the default prober.
func WaitForReady(ctx context.Context, host string, port int, timeout time.Duration) error {
	return New().WaitForReady(ctx, host, port, timeout)
}

// WaitForReady blocks until host:port accepts a TCP connection, the timeout
// elapses, or ctx is done. Attempts never overlap and fail no later than one
// interval after the timeout.
func (p *Prober) WaitForReady(ctx context.Context, host string, port int, timeout time.Duration) error {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	start := clock.Now()

	for attempt := 1; ; attempt++ {
		err := p.attempt(ctx, addr, timeout-clock.Since(start))
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.OnAttempt != nil {
			p.OnAttempt(attempt, err)
		}

		elapsed := clock.Since(start)
		if elapsed >= timeout {
			return &TimeoutError{Host: host, Port: port, Timeout: timeout, Attempts: attempt, LastErr: err}
		}

		wait := interval
		if remaining := timeout - elapsed; remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(wait):
		}
	}
}

// attempt dials once and closes the connection on success. The dial never
// outlives the time remaining before the overall deadline.
func (p *Prober) attempt(ctx context.Context, addr string, remaining time.Duration) error {
	d := p.Dialer
	if d == nil {
		d = &net.Dialer{}
	}
	attemptTimeout := p.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	attemptTimeout = min(attemptTimeout, max(remaining, minAttemptTimeout))

	dialCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
