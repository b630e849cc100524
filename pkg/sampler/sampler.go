// Package sampler implements the device-side location sampling loop. It is a
// free-standing cancellable task with an explicit start/stop contract: the
// owner starts it when the user joins an event and stops it on leave or
// shutdown, and it never outlives its context.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Defaults for the loop cadence. The send interval must be a multiple of the
// read interval so every transmission carries a reading from the same tick
// grid.
const (
	DefaultReadInterval  = 5 * time.Second
	DefaultSendInterval  = 10 * time.Second
	DefaultMaxReadingAge = 30 * time.Second
)

var (
	// ErrActive is returned by Start when the loop is already running.
	ErrActive = errors.New("sampler: loop already active")
)

// Reading is a single positioning fix.
type Reading struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// LocationProvider abstracts the positioning hardware. Acquire is called once
// per active window and Release exactly once when the window ends, on every
// exit path.
type LocationProvider interface {
	Acquire(ctx context.Context) error
	Read(ctx context.Context) (Reading, error)
	Release()
}

// LocationSender transmits an accepted reading upstream.
type LocationSender interface {
	Send(ctx context.Context, eventID string, reading Reading) error
}

// State is the loop's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "ACTIVE"
	}
	return "IDLE"
}

// Loop reads the device position every read interval and transmits the most
// recent accepted reading every send interval. Reads update local rendering
// state via the OnReading callback even on ticks that do not send.
type Loop struct {
	provider LocationProvider
	sender   LocationSender
	logger   *slog.Logger

	readInterval  time.Duration
	sendInterval  time.Duration
	maxReadingAge time.Duration
	onReading     func(Reading)
	now           func() time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithIntervals sets the read and send cadence. send must be a positive
// multiple of read.
func WithIntervals(read, send time.Duration) Option {
	return func(l *Loop) {
		l.readInterval = read
		l.sendInterval = send
	}
}

// WithMaxReadingAge sets the threshold beyond which a fix is rejected as
// stale.
func WithMaxReadingAge(age time.Duration) Option {
	return func(l *Loop) {
		l.maxReadingAge = age
	}
}

// WithOnReading registers a callback invoked for every accepted reading,
// typically to refresh the local map.
func WithOnReading(fn func(Reading)) Option {
	return func(l *Loop) {
		l.onReading = fn
	}
}

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// New builds a sampling loop in the idle state.
func New(provider LocationProvider, sender LocationSender, logger *slog.Logger, opts ...Option) (*Loop, error) {
	l := &Loop{
		provider:      provider,
		sender:        sender,
		logger:        logger,
		readInterval:  DefaultReadInterval,
		sendInterval:  DefaultSendInterval,
		maxReadingAge: DefaultMaxReadingAge,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.readInterval <= 0 || l.sendInterval <= 0 {
		return nil, fmt.Errorf("sampler: intervals must be positive, got read=%v send=%v", l.readInterval, l.sendInterval)
	}
	if l.sendInterval%l.readInterval != 0 {
		return nil, fmt.Errorf("sampler: send interval %v must be a multiple of read interval %v", l.sendInterval, l.readInterval)
	}
	if l.maxReadingAge <= 0 {
		return nil, fmt.Errorf("sampler: max reading age must be positive, got %v", l.maxReadingAge)
	}
	return l, nil
}

// State reports the current lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start transitions the loop to active for the given event. It acquires the
// positioning provider and performs one immediate read-and-send before the
// first periodic tick. Cancelling ctx stops the loop as if Stop were called.
func (l *Loop) Start(ctx context.Context, eventID string) error {
	l.mu.Lock()
	if l.state == StateActive {
		l.mu.Unlock()
		return ErrActive
	}
	l.state = StateActive
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	if err := l.provider.Acquire(runCtx); err != nil {
		cancel()
		l.mu.Lock()
		l.state = StateIdle
		l.cancel = nil
		l.done = nil
		l.mu.Unlock()
		close(done)
		return fmt.Errorf("sampler: acquire positioning provider: %w", err)
	}

	go l.run(runCtx, eventID, done)
	return nil
}

// Stop transitions the loop back to idle and waits for the worker to exit.
// Stopping an idle loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	done := l.done
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Loop) run(ctx context.Context, eventID string, done chan struct{}) {
	defer func() {
		l.provider.Release()
		l.mu.Lock()
		l.state = StateIdle
		l.cancel = nil
		l.done = nil
		l.mu.Unlock()
		close(done)
	}()

	// Transmissions run on their own goroutine with a single-slot queue so a
	// slow network never blocks the read cadence, and at most one send is in
	// flight at a time.
	sendQueue := make(chan Reading, 1)
	var senders sync.WaitGroup
	senders.Add(1)
	go func() {
		defer senders.Done()
		for reading := range sendQueue {
			if err := l.sender.Send(ctx, eventID, reading); err != nil {
				l.logger.Warn("location send failed", "event_id", eventID, "error", err)
			}
		}
	}()
	defer senders.Wait()
	defer close(sendQueue)

	var latest Reading
	var accepted bool

	read := func() {
		reading, err := l.provider.Read(ctx)
		if err != nil {
			l.logger.Warn("location read failed", "event_id", eventID, "error", err)
			return
		}
		if age := l.now().Sub(reading.Timestamp); age > l.maxReadingAge {
			l.logger.Debug("rejecting stale reading", "event_id", eventID, "age", age)
			return
		}
		latest = reading
		accepted = true
		if l.onReading != nil {
			l.onReading(reading)
		}
	}

	queueSend := func() {
		if !accepted {
			return
		}
		// Replace any reading still waiting in the slot; only the most
		// recent fix is worth transmitting.
		select {
		case <-sendQueue:
		default:
		}
		select {
		case sendQueue <- latest:
		default:
		}
	}

	read()
	queueSend()

	readTick := time.NewTicker(l.readInterval)
	defer readTick.Stop()
	sendTick := time.NewTicker(l.sendInterval)
	defer sendTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readTick.C:
			read()
		case <-sendTick.C:
			queueSend()
		}
	}
}
