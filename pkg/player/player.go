// Package player paces a midifile.Reader in real time and forwards the events
// it applies to one or more sinks.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zurustar/midiconsole/pkg/midifile"
)

// ErrAlreadyStarted is returned when Run is called more than once.
var ErrAlreadyStarted = errors.New("player already started")

// Sink receives events in the order the reader applies them. All sink calls
// happen on the goroutine running Run.
type Sink interface {
	HandleEvents(events []midifile.Event) error
	// Reset silences every sounding note.
	Reset() error
	Close() error
}

// Status is what a frontend needs to draw one frame.
type Status struct {
	midifile.Snapshot
	Paused bool
	// Position is the playback time at the current tick, excluding pauses.
	Position time.Duration
	Err      error
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(p *Player) { p.log = log }
}

// WithSpeed scales playback speed. 2 plays twice as fast; 0 or less disables
// waiting entirely, which renders the whole file as fast as possible.
func WithSpeed(speed float64) Option {
	return func(p *Player) { p.speed = speed }
}

// WithPaused starts the player paused.
func WithPaused(paused bool) Option {
	return func(p *Player) { p.paused = paused }
}

// Player drives one Reader from start to end.
type Player struct {
	reader *midifile.Reader
	sinks  []Sink
	log    *slog.Logger
	speed  float64

	mu       sync.Mutex
	started  bool
	paused   bool
	changed  chan struct{} // closed and replaced on every pause change
	status   Status
	position time.Duration
	err      error
	done     chan struct{}
}

// New creates a player for reader. Sinks may be empty, in which case the
// player only advances state.
func New(reader *midifile.Reader, sinks []Sink, opts ...Option) *Player {
	p := &Player{
		reader:  reader,
		sinks:   sinks,
		log:     slog.Default(),
		speed:   1,
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.status = Status{Snapshot: reader.Snapshot(), Paused: p.paused}
	return p
}

// Run plays until the end of the file, a decode error or ctx is done. It
// returns nil at the end of the file. Every sink is reset before Run returns;
// closing them is left to the caller.
func (p *Player) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	p.mu.Unlock()

	defer close(p.done)

	err := p.loop(ctx)
	p.resetSinks()

	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	p.publish()

	return err
}

func (p *Player) loop(ctx context.Context) error {
	p.log.Info("Playback started",
		"tracks", len(p.reader.Tracks()),
		"ticksPerQuarterNote", p.reader.TicksPerQuarterNote())

	var events []midifile.Event
	for {
		if err := p.waitWhilePaused(ctx); err != nil {
			return err
		}

		var wait uint32
		var err error
		events, wait, err = p.reader.ReadNextEvents(events[:0])
		if len(events) > 0 {
			p.dispatch(events)
		}
		if err != nil {
			p.publish()
			return fmt.Errorf("playback stopped at tick %d: %w", p.reader.CurrentTick(), err)
		}
		if wait == 0 {
			p.publish()
			p.log.Info("Playback finished",
				"tick", p.reader.CurrentTick(),
				"notes", p.reader.NoteCount(),
				"events", p.reader.EventCount())
			return nil
		}

		// The reader's tick already includes the wait; Position follows it.
		d := time.Duration(wait) * p.reader.TickDuration()
		p.mu.Lock()
		p.position += d
		p.mu.Unlock()
		p.publish()

		if err := p.sleep(ctx, d); err != nil {
			return err
		}
	}
}

func (p *Player) dispatch(events []midifile.Event) {
	for _, s := range p.sinks {
		if err := s.HandleEvents(events); err != nil {
			p.log.Warn("sink rejected events", "tick", p.reader.CurrentTick(), "error", err)
		}
	}
}

func (p *Player) resetSinks() {
	for _, s := range p.sinks {
		if err := s.Reset(); err != nil {
			p.log.Warn("sink reset failed", "error", err)
		}
	}
}

// sleep waits d scaled by the speed. A pause stops the clock and silences the
// sinks; the rest of d is waited after Resume.
func (p *Player) sleep(ctx context.Context, d time.Duration) error {
	if p.speed <= 0 {
		return ctx.Err()
	}
	remaining := time.Duration(float64(d) / p.speed)

	for remaining > 0 {
		if err := p.waitWhilePaused(ctx); err != nil {
			return err
		}

		_, changed := p.pauseState()
		start := time.Now()
		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-changed:
			timer.Stop()
			remaining -= time.Since(start)
		}
	}
	return nil
}

// waitWhilePaused blocks until the player is resumed or ctx is done.
func (p *Player) waitWhilePaused(ctx context.Context) error {
	silenced := false
	for {
		paused, changed := p.pauseState()
		if !paused {
			return ctx.Err()
		}
		if !silenced {
			p.resetSinks()
			p.publish()
			silenced = true
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

func (p *Player) pauseState() (bool, <-chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused, p.changed
}

func (p *Player) setPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused == paused {
		return
	}
	p.paused = paused
	p.status.Paused = paused
	close(p.changed)
	p.changed = make(chan struct{})
	p.log.Debug("pause state changed", "paused", paused)
}

// Pause stops the clock. Sounding notes are silenced.
func (p *Player) Pause() { p.setPaused(true) }

// Resume continues after Pause.
func (p *Player) Resume() { p.setPaused(false) }

// Toggle flips between paused and playing.
func (p *Player) Toggle() {
	p.mu.Lock()
	paused := p.paused
	p.mu.Unlock()
	p.setPaused(!paused)
}

// Paused reports whether the player is paused.
func (p *Player) Paused() bool {
	paused, _ := p.pauseState()
	return paused
}

// publish stores a fresh snapshot for Status. Called from the Run goroutine
// only, so reading the reader here does not race.
func (p *Player) publish() {
	snap := p.reader.Snapshot()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = Status{
		Snapshot: snap,
		Paused:   p.paused,
		Position: p.position,
		Err:      p.err,
	}
}

// Status returns the most recently published state. Safe to call from any
// goroutine.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Done is closed when Run returns.
func (p *Player) Done() <-chan struct{} { return p.done }

// Err returns the error Run returned, once Done is closed.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
