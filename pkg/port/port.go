// Package port forwards decoded events to a hardware or virtual MIDI output
// port through gomidi. A driver must be registered by the main package, e.g.
// with a blank import of gitlab.com/gomidi/midi/v2/drivers/rtmididrv.
package port

import (
	"errors"
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/zurustar/midiconsole/pkg/midifile"
)

// ErrPortNotFound is returned when no output port matches the requested name.
var ErrPortNotFound = errors.New("MIDI output port not found")

// controllerAllNotesOff is CC 123.
const controllerAllNotesOff = 123

// Port is a player sink writing to one MIDI output port.
type Port struct {
	name string
	out  drivers.Out // nil when built with New
	send func(msg midi.Message) error
	log  *slog.Logger
}

// Open finds the first output port whose name contains name and opens it.
func Open(name string, log *slog.Logger) (*Port, error) {
	out, err := midi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrPortNotFound, name, List())
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI port %s: %w", out.String(), err)
	}
	p := New(out.String(), send, log)
	p.out = out
	p.log.Info("MIDI output port opened", "port", p.name)
	return p, nil
}

// New creates a Port around an existing send function.
func New(name string, send func(msg midi.Message) error, log *slog.Logger) *Port {
	if log == nil {
		log = slog.Default()
	}
	return &Port{name: name, send: send, log: log}
}

// List returns the names of all output ports the registered driver reports.
func List() []string {
	var names []string
	for _, out := range midi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}

// Name returns the port name.
func (p *Port) Name() string { return p.name }

// HandleEvents sends every channel event. The first send error is returned
// after the remaining events have been tried.
func (p *Port) HandleEvents(events []midifile.Event) error {
	var firstErr error
	for _, ev := range events {
		msg := midifile.Message(ev)
		if msg == nil {
			continue
		}
		if err := p.send(msg); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("send to %s: %w", p.name, err)
		}
	}
	return firstErr
}

// Reset sends All Notes Off on every channel.
func (p *Port) Reset() error {
	var errs []error
	for ch := uint8(0); ch < midifile.ChannelCount; ch++ {
		if err := p.send(midi.ControlChange(ch, controllerAllNotesOff, 0)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close silences the port and closes it.
func (p *Port) Close() error {
	err := p.Reset()
	if p.out != nil {
		err = errors.Join(err, p.out.Close())
		p.log.Info("MIDI output port closed", "port", p.name)
	}
	return err
}
