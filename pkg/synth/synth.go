// Package synth renders MIDI events to audio with go-meltysynth and plays the
// result through Ebitengine's audio package.
package synth

import (
	"fmt"
	"sync"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/midiconsole/pkg/midifile"
)

// SampleRate is the audio sample rate used for synthesis.
const SampleRate = 44100

// Engine is the part of meltysynth.Synthesizer the sink drives.
type Engine interface {
	ProcessMidiMessage(channel int32, command int32, data1 int32, data2 int32)
	NoteOffAll(immediate bool)
	Render(left []float32, right []float32)
}

// Synth forwards channel events to a software synthesizer. Events arrive from
// the player goroutine while the audio driver pulls samples through Render, so
// both sides share one lock.
type Synth struct {
	mu     sync.Mutex
	engine Engine
	closed bool
}

// New wraps an engine. Tests pass a fake; NewFromSoundFont builds the real one.
func New(engine Engine) *Synth {
	return &Synth{engine: engine}
}

// NewFromSoundFont creates a meltysynth synthesizer at SampleRate.
func NewFromSoundFont(sf *meltysynth.SoundFont) (*Synth, error) {
	settings := meltysynth.NewSynthesizerSettings(SampleRate)
	engine, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}
	return New(engine), nil
}

// HandleEvents sends every channel event to the synthesizer. Meta and system
// events are ignored.
func (s *Synth) HandleEvents(events []midifile.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	for _, ev := range events {
		msg := midifile.Message(ev)
		if len(msg) < 2 {
			continue
		}
		var data2 int32
		if len(msg) > 2 {
			data2 = int32(msg[2])
		}
		s.engine.ProcessMidiMessage(int32(msg[0]&0x0F), int32(msg[0]&0xF0), int32(msg[1]), data2)
	}
	return nil
}

// Reset releases every sounding note.
func (s *Synth) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.NoteOffAll(false)
	return nil
}

// Render fills left and right with the next block of samples.
func (s *Synth) Render(left, right []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		clear(left)
		clear(right)
		return
	}
	s.engine.Render(left, right)
}

// Close silences the synthesizer. Later events are dropped and Render
// produces silence.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.engine.NoteOffAll(true)
	s.closed = true
	return nil
}
