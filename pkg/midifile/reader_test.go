package midifile

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestNewReader_Defaults(t *testing.T) {
	r := mustReader(t, buildFile(480, track()))

	if r.CurrentTick() != 0 {
		t.Errorf("tick = %d, want 0", r.CurrentTick())
	}
	if r.MicrosecondsPerQuarterNote() != DefaultMicrosecondsPerQuarterNote || r.BPM() != 120 {
		t.Errorf("tempo = %d (%v BPM), want 120 BPM", r.MicrosecondsPerQuarterNote(), r.BPM())
	}
	if n, d := r.TimeSignature(); n != 4 || d != 4 {
		t.Errorf("time signature = %d/%d, want 4/4", n, d)
	}
	if got := r.MillisecondsPerTick(); math.Abs(got-500000.0/480/1000) > 1e-9 {
		t.Errorf("ms per tick = %v", got)
	}
	if got := r.TickDuration(); got != 500*time.Millisecond/480 {
		t.Errorf("tick duration = %v", got)
	}
	for i := 0; i < ChannelCount; i++ {
		if r.Channel(i).Pressed().Any() {
			t.Errorf("channel %d has keys pressed", i)
		}
	}
}

func TestNewReader_Errors(t *testing.T) {
	_, err := NewReader([]byte("MThd"))
	if !errors.Is(err, ErrTruncatedStream) {
		t.Errorf("expected ErrTruncatedStream, got %v", err)
	}

	_, err = ReadFrom(bytes.NewReader(append(header(2, 1, 96), chunk("MTrk", track())...)))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestAdvance_TickMerge(t *testing.T) {
	data := buildFile(96,
		track(ev(5, 0x90, 60, 100)),
		track(ev(3, 0x91, 62, 100)),
	)
	r := mustReader(t, data)

	wait, err := r.Advance()
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if wait != 3 {
		t.Fatalf("first wait = %d, want 3", wait)
	}
	if r.CurrentTick() != 3 {
		t.Errorf("tick = %d, want 3", r.CurrentTick())
	}
	if got := r.Cursor(0).Remaining(); got != 2 {
		t.Errorf("track 0 remaining = %d, want 2", got)
	}
	if got := r.Cursor(1).Remaining(); got != 0 {
		t.Errorf("track 1 remaining = %d, want 0", got)
	}
	if r.EventCount() != 0 {
		t.Errorf("no event is due before tick 3, got %d applied", r.EventCount())
	}

	events, wait, err := r.ReadNextEvents(nil)
	if err != nil {
		t.Fatalf("ReadNextEvents failed: %v", err)
	}
	if wait != 2 || r.CurrentTick() != 5 {
		t.Errorf("second call: wait %d tick %d, want 2 and 5", wait, r.CurrentTick())
	}
	if len(events) != 2 || events[0].Kind() != KindNoteOn || events[0].TrackIndex() != 1 {
		t.Fatalf("expected track 1 NoteOn and end of track, got %+v", events)
	}
	if !r.Channel(1).Pressed().Has(62) || r.Channel(0).Pressed().Has(60) {
		t.Error("only channel 1 key 62 should be down at tick 3")
	}
	if !r.Cursor(1).Exhausted() {
		t.Error("track 1 should be exhausted")
	}

	events, wait, err = r.ReadNextEvents(nil)
	if err != nil {
		t.Fatalf("ReadNextEvents failed: %v", err)
	}
	if wait != 0 || len(events) != 2 || events[0].TrackIndex() != 0 {
		t.Errorf("third call: wait %d events %+v", wait, events)
	}
	if !r.Channel(0).Pressed().Has(60) {
		t.Error("channel 0 key 60 should be down at tick 5")
	}
	if r.NoteCount() != 2 || r.EventCount() != 4 {
		t.Errorf("counters = %d notes, %d events", r.NoteCount(), r.EventCount())
	}
}

func TestAdvance_EndOfData(t *testing.T) {
	r := mustReader(t, buildFile(96, track(ev(0, 0x90, 60, 100), ev(10, 0xB0, 7, 99))))
	drain(t, r)

	if !r.Done() {
		t.Fatal("session should be done")
	}
	before := r.Snapshot()
	for i := 0; i < 3; i++ {
		events, wait, err := r.ReadNextEvents(nil)
		if err != nil || wait != 0 || len(events) != 0 {
			t.Fatalf("call %d after end: events %v wait %d err %v", i, events, wait, err)
		}
	}
	after := r.Snapshot()
	if before.Tick != after.Tick || before.EventCount != after.EventCount || before.NoteCount != after.NoteCount {
		t.Error("state changed after end of data")
	}
	if after.Tick != 10 {
		t.Errorf("final tick = %d, want 10", after.Tick)
	}
}

func TestAdvance_SimultaneousEventsInTrackOrder(t *testing.T) {
	data := buildFile(96,
		track(ev(4, 0x90, 60, 1)),
		track(ev(4, 0x90, 61, 1)),
		track(ev(4, 0x90, 62, 1)),
	)
	r := mustReader(t, data)
	if _, err := r.Advance(); err != nil {
		t.Fatal(err)
	}
	events, _, err := r.ReadNextEvents(nil)
	if err != nil {
		t.Fatal(err)
	}
	var notes []int
	for _, e := range events {
		if e.Kind() == KindNoteOn {
			notes = append(notes, e.TrackIndex())
		}
	}
	if len(notes) != 3 || notes[0] != 0 || notes[1] != 1 || notes[2] != 2 {
		t.Errorf("NoteOn track order = %v, want [0 1 2]", notes)
	}
}

func TestAdvance_SessionFields(t *testing.T) {
	data := buildFile(96,
		track(
			ev(0, 0xFF, 0x03, 0x04, 'S', 'o', 'n', 'g'),
			ev(0, 0xFF, 0x02, 0x01, 'A'),
			ev(0, 0xFF, 0x51, 0x03, 0x09, 0x27, 0xC0), // 600000 us = 100 BPM
			ev(0, 0xFF, 0x58, 0x04, 0x03, 0x03, 0x18, 0x08),
		),
		track(
			ev(0, 0xFF, 0x03, 0x05, 'P', 'i', 'a', 'n', 'o'),
			ev(1, 0xFF, 0x02, 0x01, 'B'),
			ev(0, 0xC2, 0x30),
			ev(0, 0xB2, 0x0A, 0x20),
			ev(0, 0xE2, 0x00, 0x60),
			ev(0, 0xD2, 0x10),
			ev(0, 0xA2, 0x3C, 0x10),
			ev(0, 0xFF, 0x51, 0x02, 0x00, 0x00),
		),
	)
	r := mustReader(t, data)
	drain(t, r)

	if r.SongName() != "Song" {
		t.Errorf("song name = %q, only track 0 may set it", r.SongName())
	}
	if r.Copyright() != "B" {
		t.Errorf("copyright = %q, the last one wins", r.Copyright())
	}
	if r.MicrosecondsPerQuarterNote() != 600000 || r.BPM() != 100 {
		t.Errorf("tempo = %d", r.MicrosecondsPerQuarterNote())
	}
	if n, d := r.TimeSignature(); n != 3 || d != 8 {
		t.Errorf("time signature = %d/%d, want 3/8", n, d)
	}

	ch := r.Channel(2)
	if ch.Program() != 0x30 || ch.ControlValue(0x0A) != 0x20 || ch.PitchBend() != 0x60<<7 {
		t.Errorf("channel 2: program %d cc10 %d bend %d", ch.Program(), ch.ControlValue(0x0A), ch.PitchBend())
	}
	if r.NoteCount() != 0 {
		t.Errorf("aftertouch must not count as notes, got %d", r.NoteCount())
	}
	// 4 + end, 8 + end
	if r.EventCount() != 14 {
		t.Errorf("event count = %d, want 14", r.EventCount())
	}
}

func TestAdvance_DecodeErrorIsTerminal(t *testing.T) {
	// Second track claims a note on but ends after the key byte.
	data := buildFile(96,
		track(ev(0, 0x90, 60, 100), ev(50, 0x80, 60, 0)),
		[]byte{0x00, 0x90, 0x3C},
	)
	r := mustReader(t, data)

	_, err := r.Advance()
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || !errors.Is(err, ErrTruncatedStream) {
		t.Fatalf("expected DecodeError wrapping ErrTruncatedStream, got %v", err)
	}
	if decodeErr.Track != 1 {
		t.Errorf("error track = %d, want 1", decodeErr.Track)
	}

	tick, count := r.CurrentTick(), r.EventCount()
	wait, err2 := r.Advance()
	if wait != 0 || !errors.Is(err2, ErrTruncatedStream) {
		t.Errorf("second call: wait %d err %v", wait, err2)
	}
	if r.CurrentTick() != tick || r.EventCount() != count {
		t.Error("state changed after a decode error")
	}
	if !r.Done() || r.Err() == nil {
		t.Error("session should report the error")
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	r := mustReader(t, buildFile(96,
		track(ev(0, 0x90, 60, 100), ev(0, 0x91, 72, 80), ev(10, 0x80, 60, 0)),
	))
	if _, err := r.Advance(); err != nil {
		t.Fatal(err)
	}

	snap := r.Snapshot()
	if !snap.Pressed.Has(60) || !snap.Pressed.Has(72) || snap.Pressed.Count() != 2 {
		t.Errorf("merged mask = %v", snap.Pressed.Keys())
	}

	drain(t, r)
	if !snap.Channels[0].Key(60).Pressed {
		t.Error("snapshot changed after Advance")
	}
	if r.Channel(0).Key(60).Pressed {
		t.Error("live channel should have released key 60")
	}
}

func TestReader_GomidiFixture(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName("Fixture"))
	conductor.Add(0, smf.MetaCopyright("(c) midiconsole"))
	conductor.Add(0, smf.MetaMeter(3, 4))
	conductor.Add(0, smf.MetaTempo(150))
	conductor.Close(0)

	var piano smf.Track
	piano.Add(0, smf.MetaTrackSequenceName("Piano"))
	piano.Add(0, midi.ProgramChange(0, 5))
	piano.Add(0, midi.ControlChange(0, 7, 100))
	piano.Add(0, midi.NoteOn(0, 60, 100))
	piano.Add(0, midi.NoteOn(0, 64, 100))
	piano.Add(96, midi.NoteOff(0, 60))
	piano.Add(0, midi.NoteOff(0, 64))
	piano.Add(0, midi.Pitchbend(0, 1000))
	piano.Close(96)

	if err := s.Add(conductor); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(piano); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	r, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if r.TicksPerQuarterNote() != 96 || r.Header().TrackCount != 2 {
		t.Fatalf("header = %+v", r.Header())
	}

	if _, err := r.Advance(); err != nil {
		t.Fatal(err)
	}
	if got := r.Channel(0).Pressed().Keys(); len(got) != 2 || got[0] != 60 || got[1] != 64 {
		t.Errorf("pressed keys at tick 0 = %v, want [60 64]", got)
	}

	drain(t, r)
	if r.SongName() != "Fixture" || r.Copyright() != "(c) midiconsole" {
		t.Errorf("name %q copyright %q", r.SongName(), r.Copyright())
	}
	if math.Abs(r.BPM()-150) > 0.01 {
		t.Errorf("BPM = %v, want 150", r.BPM())
	}
	if n, d := r.TimeSignature(); n != 3 || d != 4 {
		t.Errorf("time signature = %d/%d", n, d)
	}
	ch := r.Channel(0)
	if ch.Pressed().Any() || ch.Program() != 5 || ch.ControlValue(7) != 100 || ch.PitchBendSigned() != 1000 {
		t.Errorf("channel 0: pressed %v program %d vol %d bend %d",
			ch.Pressed().Keys(), ch.Program(), ch.ControlValue(7), ch.PitchBendSigned())
	}
	if r.NoteCount() != 2 || r.CurrentTick() != 192 {
		t.Errorf("notes %d tick %d, want 2 and 192", r.NoteCount(), r.CurrentTick())
	}
}

func TestSchedulerOrderingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("every event is applied exactly at its absolute tick", prop.ForAll(
		func(d0, d1, d2 []uint8) bool {
			deltas := [][]uint8{d0, d1, d2}
			bodies := make([][]byte, len(deltas))
			total := 0
			var last uint64
			for i, ds := range deltas {
				var events [][]byte
				var sum uint64
				for j, d := range ds {
					events = append(events, ev(uint32(d), 0x90|uint8(i), uint8(j%128), 64))
					sum += uint64(d)
				}
				bodies[i] = track(events...)
				total += len(ds) + 1
				if sum > last {
					last = sum
				}
			}

			r, err := NewReader(buildFile(96, bodies...))
			if err != nil {
				return false
			}
			trackTicks := make([]uint64, len(deltas))
			applied := 0
			for {
				before := r.CurrentTick()
				events, wait, err := r.ReadNextEvents(nil)
				if err != nil {
					return false
				}
				for _, e := range events {
					trackTicks[e.TrackIndex()] += uint64(e.Delta())
					if trackTicks[e.TrackIndex()] != before {
						return false
					}
				}
				applied += len(events)
				if wait == 0 {
					break
				}
			}
			return applied == total && r.CurrentTick() == last
		},
		gen.SliceOf(gen.UInt8Range(0, 7)),
		gen.SliceOf(gen.UInt8Range(0, 7)),
		gen.SliceOf(gen.UInt8Range(0, 7)),
	))

	properties.TestingRun(t)
}

func TestAdvance_ZeroVelocityNoteOnCounts(t *testing.T) {
	r := mustReader(t, buildFile(96, track(ev(0, 0x91, 0x3C, 0x40), ev(0, 0x3C, 0x00))))
	drain(t, r)

	if r.NoteCount() != 2 {
		t.Errorf("note count = %d, want 2 (every NoteOn counts)", r.NoteCount())
	}
	// 2 NoteOn + end of track
	if r.EventCount() != 3 {
		t.Errorf("event count = %d, want 3", r.EventCount())
	}
	if r.Channel(1).Pressed().Has(0x3C) {
		t.Error("velocity 0 NoteOn should release the key")
	}
}
