package synth

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// bufferSize keeps the delay between a NoteOn and its sound short.
const bufferSize = 50 * time.Millisecond

// Output plays a Synth through an Ebitengine audio context.
type Output struct {
	synth  *Synth
	stream *Stream
	player *audio.Player

	muted bool
	mu    sync.Mutex
}

// NewOutput starts playing s on ctx. ctx must run at SampleRate; pass nil to
// use the current context or create one.
func NewOutput(ctx *audio.Context, s *Synth) (*Output, error) {
	if ctx == nil {
		ctx = audio.CurrentContext()
	}
	if ctx == nil {
		ctx = audio.NewContext(SampleRate)
	}
	if ctx.SampleRate() != SampleRate {
		return nil, fmt.Errorf("audio context runs at %d Hz, want %d", ctx.SampleRate(), SampleRate)
	}

	stream := NewStream(s)
	player, err := ctx.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player: %w", err)
	}
	player.SetBufferSize(bufferSize)
	player.Play()

	return &Output{synth: s, stream: stream, player: player}, nil
}

// SetMuted sets the volume to zero without stopping synthesis.
func (o *Output) SetMuted(muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.muted = muted
	if muted {
		o.player.SetVolume(0)
	} else {
		o.player.SetVolume(1)
	}
}

// IsMuted returns whether the output is muted.
func (o *Output) IsMuted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// ToggleMute flips the mute state and returns the new one.
func (o *Output) ToggleMute() bool {
	muted := !o.IsMuted()
	o.SetMuted(muted)
	return muted
}

// Close stops the stream first so the audio thread stops rendering, then
// releases the player.
func (o *Output) Close() error {
	o.stream.Stop()
	if err := o.synth.Close(); err != nil {
		return err
	}
	return o.player.Close()
}

// SampleCount returns the number of samples rendered for the audio device so far.
func (o *Output) SampleCount() int64 { return o.stream.SampleCount() }
