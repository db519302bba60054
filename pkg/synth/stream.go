package synth

import (
	"encoding/binary"
	"sync"
)

// Renderer produces stereo float samples.
type Renderer interface {
	Render(left, right []float32)
}

// Stream implements io.Reader for Ebitengine/audio. It renders 16-bit
// little-endian interleaved stereo from a Renderer.
type Stream struct {
	src         Renderer
	left, right []float32
	sampleCount int64
	stopped     bool
	mu          sync.Mutex
}

// NewStream creates a Stream reading from src.
func NewStream(src Renderer) *Stream {
	return &Stream{src: src}
}

// Read renders len(p)/4 samples. A stopped stream returns silence so the
// audio player can drain without blocking.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		clear(p)
		return len(p), nil
	}

	// 16-bit stereo = 4 bytes per sample
	samples := len(p) / 4
	if samples == 0 {
		return 0, nil
	}

	if cap(s.left) < samples {
		s.left = make([]float32, samples)
		s.right = make([]float32, samples)
	}
	left, right := s.left[:samples], s.right[:samples]

	s.src.Render(left, right)
	s.sampleCount += int64(samples)

	for i := range samples {
		l := int16(clamp(left[i], -1, 1) * 32767)
		r := int16(clamp(right[i], -1, 1) * 32767)
		binary.LittleEndian.PutUint16(p[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(r))
	}

	return samples * 4, nil
}

// Stop makes Read return silence from now on.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// SampleCount returns the number of samples rendered so far.
func (s *Stream) SampleCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleCount
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
