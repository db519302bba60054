package view

import (
	"github.com/zurustar/midiconsole/pkg/midifile"
)

const (
	// controlFadeFrames is how many frames a changed value stays highlighted.
	controlFadeFrames = 40
	// keyFadeFrames is how many frames a released key keeps glowing.
	keyFadeFrames = 6
)

// mergedKeys is the keyFade row shared by every channel.
const mergedKeys = midifile.ChannelCount

// Highlighter remembers the previous frame so changed values and released
// keys can fade out instead of vanishing.
type Highlighter struct {
	started  bool
	previous [midifile.ChannelCount]Values
	values   [midifile.ChannelCount]Values
	fade     [midifile.ChannelCount][columnCount]int
	keyFade  [midifile.ChannelCount + 1][midifile.KeyCount]int
}

// Update takes the channels of a new frame. Each call is one frame.
func (h *Highlighter) Update(channels [midifile.ChannelCount]*midifile.ChannelState) {
	var merged midifile.KeyMask
	for ch, state := range channels {
		var pressed midifile.KeyMask
		if state != nil {
			h.values[ch] = ReadValues(state)
			pressed = state.Pressed()
		}
		merged = merged.Or(pressed)
		fadeKeys(&h.keyFade[ch], pressed)
	}
	fadeKeys(&h.keyFade[mergedKeys], merged)

	for ch := range h.values {
		for i := range h.values[ch] {
			switch {
			case h.started && h.values[ch][i] != h.previous[ch][i]:
				h.fade[ch][i] = controlFadeFrames
			case h.fade[ch][i] > 0:
				h.fade[ch][i]--
			}
		}
	}
	h.previous = h.values
	h.started = true
}

func fadeKeys(row *[midifile.KeyCount]int, pressed midifile.KeyMask) {
	for k := range row {
		switch {
		case pressed.Has(uint8(k)):
			row[k] = keyFadeFrames
		case row[k] > 0:
			row[k]--
		}
	}
}

// Values returns the column values of channel ch from the last frame.
func (h *Highlighter) Values(ch int) Values { return h.values[ch] }

// Level returns how recently column i of channel ch changed, from
// controlFadeFrames (this frame) down to 0 (not recently).
func (h *Highlighter) Level(ch, i int) int { return h.fade[ch][i] }

// KeyLevel returns keyFadeFrames while key k is down on any channel, then
// counts down to 0 after the last release.
func (h *Highlighter) KeyLevel(k int) int { return h.keyFade[mergedKeys][k] }

// ChannelKeyLevel is KeyLevel for channel ch alone.
func (h *Highlighter) ChannelKeyLevel(ch, k int) int { return h.keyFade[ch][k] }
