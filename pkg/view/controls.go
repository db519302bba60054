// Package view draws player state in the terminal with lipgloss and drives it
// as a bubbletea program.
package view

import (
	"fmt"

	"github.com/zurustar/midiconsole/pkg/midifile"
)

// Controller numbers shown per channel.
const (
	ccModulation = 1
	ccDataEntry  = 6 // pitch bend range once RPN 0 is selected
	ccVolume     = 7
	ccPan        = 10
	ccExpression = 11
	ccHold       = 64
	ccResonance  = 71
	ccRelease    = 72
	ccAttack     = 73
	ccCutoff     = 74
	ccDecay      = 75
)

// Column is one derived value in a channel row.
type Column struct {
	Title string
	Width int
	value func(ch midifile.ChannelView) int
}

const columnCount = 13

// Columns lists the per-channel values in display order. Centered
// controllers are shown relative to 64.
var Columns = [columnCount]Column{
	{"Pc", 4, func(ch midifile.ChannelView) int { return int(ch.Program()) + 1 }},
	{"Vol", 4, unsigned(ccVolume)},
	{"Exp", 4, unsigned(ccExpression)},
	{"Pitch", 6, func(ch midifile.ChannelView) int { return int(ch.PitchBendSigned()) }},
	{"PRng", 4, unsigned(ccDataEntry)},
	{"Mod", 4, unsigned(ccModulation)},
	{"Pan", 4, signed(ccPan)},
	{"Cut", 4, signed(ccCutoff)},
	{"Res", 4, signed(ccResonance)},
	{"Att", 4, signed(ccAttack)},
	{"Dec", 4, signed(ccDecay)},
	{"Rel", 4, signed(ccRelease)},
	{"Hold", 4, func(ch midifile.ChannelView) int {
		if ch.ControlValue(ccHold) != 0 {
			return 1
		}
		return 0
	}},
}

func unsigned(cc uint8) func(midifile.ChannelView) int {
	return func(ch midifile.ChannelView) int { return int(ch.ControlValue(cc)) }
}

func signed(cc uint8) func(midifile.ChannelView) int {
	return func(ch midifile.ChannelView) int { return int(ch.ControlValue(cc)) - 64 }
}

// Values holds one channel's column values, indexed like Columns.
type Values [columnCount]int

// ReadValues derives every column from ch.
func ReadValues(ch midifile.ChannelView) Values {
	var v Values
	for i, col := range Columns {
		v[i] = col.value(ch)
	}
	return v
}

// format renders v for column i, right-aligned to its width.
func format(i, v int) string {
	col := Columns[i]
	if col.Title == "Hold" {
		if v != 0 {
			return fmt.Sprintf("%*s", col.Width, "on")
		}
		return fmt.Sprintf("%*s", col.Width, "-")
	}
	return fmt.Sprintf("%*d", col.Width, v)
}
