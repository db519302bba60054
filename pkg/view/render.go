package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/zurustar/midiconsole/pkg/midifile"
	"github.com/zurustar/midiconsole/pkg/player"
)

// stripWidth is the width of a keyboard strip; each cell holds two keys.
const stripWidth = midifile.KeyCount / 2

// Render draws one frame. width is the terminal width, 0 if unknown; per
// channel key strips are dropped when they do not fit.
func Render(st player.Status, h *Highlighter, th Theme, width int) string {
	var b strings.Builder

	title := st.SongName
	if title == "" {
		title = "(untitled)"
	}
	b.WriteString(th.Title.Render(title))
	if st.Copyright != "" {
		b.WriteString("  ")
		b.WriteString(th.Dim.Render(st.Copyright))
	}
	b.WriteString("\n")

	b.WriteString(statusLine(st, th))
	b.WriteString("\n\n")

	header := "Ch "
	for _, col := range Columns {
		header += fmt.Sprintf("%*s", col.Width, col.Title)
	}
	rowWidth := len(header) + 1 + stripWidth
	showStrips := width == 0 || width >= rowWidth
	if showStrips {
		header += " Keys"
	}
	b.WriteString(th.Header.Render(header))
	b.WriteString("\n")

	for ch := 0; ch < midifile.ChannelCount; ch++ {
		b.WriteString(th.Dim.Render(fmt.Sprintf("%2d ", ch+1)))
		values := h.Values(ch)
		for i := range Columns {
			b.WriteString(th.valueStyle(h.Level(ch, i)).Render(format(i, values[i])))
		}
		if showStrips {
			b.WriteString(" ")
			b.WriteString(th.Keys.Render(channelStrip(h, ch)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(th.Header.Render("All "))
	b.WriteString(th.Keys.Render(mergedStrip(h)))
	b.WriteString("\n\n")

	if st.Err != nil {
		b.WriteString(th.Error.Render("error: " + st.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(th.Dim.Render("space:pause  q:quit"))

	return b.String()
}

func statusLine(st player.Status, th Theme) string {
	var state string
	switch {
	case st.Err != nil:
		state = th.Error.Render("■ ERROR")
	case st.Done:
		state = th.Dim.Render("■ END")
	case st.Paused:
		state = th.Paused.Render("❚❚ PAUSE")
	default:
		state = th.Playing.Render("▶ PLAY")
	}

	bar, beat := barBeat(st.Tick, st.TicksPerQuarterNote, st.Numerator, st.Denominator)
	info := fmt.Sprintf("  %s  %6.2f BPM  %d/%d  %3d:%d  TPQ %d  tick %d  notes %d  events %d",
		formatPosition(st.Position), st.BPM, st.Numerator, st.Denominator,
		bar, beat, st.TicksPerQuarterNote, st.Tick, st.NoteCount, st.EventCount)
	return state + th.Value.Render(info)
}

// barBeat converts an absolute tick into a 1-based bar and beat using the
// current time signature only.
func barBeat(tick uint64, tpq int, numerator, denominator uint8) (bar, beat uint64) {
	if numerator == 0 {
		numerator = 4
	}
	if denominator == 0 {
		denominator = 4
	}
	beatTicks := uint64(tpq) * 4 / uint64(denominator)
	if beatTicks == 0 {
		beatTicks = 1
	}
	beats := tick / beatTicks
	return beats/uint64(numerator) + 1, beats%uint64(numerator) + 1
}

func formatPosition(d time.Duration) string {
	d = d.Truncate(100 * time.Millisecond)
	m := int(d / time.Minute)
	s := (d % time.Minute).Seconds()
	return fmt.Sprintf("%02d:%04.1f", m, s)
}

// channelStrip draws two keys per cell: both, lower only, upper only. Keys
// released in the last few frames leave a light shade. Idle cells mark every C
// with a dot.
func channelStrip(h *Highlighter, ch int) string {
	var b strings.Builder
	for i := 0; i < stripWidth; i++ {
		lo, hi := h.ChannelKeyLevel(ch, 2*i), h.ChannelKeyLevel(ch, 2*i+1)
		switch {
		case lo == keyFadeFrames && hi == keyFadeFrames:
			b.WriteRune('█')
		case lo == keyFadeFrames:
			b.WriteRune('▌')
		case hi == keyFadeFrames:
			b.WriteRune('▐')
		case lo > 0 || hi > 0:
			b.WriteRune('░')
		default:
			b.WriteRune(idleCell(i))
		}
	}
	return b.String()
}

// mergedStrip shades each cell by how recently one of its keys was down on
// any channel.
func mergedStrip(h *Highlighter) string {
	shades := []rune{'░', '▒', '▓', '█'}
	var b strings.Builder
	for i := 0; i < stripWidth; i++ {
		level := max(h.KeyLevel(2*i), h.KeyLevel(2*i+1))
		if level == 0 {
			b.WriteRune(idleCell(i))
			continue
		}
		b.WriteRune(shades[(level*len(shades)-1)/keyFadeFrames])
	}
	return b.String()
}

func idleCell(i int) rune {
	if (2*i)%12 == 0 {
		return '·'
	}
	return ' '
}
