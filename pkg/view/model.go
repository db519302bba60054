package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zurustar/midiconsole/pkg/player"
)

// Source is the part of player.Player the model reads and controls.
type Source interface {
	Status() player.Status
	Toggle()
}

// Muter is implemented by audio outputs that can be silenced from the keyboard.
type Muter interface {
	ToggleMute() bool
}

type frameMsg time.Time

// Model is a bubbletea model that polls a Source once per frame.
type Model struct {
	src      Source
	theme    Theme
	interval time.Duration
	hl       *Highlighter
	status   player.Status
	width    int
	quitting bool

	mute  Muter
	muted bool
}

// NewModel creates a model redrawing fps times per second.
func NewModel(src Source, th Theme, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	return Model{
		src:      src,
		theme:    th,
		interval: time.Second / time.Duration(fps),
		hl:       &Highlighter{},
		status:   src.Status(),
	}
}

// WithMuter enables the m key.
func (m Model) WithMuter(mu Muter) Model {
	m.mute = mu
	return m
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.frame()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ":
			m.src.Toggle()
		case "m":
			if m.mute != nil {
				m.muted = m.mute.ToggleMute()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case frameMsg:
		m.status = m.src.Status()
		m.hl.Update(m.status.Channels)
		return m, m.frame()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	out := Render(m.status, m.hl, m.theme, m.width)
	if m.mute != nil {
		out += m.theme.Dim.Render("  m:mute")
		if m.muted {
			out += "  " + m.theme.Paused.Render("MUTED")
		}
	}
	return out
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool { return m.quitting }
