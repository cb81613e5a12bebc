package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dchessher/lofi-beat-mixer"
	"github.com/dchessher/lofi-beat-mixer/internal/meter"
	"github.com/dchessher/lofi-beat-mixer/internal/pattern"
	"github.com/dchessher/lofi-beat-mixer/internal/sequencer"
	"github.com/dchessher/lofi-beat-mixer/internal/theme"
)

// Increments for the parameter keys.
const (
	tempoStep  = 5.0
	swingStep  = 0.02
	levelStep  = 0.05
	panStep    = 0.1
	tuneStep   = 1.0
	decayStep  = 0.1
	cutoffStep = 0.05
)

// Model is the terminal front end over a running Mixer. Pattern and
// transport state live in the Mixer; the model only holds the edit
// cursor and the mute toggle.
type Model struct {
	Mixer *lofibeat.Mixer
	Theme *theme.Theme

	events <-chan lofibeat.PlaybackEvent

	cursorTrack int
	cursorStep  int

	muted       bool
	savedVolume float64

	playErr  error
	quitting bool
}

// UpdateMsg wraps one playback event from the mixer's watch channel.
type UpdateMsg lofibeat.PlaybackEvent

func NewModel(mixer *lofibeat.Mixer, th *theme.Theme) Model {
	return Model{
		Mixer:       mixer,
		Theme:       th,
		events:      mixer.Watch(),
		savedVolume: mixer.MasterVolume(),
	}
}

// ListenForUpdates blocks on the mixer's event channel and surfaces the
// next event as a message. Update re-issues it after every receipt.
func ListenForUpdates(events <-chan lofibeat.PlaybackEvent) tea.Cmd {
	return func() tea.Msg {
		return UpdateMsg(<-events)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.events)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Mixer.Stop()
		return m, tea.Quit

	case " ":
		if m.Mixer.Playing() {
			m.Mixer.Stop()
		} else {
			m.playErr = m.Mixer.Play()
		}

	case "h", "left":
		if m.cursorStep > 0 {
			m.cursorStep--
		}
	case "l", "right":
		if m.cursorStep < pattern.StepCount-1 {
			m.cursorStep++
		}
	case "j", "down":
		if m.cursorTrack < sequencer.TrackCount-1 {
			m.cursorTrack++
		}
	case "k", "up":
		if m.cursorTrack > 0 {
			m.cursorTrack--
		}

	case "enter", "x":
		m.Mixer.ToggleStep(m.cursorTrack, m.cursorStep)

	case "e":
		m.Mixer.SetTrackEnabled(m.cursorTrack, !m.track().Enabled)

	case "a":
		m.Mixer.Preview(m.cursorTrack)

	case "+", "=":
		m.Mixer.SetTempo(m.Mixer.Tempo() + tempoStep)
	case "-", "_":
		m.Mixer.SetTempo(m.Mixer.Tempo() - tempoStep)

	case ">", ".":
		m.Mixer.SetSwing(m.Mixer.Swing() + swingStep)
	case "<", ",":
		m.Mixer.SetSwing(m.Mixer.Swing() - swingStep)

	case "]":
		m.Mixer.SetTrackLevel(m.cursorTrack, m.track().Level+levelStep)
	case "[":
		m.Mixer.SetTrackLevel(m.cursorTrack, m.track().Level-levelStep)

	case "}":
		m.Mixer.SetTrackPan(m.cursorTrack, m.track().Pan+panStep)
	case "{":
		m.Mixer.SetTrackPan(m.cursorTrack, m.track().Pan-panStep)

	case "t":
		m.Mixer.SetTrackTune(m.cursorTrack, m.track().Tune+tuneStep)
	case "T":
		m.Mixer.SetTrackTune(m.cursorTrack, m.track().Tune-tuneStep)

	case "d":
		m.Mixer.SetTrackDecay(m.cursorTrack, m.track().Decay+decayStep)
	case "D":
		m.Mixer.SetTrackDecay(m.cursorTrack, m.track().Decay-decayStep)

	case "f":
		m.Mixer.SetTrackCutoff(m.cursorTrack, m.track().Cutoff+cutoffStep)
	case "F":
		m.Mixer.SetTrackCutoff(m.cursorTrack, m.track().Cutoff-cutoffStep)

	case "m":
		if m.muted {
			m.Mixer.SetMasterVolume(m.savedVolume)
		} else {
			m.savedVolume = m.Mixer.MasterVolume()
			m.Mixer.SetMasterVolume(0)
		}
		m.muted = !m.muted

	case "1", "2", "3", "4", "5":
		idx := int(msg.String()[0] - '1')
		if idx < len(sequencer.PresetOrder) {
			m.Mixer.ApplyPreset(sequencer.PresetOrder[idx])
		}
	}

	return m, nil
}

// track returns the current state of the track under the cursor.
func (m Model) track() sequencer.Track {
	tracks, _, _ := m.Mixer.Snapshot()
	return tracks[m.cursorTrack]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	tracks, tempo, swing := m.Mixer.Snapshot()
	playing := m.Mixer.Playing()
	playhead := m.Mixer.Playhead()
	sym := m.Theme.Symbols

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted)
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG)
	emptyCell := lipgloss.NewStyle().Foreground(m.Theme.Muted)
	activeCell := lipgloss.NewStyle().Foreground(m.Theme.Active)
	playheadCell := lipgloss.NewStyle().Foreground(m.Theme.Playing)
	cursorCell := lipgloss.NewStyle().Foreground(m.Theme.Cursor)
	mutedStyle := lipgloss.NewStyle().Foreground(m.Theme.Active)

	// Header
	playState := "STOP"
	if playing {
		playState = "PLAY"
	}
	header := headerStyle.Render(fmt.Sprintf("lofi-beat  %s  %3.0fbpm  swing %2.0f%%  preset:%s  step:%02d",
		playState, tempo, swing*100, m.Mixer.Preset(), playhead+1))
	if m.muted {
		header += mutedStyle.Render("  MUTED")
	}

	// 8x16 grid, one rune per step, a gap every four steps
	var grid strings.Builder
	for t := 0; t < sequencer.TrackCount; t++ {
		tr := tracks[t]

		nameStyle := fgStyle
		hitStyle := activeCell
		if !tr.Enabled {
			nameStyle = dimStyle
			hitStyle = emptyCell
		}
		grid.WriteString(nameStyle.Render(fmt.Sprintf("%-5s", tr.Name)))
		grid.WriteString("  ")

		for s := 0; s < pattern.StepCount; s++ {
			if s > 0 && s%4 == 0 {
				grid.WriteByte(' ')
			}
			onCursor := t == m.cursorTrack && s == m.cursorStep
			onPlayhead := playing && s == playhead

			var cell string
			switch {
			case onCursor && onPlayhead:
				cell = cursorCell.Render(string(sym.CursorPlayhead))
			case onCursor && tr.Steps.Active(s):
				cell = cursorCell.Render(string(sym.CursorActive))
			case onCursor:
				cell = cursorCell.Render(string(sym.CursorEmpty))
			case onPlayhead:
				cell = playheadCell.Render(string(sym.StepPlayhead))
			case tr.Steps.Active(s):
				cell = hitStyle.Render(string(sym.StepActive))
			default:
				cell = emptyCell.Render(string(sym.StepEmpty))
			}
			grid.WriteString(cell)
		}

		grid.WriteString("  ")
		grid.WriteString(dimStyle.Render(segmentBar(sym, tr.Level, 5)))
		grid.WriteByte('\n')
	}

	// Cursor track detail
	cur := tracks[m.cursorTrack]
	state := "on"
	if !cur.Enabled {
		state = "off"
	}
	detail := fgStyle.Render(fmt.Sprintf("%-5s %-3s  lvl %.2f  pan %+.2f  tune %+.0f  decay %.2f  cutoff %.2f",
		cur.Name, state, cur.Level, cur.Pan, cur.Tune, cur.Decay, cur.Cutoff))

	// Output meter
	rms, peak := m.Mixer.Levels()
	vu := playheadCell.Render(vuBar(sym, meter.DB(rms), 16)) +
		dimStyle.Render(fmt.Sprintf("  %5.1f dB rms  %5.1f dB peak", meter.DB(rms), meter.DB(peak)))

	// Key help
	help := dimStyle.Render("space:play  hjkl:move  x:toggle  e:on/off  a:hear  1-5:preset  m:mute  q:quit") + "\n" +
		dimStyle.Render("+/-:tempo  </>:swing  [/]:level  {/}:pan  t/T:tune  d/D:decay  f/F:cutoff")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(grid.String())
	out.WriteString("\n")
	out.WriteString(detail)
	out.WriteString("\n\n")
	out.WriteString("out   ")
	out.WriteString(vu)
	out.WriteString("\n\n")
	out.WriteString(help)
	if m.playErr != nil {
		out.WriteString("\n")
		out.WriteString(mutedStyle.Render(m.playErr.Error()))
	}
	out.WriteString("\n")

	return out.String()
}

// segmentBar draws level 0..1 as lit segments out of width.
func segmentBar(sym theme.Symbols, level float64, width int) string {
	lit := int(level*float64(width) + 0.5)
	if lit < 0 {
		lit = 0
	}
	if lit > width {
		lit = width
	}
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < lit {
			b.WriteRune(sym.MeterOn)
		} else {
			b.WriteRune(sym.MeterOff)
		}
	}
	return b.String()
}

// vuBar maps dB in [-48, 0] onto lit segments.
func vuBar(sym theme.Symbols, db float64, width int) string {
	const floor = -48.0
	return segmentBar(sym, (db-floor)/-floor, width)
}
