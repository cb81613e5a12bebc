package tui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dchessher/lofi-beat-mixer"
	"github.com/dchessher/lofi-beat-mixer/internal/sequencer"
	"github.com/dchessher/lofi-beat-mixer/internal/theme"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	mixer, err := lofibeat.NewMixer(48000, lofibeat.WithEffects(""))
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	t.Cleanup(func() { mixer.Close() })
	return NewModel(mixer, theme.Default())
}

// press feeds key names through Update and returns the resulting model.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		if k == "enter" {
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestCursorMovesAndClamps(t *testing.T) {
	m := newTestModel(t)

	for i := 0; i < 20; i++ {
		m = press(t, m, "l")
	}
	if m.cursorStep != 15 {
		t.Fatalf("cursorStep = %d, want 15", m.cursorStep)
	}
	for i := 0; i < 40; i++ {
		m = press(t, m, "h")
	}
	if m.cursorStep != 0 {
		t.Fatalf("cursorStep = %d, want 0", m.cursorStep)
	}

	for i := 0; i < 20; i++ {
		m = press(t, m, "j")
	}
	if m.cursorTrack != sequencer.TrackCount-1 {
		t.Fatalf("cursorTrack = %d, want %d", m.cursorTrack, sequencer.TrackCount-1)
	}
	for i := 0; i < 40; i++ {
		m = press(t, m, "k")
	}
	if m.cursorTrack != 0 {
		t.Fatalf("cursorTrack = %d, want 0", m.cursorTrack)
	}
}

func TestToggleStepAtCursor(t *testing.T) {
	m := newTestModel(t)

	// Kick step 2 is a rest in the default preset.
	m = press(t, m, "l", "l", "x")
	tracks, _, _ := m.Mixer.Snapshot()
	if !tracks[0].Steps.Active(2) {
		t.Fatal("step 2 not set after toggle")
	}

	m = press(t, m, "enter")
	tracks, _, _ = m.Mixer.Snapshot()
	if tracks[0].Steps.Active(2) {
		t.Fatal("step 2 still set after second toggle")
	}
}

func TestEnableKeyTogglesTrack(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "e")
	tracks, _, _ := m.Mixer.Snapshot()
	if tracks[0].Enabled {
		t.Fatal("track still enabled after e")
	}

	m = press(t, m, "e")
	tracks, _, _ = m.Mixer.Snapshot()
	if !tracks[0].Enabled {
		t.Fatal("track not re-enabled after second e")
	}
}

func TestTempoAndSwingKeys(t *testing.T) {
	m := newTestModel(t)
	base := m.Mixer.Tempo()

	m = press(t, m, "+")
	if got := m.Mixer.Tempo(); got != base+tempoStep {
		t.Fatalf("tempo = %v after +, want %v", got, base+tempoStep)
	}
	m = press(t, m, "-", "-")
	if got := m.Mixer.Tempo(); got != base-tempoStep {
		t.Fatalf("tempo = %v after --, want %v", got, base-tempoStep)
	}

	sw := m.Mixer.Swing()
	m = press(t, m, ">")
	if got := m.Mixer.Swing(); math.Abs(got-(sw+swingStep)) > 1e-9 {
		t.Fatalf("swing = %v after >, want %v", got, sw+swingStep)
	}
}

func TestTrackParamKeys(t *testing.T) {
	m := newTestModel(t)
	before, _, _ := m.Mixer.Snapshot()
	base := before[0]

	m = press(t, m, "t", "t")
	m = press(t, m, "D")
	m = press(t, m, "]")
	m = press(t, m, "}")
	m = press(t, m, "F")

	tracks, _, _ := m.Mixer.Snapshot()
	tr := tracks[0]
	if tr.Tune != base.Tune+2*tuneStep {
		t.Fatalf("tune = %v, want %v", tr.Tune, base.Tune+2*tuneStep)
	}
	if math.Abs(tr.Decay-(base.Decay-decayStep)) > 1e-9 {
		t.Fatalf("decay = %v, want %v", tr.Decay, base.Decay-decayStep)
	}
	if math.Abs(tr.Level-(base.Level+levelStep)) > 1e-9 {
		t.Fatalf("level = %v, want %v", tr.Level, base.Level+levelStep)
	}
	if math.Abs(tr.Pan-(base.Pan+panStep)) > 1e-9 {
		t.Fatalf("pan = %v, want %v", tr.Pan, base.Pan+panStep)
	}
	if math.Abs(tr.Cutoff-(base.Cutoff-cutoffStep)) > 1e-9 {
		t.Fatalf("cutoff = %v, want %v", tr.Cutoff, base.Cutoff-cutoffStep)
	}
}

func TestPresetKeys(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "2")
	if got := m.Mixer.Preset(); got != sequencer.PresetOrder[1] {
		t.Fatalf("preset = %q, want %q", got, sequencer.PresetOrder[1])
	}

	m = press(t, m, "1")
	if got := m.Mixer.Preset(); got != sequencer.PresetOrder[0] {
		t.Fatalf("preset = %q, want %q", got, sequencer.PresetOrder[0])
	}
}

func TestMuteToggleRestoresVolume(t *testing.T) {
	m := newTestModel(t)
	m.Mixer.SetMasterVolume(0.8)

	m = press(t, m, "m")
	if got := m.Mixer.MasterVolume(); got != 0 {
		t.Fatalf("volume = %v while muted, want 0", got)
	}
	m = press(t, m, "m")
	if got := m.Mixer.MasterVolume(); got != 0.8 {
		t.Fatalf("volume = %v after unmute, want 0.8", got)
	}
}

func TestQuitKeyEmitsQuit(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("no command returned for q")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not produce a quit message")
	}
	if got := next.(Model).View(); got != "" {
		t.Fatalf("view after quit = %q, want empty", got)
	}
}

func TestPreviewKeyPumpsEvent(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "a")
	msg := ListenForUpdates(m.events)()
	ev, ok := msg.(UpdateMsg)
	if !ok {
		t.Fatalf("message type %T, want UpdateMsg", msg)
	}
	if ev.Kind != lofibeat.EventTrigger || ev.Track != 0 || ev.Piece != "kick" {
		t.Fatalf("event = %+v, want kick trigger on track 0", ev)
	}
}

func TestViewShowsBoard(t *testing.T) {
	m := newTestModel(t)

	v := m.View()
	for _, want := range []string{"lofi-beat", "STOP", "kick", "vinyl", "preset:" + m.Mixer.Preset()} {
		if !strings.Contains(v, want) {
			t.Fatalf("view missing %q:\n%s", want, v)
		}
	}
}
