package sequencer

import (
	"sync"
	"time"

	"github.com/dchessher/lofi-beat-mixer/internal/pattern"
)

const (
	// TrackCount is the number of lanes on the board.
	TrackCount = 8

	MinTempo = 20
	MaxTempo = 300
	MaxSwing = 0.6
)

// TriggerSink receives the triggers fired for one step. Implementations
// must not block: the scheduler calls them inline between timer arms.
type TriggerSink interface {
	Trigger(track int, piece string, velocity float64)
}

// Track is one sequencer lane: a step grid bound to a kit piece, plus the
// live parameters the UI mutates.
type Track struct {
	Name    string
	Piece   string
	Steps   pattern.Steps
	Enabled bool
	Level   float64 // 0..1, doubles as trigger velocity
	Pan     float64 // -1..1
	Tune    float64 // semitones
	Decay   float64 // envelope time scale
	Cutoff  float64 // track filter, 1 = open
}

// Song is the full mutable board state. One mutex guards all of it so a
// preset lands on every track atomically with respect to the scheduler's
// step reads.
type Song struct {
	mu     sync.Mutex
	tracks [TrackCount]Track
	tempo  float64
	swing  float64
}

// defaultLanes is the fixed lane layout: display name and kit piece id.
var defaultLanes = [TrackCount]struct {
	name  string
	piece string
}{
	{"kick", "kick"},
	{"snare", "snare"},
	{"hat c", "hatclosed"},
	{"hat o", "hatopen"},
	{"clap", "clap"},
	{"bass", "bass"},
	{"keys", "keys"},
	{"vinyl", "crackle"},
}

// NewSong returns a silent board with the default lane layout.
func NewSong() *Song {
	s := &Song{tempo: 88}
	for i := range s.tracks {
		s.tracks[i] = Track{
			Name:    defaultLanes[i].name,
			Piece:   defaultLanes[i].piece,
			Enabled: true,
			Level:   0.8,
			Decay:   1,
			Cutoff:  1,
		}
	}
	return s
}

// SetTempo sets the tempo in BPM, clamped to the playable range.
func (s *Song) SetTempo(bpm float64) {
	s.mu.Lock()
	s.tempo = clampF(bpm, MinTempo, MaxTempo)
	s.mu.Unlock()
}

// Tempo returns the current tempo in BPM.
func (s *Song) Tempo() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempo
}

// SetSwing sets the swing amount, 0..MaxSwing.
func (s *Song) SetSwing(swing float64) {
	s.mu.Lock()
	s.swing = clampF(swing, 0, MaxSwing)
	s.mu.Unlock()
}

// Swing returns the current swing amount.
func (s *Song) Swing() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swing
}

// ToggleStep flips one cell of the grid.
func (s *Song) ToggleStep(track, step int) {
	if track < 0 || track >= TrackCount {
		return
	}
	s.mu.Lock()
	s.tracks[track].Steps.Toggle(step)
	s.mu.Unlock()
}

// SetSteps replaces a track's grid.
func (s *Song) SetSteps(track int, steps pattern.Steps) {
	if track < 0 || track >= TrackCount {
		return
	}
	s.mu.Lock()
	s.tracks[track].Steps = steps
	s.mu.Unlock()
}

// SetEnabled switches a track on or off without touching its grid.
func (s *Song) SetEnabled(track int, on bool) {
	if track < 0 || track >= TrackCount {
		return
	}
	s.mu.Lock()
	s.tracks[track].Enabled = on
	s.mu.Unlock()
}

// SetLevel sets a track's level (and trigger velocity), 0..1.
func (s *Song) SetLevel(track int, level float64) {
	if track < 0 || track >= TrackCount {
		return
	}
	s.mu.Lock()
	s.tracks[track].Level = clampF(level, 0, 1)
	s.mu.Unlock()
}

// SetVoiceParams sets the timbre overrides for a track: pan -1..1, tune in
// semitones, decay as a time scale, cutoff 0..1.
func (s *Song) SetVoiceParams(track int, pan, tune, decay, cutoff float64) {
	if track < 0 || track >= TrackCount {
		return
	}
	s.mu.Lock()
	t := &s.tracks[track]
	t.Pan = clampF(pan, -1, 1)
	t.Tune = clampF(tune, -24, 24)
	t.Decay = clampF(decay, 0.1, 8)
	t.Cutoff = clampF(cutoff, 0, 1)
	s.mu.Unlock()
}

// Track returns a copy of one lane.
func (s *Song) Track(i int) Track {
	if i < 0 || i >= TrackCount {
		return Track{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks[i]
}

// Snapshot returns a consistent copy of the whole board for rendering.
func (s *Song) Snapshot() ([TrackCount]Track, float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks, s.tempo, s.swing
}

type trig struct {
	track int
	piece string
	vel   float64
}

// stepColumn reads one step column plus the timing parameters under a
// single lock acquisition.
func (s *Song) stepColumn(step int) (trigs []trig, tempo, swing float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tracks {
		t := &s.tracks[i]
		if t.Enabled && t.Steps.Active(step) {
			trigs = append(trigs, trig{track: i, piece: t.Piece, vel: t.Level})
		}
	}
	return trigs, s.tempo, s.swing
}

// StepDelay returns the wall-clock delay that follows the given step.
// Swing lengthens even-indexed steps and shortens odd ones by the same
// fraction, so each pair of sixteenths keeps its combined length and bar
// duration depends only on tempo.
func StepDelay(step int, tempo, swing float64) time.Duration {
	if tempo <= 0 {
		tempo = MinTempo
	}
	base := float64(time.Minute) / tempo / 4
	if swing > 0 {
		off := base * swing
		if step%2 == 0 {
			base += off
		} else {
			base -= off
		}
	}
	return time.Duration(base)
}

// Scheduler is the self-rescheduling timer loop. Each fire dispatches the
// triggers for the current step, reports the playhead position, and re-arms
// the timer with the swing-adjusted delay to the next step.
type Scheduler struct {
	song   *Song
	sink   TriggerSink
	onStep func(step int)

	mu      sync.Mutex
	playing bool
	step    int
	stop    chan struct{}
	done    chan struct{}
}

// NewScheduler wires a scheduler to a song and a trigger sink. onStep may
// be nil; it is called inline on the timer goroutine for each fired step.
func NewScheduler(song *Song, sink TriggerSink, onStep func(step int)) *Scheduler {
	return &Scheduler{song: song, sink: sink, onStep: onStep}
}

// Advance fires the cursor's step and returns the delay until the next
// one. It is the pure core of the loop; the timer goroutine is just
// Advance plus a re-armed timer.
func (sc *Scheduler) Advance() time.Duration {
	sc.mu.Lock()
	step := sc.step
	sc.step = (sc.step + 1) % pattern.StepCount
	sc.mu.Unlock()

	trigs, tempo, swing := sc.song.stepColumn(step)
	for _, tg := range trigs {
		sc.sink.Trigger(tg.track, tg.piece, tg.vel)
	}
	if sc.onStep != nil {
		sc.onStep(step)
	}
	return StepDelay(step, tempo, swing)
}

// Start begins playback from step 0. Idempotent while playing.
func (sc *Scheduler) Start() {
	sc.mu.Lock()
	if sc.playing {
		sc.mu.Unlock()
		return
	}
	sc.playing = true
	sc.step = 0
	stop := make(chan struct{})
	done := make(chan struct{})
	sc.stop = stop
	sc.done = done
	sc.mu.Unlock()
	go sc.run(stop, done)
}

// Stop interrupts the pending timer and waits for the loop to exit.
// Idempotent while stopped.
func (sc *Scheduler) Stop() {
	sc.mu.Lock()
	if !sc.playing {
		sc.mu.Unlock()
		return
	}
	sc.playing = false
	stop, done := sc.stop, sc.done
	sc.mu.Unlock()
	close(stop)
	<-done
}

// Playing reports whether the loop is running.
func (sc *Scheduler) Playing() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.playing
}

// Step returns the cursor position: the next step to fire.
func (sc *Scheduler) Step() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.step
}

func (sc *Scheduler) run(stop, done chan struct{}) {
	defer close(done)
	// Fire step 0 immediately; every later arm comes from Advance.
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			timer.Reset(sc.Advance())
		}
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
