package lofibeat

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	intaudio "github.com/dchessher/lofi-beat-mixer/internal/audio"
	intfx "github.com/dchessher/lofi-beat-mixer/internal/effects"
	intmeter "github.com/dchessher/lofi-beat-mixer/internal/meter"
	intpattern "github.com/dchessher/lofi-beat-mixer/internal/pattern"
	intseq "github.com/dchessher/lofi-beat-mixer/internal/sequencer"
	intsynth "github.com/dchessher/lofi-beat-mixer/internal/synth"
)

// PlaybackEvent carries transport and step events from Watch().
type PlaybackEvent struct {
	Kind   int // EventStep, EventTrigger, EventStarted, EventStopped, or EventPreset
	Step   int
	Track  int
	Piece  string
	Preset string
}

const (
	EventStep int = iota
	EventTrigger
	EventStarted
	EventStopped
	EventPreset
)

// DefaultEffects is the master bus chain applied when no chain is given.
const DefaultEffects = "saturator,tone"

type MixerOption func(*mixerConfig)

type mixerConfig struct {
	preset    string
	tempo     float64
	swing     float64
	effects   string
	barLimit  int
	sampleTap func([]float32)
	extraSink intseq.TriggerSink
}

func defaultMixerConfig() mixerConfig {
	return mixerConfig{
		preset:  intseq.DefaultPreset,
		tempo:   88,
		swing:   0.12,
		effects: DefaultEffects,
	}
}

// WithPreset selects the starting groove. Unknown ids fall back to the
// default preset.
func WithPreset(id string) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.preset = id
	}
}

// WithTempo sets the starting tempo in BPM.
func WithTempo(bpm float64) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.tempo = bpm
	}
}

// WithSwing sets the starting swing amount.
func WithSwing(swing float64) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.swing = swing
	}
}

// WithEffects sets the master bus chain from a comma-separated list of
// effect names. An empty list runs the bus clean.
func WithEffects(list string) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.effects = list
	}
}

// WithBarLimit stops playback after n bars. Zero loops forever.
func WithBarLimit(n int) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.barLimit = n
	}
}

// WithSampleTap installs a callback invoked with each generated stereo
// buffer, after the effect chain. The callback runs on the audio thread;
// keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.sampleTap = tap
	}
}

// WithTriggerSink registers an extra sink that receives every step
// trigger alongside the synth engine, e.g. a MIDI mirror.
func WithTriggerSink(sink intseq.TriggerSink) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.extraSink = sink
	}
}

// Mixer is the top-level beat machine: a step scheduler driving the synth
// engine, a master effect chain, and a level meter, streamed to the audio
// device.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	song       *intseq.Song
	engine     *intsynth.Engine
	sched      *intseq.Scheduler
	router     *intseq.Router
	source     *busSource
	meter      *intmeter.Meter
	audio      *intaudio.Output
	baseGain   float64
	volume     float64
	presetID   string
	barLimit   int
	stepsFired atomic.Int64
	lastStep   atomic.Int32
	closed     bool
	done       chan struct{}
	eventCh    chan PlaybackEvent
	eventChMu  sync.Mutex
}

// busSource is the master bus frame path: engine, then effects, then the
// meter tap and optional external tap.
type busSource struct {
	engine *intsynth.Engine
	chain  *intfx.Chain
	meter  *intmeter.Meter
	tap    func([]float32)
}

func (b *busSource) Process(dst []float32) {
	b.engine.Process(dst)
	if b.chain != nil {
		for i := 0; i+1 < len(dst); i += 2 {
			dst[i], dst[i+1] = b.chain.Process(dst[i], dst[i+1])
		}
	}
	b.meter.Tap(dst)
	if b.tap != nil {
		b.tap(dst)
	}
}

// engineSink feeds step triggers into the synth engine.
type engineSink struct {
	engine *intsynth.Engine
}

func (es *engineSink) Trigger(track int, piece string, velocity float64) {
	es.engine.Trigger(track, velocity)
}

// eventSink republishes step triggers as playback events.
type eventSink struct {
	m *Mixer
}

func (es *eventSink) Trigger(track int, piece string, velocity float64) {
	es.m.sendEvent(PlaybackEvent{Kind: EventTrigger, Track: track, Piece: piece})
}

func NewMixer(sampleRate int, opts ...MixerOption) (*Mixer, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultMixerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	chain, err := intfx.BuildChain(sampleRate, cfg.effects)
	if err != nil {
		return nil, fmt.Errorf("effect chain: %w", err)
	}
	if chain.Len() == 0 {
		chain = nil
	}

	song := intseq.NewSong()
	song.ApplyPreset(intseq.GetPreset(cfg.preset))
	song.SetTempo(cfg.tempo)
	song.SetSwing(cfg.swing)

	params := intsynth.DefaultParams()
	engine := intsynth.New(sampleRate, params)
	for i := 0; i < intseq.TrackCount; i++ {
		engine.SetTrackVoice(i, intsynth.GetPiece(song.Track(i).Piece))
	}

	m := &Mixer{
		sampleRate: sampleRate,
		song:       song,
		engine:     engine,
		meter:      intmeter.New(),
		baseGain:   params.MasterGain,
		volume:     1,
		presetID:   cfg.preset,
		barLimit:   cfg.barLimit,
	}
	if _, ok := intseq.Presets[cfg.preset]; !ok {
		m.presetID = intseq.DefaultPreset
	}
	engine.SetMasterGain(m.baseGain)

	m.router = intseq.NewRouter(&engineSink{engine: engine}, &eventSink{m: m})
	if cfg.extraSink != nil {
		m.router.Add(cfg.extraSink)
	}
	m.sched = intseq.NewScheduler(song, m.router, m.handleStep)
	m.source = &busSource{
		engine: engine,
		chain:  chain,
		meter:  m.meter,
		tap:    cfg.sampleTap,
	}
	return m, nil
}

// handleStep runs on the scheduler goroutine for every fired step.
func (m *Mixer) handleStep(step int) {
	m.lastStep.Store(int32(step))
	m.sendEvent(PlaybackEvent{Kind: EventStep, Step: step})
	if m.barLimit > 0 {
		if m.stepsFired.Add(1) >= int64(m.barLimit)*intpattern.StepCount {
			// Stop cannot run on this goroutine: it waits for the
			// scheduler loop to exit.
			go m.Stop()
		}
	}
}

// Play opens the audio device on first use and starts the step loop from
// the top of the bar. No-op while already playing.
func (m *Mixer) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("mixer is closed")
	}
	if m.sched.Playing() {
		return nil
	}
	if m.audio == nil {
		backend, err := intaudio.NewOutput(m.sampleRate, m.source)
		if err != nil {
			return err
		}
		m.audio = backend
		m.audio.Play()
	}
	m.stepsFired.Store(0)
	if m.done != nil {
		close(m.done)
	}
	m.done = make(chan struct{})
	m.sched.Start()
	m.sendEvent(PlaybackEvent{Kind: EventStarted})
	return nil
}

// Stop halts the step loop. The audio device stays open so voice tails
// ring out; Close tears the device down.
func (m *Mixer) Stop() {
	m.mu.Lock()
	playing := m.sched.Playing()
	done := m.done
	m.done = nil
	m.mu.Unlock()
	if !playing {
		if done != nil {
			close(done)
		}
		return
	}
	m.sched.Stop()
	m.sendEvent(PlaybackEvent{Kind: EventStopped})
	if done != nil {
		close(done)
	}
}

// Playing reports whether the step loop is running.
func (m *Mixer) Playing() bool {
	return m.sched.Playing()
}

// Wait blocks until playback stops, either by Stop or by the bar limit.
// It returns immediately if nothing is playing.
func (m *Mixer) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close stops playback and shuts the audio device down.
func (m *Mixer) Close() error {
	m.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.meter.Reset()
	if m.audio != nil {
		err := m.audio.Stop()
		m.audio = nil
		return err
	}
	return nil
}

// Watch returns a channel that receives playback events:
//   - EventStep: the playhead fired a step (Step set)
//   - EventTrigger: a lane fired (Track and Piece set)
//   - EventStarted, EventStopped: transport changes
//   - EventPreset: a preset was applied (Preset set)
//
// The channel is buffered (cap 8) and events are dropped when it is full;
// receive in a goroutine or poll every frame. Only the most recent Watch
// channel receives events.
func (m *Mixer) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	m.eventChMu.Lock()
	m.eventCh = ch
	m.eventChMu.Unlock()
	return ch
}

func (m *Mixer) sendEvent(ev PlaybackEvent) {
	m.eventChMu.Lock()
	ch := m.eventCh
	m.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// SetMasterVolume sets the runtime volume scalar. 1.0 is default.
func (m *Mixer) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
	m.engine.SetMasterGain(m.baseGain * m.volume)
}

func (m *Mixer) MasterVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// ApplyPreset swaps the whole board to a built-in groove. Unknown ids
// fall back to the default preset. Pan, tune, decay and cutoff survive.
func (m *Mixer) ApplyPreset(id string) {
	p := intseq.GetPreset(id)
	m.song.ApplyPreset(p)
	m.mu.Lock()
	if _, ok := intseq.Presets[id]; ok {
		m.presetID = id
	} else {
		m.presetID = intseq.DefaultPreset
	}
	id = m.presetID
	m.mu.Unlock()
	m.sendEvent(PlaybackEvent{Kind: EventPreset, Preset: id})
}

// Preset returns the id of the last applied preset.
func (m *Mixer) Preset() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presetID
}

func (m *Mixer) SetTempo(bpm float64) { m.song.SetTempo(bpm) }
func (m *Mixer) Tempo() float64       { return m.song.Tempo() }
func (m *Mixer) SetSwing(sw float64)  { m.song.SetSwing(sw) }
func (m *Mixer) Swing() float64       { return m.song.Swing() }

// ToggleStep flips one grid cell.
func (m *Mixer) ToggleStep(track, step int) {
	m.song.ToggleStep(track, step)
}

// SetTrackEnabled switches a lane on or off.
func (m *Mixer) SetTrackEnabled(track int, on bool) {
	m.song.SetEnabled(track, on)
}

// SetTrackLevel sets a lane's level and trigger velocity, 0..1.
func (m *Mixer) SetTrackLevel(track int, level float64) {
	m.song.SetLevel(track, level)
}

// SetTrackPan sets a lane's stereo position, -1 (left) to 1 (right).
func (m *Mixer) SetTrackPan(track int, pan float64) {
	t := m.song.Track(track)
	m.song.SetVoiceParams(track, pan, t.Tune, t.Decay, t.Cutoff)
	m.pushVoiceParams(track)
}

// SetTrackTune shifts a lane's pitch in semitones, -24..24.
func (m *Mixer) SetTrackTune(track int, semitones float64) {
	t := m.song.Track(track)
	m.song.SetVoiceParams(track, t.Pan, semitones, t.Decay, t.Cutoff)
	m.pushVoiceParams(track)
}

// SetTrackDecay scales a lane's envelope time, 0.1..8.
func (m *Mixer) SetTrackDecay(track int, decay float64) {
	t := m.song.Track(track)
	m.song.SetVoiceParams(track, t.Pan, t.Tune, decay, t.Cutoff)
	m.pushVoiceParams(track)
}

// SetTrackCutoff sets a lane's filter, 0 (dark) to 1 (open).
func (m *Mixer) SetTrackCutoff(track int, cutoff float64) {
	t := m.song.Track(track)
	m.song.SetVoiceParams(track, t.Pan, t.Tune, t.Decay, cutoff)
	m.pushVoiceParams(track)
}

func (m *Mixer) pushVoiceParams(track int) {
	t := m.song.Track(track)
	m.engine.SetTrackParams(track, t.Pan, t.Tune, t.Decay, t.Cutoff)
}

// Snapshot returns a consistent copy of the board for rendering.
func (m *Mixer) Snapshot() ([intseq.TrackCount]intseq.Track, float64, float64) {
	return m.song.Snapshot()
}

// Playhead returns the most recently fired step.
func (m *Mixer) Playhead() int {
	return int(m.lastStep.Load())
}

// Preview fires one lane immediately at its current level, through every
// registered sink.
func (m *Mixer) Preview(track int) {
	if track < 0 || track >= intseq.TrackCount {
		return
	}
	t := m.song.Track(track)
	if t.Piece == "" {
		return
	}
	m.router.Trigger(track, t.Piece, t.Level)
}

// Levels returns the master bus RMS and peak over the recent window.
func (m *Mixer) Levels() (rms, peak float64) {
	return m.meter.Levels(2048)
}

// ActiveVoices returns how many synth voices are sounding.
func (m *Mixer) ActiveVoices() int {
	return m.engine.ActiveVoiceCount()
}

// SampleRate returns the mixer's sample rate in Hz.
func (m *Mixer) SampleRate() int {
	return m.sampleRate
}
