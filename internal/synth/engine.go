package synth

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/dchessher/lofi-beat-mixer/internal/lfo"
)

const (
	twoPi         = math.Pi * 2
	maxVoices     = 24
	maxComponents = 4
	noiseBufLen   = 1 << 16 // shared noise buffer length in samples

	// Exponential decay constant: exp(-decayLambda) ≈ 0.001, so a voice
	// reaches -60 dB after DecaySec and can be dropped.
	decayLambda = 6.9078

	chokeFade = 0.92 // per-sample gain multiplier while a voice is being choked
)

// SourceKind selects the signal source of one voice component.
type SourceKind int

const (
	SourceSine SourceKind = iota
	SourceTriangle
	SourcePulse
	SourceFM
	SourceWhite
	SourcePink
)

// FilterKind selects the optional one-pole filter on a component.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterLP
	FilterHP
	FilterBP
)

// ComponentSpec describes one source branch of a voice: a source, its own
// gain, and an optional filter.
type ComponentSpec struct {
	Source   SourceKind
	FreqHz   float64
	SweepTo  float64 // glide target in Hz; 0 disables the sweep
	SweepSec float64
	Gain     float64
	Duty     float64 // pulse duty cycle; 0 means 0.5
	ModRatio float64 // FM modulator frequency ratio
	ModIndex float64 // FM modulation index
	Filter   FilterKind
	CutoffHz float64
}

// VoiceSpec describes how to build the transient voice for one kit piece.
// All components share one envelope; the optional track filter and pan are
// applied after the component sum.
type VoiceSpec struct {
	Components  []ComponentSpec
	AttackSec   float64
	DecaySec    float64
	WarbleDepth float64 // pitch wobble depth in semitones
	WarbleHz    float64
	Stutters    int     // burst retriggers at the start (claps)
	StutterSec  float64 // gap between bursts
	ChokeGroup  int     // voices sharing a non-zero group cut each other off
}

// Params controls the voice engine.
type Params struct {
	Tracks     int
	Polyphony  int
	MasterGain float64
}

// DefaultParams returns defaults sized for an eight-track kit.
func DefaultParams() Params {
	return Params{
		Tracks:     8,
		Polyphony:  maxVoices,
		MasterGain: 0.5,
	}
}

// trackVoice is the per-track build configuration: the piece recipe plus
// the live parameter overrides the UI mutates.
type trackVoice struct {
	spec   VoiceSpec
	hasVox bool
	pan    float64 // -1..1
	tune   float64 // semitones
	decay  float64 // envelope time scale
	cutoff float64 // track filter, 0..1 normalized; >= 1 leaves it open
}

type component struct {
	kind     SourceKind
	phase    float64
	modPhase float64
	freq     float64
	endFreq  float64
	sweepMul float64
	sweepN   int
	gain     float64
	duty     float64
	modRatio float64
	modIndex float64
	filt     FilterKind
	alpha    float64
	lp       float64
	lp2      float64
	buf      []float64
	bufPos   int
}

type voice struct {
	active       bool
	id           int
	track        int
	age          int
	vel          float64
	comps        [maxComponents]component
	numComps     int
	attackFrames int
	decayFrames  int
	stutters     int
	stutterGap   int
	chokeGroup   int
	choked       bool
	chokeGain    float64
	warble       lfo.LFO
	tfAlpha      float64
	tfLP         float64
	panL         float64
	panR         float64
}

// Engine renders short-lived drum and tone voices into a stereo stream.
// Trigger and the Set* methods may be called from any goroutine; Process
// runs on the audio goroutine and drops voices as their envelopes finish.
type Engine struct {
	mu         sync.Mutex
	sampleRate float64
	params     Params
	tracks     []trackVoice
	voices     []voice
	nextID     int
	masterGain uint64
	activeN    atomic.Int32
	white      []float64
	pink       []float64
}

// New creates an engine at the given sample rate and pre-generates the
// shared white and pink noise buffers.
func New(sampleRate int, params Params) *Engine {
	if params.Tracks <= 0 {
		params.Tracks = 8
	}
	if params.Polyphony <= 0 || params.Polyphony > maxVoices {
		params.Polyphony = maxVoices
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		tracks:     make([]trackVoice, params.Tracks),
		voices:     make([]voice, params.Polyphony),
		masterGain: math.Float64bits(params.MasterGain),
	}
	for i := range e.tracks {
		e.tracks[i] = trackVoice{decay: 1, cutoff: 1}
	}
	e.white, e.pink = makeNoise(noiseBufLen)
	return e
}

// SetTrackVoice binds a voice recipe to a track.
func (e *Engine) SetTrackVoice(track int, spec VoiceSpec) {
	if track < 0 || track >= len(e.tracks) {
		return
	}
	e.mu.Lock()
	e.tracks[track].spec = spec
	e.tracks[track].hasVox = len(spec.Components) > 0
	e.mu.Unlock()
}

// SetTrackParams updates the live overrides for a track: pan in -1..1,
// tune in semitones, decay as an envelope time scale, cutoff normalized
// 0..1 where 1 leaves the track filter open.
func (e *Engine) SetTrackParams(track int, pan, tune, decay, cutoff float64) {
	if track < 0 || track >= len(e.tracks) {
		return
	}
	e.mu.Lock()
	t := &e.tracks[track]
	t.pan = clamp(pan, -1, 1)
	t.tune = clamp(tune, -24, 24)
	t.decay = clamp(decay, 0.1, 8)
	t.cutoff = clamp(cutoff, 0, 1)
	e.mu.Unlock()
}

// Trigger builds one transient voice for the track and returns its id,
// or -1 if the track has no recipe bound.
func (e *Engine) Trigger(track int, velocity float64) int {
	if track < 0 || track >= len(e.tracks) {
		return -1
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	t := &e.tracks[track]
	if !t.hasVox {
		return -1
	}
	id := e.nextID
	e.nextID++

	// Choke: voices in the same group fade out fast.
	if g := t.spec.ChokeGroup; g != 0 {
		for i := range e.voices {
			v := &e.voices[i]
			if v.active && !v.choked && v.chokeGroup == g {
				v.choked = true
			}
		}
	}

	slot := e.stealVoice()
	v := &e.voices[slot]
	if v.active {
		e.activeN.Add(-1)
	}
	*v = voice{
		active:     true,
		id:         id,
		track:      track,
		vel:        clamp(velocity, 0, 1),
		chokeGroup: t.spec.ChokeGroup,
		chokeGain:  1,
	}
	e.buildVoice(v, t)
	e.activeN.Add(1)
	return id
}

// buildVoice expands a track recipe into runtime component state.
func (e *Engine) buildVoice(v *voice, t *trackVoice) {
	spec := t.spec
	tuneMul := math.Pow(2, t.tune/12.0)

	v.attackFrames = int(spec.AttackSec * e.sampleRate)
	if v.attackFrames < 1 {
		v.attackFrames = 1
	}
	decaySec := spec.DecaySec * t.decay
	if decaySec <= 0 {
		decaySec = 0.1
	}
	v.decayFrames = int(decaySec * e.sampleRate)
	if v.decayFrames < 1 {
		v.decayFrames = 1
	}
	if spec.Stutters > 1 && spec.StutterSec > 0 {
		v.stutters = spec.Stutters
		v.stutterGap = int(spec.StutterSec * e.sampleRate)
		if v.stutterGap < 1 {
			v.stutterGap = 1
		}
	}
	if spec.WarbleDepth > 0 && spec.WarbleHz > 0 {
		v.warble.Set(spec.WarbleDepth, spec.WarbleHz, lfo.Sine)
	}

	n := len(spec.Components)
	if n > maxComponents {
		n = maxComponents
	}
	v.numComps = n
	for ci := 0; ci < n; ci++ {
		cs := spec.Components[ci]
		c := &v.comps[ci]
		*c = component{
			kind:     cs.Source,
			freq:     cs.FreqHz * tuneMul,
			gain:     cs.Gain,
			duty:     cs.Duty,
			modRatio: cs.ModRatio,
			modIndex: cs.ModIndex,
			filt:     cs.Filter,
		}
		if c.duty <= 0 {
			c.duty = 0.5
		}
		if cs.SweepTo > 0 && cs.SweepSec > 0 && cs.FreqHz > 0 {
			// Log-domain glide: a constant per-sample ratio lands on the
			// target after SweepSec.
			frames := int(cs.SweepSec * e.sampleRate)
			if frames < 1 {
				frames = 1
			}
			c.endFreq = cs.SweepTo * tuneMul
			c.sweepMul = math.Pow(c.endFreq/c.freq, 1/float64(frames))
			c.sweepN = frames
		}
		if cs.Filter != FilterNone && cs.CutoffHz > 0 && cs.CutoffHz < e.sampleRate/2 {
			c.alpha = onePoleAlpha(cs.CutoffHz, e.sampleRate)
		} else {
			c.filt = FilterNone
		}
		switch cs.Source {
		case SourceWhite:
			c.buf = e.white
			c.bufPos = (v.id * 7919) % len(e.white)
		case SourcePink:
			c.buf = e.pink
			c.bufPos = (v.id * 7919) % len(e.pink)
		}
	}

	// Track filter: one-pole lowpass, bypassed when the cutoff is open.
	if t.cutoff < 0.999 {
		hz := cutoffToHz(t.cutoff)
		v.tfAlpha = onePoleAlpha(hz, e.sampleRate)
	}

	// Equal-power stereo placement.
	angle := ((t.pan + 1) / 2) * (math.Pi / 2)
	v.panL = math.Cos(angle)
	v.panR = math.Sin(angle)
}

// Process renders interleaved stereo frames into dst.
func (e *Engine) Process(dst []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		l, r := e.renderFrame()
		dst[2*i] = l
		dst[2*i+1] = r
	}
}

// RenderFrame produces one stereo sample pair. Exposed for tests and
// single-frame pulls; Process is the batch path.
func (e *Engine) RenderFrame() (float32, float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderFrame()
}

func (e *Engine) renderFrame() (float32, float32) {
	var l, r float64
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active {
			continue
		}

		env := v.envelope()
		if env < 0 {
			v.active = false
			e.activeN.Add(-1)
			continue
		}
		if v.choked {
			v.chokeGain *= chokeFade
			if v.chokeGain < 0.001 {
				v.active = false
				e.activeN.Add(-1)
				continue
			}
			env *= v.chokeGain
		}

		warbleMul := 1.0
		if v.warble.Active() {
			warbleMul = math.Pow(2, v.warble.Sample(e.sampleRate)/12.0)
		}

		var sum float64
		for ci := 0; ci < v.numComps; ci++ {
			sum += e.renderComponent(&v.comps[ci], warbleMul)
		}

		sig := sum * env * v.vel
		if v.tfAlpha > 0 {
			v.tfLP += v.tfAlpha * (sig - v.tfLP)
			sig = v.tfLP
		}
		l += sig * v.panL
		r += sig * v.panR
		v.age++
	}

	g := e.masterGainValue()
	return float32(clamp(l*g, -1, 1)), float32(clamp(r*g, -1, 1))
}

// envelope returns the shared envelope gain at the voice's current age, or
// a negative value once the tail has fully decayed.
func (v *voice) envelope() float64 {
	a := v.age
	if v.stutterGap > 0 {
		last := (v.stutters - 1) * v.stutterGap
		if a < last {
			a %= v.stutterGap
		} else {
			a -= last
		}
	}
	if a < v.attackFrames {
		return float64(a) / float64(v.attackFrames)
	}
	d := a - v.attackFrames
	if d > v.decayFrames {
		return -1
	}
	return math.Exp(-decayLambda * float64(d) / float64(v.decayFrames))
}

func (e *Engine) renderComponent(c *component, warbleMul float64) float64 {
	if c.sweepN > 0 {
		c.freq *= c.sweepMul
		c.sweepN--
		if c.sweepN <= 0 {
			c.freq = c.endFreq
		}
	}

	var raw float64
	switch c.kind {
	case SourceSine:
		raw = math.Sin(c.phase * twoPi)
		c.phase += c.freq * warbleMul / e.sampleRate
		if c.phase >= 1 {
			c.phase -= 1
		}
	case SourceTriangle:
		raw = 2*math.Abs(2*c.phase-1) - 1
		c.phase += c.freq * warbleMul / e.sampleRate
		if c.phase >= 1 {
			c.phase -= 1
		}
	case SourcePulse:
		dt := c.freq / e.sampleRate
		c.phase += dt
		if c.phase >= 1 {
			c.phase -= 1
		}
		raw = -1.0
		if c.phase < c.duty {
			raw = 1
		}
		// PolyBLEP anti-aliasing at both transitions.
		raw += polyBLEP(c.phase, dt)
		raw -= polyBLEP(math.Mod(c.phase-c.duty+1, 1), dt)
	case SourceFM:
		mod := math.Sin(c.modPhase*twoPi) * c.modIndex
		raw = math.Sin(c.phase*twoPi + mod)
		c.phase += c.freq * warbleMul / e.sampleRate
		if c.phase >= 1 {
			c.phase -= 1
		}
		c.modPhase += c.freq * c.modRatio * warbleMul / e.sampleRate
		if c.modPhase >= 1 {
			c.modPhase -= 1
		}
	case SourceWhite, SourcePink:
		raw = c.buf[c.bufPos]
		c.bufPos++
		if c.bufPos >= len(c.buf) {
			c.bufPos = 0
		}
	}

	if c.filt != FilterNone && c.alpha > 0 {
		c.lp += c.alpha * (raw - c.lp)
		switch c.filt {
		case FilterLP:
			raw = c.lp
		case FilterHP:
			raw = raw - c.lp
		case FilterBP:
			c.lp2 += c.alpha * (c.lp - c.lp2)
			raw = c.lp - c.lp2
		}
	}
	return raw * c.gain
}

// SetMasterGain sets the master gain atomically.
func (e *Engine) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&e.masterGain, math.Float64bits(gain))
}

// ActiveVoiceCount returns the number of currently sounding voices.
func (e *Engine) ActiveVoiceCount() int {
	return int(e.activeN.Load())
}

func (e *Engine) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.masterGain))
}

// stealVoice returns a free slot, or evicts the oldest active voice.
func (e *Engine) stealVoice() int {
	for i := range e.voices {
		if !e.voices[i].active {
			return i
		}
	}
	oldest := 0
	maxAge := e.voices[0].age
	for i := 1; i < len(e.voices); i++ {
		if e.voices[i].age > maxAge {
			maxAge = e.voices[i].age
			oldest = i
		}
	}
	return oldest
}

// polyBLEP reduces aliasing at waveform discontinuities.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

// makeNoise builds the shared white and pink buffers. White noise comes
// from an LCG; pink is the white run through the Kellet filter bank and
// renormalized.
func makeNoise(n int) (white, pink []float64) {
	white = make([]float64, n)
	pink = make([]float64, n)
	seed := uint64(0x2545F4914F6CDD1D)
	var b0, b1, b2, b3, b4, b5, b6 float64
	peak := 0.0
	for i := 0; i < n; i++ {
		w := lcg(&seed)
		white[i] = w
		b0 = 0.99886*b0 + w*0.0555179
		b1 = 0.99332*b1 + w*0.0750759
		b2 = 0.96900*b2 + w*0.1538520
		b3 = 0.86650*b3 + w*0.3104856
		b4 = 0.55000*b4 + w*0.5329522
		b5 = -0.7616*b5 - w*0.0168980
		p := b0 + b1 + b2 + b3 + b4 + b5 + b6 + w*0.5362
		b6 = w * 0.115926
		pink[i] = p
		if a := math.Abs(p); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		inv := 1 / peak
		for i := range pink {
			pink[i] *= inv
		}
	}
	return white, pink
}

// lcg advances an LCG seed and returns a noise sample in [-1,1].
func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1<<30)
}

// cutoffToHz maps a normalized 0..1 cutoff onto 100 Hz..12 kHz on a log
// scale.
func cutoffToHz(norm float64) float64 {
	return 100 * math.Pow(120, clamp(norm, 0, 1))
}

func onePoleAlpha(cutoffHz, sampleRate float64) float64 {
	rc := 1.0 / (twoPi * cutoffHz)
	dt := 1.0 / sampleRate
	return dt / (rc + dt)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
