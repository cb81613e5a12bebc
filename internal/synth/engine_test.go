package synth

import (
	"math"
	"testing"
)

func newTestEngine() *Engine {
	e := New(48000, DefaultParams())
	for i, id := range DefaultPieces {
		e.SetTrackVoice(i, GetPiece(id))
	}
	return e
}

func absEnergy(e *Engine, frames int) (left, right float64) {
	for i := 0; i < frames; i++ {
		l, r := e.RenderFrame()
		left += math.Abs(float64(l))
		right += math.Abs(float64(r))
	}
	return left, right
}

func TestEngineGeneratesSignal(t *testing.T) {
	e := newTestEngine()
	id := e.Trigger(0, 1.0)
	if id < 0 {
		t.Fatalf("invalid voice id")
	}
	var nonZero bool
	for i := 0; i < 5000; i++ {
		l, r := e.RenderFrame()
		if l != 0 || r != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected non-zero output")
	}
}

func TestEngineSilentWithoutTrigger(t *testing.T) {
	e := newTestEngine()
	l, r := absEnergy(e, 2048)
	if l != 0 || r != 0 {
		t.Fatalf("expected silence, got left=%f right=%f", l, r)
	}
}

func TestTriggerUnboundTrack(t *testing.T) {
	e := New(48000, DefaultParams())
	if id := e.Trigger(0, 1.0); id != -1 {
		t.Fatalf("expected -1 for track without a recipe, got %d", id)
	}
	if id := e.Trigger(-1, 1.0); id != -1 {
		t.Fatalf("expected -1 for negative track, got %d", id)
	}
	if id := e.Trigger(99, 1.0); id != -1 {
		t.Fatalf("expected -1 for out-of-range track, got %d", id)
	}
}

func TestVoiceTearsDownAfterDecay(t *testing.T) {
	e := newTestEngine()
	e.Trigger(2, 1.0) // closed hat, short decay
	if e.ActiveVoiceCount() != 1 {
		t.Fatalf("expected 1 active voice, got %d", e.ActiveVoiceCount())
	}
	// Closed hat decays in well under half a second.
	for i := 0; i < 24000; i++ {
		e.RenderFrame()
	}
	if e.ActiveVoiceCount() != 0 {
		t.Fatalf("expected voice teardown, still %d active", e.ActiveVoiceCount())
	}
}

func TestEngineSupportsStereoPan(t *testing.T) {
	e := newTestEngine()
	e.SetTrackParams(0, 1.0, 0, 1, 1) // hard right
	e.Trigger(0, 1.0)
	left, right := absEnergy(e, 4096)
	if right <= left {
		t.Fatalf("expected right-biased signal, left=%f right=%f", left, right)
	}
}

func TestVelocityScalesOutput(t *testing.T) {
	loud := newTestEngine()
	loud.Trigger(0, 1.0)
	ll, lr := absEnergy(loud, 8192)

	quiet := newTestEngine()
	quiet.Trigger(0, 0.2)
	ql, qr := absEnergy(quiet, 8192)

	if ql+qr >= ll+lr {
		t.Fatalf("expected quieter output at lower velocity: loud=%f quiet=%f", ll+lr, ql+qr)
	}
}

func TestTrackCutoffDarkensSignal(t *testing.T) {
	open := newTestEngine()
	open.Trigger(1, 1.0)
	var openHigh float64
	var prev float32
	for i := 0; i < 8192; i++ {
		l, _ := open.RenderFrame()
		openHigh += math.Abs(float64(l - prev))
		prev = l
	}

	dark := newTestEngine()
	dark.SetTrackParams(1, 0, 0, 1, 0.2)
	dark.Trigger(1, 1.0)
	var darkHigh float64
	prev = 0
	for i := 0; i < 8192; i++ {
		l, _ := dark.RenderFrame()
		darkHigh += math.Abs(float64(l - prev))
		prev = l
	}

	// First-difference energy is a high-frequency proxy; the filtered take
	// must carry less of it.
	if darkHigh >= openHigh {
		t.Fatalf("expected lowpassed snare to lose highs: open=%f dark=%f", openHigh, darkHigh)
	}
}

func TestTuneShiftsPitch(t *testing.T) {
	base := newTestEngine()
	base.Trigger(6, 1.0) // keys
	baseCrossings := zeroCrossings(base, 12000)

	up := newTestEngine()
	up.SetTrackParams(6, 0, 12, 1, 1) // one octave up
	up.Trigger(6, 1.0)
	upCrossings := zeroCrossings(up, 12000)

	if upCrossings <= baseCrossings {
		t.Fatalf("expected higher pitch after +12 tune: base=%d up=%d crossings", baseCrossings, upCrossings)
	}
}

func zeroCrossings(e *Engine, frames int) int {
	var prev float32
	n := 0
	for i := 0; i < frames; i++ {
		l, _ := e.RenderFrame()
		if (prev < 0 && l >= 0) || (prev > 0 && l <= 0) {
			n++
		}
		prev = l
	}
	return n
}

func TestChokeGroupCutsOpenHat(t *testing.T) {
	e := newTestEngine()
	e.Trigger(3, 1.0) // open hat, long tail
	for i := 0; i < 2400; i++ {
		e.RenderFrame()
	}
	if e.ActiveVoiceCount() != 1 {
		t.Fatalf("expected open hat still sounding, got %d voices", e.ActiveVoiceCount())
	}
	e.Trigger(2, 1.0) // closed hat shares the choke group
	// The choked voice fades within a few hundred frames.
	for i := 0; i < 2000; i++ {
		e.RenderFrame()
	}
	// Only the closed hat should remain.
	if got := e.ActiveVoiceCount(); got != 1 {
		t.Fatalf("expected choked open hat to drop, got %d voices", got)
	}
}

func TestPolyphonyEvictsOldest(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < maxVoices+8; i++ {
		e.Trigger(6, 1.0) // keys, long tail, no choke group
	}
	if got := e.ActiveVoiceCount(); got != maxVoices {
		t.Fatalf("expected voice count capped at %d, got %d", maxVoices, got)
	}
}

func TestPinkNoiseIsDarkerThanWhite(t *testing.T) {
	white, pink := makeNoise(1 << 14)

	diffEnergy := func(buf []float64) float64 {
		var sum, prev float64
		for _, v := range buf {
			sum += math.Abs(v - prev)
			prev = v
		}
		return sum
	}
	// Pink noise rolls off at 3 dB per octave, so its sample-to-sample
	// movement must be well below white's at equal peak.
	if dw, dp := diffEnergy(white), diffEnergy(pink); dp >= dw*0.7 {
		t.Fatalf("expected pink noise low-frequency tilt: white=%f pink=%f", dw, dp)
	}
}

func TestNoiseBuffersNormalized(t *testing.T) {
	white, pink := makeNoise(1 << 14)
	for i, buf := range [][]float64{white, pink} {
		peak := 0.0
		for _, v := range buf {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
		if peak == 0 || peak > 1.0001 {
			t.Fatalf("buffer %d peak out of range: %f", i, peak)
		}
	}
}

func TestMasterGainZeroSilences(t *testing.T) {
	e := newTestEngine()
	e.SetMasterGain(0)
	e.Trigger(0, 1.0)
	l, r := absEnergy(e, 4096)
	if l != 0 || r != 0 {
		t.Fatalf("expected silence at zero master gain, got left=%f right=%f", l, r)
	}
}

func TestGetPieceFallback(t *testing.T) {
	spec := GetPiece("no-such-piece")
	if len(spec.Components) == 0 {
		t.Fatalf("expected fallback recipe with components")
	}
	kick := GetPiece("kick")
	if spec.Components[0].FreqHz != kick.Components[0].FreqHz {
		t.Fatalf("expected fallback to the kick recipe")
	}
}

func TestClapStutterRetriggers(t *testing.T) {
	e := newTestEngine()
	id := e.Trigger(4, 1.0) // clap
	var v *voice
	for i := range e.voices {
		if e.voices[i].active && e.voices[i].id == id {
			v = &e.voices[i]
		}
	}
	if v == nil {
		t.Fatalf("clap voice not found")
	}
	if v.stutters < 2 || v.stutterGap < 1 {
		t.Fatalf("expected burst retriggers, got stutters=%d gap=%d", v.stutters, v.stutterGap)
	}
	gap, attack := v.stutterGap, v.attackFrames
	last := (v.stutters - 1) * gap

	envAt := func(age int) float64 {
		v.age = age
		return v.envelope()
	}
	if env := envAt(gap - 1); env <= 0 || env >= 1 {
		t.Errorf("expected mid-decay level at the end of the first burst, got %f", env)
	}
	if env := envAt(gap + attack); env != 1 {
		t.Errorf("expected the second burst to re-peak, got %f", env)
	}
	if env := envAt(last + attack); env != 1 {
		t.Errorf("expected the final burst to re-peak, got %f", env)
	}
	if env := envAt(last + attack + v.decayFrames + 1); env >= 0 {
		t.Errorf("expected the voice to finish after the final decay, got %f", env)
	}
}

func TestStutterBurstsHoldLevel(t *testing.T) {
	e := New(48000, DefaultParams())
	e.SetTrackVoice(0, VoiceSpec{
		Components: []ComponentSpec{{Source: SourceSine, FreqHz: 1000, Gain: 0.5}},
		AttackSec:  0.001,
		DecaySec:   0.22,
		Stutters:   3,
		StutterSec: 0.011,
	})
	e.Trigger(0, 1.0)

	gap := int(0.011 * 48000)
	peaks := make([]float64, 3)
	for b := range peaks {
		for i := 0; i < gap; i++ {
			l, _ := e.RenderFrame()
			if a := math.Abs(float64(l)); a > peaks[b] {
				peaks[b] = a
			}
		}
	}
	if peaks[0] == 0 {
		t.Fatalf("first burst rendered silent")
	}
	// Retriggered bursts re-peak the envelope; none should sit at the
	// level one uninterrupted decay would leave.
	for b := 1; b < len(peaks); b++ {
		if peaks[b] < peaks[0]*0.8 {
			t.Errorf("burst %d collapsed: first=%f burst=%f", b, peaks[0], peaks[b])
		}
	}
}

func TestMelodicPiecesCarryWarble(t *testing.T) {
	for _, id := range []string{"bass", "keys"} {
		spec := GetPiece(id)
		if spec.WarbleDepth <= 0 || spec.WarbleHz <= 0 {
			t.Errorf("%s recipe has no pitch warble", id)
		}
	}
	if spec := GetPiece("kick"); spec.WarbleDepth != 0 {
		t.Errorf("kick recipe should not warble")
	}
}
