package effects

import "math"

// TapeDelay is a stereo echo with cross-channel feedback and a one-pole
// damp inside the loop, so every repeat comes back a little duller.
type TapeDelay struct {
	bufL, bufR []float32
	pos        int
	feedback   float32
	cross      float32
	wet        float32
	dampAlpha  float32
	dampL      float32
	dampR      float32
}

// NewTapeDelay creates a tape delay.
// delayMs: delay time in milliseconds
// feedback: repeat amount 0..0.95
// cross: cross-channel feedback 0..1
// wet: wet/dry mix 0..1
func NewTapeDelay(sampleRate int, delayMs float64, feedback, cross, wet float32) *TapeDelay {
	samples := int(delayMs * float64(sampleRate) / 1000.0)
	if samples < 1 {
		samples = 1
	}
	// Damp the loop around 3.5kHz.
	rc := 1.0 / (2.0 * math.Pi * 3500.0)
	dt := 1.0 / float64(sampleRate)
	return &TapeDelay{
		bufL:      make([]float32, samples),
		bufR:      make([]float32, samples),
		feedback:  clamp(feedback, 0, 0.95),
		cross:     clamp(cross, 0, 1),
		wet:       clamp(wet, 0, 1),
		dampAlpha: float32(dt / (rc + dt)),
	}
}

func (d *TapeDelay) Process(l, r float32) (float32, float32) {
	delL := d.bufL[d.pos]
	delR := d.bufR[d.pos]
	fbL := delL*d.feedback*(1-d.cross) + delR*d.feedback*d.cross
	fbR := delR*d.feedback*(1-d.cross) + delL*d.feedback*d.cross
	d.dampL += d.dampAlpha * (fbL - d.dampL)
	d.dampR += d.dampAlpha * (fbR - d.dampR)
	d.bufL[d.pos] = l + d.dampL
	d.bufR[d.pos] = r + d.dampR
	d.pos++
	if d.pos >= len(d.bufL) {
		d.pos = 0
	}
	return l*(1-d.wet) + delL*d.wet, r*(1-d.wet) + delR*d.wet
}

func (d *TapeDelay) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.pos = 0
	d.dampL = 0
	d.dampR = 0
}
