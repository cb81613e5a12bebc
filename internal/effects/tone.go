package effects

import "math"

// Tone is a tilt control built from two serial shelves. A low shelf
// lifts everything under the low pivot and a high shelf cuts everything
// over the high pivot; the band between passes untouched. Positive tilt
// warms the lows and rolls the highs off; negative tilt brightens.
type Tone struct {
	lift     float32 // low shelf gain offset
	cut      float32 // high shelf gain offset
	loAlpha  float32
	hiAlpha  float32
	loL, loR float32 // low split state
	hiL, hiR float32 // high split state
}

// NewTone creates a tilt tone control.
// tilt: -1..1, positive darkens
// lowHz: pivot under which the low shelf acts
// highHz: pivot over which the high shelf acts
func NewTone(sampleRate int, tilt, lowHz, highHz float32) *Tone {
	loRC := 1.0 / (2.0 * math.Pi * float64(lowHz))
	hiRC := 1.0 / (2.0 * math.Pi * float64(highHz))
	dt := 1.0 / float64(sampleRate)
	tl := clamp(tilt, -1, 1)
	return &Tone{
		lift:    tl * 0.3,
		cut:     tl * 0.6,
		loAlpha: float32(dt / (loRC + dt)),
		hiAlpha: float32(dt / (hiRC + dt)),
	}
}

func (tn *Tone) Process(l, r float32) (float32, float32) {
	// Low shelf: add a scaled copy of the lowpassed signal.
	tn.loL += tn.loAlpha * (l - tn.loL)
	tn.loR += tn.loAlpha * (r - tn.loR)
	l += tn.lift * tn.loL
	r += tn.lift * tn.loR

	// High shelf: subtract a scaled copy of the highpassed remainder.
	tn.hiL += tn.hiAlpha * (l - tn.hiL)
	tn.hiR += tn.hiAlpha * (r - tn.hiR)
	l -= tn.cut * (l - tn.hiL)
	r -= tn.cut * (r - tn.hiR)
	return l, r
}

func (tn *Tone) Reset() {
	tn.loL, tn.loR = 0, 0
	tn.hiL, tn.hiR = 0, 0
}
