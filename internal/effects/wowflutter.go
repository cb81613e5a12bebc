package effects

import "math"

// WowFlutter smears pitch with a slowly modulated fractional delay,
// imitating tape transport drift. Run it fully wet; mixing dry back in
// turns it into a chorus instead.
type WowFlutter struct {
	bufL, bufR []float32
	pos        int
	size       int
	depth      float32 // modulation depth in samples
	rate       float64 // modulation rate in radians per sample
	phase      float64
	wet        float32
}

// NewWowFlutter creates a wow/flutter stage.
// baseMs: center delay time in ms (a short transport lag)
// depthMs: modulation depth in ms
// rateHz: modulation rate in Hz (wow sits below ~2Hz)
// wet: wet/dry mix 0..1
func NewWowFlutter(sampleRate int, baseMs, depthMs, rateHz, wet float32) *WowFlutter {
	baseSamples := int(float64(baseMs) * float64(sampleRate) / 1000.0)
	depthSamples := float64(depthMs) * float64(sampleRate) / 1000.0
	size := baseSamples + int(depthSamples) + 2
	if size < 4 {
		size = 4
	}
	return &WowFlutter{
		bufL:  make([]float32, size),
		bufR:  make([]float32, size),
		size:  size,
		depth: float32(depthSamples),
		rate:  2.0 * math.Pi * float64(rateHz) / float64(sampleRate),
		wet:   clamp(wet, 0, 1),
	}
}

func (w *WowFlutter) Process(l, r float32) (float32, float32) {
	mod := float32(math.Sin(w.phase)) * w.depth
	w.phase += w.rate
	if w.phase > 2*math.Pi {
		w.phase -= 2 * math.Pi
	}
	w.bufL[w.pos] = l
	w.bufR[w.pos] = r

	// Read behind the write head with a fractional offset.
	delay := float32(w.size/2) + mod
	readPos := float32(w.pos) - delay
	for readPos < 0 {
		readPos += float32(w.size)
	}
	idx := int(readPos)
	frac := readPos - float32(idx)
	idx2 := idx + 1
	if idx2 >= w.size {
		idx2 = 0
	}
	delL := w.bufL[idx]*(1-frac) + w.bufL[idx2]*frac
	delR := w.bufR[idx]*(1-frac) + w.bufR[idx2]*frac

	w.pos++
	if w.pos >= w.size {
		w.pos = 0
	}
	return l*(1-w.wet) + delL*w.wet, r*(1-w.wet) + delR*w.wet
}

func (w *WowFlutter) Reset() {
	for i := range w.bufL {
		w.bufL[i] = 0
		w.bufR[i] = 0
	}
	w.pos = 0
	w.phase = 0
}
