package effects

// Room is a small reverb: a short pre-delay into four parallel combs
// and two diffusion allpasses. Each comb lowpasses its own feedback,
// so the tail loses top end on every pass and darkens as it rings.
type Room struct {
	pre    []float32
	prePos int
	combs  [4]comb
	diff   [2]diffuser
	wet    float32
}

type comb struct {
	buf  []float32
	pos  int
	fb   float32
	damp float32
	low  float32
}

type diffuser struct {
	buf []float32
	pos int
}

// Allpass coefficient shared by both diffusion stages.
const diffusion = 0.7

// NewRoom creates a room reverb.
// size: 0..1 scales the pre-delay and comb lengths
// decay: 0..1 controls how long the tail rings
// damp: 0..1 high-frequency loss per feedback pass
// wet: wet/dry mix 0..1
func NewRoom(sampleRate int, size, decay, damp, wet float32) *Room {
	base := int(float32(sampleRate) * (0.018 + 0.04*clamp(size, 0, 1)))
	if base < 16 {
		base = 16
	}
	fb := clamp(decay, 0, 1) * 0.88
	dp := clamp(damp, 0, 1)
	r := &Room{
		pre: make([]float32, maxInt(base/3, 1)),
		wet: clamp(wet, 0, 1),
	}
	// Mutually prime length ratios spread the comb resonances.
	combLens := [4]int{base, base * 1187 / 1000, base * 1399 / 1000, base * 1523 / 1000}
	for i := range r.combs {
		r.combs[i] = comb{
			buf:  make([]float32, combLens[i]),
			fb:   fb,
			damp: dp,
		}
	}
	diffLens := [2]int{base * 331 / 1000, base * 149 / 1000}
	for i := range r.diff {
		r.diff[i] = diffuser{buf: make([]float32, maxInt(diffLens[i], 1))}
	}
	return r
}

func (rm *Room) Process(l, r float32) (float32, float32) {
	in := rm.pre[rm.prePos]
	rm.pre[rm.prePos] = (l + r) * 0.5
	rm.prePos++
	if rm.prePos >= len(rm.pre) {
		rm.prePos = 0
	}
	var tail float32
	for i := range rm.combs {
		tail += rm.combs[i].process(in)
	}
	tail *= 0.25
	for i := range rm.diff {
		tail = rm.diff[i].process(tail)
	}
	return l*(1-rm.wet) + tail*rm.wet, r*(1-rm.wet) + tail*rm.wet
}

func (rm *Room) Reset() {
	for i := range rm.pre {
		rm.pre[i] = 0
	}
	rm.prePos = 0
	for i := range rm.combs {
		c := &rm.combs[i]
		for j := range c.buf {
			c.buf[j] = 0
		}
		c.pos = 0
		c.low = 0
	}
	for i := range rm.diff {
		d := &rm.diff[i]
		for j := range d.buf {
			d.buf[j] = 0
		}
		d.pos = 0
	}
}

// process reads the delayed sample and writes back the input plus the
// damped feedback. With damp at 0 the loop filter passes through.
func (c *comb) process(in float32) float32 {
	out := c.buf[c.pos]
	c.low += (1 - c.damp) * (out - c.low)
	c.buf[c.pos] = in + c.low*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (d *diffuser) process(in float32) float32 {
	delayed := d.buf[d.pos]
	d.buf[d.pos] = in + delayed*diffusion
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	return delayed - in
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
