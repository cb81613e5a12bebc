package effects

import "math"

// Glue is a gentle bus compressor that evens the beat out.
type Glue struct {
	threshold float32
	ratio     float32
	attack    float32 // coefficient
	release   float32 // coefficient
	makeup    float32
	envL      float32
	envR      float32
}

// NewGlue creates a bus compressor.
// thresholdDB: threshold in dB (e.g., -14)
// ratio: compression ratio (e.g., 3 for 3:1)
// attackMs: attack time in ms
// releaseMs: release time in ms
// makeupDB: makeup gain in dB
func NewGlue(sampleRate int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float32) *Glue {
	sr := float64(sampleRate)
	return &Glue{
		threshold: float32(math.Pow(10, float64(thresholdDB)/20)),
		ratio:     ratio,
		attack:    float32(1.0 - math.Exp(-1.0/(float64(attackMs)*sr/1000.0))),
		release:   float32(1.0 - math.Exp(-1.0/(float64(releaseMs)*sr/1000.0))),
		makeup:    float32(math.Pow(10, float64(makeupDB)/20)),
	}
}

func (g *Glue) Process(l, r float32) (float32, float32) {
	absL := float32(math.Abs(float64(l)))
	absR := float32(math.Abs(float64(r)))
	// Envelope follower
	if absL > g.envL {
		g.envL += g.attack * (absL - g.envL)
	} else {
		g.envL += g.release * (absL - g.envL)
	}
	if absR > g.envR {
		g.envR += g.attack * (absR - g.envR)
	} else {
		g.envR += g.release * (absR - g.envR)
	}
	return l * g.computeGain(g.envL) * g.makeup, r * g.computeGain(g.envR) * g.makeup
}

func (g *Glue) computeGain(env float32) float32 {
	if env <= g.threshold || g.threshold <= 0 {
		return 1.0
	}
	// Excess above threshold, pulled back by the ratio.
	over := env / g.threshold
	return float32(math.Pow(float64(over), float64(1.0/g.ratio-1)))
}

func (g *Glue) Reset() {
	g.envL = 0
	g.envR = 0
}
