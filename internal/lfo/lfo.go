package lfo

import "math"

// Wave selects the oscillator shape.
type Wave int

const (
	Sine Wave = iota
	Triangle
	Saw
	Square
	SampleHold
)

// LFO produces per-sample modulation in [-depth, +depth]. One instance
// drives one modulation target, such as the pitch warble on a melodic
// voice. The zero value is inactive until Set is called.
type LFO struct {
	depth float64
	rate  float64 // Hz
	wave  Wave
	phase float64 // [0, 1)
	held  float64 // sample-and-hold output, refreshed each cycle
	seed  uint64
}

// Set configures depth (in the target's units), rate in Hz and shape.
// Out-of-range shapes fall back to sine.
func (l *LFO) Set(depth, rateHz float64, wave Wave) {
	l.depth = depth
	l.rate = rateHz
	if wave < Sine || wave > SampleHold {
		wave = Sine
	}
	l.wave = wave
}

// Active reports whether Sample can return non-zero modulation.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rate != 0
}

// Sample advances the oscillator by one step at sampleRate and returns
// the current modulation value.
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}

	var v float64
	switch l.wave {
	case Triangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case Saw:
		v = 1 - 2*l.phase
	case Square:
		if l.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	case SampleHold:
		v = l.held
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}

	l.phase += l.rate / sampleRate
	if l.phase >= 1 {
		l.phase -= math.Floor(l.phase)
		l.seed = l.seed*6364136223846793005 + 1442695040888963407
		l.held = float64(int64(l.seed>>33)-int64(1<<30)) / float64(1<<30)
	}

	return v * l.depth
}

// Reset rewinds the phase and clears the held random level.
func (l *LFO) Reset() {
	l.phase = 0
	l.held = 0
}
