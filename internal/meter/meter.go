package meter

import (
	"math"
	"sync"
)

const ringLen = 32768

// Meter taps the master bus and serves level readings to the UI. The tap
// folds stereo to mono into a ring buffer; readers pull RMS and peak over
// a trailing window.
type Meter struct {
	mu       sync.Mutex
	ring     []float32
	writePos int
	total    int64
}

func New() *Meter {
	return &Meter{ring: make([]float32, ringLen)}
}

// Tap is called from the audio thread with interleaved stereo samples.
// Keep it minimal: just fold and copy into the ring.
func (m *Meter) Tap(samples []float32) {
	m.mu.Lock()
	for i := 0; i+1 < len(samples); i += 2 {
		mono := (samples[i] + samples[i+1]) * 0.5
		m.ring[m.writePos] = mono
		m.writePos = (m.writePos + 1) % ringLen
		m.total++
	}
	m.mu.Unlock()
}

// Levels returns the RMS and absolute peak over the most recent window
// samples. A window larger than what has been tapped shrinks to fit.
func (m *Meter) Levels(window int) (rms, peak float64) {
	if window <= 0 {
		return 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if window > ringLen {
		window = ringLen
	}
	if m.total < int64(window) {
		window = int(m.total)
	}
	if window == 0 {
		return 0, 0
	}
	start := (m.writePos - window + ringLen) % ringLen
	var sum float64
	for i := 0; i < window; i++ {
		v := float64(m.ring[(start+i)%ringLen])
		sum += v * v
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return math.Sqrt(sum / float64(window)), peak
}

// Reset drops everything tapped so far (called when the device closes).
func (m *Meter) Reset() {
	m.mu.Lock()
	for i := range m.ring {
		m.ring[i] = 0
	}
	m.writePos = 0
	m.total = 0
	m.mu.Unlock()
}

// DB converts a linear level to decibels, floored at -96.
func DB(v float64) float64 {
	if v <= 0 {
		return -96
	}
	db := 20 * math.Log10(v)
	if db < -96 {
		db = -96
	}
	return db
}
