package effects

import "math"

// Saturator is a tape-style soft clipper: drive into tanh, trim back
// down, then a lowpass to take the fizz off the clipped edges.
type Saturator struct {
	drive    float32
	trim     float32
	lpfAlpha float32
	lpfL     float32
	lpfR     float32
}

// NewSaturator creates a saturator.
// drive: input gain (higher = more grit)
// trim: output gain
// toneCutoff: post lowpass cutoff in Hz (0 = no filter)
func NewSaturator(sampleRate int, drive, trim, toneCutoff float32) *Saturator {
	s := &Saturator{
		drive: drive,
		trim:  trim,
	}
	if toneCutoff > 0 && toneCutoff < float32(sampleRate)/2 {
		rc := 1.0 / (2.0 * math.Pi * float64(toneCutoff))
		dt := 1.0 / float64(sampleRate)
		s.lpfAlpha = float32(dt / (rc + dt))
	}
	return s
}

func (s *Saturator) Process(l, r float32) (float32, float32) {
	l = float32(math.Tanh(float64(l * s.drive)))
	r = float32(math.Tanh(float64(r * s.drive)))
	l *= s.trim
	r *= s.trim
	if s.lpfAlpha > 0 {
		s.lpfL += s.lpfAlpha * (l - s.lpfL)
		s.lpfR += s.lpfAlpha * (r - s.lpfR)
		l = s.lpfL
		r = s.lpfR
	}
	return l, r
}

func (s *Saturator) Reset() {
	s.lpfL = 0
	s.lpfR = 0
}
