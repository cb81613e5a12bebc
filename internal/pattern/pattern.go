package pattern

import (
	"fmt"
	"strings"
)

// StepCount is the grid length for every track. The sequencer, presets and
// UI all assume sixteenth-note grids of this size.
const StepCount = 16

// Steps is one track's boolean step grid.
type Steps [StepCount]bool

// Spread activates hits evenly across the grid, nearest-index spacing.
// hits is clamped to [0, StepCount].
func Spread(hits int) Steps {
	return SpreadN(hits, StepCount)
}

// SpreadN spreads hits over the first length steps. Hit i lands on index
// floor(i*length/hits), so Spread(4) gives the four downbeats and odd
// counts land as close to even spacing as the grid allows.
func SpreadN(hits, length int) Steps {
	var s Steps
	if length > StepCount {
		length = StepCount
	}
	if hits > length {
		hits = length
	}
	for i := 0; i < hits; i++ {
		s[i*length/hits] = true
	}
	return s
}

// Parse reads explicit step notation: 'x' or 'X' marks an active step,
// '.' or '-' a rest. '|' and spaces are separators and carry no position.
// The notation must contain exactly StepCount playable cells.
func Parse(input string) (Steps, error) {
	var s Steps
	n := 0
	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch ch {
		case 'x', 'X':
			if n >= StepCount {
				return Steps{}, fmt.Errorf("step %d beyond grid of %d at column %d", n+1, StepCount, i)
			}
			s[n] = true
			n++
		case '.', '-':
			if n >= StepCount {
				return Steps{}, fmt.Errorf("step %d beyond grid of %d at column %d", n+1, StepCount, i)
			}
			n++
		case '|', ' ', '\t':
			// separator
		default:
			return Steps{}, fmt.Errorf("invalid step char %q at column %d", ch, i)
		}
	}
	if n != StepCount {
		return Steps{}, fmt.Errorf("got %d steps, want %d", n, StepCount)
	}
	return s, nil
}

// MustParse is Parse for static tables; it panics on malformed notation.
func MustParse(input string) Steps {
	s, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return s
}

// String renders the grid in the same notation Parse accepts, with a bar
// every four steps: |x...|x...|x...|x...|
func (s Steps) String() string {
	var b strings.Builder
	for i := 0; i < StepCount; i++ {
		if i%4 == 0 {
			b.WriteByte('|')
		}
		if s[i] {
			b.WriteByte('x')
		} else {
			b.WriteByte('.')
		}
	}
	b.WriteByte('|')
	return b.String()
}

// Active reports whether step i is set. Out-of-range indices are rests.
func (s Steps) Active(i int) bool {
	if i < 0 || i >= StepCount {
		return false
	}
	return s[i]
}

// Toggle flips step i in place.
func (s *Steps) Toggle(i int) {
	if i >= 0 && i < StepCount {
		s[i] = !s[i]
	}
}

// Count returns the number of active steps.
func (s Steps) Count() int {
	n := 0
	for _, on := range s {
		if on {
			n++
		}
	}
	return n
}

// Clear resets every step.
func (s *Steps) Clear() {
	*s = Steps{}
}
