package effects

import (
	"fmt"
	"strings"
)

// Effector processes one stereo frame at a time.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

func (c *Chain) Len() int {
	return len(c.effects)
}

// New constructs one effect by name with its built-in voicing.
func New(sampleRate int, name string) (Effector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "saturator":
		return NewSaturator(sampleRate, 1.6, 0.85, 8000), nil
	case "wowflutter":
		return NewWowFlutter(sampleRate, 12, 2.2, 1.7, 1.0), nil
	case "tone":
		return NewTone(sampleRate, 0.75, 250, 2800), nil
	case "tapedelay":
		return NewTapeDelay(sampleRate, 380, 0.42, 0.3, 0.28), nil
	case "room":
		return NewRoom(sampleRate, 0.55, 0.7, 0.4, 0.22), nil
	case "glue":
		return NewGlue(sampleRate, -14, 3, 8, 120, 3), nil
	}
	return nil, fmt.Errorf("unknown effect %q", name)
}

// Names lists the effect names New accepts, in a sensible chain order.
func Names() []string {
	return []string{"saturator", "wowflutter", "tone", "tapedelay", "room", "glue"}
}

// BuildChain builds a chain from a comma-separated list of effect names.
// Empty entries are skipped; an empty list yields a pass-through chain.
func BuildChain(sampleRate int, list string) (*Chain, error) {
	c := NewChain()
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		e, err := New(sampleRate, name)
		if err != nil {
			return nil, err
		}
		c.Add(e)
	}
	return c, nil
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
