package midiout

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver
)

// DefaultGate is how long a mirrored note stays down.
const DefaultGate = 100 * time.Millisecond

type voiceAddr struct {
	channel uint8
	note    uint8
}

// gmMap routes kit pieces to General MIDI: percussion on channel 9,
// bass and keys as plain notes on their own channels.
var gmMap = map[string]voiceAddr{
	"kick":      {9, 36},
	"snare":     {9, 38},
	"hatclosed": {9, 42},
	"hatopen":   {9, 46},
	"clap":      {9, 39},
	"crackle":   {9, 70},
	"bass":      {0, 36},
	"keys":      {1, 60},
}

// Sender mirrors step triggers to a MIDI output port, so an external
// drum machine can double the internal engine. It implements the
// sequencer's TriggerSink.
type Sender struct {
	mu     sync.Mutex
	send   func(gomidi.Message) error
	gate   time.Duration
	port   string
	closed bool
}

// Ports lists the names of the available MIDI output ports.
func Ports() []string {
	ports := gomidi.GetOutPorts()
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

// Open connects to a MIDI output port. An empty name takes the first
// available port; otherwise the name matches case-insensitively as a
// substring. gate <= 0 falls back to DefaultGate.
func Open(portName string, gate time.Duration) (*Sender, error) {
	ports := gomidi.GetOutPorts()
	if len(ports) == 0 {
		return nil, errors.New("no MIDI output ports available")
	}
	var out drivers.Out
	if portName == "" {
		out = ports[0]
	} else {
		want := strings.ToLower(portName)
		for _, p := range ports {
			if strings.Contains(strings.ToLower(p.String()), want) {
				out = p
				break
			}
		}
		if out == nil {
			return nil, fmt.Errorf("no MIDI output port matching %q", portName)
		}
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open MIDI port %q: %w", out.String(), err)
	}
	if gate <= 0 {
		gate = DefaultGate
	}
	return &Sender{send: send, gate: gate, port: out.String()}, nil
}

// Port returns the name of the connected port.
func (s *Sender) Port() string {
	return s.port
}

// Trigger sends a note-on for the piece and schedules the matching
// note-off one gate later. Unmapped pieces are skipped.
func (s *Sender) Trigger(track int, piece string, velocity float64) {
	addr, ok := gmMap[piece]
	if !ok {
		return
	}
	if velocity < 0 {
		velocity = 0
	}
	if velocity > 1 {
		velocity = 1
	}
	// Keep velocity above zero: a zero-velocity note-on reads as note-off.
	vel := uint8(velocity*126) + 1

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	_ = s.send(gomidi.NoteOn(addr.channel, addr.note, vel))
	s.mu.Unlock()

	time.AfterFunc(s.gate, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		_ = s.send(gomidi.NoteOff(addr.channel, addr.note))
	})
}

// Close silences every mapped note and stops further sends.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	for _, addr := range gmMap {
		_ = s.send(gomidi.NoteOff(addr.channel, addr.note))
	}
	s.closed = true
	return nil
}

// CloseDriver releases the MIDI driver. Call once at process exit.
func CloseDriver() {
	gomidi.CloseDriver()
}
