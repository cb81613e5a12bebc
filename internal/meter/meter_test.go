package meter

import (
	"math"
	"testing"
)

func tapConstant(m *Meter, v float32, frames int) {
	buf := make([]float32, frames*2)
	for i := range buf {
		buf[i] = v
	}
	m.Tap(buf)
}

func TestLevelsOfConstantSignal(t *testing.T) {
	m := New()
	tapConstant(m, 0.5, 1024)
	rms, peak := m.Levels(512)
	if math.Abs(rms-0.5) > 1e-6 {
		t.Errorf("rms = %v, want 0.5", rms)
	}
	if math.Abs(peak-0.5) > 1e-6 {
		t.Errorf("peak = %v, want 0.5", peak)
	}
}

func TestLevelsBeforeAnyTap(t *testing.T) {
	m := New()
	rms, peak := m.Levels(1024)
	if rms != 0 || peak != 0 {
		t.Fatalf("empty meter reads rms=%v peak=%v, want zeros", rms, peak)
	}
}

func TestLevelsWindowShrinksToTapped(t *testing.T) {
	m := New()
	tapConstant(m, 0.25, 64)
	rms, _ := m.Levels(100000)
	if math.Abs(rms-0.25) > 1e-6 {
		t.Errorf("rms over short history = %v, want 0.25", rms)
	}
}

func TestPeakSeesTransient(t *testing.T) {
	m := New()
	tapConstant(m, 0.1, 256)
	m.Tap([]float32{0.9, 0.9})
	tapConstant(m, 0.1, 256)
	_, peak := m.Levels(1024)
	if math.Abs(peak-0.9) > 1e-6 {
		t.Errorf("peak = %v, want 0.9", peak)
	}
}

func TestResetSilences(t *testing.T) {
	m := New()
	tapConstant(m, 0.5, 1024)
	m.Reset()
	rms, peak := m.Levels(512)
	if rms != 0 || peak != 0 {
		t.Fatalf("after reset rms=%v peak=%v, want zeros", rms, peak)
	}
}

func TestDB(t *testing.T) {
	if got := DB(1); got != 0 {
		t.Errorf("DB(1) = %v, want 0", got)
	}
	if got := DB(0.5); math.Abs(got- -6.0206) > 0.01 {
		t.Errorf("DB(0.5) = %v, want about -6.02", got)
	}
	if got := DB(0); got != -96 {
		t.Errorf("DB(0) = %v, want -96", got)
	}
}
