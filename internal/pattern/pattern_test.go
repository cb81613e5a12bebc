package pattern

import "testing"

func TestSpread_Downbeats(t *testing.T) {
	s := Spread(4)
	want := MustParse("x...x...x...x...")
	if s != want {
		t.Fatalf("Spread(4) = %s, want %s", s, want)
	}
}

func TestSpread_ClampsAndEdges(t *testing.T) {
	if got := Spread(0); got.Count() != 0 {
		t.Fatalf("Spread(0) has %d hits, want 0", got.Count())
	}
	if got := Spread(StepCount); got.Count() != StepCount {
		t.Fatalf("Spread(16) has %d hits, want %d", got.Count(), StepCount)
	}
	if got := Spread(100); got.Count() != StepCount {
		t.Fatalf("Spread(100) has %d hits, want %d (clamped)", got.Count(), StepCount)
	}
}

func TestSpread_OddCountsStayEven(t *testing.T) {
	s := Spread(3)
	if s.Count() != 3 {
		t.Fatalf("Spread(3) has %d hits, want 3", s.Count())
	}
	// floor(i*16/3): 0, 5, 10.
	for _, idx := range []int{0, 5, 10} {
		if !s.Active(idx) {
			t.Fatalf("Spread(3) missing hit at step %d: %s", idx, s)
		}
	}
}

func TestParse_Notation(t *testing.T) {
	s, err := Parse("|x..x|..x.|x...|..x.|")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if s.Count() != 5 {
		t.Fatalf("expected 5 hits, got %d", s.Count())
	}
	for _, idx := range []int{0, 3, 6, 8, 14} {
		if !s.Active(idx) {
			t.Fatalf("expected hit at step %d, got %s", idx, s)
		}
	}
}

func TestParse_AcceptsDashRestsAndCase(t *testing.T) {
	a, err := Parse("X---X---X---X---")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if a != Spread(4) {
		t.Fatalf("dash/upper notation parsed to %s, want %s", a, Spread(4))
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"short", "x..x"},
		{"long", "x...x...x...x...x"},
		{"badchar", "x...o...x...x..."},
		{"empty", ""},
	}
	for _, tc := range cases {
		if _, err := Parse(tc.input); err == nil {
			t.Fatalf("%s: expected error for %q", tc.name, tc.input)
		}
	}
}

func TestString_RoundTrip(t *testing.T) {
	orig := Spread(7)
	back, err := Parse(orig.String())
	if err != nil {
		t.Fatalf("parse of %q failed: %v", orig.String(), err)
	}
	if back != orig {
		t.Fatalf("round trip changed grid: %s -> %s", orig, back)
	}
}

func TestToggleAndClear(t *testing.T) {
	var s Steps
	s.Toggle(5)
	if !s.Active(5) {
		t.Fatalf("expected step 5 active after toggle")
	}
	s.Toggle(5)
	if s.Active(5) {
		t.Fatalf("expected step 5 cleared after second toggle")
	}
	s.Toggle(-1)
	s.Toggle(StepCount)
	if s.Count() != 0 {
		t.Fatalf("out-of-range toggle changed the grid: %s", s)
	}
	s = Spread(8)
	s.Clear()
	if s.Count() != 0 {
		t.Fatalf("Clear left %d hits", s.Count())
	}
}
