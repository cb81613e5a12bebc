package sequencer

import "github.com/dchessher/lofi-beat-mixer/internal/pattern"

// TrackPreset is one lane's slice of a preset: grid, on/off, and level.
// Pan, tune, decay and cutoff are performance parameters and survive a
// preset change.
type TrackPreset struct {
	Steps   pattern.Steps
	Enabled bool
	Level   float64
}

// Preset is a full board setup. Track order matches the default lanes:
// kick, snare, closed hat, open hat, clap, bass, keys, vinyl.
type Preset struct {
	Name   string
	Tracks [TrackCount]TrackPreset
}

// DefaultPreset is the id applied at startup and the fallback for
// unknown ids.
const DefaultPreset = "boombap"

// PresetOrder lists preset ids in the order the UI binds them to digits.
var PresetOrder = []string{"boombap", "dusty", "halftime", "bounce", "sparse"}

// Presets is the built-in groove library.
var Presets = map[string]Preset{
	"boombap": {
		Name: "boom bap",
		Tracks: [TrackCount]TrackPreset{
			{pattern.MustParse("x..x|..x.|..x.|...."), true, 0.90},
			{pattern.MustParse("....|x...|....|x..."), true, 0.85},
			{pattern.MustParse("x.x.|x.x.|x.x.|x.x."), true, 0.55},
			{pattern.MustParse("....|...x|....|...x"), true, 0.50},
			{pattern.MustParse("....|x...|....|x..."), false, 0.80},
			{pattern.MustParse("x...|...x|..x.|...."), true, 0.75},
			{pattern.MustParse("....|..x.|....|.x.."), true, 0.60},
			{pattern.MustParse("xxxx|xxxx|xxxx|xxxx"), true, 0.30},
		},
	},
	"dusty": {
		Name: "dusty",
		Tracks: [TrackCount]TrackPreset{
			{pattern.MustParse("x...|....|..x.|...."), true, 0.85},
			{pattern.MustParse("....|x...|....|x..."), true, 0.80},
			{pattern.MustParse("x...|x...|x...|x..."), true, 0.45},
			{pattern.MustParse("....|....|....|..x."), true, 0.45},
			{pattern.MustParse("....|....|....|x..."), false, 0.70},
			{pattern.MustParse("x...|....|x...|...."), true, 0.70},
			{pattern.MustParse("..x.|....|.x..|...."), true, 0.65},
			{pattern.MustParse("xxxx|xxxx|xxxx|xxxx"), true, 0.45},
		},
	},
	"halftime": {
		Name: "halftime",
		Tracks: [TrackCount]TrackPreset{
			{pattern.MustParse("x...|....|.x..|...."), true, 0.90},
			{pattern.MustParse("....|....|x...|...."), true, 0.85},
			{pattern.MustParse("x.x.|x.x.|x.x.|x.x."), true, 0.50},
			{pattern.MustParse("....|....|...x|...."), true, 0.50},
			{pattern.MustParse("....|....|x...|...."), true, 0.65},
			{pattern.MustParse("x...|....|...x|...."), true, 0.75},
			{pattern.MustParse("....|x...|....|...."), true, 0.60},
			{pattern.MustParse("xxxx|xxxx|xxxx|xxxx"), true, 0.35},
		},
	},
	"bounce": {
		Name: "bounce",
		Tracks: [TrackCount]TrackPreset{
			{pattern.MustParse("x..x|..x.|..x.|.x.."), true, 0.90},
			{pattern.MustParse("....|x...|....|x..."), true, 0.85},
			{pattern.MustParse("xxxx|xxxx|xxxx|xxxx"), true, 0.40},
			{pattern.MustParse("....|...x|....|...x"), true, 0.50},
			{pattern.MustParse("....|x...|....|x..."), true, 0.70},
			{pattern.MustParse("x..x|..x.|..x.|...."), true, 0.80},
			{pattern.MustParse("..x.|...x|...x|...."), true, 0.55},
			{pattern.MustParse("xxxx|xxxx|xxxx|xxxx"), true, 0.30},
		},
	},
	"sparse": {
		Name: "sparse",
		Tracks: [TrackCount]TrackPreset{
			{pattern.MustParse("x...|....|....|...."), true, 0.85},
			{pattern.MustParse("....|....|x...|...."), true, 0.80},
			{pattern.MustParse("....|x...|....|x..."), true, 0.45},
			{pattern.Steps{}, true, 0.45},
			{pattern.Steps{}, false, 0.70},
			{pattern.MustParse("x...|....|....|...."), true, 0.70},
			{pattern.MustParse("....|....|..x.|...."), true, 0.65},
			{pattern.MustParse("xxxx|xxxx|xxxx|xxxx"), true, 0.50},
		},
	},
}

// GetPreset returns the preset for id, falling back to the default when
// the id is unknown.
func GetPreset(id string) Preset {
	if p, ok := Presets[id]; ok {
		return p
	}
	return Presets[DefaultPreset]
}

// ApplyPreset overwrites every lane's grid, enable flag and level in one
// locked pass, so the scheduler never reads a half-applied board.
func (s *Song) ApplyPreset(p Preset) {
	s.mu.Lock()
	for i := range s.tracks {
		s.tracks[i].Steps = p.Tracks[i].Steps
		s.tracks[i].Enabled = p.Tracks[i].Enabled
		s.tracks[i].Level = p.Tracks[i].Level
	}
	s.mu.Unlock()
}
