package synth

// Kit piece ids in track order for the default eight-track layout.
var DefaultPieces = []string{
	"kick", "snare", "hatclosed", "hatopen", "clap", "bass", "keys", "crackle",
}

// Pieces maps a kit piece id to its voice recipe. Tunings follow the usual
// analog drum targets: a swept sine body for the kick, tone-plus-noise for
// the snare, high-passed noise with metallic partials for the hats.
var Pieces = map[string]VoiceSpec{
	"kick": {
		Components: []ComponentSpec{
			{Source: SourceSine, FreqHz: 150, SweepTo: 48, SweepSec: 0.055, Gain: 0.92},
			{Source: SourcePulse, FreqHz: 2100, Gain: 0.10, Duty: 0.25, Filter: FilterLP, CutoffHz: 4000},
			{Source: SourceSine, FreqHz: 330, Gain: 0.06},
		},
		AttackSec: 0.002,
		DecaySec:  0.30,
	},
	"snare": {
		Components: []ComponentSpec{
			{Source: SourceSine, FreqHz: 188, Gain: 0.42},
			{Source: SourceSine, FreqHz: 356, Gain: 0.18},
			{Source: SourceWhite, Gain: 0.55, Filter: FilterBP, CutoffHz: 2000},
			{Source: SourceWhite, Gain: 0.25, Filter: FilterHP, CutoffHz: 4500},
		},
		AttackSec: 0.001,
		DecaySec:  0.17,
	},
	"hatclosed": {
		Components: []ComponentSpec{
			{Source: SourceWhite, Gain: 0.55, Filter: FilterHP, CutoffHz: 7000},
			{Source: SourcePulse, FreqHz: 7300, Gain: 0.16, Duty: 0.5},
			{Source: SourcePulse, FreqHz: 9200, Gain: 0.10, Duty: 0.5},
		},
		AttackSec:  0.001,
		DecaySec:   0.07,
		ChokeGroup: 1,
	},
	"hatopen": {
		Components: []ComponentSpec{
			{Source: SourceWhite, Gain: 0.50, Filter: FilterHP, CutoffHz: 6500},
			{Source: SourcePulse, FreqHz: 7300, Gain: 0.14, Duty: 0.5},
			{Source: SourcePulse, FreqHz: 9200, Gain: 0.09, Duty: 0.5},
		},
		AttackSec:  0.001,
		DecaySec:   0.38,
		ChokeGroup: 1,
	},
	"clap": {
		Components: []ComponentSpec{
			{Source: SourceWhite, Gain: 0.75, Filter: FilterBP, CutoffHz: 1200},
			{Source: SourceWhite, Gain: 0.35, Filter: FilterBP, CutoffHz: 2600},
		},
		AttackSec:  0.001,
		DecaySec:   0.22,
		Stutters:   3,
		StutterSec: 0.011,
	},
	"bass": {
		Components: []ComponentSpec{
			{Source: SourceFM, FreqHz: 55, ModRatio: 2, ModIndex: 0.8, Gain: 0.85},
		},
		AttackSec:   0.004,
		DecaySec:    0.32,
		WarbleDepth: 0.04,
		WarbleHz:    4.6,
	},
	"keys": {
		Components: []ComponentSpec{
			{Source: SourceFM, FreqHz: 220, ModRatio: 3, ModIndex: 2.2, Gain: 0.48},
			{Source: SourceSine, FreqHz: 440, Gain: 0.10},
		},
		AttackSec:   0.003,
		DecaySec:    0.55,
		WarbleDepth: 0.09,
		WarbleHz:    5.4,
	},
	"crackle": {
		Components: []ComponentSpec{
			{Source: SourcePink, Gain: 0.55, Filter: FilterLP, CutoffHz: 7500},
		},
		AttackSec: 0.0005,
		DecaySec:  0.09,
	},
}

// GetPiece returns the recipe for a kit piece id, falling back to the kick.
func GetPiece(id string) VoiceSpec {
	if spec, ok := Pieces[id]; ok {
		return spec
	}
	return Pieces["kick"]
}
