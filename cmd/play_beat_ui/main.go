package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dchessher/lofi-beat-mixer"
	"github.com/dchessher/lofi-beat-mixer/internal/midiout"
	"github.com/dchessher/lofi-beat-mixer/internal/sequencer"
	"github.com/dchessher/lofi-beat-mixer/internal/theme"
	"github.com/dchessher/lofi-beat-mixer/internal/tui"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		presetID   = flag.String("preset", sequencer.DefaultPreset, "starting pattern preset")
		tempo      = flag.Float64("tempo", 88, "tempo in beats per minute (20..300)")
		swing      = flag.Float64("swing", 0.12, "swing amount (0..0.6)")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
		fx         = flag.String("fx", lofibeat.DefaultEffects, "comma separated master effect chain (empty = dry)")
		midiPort   = flag.String("midi", "", "also send triggers to the first MIDI out port matching this substring")
	)
	flag.Parse()

	opts := []lofibeat.MixerOption{
		lofibeat.WithPreset(*presetID),
		lofibeat.WithTempo(*tempo),
		lofibeat.WithSwing(*swing),
		lofibeat.WithEffects(*fx),
	}

	if *midiPort != "" {
		sender, err := midiout.Open(*midiPort, midiout.DefaultGate)
		if err != nil {
			log.Fatal(err)
		}
		defer midiout.CloseDriver()
		defer sender.Close()
		opts = append(opts, lofibeat.WithTriggerSink(sender))
	}

	mixer, err := lofibeat.NewMixer(*sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer mixer.Close()
	mixer.SetMasterVolume(*volume)

	model := tui.NewModel(mixer, theme.Default())
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
