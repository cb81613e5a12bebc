package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dchessher/lofi-beat-mixer"
	"github.com/dchessher/lofi-beat-mixer/internal/effects"
	"github.com/dchessher/lofi-beat-mixer/internal/midiout"
	"github.com/dchessher/lofi-beat-mixer/internal/sequencer"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		presetID   = flag.String("preset", sequencer.DefaultPreset, "starting pattern preset")
		tempo      = flag.Float64("tempo", 88, "tempo in beats per minute (20..300)")
		swing      = flag.Float64("swing", 0.12, "swing amount (0..0.6)")
		bars       = flag.Int("bars", 4, "stop after N bars (0 = play until interrupted)")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
		fx         = flag.String("fx", lofibeat.DefaultEffects, "comma separated master effect chain (empty = dry)")
		midiPort   = flag.String("midi", "", "also send triggers to the first MIDI out port matching this substring")
		list       = flag.Bool("list", false, "list presets, effects and MIDI ports, then exit")
	)
	flag.Parse()

	if *list {
		printInventory()
		return
	}

	opts := []lofibeat.MixerOption{
		lofibeat.WithPreset(*presetID),
		lofibeat.WithTempo(*tempo),
		lofibeat.WithSwing(*swing),
		lofibeat.WithEffects(*fx),
		lofibeat.WithBarLimit(*bars),
	}

	if *midiPort != "" {
		sender, err := midiout.Open(*midiPort, midiout.DefaultGate)
		if err != nil {
			log.Fatal(err)
		}
		defer midiout.CloseDriver()
		defer sender.Close()
		fmt.Printf("midi out: %s\n", sender.Port())
		opts = append(opts, lofibeat.WithTriggerSink(sender))
	}

	mixer, err := lofibeat.NewMixer(*sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer mixer.Close()
	mixer.SetMasterVolume(*volume)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	events := mixer.Watch()
	if err := mixer.Play(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("playing %s at %.0f bpm\n", mixer.Preset(), mixer.Tempo())

	bar := 0
	for {
		select {
		case event := <-events:
			switch event.Kind {
			case lofibeat.EventStep:
				if event.Step == 0 {
					bar++
					fmt.Printf("bar %d\n", bar)
				}
			case lofibeat.EventTrigger:
				fmt.Printf("  %s (track %d)\n", event.Piece, event.Track)
			case lofibeat.EventStopped:
				fmt.Println("playback stopped")
				goto done
			}
		case <-interrupt:
			mixer.Stop()
		}
	}
done:
	mixer.Wait()
	// Leave the device open a moment so delay and reverb tails ring out.
	time.Sleep(600 * time.Millisecond)
}

func printInventory() {
	fmt.Println("presets:")
	for _, id := range sequencer.PresetOrder {
		fmt.Printf("  %-9s %s\n", id, sequencer.GetPreset(id).Name)
	}
	fmt.Println("effects:")
	for _, name := range effects.Names() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("midi out ports:")
	ports := midiout.Ports()
	if len(ports) == 0 {
		fmt.Println("  (none)")
	}
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}
}
