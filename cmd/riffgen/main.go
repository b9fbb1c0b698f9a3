// This tool authors a sine test tone: it lays out the canonical WAVE
// skeleton, streams the generated frames and flushes the finished file
// with all size fields agreed up front.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/cwbudde/rifftree"
	"github.com/go-audio/audio"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("riffgen", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")
	rate := flagSet.Int("rate", 48000, "sample rate in hertz")
	channels := flagSet.Int("channels", 1, "channel count")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	log.Printf("generating a %f sec sine wav at %f hz", *length, *frequency)

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}
	defer file.Close()

	m := rifftree.NewManager(nil)
	m.Create(*channels, *rate)

	w, err := m.StreamWriter()
	if err != nil {
		return err
	}

	chans := m.Channels()
	sampleRate := m.SampleRate()
	numFrames := int(float64(sampleRate) * *length)

	buf := &audio.Float32Buffer{
		Data:   make([]float32, chans),
		Format: &audio.Format{NumChannels: chans, SampleRate: sampleRate},
	}

	for i := 0; i < numFrames; i++ {
		v := float32(math.Sin(float64(i) / float64(sampleRate) * *frequency * 2 * math.Pi))

		for ch := 0; ch < chans; ch++ {
			buf.Data[ch] = v
		}

		_, err := w.WriteFrames(buf)
		if err != nil {
			return err
		}
	}

	err = w.Flush(file)
	if err != nil {
		return err
	}

	total, err := m.TotalFileSize()
	if err != nil {
		return err
	}

	log.Printf("wrote %d frames (%d bytes)", w.Frames(), total)

	return nil
}
