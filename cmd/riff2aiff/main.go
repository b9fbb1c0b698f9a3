// This tool converts a wav file into an identical aiff file and stores
// it in the same folder as the source.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/cwbudde/rifftree"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

var flagPath = flag.String("path", "", "The path to the wav file to convert to aiff")

func main() {
	flag.Parse()

	if *flagPath == "" {
		fmt.Println("You must set the -path flag")
		os.Exit(1)
	}

	usr, err := user.Current()
	if err != nil {
		log.Println("Failed to get the user home directory")
		os.Exit(1)
	}

	sourcePath := *flagPath
	if strings.HasPrefix(sourcePath, "~/") {
		sourcePath = strings.Replace(sourcePath, "~", usr.HomeDir, 1)
	}

	src, err := rifftree.OpenFileSource(sourcePath)
	if err != nil {
		fmt.Println("Invalid path", *flagPath, err)
		os.Exit(1)
	}
	defer src.Close()

	m := rifftree.NewManager(src)
	if err := m.Parse(); err != nil {
		fmt.Println("invalid WAV file:", err)
		os.Exit(1)
	}

	reader, err := m.StreamReader()
	if err != nil {
		fmt.Println("cannot read sample data:", err)
		os.Exit(1)
	}

	outPath := sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))] + ".aif"

	outFile, err := os.Create(outPath)
	if err != nil {
		fmt.Println("Failed to create", outPath)
		panic(err)
	}
	defer outFile.Close()

	bitDepth := int(m.Coding().BitDepth)
	encoder := aiff.NewEncoder(outFile, m.SampleRate(), bitDepth, m.Channels())

	format := &audio.Format{
		NumChannels: m.Channels(),
		SampleRate:  m.SampleRate(),
	}

	bufferSize := 1000000
	buf := &audio.Float32Buffer{Data: make([]float32, bufferSize), Format: format}

	for {
		num, err := reader.ReadFrames(buf)
		if err != nil {
			panic(err)
		}

		if num == 0 {
			break
		}

		data := buf.Data
		if samples := num * m.Channels(); samples != len(data) {
			data = data[:samples]
		}

		intBuf := float32ToIntBuffer(data, format, bitDepth)

		err = encoder.Write(intBuf)
		if err != nil {
			panic(err)
		}
	}

	if err := encoder.Close(); err != nil {
		panic(err)
	}

	fmt.Printf("Wav file converted to %s\n", outPath)
}

func float32ToIntBuffer(data []float32, format *audio.Format, bitDepth int) *audio.IntBuffer {
	intBuf := &audio.IntBuffer{
		Format:         format,
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(data)),
	}
	for i, v := range data {
		intBuf.Data[i] = float32ToPCMInt(v, bitDepth)
	}

	return intBuf
}

func float32ToPCMInt(value float32, bitDepth int) int {
	value = clampFloat32(value, -1, 1)

	switch bitDepth {
	case 8:
		return int(float32ToPCMUint8(value))
	case 16:
		return int(float32ToPCMInt32(value, 16))
	case 24:
		return int(float32ToPCMInt32(value, 24))
	case 32:
		return int(float32ToPCMInt32(value, 32))
	default:
		return 0
	}
}

func float32ToPCMUint8(value float32) uint8 {
	value = clampFloat32(value, -1, 1)

	scaled := int(math.Round(float64((value + 1.0) * 127.5)))
	if scaled < 0 {
		return 0
	}

	if scaled > 255 {
		return 255
	}

	return uint8(scaled)
}

func float32ToPCMInt32(value float32, bitDepth int) int32 {
	value = clampFloat32(value, -1, 1)

	switch bitDepth {
	case 16:
		return clampScaledPCM(value, 32768.0, 32767)
	case 24:
		return clampScaledPCM(value, 8388608.0, 8388607)
	case 32:
		return clampScaledPCM(value, 2147483648.0, 2147483647)
	default:
		return 0
	}
}

func clampScaledPCM(value float32, scale float64, max int64) int32 {
	sample := min(int64(math.Round(float64(value)*scale)), max)

	if floor := int64(-scale); sample < floor {
		sample = floor
	}

	return int32(sample)
}

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}
