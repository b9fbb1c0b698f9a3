package rifftree

// WAVE format category codes carried in the format chunk.
const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatALaw       = 6
	wavFormatMuLaw      = 7
	wavFormatExtensible = 0xFFFE
)

// SampleCoding names a numbering system for stored samples: the WAVE
// format category plus the bit depth of one sample.
type SampleCoding struct {
	FormatTag uint16
	BitDepth  uint16
}

var (
	// CodingPCM8 is unsigned 8-bit integer PCM.
	CodingPCM8 = SampleCoding{FormatTag: wavFormatPCM, BitDepth: 8}
	// CodingPCM16 is signed 16-bit integer PCM.
	CodingPCM16 = SampleCoding{FormatTag: wavFormatPCM, BitDepth: 16}
	// CodingPCM24 is signed 24-bit integer PCM.
	CodingPCM24 = SampleCoding{FormatTag: wavFormatPCM, BitDepth: 24}
	// CodingPCM32 is signed 32-bit integer PCM.
	CodingPCM32 = SampleCoding{FormatTag: wavFormatPCM, BitDepth: 32}
	// CodingFloat32 is IEEE 32-bit float.
	CodingFloat32 = SampleCoding{FormatTag: wavFormatIEEEFloat, BitDepth: 32}
	// CodingFloat64 is IEEE 64-bit float.
	CodingFloat64 = SampleCoding{FormatTag: wavFormatIEEEFloat, BitDepth: 64}
	// CodingALaw is ITU-T G.711 A-law companded 8-bit.
	CodingALaw = SampleCoding{FormatTag: wavFormatALaw, BitDepth: 8}
	// CodingMuLaw is ITU-T G.711 mu-law companded 8-bit.
	CodingMuLaw = SampleCoding{FormatTag: wavFormatMuLaw, BitDepth: 8}
)

// BytesPerSample is the storage footprint of one sample, rounding the
// bit depth up to whole bytes.
func (c SampleCoding) BytesPerSample() int {
	if c.BitDepth == 0 {
		return 0
	}

	return (int(c.BitDepth)-1)/8 + 1
}

// BlockAlign is the storage footprint of one frame across channels.
func (c SampleCoding) BlockAlign(channels int) int {
	return channels * c.BytesPerSample()
}

func (c SampleCoding) String() string {
	switch c.FormatTag {
	case wavFormatPCM:
		switch c.BitDepth {
		case 8:
			return "pcm8"
		case 16:
			return "pcm16"
		case 24:
			return "pcm24"
		case 32:
			return "pcm32"
		}
	case wavFormatIEEEFloat:
		switch c.BitDepth {
		case 32:
			return "float32"
		case 64:
			return "float64"
		}
	case wavFormatALaw:
		return "alaw"
	case wavFormatMuLaw:
		return "mulaw"
	}

	return "unknown"
}
