package rifftree

import "math"

// Converters between the normalized float32 samples the stream layer
// works in and the stored integer PCM codings. The G.711 codings reach
// these through their 16-bit expansion.

const (
	maxPCMInt8Unsigned = 255
	scalePCMInt8       = 127.5
	scalePCMInt16      = 32768.0
	scalePCMInt24      = 8388608.0
	scalePCMInt32      = 2147483648.0
	floatPCM8Center    = 127.5
	floatPCM8Scale     = 127.5
	maxPCMInt16        = 32767
	maxPCMInt24        = 8388607
	maxPCMInt32        = 2147483647
)

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// normalizePCMInt maps one stored integer sample onto [-1, 1]. The
// 8-bit coding is unsigned around a half-step midpoint; the wider
// codings are signed.
func normalizePCMInt(sample int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32((float64(sample) - floatPCM8Center) / scalePCMInt8)
	case 16:
		return float32(float64(sample) / scalePCMInt16)
	case 24:
		return float32(float64(sample) / scalePCMInt24)
	case 32:
		return float32(float64(sample) / scalePCMInt32)
	}

	return 0
}

// float32ToPCMUint8 narrows a normalized sample to the unsigned 8-bit
// coding, rounding to nearest.
func float32ToPCMUint8(value float32) uint8 {
	value = clampFloat32(value, -1, 1)

	scaled := int(math.Round(float64((value + 1.0) * floatPCM8Scale)))
	if scaled < 0 {
		return 0
	}

	if scaled > maxPCMInt8Unsigned {
		return maxPCMInt8Unsigned
	}

	return uint8(scaled)
}

// float32ToPCMInt32 narrows a normalized sample to a signed PCM coding
// of the given depth. Unsupported depths narrow to zero.
func float32ToPCMInt32(value float32, bitDepth int) int32 {
	var (
		scale float64
		limit int64
	)

	switch bitDepth {
	case 16:
		scale, limit = scalePCMInt16, maxPCMInt16
	case 24:
		scale, limit = scalePCMInt24, maxPCMInt24
	case 32:
		scale, limit = scalePCMInt32, maxPCMInt32
	default:
		return 0
	}

	value = clampFloat32(value, -1, 1)

	sample := min(int64(math.Round(float64(value)*scale)), limit)
	if float64(sample) < -scale {
		sample = int64(-scale)
	}

	return int32(sample)
}
