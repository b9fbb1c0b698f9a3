package rifftree

// ITU-T G.711 companding. CodingALaw and CodingMuLaw store one
// compressed byte per sample; the stream converters expand and narrow
// through the segment tables below.

const (
	muLawBias = 0x84
	// muLawClip is the largest magnitude the mu-law encoder accepts
	// after the two-bit narrowing; louder input saturates to it.
	muLawClip = 8159
	aLawClip  = 0x0FFF
)

// Upper bounds of the eight chords of each companding curve.
var (
	muLawSegmentEnd = [8]int{0x3F, 0x7F, 0xFF, 0x1FF, 0x3FF, 0x7FF, 0xFFF, 0x1FFF}
	aLawSegmentEnd  = [8]int{0x1F, 0x3F, 0x7F, 0xFF, 0x1FF, 0x3FF, 0x7FF, 0xFFF}
)

// searchSegment returns the index of the first chord whose upper bound
// holds value, or len(table) when the value lies beyond the last chord.
func searchSegment(value int, table [8]int) int {
	for seg, end := range table {
		if value <= end {
			return seg
		}
	}

	return len(table)
}

// decodeMuLawSample expands one mu-law byte to linear 16-bit PCM.
func decodeMuLawSample(sample byte) int16 {
	bits := ^sample
	exponent := (bits >> 4) & 0x07
	mantissa := bits & 0x0F

	magnitude := ((int(mantissa)<<3)+muLawBias)<<exponent - muLawBias
	if bits&0x80 != 0 {
		magnitude = -magnitude
	}

	return int16(magnitude)
}

// decodeALawSample expands one A-law byte to linear 16-bit PCM. The
// sign bit polarity is inverted relative to mu-law.
func decodeALawSample(sample byte) int16 {
	bits := sample ^ 0x55
	exponent := (bits >> 4) & 0x07
	mantissa := bits & 0x0F

	magnitude := int(mantissa) << 4
	switch exponent {
	case 0:
		magnitude += 8
	case 1:
		magnitude += 0x108
	default:
		magnitude += 0x108
		magnitude <<= exponent - 1
	}

	if bits&0x80 == 0 {
		magnitude = -magnitude
	}

	return int16(magnitude)
}

// encodeMuLawSample narrows linear 16-bit PCM to one mu-law byte.
func encodeMuLawSample(pcm int16) byte {
	magnitude := int(pcm) >> 2
	mask := byte(0xFF)

	if magnitude < 0 {
		magnitude = -magnitude
		mask = 0x7F
	}

	if magnitude > muLawClip {
		magnitude = muLawClip
	}

	magnitude += muLawBias >> 2

	seg := searchSegment(magnitude, muLawSegmentEnd)
	if seg >= 8 {
		return 0x7F ^ mask
	}

	compressed := byte(seg<<4) | byte((magnitude>>(seg+1))&0x0F)

	return compressed ^ mask
}

// encodeALawSample narrows linear 16-bit PCM to one A-law byte.
func encodeALawSample(pcm int16) byte {
	magnitude := int(pcm) >> 3
	mask := byte(0xD5)

	if magnitude < 0 {
		magnitude = -magnitude - 1
		mask = 0x55
	}

	if magnitude > aLawClip {
		magnitude = aLawClip
	}

	seg := searchSegment(magnitude, aLawSegmentEnd)
	if seg >= 8 {
		return 0x7F ^ mask
	}

	compressed := byte(seg << 4)
	if seg < 2 {
		compressed |= byte((magnitude >> 1) & 0x0F)
	} else {
		compressed |= byte((magnitude >> seg) & 0x0F)
	}

	return compressed ^ mask
}
