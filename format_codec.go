package rifftree

import (
	"encoding/binary"
	"fmt"
)

const (
	// fmtCoreSize is the mandatory span of the format chunk body.
	fmtCoreSize = 16
	// fmtExtensibleSize is the extension span WAVE_FORMAT_EXTENSIBLE needs.
	fmtExtensibleSize = 22
	maxChannels       = 0xFFFF
)

// FormatExtensible stores WAVE_FORMAT_EXTENSIBLE extra fields.
type FormatExtensible struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
	ExtraData          []byte
}

func (f *FormatExtensible) Clone() *FormatExtensible {
	if f == nil {
		return nil
	}

	out := *f
	out.ExtraData = append([]byte(nil), f.ExtraData...)

	return &out
}

// FormatCodec handles the format chunk. It carries the stream
// parameters the consistency engine reads and writes; the setters
// clamp instead of rejecting and keep the derived fields and the
// serialized image in step.
type FormatCodec struct {
	formatTag      uint16
	numChannels    uint16
	sampleRate     uint32
	avgBytesPerSec uint32
	blockAlign     uint16
	bitsPerSample  uint16
	extraData      []byte
	extensible     *FormatExtensible

	declared int64
	img      []byte
}

func newFormatCodec(p Probe) *FormatCodec {
	declared := int64(p.Size)

	return &FormatCodec{
		declared: declared,
		img:      make([]byte, leafHeaderSize+imageBodyFor(declared)),
	}
}

// NewBlankFormatCodec builds a write-mode format chunk: 16-bit PCM at
// the given channel count and sample rate, both clamped to be positive.
func NewBlankFormatCodec(channels, sampleRate int) *FormatCodec {
	c := &FormatCodec{
		declared: fmtCoreSize,
		img:      make([]byte, leafHeaderSize+fmtCoreSize),
	}

	c.formatTag = wavFormatPCM
	c.bitsPerSample = 16
	c.SetChannels(channels)
	c.SetSampleRate(sampleRate)

	return c
}

func (c *FormatCodec) Tag() Tag {
	return TagFmt
}

func (c *FormatCodec) Container() bool {
	return false
}

func (c *FormatCodec) Image() []byte {
	return c.img
}

func (c *FormatCodec) ParseBody() error {
	body := c.img[leafHeaderSize:]
	if len(body) < fmtCoreSize {
		return fmt.Errorf("fmt chunk body %d bytes, need %d", len(body), fmtCoreSize)
	}

	c.formatTag = binary.LittleEndian.Uint16(body[0:2])
	c.numChannels = binary.LittleEndian.Uint16(body[2:4])
	c.sampleRate = binary.LittleEndian.Uint32(body[4:8])
	c.avgBytesPerSec = binary.LittleEndian.Uint32(body[8:12])
	c.blockAlign = binary.LittleEndian.Uint16(body[12:14])
	c.bitsPerSample = binary.LittleEndian.Uint16(body[14:16])

	if c.declared <= fmtCoreSize || len(body) < fmtCoreSize+2 {
		return nil
	}

	extraSize := int(binary.LittleEndian.Uint16(body[16:18]))
	extra := body[18:]
	if extraSize < len(extra) {
		extra = extra[:extraSize]
	}

	c.extraData = append([]byte(nil), extra...)

	if c.formatTag != wavFormatExtensible || len(c.extraData) < fmtExtensibleSize {
		return nil
	}

	ext := &FormatExtensible{}
	ext.ValidBitsPerSample = binary.LittleEndian.Uint16(c.extraData[0:2])
	ext.ChannelMask = binary.LittleEndian.Uint32(c.extraData[2:6])
	copy(ext.SubFormat[:], c.extraData[6:22])

	if len(c.extraData) > fmtExtensibleSize {
		ext.ExtraData = append(ext.ExtraData, c.extraData[fmtExtensibleSize:]...)
	}

	c.extensible = ext

	return nil
}

func (c *FormatCodec) DeclaredSize() int64 {
	return c.declared
}

func (c *FormatCodec) HeaderSize() int64 {
	return leafHeaderSize
}

func (c *FormatCodec) SubSize() int64 {
	return 0
}

func (c *FormatCodec) LeafSize() int64 {
	return leafSizeFor(c.declared)
}

// Channels is the channel count.
func (c *FormatCodec) Channels() int {
	return int(c.numChannels)
}

// SampleRate is the frame rate in Hz.
func (c *FormatCodec) SampleRate() int {
	return int(c.sampleRate)
}

// BitDepth is the stored bits per sample.
func (c *FormatCodec) BitDepth() int {
	return int(c.bitsPerSample)
}

// BlockAlign is the byte footprint of one frame across channels.
func (c *FormatCodec) BlockAlign() int {
	return int(c.blockAlign)
}

// AvgBytesPerSec is the declared byte rate.
func (c *FormatCodec) AvgBytesPerSec() int {
	return int(c.avgBytesPerSec)
}

// Coding is the declared numbering system of stored samples.
func (c *FormatCodec) Coding() SampleCoding {
	return SampleCoding{FormatTag: c.formatTag, BitDepth: c.bitsPerSample}
}

// EffectiveCoding resolves WAVE_FORMAT_EXTENSIBLE to the coding named
// by its sub-format GUID.
func (c *FormatCodec) EffectiveCoding() SampleCoding {
	coding := c.Coding()
	if c.formatTag == wavFormatExtensible && c.extensible != nil {
		coding.FormatTag = binary.LittleEndian.Uint16(c.extensible.SubFormat[:2])
	}

	return coding
}

// Extensible returns a copy of the extensible extra fields, if present.
func (c *FormatCodec) Extensible() *FormatExtensible {
	return c.extensible.Clone()
}

// ExtraData returns a copy of the raw format extension bytes.
func (c *FormatCodec) ExtraData() []byte {
	return append([]byte(nil), c.extraData...)
}

// SetChannels clamps ch into [1, 65535], installs it and returns the
// effective value.
func (c *FormatCodec) SetChannels(ch int) int {
	if ch < 1 {
		ch = 1
	}

	if ch > maxChannels {
		ch = maxChannels
	}

	c.numChannels = uint16(ch)
	c.recompute()

	return int(c.numChannels)
}

// SetSampleRate clamps fs to be positive, installs it and returns the
// effective value.
func (c *FormatCodec) SetSampleRate(fs int) int {
	if fs < 1 {
		fs = 1
	}

	c.sampleRate = uint32(fs)
	c.recompute()

	return int(c.sampleRate)
}

// SetCoding installs the numbering system and returns the effective
// value. Extensible extras from a previous parse are discarded.
func (c *FormatCodec) SetCoding(coding SampleCoding) SampleCoding {
	c.formatTag = coding.FormatTag
	c.bitsPerSample = coding.BitDepth
	c.extraData = nil
	c.extensible = nil
	c.recompute()

	return c.Coding()
}

// recompute refreshes the derived rate fields and the image after a
// parameter change.
func (c *FormatCodec) recompute() {
	c.blockAlign = uint16(c.Coding().BlockAlign(int(c.numChannels)))
	c.avgBytesPerSec = c.sampleRate * uint32(c.blockAlign)
	c.serialize()
}

// serialize refreshes the header and core fields of the image. Parsed
// extension bytes past the core are left as fetched.
func (c *FormatCodec) serialize() {
	if len(c.img) < leafHeaderSize+fmtCoreSize {
		return
	}

	tag := TagFmt
	copy(c.img[0:4], tag[:])
	binary.LittleEndian.PutUint32(c.img[4:8], uint32(c.declared))

	body := c.img[leafHeaderSize:]
	binary.LittleEndian.PutUint16(body[0:2], c.formatTag)
	binary.LittleEndian.PutUint16(body[2:4], c.numChannels)
	binary.LittleEndian.PutUint32(body[4:8], c.sampleRate)
	binary.LittleEndian.PutUint32(body[8:12], c.avgBytesPerSec)
	binary.LittleEndian.PutUint16(body[12:14], c.blockAlign)
	binary.LittleEndian.PutUint16(body[14:16], c.bitsPerSample)
}
