package rifftree

import (
	"encoding/binary"
	"math"
)

// PeakEntry is one channel's peak sample and its frame position.
type PeakEntry struct {
	Value    float32
	Position uint32
}

// PeakCodec handles the peak envelope chunk: a version, a timestamp
// and one entry per channel.
type PeakCodec struct {
	declared  int64
	version   uint32
	timestamp uint32
	entries   []PeakEntry
	img       []byte
}

func newPeakCodec(p Probe) *PeakCodec {
	declared := int64(p.Size)

	return &PeakCodec{
		declared: declared,
		img:      make([]byte, leafHeaderSize+imageBodyFor(declared)),
	}
}

func (c *PeakCodec) Tag() Tag {
	return TagPeak
}

func (c *PeakCodec) Container() bool {
	return false
}

func (c *PeakCodec) Image() []byte {
	return c.img
}

func (c *PeakCodec) ParseBody() error {
	body := c.img[leafHeaderSize:]
	if len(body) < 8 {
		return nil
	}

	c.version = binary.LittleEndian.Uint32(body[0:4])
	c.timestamp = binary.LittleEndian.Uint32(body[4:8])

	rest := body[8:]
	for len(rest) >= 8 {
		c.entries = append(c.entries, PeakEntry{
			Value:    math.Float32frombits(binary.LittleEndian.Uint32(rest[0:4])),
			Position: binary.LittleEndian.Uint32(rest[4:8]),
		})
		rest = rest[8:]
	}

	return nil
}

func (c *PeakCodec) DeclaredSize() int64 {
	return c.declared
}

func (c *PeakCodec) HeaderSize() int64 {
	return leafHeaderSize
}

func (c *PeakCodec) SubSize() int64 {
	return 0
}

func (c *PeakCodec) LeafSize() int64 {
	return leafSizeFor(c.declared)
}

// Version is the peak chunk format version.
func (c *PeakCodec) Version() uint32 {
	return c.version
}

// Timestamp is the seconds-since-epoch stamp of the scan.
func (c *PeakCodec) Timestamp() uint32 {
	return c.timestamp
}

// Entries returns a copy of the per-channel peak entries.
func (c *PeakCodec) Entries() []PeakEntry {
	return append([]PeakEntry(nil), c.entries...)
}
