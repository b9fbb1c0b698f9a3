package rifftree

import "encoding/binary"

// FactCodec handles the fact chunk, which carries the frame count for
// codings where the data payload alone cannot express it.
type FactCodec struct {
	declared     int64
	sampleFrames uint32
	img          []byte
}

func newFactCodec(p Probe) *FactCodec {
	declared := int64(p.Size)

	return &FactCodec{
		declared: declared,
		img:      make([]byte, leafHeaderSize+imageBodyFor(declared)),
	}
}

func (c *FactCodec) Tag() Tag {
	return TagFact
}

func (c *FactCodec) Container() bool {
	return false
}

func (c *FactCodec) Image() []byte {
	return c.img
}

func (c *FactCodec) ParseBody() error {
	body := c.img[leafHeaderSize:]
	if len(body) >= 4 {
		c.sampleFrames = binary.LittleEndian.Uint32(body[0:4])
	}

	return nil
}

func (c *FactCodec) DeclaredSize() int64 {
	return c.declared
}

func (c *FactCodec) HeaderSize() int64 {
	return leafHeaderSize
}

func (c *FactCodec) SubSize() int64 {
	return 0
}

func (c *FactCodec) LeafSize() int64 {
	return leafSizeFor(c.declared)
}

// SampleFrames is the frame count declared by the chunk.
func (c *FactCodec) SampleFrames() uint32 {
	return c.sampleFrames
}
