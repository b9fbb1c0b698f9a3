package rifftree

import "encoding/binary"

// DataCodec handles the sample data chunk. The body is never fetched
// into the image: payloads are read on demand through the Source by
// the stream layer, so the image stays at the 8-byte header.
type DataCodec struct {
	declared int64
	img      []byte
}

func newDataCodec(p Probe) *DataCodec {
	return &DataCodec{
		declared: int64(p.Size),
		img:      make([]byte, leafHeaderSize),
	}
}

// NewBlankDataCodec builds a write-mode data chunk with an empty
// payload.
func NewBlankDataCodec() *DataCodec {
	c := &DataCodec{img: make([]byte, leafHeaderSize)}
	c.serialize()

	return c
}

func (c *DataCodec) Tag() Tag {
	return TagData
}

func (c *DataCodec) Container() bool {
	return false
}

func (c *DataCodec) Image() []byte {
	return c.img
}

func (c *DataCodec) ParseBody() error {
	return nil
}

func (c *DataCodec) DeclaredSize() int64 {
	return c.declared
}

func (c *DataCodec) HeaderSize() int64 {
	return leafHeaderSize
}

func (c *DataCodec) SubSize() int64 {
	return 0
}

func (c *DataCodec) LeafSize() int64 {
	return leafSizeFor(c.declared)
}

// PayloadSize is the declared sample payload in bytes.
func (c *DataCodec) PayloadSize() int64 {
	return c.declared
}

// SetPayloadSize installs the payload byte count the consistency
// engine derived and refreshes the serialized image.
func (c *DataCodec) SetPayloadSize(v int64) {
	if v < 0 {
		v = 0
	}

	c.declared = v
	c.serialize()
}

func (c *DataCodec) serialize() {
	tag := TagData
	copy(c.img[0:4], tag[:])
	binary.LittleEndian.PutUint32(c.img[4:8], uint32(c.declared))
}
