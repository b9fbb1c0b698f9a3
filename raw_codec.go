package rifftree

// RawCodec handles every chunk kind without a dedicated codec. Only
// the 8-byte header is fetched; the body stays in the source and can
// be pulled on demand via the node's payload coordinates.
type RawCodec struct {
	tag      Tag
	declared int64
	img      []byte
}

func newRawCodec(p Probe) *RawCodec {
	return &RawCodec{
		tag:      p.Tag,
		declared: int64(p.Size),
		img:      make([]byte, leafHeaderSize),
	}
}

func (c *RawCodec) Tag() Tag {
	return c.tag
}

func (c *RawCodec) Container() bool {
	return false
}

func (c *RawCodec) Image() []byte {
	return c.img
}

func (c *RawCodec) ParseBody() error {
	return nil
}

func (c *RawCodec) DeclaredSize() int64 {
	return c.declared
}

func (c *RawCodec) HeaderSize() int64 {
	return leafHeaderSize
}

func (c *RawCodec) SubSize() int64 {
	return 0
}

func (c *RawCodec) LeafSize() int64 {
	return leafSizeFor(c.declared)
}
