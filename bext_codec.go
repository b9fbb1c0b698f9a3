package rifftree

import (
	"bytes"
	"encoding/binary"
	"strings"
)

const (
	bextDescriptionLen         = 256
	bextOriginatorLen          = 32
	bextOriginatorReferenceLen = 32
	bextOriginationDateLen     = 10
	bextOriginationTimeLen     = 8
	bextUMIDLen                = 64
	bextReservedLen            = 190
)

// BroadcastExtension carries the EBU broadcast extension fields.
type BroadcastExtension struct {
	Description         string
	Originator          string
	OriginatorReference string
	OriginationDate     string
	OriginationTime     string
	TimeReference       uint64
	Version             uint16
	UMID                [bextUMIDLen]byte
	Reserved            []byte
	CodingHistory       string
}

func (b *BroadcastExtension) Clone() *BroadcastExtension {
	if b == nil {
		return nil
	}

	out := *b
	out.Reserved = append([]byte(nil), b.Reserved...)

	return &out
}

// BextCodec handles the broadcast extension chunk. The fixed fields
// span 602 bytes; a coding history of any length may follow.
type BextCodec struct {
	declared int64
	bext     *BroadcastExtension
	img      []byte
}

func newBextCodec(p Probe) *BextCodec {
	declared := int64(p.Size)

	return &BextCodec{
		declared: declared,
		img:      make([]byte, leafHeaderSize+imageBodyFor(declared)),
	}
}

func (c *BextCodec) Tag() Tag {
	return TagBext
}

func (c *BextCodec) Container() bool {
	return false
}

func (c *BextCodec) Image() []byte {
	return c.img
}

func (c *BextCodec) ParseBody() error {
	buf := c.img[leafHeaderSize:]

	bext := &BroadcastExtension{}
	offset := 0

	take := func(n int) []byte {
		out := make([]byte, n)
		if offset < len(buf) {
			end := min(offset+n, len(buf))
			copy(out, buf[offset:end])
		}

		offset += n

		return out
	}

	readFixedString := func(n int) string {
		s := nullTermStr(take(n))

		return strings.TrimRight(s, " ")
	}

	bext.Description = readFixedString(bextDescriptionLen)
	bext.Originator = readFixedString(bextOriginatorLen)
	bext.OriginatorReference = readFixedString(bextOriginatorReferenceLen)
	bext.OriginationDate = readFixedString(bextOriginationDateLen)
	bext.OriginationTime = readFixedString(bextOriginationTimeLen)

	timeRefLow := binary.LittleEndian.Uint32(take(4))
	timeRefHigh := binary.LittleEndian.Uint32(take(4))
	bext.TimeReference = uint64(timeRefHigh)<<32 | uint64(timeRefLow)
	bext.Version = binary.LittleEndian.Uint16(take(2))

	copy(bext.UMID[:], take(bextUMIDLen))
	bext.Reserved = take(bextReservedLen)

	if offset < len(buf) {
		codingHistory := bytes.TrimRight(buf[offset:], "\x00")
		bext.CodingHistory = string(codingHistory)
	}

	c.bext = bext

	return nil
}

func (c *BextCodec) DeclaredSize() int64 {
	return c.declared
}

func (c *BextCodec) HeaderSize() int64 {
	return leafHeaderSize
}

func (c *BextCodec) SubSize() int64 {
	return 0
}

func (c *BextCodec) LeafSize() int64 {
	return leafSizeFor(c.declared)
}

// Extension returns a copy of the parsed broadcast fields.
func (c *BextCodec) Extension() *BroadcastExtension {
	return c.bext.Clone()
}
