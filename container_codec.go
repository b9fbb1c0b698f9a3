package rifftree

import (
	"encoding/binary"
	"fmt"
)

// formTagSize is the slice of a container's declared size spent on the
// form tag rather than on nested chunks.
const formTagSize = 4

// ContainerCodec handles the RIFF and LIST chunk kinds. The declared
// size covers the form tag plus all nested chunks; the codec reports
// the nested share as SubSize so the tree builder can budget the
// descent.
type ContainerCodec struct {
	tag      Tag
	declared int64
	form     Tag
	img      []byte
}

func newContainerCodec(p Probe) *ContainerCodec {
	return &ContainerCodec{
		tag:      p.Tag,
		declared: int64(p.Size),
		img:      make([]byte, containerHeaderSize),
	}
}

// NewBlankContainerCodec builds a write-mode container carrying form.
// The nested budget stays empty until a build pass installs it.
func NewBlankContainerCodec(tag, form Tag) *ContainerCodec {
	c := &ContainerCodec{
		tag:      tag,
		declared: formTagSize,
		form:     form,
		img:      make([]byte, containerHeaderSize),
	}
	c.serialize()

	return c
}

func (c *ContainerCodec) Tag() Tag {
	return c.tag
}

func (c *ContainerCodec) Container() bool {
	return true
}

func (c *ContainerCodec) Image() []byte {
	return c.img
}

func (c *ContainerCodec) ParseBody() error {
	if len(c.img) < containerHeaderSize {
		return imageTooShort(c.tag, containerHeaderSize)
	}

	if c.declared < formTagSize {
		return fmt.Errorf("%s declared size %d cannot hold a form tag", c.tag, c.declared)
	}

	copy(c.form[:], c.img[8:12])

	return nil
}

func (c *ContainerCodec) DeclaredSize() int64 {
	return c.declared
}

func (c *ContainerCodec) HeaderSize() int64 {
	return containerHeaderSize
}

func (c *ContainerCodec) SubSize() int64 {
	return c.declared - formTagSize
}

func (c *ContainerCodec) LeafSize() int64 {
	return containerHeaderSize
}

// Form is the container form tag, WAVE for canonical audio files.
func (c *ContainerCodec) Form() Tag {
	return c.form
}

// SetDeclaredSize installs the recomputed size field during a build
// pass and refreshes the serialized image.
func (c *ContainerCodec) SetDeclaredSize(v int64) {
	c.declared = v
	c.serialize()
}

func (c *ContainerCodec) serialize() {
	copy(c.img[0:4], c.tag[:])
	binary.LittleEndian.PutUint32(c.img[4:8], uint32(c.declared))
	copy(c.img[8:12], c.form[:])
}
