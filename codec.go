package rifftree

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// leafHeaderSize covers the tag and size fields.
	leafHeaderSize = 8
	// containerHeaderSize additionally covers the form tag.
	containerHeaderSize = 12
	// probeSize is the fixed window fetched at every chunk boundary:
	// enough for a leaf header plus a container form tag.
	probeSize = 12
	// maxImageSize caps how many body bytes a codec may request for its
	// image, so a chunk declaring an absurd size cannot force an
	// unbounded fetch.
	maxImageSize = 64 << 10
)

var errShortProbe = errors.New("probe window shorter than a chunk header")

// Probe is the decoded fixed-size window at a chunk boundary. Form is
// only meaningful for container tags and only when the window was long
// enough to include it.
type Probe struct {
	Tag  Tag
	Size uint32
	Form Tag
}

func parseProbe(buf []byte) (Probe, error) {
	var p Probe

	if len(buf) < leafHeaderSize {
		return p, errShortProbe
	}

	copy(p.Tag[:], buf[:4])
	p.Size = binary.LittleEndian.Uint32(buf[4:8])

	if p.Tag.IsContainer() && len(buf) >= containerHeaderSize {
		copy(p.Form[:], buf[8:12])
	}

	return p, nil
}

// ChunkCodec decodes one chunk kind and reports its structural sizes.
// The builder fetches exactly the Image buffer from the source, then
// calls ParseBody; the size accessors are valid afterwards.
//
// Codecs constructed blank for authoring keep Image as the serialized
// on-disk header bytes, so a writer can emit them directly.
type ChunkCodec interface {
	Tag() Tag
	// Container reports whether the declared size spans nested chunks.
	Container() bool
	// Image is the destination buffer for the source fetch. Its length
	// is the exact byte count the codec needs.
	Image() []byte
	// ParseBody decodes the fetched image.
	ParseBody() error
	// DeclaredSize is the raw size field value.
	DeclaredSize() int64
	// HeaderSize is 8 for leaves and 12 for containers.
	HeaderSize() int64
	// SubSize is the nested chunk budget. Zero for leaves.
	SubSize() int64
	// LeafSize is the chunk's own footprint including the pad byte.
	LeafSize() int64
}

// CodecFactory resolves a probe window to a typed codec.
type CodecFactory interface {
	Resolve(p Probe) (ChunkCodec, error)
}

// CodecResolver lets callers plug custom codecs into the default
// factory. Returning nil declines the probe.
type CodecResolver func(p Probe) ChunkCodec

// DefaultFactory maps the canonical tag set to the built-in codecs and
// hands everything else to the raw codec. Custom resolvers run first.
type DefaultFactory struct {
	resolvers []CodecResolver
}

// NewDefaultFactory builds a factory with no custom resolvers.
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{}
}

// Register prepends custom resolution for probes the built-in set
// should not claim.
func (f *DefaultFactory) Register(r CodecResolver) {
	if f == nil || r == nil {
		return
	}

	f.resolvers = append(f.resolvers, r)
}

// Resolve picks the codec for the chunk starting at the probe window.
func (f *DefaultFactory) Resolve(p Probe) (ChunkCodec, error) {
	if f == nil {
		return nil, errors.New("nil codec factory")
	}

	for _, r := range f.resolvers {
		if c := r(p); c != nil {
			return c, nil
		}
	}

	switch p.Tag {
	case TagRiff, TagList:
		return newContainerCodec(p), nil
	case TagFmt:
		return newFormatCodec(p), nil
	case TagData:
		return newDataCodec(p), nil
	case TagFact:
		return newFactCodec(p), nil
	case TagBext:
		return newBextCodec(p), nil
	case TagPeak:
		return newPeakCodec(p), nil
	default:
		return newRawCodec(p), nil
	}
}

// leafSizeFor is the full leaf footprint for a declared body size:
// header, body and the odd-size pad byte.
func leafSizeFor(declared int64) int64 {
	return leafHeaderSize + declared + (declared & 1)
}

// imageBodyFor clamps a declared body size to the image cap.
func imageBodyFor(declared int64) int64 {
	if declared > maxImageSize {
		return maxImageSize
	}

	return declared
}

func imageTooShort(tag Tag, want int) error {
	return fmt.Errorf("%s image shorter than %d bytes", tag, want)
}
