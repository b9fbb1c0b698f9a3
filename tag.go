package rifftree

import "github.com/go-audio/riff"

// Tag is a four-character chunk identifier.
type Tag [4]byte

var (
	// TagRiff is the top-level container tag.
	TagRiff = Tag(riff.RiffID)
	// TagList is the nested container tag.
	TagList = Tag{'L', 'I', 'S', 'T'}
	// TagWave is the WAVE form tag.
	TagWave = Tag(riff.WavFormatID)
	// TagFlac is the FLAC stream marker tag.
	TagFlac = Tag{'f', 'L', 'a', 'C'}
	// TagFmt is the format chunk tag.
	TagFmt = Tag(riff.FmtID)
	// TagData is the sample data chunk tag.
	TagData = Tag(riff.DataFormatID)
	// TagFact is the fact chunk tag.
	TagFact = Tag{'f', 'a', 'c', 't'}
	// TagBext is the broadcast extension chunk tag.
	TagBext = Tag{'b', 'e', 'x', 't'}
	// TagPad is the padding chunk tag.
	TagPad = Tag{'P', 'A', 'D', 0x20}
	// TagJunk is the filler chunk tag.
	TagJunk = Tag{'J', 'U', 'N', 'K'}
	// TagCue is the cue point chunk tag.
	TagCue = Tag{'c', 'u', 'e', 0x20}
	// TagWavl is the wave list tag.
	TagWavl = Tag{'w', 'a', 'v', 'l'}
	// TagSlnt is the silence chunk tag.
	TagSlnt = Tag{'s', 'l', 'n', 't'}
	// TagInfo is the INFO list form tag.
	TagInfo = Tag{'I', 'N', 'F', 'O'}
	// TagPeak is the peak envelope chunk tag.
	TagPeak = Tag{'P', 'E', 'A', 'K'}
	// TagLabl is the cue label chunk tag.
	TagLabl = Tag{'l', 'a', 'b', 'l'}
	// TagNote is the cue note chunk tag.
	TagNote = Tag{'n', 'o', 't', 'e'}
	// TagLtxt is the labeled text chunk tag.
	TagLtxt = Tag{'l', 't', 'x', 't'}
	// TagPlst is the playlist chunk tag.
	TagPlst = Tag{'p', 'l', 's', 't'}
	// TagSmpl is the sampler chunk tag.
	TagSmpl = Tag{'s', 'm', 'p', 'l'}
	// TagInst is the instrument chunk tag.
	TagInst = Tag{'i', 'n', 's', 't'}
)

// TagFrom builds a Tag from the first four bytes of s, padding short
// input with spaces.
func TagFrom(s string) Tag {
	t := Tag{0x20, 0x20, 0x20, 0x20}
	copy(t[:], s)

	return t
}

// String renders the tag, replacing non-printable bytes with '.'.
func (t Tag) String() string {
	out := [4]byte{}
	for i, b := range t {
		if b < 0x20 || b > 0x7e {
			b = '.'
		}

		out[i] = b
	}

	return string(out[:])
}

// IsContainer reports whether the tag names a container chunk kind,
// one whose declared size spans nested chunks.
func (t Tag) IsContainer() bool {
	return t == TagRiff || t == TagList
}

// Role is the canonical slot a chunk is filed under.
type Role int

const (
	// RoleUnclassified marks chunks kept in the ordered side bucket.
	RoleUnclassified Role = iota
	// RoleContainer marks the outermost container chunk.
	RoleContainer
	// RoleFormat marks the stream format chunk.
	RoleFormat
	// RoleData marks the sample data chunk.
	RoleData
	// RoleFact marks the fact chunk.
	RoleFact
	// RoleBroadcast marks the broadcast extension chunk.
	RoleBroadcast
	// RolePad marks the padding chunk.
	RolePad
	// RoleInfo marks the INFO metadata chunk.
	RoleInfo
	// RolePeak marks the peak envelope chunk.
	RolePeak
)

var roleNames = map[Role]string{
	RoleUnclassified: "unclassified",
	RoleContainer:    "container",
	RoleFormat:       "format",
	RoleData:         "data",
	RoleFact:         "fact",
	RoleBroadcast:    "broadcast",
	RolePad:          "pad",
	RoleInfo:         "info",
	RolePeak:         "peak",
}

func (r Role) String() string {
	name, ok := roleNames[r]
	if !ok {
		return "unknown"
	}

	return name
}

// roleTable maps tags to their canonical roles. Tags absent from the
// table classify as RoleUnclassified; container tags are special-cased
// by the classifier because RIFF claims the container slot while LIST
// lands in the bucket unless it carries the INFO form.
var roleTable = map[Tag]Role{
	TagFmt:  RoleFormat,
	TagData: RoleData,
	TagFact: RoleFact,
	TagBext: RoleBroadcast,
	TagPad:  RolePad,
	TagInfo: RoleInfo,
	TagPeak: RolePeak,
}

func roleForTag(t Tag) Role {
	role, ok := roleTable[t]
	if !ok {
		return RoleUnclassified
	}

	return role
}
