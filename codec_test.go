package rifftree

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestParseProbe(t *testing.T) {
	leaf := make([]byte, 8)
	copy(leaf[0:4], "fmt ")
	binary.LittleEndian.PutUint32(leaf[4:8], 16)

	p, err := parseProbe(leaf)
	if err != nil {
		t.Fatalf("parse leaf probe: %v", err)
	}

	if p.Tag != TagFmt || p.Size != 16 || p.Form != (Tag{}) {
		t.Fatalf("leaf probe=%+v, want fmt/16/zero form", p)
	}

	container := make([]byte, 12)
	copy(container[0:4], "RIFF")
	binary.LittleEndian.PutUint32(container[4:8], 4036)
	copy(container[8:12], "WAVE")

	p, err = parseProbe(container)
	if err != nil {
		t.Fatalf("parse container probe: %v", err)
	}

	if p.Tag != TagRiff || p.Size != 4036 || p.Form != TagWave {
		t.Fatalf("container probe=%+v, want RIFF/4036/WAVE", p)
	}

	// A container probe cut off before the form tag keeps the form zero.
	p, err = parseProbe(container[:8])
	if err != nil {
		t.Fatalf("parse truncated container probe: %v", err)
	}

	if p.Form != (Tag{}) {
		t.Fatalf("truncated container form=%v, want zero", p.Form)
	}

	if _, err := parseProbe(leaf[:7]); err != errShortProbe {
		t.Fatalf("short probe error=%v, want %v", err, errShortProbe)
	}
}

func TestLeafSizeFor(t *testing.T) {
	tests := []struct {
		declared int64
		want     int64
	}{
		{0, 8},
		{1, 10},
		{2, 10},
		{3, 12},
		{16, 24},
		{17, 26},
		{4000, 4008},
	}

	for _, tt := range tests {
		if got := leafSizeFor(tt.declared); got != tt.want {
			t.Fatalf("leafSizeFor(%d)=%d, want %d", tt.declared, got, tt.want)
		}
	}
}

func TestDefaultFactoryResolve(t *testing.T) {
	factory := NewDefaultFactory()

	tests := []struct {
		tag  Tag
		want string
	}{
		{TagRiff, "*rifftree.ContainerCodec"},
		{TagList, "*rifftree.ContainerCodec"},
		{TagFmt, "*rifftree.FormatCodec"},
		{TagData, "*rifftree.DataCodec"},
		{TagFact, "*rifftree.FactCodec"},
		{TagBext, "*rifftree.BextCodec"},
		{TagPeak, "*rifftree.PeakCodec"},
		{TagJunk, "*rifftree.RawCodec"},
		{TagSmpl, "*rifftree.RawCodec"},
		{TagFrom("wild"), "*rifftree.RawCodec"},
	}

	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			codec, err := factory.Resolve(Probe{Tag: tt.tag, Size: 16})
			if err != nil {
				t.Fatalf("resolve %s: %v", tt.tag, err)
			}

			if got := typeName(codec); got != tt.want {
				t.Fatalf("resolved %s to %s, want %s", tt.tag, got, tt.want)
			}

			if codec.Tag() != tt.tag {
				t.Fatalf("codec tag=%s, want %s", codec.Tag(), tt.tag)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *ContainerCodec:
		return "*rifftree.ContainerCodec"
	case *FormatCodec:
		return "*rifftree.FormatCodec"
	case *DataCodec:
		return "*rifftree.DataCodec"
	case *FactCodec:
		return "*rifftree.FactCodec"
	case *BextCodec:
		return "*rifftree.BextCodec"
	case *PeakCodec:
		return "*rifftree.PeakCodec"
	case *RawCodec:
		return "*rifftree.RawCodec"
	default:
		return "unknown"
	}
}

func TestFactoryCustomResolverWins(t *testing.T) {
	factory := NewDefaultFactory()
	factory.Register(func(p Probe) ChunkCodec {
		if p.Tag == TagJunk {
			return newFactCodec(p)
		}

		return nil
	})

	codec, err := factory.Resolve(Probe{Tag: TagJunk, Size: 4})
	if err != nil {
		t.Fatalf("resolve with custom resolver: %v", err)
	}

	if _, ok := codec.(*FactCodec); !ok {
		t.Fatalf("custom resolver ignored, got %T", codec)
	}

	// Probes the resolver declines fall through to the built-in set.
	codec, err = factory.Resolve(Probe{Tag: TagData, Size: 4})
	if err != nil {
		t.Fatalf("resolve declined probe: %v", err)
	}

	if _, ok := codec.(*DataCodec); !ok {
		t.Fatalf("declined probe resolved to %T, want *DataCodec", codec)
	}
}

func TestContainerCodecParse(t *testing.T) {
	codec := newContainerCodec(Probe{Tag: TagRiff, Size: 100})

	img := codec.Image()
	if len(img) != containerHeaderSize {
		t.Fatalf("container image length=%d, want %d", len(img), containerHeaderSize)
	}

	copy(img[0:4], "RIFF")
	binary.LittleEndian.PutUint32(img[4:8], 100)
	copy(img[8:12], "WAVE")

	if err := codec.ParseBody(); err != nil {
		t.Fatalf("parse container body: %v", err)
	}

	if codec.Form() != TagWave {
		t.Fatalf("form=%s, want WAVE", codec.Form())
	}

	if codec.DeclaredSize() != 100 || codec.SubSize() != 96 {
		t.Fatalf("declared=%d sub=%d, want 100/96", codec.DeclaredSize(), codec.SubSize())
	}

	if codec.HeaderSize() != 12 || codec.LeafSize() != 12 {
		t.Fatalf("header=%d leaf=%d, want 12/12", codec.HeaderSize(), codec.LeafSize())
	}

	if !codec.Container() {
		t.Fatal("container codec should report Container")
	}
}

func TestContainerCodecRejectsTinySize(t *testing.T) {
	codec := newContainerCodec(Probe{Tag: TagList, Size: 3})
	copy(codec.Image()[0:4], "LIST")

	if err := codec.ParseBody(); err == nil {
		t.Fatal("declared size below the form tag should fail")
	}
}

func TestBlankContainerCodec(t *testing.T) {
	codec := NewBlankContainerCodec(TagRiff, TagWave)

	want := append([]byte("RIFF"), 0x04, 0x00, 0x00, 0x00)
	want = append(want, "WAVE"...)
	if !bytes.Equal(codec.Image(), want) {
		t.Fatalf("blank container image=%v, want %v", codec.Image(), want)
	}

	if codec.SubSize() != 0 {
		t.Fatalf("blank container sub size=%d, want 0", codec.SubSize())
	}

	codec.SetDeclaredSize(4036)

	if got := binary.LittleEndian.Uint32(codec.Image()[4:8]); got != 4036 {
		t.Fatalf("image size field=%d after set, want 4036", got)
	}

	if codec.SubSize() != 4032 {
		t.Fatalf("sub size=%d after set, want 4032", codec.SubSize())
	}
}

func TestFormatCodecParseCore(t *testing.T) {
	payload := makeFormatPayload(t, wavFormatPCM, 2, 44100, 16)

	codec := newFormatCodec(Probe{Tag: TagFmt, Size: uint32(len(payload))})
	copy(codec.Image(), makeTestChunk(t, "fmt ", payload))

	if err := codec.ParseBody(); err != nil {
		t.Fatalf("parse fmt body: %v", err)
	}

	if codec.Channels() != 2 || codec.SampleRate() != 44100 || codec.BitDepth() != 16 {
		t.Fatalf("parsed %d ch %d Hz %d bits, want 2/44100/16",
			codec.Channels(), codec.SampleRate(), codec.BitDepth())
	}

	if codec.BlockAlign() != 4 || codec.AvgBytesPerSec() != 176400 {
		t.Fatalf("block align=%d byte rate=%d, want 4/176400",
			codec.BlockAlign(), codec.AvgBytesPerSec())
	}

	if codec.Coding() != CodingPCM16 || codec.EffectiveCoding() != CodingPCM16 {
		t.Fatalf("coding=%s effective=%s, want pcm16", codec.Coding(), codec.EffectiveCoding())
	}

	if codec.Extensible() != nil {
		t.Fatal("core fmt should have no extensible fields")
	}

	if codec.LeafSize() != 24 {
		t.Fatalf("leaf size=%d, want 24", codec.LeafSize())
	}
}

func TestFormatCodecParseExtensible(t *testing.T) {
	body := make([]byte, 40)
	binary.LittleEndian.PutUint16(body[0:2], wavFormatExtensible)
	binary.LittleEndian.PutUint16(body[2:4], 2)
	binary.LittleEndian.PutUint32(body[4:8], 48000)
	binary.LittleEndian.PutUint32(body[8:12], 384000)
	binary.LittleEndian.PutUint16(body[12:14], 8)
	binary.LittleEndian.PutUint16(body[14:16], 32)
	binary.LittleEndian.PutUint16(body[16:18], 22)
	// Extension: 24 valid bits, channel mask 0x3, PCM sub-format GUID.
	binary.LittleEndian.PutUint16(body[18:20], 24)
	binary.LittleEndian.PutUint32(body[20:24], 0x3)
	binary.LittleEndian.PutUint16(body[24:26], wavFormatPCM)

	codec := newFormatCodec(Probe{Tag: TagFmt, Size: 40})
	copy(codec.Image(), makeTestChunk(t, "fmt ", body))

	if err := codec.ParseBody(); err != nil {
		t.Fatalf("parse extensible fmt: %v", err)
	}

	if codec.Coding().FormatTag != wavFormatExtensible {
		t.Fatalf("declared format tag=%d, want extensible", codec.Coding().FormatTag)
	}

	effective := codec.EffectiveCoding()
	if effective.FormatTag != wavFormatPCM || effective.BitDepth != 32 {
		t.Fatalf("effective coding=%+v, want PCM/32", effective)
	}

	ext := codec.Extensible()
	if ext == nil {
		t.Fatal("extensible fields missing")
	}

	if ext.ValidBitsPerSample != 24 || ext.ChannelMask != 0x3 {
		t.Fatalf("extensible=%+v, want valid bits 24 mask 0x3", ext)
	}

	if got := len(codec.ExtraData()); got != 22 {
		t.Fatalf("extra data length=%d, want 22", got)
	}
}

func TestFormatCodecParseExtensionWithoutExtensible(t *testing.T) {
	body := make([]byte, 18)
	copy(body[0:16], makeFormatPayload(t, wavFormatPCM, 1, 8000, 16))
	binary.LittleEndian.PutUint16(body[16:18], 0)

	codec := newFormatCodec(Probe{Tag: TagFmt, Size: 18})
	copy(codec.Image(), makeTestChunk(t, "fmt ", body))

	if err := codec.ParseBody(); err != nil {
		t.Fatalf("parse 18 byte fmt: %v", err)
	}

	if codec.Extensible() != nil {
		t.Fatal("plain PCM with empty extension should have no extensible fields")
	}

	if codec.Coding() != CodingPCM16 {
		t.Fatalf("coding=%s, want pcm16", codec.Coding())
	}
}

func TestFormatCodecParseTooShort(t *testing.T) {
	codec := newFormatCodec(Probe{Tag: TagFmt, Size: 10})

	if err := codec.ParseBody(); err == nil {
		t.Fatal("fmt body below the core size should fail")
	}
}

func TestFormatCodecSetters(t *testing.T) {
	codec := NewBlankFormatCodec(2, 44100)

	if codec.Channels() != 2 || codec.SampleRate() != 44100 {
		t.Fatalf("blank fmt %d ch %d Hz, want 2/44100", codec.Channels(), codec.SampleRate())
	}

	if codec.Coding() != CodingPCM16 || codec.BlockAlign() != 4 {
		t.Fatalf("blank coding=%s align=%d, want pcm16/4", codec.Coding(), codec.BlockAlign())
	}

	if got := codec.SetChannels(0); got != 1 {
		t.Fatalf("SetChannels(0)=%d, want 1", got)
	}

	if got := codec.SetChannels(70000); got != maxChannels {
		t.Fatalf("SetChannels(70000)=%d, want %d", got, maxChannels)
	}

	if got := codec.SetChannels(3); got != 3 {
		t.Fatalf("SetChannels(3)=%d, want 3", got)
	}

	if got := codec.SetSampleRate(0); got != 1 {
		t.Fatalf("SetSampleRate(0)=%d, want 1", got)
	}

	if got := codec.SetSampleRate(48000); got != 48000 {
		t.Fatalf("SetSampleRate(48000)=%d, want 48000", got)
	}

	if got := codec.SetCoding(CodingFloat64); got != CodingFloat64 {
		t.Fatalf("SetCoding=%s, want float64", got)
	}

	if codec.BlockAlign() != 24 || codec.AvgBytesPerSec() != 48000*24 {
		t.Fatalf("align=%d rate=%d after float64, want 24/%d",
			codec.BlockAlign(), codec.AvgBytesPerSec(), 48000*24)
	}

	// The serialized image tracks every change.
	body := codec.Image()[leafHeaderSize:]
	if binary.LittleEndian.Uint16(body[0:2]) != wavFormatIEEEFloat {
		t.Fatalf("image format tag=%d, want IEEE float", binary.LittleEndian.Uint16(body[0:2]))
	}

	if binary.LittleEndian.Uint16(body[2:4]) != 3 {
		t.Fatalf("image channels=%d, want 3", binary.LittleEndian.Uint16(body[2:4]))
	}

	if binary.LittleEndian.Uint32(body[4:8]) != 48000 {
		t.Fatalf("image rate=%d, want 48000", binary.LittleEndian.Uint32(body[4:8]))
	}

	if binary.LittleEndian.Uint16(body[14:16]) != 64 {
		t.Fatalf("image bit depth=%d, want 64", binary.LittleEndian.Uint16(body[14:16]))
	}
}

func TestDataCodec(t *testing.T) {
	codec := newDataCodec(Probe{Tag: TagData, Size: 4000})

	if len(codec.Image()) != leafHeaderSize {
		t.Fatalf("data image length=%d, want %d", len(codec.Image()), leafHeaderSize)
	}

	if codec.PayloadSize() != 4000 || codec.LeafSize() != 4008 {
		t.Fatalf("payload=%d leaf=%d, want 4000/4008", codec.PayloadSize(), codec.LeafSize())
	}

	blank := NewBlankDataCodec()
	if blank.PayloadSize() != 0 {
		t.Fatalf("blank payload=%d, want 0", blank.PayloadSize())
	}

	blank.SetPayloadSize(-3)
	if blank.PayloadSize() != 0 {
		t.Fatalf("negative payload clamped to %d, want 0", blank.PayloadSize())
	}

	blank.SetPayloadSize(4001)
	if blank.PayloadSize() != 4001 || blank.LeafSize() != 4010 {
		t.Fatalf("payload=%d leaf=%d after set, want 4001/4010", blank.PayloadSize(), blank.LeafSize())
	}

	if got := binary.LittleEndian.Uint32(blank.Image()[4:8]); got != 4001 {
		t.Fatalf("image size field=%d, want 4001", got)
	}

	if !bytes.Equal(blank.Image()[0:4], []byte("data")) {
		t.Fatalf("image tag=%q, want data", blank.Image()[0:4])
	}
}

func TestFactCodec(t *testing.T) {
	codec := newFactCodec(Probe{Tag: TagFact, Size: 4})

	img := codec.Image()
	copy(img[0:4], "fact")
	binary.LittleEndian.PutUint32(img[4:8], 4)
	binary.LittleEndian.PutUint32(img[8:12], 1234)

	if err := codec.ParseBody(); err != nil {
		t.Fatalf("parse fact body: %v", err)
	}

	if codec.SampleFrames() != 1234 {
		t.Fatalf("sample frames=%d, want 1234", codec.SampleFrames())
	}

	short := newFactCodec(Probe{Tag: TagFact, Size: 2})
	if err := short.ParseBody(); err != nil {
		t.Fatalf("parse short fact body: %v", err)
	}

	if short.SampleFrames() != 0 {
		t.Fatalf("short fact frames=%d, want 0", short.SampleFrames())
	}
}

func TestPeakCodecParse(t *testing.T) {
	var body bytes.Buffer
	binary.Write(&body, binary.LittleEndian, uint32(1))
	binary.Write(&body, binary.LittleEndian, uint32(1700000000))
	binary.Write(&body, binary.LittleEndian, math.Float32bits(0.5))
	binary.Write(&body, binary.LittleEndian, uint32(1234))
	binary.Write(&body, binary.LittleEndian, math.Float32bits(-0.25))
	binary.Write(&body, binary.LittleEndian, uint32(99))

	codec := newPeakCodec(Probe{Tag: TagPeak, Size: uint32(body.Len())})
	copy(codec.Image(), makeTestChunk(t, "PEAK", body.Bytes()))

	if err := codec.ParseBody(); err != nil {
		t.Fatalf("parse peak body: %v", err)
	}

	if codec.Version() != 1 || codec.Timestamp() != 1700000000 {
		t.Fatalf("version=%d timestamp=%d, want 1/1700000000", codec.Version(), codec.Timestamp())
	}

	entries := codec.Entries()
	if len(entries) != 2 {
		t.Fatalf("entry count=%d, want 2", len(entries))
	}

	if entries[0].Value != 0.5 || entries[0].Position != 1234 {
		t.Fatalf("entry 0=%+v, want 0.5@1234", entries[0])
	}

	if entries[1].Value != -0.25 || entries[1].Position != 99 {
		t.Fatalf("entry 1=%+v, want -0.25@99", entries[1])
	}

	// The returned slice is a copy.
	entries[0].Position = 7
	if codec.Entries()[0].Position != 1234 {
		t.Fatal("mutating returned entries changed the codec state")
	}
}

func TestBextCodecParse(t *testing.T) {
	fixed := make([]byte, 602)
	copy(fixed[0:], "Morning session take 3")
	copy(fixed[256:], "Studio A   ")
	copy(fixed[288:], "REF-0042")
	copy(fixed[320:], "2024-01-15")
	copy(fixed[330:], "12:30:45")
	binary.LittleEndian.PutUint32(fixed[338:342], 0x44332211)
	binary.LittleEndian.PutUint32(fixed[342:346], 0x00000001)
	binary.LittleEndian.PutUint16(fixed[346:348], 1)

	for i := 348; i < 348+bextUMIDLen; i++ {
		fixed[i] = 0xAB
	}

	history := "A=PCM,F=48000,W=16,M=stereo\r\n\x00"
	body := append(fixed, history...)

	codec := newBextCodec(Probe{Tag: TagBext, Size: uint32(len(body))})
	img := codec.Image()
	copy(img[0:4], "bext")
	binary.LittleEndian.PutUint32(img[4:8], uint32(len(body)))
	copy(img[8:], body)

	if err := codec.ParseBody(); err != nil {
		t.Fatalf("parse bext body: %v", err)
	}

	ext := codec.Extension()
	if ext == nil {
		t.Fatal("extension missing after parse")
	}

	if ext.Description != "Morning session take 3" {
		t.Fatalf("description=%q", ext.Description)
	}

	// Trailing padding spaces are trimmed.
	if ext.Originator != "Studio A" {
		t.Fatalf("originator=%q, want %q", ext.Originator, "Studio A")
	}

	if ext.OriginatorReference != "REF-0042" {
		t.Fatalf("originator reference=%q", ext.OriginatorReference)
	}

	if ext.OriginationDate != "2024-01-15" || ext.OriginationTime != "12:30:45" {
		t.Fatalf("origination=%q %q", ext.OriginationDate, ext.OriginationTime)
	}

	if ext.TimeReference != 0x0000000144332211 {
		t.Fatalf("time reference=%#x, want 0x144332211", ext.TimeReference)
	}

	if ext.Version != 1 {
		t.Fatalf("version=%d, want 1", ext.Version)
	}

	for i := range ext.UMID {
		if ext.UMID[i] != 0xAB {
			t.Fatalf("UMID byte %d=%#x, want 0xAB", i, ext.UMID[i])
		}
	}

	if ext.CodingHistory != "A=PCM,F=48000,W=16,M=stereo\r\n" {
		t.Fatalf("coding history=%q", ext.CodingHistory)
	}
}

func TestBextCodecParseShortBody(t *testing.T) {
	body := make([]byte, 300)
	copy(body[0:], "Short")
	copy(body[256:], "Orig")

	codec := newBextCodec(Probe{Tag: TagBext, Size: 300})
	img := codec.Image()
	copy(img[0:4], "bext")
	binary.LittleEndian.PutUint32(img[4:8], 300)
	copy(img[8:], body)

	if err := codec.ParseBody(); err != nil {
		t.Fatalf("parse short bext body: %v", err)
	}

	ext := codec.Extension()
	if ext.Description != "Short" || ext.Originator != "Orig" {
		t.Fatalf("short bext fields=%q %q", ext.Description, ext.Originator)
	}

	if ext.TimeReference != 0 || ext.Version != 0 || ext.CodingHistory != "" {
		t.Fatalf("fields past the body should stay zero: %+v", ext)
	}
}

func TestRawCodec(t *testing.T) {
	codec := newRawCodec(Probe{Tag: TagFrom("xtra"), Size: 7})

	if codec.Tag() != TagFrom("xtra") || codec.Container() {
		t.Fatalf("raw codec tag=%s container=%t", codec.Tag(), codec.Container())
	}

	if len(codec.Image()) != leafHeaderSize {
		t.Fatalf("raw image length=%d, want %d", len(codec.Image()), leafHeaderSize)
	}

	if codec.DeclaredSize() != 7 || codec.LeafSize() != 16 {
		t.Fatalf("declared=%d leaf=%d, want 7/16", codec.DeclaredSize(), codec.LeafSize())
	}

	if err := codec.ParseBody(); err != nil {
		t.Fatalf("raw parse body: %v", err)
	}
}
