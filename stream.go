package rifftree

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
)

var (
	// ErrInvalidTree is returned by stream operations before a parse or
	// create has completed.
	ErrInvalidTree = errors.New("no valid chunk tree")
	// ErrUnsupportedCoding is returned when no sample converter exists
	// for the declared numbering system.
	ErrUnsupportedCoding = errors.New("unsupported sample coding")

	errNonCanonicalFlush = errors.New("flush supports the canonical container, format and data chunks only")
)

// sampleToFloat returns a converter from one stored sample to a
// normalized float32, plus the stored sample width.
func sampleToFloat(coding SampleCoding) (func([]byte) float32, int, error) {
	width := coding.BytesPerSample()

	switch coding.FormatTag {
	case wavFormatPCM:
		switch {
		case coding.BitDepth == 8:
			return func(b []byte) float32 {
				return normalizePCMInt(int(b[0]), 8)
			}, width, nil
		case coding.BitDepth > 8 && coding.BitDepth <= 16:
			return func(b []byte) float32 {
				return normalizePCMInt(int(int16(binary.LittleEndian.Uint16(b[:2]))), 16)
			}, width, nil
		case coding.BitDepth > 16 && coding.BitDepth <= 24:
			return func(b []byte) float32 {
				return normalizePCMInt(int(audio.Int24LETo32(b[:3])), 24)
			}, width, nil
		case coding.BitDepth > 24 && coding.BitDepth <= 32:
			return func(b []byte) float32 {
				return normalizePCMInt(int(int32(binary.LittleEndian.Uint32(b[:4]))), 32)
			}, width, nil
		}
	case wavFormatIEEEFloat:
		switch coding.BitDepth {
		case 32:
			return func(b []byte) float32 {
				value := math.Float32frombits(binary.LittleEndian.Uint32(b[:4]))

				return clampFloat32(value, -1, 1)
			}, width, nil
		case 64:
			return func(b []byte) float32 {
				value := math.Float64frombits(binary.LittleEndian.Uint64(b[:8]))

				return clampFloat32(float32(value), -1, 1)
			}, width, nil
		}
	case wavFormatALaw:
		if coding.BitDepth == 8 {
			return func(b []byte) float32 {
				return normalizePCMInt(int(decodeALawSample(b[0])), 16)
			}, width, nil
		}
	case wavFormatMuLaw:
		if coding.BitDepth == 8 {
			return func(b []byte) float32 {
				return normalizePCMInt(int(decodeMuLawSample(b[0])), 16)
			}, width, nil
		}
	}

	return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedCoding, coding)
}

// floatToSample returns a converter from a normalized float32 to one
// stored sample, plus the stored sample width.
func floatToSample(coding SampleCoding) (func([]byte, float32), int, error) {
	width := coding.BytesPerSample()

	switch coding.FormatTag {
	case wavFormatPCM:
		switch coding.BitDepth {
		case 8:
			return func(b []byte, v float32) {
				b[0] = float32ToPCMUint8(v)
			}, width, nil
		case 16:
			return func(b []byte, v float32) {
				binary.LittleEndian.PutUint16(b[:2], uint16(float32ToPCMInt32(v, 16)))
			}, width, nil
		case 24:
			return func(b []byte, v float32) {
				copy(b[:3], audio.Int32toInt24LEBytes(float32ToPCMInt32(v, 24)))
			}, width, nil
		case 32:
			return func(b []byte, v float32) {
				binary.LittleEndian.PutUint32(b[:4], uint32(float32ToPCMInt32(v, 32)))
			}, width, nil
		}
	case wavFormatIEEEFloat:
		switch coding.BitDepth {
		case 32:
			return func(b []byte, v float32) {
				binary.LittleEndian.PutUint32(b[:4], math.Float32bits(clampFloat32(v, -1, 1)))
			}, width, nil
		case 64:
			return func(b []byte, v float32) {
				binary.LittleEndian.PutUint64(b[:8], math.Float64bits(float64(clampFloat32(v, -1, 1))))
			}, width, nil
		}
	case wavFormatALaw:
		if coding.BitDepth == 8 {
			return func(b []byte, v float32) {
				b[0] = encodeALawSample(int16(float32ToPCMInt32(v, 16)))
			}, width, nil
		}
	case wavFormatMuLaw:
		if coding.BitDepth == 8 {
			return func(b []byte, v float32) {
				b[0] = encodeMuLawSample(int16(float32ToPCMInt32(v, 16)))
			}, width, nil
		}
	}

	return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedCoding, coding)
}

// StreamReader decodes sample frames straight out of the source at
// arbitrary frame positions. It never buffers the payload: each read
// fetches only the requested span.
type StreamReader struct {
	src        Source
	format     *audio.Format
	bitDepth   int
	decode     func([]byte) float32
	width      int
	channels   int
	payloadOff int64
	payloadLen int64
	pos        int64
	scratch    []byte
}

// StreamReader opens a reader over the data chunk payload. The format
// chunk picks the sample converter; extensible formats resolve through
// their sub-format.
func (m *Manager) StreamReader() (*StreamReader, error) {
	if !m.valid {
		return nil, ErrInvalidTree
	}

	if m.src == nil {
		return nil, errNoSource
	}

	fc, err := m.formatCodec()
	if err != nil {
		return nil, err
	}

	dc, err := m.dataCodec()
	if err != nil {
		return nil, err
	}

	if fc.Channels() <= 0 {
		return nil, errZeroBlockAlign
	}

	decode, width, err := sampleToFloat(fc.EffectiveCoding())
	if err != nil {
		return nil, err
	}

	dataNode := m.table.Node(m.slots.Lookup(RoleData))

	return &StreamReader{
		src:        m.src,
		format:     &audio.Format{NumChannels: fc.Channels(), SampleRate: fc.SampleRate()},
		bitDepth:   fc.BitDepth(),
		decode:     decode,
		width:      width,
		channels:   fc.Channels(),
		payloadOff: dataNode.PayloadOffset(),
		payloadLen: dc.PayloadSize(),
	}, nil
}

// FrameCount is the total number of whole frames in the payload.
func (r *StreamReader) FrameCount() int64 {
	return r.payloadLen / int64(r.width*r.channels)
}

// Tell is the current frame position.
func (r *StreamReader) Tell() int64 {
	return r.pos / int64(r.width*r.channels)
}

// SeekFrame positions the reader at the given frame.
func (r *StreamReader) SeekFrame(frame int64) error {
	if frame < 0 || frame > r.FrameCount() {
		return fmt.Errorf("frame %d out of range [0, %d]", frame, r.FrameCount())
	}

	r.pos = frame * int64(r.width*r.channels)

	return nil
}

// ReadFrames fills buf.Data with decoded samples from the current
// position and returns the number of whole frames read. Zero frames
// with a nil error means the payload is exhausted.
func (r *StreamReader) ReadFrames(buf *audio.Float32Buffer) (int, error) {
	if r == nil || buf == nil || len(buf.Data) == 0 {
		return 0, nil
	}

	buf.Format = r.format
	buf.SourceBitDepth = r.bitDepth

	frameBytes := int64(r.width * r.channels)
	want := (int64(len(buf.Data)) / int64(r.channels)) * frameBytes
	if rest := r.payloadLen - r.pos; want > rest {
		want = (rest / frameBytes) * frameBytes
	}

	if want <= 0 {
		return 0, nil
	}

	if int64(len(r.scratch)) < want {
		r.scratch = make([]byte, want)
	}

	block := r.scratch[:want]
	if err := readFull(r.src, block, r.payloadOff+r.pos); err != nil {
		return 0, fmt.Errorf("failed to read sample data: %w", err)
	}

	samples := int(want) / r.width
	for i := 0; i < samples; i++ {
		buf.Data[i] = r.decode(block[i*r.width:])
	}

	r.pos += want

	return samples / r.channels, nil
}

// StreamWriter collects sample frames for the canonical authoring
// skeleton and flushes the complete file in one pass, sizes computed
// up front by the build step rather than patched afterwards.
type StreamWriter struct {
	m       *Manager
	encode  func([]byte, float32)
	width   int
	chans   int
	payload bytes.Buffer
	frames  int64
}

// StreamWriter opens a writer for a created skeleton. The format
// chunk's coding picks the sample converter.
func (m *Manager) StreamWriter() (*StreamWriter, error) {
	if !m.valid {
		return nil, ErrInvalidTree
	}

	fc, err := m.formatCodec()
	if err != nil {
		return nil, err
	}

	if _, err := m.dataCodec(); err != nil {
		return nil, err
	}

	if _, err := m.containerCodec(); err != nil {
		return nil, err
	}

	if fc.Channels() <= 0 {
		return nil, errZeroBlockAlign
	}

	encode, width, err := floatToSample(fc.Coding())
	if err != nil {
		return nil, err
	}

	return &StreamWriter{
		m:      m,
		encode: encode,
		width:  width,
		chans:  fc.Channels(),
	}, nil
}

// WriteFrames encodes buf.Data into the pending payload and returns
// the number of whole frames taken.
func (w *StreamWriter) WriteFrames(buf *audio.Float32Buffer) (int, error) {
	if w == nil || buf == nil {
		return 0, nil
	}

	frames := len(buf.Data) / w.chans
	samples := frames * w.chans

	var tmp [8]byte
	for i := 0; i < samples; i++ {
		w.encode(tmp[:w.width], buf.Data[i])

		if _, err := w.payload.Write(tmp[:w.width]); err != nil {
			return 0, fmt.Errorf("failed to buffer sample: %w", err)
		}
	}

	w.frames += int64(frames)

	return frames, nil
}

// Frames is the number of frames written so far.
func (w *StreamWriter) Frames() int64 {
	return w.frames
}

// Flush installs the collected payload size, runs the build pass so
// every declared size agrees, and writes the file to dst: the chunk
// images in placement order, the payload, and the odd-size pad byte.
func (w *StreamWriter) Flush(dst io.Writer) error {
	if w == nil || w.m == nil {
		return ErrInvalidTree
	}

	m := w.m
	if m.table.Len() != 3 {
		return errNonCanonicalFlush
	}

	fc, err := m.formatCodec()
	if err != nil {
		return err
	}

	dc, err := m.dataCodec()
	if err != nil {
		return err
	}

	dc.SetPayloadSize(int64(w.payload.Len()))

	if n := m.table.Node(m.slots.Lookup(RoleData)); n != nil {
		n.LeafSize = dc.LeafSize()
	}

	m.frames = w.frames
	m.dirty = true

	if err := m.Build(); err != nil {
		return err
	}

	cc, err := m.containerCodec()
	if err != nil {
		return err
	}

	for _, img := range [][]byte{cc.Image(), fc.Image(), dc.Image()} {
		if _, err := dst.Write(img); err != nil {
			return fmt.Errorf("failed to write chunk image: %w", err)
		}
	}

	if _, err := dst.Write(w.payload.Bytes()); err != nil {
		return fmt.Errorf("failed to write sample data: %w", err)
	}

	if w.payload.Len()%2 == 1 {
		if _, err := dst.Write([]byte{0}); err != nil {
			return fmt.Errorf("failed to write pad byte: %w", err)
		}
	}

	return nil
}

// CopyChunk streams one chunk's complete on-disk extent from the
// source to w: header, body, pad byte and any nested chunks. It is the
// pass-through path for bucket chunks when rewriting a file.
func (m *Manager) CopyChunk(w io.Writer, i NodeIndex) (int64, error) {
	if !m.valid {
		return 0, ErrInvalidTree
	}

	if m.src == nil {
		return 0, errNoSource
	}

	n := m.table.Node(i)
	if n == nil {
		return 0, fmt.Errorf("node index %d out of range", i)
	}

	span := n.LeafSize + n.SubSize
	sec := io.NewSectionReader(m.src, n.Offset, span)

	copied, err := io.Copy(w, sec)
	if err != nil {
		return copied, fmt.Errorf("failed to copy %s chunk: %w", n.Tag, err)
	}

	return copied, nil
}
