package rifftree

import "fmt"

// maxFrameCount caps the frame count a caller can install.
const maxFrameCount = 1_000_000_000

// FrameCount is the stream length in frames, zero before a parse or
// create has derived it.
func (m *Manager) FrameCount() int64 {
	return m.frames
}

// SetFrameCount clamps n into [1, maxFrameCount], installs it, resizes
// the data payload to n times the frame footprint and returns the
// effective count. The container size field is stale until Build runs.
func (m *Manager) SetFrameCount(n int64) (int64, error) {
	fc, err := m.formatCodec()
	if err != nil {
		return 0, err
	}

	dc, err := m.dataCodec()
	if err != nil {
		return 0, err
	}

	if n < 1 {
		n = 1
	}

	if n > maxFrameCount {
		n = maxFrameCount
	}

	m.frames = n
	m.resizeData(fc, dc)

	return n, nil
}

// SetChannelCount clamps and installs the channel count, then resizes
// the data payload for the changed frame footprint. The effective
// count is returned.
func (m *Manager) SetChannelCount(ch int) (int, error) {
	fc, err := m.formatCodec()
	if err != nil {
		return 0, err
	}

	dc, err := m.dataCodec()
	if err != nil {
		return 0, err
	}

	eff := fc.SetChannels(ch)
	m.resizeData(fc, dc)

	return eff, nil
}

// SetSampleCoding installs the sample numbering system, resizes the
// data payload for the changed frame footprint and returns the
// effective coding.
func (m *Manager) SetSampleCoding(coding SampleCoding) (SampleCoding, error) {
	fc, err := m.formatCodec()
	if err != nil {
		return SampleCoding{}, err
	}

	dc, err := m.dataCodec()
	if err != nil {
		return SampleCoding{}, err
	}

	eff := fc.SetCoding(coding)
	m.resizeData(fc, dc)

	return eff, nil
}

// SetSampleRate clamps and installs the frame rate. The data payload
// does not depend on it, so only the format chunk is touched.
func (m *Manager) SetSampleRate(fs int) (int, error) {
	fc, err := m.formatCodec()
	if err != nil {
		return 0, err
	}

	eff := fc.SetSampleRate(fs)
	m.dirty = true

	return eff, nil
}

// resizeData recomputes the data payload from the frame count and the
// format's frame footprint, and refreshes the node snapshot.
func (m *Manager) resizeData(fc *FormatCodec, dc *DataCodec) {
	dc.SetPayloadSize(m.frames * int64(fc.BlockAlign()))

	if n := m.table.Node(m.slots.Lookup(RoleData)); n != nil {
		n.LeafSize = dc.LeafSize()
	}

	m.dirty = true
}

// Build recomputes the container's declared size from the table so
// every size field agrees before bytes are flushed: the metadata span
// minus the container header plus the padded sample payload.
func (m *Manager) Build() error {
	cc, err := m.containerCodec()
	if err != nil {
		return err
	}

	dc, err := m.dataCodec()
	if err != nil {
		return err
	}

	meta := m.metaBytes()
	padded := dc.LeafSize() - leafHeaderSize
	cc.SetDeclaredSize(meta - leafHeaderSize + padded)

	if n := m.table.Node(m.slots.Lookup(RoleContainer)); n != nil {
		n.SubSize = cc.SubSize()
	}

	m.dirty = false

	return nil
}

// TotalFileSize is the byte size a flush of the current state
// produces: the metadata span plus the padded sample payload.
func (m *Manager) TotalFileSize() (int64, error) {
	dc, err := m.dataCodec()
	if err != nil {
		return 0, err
	}

	return m.metaBytes() + dc.LeafSize() - leafHeaderSize, nil
}

// metaBytes is the byte span of everything except the sample payload:
// bare headers for containers and the data chunk, full padded leaves
// for everything else.
func (m *Manager) metaBytes() int64 {
	dataIdx := m.slots.Lookup(RoleData)

	var total int64
	for i := 0; i < m.table.Len(); i++ {
		idx := NodeIndex(i)
		n := m.table.Node(idx)

		if n.Container || idx == dataIdx {
			total += n.HeaderSize

			continue
		}

		total += n.LeafSize
	}

	return total
}

// deriveFrameCount divides the data payload by the frame footprint.
// Both canonical chunks must be present and the footprint positive.
func (m *Manager) deriveFrameCount() error {
	fc, err := m.formatCodec()
	if err != nil {
		return fmt.Errorf("frame count underivable: %w", err)
	}

	dc, err := m.dataCodec()
	if err != nil {
		return fmt.Errorf("frame count underivable: %w", err)
	}

	ba := fc.BlockAlign()
	if ba <= 0 {
		return fmt.Errorf("frame count underivable: %w", errZeroBlockAlign)
	}

	m.frames = dc.PayloadSize() / int64(ba)

	return nil
}
