package rifftree

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// smpl chunk layout is documented here:
// https://sites.google.com/site/musicgapi/technical-documents/wav-file-format#smpl

// SampleLoop is one loop descriptor from the sampler chunk.
type SampleLoop struct {
	CuePointID [4]byte
	Type       uint32
	Start      uint32
	End        uint32
	Fraction   uint32
	PlayCount  uint32
}

// SamplerInfo carries the sampler chunk fields.
type SamplerInfo struct {
	Manufacturer      [4]byte
	Product           [4]byte
	SamplePeriod      uint32
	MIDIUnityNote     uint32
	MIDIPitchFraction uint32
	SMPTEFormat       uint32
	SMPTEOffset       uint32
	NumSampleLoops    uint32
	Loops             []*SampleLoop
}

// CuePoint is one marker from the cue chunk.
type CuePoint struct {
	ID           [4]byte
	Position     uint32
	DataChunkID  [4]byte
	ChunkStart   uint32
	BlockStart   uint32
	SampleOffset uint32
}

// ReadSamplerInfo decodes the sampler chunk from the bucket, fetching
// its body through the source. It returns nil without error when the
// file has no sampler chunk.
func (m *Manager) ReadSamplerInfo() (*SamplerInfo, error) {
	idx := m.slots.BucketFind(m.table, TagSmpl)
	if idx == NoNode {
		return nil, nil
	}

	buf, err := m.fetchPayload(m.table.Node(idx))
	if err != nil {
		return nil, fmt.Errorf("failed to read the smpl chunk: %w", err)
	}

	info := &SamplerInfo{}
	r := bytes.NewReader(buf)

	scratch := make([]byte, 4)
	if _, err := r.Read(scratch); err != nil {
		return nil, fmt.Errorf("failed to read the smpl manufacturer: %w", err)
	}

	copy(info.Manufacturer[:], scratch[:4])

	if _, err := r.Read(scratch); err != nil {
		return nil, fmt.Errorf("failed to read the smpl product: %w", err)
	}

	copy(info.Product[:], scratch[:4])

	for _, field := range []*uint32{
		&info.SamplePeriod,
		&info.MIDIUnityNote,
		&info.MIDIPitchFraction,
		&info.SMPTEFormat,
		&info.SMPTEOffset,
		&info.NumSampleLoops,
	} {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("failed to read smpl fields: %w", err)
		}
	}

	// sampler-specific trailing data size, unused here
	var remaining uint32
	if err := binary.Read(r, binary.LittleEndian, &remaining); err != nil {
		return nil, fmt.Errorf("failed to read remaining sampler data: %w", err)
	}

	for i := uint32(0); i < info.NumSampleLoops; i++ {
		loop := &SampleLoop{}

		if _, err := r.Read(scratch); err != nil {
			return nil, fmt.Errorf("failed to read the sample loop cue point id: %w", err)
		}

		copy(loop.CuePointID[:], scratch[:4])

		for _, field := range []*uint32{
			&loop.Type,
			&loop.Start,
			&loop.End,
			&loop.Fraction,
			&loop.PlayCount,
		} {
			if err := binary.Read(r, binary.LittleEndian, field); err != nil {
				return nil, fmt.Errorf("failed to read sample loop fields: %w", err)
			}
		}

		info.Loops = append(info.Loops, loop)
	}

	return info, nil
}

// ReadCuePoints decodes the cue chunk from the bucket, fetching its
// body through the source. It returns nil without error when the file
// has no cue chunk.
func (m *Manager) ReadCuePoints() ([]*CuePoint, error) {
	idx := m.slots.BucketFind(m.table, TagCue)
	if idx == NoNode {
		return nil, nil
	}

	buf, err := m.fetchPayload(m.table.Node(idx))
	if err != nil {
		return nil, fmt.Errorf("failed to read the cue chunk: %w", err)
	}

	r := bytes.NewReader(buf)

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read cue point count: %w", err)
	}

	var points []*CuePoint

	for i := uint32(0); i < count; i++ {
		point := &CuePoint{}

		if err := binary.Read(r, binary.LittleEndian, &point.ID); err != nil {
			return nil, fmt.Errorf("failed to read cue point id: %w", err)
		}

		if err := binary.Read(r, binary.LittleEndian, &point.Position); err != nil {
			return nil, fmt.Errorf("failed to read cue point position: %w", err)
		}

		if err := binary.Read(r, binary.LittleEndian, &point.DataChunkID); err != nil {
			return nil, fmt.Errorf("failed to read cue point chunk id: %w", err)
		}

		for _, field := range []*uint32{
			&point.ChunkStart,
			&point.BlockStart,
			&point.SampleOffset,
		} {
			if err := binary.Read(r, binary.LittleEndian, field); err != nil {
				return nil, fmt.Errorf("failed to read cue point fields: %w", err)
			}
		}

		points = append(points, point)
	}

	return points, nil
}
