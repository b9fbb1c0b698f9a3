package rifftree

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"
)

// Test fixtures are composed in memory with the on-disk byte layout:
// four byte tag, little-endian size, payload, pad byte when odd.

func writeTestChunk(t *testing.T, b *bytes.Buffer, id string, payload []byte) {
	t.Helper()

	if len(id) != 4 {
		t.Fatalf("chunk id must be 4 bytes, got %q", id)
	}

	b.WriteString(id)

	err := binary.Write(b, binary.LittleEndian, uint32(len(payload)))
	if err != nil {
		t.Fatalf("write chunk size for %q: %v", id, err)
	}

	if _, err := b.Write(payload); err != nil {
		t.Fatalf("write chunk payload for %q: %v", id, err)
	}

	if len(payload)%2 == 1 {
		if err := b.WriteByte(0); err != nil {
			t.Fatalf("write chunk pad for %q: %v", id, err)
		}
	}
}

func makeTestChunk(t *testing.T, id string, payload []byte) []byte {
	t.Helper()

	var b bytes.Buffer
	writeTestChunk(t, &b, id, payload)

	return b.Bytes()
}

// makeTestContainer wraps the already padded children in a container
// chunk whose declared size covers the form tag plus the children.
func makeTestContainer(t *testing.T, id, form string, children ...[]byte) []byte {
	t.Helper()

	if len(id) != 4 || len(form) != 4 {
		t.Fatalf("container id and form must be 4 bytes each, got %q %q", id, form)
	}

	var body bytes.Buffer
	for _, child := range children {
		body.Write(child)
	}

	var b bytes.Buffer
	b.WriteString(id)

	err := binary.Write(&b, binary.LittleEndian, uint32(formTagSize+body.Len()))
	if err != nil {
		t.Fatalf("write container size for %q: %v", id, err)
	}

	b.WriteString(form)
	b.Write(body.Bytes())

	return b.Bytes()
}

func makeFormatPayload(t *testing.T, formatTag uint16, channels, sampleRate, bitDepth int) []byte {
	t.Helper()

	bytesPerSample := 0
	if bitDepth > 0 {
		bytesPerSample = (bitDepth-1)/8 + 1
	}

	blockAlign := channels * bytesPerSample

	payload := make([]byte, fmtCoreSize)
	binary.LittleEndian.PutUint16(payload[0:2], formatTag)
	binary.LittleEndian.PutUint16(payload[2:4], uint16(channels))
	binary.LittleEndian.PutUint32(payload[4:8], uint32(sampleRate))
	binary.LittleEndian.PutUint32(payload[8:12], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(payload[12:14], uint16(blockAlign))
	binary.LittleEndian.PutUint16(payload[14:16], uint16(bitDepth))

	return payload
}

// makeMinimalWave builds the canonical three chunk layout: a WAVE
// container holding a PCM format chunk and a data chunk with the given
// payload.
func makeMinimalWave(t *testing.T, channels, sampleRate, bitDepth int, dataPayload []byte) []byte {
	t.Helper()

	return makeTestContainer(t, "RIFF", "WAVE",
		makeTestChunk(t, "fmt ", makeFormatPayload(t, wavFormatPCM, channels, sampleRate, bitDepth)),
		makeTestChunk(t, "data", dataPayload),
	)
}

func parseTestManager(t *testing.T, data []byte) *Manager {
	t.Helper()

	m := NewManager(NewBufferSource(data))
	if err := m.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	return m
}

type testChunk struct {
	id   string
	size uint32
	data []byte
}

// parseTestChunks walks a flat WAVE file and inventories the top level
// chunks after the RIFF header.
func parseTestChunks(data []byte) ([]testChunk, error) {
	if len(data) < containerHeaderSize {
		return nil, errors.New("file too small")
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errors.New("invalid riff/wave header")
	}

	chunks := make([]testChunk, 0)

	offset := containerHeaderSize
	for offset+leafHeaderSize <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += leafHeaderSize

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("chunk %q exceeds file size", id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}

func float32ApproxEqual(value, expected, epsilon float32) bool {
	diff := value - expected
	if diff < 0 {
		diff = -diff
	}

	return diff <= epsilon
}
