package rifftree

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// INFO list entry markers.
// See http://bwfmetaedit.sourceforge.net/listinfo.html
var (
	markerIART    = TagFrom("IART")
	markerISFT    = TagFrom("ISFT")
	markerICRD    = TagFrom("ICRD")
	markerICOP    = TagFrom("ICOP")
	markerIARL    = TagFrom("IARL")
	markerINAM    = TagFrom("INAM")
	markerIENG    = TagFrom("IENG")
	markerIGNR    = TagFrom("IGNR")
	markerIPRD    = TagFrom("IPRD")
	markerISRC    = TagFrom("ISRC")
	markerISBJ    = TagFrom("ISBJ")
	markerICMT    = TagFrom("ICMT")
	markerITRK    = TagFrom("ITRK")
	markerITRKBug = TagFrom("itrk")
	markerITCH    = TagFrom("ITCH")
	markerIKEY    = TagFrom("IKEY")
	markerIMED    = TagFrom("IMED")
)

// Metadata collects the textual INFO list entries.
type Metadata struct {
	Artist       string
	Title        string
	Comments     string
	Copyright    string
	CreationDate string
	Engineer     string
	Technician   string
	Genre        string
	Keywords     string
	Medium       string
	Product      string
	Subject      string
	Software     string
	Source       string
	Location     string
	TrackNbr     string
}

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}

// ReadInfoMetadata assembles the Metadata from the INFO chunk's child
// entries, fetching each value on demand through the source. It
// returns nil without error when the file has no INFO chunk.
func (m *Manager) ReadInfoMetadata() (*Metadata, error) {
	if m.src == nil {
		return nil, errNoSource
	}

	info := m.table.Node(m.slots.Lookup(RoleInfo))
	if info == nil {
		return nil, nil
	}

	md := &Metadata{}

	if !info.Container {
		// A literal INFO tag carries no entries of its own.
		return md, nil
	}

	for _, idx := range m.table.Children(m.slots.Lookup(RoleInfo)) {
		n := m.table.Node(idx)

		value, err := m.fetchPayload(n)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s entry: %w", n.Tag, err)
		}

		assignInfoEntry(md, n.Tag, nullTermStr(value))
	}

	return md, nil
}

func assignInfoEntry(md *Metadata, tag Tag, value string) {
	switch tag {
	case markerIARL:
		md.Location = value
	case markerIART:
		md.Artist = value
	case markerISFT:
		md.Software = value
	case markerICRD:
		md.CreationDate = value
	case markerICOP:
		md.Copyright = value
	case markerINAM:
		md.Title = value
	case markerIENG:
		md.Engineer = value
	case markerIGNR:
		md.Genre = value
	case markerIPRD:
		md.Product = value
	case markerISRC:
		md.Source = value
	case markerISBJ:
		md.Subject = value
	case markerICMT:
		md.Comments = value
	case markerITRK, markerITRKBug:
		md.TrackNbr = value
	case markerITCH:
		md.Technician = value
	case markerIKEY:
		md.Keywords = value
	case markerIMED:
		md.Medium = value
	}
}

// fetchPayload pulls a leaf chunk's body from the source, capped at
// the image limit.
func (m *Manager) fetchPayload(n *Node) ([]byte, error) {
	if m.src == nil {
		return nil, errNoSource
	}

	if n == nil {
		return nil, fmt.Errorf("no such node")
	}

	size := n.PayloadSize()
	if size > maxImageSize {
		size = maxImageSize
	}

	if size <= 0 {
		return nil, nil
	}

	buf := make([]byte, size)
	if err := readFull(m.src, buf, n.PayloadOffset()); err != nil {
		return nil, err
	}

	return buf, nil
}

// EncodeInfoList serializes md as a complete LIST chunk image with the
// INFO form: header, entries in a fixed order, each null-terminated
// and padded to even length. Empty fields are skipped; nil input or an
// all-empty struct yields nil.
func EncodeInfoList(md *Metadata) []byte {
	if md == nil {
		return nil
	}

	body := bytes.NewBuffer(nil)

	writeEntry := func(marker Tag, value string) {
		if value == "" {
			return
		}

		body.Write(marker[:])

		declared := uint32(len(value) + 1)
		binary.Write(body, binary.LittleEndian, declared)
		body.WriteString(value)
		body.WriteByte(0x00)

		if declared%2 == 1 {
			body.WriteByte(0x00)
		}
	}

	fields := []struct {
		marker Tag
		value  string
	}{
		{markerIART, md.Artist},
		{markerICMT, md.Comments},
		{markerICOP, md.Copyright},
		{markerICRD, md.CreationDate},
		{markerIENG, md.Engineer},
		{markerITCH, md.Technician},
		{markerIGNR, md.Genre},
		{markerIKEY, md.Keywords},
		{markerIMED, md.Medium},
		{markerINAM, md.Title},
		{markerIPRD, md.Product},
		{markerISBJ, md.Subject},
		{markerISFT, md.Software},
		{markerISRC, md.Source},
		{markerIARL, md.Location},
		{markerITRK, md.TrackNbr},
	}

	for _, field := range fields {
		writeEntry(field.marker, field.value)
	}

	if body.Len() == 0 {
		return nil
	}

	out := bytes.NewBuffer(nil)
	out.Write(TagList[:])
	binary.Write(out, binary.LittleEndian, uint32(formTagSize+body.Len()))
	out.Write(TagInfo[:])
	out.Write(body.Bytes())

	return out.Bytes()
}
