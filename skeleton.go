package rifftree

// buildSkeleton lays out the canonical write-mode table: a WAVE
// container holding a blank format chunk and an empty data chunk. The
// container's declared size stays at its floor until a build pass
// computes it from the table.
func buildSkeleton(channels, sampleRate int) (*Table, *Slots) {
	table := newTable()
	slots := newSlots()

	cont := NewBlankContainerCodec(TagRiff, TagWave)
	format := NewBlankFormatCodec(channels, sampleRate)
	data := NewBlankDataCodec()

	root := appendCodec(table, slots, cont)
	fmtIdx := appendCodec(table, slots, format)
	dataIdx := appendCodec(table, slots, data)

	table.Node(root).FirstChild = fmtIdx

	fmtNode := table.Node(fmtIdx)
	fmtNode.Parent = root
	fmtNode.Succ = dataIdx

	dataNode := table.Node(dataIdx)
	dataNode.Parent = root
	dataNode.Pred = fmtIdx

	return table, slots
}

// appendCodec places a blank codec's node and classifies it.
func appendCodec(table *Table, slots *Slots, codec ChunkCodec) NodeIndex {
	idx := table.Append(Node{
		Tag:        codec.Tag(),
		Container:  codec.Container(),
		HeaderSize: codec.HeaderSize(),
		SubSize:    codec.SubSize(),
		LeafSize:   codec.LeafSize(),
		Codec:      codec,
	})

	n := table.Node(idx)
	if fc, ok := codec.(interface{ Form() Tag }); ok {
		n.Form = fc.Form()
	}

	slots.classify(table, idx)

	return idx
}
