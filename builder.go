package rifftree

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrSourceTooSmall is returned when the source cannot hold a
	// single chunk header.
	ErrSourceTooSmall = errors.New("source smaller than a chunk header")
	// ErrNotContainer is returned when the first chunk is not a
	// container kind.
	ErrNotContainer = errors.New("first chunk is not a container kind")
	// ErrCorruptStructure is returned when declared chunk sizes overrun
	// the enclosing budget. The partially built table is kept, with the
	// overrunning node in place.
	ErrCorruptStructure = errors.New("declared chunk sizes overrun the enclosing budget")
)

// TreeBuilder reconstructs the chunk hierarchy from the flat byte
// layout in a single forward pass, charging every chunk's footprint
// against the byte budget of its enclosing scope.
type TreeBuilder struct {
	src     Source
	factory CodecFactory
	log     *zap.Logger
}

// NewTreeBuilder wires a builder to its source and codec factory. A
// nil factory selects the default one; a nil logger disables logging.
func NewTreeBuilder(src Source, factory CodecFactory, log *zap.Logger) *TreeBuilder {
	if factory == nil {
		factory = NewDefaultFactory()
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &TreeBuilder{src: src, factory: factory, log: log}
}

// Reconstruct runs the pass. The returned table and slots are always
// non-nil; on error they hold whatever was placed before the failure.
func (b *TreeBuilder) Reconstruct() (*Table, *Slots, error) {
	table := newTable()
	slots := newSlots()

	if b == nil || b.src == nil {
		return table, slots, errors.New("nil tree builder or source")
	}

	size := b.src.Size()
	if size < leafHeaderSize {
		return table, slots, ErrSourceTooSmall
	}

	// residue is the byte budget of the scope being filled: the whole
	// source for the top level, a container's nested budget inside one.
	residue := size
	stack := make([]NodeIndex, 0, 8)
	prev := NoNode
	firstChild := false

	for {
		if len(stack) > 0 && residue <= 0 {
			// Nested scope exhausted: resume the popped container's
			// sibling list with the budget it had stashed.
			popped := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			residue = table.Node(popped).Residue
			prev = popped
			firstChild = false

			continue
		}

		if len(stack) == 0 && table.Len() > 0 {
			break
		}

		off := table.NextOffset()

		probe, err := b.readProbe(off)
		if err != nil {
			return table, slots, fmt.Errorf("%w: %v", ErrCorruptStructure, err)
		}

		codec, err := b.factory.Resolve(probe)
		if err != nil {
			return table, slots, fmt.Errorf("failed to resolve codec for %s: %w", probe.Tag, err)
		}

		if table.Len() == 0 && !codec.Container() {
			return table, slots, fmt.Errorf("%w: leading tag %s", ErrNotContainer, probe.Tag)
		}

		if err := readFull(b.src, codec.Image(), off); err != nil {
			return table, slots, fmt.Errorf("%w: truncated %s image: %v", ErrCorruptStructure, probe.Tag, err)
		}

		if err := codec.ParseBody(); err != nil {
			return table, slots, fmt.Errorf("%w: %s body: %v", ErrCorruptStructure, probe.Tag, err)
		}

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

		if prev != NoNode {
			if firstChild {
				table.Node(prev).FirstChild = idx
				n.Parent = prev
			} else {
				table.Node(prev).Succ = idx
				n.Pred = prev
				n.Parent = table.Node(prev).Parent
			}
		}

		// Charge the full footprint against the enclosing budget and
		// stash the remainder on the node. For containers the stash is
		// resumed after their nested chunks are consumed; on the root
		// it counts trailing bytes past the declared structure.
		n.Residue = residue - (n.LeafSize + n.SubSize)
		if n.Residue < 0 {
			b.log.Warn("chunk overruns its scope",
				zap.String("tag", n.Tag.String()),
				zap.Int64("offset", n.Offset),
				zap.Int64("residue", n.Residue))

			return table, slots, fmt.Errorf("%w: %s at offset %d by %d bytes",
				ErrCorruptStructure, n.Tag, n.Offset, -n.Residue)
		}

		prev = idx

		if n.Container && n.SubSize > 0 {
			stack = append(stack, idx)
			residue = n.SubSize
			firstChild = true

			continue
		}

		residue = n.Residue
		firstChild = false
	}

	root := table.Node(table.Root())
	if root != nil && root.Residue > 0 {
		b.log.Warn("trailing bytes after container structure",
			zap.Int64("bytes", root.Residue))
	}

	b.log.Debug("tree reconstructed",
		zap.Int("chunks", table.Len()),
		zap.Int64("bytes", size))

	return table, slots, nil
}

// readProbe fetches the fixed window at a chunk boundary. Near the end
// of the source the window shrinks; below a leaf header it fails.
func (b *TreeBuilder) readProbe(off int64) (Probe, error) {
	want := int64(probeSize)
	if rest := b.src.Size() - off; rest < want {
		want = rest
	}

	if want < leafHeaderSize {
		return Probe{}, fmt.Errorf("no chunk header at offset %d", off)
	}

	buf := make([]byte, want)
	if err := readFull(b.src, buf, off); err != nil {
		return Probe{}, err
	}

	return parseProbe(buf)
}
