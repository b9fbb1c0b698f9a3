package rifftree

// NodeIndex addresses a node inside a Table. Relationships between
// nodes are stored as indices so the table can grow without
// invalidating references.
type NodeIndex int

// NoNode is the null node index.
const NoNode NodeIndex = -1

// Node is one chunk in the reconstructed tree.
type Node struct {
	// Tag is the four-character chunk identifier.
	Tag Tag
	// Role is the canonical slot assigned by the classifier.
	Role Role
	// Container reports whether the declared size spans nested chunks.
	Container bool
	// Form is the container form tag. Zero for leaf chunks.
	Form Tag

	// HeaderSize is the byte count of the fixed header: 8 for leaves,
	// 12 for containers (tag, size and form).
	HeaderSize int64
	// SubSize is the byte budget of the nested chunks. Zero for leaves.
	SubSize int64
	// LeafSize is the chunk's own footprint: header plus body plus the
	// odd-size pad byte, excluding any nested chunks.
	LeafSize int64
	// Offset is the absolute position of the chunk in the source.
	Offset int64
	// Residue is the byte budget left in the enclosing scope after this
	// chunk's full footprint is charged. Negative residue marks the
	// chunk that overran its container.
	Residue int64
	// Order is the flat placement index, counting from zero.
	Order int

	Parent     NodeIndex
	FirstChild NodeIndex
	Pred       NodeIndex
	Succ       NodeIndex

	// Codec is the typed collaborator that decoded this chunk.
	Codec ChunkCodec
}

// PayloadOffset is the absolute position of the chunk body, past the
// fixed header.
func (n *Node) PayloadOffset() int64 {
	return n.Offset + n.HeaderSize
}

// PayloadSize is the declared body size: nested budget for containers,
// body bytes without the pad for leaves.
func (n *Node) PayloadSize() int64 {
	if n.Container {
		return n.SubSize
	}

	if n.Codec == nil {
		return n.LeafSize - n.HeaderSize
	}

	return n.Codec.DeclaredSize()
}

// Table is the growable node arena plus the running offset ledger.
// Index zero is the root once at least one chunk has been placed.
type Table struct {
	nodes []Node
	// offsets[i] is the absolute source offset of node i;
	// offsets[len(nodes)] is where the next chunk starts.
	offsets []int64
}

func newTable() *Table {
	return &Table{offsets: []int64{0}}
}

// Len is the number of placed nodes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.nodes)
}

// Node returns the node at index i, or nil when i is out of range.
func (t *Table) Node(i NodeIndex) *Node {
	if t == nil || i < 0 || int(i) >= len(t.nodes) {
		return nil
	}

	return &t.nodes[i]
}

// NextOffset is the absolute source offset the next chunk starts at.
func (t *Table) NextOffset() int64 {
	return t.offsets[len(t.nodes)]
}

// Append places a node at the next offset and extends the offset
// ledger by the node's leaf footprint. Relationship fields are reset
// to NoNode; the caller wires them afterwards.
func (t *Table) Append(n Node) NodeIndex {
	n.Order = len(t.nodes)
	n.Offset = t.offsets[len(t.nodes)]
	n.Parent = NoNode
	n.FirstChild = NoNode
	n.Pred = NoNode
	n.Succ = NoNode

	t.nodes = append(t.nodes, n)
	t.offsets = append(t.offsets, n.Offset+n.LeafSize)

	return NodeIndex(len(t.nodes) - 1)
}

// Root returns the index of the first placed node, or NoNode for an
// empty table.
func (t *Table) Root() NodeIndex {
	if t.Len() == 0 {
		return NoNode
	}

	return 0
}

// Children collects the direct children of node i in placement order.
func (t *Table) Children(i NodeIndex) []NodeIndex {
	n := t.Node(i)
	if n == nil {
		return nil
	}

	var out []NodeIndex
	for c := n.FirstChild; c != NoNode; c = t.Node(c).Succ {
		out = append(out, c)
	}

	return out
}

// Walk visits the tree depth-first from the root, calling fn with the
// nesting depth of each node. Returning false stops the walk.
func (t *Table) Walk(fn func(depth int, i NodeIndex, n *Node) bool) {
	if t == nil || fn == nil {
		return
	}

	var visit func(depth int, i NodeIndex) bool
	visit = func(depth int, i NodeIndex) bool {
		for ; i != NoNode; i = t.Node(i).Succ {
			if !fn(depth, i, t.Node(i)) {
				return false
			}

			if !visit(depth+1, t.Node(i).FirstChild) {
				return false
			}
		}

		return true
	}

	visit(0, t.Root())
}
