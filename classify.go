package rifftree

// Slots files every placed chunk under its canonical role. Dedicated
// slots hold one index each, last placement winning; everything else
// lands in the ordered Unclassified bucket.
type Slots struct {
	Container NodeIndex
	Format    NodeIndex
	Data      NodeIndex
	Fact      NodeIndex
	Broadcast NodeIndex
	Pad       NodeIndex
	Info      NodeIndex
	Peak      NodeIndex

	// Unclassified preserves bucket chunks in placement order for
	// later inspection or pass-through on rewrite.
	Unclassified []NodeIndex
}

func newSlots() *Slots {
	return &Slots{
		Container: NoNode,
		Format:    NoNode,
		Data:      NoNode,
		Fact:      NoNode,
		Broadcast: NoNode,
		Pad:       NoNode,
		Info:      NoNode,
		Peak:      NoNode,
	}
}

// classify assigns the node's canonical role and files its index.
// RIFF claims the container slot. A LIST claims the info slot only
// when it carries the INFO form; any other LIST stays in the bucket,
// as do WAVE or FLAC appearing as literal chunk tags.
func (s *Slots) classify(t *Table, idx NodeIndex) {
	n := t.Node(idx)
	if s == nil || n == nil {
		return
	}

	role := RoleUnclassified

	switch {
	case n.Tag == TagRiff:
		role = RoleContainer
	case n.Tag == TagList:
		if n.Form == TagInfo {
			role = RoleInfo
		}
	default:
		role = roleForTag(n.Tag)
	}

	n.Role = role

	if slot := s.slotFor(role); slot != nil {
		*slot = idx

		return
	}

	s.Unclassified = append(s.Unclassified, idx)
}

func (s *Slots) slotFor(role Role) *NodeIndex {
	switch role {
	case RoleContainer:
		return &s.Container
	case RoleFormat:
		return &s.Format
	case RoleData:
		return &s.Data
	case RoleFact:
		return &s.Fact
	case RoleBroadcast:
		return &s.Broadcast
	case RolePad:
		return &s.Pad
	case RoleInfo:
		return &s.Info
	case RolePeak:
		return &s.Peak
	default:
		return nil
	}
}

// Lookup returns the slot index for a dedicated role, or NoNode. Bucket
// members are reached through Unclassified instead.
func (s *Slots) Lookup(role Role) NodeIndex {
	if s == nil {
		return NoNode
	}

	slot := s.slotFor(role)
	if slot == nil {
		return NoNode
	}

	return *slot
}

// BucketFind returns the first bucket member carrying tag, or NoNode.
func (s *Slots) BucketFind(t *Table, tag Tag) NodeIndex {
	if s == nil {
		return NoNode
	}

	for _, idx := range s.Unclassified {
		n := t.Node(idx)
		if n != nil && n.Tag == tag {
			return idx
		}
	}

	return NoNode
}
