package rifftree

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrMissingContainer is returned when no container chunk claimed
	// the canonical slot.
	ErrMissingContainer = errors.New("container chunk not found")
	// ErrMissingFormat is returned when no format chunk claimed the
	// canonical slot.
	ErrMissingFormat = errors.New("format chunk not found")
	// ErrMissingData is returned when no data chunk claimed the
	// canonical slot.
	ErrMissingData = errors.New("data chunk not found")

	errNoSource       = errors.New("no byte source")
	errZeroBlockAlign = errors.New("format block alignment is zero")
)

// Notifier receives a synchronous callback once a reconstruction
// completes, carrying the root index of the fresh tree.
type Notifier interface {
	TreeRebuilt(root NodeIndex)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(root NodeIndex)

func (f NotifierFunc) TreeRebuilt(root NodeIndex) {
	f(root)
}

// Option configures a Manager.
type Option func(*Manager)

// WithFactory swaps the codec factory used during reconstruction.
func WithFactory(f CodecFactory) Option {
	return func(m *Manager) {
		if f != nil {
			m.factory = f
		}
	}
}

// WithNotifier installs the rebuild notification sink.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		m.notify = n
	}
}

// WithLogger installs a logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// Manager owns the reconstructed state of one container file: the
// node table, the canonical slots, the stream frame count and the
// lifecycle flags. It is not safe for concurrent use.
type Manager struct {
	src     Source
	factory CodecFactory
	notify  Notifier
	log     *zap.Logger

	table  *Table
	slots  *Slots
	cursor NodeIndex
	frames int64

	valid     bool
	dirty     bool
	stillGood bool
}

// NewManager builds a manager over src. The source may be nil when
// only Create is used.
func NewManager(src Source, opts ...Option) *Manager {
	m := &Manager{
		src:     src,
		factory: NewDefaultFactory(),
		log:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.Reset()

	return m
}

// Reset tears the reconstructed state down wholesale. Incremental
// reuse across parses is deliberately not attempted.
func (m *Manager) Reset() {
	m.table = newTable()
	m.slots = newSlots()
	m.cursor = NoNode
	m.frames = 0
	m.valid = false
	m.dirty = true
	m.stillGood = false
}

// Parse rebuilds the tree from the source in one pass and derives the
// stream frame count. On a structural failure the partial table and
// slots stay inspectable and Valid reports false. A structurally
// complete file without format or data chunks keeps Valid true but
// returns the slot error from the frame derivation.
func (m *Manager) Parse() error {
	m.Reset()

	if m.src == nil {
		return errNoSource
	}

	table, slots, err := NewTreeBuilder(m.src, m.factory, m.log).Reconstruct()
	m.table = table
	m.slots = slots

	if err != nil {
		return err
	}

	m.valid = true
	m.stillGood = true
	m.dirty = false
	m.cursor = table.Root()

	if err := m.deriveFrameCount(); err != nil {
		return err
	}

	if m.notify != nil {
		m.notify.TreeRebuilt(table.Root())
	}

	return nil
}

// Create replaces the state with the canonical authoring skeleton: a
// WAVE container, a 16-bit PCM format chunk at the given channel count
// and sample rate, and an empty data chunk. The state stays dirty
// until a Build computes the container size.
func (m *Manager) Create(channels, sampleRate int) {
	m.Reset()

	table, slots := buildSkeleton(channels, sampleRate)
	m.table = table
	m.slots = slots
	m.valid = true
	m.stillGood = true
	m.cursor = table.Root()
}

// Valid reports whether the last parse or create completed.
func (m *Manager) Valid() bool {
	return m.valid
}

// Dirty reports whether parameters changed since the last build.
func (m *Manager) Dirty() bool {
	return m.dirty
}

// Fresh reports whether the reconstructed state still reflects the
// source bytes.
func (m *Manager) Fresh() bool {
	return m.stillGood
}

// SetSource swaps the byte source. The current tree is kept but is
// marked stale until the next parse.
func (m *Manager) SetSource(src Source) {
	m.src = src
	m.stillGood = false
}

// OnSourceChange marks the reconstructed state stale after the source
// bytes changed underneath the manager.
func (m *Manager) OnSourceChange() {
	m.stillGood = false
}

// Source is the byte source the manager reads through.
func (m *Manager) Source() Source {
	return m.src
}

// Table exposes the node arena of the current tree.
func (m *Manager) Table() *Table {
	return m.table
}

// Slots exposes the canonical slot assignment of the current tree.
func (m *Manager) Slots() *Slots {
	return m.slots
}

// Node returns the node at index i, or nil.
func (m *Manager) Node(i NodeIndex) *Node {
	return m.table.Node(i)
}

// Root is the index of the outermost chunk, or NoNode.
func (m *Manager) Root() NodeIndex {
	return m.table.Root()
}

// Form is the form tag of the outermost container, WAVE for canonical
// audio files.
func (m *Manager) Form() Tag {
	n := m.table.Node(m.table.Root())
	if n == nil {
		return Tag{}
	}

	return n.Form
}

// TrailingBytes counts source bytes past the declared structure. They
// are tolerated by the reconstruction and reported here.
func (m *Manager) TrailingBytes() int64 {
	n := m.table.Node(m.table.Root())
	if n == nil {
		return 0
	}

	return n.Residue
}

// Bucket returns a copy of the unclassified chunk indices in
// placement order.
func (m *Manager) Bucket() []NodeIndex {
	return append([]NodeIndex(nil), m.slots.Unclassified...)
}

// Cursor is the current traversal position.
func (m *Manager) Cursor() NodeIndex {
	return m.cursor
}

// SetCursor moves the traversal position to i.
func (m *Manager) SetCursor(i NodeIndex) error {
	if m.table.Node(i) == nil {
		return fmt.Errorf("node index %d out of range", i)
	}

	m.cursor = i

	return nil
}

// ReRoot moves the traversal position back to the root. It reports
// whether a root exists.
func (m *Manager) ReRoot() bool {
	m.cursor = m.table.Root()

	return m.cursor != NoNode
}

// Duration is the stream length derived from the frame count and the
// sample rate.
func (m *Manager) Duration() (time.Duration, error) {
	fc, err := m.formatCodec()
	if err != nil {
		return 0, err
	}

	rate := fc.SampleRate()
	if rate <= 0 {
		return 0, fmt.Errorf("sample rate %d: cannot derive duration", rate)
	}

	return time.Duration(m.frames) * time.Second / time.Duration(rate), nil
}

// Channels is the channel count, zero without a format chunk.
func (m *Manager) Channels() int {
	fc, err := m.formatCodec()
	if err != nil {
		return 0
	}

	return fc.Channels()
}

// SampleRate is the frame rate in Hz, zero without a format chunk.
func (m *Manager) SampleRate() int {
	fc, err := m.formatCodec()
	if err != nil {
		return 0
	}

	return fc.SampleRate()
}

// Coding is the declared sample numbering system, zero without a
// format chunk.
func (m *Manager) Coding() SampleCoding {
	fc, err := m.formatCodec()
	if err != nil {
		return SampleCoding{}
	}

	return fc.Coding()
}

// BroadcastExtension returns a copy of the bext fields, or nil when
// the chunk is absent.
func (m *Manager) BroadcastExtension() *BroadcastExtension {
	n := m.table.Node(m.slots.Lookup(RoleBroadcast))
	if n == nil {
		return nil
	}

	bc, ok := n.Codec.(*BextCodec)
	if !ok {
		return nil
	}

	return bc.Extension()
}

// PeakEntries returns a copy of the per-channel peak entries, or nil
// when the peak chunk is absent.
func (m *Manager) PeakEntries() []PeakEntry {
	n := m.table.Node(m.slots.Lookup(RolePeak))
	if n == nil {
		return nil
	}

	pc, ok := n.Codec.(*PeakCodec)
	if !ok {
		return nil
	}

	return pc.Entries()
}

// FactFrames is the frame count declared by the fact chunk, zero when
// the chunk is absent.
func (m *Manager) FactFrames() uint32 {
	n := m.table.Node(m.slots.Lookup(RoleFact))
	if n == nil {
		return 0
	}

	fc, ok := n.Codec.(*FactCodec)
	if !ok {
		return 0
	}

	return fc.SampleFrames()
}

// formatCodec resolves the canonical format slot to its typed codec.
func (m *Manager) formatCodec() (*FormatCodec, error) {
	n := m.table.Node(m.slots.Lookup(RoleFormat))
	if n == nil {
		return nil, ErrMissingFormat
	}

	fc, ok := n.Codec.(*FormatCodec)
	if !ok {
		return nil, fmt.Errorf("%w: slot holds %T", ErrMissingFormat, n.Codec)
	}

	return fc, nil
}

// dataCodec resolves the canonical data slot to its typed codec.
func (m *Manager) dataCodec() (*DataCodec, error) {
	n := m.table.Node(m.slots.Lookup(RoleData))
	if n == nil {
		return nil, ErrMissingData
	}

	dc, ok := n.Codec.(*DataCodec)
	if !ok {
		return nil, fmt.Errorf("%w: slot holds %T", ErrMissingData, n.Codec)
	}

	return dc, nil
}

// containerCodec resolves the canonical container slot to its typed
// codec.
func (m *Manager) containerCodec() (*ContainerCodec, error) {
	n := m.table.Node(m.slots.Lookup(RoleContainer))
	if n == nil {
		return nil, ErrMissingContainer
	}

	cc, ok := n.Codec.(*ContainerCodec)
	if !ok {
		return nil, fmt.Errorf("%w: slot holds %T", ErrMissingContainer, n.Codec)
	}

	return cc, nil
}
