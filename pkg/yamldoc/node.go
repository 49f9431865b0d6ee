// Package yamldoc implements the restricted YAML subset used by the
// stencil manifest and package descriptors: block-style mappings of
// scalars, scalar sequences, and single-level object sequences. It is
// deliberately not a YAML 1.2 parser; flow style, multi-document
// streams, anchors and aliases are rejected as parse errors. Documents
// are parsed into a typed node tree, queried and mutated on the tree,
// and written back through a single deterministic serializer.
package yamldoc

// Kind identifies the type of a node in the parsed tree.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
)

// Node is a value in the parsed document tree: a Scalar, a Mapping,
// or a Sequence.
type Node interface {
	Kind() Kind
}

// Scalar is a leaf value. Value holds the text with surrounding quotes
// and any inline comment stripped; quote and comment are retained so
// the serializer can reproduce them.
type Scalar struct {
	Value   string
	quote   byte   // 0, '\'' or '"'
	comment string // raw trailing comment including leading spaces
}

// NewScalar returns an unquoted scalar with the given value.
func NewScalar(value string) *Scalar {
	return &Scalar{Value: value}
}

// Kind implements Node.
func (s *Scalar) Kind() Kind { return KindScalar }

// Entry is one key of a Mapping, in document order. Lead holds the raw
// blank and comment lines that preceded the key in the source. comment
// holds an inline comment on a key line that introduces a nested block
// (a scalar entry keeps its comment on the Scalar itself).
type Entry struct {
	Key  string
	Node Node
	Lead []string

	comment string
}

// Mapping is an ordered set of key/node entries. Keys are unique;
// duplicates are rejected at parse time.
type Mapping struct {
	entries []*Entry
	index   map[string]*Entry
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]*Entry)}
}

// Kind implements Node.
func (m *Mapping) Kind() Kind { return KindMapping }

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.entries) }

// Keys returns the keys in document order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the node stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	e, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return e.Node, true
}

// Scalar returns the scalar value stored under key. It returns false
// if the key is absent or holds a non-scalar node.
func (m *Mapping) Scalar(key string) (string, bool) {
	n, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := n.(*Scalar)
	if !ok {
		return "", false
	}
	return s.Value, true
}

// Set stores node under key, replacing an existing entry in place or
// appending a new one at the end.
func (m *Mapping) Set(key string, node Node) {
	if e, ok := m.index[key]; ok {
		e.Node = node
		return
	}
	e := &Entry{Key: key, Node: node}
	m.entries = append(m.entries, e)
	if m.index == nil {
		m.index = make(map[string]*Entry)
	}
	m.index[key] = e
}

// SetScalar stores a plain scalar value under key. If the key already
// holds a scalar, its quoting and inline comment are preserved.
func (m *Mapping) SetScalar(key, value string) {
	if e, ok := m.index[key]; ok {
		if s, ok := e.Node.(*Scalar); ok {
			s.Value = value
			return
		}
		e.Node = NewScalar(value)
		return
	}
	m.Set(key, NewScalar(value))
}

// Delete removes key and returns whether it was present.
func (m *Mapping) Delete(key string) bool {
	if _, ok := m.index[key]; !ok {
		return false
	}
	delete(m.index, key)
	for i, e := range m.entries {
		if e.Key == key {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	return true
}

// Entries returns the entries in document order. The slice is shared;
// callers must not modify it.
func (m *Mapping) Entries() []*Entry { return m.entries }

// add appends an entry, failing on a duplicate key. Used by the parser.
func (m *Mapping) add(e *Entry) bool {
	if _, ok := m.index[e.Key]; ok {
		return false
	}
	if m.index == nil {
		m.index = make(map[string]*Entry)
	}
	m.entries = append(m.entries, e)
	m.index[e.Key] = e
	return true
}

// Sequence is an ordered list of items, each a Scalar (scalar list)
// or a Mapping (object list introduced by a dash).
type Sequence struct {
	items []Node
}

// NewSequence returns an empty sequence.
func NewSequence() *Sequence { return &Sequence{} }

// Kind implements Node.
func (s *Sequence) Kind() Kind { return KindSequence }

// Len returns the number of items.
func (s *Sequence) Len() int { return len(s.items) }

// Item returns the i-th item.
func (s *Sequence) Item(i int) Node { return s.items[i] }

// Items returns all items in order. The slice is shared; callers must
// not modify it.
func (s *Sequence) Items() []Node { return s.items }

// Append adds an item at the end.
func (s *Sequence) Append(n Node) { s.items = append(s.items, n) }

// scalarsOnly reports whether every item is a scalar.
func (s *Sequence) scalarsOnly() bool {
	for _, it := range s.items {
		if it.Kind() != KindScalar {
			return false
		}
	}
	return true
}
