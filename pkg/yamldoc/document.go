package yamldoc

import (
	"strconv"
	"strings"

	"github.com/stenciltools/stencil/pkg/errors"
)

// Read returns the scalar value of a top-level key. Absent keys (and
// keys holding non-scalar nodes) report ok=false rather than an error
// so callers can treat optional fields uniformly. Duplicate keys were
// already rejected when the document was parsed.
func (d *Document) Read(key string) (value string, ok bool) {
	return d.root.Scalar(key)
}

// Write replaces the scalar value of an existing top-level key in
// place, preserving its quoting and inline comment. Writing to an
// absent key fails with ErrMissingKey; Write never creates keys.
func (d *Document) Write(key, value string) error {
	n, ok := d.root.Get(key)
	if !ok {
		return errors.Newf(errors.ErrMissingKey, "key %q not present in document", key)
	}
	s, isScalar := n.(*Scalar)
	if !isScalar {
		return errors.Newf(errors.ErrMissingKey, "key %q does not hold a scalar value", key)
	}
	s.Value = value
	return nil
}

// GetArray inspects the sequence under a top-level key. For a scalar
// list it returns the values in document order and their count. For an
// object list (dash items that are small mappings) it returns a nil
// slice and the item count, since the subset does not surface
// structured records through this entry point. Absent or non-sequence
// keys report (nil, 0).
func (d *Document) GetArray(key string) (values []string, count int) {
	n, ok := d.root.Get(key)
	if !ok {
		return nil, 0
	}
	seq, ok := n.(*Sequence)
	if !ok {
		return nil, 0
	}
	if !seq.scalarsOnly() {
		return nil, seq.Len()
	}
	values = make([]string, seq.Len())
	for i, it := range seq.Items() {
		values[i] = it.(*Scalar).Value
	}
	return values, len(values)
}

// GetNested resolves a dotted path with optional sequence indexes,
// e.g. "contents.patterns[0].name": descend mappings by key, select
// dash-delimited items by 0-based index, and return the scalar at the
// end of the path. Any missing step reports ok=false.
func (d *Document) GetNested(path string) (value string, ok bool) {
	var node Node = d.root
	for _, seg := range strings.Split(path, ".") {
		name, idx, hasIdx, valid := splitSegment(seg)
		if !valid {
			return "", false
		}
		m, isMap := node.(*Mapping)
		if !isMap {
			return "", false
		}
		child, found := m.Get(name)
		if !found {
			return "", false
		}
		node = child
		if hasIdx {
			seq, isSeq := node.(*Sequence)
			if !isSeq || idx < 0 || idx >= seq.Len() {
				return "", false
			}
			node = seq.Item(idx)
		}
	}
	s, isScalar := node.(*Scalar)
	if !isScalar {
		return "", false
	}
	return s.Value, true
}

// splitSegment splits "name[3]" into its parts.
func splitSegment(seg string) (name string, idx int, hasIdx, ok bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, 0, false, seg != ""
	}
	if !strings.HasSuffix(seg, "]") || open == 0 {
		return "", 0, false, false
	}
	n, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil {
		return "", 0, false, false
	}
	return seg[:open], n, true, true
}
