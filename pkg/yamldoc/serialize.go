package yamldoc

import "strings"

// Bytes serializes the document. Output is deterministic: two-space
// indentation per level, keys in tree order, object-list items with
// their first field inline after the dash. Comment and blank lines
// captured at parse time are re-emitted in place.
func (d *Document) Bytes() []byte {
	var b strings.Builder
	writeMapping(&b, d.root, 0)
	for _, line := range d.trailer {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// String serializes the document.
func (d *Document) String() string {
	return string(d.Bytes())
}

func writeMapping(b *strings.Builder, m *Mapping, indent int) {
	pad := strings.Repeat(" ", indent)
	for _, e := range m.entries {
		for _, lead := range e.Lead {
			b.WriteString(lead)
			b.WriteByte('\n')
		}
		switch n := e.Node.(type) {
		case *Scalar:
			b.WriteString(pad)
			b.WriteString(e.Key)
			b.WriteByte(':')
			writeScalarTail(b, n)
			b.WriteByte('\n')
		case *Mapping:
			b.WriteString(pad)
			b.WriteString(e.Key)
			b.WriteByte(':')
			writeComment(b, e.comment)
			b.WriteByte('\n')
			writeMapping(b, n, indent+2)
		case *Sequence:
			b.WriteString(pad)
			b.WriteString(e.Key)
			b.WriteByte(':')
			writeComment(b, e.comment)
			b.WriteByte('\n')
			writeSequence(b, n, indent+2)
		}
	}
}

func writeSequence(b *strings.Builder, s *Sequence, indent int) {
	pad := strings.Repeat(" ", indent)
	fieldPad := strings.Repeat(" ", indent+2)
	for _, it := range s.items {
		switch n := it.(type) {
		case *Scalar:
			b.WriteString(pad)
			b.WriteByte('-')
			writeScalarTail(b, n)
			b.WriteByte('\n')
		case *Mapping:
			for i, e := range n.entries {
				for _, lead := range e.Lead {
					b.WriteString(lead)
					b.WriteByte('\n')
				}
				if i == 0 {
					b.WriteString(pad)
					b.WriteString("- ")
				} else {
					b.WriteString(fieldPad)
				}
				b.WriteString(e.Key)
				b.WriteByte(':')
				if sc, ok := e.Node.(*Scalar); ok {
					writeScalarTail(b, sc)
				}
				b.WriteByte('\n')
			}
		}
	}
}

// writeScalarTail writes the value portion of a scalar line: nothing
// for a null value, otherwise a space, the (re)quoted value, and any
// retained inline comment.
func writeScalarTail(b *strings.Builder, s *Scalar) {
	if s.Value != "" || s.quote != 0 {
		b.WriteByte(' ')
		if s.quote != 0 {
			b.WriteByte(s.quote)
			b.WriteString(s.Value)
			b.WriteByte(s.quote)
		} else {
			b.WriteString(s.Value)
		}
	}
	writeComment(b, s.comment)
}

// writeComment re-emits a retained inline comment, restoring the
// separating space when the tokenizer trimmed it away.
func writeComment(b *strings.Builder, comment string) {
	if comment == "" {
		return
	}
	if comment[0] != ' ' {
		b.WriteByte(' ')
	}
	b.WriteString(comment)
}
