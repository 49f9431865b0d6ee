package yamldoc

import (
	"github.com/stenciltools/stencil/pkg/errors"
)

// Document is a parsed subset document: a root mapping plus any
// trailing comment lines.
type Document struct {
	root    *Mapping
	trailer []string
}

// Parse builds the node tree for a subset document. Duplicate keys
// within any mapping are rejected here, once, as ErrDuplicateKey.
func Parse(data []byte) (*Document, error) {
	toks, err := tokenize(data)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseMapping(0)
	if err != nil {
		return nil, err
	}
	if t, ok := p.peek(); ok {
		return nil, errors.Newf(errors.ErrParse, "unexpected content at line %d", t.line)
	}
	if root.Len() == 0 {
		return nil, errors.New(errors.ErrEmptyDocument, "document contains no keys")
	}
	return &Document{root: root, trailer: p.takePending()}, nil
}

// ParseString is Parse on a string.
func ParseString(s string) (*Document, error) {
	return Parse([]byte(s))
}

// NewDocument returns an empty document for building from scratch.
func NewDocument() *Document {
	return &Document{root: NewMapping()}
}

// Root returns the document's top-level mapping.
func (d *Document) Root() *Mapping { return d.root }

type parser struct {
	toks    []token
	pos     int
	pending []string
}

// peek returns the next significant token, buffering any blank or
// comment lines so they can be attached to the following entry.
func (p *parser) peek() (token, bool) {
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		if t.kind == tokenBlank || t.kind == tokenComment {
			p.pending = append(p.pending, t.raw)
			p.pos++
			continue
		}
		return t, true
	}
	return token{}, false
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) takePending() []string {
	lead := p.pending
	p.pending = nil
	return lead
}

// parseMapping consumes entries at exactly the given indentation until
// a lower-indented line (or end of input) closes the block.
func (p *parser) parseMapping(indent int) (*Mapping, error) {
	m := NewMapping()
	for {
		t, ok := p.peek()
		if !ok || t.indent < indent {
			break
		}
		if t.indent > indent {
			return nil, errors.Newf(errors.ErrParse, "unexpected indentation at line %d", t.line)
		}
		if t.kind == tokenDash {
			return nil, errors.Newf(errors.ErrParse, "sequence item outside a sequence at line %d", t.line)
		}
		p.next()

		e := &Entry{Key: t.key, Lead: p.takePending()}
		if t.hasValue {
			e.Node = &Scalar{Value: t.value, quote: t.quote, comment: t.comment}
		} else {
			node, err := p.parseBlock(indent, t)
			if err != nil {
				return nil, err
			}
			e.Node = node
			if node.Kind() != KindScalar {
				// the null-scalar case keeps the comment on the scalar
				e.comment = t.comment
			}
		}
		if !m.add(e) {
			return nil, errors.Newf(errors.ErrDuplicateKey, "duplicate key %q at line %d", t.key, t.line)
		}
	}
	return m, nil
}

// parseBlock handles the body of a "key:" line with no inline value:
// a nested mapping, a sequence, or a null scalar when nothing deeper
// follows.
func (p *parser) parseBlock(indent int, keyTok token) (Node, error) {
	next, ok := p.peek()
	if !ok || next.indent <= indent {
		return &Scalar{comment: keyTok.comment}, nil
	}
	if next.kind == tokenDash {
		return p.parseSequence(next.indent)
	}
	return p.parseMapping(next.indent)
}

// parseSequence consumes dash items at exactly the given indentation.
// An object item runs from its dash through the fields indented under
// it, closing at the next dash or any line at or below the dash level.
func (p *parser) parseSequence(indent int) (*Sequence, error) {
	seq := NewSequence()
	for {
		t, ok := p.peek()
		if !ok || t.indent != indent || t.kind != tokenDash {
			break
		}
		p.next()

		if !t.hasKey {
			seq.Append(&Scalar{Value: t.value, quote: t.quote, comment: t.comment})
			continue
		}

		item := NewMapping()
		first := &Entry{Key: t.key, Lead: p.takePending()}
		if t.hasValue {
			first.Node = &Scalar{Value: t.value, quote: t.quote, comment: t.comment}
		} else {
			first.Node = &Scalar{}
		}
		item.add(first)

		fieldIndent := indent + 2
		for {
			f, ok := p.peek()
			if !ok || f.kind != tokenEntry || f.indent != fieldIndent {
				break
			}
			if !f.hasValue {
				return nil, errors.Newf(errors.ErrParse, "object list fields must be scalars (line %d)", f.line)
			}
			p.next()
			fe := &Entry{Key: f.key, Lead: p.takePending()}
			fe.Node = &Scalar{Value: f.value, quote: f.quote, comment: f.comment}
			if !item.add(fe) {
				return nil, errors.Newf(errors.ErrDuplicateKey, "duplicate key %q at line %d", f.key, f.line)
			}
		}
		seq.Append(item)
	}
	return seq, nil
}
