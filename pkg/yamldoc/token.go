package yamldoc

import (
	"strings"

	"github.com/stenciltools/stencil/pkg/errors"
)

type tokenKind int

const (
	tokenEntry tokenKind = iota // key: [value]
	tokenDash                   // - [value] or - key: [value]
	tokenBlank
	tokenComment
)

// token is one significant line of the source document, with its
// indentation measured and key/value split performed.
type token struct {
	kind     tokenKind
	line     int // 1-based
	indent   int
	raw      string
	key      string
	hasKey   bool
	hasValue bool
	value    string
	quote    byte
	comment  string
}

// tokenize splits the document into indentation-aware line tokens.
// Tabs in indentation and flow-style constructs are rejected here so
// the parser only ever sees the supported subset.
func tokenize(data []byte) ([]token, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	// A trailing newline produces one empty trailing element; drop it
	// so it does not register as a blank line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	toks := make([]token, 0, len(lines))
	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			toks = append(toks, token{kind: tokenBlank, line: lineNo, raw: raw})
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			toks = append(toks, token{kind: tokenComment, line: lineNo, raw: raw})
			continue
		}

		indent := 0
		for indent < len(raw) && raw[indent] == ' ' {
			indent++
		}
		if indent < len(raw) && raw[indent] == '\t' {
			return nil, errors.Newf(errors.ErrParse, "tab indentation at line %d", lineNo)
		}
		body := raw[indent:]

		if body == "---" {
			return nil, errors.Newf(errors.ErrParse, "multi-document streams are not supported (line %d)", lineNo)
		}

		tok := token{line: lineNo, indent: indent, raw: raw}
		if body == "-" || strings.HasPrefix(body, "- ") {
			tok.kind = tokenDash
			rest := strings.TrimPrefix(strings.TrimPrefix(body, "-"), " ")
			if key, val, hasVal, ok := splitKeyValue(rest); ok {
				tok.key = key
				tok.hasKey = true
				tok.hasValue = hasVal
				if hasVal {
					tok.value, tok.quote, tok.comment = extractValue(val)
					tok.hasValue = tok.value != "" || tok.quote != 0
				}
			} else {
				tok.hasValue = true
				tok.value, tok.quote, tok.comment = extractValue(rest)
			}
			toks = append(toks, tok)
			continue
		}

		key, val, hasVal, ok := splitKeyValue(body)
		if !ok {
			return nil, errors.Newf(errors.ErrParse, "expected 'key:' or 'key: value' at line %d", lineNo)
		}
		tok.kind = tokenEntry
		tok.key = key
		tok.hasKey = true
		if hasVal {
			tok.value, tok.quote, tok.comment = extractValue(val)
			// "key:   # note" is a null value with a comment, not a scalar
			tok.hasValue = tok.value != "" || tok.quote != 0
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

// splitKeyValue splits "key: value" or "key:" into its parts. A colon
// only terminates the key when followed by a space or end of line, so
// URL values like "https://..." never masquerade as keys.
func splitKeyValue(s string) (key, value string, hasValue, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != ':' {
			continue
		}
		if i == 0 {
			return "", "", false, false
		}
		if i == len(s)-1 {
			return s[:i], "", false, true
		}
		if s[i+1] == ' ' {
			return s[:i], strings.TrimLeft(s[i+1:], " "), true, true
		}
		// colon inside the value (e.g. a URL): not a key separator
		return "", "", false, false
	}
	return "", "", false, false
}

// extractValue strips an inline comment and surrounding quotes from a
// raw value. A '#' starts a comment only outside quotes and when it
// begins the value or follows a space.
func extractValue(raw string) (value string, quote byte, comment string) {
	var inQuote byte
	cut := -1
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case inQuote != 0:
			if c == inQuote {
				inQuote = 0
			}
		case c == '\'' || c == '"':
			inQuote = c
		case c == '#' && (i == 0 || raw[i-1] == ' '):
			cut = i
		}
		if cut >= 0 {
			break
		}
	}

	value = raw
	if cut >= 0 {
		// keep the comment with its leading spaces for the serializer
		start := cut
		for start > 0 && raw[start-1] == ' ' {
			start--
		}
		comment = raw[start:]
		value = raw[:start]
	}
	value = strings.TrimRight(value, " ")

	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' || first == '"') && first == last {
			quote = first
			value = value[1 : len(value)-1]
		}
	}
	return value, quote, comment
}
