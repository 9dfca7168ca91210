package xcode

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// encodeOpenStep writes v as an OpenStep property list laid out the way
// plist.MarshalIndent lays it out with a tab indent. Strings are written
// as UTF-8 rather than escaped, which is how Xcode reads a pbxproj that
// starts with the UTF-8 header.
func encodeOpenStep(buf *bytes.Buffer, v any, depth int) error {
	switch v := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		buf.WriteByte('{')
		for _, k := range keys {
			writeIndent(buf, depth+1)
			buf.WriteString(quoteOpenStep(k))
			buf.WriteString(" = ")
			if err := encodeOpenStep(buf, v[k], depth+1); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			buf.WriteByte(';')
		}
		writeIndent(buf, depth)
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('(')
		for _, e := range v {
			writeIndent(buf, depth+1)
			if err := encodeOpenStep(buf, e, depth+1); err != nil {
				return err
			}
			buf.WriteByte(',')
		}
		writeIndent(buf, depth)
		buf.WriteByte(')')
	case []string:
		a := make([]any, len(v))
		for i, s := range v {
			a[i] = s
		}

		return encodeOpenStep(buf, a, depth)
	case string:
		buf.WriteString(quoteOpenStep(v))
	case []byte:
		buf.WriteByte('<')
		buf.WriteString(hex.EncodeToString(v))
		buf.WriteByte('>')
	default:
		return fmt.Errorf("cannot encode %T", v)
	}

	return nil
}

func writeIndent(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	for range depth {
		buf.WriteByte('\t')
	}
}

func isUnquoted(r rune) bool {
	return r < utf8.RuneSelf && (r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		strings.ContainsRune("_$./:-+", r))
}

// quoteOpenStep quotes s unless every character of it can be read back
// unquoted. "//" and "/*" start comments, so they are always quoted.
func quoteOpenStep(s string) string {
	if s != "" && !strings.Contains(s, "//") && !strings.Contains(s, "/*") && strings.IndexFunc(s, func(r rune) bool { return !isUnquoted(r) }) < 0 {
		return s
	}

	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\U%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')

	return b.String()
}
