package literal

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// toHCL rewrites quoting so that the literal becomes a valid HCL expression.
// Everything outside of quotes is copied unchanged.
func toHCL(text string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(text); {
		switch c := text[i]; c {
		case '\'', '"':
			s, n, err := readQuoted(text[i:], c)
			if err != nil {
				return "", err
			}
			writeHCLString(&b, s)
			i += n
		case '`':
			end := strings.IndexByte(text[i+1:], '`')
			if end < 0 {
				return "", fmt.Errorf("unterminated quoted name")
			}
			writeHCLString(&b, text[i+1:i+1+end])
			i += end + 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// readQuoted decodes a quoted string starting at s[0] and returns its content
// and the number of bytes consumed.
func readQuoted(s string, quote byte) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(s); {
		c := s[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\':
			if i+1 >= len(s) {
				return "", 0, fmt.Errorf("unterminated string")
			}
			esc := s[i+1]
			i += 2
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				if i+4 > len(s) {
					return "", 0, fmt.Errorf("invalid unicode escape")
				}
				var r rune
				if _, err := fmt.Sscanf(s[i:i+4], "%04x", &r); err != nil {
					return "", 0, fmt.Errorf("invalid unicode escape %q", s[i:i+4])
				}
				b.WriteRune(r)
				i += 4
			default:
				// \\, \', \" and unknown escapes keep the escaped character
				b.WriteByte(esc)
			}
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			b.WriteString(s[i : i+size])
			i += size
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

// writeHCLString writes s as a double quoted HCL string. Template sequences
// are escaped so the string can never interpolate.
func writeHCLString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '$', '%':
			b.WriteRune(r)
			if i+1 < len(s) && s[i+1] == '{' {
				b.WriteRune(r)
			}
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
