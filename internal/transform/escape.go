package transform

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const upperHex = "0123456789ABCDEF"

var errInvalidUTF8 = errors.New("result is not valid UTF-8")

func isUnreserved(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	case b == '-', b == '.', b == '_', b == '~':
		return true
	}
	return false
}

// percentEscape escapes every UTF-8 byte outside the RFC 3986 unreserved set and
// the caller's extra safe bytes, using upper-case hex.
func percentEscape(s, safe string) string {
	var sb strings.Builder
	sb.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isUnreserved(b) || strings.IndexByte(safe, b) >= 0 {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[b>>4])
		sb.WriteByte(upperHex[b&0x0f])
	}
	return sb.String()
}

// percentBytes escapes every byte, unreserved or not.
func percentBytes(b []byte, lower bool) string {
	format := "%%%02X"
	if lower {
		format = "%%%02x"
	}
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for _, c := range b {
		fmt.Fprintf(&sb, format, c)
	}
	return sb.String()
}

func urlAll(s string) string {
	return percentEscape(s, "")
}

// formEncode is application/x-www-form-urlencoded escaping: space becomes '+'.
func formEncode(s string) string {
	return url.QueryEscape(s)
}

func nestedPercent(s string, n int) string {
	for i := 0; i < n; i++ {
		s = urlAll(s)
	}
	return s
}

func urlDecode(s string) (string, error) {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("url decode failed: %w", err)
	}
	if !utf8.ValidString(decoded) {
		return "", errInvalidUTF8
	}
	return decoded, nil
}

func urlDecodePlus(s string) (string, error) {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return "", fmt.Errorf("url decode failed: %w", err)
	}
	if !utf8.ValidString(decoded) {
		return "", errInvalidUTF8
	}
	return decoded, nil
}

var htmlNamedReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

func htmlSpecial(r rune) bool {
	return strings.ContainsRune(`<>&"'`, r)
}

// htmlNumeric writes numeric character references for non-ASCII runes and, when
// specialsOnly is false or the rune is one of the five HTML specials, for those too.
func htmlNumeric(s, format string, specialsOnly bool) string {
	var sb strings.Builder
	for _, r := range s {
		escape := htmlSpecial(r)
		if !specialsOnly && r > 127 {
			escape = true
		}
		if escape {
			fmt.Fprintf(&sb, format, r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// unicodeEscape mirrors the unicode_escape text codec: backslash and
// the common control characters get short escapes, everything outside
// printable ASCII is written as \x, \u or \U with lower-case hex.
func unicodeEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r < 0x20 || (r >= 0x7f && r < 0x100):
			fmt.Fprintf(&sb, `\x%02x`, r)
		case r >= 0x100 && r < 0x10000:
			fmt.Fprintf(&sb, `\u%04x`, r)
		case r >= 0x10000:
			fmt.Fprintf(&sb, `\U%08x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func jsEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\'' || r == '"' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r >= 32 && r < 127:
			sb.WriteRune(r)
		default:
			writeJSCodeUnits(&sb, r)
		}
	}
	return sb.String()
}

// writeJSCodeUnits emits \uXXXX per UTF-16 code unit so astral runes become a
// surrogate pair, as a JavaScript string literal requires.
func writeJSCodeUnits(sb *strings.Builder, r rune) {
	if r < 0x10000 {
		fmt.Fprintf(sb, `\u%04x`, r)
		return
	}
	r -= 0x10000
	fmt.Fprintf(sb, `\u%04x\u%04x`, 0xd800+(r>>10), 0xdc00+(r&0x3ff))
}

func unicodeEscapeUpper(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r > 127 {
			fmt.Fprintf(&sb, `\u%04X`, r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func unicodeCodepoints(s string) string {
	parts := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		parts = append(parts, fmt.Sprintf("U+%04X", r))
	}
	return strings.Join(parts, " ")
}

func asciiCodes(s, sep string) string {
	parts := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		parts = append(parts, strconv.Itoa(int(r)))
	}
	return strings.Join(parts, sep)
}

// Rotation ciphers

func rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case 'A' <= r && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}, s)
}

func rot47(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 33 && r <= 126 {
			return 33 + (r-33+47)%94
		}
		return r
	}, s)
}

func rot5Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if '0' <= r && r <= '9' {
			return '0' + (r-'0'+5)%10
		}
		return r
	}, s)
}
