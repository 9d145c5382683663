package transform

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	textunicode "golang.org/x/text/encoding/unicode"
)

// Encoding identifies a byte encoding used by generated families.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingLatin1  Encoding = "latin1"
	EncodingCP1251  Encoding = "cp1251"
	EncodingCP1252  Encoding = "cp1252"
	EncodingUTF16LE Encoding = "utf-16le"
	EncodingUTF16BE Encoding = "utf-16be"
	EncodingUTF7    Encoding = "utf-7"
)

// Representation identifies how encoded bytes are rendered as text.
type Representation string

const (
	RepresentationHex     Representation = "hex"
	RepresentationBase64  Representation = "base64"
	RepresentationPercent Representation = "percent"
)

// FamilyEncodings lists the byte encodings in generation order.
var FamilyEncodings = []Encoding{
	EncodingUTF8,
	EncodingLatin1,
	EncodingCP1251,
	EncodingCP1252,
	EncodingUTF16LE,
	EncodingUTF16BE,
	EncodingUTF7,
}

// FamilyRepresentations lists the output representations in generation order.
var FamilyRepresentations = []Representation{
	RepresentationHex,
	RepresentationBase64,
	RepresentationPercent,
}

// replacementByte stands in for characters a single-byte code page cannot represent.
const replacementByte = '?'

// FamilySpec describes one generated transform. It is a plain value: the step
// built from it is a method value on a copy, so every generated transform owns
// its parameters.
type FamilySpec struct {
	Encoding       Encoding
	Representation Representation
}

// Name returns the registry name: the encoding identifier with punctuation
// removed, an underscore, then the representation.
func (f FamilySpec) Name() string {
	return identifierSafe(string(f.Encoding)) + "_" + string(f.Representation)
}

func (f FamilySpec) Transform() Transform {
	return NewTransform(
		f.Name(),
		CategoryFamily,
		fmt.Sprintf("Encode as %s and render the bytes as %s", f.Encoding, f.Representation),
		f.apply,
	)
}

func (f FamilySpec) apply(s string) (string, error) {
	raw, err := encodeBytes(f.Encoding, s)
	if err != nil {
		return "", err
	}
	return render(f.Representation, raw)
}

// FamilySpecs returns the full encoding x representation cross product.
func FamilySpecs() []FamilySpec {
	specs := make([]FamilySpec, 0, len(FamilyEncodings)*len(FamilyRepresentations))
	for _, enc := range FamilyEncodings {
		for _, repr := range FamilyRepresentations {
			specs = append(specs, FamilySpec{Encoding: enc, Representation: repr})
		}
	}
	return specs
}

func identifierSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, s)
}

func render(repr Representation, raw []byte) (string, error) {
	switch repr {
	case RepresentationHex:
		return hex.EncodeToString(raw), nil
	case RepresentationBase64:
		return b64(raw), nil
	case RepresentationPercent:
		return percentBytes(raw, false), nil
	default:
		return "", fmt.Errorf("unsupported representation %q", repr)
	}
}

func encodeBytes(enc Encoding, s string) ([]byte, error) {
	switch enc {
	case EncodingUTF8:
		return []byte(strings.ToValidUTF8(s, string(utf8.RuneError))), nil
	case EncodingLatin1:
		return encodeCodePage(charmap.ISO8859_1, s), nil
	case EncodingCP1251:
		return encodeCodePage(charmap.Windows1251, s), nil
	case EncodingCP1252:
		return encodeCodePage(charmap.Windows1252, s), nil
	case EncodingUTF16LE:
		return encodeWith(textunicode.UTF16(textunicode.LittleEndian, textunicode.IgnoreBOM), s)
	case EncodingUTF16BE:
		return encodeWith(textunicode.UTF16(textunicode.BigEndian, textunicode.IgnoreBOM), s)
	case EncodingUTF7:
		return encodeUTF7(s), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
}

// encodeCodePage maps each rune through a single-byte code page, writing '?'
// for runes the page cannot represent.
func encodeCodePage(cm *charmap.Charmap, s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := cm.EncodeRune(r)
		if !ok {
			b = replacementByte
		}
		out = append(out, b)
	}
	return out
}

func encodeWith(enc encoding.Encoding, s string) ([]byte, error) {
	return encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(s))
}

const utf7Base64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// utf7Direct reports the characters written as themselves: printable ASCII
// (RFC 2152 Set D and Set O) and whitespace. '+', '\\' and '~' are shifted.
func utf7Direct(r rune) bool {
	switch r {
	case '+', '\\', '~':
		return false
	case ' ', '\t', '\r', '\n':
		return true
	}
	return r > ' ' && r < 0x7f
}

func isUTF7Base64(r rune) bool {
	return r < utf8.RuneSelf && strings.IndexByte(utf7Base64, byte(r)) >= 0
}

// encodeUTF7 implements RFC 2152. A shift section is closed with '-' whenever
// the next direct character would otherwise be read as base64, and always at
// the end of input.
func encodeUTF7(s string) []byte {
	var out []byte
	var (
		inShift bool
		bits    uint
		buffer  uint32
	)
	flush := func(next rune, final bool) {
		if bits > 0 {
			out = append(out, utf7Base64[(buffer<<(6-bits))&0x3f])
		}
		bits, buffer = 0, 0
		if final || isUTF7Base64(next) || next == '-' {
			out = append(out, '-')
		}
		inShift = false
	}

	for _, r := range s {
		if utf7Direct(r) {
			if inShift {
				flush(r, false)
			}
			out = append(out, byte(r))
			continue
		}
		if !inShift {
			if r == '+' {
				out = append(out, '+', '-')
				continue
			}
			out = append(out, '+')
			inShift = true
		}
		for _, unit := range utf16.Encode([]rune{r}) {
			buffer = buffer<<16 | uint32(unit)
			bits += 16
			for bits >= 6 {
				bits -= 6
				out = append(out, utf7Base64[(buffer>>bits)&0x3f])
			}
			buffer &= (1 << bits) - 1
		}
	}
	if inShift {
		flush(0, true)
	}
	return out
}

// nestedPercentSpec applies url_all Count times.
type nestedPercentSpec struct {
	Count int
}

func (n nestedPercentSpec) Name() string {
	return fmt.Sprintf("double_url_%dx", n.Count)
}

func (n nestedPercentSpec) Transform() Transform {
	return NewTransform(
		n.Name(),
		CategoryEscape,
		fmt.Sprintf("Percent-encode every reserved byte %d times", n.Count),
		n.apply,
	)
}

func (n nestedPercentSpec) apply(s string) (string, error) {
	return nestedPercent(s, n.Count), nil
}

const (
	minNestedPercent = 2
	maxNestedPercent = 5
)

// familyTransforms returns the generated families in registration order: the
// byte-encoding cross product, the two lower-case percent variants, then the
// nested percent-encoding family.
func familyTransforms() []Transform {
	specs := FamilySpecs()
	out := make([]Transform, 0, len(specs)+2+maxNestedPercent-minNestedPercent+1)
	for _, spec := range specs {
		out = append(out, spec.Transform())
	}
	out = append(out,
		NewTransform("url_pct_lower", CategoryEscape, "Percent-encode all reserved bytes, lower-case output", pure(func(s string) string {
			return strings.ToLower(urlAll(s))
		})),
		NewTransform("percent_bytes_lower", CategoryEscape, "Percent-encode every UTF-8 byte with lower-case hex", pure(func(s string) string {
			return percentBytes([]byte(s), true)
		})),
	)
	for n := minNestedPercent; n <= maxNestedPercent; n++ {
		out = append(out, nestedPercentSpec{Count: n}.Transform())
	}
	return out
}
