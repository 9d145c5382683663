package transform

import (
	"bytes"
	"encoding/ascii85"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"mime/quotedprintable"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dsnet/compress/bzip2"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"golang.org/x/net/idna"
	textunicode "golang.org/x/text/encoding/unicode"
)

const mimeLineLength = 76

// Binary-to-text encodings

func b64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func base64URL(b []byte) string {
	return base64.URLEncoding.EncodeToString(b)
}

func base64Mime(s string) string {
	encoded := b64([]byte(s))
	if len(encoded) <= mimeLineLength {
		return encoded
	}
	lines := make([]string, 0, len(encoded)/mimeLineLength+1)
	for len(encoded) > mimeLineLength {
		lines = append(lines, encoded[:mimeLineLength])
		encoded = encoded[mimeLineLength:]
	}
	lines = append(lines, encoded)
	return strings.Join(lines, "\n")
}

// base64DotPad keeps the padded length but swaps '=' for '.'.
func base64DotPad(s string) string {
	encoded := b64([]byte(s))
	trimmed := strings.TrimRight(encoded, "=")
	return trimmed + strings.Repeat(".", len(encoded)-len(trimmed))
}

func base64Decode(s string) (string, error) {
	cleaned := strings.Join(strings.Fields(s), "")
	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		var rawErr error
		decoded, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "="))
		if rawErr != nil {
			return "", fmt.Errorf("base64 decode failed: %w", err)
		}
	}
	if !utf8.Valid(decoded) {
		return "", errInvalidUTF8
	}
	return string(decoded), nil
}

func base32Std(b []byte) string {
	return base32.StdEncoding.EncodeToString(b)
}

const base85Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz!#$%&()*+-;<=>?@^_`{|}~"

// base85Encode uses the RFC 1924 alphabet. The final group is zero padded and
// the padding characters are dropped from the output.
func base85Encode(b []byte) string {
	padding := (4 - len(b)%4) % 4
	padded := make([]byte, len(b)+padding)
	copy(padded, b)

	out := make([]byte, 0, len(padded)/4*5)
	var group [5]byte
	for i := 0; i < len(padded); i += 4 {
		word := uint32(padded[i])<<24 | uint32(padded[i+1])<<16 | uint32(padded[i+2])<<8 | uint32(padded[i+3])
		for j := 4; j >= 0; j-- {
			group[j] = base85Alphabet[word%85]
			word /= 85
		}
		out = append(out, group[:]...)
	}
	return string(out[:len(out)-padding])
}

func ascii85Encode(b []byte) string {
	dst := make([]byte, ascii85.MaxEncodedLen(len(b)))
	n := ascii85.Encode(dst, b)
	return string(dst[:n])
}

func hexDecode(s string) (string, error) {
	cleaned := strings.NewReplacer("0x", "", `\x`, "", " ", "", ":", "", "-", "").Replace(s)
	decoded, err := hex.DecodeString(cleaned)
	if err != nil {
		return "", fmt.Errorf("hex decode failed: %w", err)
	}
	if !utf8.Valid(decoded) {
		return "", errInvalidUTF8
	}
	return string(decoded), nil
}

func hexJoined(b []byte, sep, prefix string) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%s%02x", prefix, c)
	}
	return strings.Join(parts, sep)
}

func reversedBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// quotedPrintable encodes line by line so LF and CRLF line breaks are kept
// as written. Soft breaks are "=\n" and a lone CR passes through.
func quotedPrintable(s string) (string, error) {
	lines := strings.Split(s, "\n")
	var out strings.Builder
	for i, line := range lines {
		eol := "\n"
		if i == len(lines)-1 {
			eol = ""
		} else if strings.HasSuffix(line, "\r") {
			line = line[:len(line)-1]
			eol = "\r\n"
		}
		encoded, err := quotedPrintableLine(line)
		if err != nil {
			return "", err
		}
		out.WriteString(encoded)
		out.WriteString(eol)
	}
	return out.String(), nil
}

func quotedPrintableLine(line string) (string, error) {
	var buf bytes.Buffer
	w := quotedprintable.NewWriter(&buf)
	w.Binary = true
	if _, err := io.WriteString(w, line); err != nil {
		return "", fmt.Errorf("quoted-printable write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("quoted-printable close failed: %w", err)
	}
	encoded := strings.ReplaceAll(buf.String(), "=\r\n", "=\n")
	return strings.ReplaceAll(encoded, "=0D", "\r"), nil
}

// RFC 3492 parameters.
const (
	punyBase        = 36
	punyTMin        = 1
	punyTMax        = 26
	punySkew        = 38
	punyDamp        = 700
	punyInitialBias = 72
	punyInitialN    = 128
)

// punycode is the bare RFC 3492 encoding of the whole input: basic code
// points first, a '-' delimiter when there were any, then the deltas. Dots
// are ordinary basic code points and no "xn--" prefix is added.
func punycode(s string) (string, error) {
	runes := []rune(s)
	out := make([]byte, 0, len(s)+8)
	for _, r := range runes {
		if r < utf8.RuneSelf {
			out = append(out, byte(r))
		}
	}
	basic := len(out)
	handled := basic
	if basic > 0 {
		out = append(out, '-')
	}

	n, delta, bias := punyInitialN, 0, punyInitialBias
	for handled < len(runes) {
		m := int(utf8.MaxRune) + 1
		for _, r := range runes {
			if int(r) >= n && int(r) < m {
				m = int(r)
			}
		}
		delta += (m - n) * (handled + 1)
		n = m
		for _, r := range runes {
			if int(r) < n {
				delta++
				continue
			}
			if int(r) != n {
				continue
			}
			q := delta
			for k := punyBase; ; k += punyBase {
				t := k - bias
				if t < punyTMin {
					t = punyTMin
				} else if t > punyTMax {
					t = punyTMax
				}
				if q < t {
					break
				}
				out = append(out, punyDigit(t+(q-t)%(punyBase-t)))
				q = (q - t) / (punyBase - t)
			}
			out = append(out, punyDigit(q))
			bias = punyAdapt(delta, handled+1, handled == basic)
			delta = 0
			handled++
		}
		delta++
		n++
	}
	return string(out), nil
}

func punyDigit(d int) byte {
	if d < 26 {
		return byte('a' + d)
	}
	return byte('0' + d - 26)
}

func punyAdapt(delta, points int, first bool) int {
	if first {
		delta /= punyDamp
	} else {
		delta /= 2
	}
	delta += delta / points
	k := 0
	for delta > ((punyBase-punyTMin)*punyTMax)/2 {
		delta /= punyBase - punyTMin
		k += punyBase
	}
	return k + (punyBase-punyTMin+1)*delta/(delta+punySkew)
}

// idnaASCII applies the IDNA punycode profile label by label, adding the
// "xn--" prefix to labels that need encoding.
func idnaASCII(s string) (string, error) {
	return idna.Punycode.ToASCII(s)
}

func utf16WithBOM(order textunicode.Endianness) Step {
	enc := textunicode.UTF16(order, textunicode.UseBOM)
	return func(s string) (string, error) {
		encoded, err := enc.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return "", err
		}
		return b64(encoded), nil
	}
}

// Compression

// codec compresses a byte slice. Implementations must be deterministic.
type codec func([]byte) ([]byte, error)

func streamCodec(open func(io.Writer) (io.WriteCloser, error)) codec {
	return func(input []byte) ([]byte, error) {
		var buf bytes.Buffer
		w, err := open(&buf)
		if err != nil {
			return nil, fmt.Errorf("open writer: %w", err)
		}
		if _, err := w.Write(input); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("write failed: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("close failed: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// gzipCodec leaves the header ModTime unset so output does not depend on the clock.
func gzipCodec(level int) codec {
	return streamCodec(func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, level)
	})
}

func zlibCodec(level int) codec {
	return streamCodec(func(w io.Writer) (io.WriteCloser, error) {
		return zlib.NewWriterLevel(w, level)
	})
}

func bzip2Codec(level int) codec {
	return streamCodec(func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: level})
	})
}

func xzCodec() codec {
	return streamCodec(func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	})
}

func lz4Codec(level lz4.CompressionLevel) codec {
	return streamCodec(func(w io.Writer) (io.WriteCloser, error) {
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(level)); err != nil {
			return nil, err
		}
		return zw, nil
	})
}

func snappyCodec() codec {
	return func(input []byte) ([]byte, error) {
		return snappy.Encode(nil, input), nil
	}
}

// zstd encoders are costly to build and safe for concurrent EncodeAll, so each
// level gets one lazily constructed encoder.
var (
	zstdDefault = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	})
	zstdBest = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression), zstd.WithEncoderConcurrency(1))
	})
)

func zstdCodec(encoder func() (*zstd.Encoder, error)) codec {
	return func(input []byte) ([]byte, error) {
		enc, err := encoder()
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		return enc.EncodeAll(input, nil), nil
	}
}

// compressThen compresses the UTF-8 bytes of the input and renders them with text.
func compressThen(c codec, text func([]byte) string) Step {
	return func(s string) (string, error) {
		compressed, err := c([]byte(s))
		if err != nil {
			return "", err
		}
		return text(compressed), nil
	}
}
