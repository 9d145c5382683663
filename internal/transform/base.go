package transform

import (
	"encoding/hex"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
	textunicode "golang.org/x/text/encoding/unicode"
)

func utf8Hex(s string) string {
	return hex.EncodeToString([]byte(s))
}

// baseTransforms returns the hand-written vocabulary in registration order.
// The order is significant: the leading entries seed the chain family.
func baseTransforms(rnd RandomSource) []Transform {
	return []Transform{
		NewTransform("noop", CategoryIdentity, "Return the input unchanged", pure(func(s string) string {
			return s
		})),
		NewTransform("base64", CategoryEncode, "Standard Base64", pure(func(s string) string {
			return b64([]byte(s))
		})),
		NewTransform("base64_urlsafe", CategoryEncode, "URL-safe Base64 ('-' and '_' alphabet)", pure(func(s string) string {
			return base64URL([]byte(s))
		})),
		NewTransform("base64_nopad", CategoryEncode, "Base64 without '=' padding", pure(func(s string) string {
			return strings.TrimRight(b64([]byte(s)), "=")
		})),
		NewTransform("hex_lower", CategoryEncode, "Lower-case hexadecimal", pure(utf8Hex)),
		NewTransform("hex_upper", CategoryEncode, "Upper-case hexadecimal", pure(func(s string) string {
			return strings.ToUpper(utf8Hex(s))
		})),
		NewTransform("backslash_x", CategoryEscape, `Every byte as \xNN`, pure(func(s string) string {
			return hexJoined([]byte(s), "", `\x`)
		})),
		NewTransform("url_all", CategoryEscape, "Percent-encode everything except unreserved characters", pure(urlAll)),
		NewTransform("url_safe_slash", CategoryEscape, "Percent-encode, keeping '/'", pure(func(s string) string {
			return percentEscape(s, "/")
		})),
		NewTransform("double_url", CategoryEscape, "Percent-encode twice", pure(func(s string) string {
			return nestedPercent(s, 2)
		})),
		NewTransform("html_named", CategoryEscape, "HTML-escape with named entities", pure(htmlNamedReplacer.Replace)),
		NewTransform("html_num_dec", CategoryEscape, "HTML decimal references for specials and non-ASCII", pure(func(s string) string {
			return htmlNumeric(s, "&#%d;", false)
		})),
		NewTransform("html_num_hex", CategoryEscape, "HTML hexadecimal references for specials and non-ASCII", pure(func(s string) string {
			return htmlNumeric(s, "&#x%x;", false)
		})),
		NewTransform("unicode_escape", CategoryEscape, "Backslash escapes for control and non-ASCII characters", pure(unicodeEscape)),
		NewTransform("js_escape", CategoryEscape, "JavaScript string literal escaping", pure(jsEscape)),
		NewTransform("rot13", CategoryCipher, "Rotate ASCII letters by 13", pure(rot13)),
		NewTransform("rot47", CategoryCipher, "Rotate printable ASCII by 47", pure(rot47)),
		NewTransform("gzip_base64", CategoryCompress, "Gzip, then Base64", compressThen(gzipCodec(gzip.DefaultCompression), b64)),
		NewTransform("zlib_base64", CategoryCompress, "Zlib, then Base64", compressThen(zlibCodec(zlib.DefaultCompression), b64)),
		NewTransform("bz2_base64", CategoryCompress, "Bzip2, then Base64", compressThen(bzip2Codec(bzip2.DefaultCompression), b64)),
		NewTransform("lzma_base64", CategoryCompress, "XZ/LZMA2, then Base64", compressThen(xzCodec(), b64)),
		NewTransform("base32", CategoryEncode, "Standard Base32", pure(func(s string) string {
			return base32Std([]byte(s))
		})),
		NewTransform("base85", CategoryEncode, "Base85 (RFC 1924 alphabet)", pure(func(s string) string {
			return base85Encode([]byte(s))
		})),
		NewTransform("ascii85", CategoryEncode, "Ascii85", pure(func(s string) string {
			return ascii85Encode([]byte(s))
		})),
		NewTransform("quoted_printable", CategoryEncode, "Quoted-printable", quotedPrintable),
		NewTransform("punycode", CategoryEncode, "RFC 3492 Punycode of the whole string", punycode),
		NewTransform("base64_custom_chars", CategoryEncode, "Base64 with '+' as '_' and '/' as '-'", pure(func(s string) string {
			return strings.NewReplacer("+", "_", "/", "-").Replace(b64([]byte(s)))
		})),
		NewTransform("base64_dot_pad", CategoryEncode, "Base64 padded with '.' instead of '='", pure(base64DotPad)),
		NewTransform("hex_colon", CategoryEncode, "Hex bytes separated by ':'", pure(func(s string) string {
			return hexJoined([]byte(s), ":", "")
		})),
		NewTransform("hex_space", CategoryEncode, "Hex bytes separated by spaces", pure(func(s string) string {
			return hexJoined([]byte(s), " ", "")
		})),
		NewTransform("hex_reverse", CategoryEncode, "Hex of the byte-reversed input", pure(func(s string) string {
			return hex.EncodeToString(reversedBytes([]byte(s)))
		})),
		NewTransform("rot5_digits", CategoryCipher, "Rotate digits by 5", pure(rot5Digits)),
		NewTransform("rot13_base64", CategoryCipher, "ROT13, then Base64", pure(func(s string) string {
			return b64([]byte(rot13(s)))
		})),
		NewTransform("base64_mime", CategoryEncode, "Base64 wrapped at 76 columns", pure(base64Mime)),
		NewTransform("url_encode_plus", CategoryEscape, "Form encoding, space as '+'", pure(formEncode)),
		NewTransform("url_decode", CategoryDecode, "Percent-decode; malformed input is returned unchanged", urlDecode),
		NewTransform("html_escape_num_only", CategoryEscape, "Decimal references for the five HTML specials only", pure(func(s string) string {
			return htmlNumeric(s, "&#%d;", true)
		})),
		NewTransform("hex_0x_prefix", CategoryEncode, "Every byte as 0xNN", pure(func(s string) string {
			return hexJoined([]byte(s), "", "0x")
		})),
		NewTransform("unicode_escape_upper", CategoryEscape, `Non-ASCII as \uXXXX with upper-case hex`, pure(unicodeEscapeUpper)),
		NewTransform("shuffle_string", CategoryCosmetic, "Random permutation of the characters", shuffleStep(rnd)),
		NewTransform("repeat_2x", CategoryCosmetic, "Repeat twice", pure(func(s string) string {
			return strings.Repeat(s, 2)
		})),
		NewTransform("repeat_3x", CategoryCosmetic, "Repeat three times", pure(func(s string) string {
			return strings.Repeat(s, 3)
		})),
		NewTransform("prefix_enc", CategoryCosmetic, "Prefix with 'ENC:'", pure(func(s string) string {
			return "ENC:" + s
		})),
		NewTransform("suffix_end", CategoryCosmetic, "Suffix with ':END'", pure(func(s string) string {
			return s + ":END"
		})),
		NewTransform("reverse_string", CategoryCosmetic, "Reverse the characters", pure(reverseRunes)),
		NewTransform("reverse_bytes_hex", CategoryEncode, "Reverse the UTF-8 bytes, then hex", pure(func(s string) string {
			return hex.EncodeToString(reversedBytes([]byte(s)))
		})),
		NewTransform("utf16le_bom_base64", CategoryEncode, "UTF-16LE with BOM, then Base64", utf16WithBOM(textunicode.LittleEndian)),
		NewTransform("utf16be_bom_base64", CategoryEncode, "UTF-16BE with BOM, then Base64", utf16WithBOM(textunicode.BigEndian)),
		NewTransform("zlib_max_base64", CategoryCompress, "Zlib at level 9, then Base64", compressThen(zlibCodec(zlib.BestCompression), b64)),
		NewTransform("gzip_max_base64", CategoryCompress, "Gzip at level 9, then Base64", compressThen(gzipCodec(gzip.BestCompression), b64)),
		NewTransform("ascii_codes_dash", CategoryEncode, "Decimal code points joined by '-'", pure(func(s string) string {
			return asciiCodes(s, "-")
		})),
		NewTransform("ascii_codes_to_hex", CategoryEncode, "Concatenated decimal code points, then hex", pure(func(s string) string {
			return utf8Hex(asciiCodes(s, ""))
		})),
		NewTransform("base64_no_pad", CategoryEncode, "Base64 with trailing '=' removed", pure(func(s string) string {
			return strings.TrimRight(b64([]byte(s)), "=")
		})),
		NewTransform("base85_rot13", CategoryCipher, "Base85, then ROT13", pure(func(s string) string {
			return rot13(base85Encode([]byte(s)))
		})),
		NewTransform("base32_no_pad", CategoryEncode, "Base32 without padding", pure(func(s string) string {
			return strings.TrimRight(base32Std([]byte(s)), "=")
		})),
		NewTransform("remove_whitespace", CategoryCosmetic, "Drop spaces and tabs", pure(func(s string) string {
			return strings.NewReplacer(" ", "", "\t", "").Replace(s)
		})),
		NewTransform("unicode_codepoints_space", CategoryEncode, "U+XXXX code points separated by spaces", pure(unicodeCodepoints)),
		NewTransform("escape_quotes", CategoryEscape, `Escape '"' with a backslash`, pure(func(s string) string {
			return strings.ReplaceAll(s, `"`, `\"`)
		})),
		NewTransform("escape_apostrophes", CategoryEscape, `Escape "'" with a backslash`, pure(func(s string) string {
			return strings.ReplaceAll(s, `'`, `\'`)
		})),
		NewTransform("base64_replace_a", CategoryEncode, "Base64 with 'A' as '@'", pure(func(s string) string {
			return strings.ReplaceAll(b64([]byte(s)), "A", "@")
		})),
		NewTransform("qp_custom", CategoryEncode, "Quoted-printable with '_' as '=5F'", func(s string) (string, error) {
			qp, err := quotedPrintable(s)
			if err != nil {
				return "", err
			}
			return strings.ReplaceAll(qp, "_", "=5F"), nil
		}),
		NewTransform("hex_then_base64", CategoryEncode, "Hex, then Base64", pure(func(s string) string {
			return b64([]byte(utf8Hex(s)))
		})),
		NewTransform("base64_then_hex", CategoryEncode, "Base64, then hex", pure(func(s string) string {
			return utf8Hex(b64([]byte(s)))
		})),
		NewTransform("zlib_then_hex", CategoryCompress, "Zlib, then hex", compressThen(zlibCodec(zlib.DefaultCompression), hex.EncodeToString)),
		NewTransform("lzma_then_hex", CategoryCompress, "XZ/LZMA2, then hex", compressThen(xzCodec(), hex.EncodeToString)),

		NewTransform("base64_decode", CategoryDecode, "Decode Base64, tolerating missing padding", base64Decode),
		NewTransform("hex_decode", CategoryDecode, `Decode hex, ignoring 0x, \x and separators`, hexDecode),
		NewTransform("url_decode_plus", CategoryDecode, "Form decoding, '+' as space", urlDecodePlus),
		NewTransform("bz2_max_base64", CategoryCompress, "Bzip2 at level 9, then Base64", compressThen(bzip2Codec(bzip2.BestCompression), b64)),
		NewTransform("zstd_base64", CategoryCompress, "Zstandard, then Base64", compressThen(zstdCodec(zstdDefault), b64)),
		NewTransform("zstd_max_base64", CategoryCompress, "Zstandard at best compression, then Base64", compressThen(zstdCodec(zstdBest), b64)),
		NewTransform("lz4_base64", CategoryCompress, "LZ4 frame, then Base64", compressThen(lz4Codec(lz4.Fast), b64)),
		NewTransform("lz4_max_base64", CategoryCompress, "LZ4 frame at level 9, then Base64", compressThen(lz4Codec(lz4.Level9), b64)),
		NewTransform("snappy_base64", CategoryCompress, "Snappy block, then Base64", compressThen(snappyCodec(), b64)),
		NewTransform("idna_ascii", CategoryEncode, "IDNA ToASCII, xn-- prefixed Punycode per label", idnaASCII),
	}
}

func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
