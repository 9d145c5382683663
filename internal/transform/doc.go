// Package transform provides the payload encoding and obfuscation registry:
// named, total text-to-text transforms used to produce variants of security
// testing payloads.
//
// # Overview
//
// A Registry is built once and never changes afterwards. It holds three kinds
// of entries, registered in this order:
//   - the base set: hand-written encodings, escapes, ciphers, compression
//     pipelines and cosmetic mutations
//   - generated families: every byte encoding crossed with every output
//     representation (utf8_hex, cp1251_percent, ...) and the nested
//     percent-encoding family (double_url_2x .. double_url_5x)
//   - chains: first__then__second compositions over a sliding window of the
//     names registered before them
//
// # Quick Start
//
//	out, err := transform.Apply("base64", "abc")
//	// out: "YWJj"
//
//	for _, name := range transform.List() {
//	    fmt.Println(name)
//	}
//
// A dedicated registry with reproducible shuffling and a custom chain window:
//
//	reg, err := transform.New(
//	    transform.WithSeed(42),
//	    transform.WithChainWindow(10, 2),
//	)
//
// # Failure Policy
//
// Transforms never fail. When a step returns an error or panics, for example
// url_decode on a malformed escape, the transform returns its input unchanged.
// Chains apply the same rule to the pair as a whole: a failure in either stage
// returns the chain's original input, not the intermediate value.
//
// Apply on a Registry fails only with ErrUnknownTransform.
//
// # Determinism
//
// Every transform except shuffle_string is deterministic. shuffle_string draws
// from the RandomSource passed with WithRandom or WithSeed.
//
// # Thread Safety
//
// A Registry is read-only after New returns and may be shared between
// goroutines. The default RandomSource serialises access to its generator.
package transform
