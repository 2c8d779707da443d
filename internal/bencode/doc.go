// Package bencode decodes bencoded blobs into an immutable Value tree.
//
// Grammar:
// - integers: i<digits>e, canonical form only (no leading zero, no -0)
// - strings: <len>:<bytes>, length counted in bytes
// - lists: l<value>*e
// - dictionaries: d(<string><value>)*e
//
// The whole input must be in memory before decoding. Decoding keeps no
// state between calls, so concurrent calls on distinct inputs are safe.
package bencode
