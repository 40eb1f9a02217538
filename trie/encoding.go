package trie

// Hex-prefix (HP) encoding as specified in the Ethereum Yellow Paper,
// Appendix C.
//
// Nibble sequences are encoded with a prefix byte that encodes both the
// parity of the sequence length and a "terminator" flag. In this trie
// that flag is never a free-floating bit: it is exactly the discriminant
// between the two node.go path-bearing variants. leafNode.Key always
// carries the trailing terminator nibble; extensionNode.Key never does
// (see node.go's field docs). encodePath/decodePath below are the only
// entry points hasher.go and decoder.go use to cross that boundary, so
// the terminator bit and the Leaf/Extension split can never drift apart
// silently.
//
// Hex nibble representation uses values 0x0-0xf for data nibbles and 0x10
// (the terminator) to mark the end of a leaf key.

const terminatorByte = 16

// encodePath hex-prefix encodes a leafNode or extensionNode's Key for RLP
// output, asserting the terminator/node-kind invariant described above
// rather than trusting the caller to have passed a well-formed key. A
// mismatch means a leafNode lost its terminator or an extensionNode
// acquired one somewhere in insert/delete, which is a programmer error,
// not a witness-data error, so it panics rather than returning one of the
// package's data-error sentinels.
func encodePath(key []byte, isLeaf bool) []byte {
	if hasTerm(key) != isLeaf {
		panic("trie: encodePath: terminator bit does not match node kind")
	}
	return hexToCompact(key)
}

// decodePath hex-prefix decodes an RLP-string path and reports, via the
// recovered terminator bit, whether the 2-element node it belongs to must
// be decoded as a leafNode (true) or an extensionNode (false) -- the
// inverse of encodePath.
func decodePath(compact []byte) (key []byte, isLeaf bool) {
	key = compactToHex(compact)
	return key, hasTerm(key)
}

// hexToCompact converts a hex nibble sequence (with possible terminator) to
// compact (hex-prefix) encoding.
//
// The high nibble of the first byte encodes flags:
//   - bit 1 (0x20): set if the path is a leaf (terminator present)
//   - bit 0 (0x10): set if the nibble count is odd
//
// If the nibble count is odd, the low nibble of the first byte holds the
// first nibble. If even, the low nibble is zero padding.
func hexToCompact(hex []byte) []byte {
	var flag byte
	if hasTerm(hex) {
		flag = 1
		hex = hex[:len(hex)-1]
	}
	buf := make([]byte, len(hex)/2+1)
	buf[0] = flag << 5
	if len(hex)%2 == 1 {
		buf[0] |= 1<<4 | hex[0]
		hex = hex[1:]
	}
	decodeNibbles(hex, buf[1:])
	return buf
}

// compactToHex converts compact (hex-prefix) encoded bytes back to the hex
// nibble sequence. If the compact encoding represents a leaf path, the
// returned nibble sequence includes the terminator nibble.
func compactToHex(compact []byte) []byte {
	if len(compact) == 0 {
		return compact
	}
	expanded := keybytesToHex(compact)
	// keybytesToHex appended its own terminator; HP framing supplies the
	// real one (or none), so drop the synthetic one first.
	expanded = expanded[:len(expanded)-1]

	isLeaf := expanded[0]&2 != 0
	skip := 2
	if expanded[0]&1 != 0 {
		skip = 1 // odd length: the first real nibble sits where padding would be
	}
	if !isLeaf {
		return expanded[skip:]
	}
	out := append([]byte(nil), expanded[skip:]...)
	return append(out, terminatorByte)
}

// keybytesToHex converts a raw byte key to a hex nibble sequence, appending
// a terminator nibble (0x10) at the end.
func keybytesToHex(str []byte) []byte {
	nibbles := make([]byte, len(str)*2+1)
	for i, b := range str {
		nibbles[i*2] = b >> 4
		nibbles[i*2+1] = b & 0x0f
	}
	nibbles[len(nibbles)-1] = terminatorByte
	return nibbles
}

// hexToKeybytes converts a hex nibble sequence (without terminator) back to
// the original byte key. The nibble sequence length must be even.
func hexToKeybytes(hex []byte) []byte {
	if hasTerm(hex) {
		hex = hex[:len(hex)-1]
	}
	if len(hex)%2 != 0 {
		panic("trie: hexToKeybytes: odd length hex key")
	}
	key := make([]byte, len(hex)/2)
	decodeNibbles(hex, key)
	return key
}

// decodeNibbles packs pairs of nibbles into bytes, high nibble first.
func decodeNibbles(nibbles, out []byte) {
	for i := 0; i < len(nibbles)/2; i++ {
		out[i] = nibbles[2*i]<<4 | nibbles[2*i+1]
	}
}

// prefixLen returns the length of the common prefix of a and b -- the
// "lcp" helper spec.md §4.A requires for both insert-split decisions and
// collapsing an extension's path with its surviving child on delete.
func prefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// hasTerm reports whether the hex nibble sequence ends with the terminator
// nibble -- equivalently, whether it belongs to a leafNode rather than an
// extensionNode.
func hasTerm(s []byte) bool {
	return len(s) > 0 && s[len(s)-1] == terminatorByte
}
