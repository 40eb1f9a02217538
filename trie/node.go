package trie

// node is the interface implemented by every non-Null trie node type. The
// Null variant of the spec's five-way tag is represented by the Go nil
// value of this interface, rather than a dedicated struct, since an empty
// subtree carries no data to tag.
type node interface {
	// cache returns the memoised reference (hash or nil if inline/unset)
	// and whether the node has been structurally mutated since it was
	// last hashed.
	cache() (hashNode, bool)
}

// leafNode is a terminal node: encodedPath (Key, nibbles including the
// trailing terminator) plus its value bytes. Corresponds to the spec's
// Leaf(encoded_path, value_bytes).
type leafNode struct {
	Key   []byte // hex nibbles, terminator-suffixed
	Val   valueNode
	flags nodeFlag
}

// extensionNode compresses a shared path to a single child, which is
// always a branchNode or a hashNode (never another leaf/extension —
// normalisation on delete collapses those away). Corresponds to the
// spec's Extension(encoded_path, child).
type extensionNode struct {
	Key   []byte // hex nibbles, no terminator
	Val   node
	flags nodeFlag
}

// branchNode is a 16-way fan-out with NO value slot: per spec.md §3/§4.B
// this implementation refuses value-bearing branches entirely, so unlike
// the classic go-ethereum fullNode (which reserves Children[16] for an
// embedded value) this type only has room for 16 children.
type branchNode struct {
	Children [16]node
	flags    nodeFlag
}

// hashNode is the spec's Digest variant: an opaque 32-byte placeholder for
// a subtree that has not been resolved from the witness. It is a distinct
// sum-type member, not a sentinel byte string, so "not yet resolved" can
// never be confused with "this is the real encoding of an empty node".
type hashNode []byte

// valueNode is the raw value payload stored under a leafNode. It is not
// one of the spec's five trie-node variants — it is the leaf's cargo, not
// a subtree — but needs to implement node so it can flow through the
// encode/decode and hashing plumbing uniformly.
type valueNode []byte

// nodeFlag carries the reference-cache bookkeeping described in spec.md
// §9: a fresh clone of a subtree must never share a cache cell with the
// original, so flags are always copied by value, never by pointer.
type nodeFlag struct {
	hash  hashNode
	dirty bool
}

func (n *leafNode) cache() (hashNode, bool)      { return n.flags.hash, n.flags.dirty }
func (n *extensionNode) cache() (hashNode, bool) { return n.flags.hash, n.flags.dirty }
func (n *branchNode) cache() (hashNode, bool)    { return n.flags.hash, n.flags.dirty }
func (n hashNode) cache() (hashNode, bool)       { return nil, true }
func (n valueNode) cache() (hashNode, bool)      { return nil, true }

func (n *leafNode) copy() *leafNode {
	cp := *n
	cp.Key = append([]byte(nil), n.Key...)
	return &cp
}

func (n *extensionNode) copy() *extensionNode {
	cp := *n
	cp.Key = append([]byte(nil), n.Key...)
	return &cp
}

func (n *branchNode) copy() *branchNode {
	cp := *n
	return &cp
}
