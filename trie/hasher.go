package trie

import (
	"github.com/scrollstateless/verifier/crypto"
	"github.com/scrollstateless/verifier/rlp"
)

// hasher computes reference-cache-aware hashes of trie nodes. It is
// stateless (no shared hash-cons table across subtrees), matching
// spec.md §9's requirement that a cloned subtree share no cache cell with
// the original: cloning is done by value (node.copy()) before any dirty
// flag is cleared.
type hasher struct{}

func newHasher() *hasher { return &hasher{} }

// hash computes the reference of n. If force is true, the reference is
// always the 32-byte keccak (used for the root), even when the RLP
// encoding would fit inline. Returns the collapsed form (children replaced
// by their references, suitable for hashing/encoding) and the cached form
// (children replaced by their *already-hashed* counterparts, suitable for
// retention in the live trie with a fresh, non-dirty cache).
func (h *hasher) hash(n node, force bool) (node, node) {
	if hash, dirty := n.cache(); hash != nil && !dirty {
		return hash, n
	}
	collapsed, cached := h.hashChildren(n)
	hashed, err := h.store(collapsed, force)
	if err != nil {
		panic("trie: hasher: " + err.Error())
	}
	cachedHash, _ := hashed.(hashNode)
	switch cn := cached.(type) {
	case *leafNode:
		cn.flags.hash = cachedHash
		cn.flags.dirty = false
	case *extensionNode:
		cn.flags.hash = cachedHash
		cn.flags.dirty = false
	case *branchNode:
		cn.flags.hash = cachedHash
		cn.flags.dirty = false
	}
	return hashed, cached
}

func (h *hasher) hashChildren(original node) (node, node) {
	switch n := original.(type) {
	case *leafNode:
		// The value is cargo, not a subtree: nothing to recurse into.
		return n.copy(), n.copy()
	case *extensionNode:
		collapsed, cached := n.copy(), n.copy()
		childH, childC := h.hash(n.Val, false)
		collapsed.Val = childH
		cached.Val = childC
		return collapsed, cached
	case *branchNode:
		collapsed, cached := n.copy(), n.copy()
		for i := 0; i < 16; i++ {
			if n.Children[i] != nil {
				childH, childC := h.hash(n.Children[i], false)
				collapsed.Children[i] = childH
				cached.Children[i] = childC
			}
		}
		return collapsed, cached
	default:
		return n, n
	}
}

// store RLP-encodes n and returns either the raw encoding (if shorter than
// 32 bytes and not forced) or its Keccak-256 hash.
func (h *hasher) store(n node, force bool) (node, error) {
	switch n.(type) {
	case hashNode, valueNode:
		return n, nil
	}
	enc, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	if len(enc) < 32 && !force {
		return n, nil
	}
	return hashNode(crypto.Keccak256(enc)), nil
}

// encodeNode RLP-encodes a trie node per spec.md §4.B:
//
//	Null          -> single byte 0x80
//	Leaf/Extension -> 2-element list [encoded_path, value_or_child_ref]
//	Branch        -> 17-element list [child_0..child_15, "" (empty value slot)]
//	Digest        -> the raw 32-byte hash string
func encodeNode(n node) ([]byte, error) {
	switch n := n.(type) {
	case nil:
		return []byte{0x80}, nil
	case *leafNode:
		return encodeLeafNode(n)
	case *extensionNode:
		return encodeExtensionNode(n)
	case *branchNode:
		return encodeBranchNode(n)
	case hashNode:
		return []byte(n), nil
	case valueNode:
		return rlp.EncodeToBytes([]byte(n))
	default:
		return []byte{0x80}, nil
	}
}

func encodeLeafNode(n *leafNode) ([]byte, error) {
	keyEnc, err := rlp.EncodeToBytes(encodePath(n.Key, true))
	if err != nil {
		return nil, err
	}
	valEnc, err := rlp.EncodeToBytes([]byte(n.Val))
	if err != nil {
		return nil, err
	}
	return rlp.WrapList(append(keyEnc, valEnc...)), nil
}

func encodeExtensionNode(n *extensionNode) ([]byte, error) {
	keyEnc, err := rlp.EncodeToBytes(encodePath(n.Key, false))
	if err != nil {
		return nil, err
	}
	childEnc, err := encodeNodeRef(n.Val)
	if err != nil {
		return nil, err
	}
	return rlp.WrapList(append(keyEnc, childEnc...)), nil
}

func encodeBranchNode(n *branchNode) ([]byte, error) {
	var payload []byte
	for i := 0; i < 16; i++ {
		enc, err := encodeNodeRef(n.Children[i])
		if err != nil {
			return nil, err
		}
		payload = append(payload, enc...)
	}
	// The value slot is always empty: no-value-in-branch is a structural
	// invariant of branchNode, not just a decode-time check.
	payload = append(payload, 0x80)
	return rlp.WrapList(payload), nil
}

// encodeNodeRef encodes a child reference for inclusion in a parent's RLP
// payload: Null -> empty string, Digest/value -> RLP string,
// leaf/extension/branch -> their own raw RLP list bytes when shorter than
// 32 bytes, otherwise the RLP string of their Keccak-256 hash.
func encodeNodeRef(n node) ([]byte, error) {
	switch n := n.(type) {
	case nil:
		return []byte{0x80}, nil
	case hashNode:
		return rlp.EncodeToBytes([]byte(n))
	case valueNode:
		return rlp.EncodeToBytes([]byte(n))
	case *leafNode, *extensionNode, *branchNode:
		enc, err := encodeNode(n)
		if err != nil {
			return nil, err
		}
		if len(enc) >= 32 {
			return rlp.EncodeToBytes(crypto.Keccak256(enc))
		}
		return enc, nil
	default:
		return []byte{0x80}, nil
	}
}
