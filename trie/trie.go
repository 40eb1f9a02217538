package trie

import (
	"bytes"

	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/crypto"
)

// Trie is a partial Merkle-Patricia Trie: a subset of the full key space
// is materialised as real nodes, and the rest may be represented by
// hashNode (Digest) placeholders substituted in by the witness resolver.
// Get/Update/Delete walk the live structure and fail with
// ErrNodeNotResolved when they would need to read through a Digest.
//
// Trie is not safe for concurrent use; per spec.md §5 each chunk driver
// owns its tries exclusively and there is no cross-chunk sharing.
type Trie struct {
	root node
}

// New creates a new, empty trie.
func New() *Trie { return &Trie{} }

// NewWithRoot creates a trie whose root is an already-resolved (or still
// partially Digest-backed) node, as produced by the witness resolver.
func NewWithRoot(root node) *Trie { return &Trie{root: root} }

// Root exposes the current root node, e.g. for a resolver to inspect or
// for a caller constructing a fresh trie over the same root (copy-on-
// write snapshotting per spec.md §9).
func (t *Trie) Root() node { return t.root }

// Get retrieves the value stored at key. Returns ErrNotFound if the key is
// absent, or *ErrNodeNotResolved if completing the lookup would require
// reading through an unresolved Digest subtree.
func (t *Trie) Get(key []byte) ([]byte, error) {
	return get(t.root, keybytesToHex(key))
}

func get(n node, key []byte) ([]byte, error) {
	switch n := n.(type) {
	case nil:
		return nil, ErrNotFound
	case hashNode:
		return nil, newNotResolved(n)
	case *leafNode:
		if bytes.Equal(n.Key, key) {
			return []byte(n.Val), nil
		}
		return nil, ErrNotFound
	case *extensionNode:
		if len(key) >= len(n.Key) && bytes.Equal(n.Key, key[:len(n.Key)]) {
			return get(n.Val, key[len(n.Key):])
		}
		return nil, ErrNotFound
	case *branchNode:
		if len(key) == 0 {
			return nil, ErrNotFound
		}
		return get(n.Children[key[0]], key[1:])
	default:
		return nil, ErrNotFound
	}
}

// Update inserts or updates the value at key. An empty/nil value deletes
// the key instead (the contract core/state builds on). Returns *ErrNodeNotResolved if the walk needs an unresolved Digest.
func (t *Trie) Update(key, value []byte) error {
	if len(value) == 0 {
		return t.Delete(key)
	}
	n, err := insert(t.root, keybytesToHex(key), valueNode(value))
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func insert(n node, key []byte, value valueNode) (node, error) {
	switch n := n.(type) {
	case nil:
		return &leafNode{Key: append([]byte(nil), key...), Val: value, flags: nodeFlag{dirty: true}}, nil

	case hashNode:
		return nil, newNotResolved(n)

	case *leafNode:
		match := prefixLen(key, n.Key)
		if match == len(n.Key) && match == len(key) {
			if bytes.Equal([]byte(n.Val), []byte(value)) {
				return n, nil // idempotent no-op: root is unchanged
			}
			return &leafNode{Key: n.Key, Val: value, flags: nodeFlag{dirty: true}}, nil
		}
		// Fixed-width (keccak) keys mean neither key can be a strict
		// prefix of the other, so match never reaches the terminator
		// nibble of either side here; if it somehow did, creating a
		// branch would require a value slot, which is forbidden.
		if match == len(n.Key) || match == len(key) {
			return nil, ErrValueInBranch
		}
		branch := &branchNode{flags: nodeFlag{dirty: true}}
		existingKey := n.Key[match:]
		branch.Children[existingKey[0]] = &leafNode{Key: existingKey[1:], Val: n.Val, flags: nodeFlag{dirty: true}}
		newKey := key[match:]
		branch.Children[newKey[0]] = &leafNode{Key: newKey[1:], Val: value, flags: nodeFlag{dirty: true}}
		if match > 0 {
			return &extensionNode{Key: append([]byte(nil), key[:match]...), Val: branch, flags: nodeFlag{dirty: true}}, nil
		}
		return branch, nil

	case *extensionNode:
		match := prefixLen(key, n.Key)
		if match == len(n.Key) {
			child, err := insert(n.Val, key[match:], value)
			if err != nil {
				return nil, err
			}
			return &extensionNode{Key: n.Key, Val: child, flags: nodeFlag{dirty: true}}, nil
		}
		branch := &branchNode{flags: nodeFlag{dirty: true}}
		existingIdx := n.Key[match]
		if rest := n.Key[match+1:]; len(rest) > 0 {
			branch.Children[existingIdx] = &extensionNode{Key: append([]byte(nil), rest...), Val: n.Val, flags: nodeFlag{dirty: true}}
		} else {
			branch.Children[existingIdx] = n.Val
		}
		newKey := key[match:]
		branch.Children[newKey[0]] = &leafNode{Key: newKey[1:], Val: value, flags: nodeFlag{dirty: true}}
		if match > 0 {
			return &extensionNode{Key: append([]byte(nil), key[:match]...), Val: branch, flags: nodeFlag{dirty: true}}, nil
		}
		return branch, nil

	case *branchNode:
		if len(key) == 0 {
			return nil, ErrValueInBranch
		}
		idx := key[0]
		child, err := insert(n.Children[idx], key[1:], value)
		if err != nil {
			return nil, err
		}
		nn := n.copy()
		nn.flags = nodeFlag{dirty: true}
		nn.Children[idx] = child
		return nn, nil

	default:
		return nil, ErrDecode
	}
}

// Delete removes key from the trie. Deleting an absent key is a no-op:
// the returned root is unchanged. Returns *ErrNodeNotResolved if the walk
// needs an unresolved Digest to determine whether the key is present.
func (t *Trie) Delete(key []byte) error {
	n, err := del(t.root, keybytesToHex(key))
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func del(n node, key []byte) (node, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil

	case hashNode:
		return nil, newNotResolved(n)

	case *leafNode:
		if bytes.Equal(n.Key, key) {
			return nil, nil
		}
		return n, nil // no-op: key not present under this leaf

	case *extensionNode:
		match := prefixLen(key, n.Key)
		if match < len(n.Key) {
			return n, nil // no-op: key diverges before this extension ends
		}
		child, err := del(n.Val, key[match:])
		if err != nil {
			return nil, err
		}
		if child == nil {
			return nil, nil
		}
		switch c := child.(type) {
		case *leafNode:
			return &leafNode{Key: concatNibbles(n.Key, c.Key), Val: c.Val, flags: nodeFlag{dirty: true}}, nil
		case *extensionNode:
			return &extensionNode{Key: concatNibbles(n.Key, c.Key), Val: c.Val, flags: nodeFlag{dirty: true}}, nil
		default:
			return &extensionNode{Key: n.Key, Val: child, flags: nodeFlag{dirty: true}}, nil
		}

	case *branchNode:
		if len(key) == 0 {
			return n, nil
		}
		idx := key[0]
		child, err := del(n.Children[idx], key[1:])
		if err != nil {
			return nil, err
		}
		nn := n.copy()
		nn.flags = nodeFlag{dirty: true}
		nn.Children[idx] = child

		remainingIdx, count := -1, 0
		for i, c := range nn.Children {
			if c != nil {
				count++
				remainingIdx = i
			}
		}
		if count > 1 {
			return nn, nil
		}
		if count == 0 {
			return nil, nil
		}
		remaining := nn.Children[remainingIdx]
		switch c := remaining.(type) {
		case *leafNode:
			return &leafNode{Key: concatNibbles([]byte{byte(remainingIdx)}, c.Key), Val: c.Val, flags: nodeFlag{dirty: true}}, nil
		case *extensionNode:
			return &extensionNode{Key: concatNibbles([]byte{byte(remainingIdx)}, c.Key), Val: c.Val, flags: nodeFlag{dirty: true}}, nil
		default:
			// A lone branch or digest child: collapse to an extension
			// over just the connecting nibble; its path cannot be
			// merged further without reading through the child.
			return &extensionNode{Key: []byte{byte(remainingIdx)}, Val: remaining, flags: nodeFlag{dirty: true}}, nil
		}

	default:
		return nil, ErrDecode
	}
}

func concatNibbles(a, b []byte) []byte {
	r := make([]byte, len(a)+len(b))
	copy(r, a)
	copy(r[len(a):], b)
	return r
}

// Hash computes the Keccak-256 root reference of the trie, recomputing
// only the subtrees touched since the last call (reference-cache
// correctness per spec.md §8). An empty trie returns the canonical
// empty-root hash.
func (t *Trie) Hash() types.Hash {
	if t.root == nil {
		return types.EmptyRootHash
	}
	h := newHasher()
	hashed, cached := h.hash(t.root, true)
	t.root = cached
	switch n := hashed.(type) {
	case hashNode:
		return types.BytesToHash(n)
	default:
		enc, _ := encodeNode(hashed)
		return crypto.Keccak256Hash(enc)
	}
}

// Empty reports whether the trie has no entries.
func (t *Trie) Empty() bool { return t.root == nil }
