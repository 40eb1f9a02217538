package trie

import (
	"fmt"

	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/crypto"
)

// ErrRootMismatch is returned when a resolved trie's computed root does not
// match the root the witness declared for it.
type ErrRootMismatch struct {
	Expected types.Hash
	Actual   types.Hash
}

func (e *ErrRootMismatch) Error() string {
	return fmt.Sprintf("trie: root mismatch: expected %s, got %s", e.Expected.Hex(), e.Actual.Hex())
}

// NodeIndex is a witness's flat pool of RLP-encoded trie nodes, indexed by
// Keccak-256 hash. It backs the Digest-substitution resolution of every
// root the witness describes: the top-level state root and every
// account's storage root, since state and storage nodes are commingled in
// a single witness (spec.md §3/§4.C).
type NodeIndex struct {
	byHash map[types.Hash]node
}

// BuildNodeIndex decodes every witness node and indexes it by the
// Keccak-256 hash of its own RLP encoding.
func BuildNodeIndex(nodeRLPs [][]byte) (*NodeIndex, error) {
	idx := &NodeIndex{byHash: make(map[types.Hash]node, len(nodeRLPs))}
	for _, raw := range nodeRLPs {
		h := crypto.Keccak256Hash(raw)
		n, err := decodeNode(hashNode(h.Bytes()), raw)
		if err != nil {
			return nil, fmt.Errorf("trie: decode witness node %s: %w", h.Hex(), err)
		}
		idx.byHash[h] = n
	}
	return idx, nil
}

// Resolve builds a *Trie rooted at rootHash: if a node with that hash is
// present in the index it becomes the root (recursively substituted);
// otherwise the root is a synthetic Digest(rootHash) placeholder
// (spec.md §4.C step 2). The resolved trie's computed hash is validated
// against rootHash before it is returned.
func (idx *NodeIndex) Resolve(rootHash types.Hash) (*Trie, error) {
	if rootHash == types.EmptyRootHash {
		return &Trie{}, nil
	}
	var root node
	if n, ok := idx.byHash[rootHash]; ok {
		root = idx.substitute(n)
	} else {
		root = hashNode(append([]byte(nil), rootHash.Bytes()...))
	}
	t := &Trie{root: root}
	if got := t.Hash(); got != rootHash {
		return nil, &ErrRootMismatch{Expected: rootHash, Actual: got}
	}
	return t, nil
}

// Has reports whether a node with the given hash is present in the index,
// used to distinguish "storage root absent from the witness" (only an
// error if execution later reads through it) from a genuine mismatch.
func (idx *NodeIndex) Has(hash types.Hash) bool {
	_, ok := idx.byHash[hash]
	return ok
}

// substitute recursively replaces every Digest child whose hash is present
// in the index with the decoded node it refers to. Each call clones the
// path it descends so no cache cell is shared between two resolutions of
// overlapping subtrees (spec.md §9).
func (idx *NodeIndex) substitute(n node) node {
	switch n := n.(type) {
	case hashNode:
		h := types.BytesToHash(n)
		if real, ok := idx.byHash[h]; ok {
			return idx.substitute(real)
		}
		return n
	case *leafNode:
		return n
	case *extensionNode:
		cp := n.copy()
		cp.Val = idx.substitute(n.Val)
		return cp
	case *branchNode:
		cp := n.copy()
		for i := 0; i < 16; i++ {
			if n.Children[i] != nil {
				cp.Children[i] = idx.substitute(n.Children[i])
			}
		}
		return cp
	default:
		return n
	}
}

// Walk visits every resolved (key, value) leaf pair reachable without
// crossing an unresolved Digest. Unlike Get, Walk never errors on a
// Digest it cannot descend into — it simply skips that subtree, matching
// spec.md §4.C's "only an error if execution later reads through it".
func (t *Trie) Walk(visit func(key, value []byte) error) error {
	return walkNode(t.root, nil, visit)
}

func walkNode(n node, prefix []byte, visit func(key, value []byte) error) error {
	switch n := n.(type) {
	case nil, hashNode:
		return nil
	case *leafNode:
		full := append(append([]byte(nil), prefix...), n.Key...)
		return visit(hexToKeybytes(full), []byte(n.Val))
	case *extensionNode:
		return walkNode(n.Val, append(append([]byte(nil), prefix...), n.Key...), visit)
	case *branchNode:
		for i := 0; i < 16; i++ {
			if n.Children[i] != nil {
				if err := walkNode(n.Children[i], append(append([]byte(nil), prefix...), byte(i)), visit); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return nil
	}
}
