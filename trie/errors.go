package trie

import (
	"errors"
	"fmt"

	"github.com/scrollstateless/verifier/core/types"
)

var (
	// ErrNotFound is returned by Get when the key is absent from the
	// (fully or partially resolved) trie.
	ErrNotFound = errors.New("trie: key not found")

	// ErrDecode wraps malformed RLP encountered while decoding a node.
	ErrDecode = errors.New("trie: invalid encoded node")

	// ErrValueInBranch is returned when decoding a 17-element list whose
	// 17th (value) element is non-empty. Per spec.md §3/§4.B this
	// implementation never produces or accepts value-bearing branches.
	ErrValueInBranch = errors.New("trie: branch node carries a value (forbidden)")
)

// ErrNodeNotResolved is returned when a Get/Update/Delete walk reaches a
// hashNode (Digest) placeholder: the witness did not carry the subtree
// needed to complete the operation.
type ErrNodeNotResolved struct {
	Hash types.Hash
}

func (e *ErrNodeNotResolved) Error() string {
	return fmt.Sprintf("trie: node not resolved: %s", e.Hash.Hex())
}

func newNotResolved(h hashNode) error {
	return &ErrNodeNotResolved{Hash: types.BytesToHash(h)}
}
