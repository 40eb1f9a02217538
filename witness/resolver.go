package witness

import (
	"errors"
	"fmt"

	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/crypto"
	"github.com/scrollstateless/verifier/trie"
)

// ErrTooManyBlockHashes is returned when a witness carries more than
// MaxBlockHashes ancestor hashes.
var ErrTooManyBlockHashes = errors.New("witness: more than 256 block hashes")

// ErrStorageTrieValidation is returned when an account's declared storage
// root is present in the witness but the resolved subtree hashes to
// something else.
type ErrStorageTrieValidation struct {
	Account  types.Hash // keccak(address)
	Expected types.Hash
	Actual   types.Hash
}

func (e *ErrStorageTrieValidation) Error() string {
	return fmt.Sprintf("witness: storage trie for account %s: expected root %s, got %s",
		e.Account.Hex(), e.Expected.Hex(), e.Actual.Hex())
}

// Resolved is a witness that has passed resolution: its state trie is
// built and validated against PreStateRoot, every storage root that is
// present in the witness has itself been validated, and the code map is
// indexed by keccak256(code).
type Resolved struct {
	Witness *Witness
	Index   *trie.NodeIndex

	// StateTrie is rooted at Witness.PreStateRoot.
	StateTrie *trie.Trie

	// StorageRoots maps keccak(address) to the storage root declared by
	// that account's leaf, for every account touched by the walk whose
	// storage is non-empty. A root not present in Index is retained here
	// without having been resolved — reading through it is deferred to
	// whoever actually touches that account's storage (spec.md §4.C
	// step 6).
	StorageRoots map[types.Hash]types.Hash

	// Codes maps keccak256(code) to the code bytes.
	Codes map[types.Hash][]byte
}

// Resolve indexes the witness's trie nodes, resolves and validates the
// state trie rooted at w.PreStateRoot, walks every reachable account leaf
// to record its declared storage root, and validates every storage root
// that the witness actually supplies a node for (spec.md §4.C).
func Resolve(w *Witness) (*Resolved, error) {
	if len(w.BlockHashes) > MaxBlockHashes {
		return nil, ErrTooManyBlockHashes
	}

	idx, err := trie.BuildNodeIndex(w.States)
	if err != nil {
		return nil, err
	}

	stateTrie, err := idx.Resolve(w.PreStateRoot)
	if err != nil {
		return nil, fmt.Errorf("witness: resolve state trie: %w", err)
	}

	storageRoots := make(map[types.Hash]types.Hash)
	err = stateTrie.Walk(func(key, value []byte) error {
		acct, err := types.DecodeAccount(value)
		if err != nil {
			// Not every leaf in a generic trie need decode as an
			// account (storage tries share this walker); a leaf
			// that fails to parse is simply not an account leaf
			// and is skipped.
			return nil
		}
		if acct.Root != types.EmptyRootHash {
			storageRoots[types.BytesToHash(key)] = acct.Root
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for hashedAddr, root := range storageRoots {
		if !idx.Has(root) {
			continue
		}
		if _, err := idx.Resolve(root); err != nil {
			var mismatch *trie.ErrRootMismatch
			if errors.As(err, &mismatch) {
				return nil, &ErrStorageTrieValidation{Account: hashedAddr, Expected: root, Actual: mismatch.Actual}
			}
			return nil, err
		}
	}

	codes := make(map[types.Hash][]byte, len(w.Codes))
	for _, code := range w.Codes {
		codes[crypto.Keccak256Hash(code)] = code
	}

	return &Resolved{
		Witness:      w,
		Index:        idx,
		StateTrie:    stateTrie,
		StorageRoots: storageRoots,
		Codes:        codes,
	}, nil
}

// StorageTrie resolves the storage trie for a given account's hashed
// address (Index.Resolve checks its hash against the recorded root again),
// returning an empty trie if the account has no recorded (non-empty)
// storage root, or the unmodified Digest-rooted trie if the witness never
// supplied the subtree.
func (r *Resolved) StorageTrie(hashedAddr types.Hash) (*trie.Trie, error) {
	root, ok := r.StorageRoots[hashedAddr]
	if !ok {
		return trie.New(), nil
	}
	return r.Index.Resolve(root)
}
