// account_trie.go adapts the teacher's AccountTrieDB (pkg/core/state/account_trie.go)
// to the real partial Merkle-Patricia trie in package trie: typed
// get/insert/delete over account leaves and per-account storage leaves,
// with storage tries materialised lazily from the witness's node index
// (spec.md §4.D).
package state

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/crypto"
	"github.com/scrollstateless/verifier/rlp"
	"github.com/scrollstateless/verifier/trie"
)

// AccountUpdate is one entry of the diff iterator consumed by
// PartialTrie.Update: the new account info for an address (nil to delete
// the account leaf entirely) plus any storage slot deltas.
type AccountUpdate struct {
	Address types.Address
	Account *types.Account // nil deletes the account leaf
	// StorageDeltas maps a (not yet hashed) storage slot to its new
	// value; a nil or zero value deletes the slot.
	StorageDeltas map[types.Hash]*uint256.Int
}

// PartialTrie is the partial state trie of spec.md §4.D: a single account
// trie plus a per-account map of lazily materialised storage tries,
// backed by the witness's node index for Digest substitution.
type PartialTrie struct {
	accountTrie *trie.Trie
	index       *trie.NodeIndex

	// storageRoots records the declared storage root for every account
	// known to have non-empty storage, whether or not that subtree has
	// been materialised yet.
	storageRoots map[types.Hash]types.Hash
	storageTries map[types.Hash]*trie.Trie
}

// NewPartialTrie constructs a PartialTrie over an already-resolved
// account trie, the witness's node index (for lazy storage resolution),
// and the per-account storage roots recorded by the resolver walk.
func NewPartialTrie(accountTrie *trie.Trie, index *trie.NodeIndex, storageRoots map[types.Hash]types.Hash) *PartialTrie {
	roots := make(map[types.Hash]types.Hash, len(storageRoots))
	for k, v := range storageRoots {
		roots[k] = v
	}
	return &PartialTrie{
		accountTrie:  accountTrie,
		index:        index,
		storageRoots: roots,
		storageTries: make(map[types.Hash]*trie.Trie),
	}
}

// GetAccount returns the account at address, or nil if it is not present.
// A *trie.ErrNodeNotResolved from reading through an unresolved Digest is
// returned as is.
func (pt *PartialTrie) GetAccount(address types.Address) (*types.Account, error) {
	key := crypto.Keccak256(address.Bytes())
	data, err := pt.accountTrie.Get(key)
	if errors.Is(err, trie.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return types.DecodeAccount(data)
}

// GetStorage returns the u256 value at (address, slot), 0 if the slot or
// the account's storage subtree is absent. Returns *ErrMissingAccount if
// the account itself is not present in the trie.
func (pt *PartialTrie) GetStorage(address types.Address, slot types.Hash) (*uint256.Int, error) {
	hashedAddr := crypto.Keccak256Hash(address.Bytes())
	st, present, err := pt.storageTrie(hashedAddr)
	if err != nil {
		return nil, err
	}
	if !present {
		acct, err := pt.GetAccount(address)
		if err != nil {
			return nil, err
		}
		if acct == nil {
			return nil, &ErrMissingAccount{Address: address}
		}
		return new(uint256.Int), nil
	}

	hashedSlot := crypto.Keccak256(slot.Bytes())
	data, err := st.Get(hashedSlot)
	if errors.Is(err, trie.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeStorageValue(data)
}

// storageTrie returns the materialised storage trie for hashedAddr,
// resolving it from the node index on first access. present is false if
// the account has no recorded storage root at all (distinct from an
// empty-but-present storage trie).
func (pt *PartialTrie) storageTrie(hashedAddr types.Hash) (st *trie.Trie, present bool, err error) {
	if st, ok := pt.storageTries[hashedAddr]; ok {
		return st, true, nil
	}
	root, ok := pt.storageRoots[hashedAddr]
	if !ok {
		return nil, false, nil
	}
	st, err = pt.index.Resolve(root)
	if err != nil {
		return nil, false, err
	}
	pt.storageTries[hashedAddr] = st
	return st, true, nil
}

// Update applies a batch of account/storage diffs in place. Each storage
// delta writes a non-zero slot or deletes a zero one; the account's
// storage root is recomputed from the resulting storage trie before its
// leaf is written. A nil Account deletes the address entirely.
func (pt *PartialTrie) Update(updates []AccountUpdate) error {
	for _, u := range updates {
		hashedAddr := crypto.Keccak256Hash(u.Address.Bytes())

		if u.Account == nil {
			if err := pt.accountTrie.Delete(hashedAddr.Bytes()); err != nil {
				return fmt.Errorf("state: delete account %s: %w", u.Address.Hex(), err)
			}
			delete(pt.storageTries, hashedAddr)
			delete(pt.storageRoots, hashedAddr)
			continue
		}

		if len(u.StorageDeltas) > 0 {
			st, present, err := pt.storageTrie(hashedAddr)
			if err != nil {
				return err
			}
			if !present {
				st = trie.New()
				pt.storageTries[hashedAddr] = st
			}
			for slot, val := range u.StorageDeltas {
				hashedSlot := crypto.Keccak256(slot.Bytes())
				if val == nil || val.IsZero() {
					if err := st.Delete(hashedSlot); err != nil {
						return fmt.Errorf("state: delete storage %s/%s: %w", u.Address.Hex(), slot.Hex(), err)
					}
					continue
				}
				enc, err := encodeStorageValue(val)
				if err != nil {
					return err
				}
				if err := st.Update(hashedSlot, enc); err != nil {
					return fmt.Errorf("state: update storage %s/%s: %w", u.Address.Hex(), slot.Hex(), err)
				}
			}
			root := st.Hash()
			pt.storageRoots[hashedAddr] = root
			u.Account.Root = root
		}

		enc, err := types.EncodeAccount(u.Account)
		if err != nil {
			return fmt.Errorf("state: encode account %s: %w", u.Address.Hex(), err)
		}
		if err := pt.accountTrie.Update(hashedAddr.Bytes(), enc); err != nil {
			return fmt.Errorf("state: update account %s: %w", u.Address.Hex(), err)
		}
	}
	return nil
}

// CommitState recomputes and returns the account trie's root hash.
func (pt *PartialTrie) CommitState() types.Hash {
	return pt.accountTrie.Hash()
}

// encodeStorageValue RLP-encodes a non-zero u256 storage value, minimal
// big-endian with no leading zeros (spec.md §3).
func encodeStorageValue(val *uint256.Int) ([]byte, error) {
	return rlp.EncodeToBytes(val)
}

// decodeStorageValue decodes an RLP-encoded storage value into a u256.
func decodeStorageValue(data []byte) (*uint256.Int, error) {
	var v uint256.Int
	if err := rlp.DecodeBytes(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
