package state

import (
	"errors"
	"fmt"

	"github.com/scrollstateless/verifier/core/types"
)

// ErrMissingAccount is returned when a storage slot is read for an address
// that is not present in the state trie (spec.md §4.D).
type ErrMissingAccount struct {
	Address types.Address
}

func (e *ErrMissingAccount) Error() string {
	return fmt.Sprintf("state: account %s not present", e.Address.Hex())
}

// ErrCodeNotLoaded is returned when code_by_hash is asked for a hash the
// witness's code set does not contain (spec.md §4.E, §7).
type ErrCodeNotLoaded struct {
	Hash types.Hash
}

func (e *ErrCodeNotLoaded) Error() string {
	return fmt.Sprintf("state: code for hash %s not loaded", e.Hash.Hex())
}

// ErrBlockHashMissing is returned when BLOCKHASH is asked for a block
// number the witness's ancestor-hash window does not cover (spec.md §4.E,
// §7).
type ErrBlockHashMissing struct {
	Number uint64
}

func (e *ErrBlockHashMissing) Error() string {
	return fmt.Sprintf("state: block hash for number %d missing", e.Number)
}

// ErrMissingL2MessageQueueWitness is returned when the L2 withdraw-root
// predeploy account cannot be resolved from the witness (spec.md §4.E).
var ErrMissingL2MessageQueueWitness = errors.New("state: L2 message queue predeploy account not in witness")

// ErrInvalidStorageWrite is returned when a non-zero storage slot is
// written into an account that is not present (spec.md §3: "a non-zero
// slot written into a cleared account is an error").
type ErrInvalidStorageWrite struct {
	Address types.Address
}

func (e *ErrInvalidStorageWrite) Error() string {
	return fmt.Sprintf("state: non-zero storage write to absent account %s", e.Address.Hex())
}
