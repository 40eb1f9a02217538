package types

import (
	"github.com/holiman/uint256"

	"github.com/scrollstateless/verifier/rlp"
)

// accountRLP is the account leaf payload: RLP({nonce, balance, storage_root,
// code_hash}), per spec.md §3.
type accountRLP struct {
	Nonce       uint64
	Balance     *uint256.Int
	StorageRoot Hash
	CodeHash    []byte
}

// EncodeAccount RLP-encodes an account leaf payload.
func EncodeAccount(a *Account) ([]byte, error) {
	balance := a.Balance
	if balance == nil {
		balance = new(uint256.Int)
	}
	enc := accountRLP{
		Nonce:       a.Nonce,
		Balance:     balance,
		StorageRoot: a.Root,
		CodeHash:    a.CodeHash,
	}
	return rlp.EncodeToBytes(enc)
}

// DecodeAccount decodes an account leaf payload.
func DecodeAccount(data []byte) (*Account, error) {
	var dec accountRLP
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, err
	}
	return &Account{
		Nonce:    dec.Nonce,
		Balance:  dec.Balance,
		Root:     dec.StorageRoot,
		CodeHash: dec.CodeHash,
	}, nil
}
