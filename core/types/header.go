package types

import (
	"math/big"
	"sync/atomic"

	"golang.org/x/crypto/sha3"
)

// keccakSum computes Keccak-256 locally to avoid an import cycle with
// package crypto (which itself imports core/types for Hash/Address).
func keccakSum(data []byte) []byte {
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	return d.Sum(nil)
}

// Header is an Ethereum-compatible block header. Field presence beyond the
// 15 Homestead-era fields follows the activation order of the EIPs that
// introduced them, matching the witness schema of spec.md §6.
type Header struct {
	ParentHash  Hash
	UncleHash   Hash
	Coinbase    Address
	Root        Hash // state root committed by this block
	TxHash      Hash
	ReceiptHash Hash
	Bloom       Bloom
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   Hash
	Nonce       BlockNonce

	// EIP-1559
	BaseFee *big.Int

	// EIP-4895: beacon chain push withdrawals
	WithdrawalsHash *Hash

	// EIP-4844: shard blob transactions
	BlobGasUsed   *uint64
	ExcessBlobGas *uint64

	// EIP-4788: beacon block root exposed to the EVM
	ParentBeaconRoot *Hash

	// EIP-7685: general purpose execution-layer requests
	RequestsHash *Hash

	hash atomic.Pointer[Hash]
}

// Hash returns the Keccak-256 hash of the RLP-encoded header, memoised
// after the first call.
func (h *Header) Hash() Hash {
	if cached := h.hash.Load(); cached != nil {
		return *cached
	}
	enc, err := h.EncodeRLP()
	if err != nil {
		return Hash{}
	}
	hash := BytesToHash(keccakSum(enc))
	h.hash.Store(&hash)
	return hash
}

// NumberU64 returns the block number as a uint64, or 0 if Number is nil.
// A header built by hand (rather than decoded from a witness, where
// hexToBigInt always fills in a zero-valued *big.Int) can leave Number
// unset; callers that need to distinguish "genuinely block zero" from
// "no number set" should check h.Number directly.
func (h *Header) NumberU64() uint64 {
	if h.Number == nil {
		return 0
	}
	return h.Number.Uint64()
}
