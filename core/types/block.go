package types

import (
	"math/big"
	"sync/atomic"
)

// Withdrawal represents a validator withdrawal pushed from the beacon
// chain (EIP-4895).
type Withdrawal struct {
	Index          uint64
	ValidatorIndex uint64
	Address        Address
	Amount         uint64 // in Gwei
}

// Body carries a block's transactions and optional withdrawals. Uncle
// headers are omitted: post-merge and L2 chains carry none, and the
// witness schema (spec.md §6) has no field for them.
type Body struct {
	Transactions []*Transaction
	Withdrawals  []*Withdrawal
}

// Block pairs a header with its body.
type Block struct {
	header *Header
	body   Body

	hash atomic.Pointer[Hash]
}

// NewBlock creates a new block with the given header and body. A nil
// body is treated as an empty one.
func NewBlock(header *Header, body *Body) *Block {
	b := &Block{header: header}
	if body != nil {
		b.body.Transactions = append([]*Transaction(nil), body.Transactions...)
		b.body.Withdrawals = append([]*Withdrawal(nil), body.Withdrawals...)
	}
	return b
}

// Header returns the block header.
func (b *Block) Header() *Header { return b.header }

// Transactions returns the block's transactions.
func (b *Block) Transactions() []*Transaction { return b.body.Transactions }

// Withdrawals returns the block's withdrawals (nil if absent).
func (b *Block) Withdrawals() []*Withdrawal { return b.body.Withdrawals }

// Number returns the block number.
func (b *Block) Number() *big.Int {
	if b.header.Number == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.header.Number)
}

// NumberU64 returns the block number as a uint64.
func (b *Block) NumberU64() uint64 { return b.header.NumberU64() }

// GasLimit returns the block's gas limit.
func (b *Block) GasLimit() uint64 { return b.header.GasLimit }

// GasUsed returns the gas consumed while producing the block.
func (b *Block) GasUsed() uint64 { return b.header.GasUsed }

// Time returns the block timestamp.
func (b *Block) Time() uint64 { return b.header.Time }

// BaseFee returns the block's base fee (nil if pre-EIP-1559).
func (b *Block) BaseFee() *big.Int {
	if b.header.BaseFee == nil {
		return nil
	}
	return new(big.Int).Set(b.header.BaseFee)
}

// ParentHash returns the parent block's hash.
func (b *Block) ParentHash() Hash { return b.header.ParentHash }

// Root returns the state root the header declares for this block.
func (b *Block) Root() Hash { return b.header.Root }

// Coinbase returns the block's fee-recipient address.
func (b *Block) Coinbase() Address { return b.header.Coinbase }

// Hash returns the Keccak-256 hash of the block's header, memoised.
func (b *Block) Hash() Hash {
	if cached := b.hash.Load(); cached != nil {
		return *cached
	}
	h := b.header.Hash()
	b.hash.Store(&h)
	return h
}
