package types

import (
	"sync/atomic"

	"github.com/holiman/uint256"
)

// Transaction type discriminants, distinguished by the envelope's leading
// type byte per spec.md §3/§6.
const (
	LegacyTxType     = 0x00
	AccessListTxType = 0x01
	DynamicFeeTxType = 0x02
	BlobTxType       = 0x03
	SetCodeTxType    = 0x04
	L1MessageTxType  = 0x7e
)

// Transaction wraps a concrete envelope (TxData) with cached derived
// values: hash and recovered sender.
type Transaction struct {
	inner TxData
	hash  atomic.Pointer[Hash]
	from  atomic.Pointer[Address]
}

// NewTx wraps inner in a Transaction.
func NewTx(inner TxData) *Transaction { return &Transaction{inner: inner} }

// Type returns the envelope's type byte.
func (tx *Transaction) Type() byte { return tx.inner.txType() }

// Inner returns the underlying envelope.
func (tx *Transaction) Inner() TxData { return tx.inner }

// Nonce, To, Value, Gas, Data expose the envelope's common fields.
func (tx *Transaction) Nonce() uint64        { return tx.inner.nonce() }
func (tx *Transaction) To() *Address         { return tx.inner.to() }
func (tx *Transaction) Value() *uint256.Int  { return tx.inner.value() }
func (tx *Transaction) Gas() uint64          { return tx.inner.gas() }
func (tx *Transaction) Data() []byte         { return tx.inner.data() }
func (tx *Transaction) AccessList() AccessList { return tx.inner.accessList() }
func (tx *Transaction) ChainID() uint64      { return tx.inner.chainID() }

// GasFeeCap returns the per-envelope effective max fee: GasPrice for
// legacy/2930 transactions, GasFeeCap for 1559/4844/7702/L1-message ones.
func (tx *Transaction) GasFeeCap() *uint256.Int { return tx.inner.gasFeeCap() }
func (tx *Transaction) GasTipCap() *uint256.Int { return tx.inner.gasTipCap() }

// IsL1Message reports whether this is a type-0x7e L1 message: no ECDSA
// recovery applies, and the sender is taken directly from the envelope.
func (tx *Transaction) IsL1Message() bool { return tx.inner.txType() == L1MessageTxType }

// SetSender caches a sender address on the transaction (either recovered
// via ECDSA, or copied directly from an L1MessageTx's Sender field).
func (tx *Transaction) SetSender(addr Address) {
	a := addr
	tx.from.Store(&a)
}

// Sender returns the cached sender, or nil if SetSender has not been
// called yet (e.g. before block-build recovery has run).
func (tx *Transaction) Sender() *Address { return tx.from.Load() }

// Hash returns the Keccak-256 hash of the EIP-2718 typed envelope bytes
// (the type byte followed by the RLP payload, or the bare RLP list for
// LegacyTx), memoised after the first call.
func (tx *Transaction) Hash() Hash {
	if cached := tx.hash.Load(); cached != nil {
		return *cached
	}
	enc, err := EncodeTxEnvelope(tx)
	if err != nil {
		return Hash{}
	}
	h := BytesToHash(keccakSum(enc))
	tx.hash.Store(&h)
	return h
}

// TxData is the interface every transaction envelope implements.
type TxData interface {
	txType() byte
	chainID() uint64
	accessList() AccessList
	data() []byte
	gas() uint64
	gasTipCap() *uint256.Int
	gasFeeCap() *uint256.Int
	value() *uint256.Int
	nonce() uint64
	to() *Address

	copy() TxData
}

// AccessList is a list of address/storage-slot pairs pre-warmed by an
// EIP-2930+ transaction.
type AccessList []AccessTuple

// AccessTuple pairs an address with the storage slots it pre-warms.
type AccessTuple struct {
	Address     Address
	StorageKeys []Hash
}

// Authorization is an EIP-7702 authorization tuple attached to a
// SetCodeTx, delegating an EOA's code to Address for the duration the
// authorization remains valid.
type Authorization struct {
	ChainID uint64
	Address Address
	Nonce   uint64
	V       uint8
	R       *uint256.Int
	S       *uint256.Int
}

// LegacyTx is a type-0x00 pre-EIP-155/2930/1559 transaction.
type LegacyTx struct {
	Nonce    uint64
	GasPrice *uint256.Int
	Gas      uint64
	To       *Address
	Value    *uint256.Int
	Data     []byte
	V        uint64 // may encode EIP-155 chain id per yellow paper
	R, S     *uint256.Int
}

func (tx *LegacyTx) txType() byte             { return LegacyTxType }
func (tx *LegacyTx) chainID() uint64          { return deriveChainID(tx.V) }
func (tx *LegacyTx) accessList() AccessList   { return nil }
func (tx *LegacyTx) data() []byte             { return tx.Data }
func (tx *LegacyTx) gas() uint64              { return tx.Gas }
func (tx *LegacyTx) gasTipCap() *uint256.Int  { return tx.GasPrice }
func (tx *LegacyTx) gasFeeCap() *uint256.Int  { return tx.GasPrice }
func (tx *LegacyTx) value() *uint256.Int      { return tx.Value }
func (tx *LegacyTx) nonce() uint64            { return tx.Nonce }
func (tx *LegacyTx) to() *Address             { return tx.To }
func (tx *LegacyTx) copy() TxData {
	cp := *tx
	return &cp
}

// deriveChainID recovers the EIP-155 chain id embedded in a legacy
// signature's V value (V = chainID*2 + 35/36), or 0 for a pre-155
// unprotected signature (V = 27/28).
func deriveChainID(v uint64) uint64 {
	if v == 27 || v == 28 {
		return 0
	}
	if v >= 35 {
		return (v - 35) / 2
	}
	return 0
}

// AccessListTx is a type-0x01 (EIP-2930) transaction.
type AccessListTx struct {
	ChainID    uint64
	Nonce      uint64
	GasPrice   *uint256.Int
	Gas        uint64
	To         *Address
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
	V          uint8
	R, S       *uint256.Int
}

func (tx *AccessListTx) txType() byte             { return AccessListTxType }
func (tx *AccessListTx) chainID() uint64          { return tx.ChainID }
func (tx *AccessListTx) accessList() AccessList   { return tx.AccessList }
func (tx *AccessListTx) data() []byte             { return tx.Data }
func (tx *AccessListTx) gas() uint64              { return tx.Gas }
func (tx *AccessListTx) gasTipCap() *uint256.Int  { return tx.GasPrice }
func (tx *AccessListTx) gasFeeCap() *uint256.Int  { return tx.GasPrice }
func (tx *AccessListTx) value() *uint256.Int      { return tx.Value }
func (tx *AccessListTx) nonce() uint64            { return tx.Nonce }
func (tx *AccessListTx) to() *Address             { return tx.To }
func (tx *AccessListTx) copy() TxData {
	cp := *tx
	return &cp
}

// DynamicFeeTx is a type-0x02 (EIP-1559) transaction.
type DynamicFeeTx struct {
	ChainID    uint64
	Nonce      uint64
	GasTipCap  *uint256.Int
	GasFeeCap  *uint256.Int
	Gas        uint64
	To         *Address
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
	V          uint8
	R, S       *uint256.Int
}

func (tx *DynamicFeeTx) txType() byte             { return DynamicFeeTxType }
func (tx *DynamicFeeTx) chainID() uint64          { return tx.ChainID }
func (tx *DynamicFeeTx) accessList() AccessList   { return tx.AccessList }
func (tx *DynamicFeeTx) data() []byte             { return tx.Data }
func (tx *DynamicFeeTx) gas() uint64              { return tx.Gas }
func (tx *DynamicFeeTx) gasTipCap() *uint256.Int  { return tx.GasTipCap }
func (tx *DynamicFeeTx) gasFeeCap() *uint256.Int  { return tx.GasFeeCap }
func (tx *DynamicFeeTx) value() *uint256.Int      { return tx.Value }
func (tx *DynamicFeeTx) nonce() uint64            { return tx.Nonce }
func (tx *DynamicFeeTx) to() *Address             { return tx.To }
func (tx *DynamicFeeTx) copy() TxData {
	cp := *tx
	return &cp
}

// BlobTx is a type-0x03 (EIP-4844) transaction. Blob commitments and
// proofs are out of scope for this verifier (spec.md §1 excludes blob
// content verification); only the envelope shape needed for RLP/hash
// purposes is modelled.
type BlobTx struct {
	ChainID    uint64
	Nonce      uint64
	GasTipCap  *uint256.Int
	GasFeeCap  *uint256.Int
	Gas        uint64
	To         Address
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList
	BlobFeeCap *uint256.Int
	BlobHashes []Hash
	V          uint8
	R, S       *uint256.Int
}

func (tx *BlobTx) txType() byte             { return BlobTxType }
func (tx *BlobTx) chainID() uint64          { return tx.ChainID }
func (tx *BlobTx) accessList() AccessList   { return tx.AccessList }
func (tx *BlobTx) data() []byte             { return tx.Data }
func (tx *BlobTx) gas() uint64              { return tx.Gas }
func (tx *BlobTx) gasTipCap() *uint256.Int  { return tx.GasTipCap }
func (tx *BlobTx) gasFeeCap() *uint256.Int  { return tx.GasFeeCap }
func (tx *BlobTx) value() *uint256.Int      { return tx.Value }
func (tx *BlobTx) nonce() uint64            { return tx.Nonce }
func (tx *BlobTx) to() *Address             { a := tx.To; return &a }
func (tx *BlobTx) copy() TxData {
	cp := *tx
	return &cp
}

// SetCodeTx is a type-0x04 (EIP-7702) transaction carrying a list of
// delegation authorizations.
type SetCodeTx struct {
	ChainID       uint64
	Nonce         uint64
	GasTipCap     *uint256.Int
	GasFeeCap     *uint256.Int
	Gas           uint64
	To            Address
	Value         *uint256.Int
	Data          []byte
	AccessList    AccessList
	Authorizations []Authorization
	V             uint8
	R, S          *uint256.Int
}

func (tx *SetCodeTx) txType() byte             { return SetCodeTxType }
func (tx *SetCodeTx) chainID() uint64          { return tx.ChainID }
func (tx *SetCodeTx) accessList() AccessList   { return tx.AccessList }
func (tx *SetCodeTx) data() []byte             { return tx.Data }
func (tx *SetCodeTx) gas() uint64              { return tx.Gas }
func (tx *SetCodeTx) gasTipCap() *uint256.Int  { return tx.GasTipCap }
func (tx *SetCodeTx) gasFeeCap() *uint256.Int  { return tx.GasFeeCap }
func (tx *SetCodeTx) value() *uint256.Int      { return tx.Value }
func (tx *SetCodeTx) nonce() uint64            { return tx.Nonce }
func (tx *SetCodeTx) to() *Address             { a := tx.To; return &a }
func (tx *SetCodeTx) copy() TxData {
	cp := *tx
	return &cp
}

// L1MessageTx is a type-0x7e Scroll L2 "L1 message" envelope: it
// originated on L1 and carries a monotonic QueueIndex plus a Sender field
// used directly as the transaction's From — no ECDSA recovery applies
// (spec.md §3/§4.F).
type L1MessageTx struct {
	QueueIndex uint64
	Gas        uint64
	To         *Address
	Value      *uint256.Int
	Data       []byte
	Sender     Address
}

func (tx *L1MessageTx) txType() byte             { return L1MessageTxType }
func (tx *L1MessageTx) chainID() uint64          { return 0 }
func (tx *L1MessageTx) accessList() AccessList   { return nil }
func (tx *L1MessageTx) data() []byte             { return tx.Data }
func (tx *L1MessageTx) gas() uint64              { return tx.Gas }
func (tx *L1MessageTx) gasTipCap() *uint256.Int  { return new(uint256.Int) }
func (tx *L1MessageTx) gasFeeCap() *uint256.Int  { return new(uint256.Int) }
func (tx *L1MessageTx) value() *uint256.Int      { return tx.Value }
func (tx *L1MessageTx) nonce() uint64            { return tx.QueueIndex }
func (tx *L1MessageTx) to() *Address             { return tx.To }
func (tx *L1MessageTx) copy() TxData {
	cp := *tx
	return &cp
}
