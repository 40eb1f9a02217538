// Package types defines the core data structures of the execution layer:
// headers, blocks, transactions, withdrawals, and the account shape stored
// in the state trie.
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	HashLength    = 32
	AddressLength = 20
	BloomLength   = 256
	NonceLength   = 8
)

// Hash represents the 32-byte Keccak-256 hash of data.
type Hash [HashLength]byte

// Address represents the 20-byte address of an account.
type Address [AddressLength]byte

// Bloom represents a 2048-bit log bloom filter.
type Bloom [BloomLength]byte

// BlockNonce is the 8-byte block nonce (legacy PoW field, zero post-merge).
type BlockNonce [NonceLength]byte

// BytesToHash converts bytes to a Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string (with or without 0x prefix) to a Hash.
func HexToHash(s string) Hash { return BytesToHash(fromHex(s)) }

// Bytes returns the byte slice representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex representation of the hash.
func (h Hash) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// SetBytes sets the hash from b, left-padding if b is shorter than 32 bytes.
// If b is longer, only the trailing 32 bytes are kept.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero reports whether the hash is the all-zero value.
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) String() string { return h.Hex() }

// BytesToAddress converts bytes to an Address, left-padding if shorter than
// 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to an Address.
func HexToAddress(s string) Address { return BytesToAddress(fromHex(s)) }

func (a Address) Bytes() []byte { return a[:] }
func (a Address) Hex() string   { return fmt.Sprintf("0x%x", a[:]) }

func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) IsZero() bool  { return a == Address{} }
func (a Address) String() string { return a.Hex() }

// Account is the account payload stored under an account leaf in the state
// trie: RLP({nonce, balance, storage_root, code_hash}).
type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     Hash   // storage trie root; EmptyRootHash if the account has no storage
	CodeHash []byte // keccak256(code); EmptyCodeHash for externally-owned accounts
}

// NewEmptyAccount returns a freshly created account: zero nonce/balance, no
// storage, no code.
func NewEmptyAccount() *Account {
	return &Account{
		Balance:  new(uint256.Int),
		Root:     EmptyRootHash,
		CodeHash: append([]byte(nil), EmptyCodeHash.Bytes()...),
	}
}

// IsEmpty reports whether the account is "empty" in the EIP-161 sense: zero
// nonce, zero balance, and no code. An empty, present account is removed
// from the state trie after a touch per spec.
func (a *Account) IsEmpty() bool {
	if a == nil {
		return true
	}
	return a.Nonce == 0 &&
		(a.Balance == nil || a.Balance.IsZero()) &&
		Hash(BytesToHash(a.CodeHash)) == EmptyCodeHash
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	if a == nil {
		return nil
	}
	cp := &Account{
		Nonce: a.Nonce,
		Root:  a.Root,
	}
	if a.Balance != nil {
		cp.Balance = new(uint256.Int).Set(a.Balance)
	} else {
		cp.Balance = new(uint256.Int)
	}
	if a.CodeHash != nil {
		cp.CodeHash = append([]byte(nil), a.CodeHash...)
	}
	return cp
}

// Log represents a single contract event log emitted during execution.
type Log struct {
	Address     Address
	Topics      []Hash
	Data        []byte
	BlockNumber uint64
	TxHash      Hash
	TxIndex     uint
	BlockHash   Hash
	Index       uint
	Removed     bool
}

var (
	// EmptyRootHash is the root hash of an empty Merkle-Patricia trie:
	// keccak256(RLP("")) = keccak256(0x80).
	EmptyRootHash = HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

	// EmptyCodeHash is keccak256 of the empty byte string, marking an
	// account with no associated bytecode.
	EmptyCodeHash = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

	// EmptyUncleHash is keccak256(RLP([])), the canonical empty uncle list.
	EmptyUncleHash = HexToHash("1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347")
)

func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
