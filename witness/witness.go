// Package witness defines the self-contained per-block witness bundle and
// the resolution step that turns it into a validated, queryable partial
// trie (spec.md §3, §4.C, §6).
package witness

import (
	"github.com/scrollstateless/verifier/core/types"
)

// Witness is the complete input needed to re-execute and verify a single
// block with no external state store, per the schema of spec.md §6.
type Witness struct {
	ChainID uint64

	Header       *types.Header
	PreStateRoot types.Hash

	Transactions []*types.Transaction
	Withdrawals  []*types.Withdrawal

	// BlockHashes holds up to 256 recent ancestor hashes (L1 variant
	// only); BlockHashes[i] corresponds to block number
	// Header.Number - (i+1).
	BlockHashes []types.Hash

	// States holds every RLP-encoded trie node the witness carries,
	// state and storage nodes commingled (spec.md §3).
	States [][]byte

	// Codes holds every contract bytecode the witness carries, keyed
	// implicitly by keccak256(code) once indexed (see Resolve).
	Codes [][]byte
}

// MaxBlockHashes is the largest ancestor-hash window the L1 variant
// accepts (EIP-2935 / BLOCKHASH's 256-block lookback).
const MaxBlockHashes = 256
