// Package chainspec parameterizes the verifier core over a chain profile
// rather than forking code for Ethereum L1 vs. Scroll L2 (spec.md §9). A
// Rules value is a plain Go struct passed in by the caller, matching the
// teacher's constructor-with-options style for cross-cutting config.
package chainspec

import "github.com/scrollstateless/verifier/core/types"

// Rules is the chain profile consumed by the chunk driver and executor.
// Per spec.md §9, the L1 and L2 variants differ only in these four axes.
type Rules struct {
	ChainID uint64

	// L1MessageEnabled allows the type-0x7e envelope (sender taken
	// directly from the envelope, no ECDSA recovery, monotonic
	// QueueIndex). Scroll L2 only.
	L1MessageEnabled bool

	// WithdrawRootEnabled causes the chunk driver to read slot 0 of the
	// L2 message-queue predeploy after each block and fold it into the
	// public-input hash. Scroll L2 only.
	WithdrawRootEnabled bool

	// NullBlockHashProvider replaces the L1 ancestor block-hash map with
	// a provider that always returns *state.ErrBlockHashMissing — the
	// BLOCKHASH opcode is lowered differently on the L2. Scroll L2 only.
	NullBlockHashProvider bool

	// EuclidV2 selects the rolling message-queue-hash pipeline of
	// spec.md §4.I over the legacy data_hash pipeline, decided once at
	// the chunk's first block.
	EuclidV2 bool

	// CurieOracleRewrite, if non-nil, rewrites the bytecode of a
	// pre-deployed oracle contract at the Curie activation block. Left
	// nil by default: this module does not implement the migration
	// (spec.md §9 Open Question — see DESIGN.md for the decision
	// record). A caller targeting mainnet-Scroll across the Curie
	// boundary supplies its own hook here.
	CurieOracleRewrite func(header *types.Header, code []byte) []byte
}

// Ethereum returns the L1 Ethereum profile: no L1 messages, no withdraw
// root, a real ancestor block-hash map, legacy PI pipeline (pi_hash itself
// is an L2-only concept so EuclidV2 is moot here).
func Ethereum(chainID uint64) Rules {
	return Rules{ChainID: chainID}
}

// ScrollL2 returns the Scroll L2 profile (spec.md §9): L1 messages
// enabled, withdraw root read, null block-hash provider, and the
// EuclidV2 pipeline if euclidV2 is true (otherwise the legacy pipeline).
func ScrollL2(chainID uint64, euclidV2 bool) Rules {
	return Rules{
		ChainID:               chainID,
		L1MessageEnabled:      true,
		WithdrawRootEnabled:   true,
		NullBlockHashProvider: true,
		EuclidV2:              euclidV2,
	}
}
