package types

import "errors"

var (
	// ErrUnknownTxType is returned when decoding an envelope whose type byte
	// does not match any of the six supported transaction types.
	ErrUnknownTxType = errors.New("types: unknown transaction type")

	// ErrInvalidSig is returned when a transaction's (v, r, s) signature
	// fields are malformed: r or s out of range, or s above secp256k1's
	// half-order (EIP-2 malleability rule).
	ErrInvalidSig = errors.New("types: invalid transaction signature")

	// ErrL1MessageNoSignature is returned if recovery is attempted on an
	// L1MessageTx: its sender comes directly from the envelope, never from
	// ECDSA recovery.
	ErrL1MessageNoSignature = errors.New("types: L1 message transactions carry no signature to recover")

	// ErrInvalidChainID names a transaction chain id that does not match
	// the chain the block is being verified against. No code path in this
	// module compares transaction chain ids or returns it.
	ErrInvalidChainID = errors.New("types: transaction chain id mismatch")
)
