package crypto

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/rlp"
)

// ErrSenderL1Message is returned if Sender is asked to recover an
// L1MessageTx: its sender is read directly from the envelope, never
// recovered via ECDSA (spec.md §3/§4.F).
var ErrSenderL1Message = types.ErrL1MessageNoSignature

// Sender returns tx's sender, recovering it via ECDSA if needed and
// caching the result on tx. L1MessageTx senders must already be set via
// Transaction.SetSender (done at decode time); this returns
// ErrSenderL1Message if called on one that has not been.
func Sender(tx *types.Transaction) (types.Address, error) {
	if cached := tx.Sender(); cached != nil {
		return *cached, nil
	}
	if tx.IsL1Message() {
		return types.Address{}, ErrSenderL1Message
	}

	hash, err := SigningHash(tx)
	if err != nil {
		return types.Address{}, err
	}
	r, s, v, err := sigValues(tx)
	if err != nil {
		return types.Address{}, err
	}
	if !ValidateSignatureValues(v, r, s, true) {
		return types.Address{}, types.ErrInvalidSig
	}

	sig := make([]byte, 65)
	r.FillBytes(sig[0:32])
	s.FillBytes(sig[32:64])
	sig[64] = v

	addr, err := RecoverSender(hash.Bytes(), sig)
	if err != nil {
		return types.Address{}, err
	}
	tx.SetSender(addr)
	return addr, nil
}

// sigValues extracts (r, s, recovery-id) from tx's concrete envelope,
// normalising the legacy EIP-155 V encoding (chainID*2+35/36) down to a
// plain 0/1 recovery id.
func sigValues(tx *types.Transaction) (r, s *big.Int, v byte, err error) {
	toBig := func(u *uint256.Int) *big.Int {
		if u == nil {
			return new(big.Int)
		}
		return u.ToBig()
	}
	switch inner := tx.Inner().(type) {
	case *types.LegacyTx:
		v = normalizeLegacyV(inner.V)
		return toBig(inner.R), toBig(inner.S), v, nil
	case *types.AccessListTx:
		return toBig(inner.R), toBig(inner.S), inner.V, nil
	case *types.DynamicFeeTx:
		return toBig(inner.R), toBig(inner.S), inner.V, nil
	case *types.BlobTx:
		return toBig(inner.R), toBig(inner.S), inner.V, nil
	case *types.SetCodeTx:
		return toBig(inner.R), toBig(inner.S), inner.V, nil
	default:
		return nil, nil, 0, errors.New("crypto: unsupported transaction type for signature recovery")
	}
}

func normalizeLegacyV(v uint64) byte {
	if v == 27 || v == 28 {
		return byte(v - 27)
	}
	if v >= 35 {
		return byte((v - 35) % 2)
	}
	return byte(v)
}

// SigningHash returns the hash signed over to produce tx's (v, r, s): the
// EIP-2718 typed payload with signature fields stripped (type byte
// prepended for every envelope but LegacyTx, which instead appends
// (chainID, 0, 0) per EIP-155 whenever its V encodes a chain id).
func SigningHash(tx *types.Transaction) (types.Hash, error) {
	switch inner := tx.Inner().(type) {
	case *types.LegacyTx:
		items := []interface{}{inner.Nonce, inner.GasPrice, inner.Gas, inner.To, inner.Value, inner.Data}
		if chainID := deriveLegacyChainID(inner.V); chainID != 0 {
			items = append(items, chainID, uint(0), uint(0))
		}
		return hashRLPList(items)
	case *types.AccessListTx:
		return hashTyped(types.AccessListTxType, []interface{}{
			inner.ChainID, inner.Nonce, inner.GasPrice, inner.Gas, inner.To, inner.Value, inner.Data, inner.AccessList,
		})
	case *types.DynamicFeeTx:
		return hashTyped(types.DynamicFeeTxType, []interface{}{
			inner.ChainID, inner.Nonce, inner.GasTipCap, inner.GasFeeCap, inner.Gas, inner.To, inner.Value, inner.Data, inner.AccessList,
		})
	case *types.BlobTx:
		return hashTyped(types.BlobTxType, []interface{}{
			inner.ChainID, inner.Nonce, inner.GasTipCap, inner.GasFeeCap, inner.Gas, inner.To, inner.Value, inner.Data, inner.AccessList, inner.BlobFeeCap, inner.BlobHashes,
		})
	case *types.SetCodeTx:
		return hashTyped(types.SetCodeTxType, []interface{}{
			inner.ChainID, inner.Nonce, inner.GasTipCap, inner.GasFeeCap, inner.Gas, inner.To, inner.Value, inner.Data, inner.AccessList, inner.Authorizations,
		})
	default:
		return types.Hash{}, errors.New("crypto: unsupported transaction type for signing hash")
	}
}

func deriveLegacyChainID(v uint64) uint64 {
	if v == 27 || v == 28 {
		return 0
	}
	if v >= 35 {
		return (v - 35) / 2
	}
	return 0
}

func hashRLPList(items []interface{}) (types.Hash, error) {
	var payload []byte
	for _, item := range items {
		enc, err := rlp.EncodeToBytes(item)
		if err != nil {
			return types.Hash{}, err
		}
		payload = append(payload, enc...)
	}
	return Keccak256Hash(rlp.WrapList(payload)), nil
}

func hashTyped(txType byte, items []interface{}) (types.Hash, error) {
	var payload []byte
	for _, item := range items {
		enc, err := rlp.EncodeToBytes(item)
		if err != nil {
			return types.Hash{}, err
		}
		payload = append(payload, enc...)
	}
	wrapped := rlp.WrapList(payload)
	buf := make([]byte, 0, 1+len(wrapped))
	buf = append(buf, txType)
	buf = append(buf, wrapped...)
	return Keccak256Hash(buf), nil
}
