package types

import (
	"github.com/scrollstateless/verifier/rlp"
)

// EncodeTxEnvelope returns the EIP-2718 typed envelope bytes for tx: the
// bare RLP list for LegacyTx, or the type byte followed by the RLP list
// for every later envelope. Field order within each concrete TxData
// struct matches its wire RLP order exactly, so the generic struct
// encoder in package rlp produces the correct payload directly.
func EncodeTxEnvelope(tx *Transaction) ([]byte, error) {
	payload, err := rlp.EncodeToBytes(tx.inner)
	if err != nil {
		return nil, err
	}
	if tx.Type() == LegacyTxType {
		return payload, nil
	}
	return append([]byte{tx.Type()}, payload...), nil
}

// DecodeTxEnvelope decodes an EIP-2718 typed transaction envelope,
// dispatching on the leading type byte (or treating the bytes as a bare
// RLP list if the first byte begins an RLP list, i.e. >= 0xc0, per the
// legacy envelope's lack of a type prefix).
func DecodeTxEnvelope(data []byte) (*Transaction, error) {
	if len(data) == 0 {
		return nil, rlp.ErrExpectedList
	}
	if data[0] >= 0xc0 {
		tx := new(LegacyTx)
		if err := rlp.DecodeBytes(data, tx); err != nil {
			return nil, err
		}
		return NewTx(tx), nil
	}

	payload := data[1:]
	var inner TxData
	switch data[0] {
	case AccessListTxType:
		inner = new(AccessListTx)
	case DynamicFeeTxType:
		inner = new(DynamicFeeTx)
	case BlobTxType:
		inner = new(BlobTx)
	case SetCodeTxType:
		inner = new(SetCodeTx)
	case L1MessageTxType:
		inner = new(L1MessageTx)
	default:
		return nil, ErrUnknownTxType
	}
	if err := rlp.DecodeBytes(payload, inner); err != nil {
		return nil, err
	}
	tx := NewTx(inner)
	if l1, ok := inner.(*L1MessageTx); ok {
		tx.SetSender(l1.Sender)
	}
	return tx, nil
}
