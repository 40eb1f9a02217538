package types

import (
	"math/big"

	"github.com/scrollstateless/verifier/rlp"
)

// EncodeRLP returns the RLP encoding of the header in Yellow Paper field
// order, appending each post-Homestead optional field that is present. A
// nil field is skipped on its own; whether the fields before it are
// present is not checked.
func (h *Header) EncodeRLP() ([]byte, error) {
	items := []interface{}{
		h.ParentHash, h.UncleHash, h.Coinbase, h.Root, h.TxHash, h.ReceiptHash,
		h.Bloom, bigIntOrZero(h.Difficulty), bigIntOrZero(h.Number), h.GasLimit,
		h.GasUsed, h.Time, h.Extra, h.MixDigest, h.Nonce,
	}
	if h.BaseFee != nil {
		items = append(items, h.BaseFee)
	}
	if h.WithdrawalsHash != nil {
		items = append(items, *h.WithdrawalsHash)
	}
	if h.BlobGasUsed != nil {
		items = append(items, *h.BlobGasUsed)
	}
	if h.ExcessBlobGas != nil {
		items = append(items, *h.ExcessBlobGas)
	}
	if h.ParentBeaconRoot != nil {
		items = append(items, *h.ParentBeaconRoot)
	}
	if h.RequestsHash != nil {
		items = append(items, *h.RequestsHash)
	}
	return encodeRLPList(items)
}

func encodeRLPList(items []interface{}) ([]byte, error) {
	var payload []byte
	for _, item := range items {
		enc, err := rlp.EncodeToBytes(item)
		if err != nil {
			return nil, err
		}
		payload = append(payload, enc...)
	}
	return rlp.WrapList(payload), nil
}

func bigIntOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// DecodeHeaderRLP decodes an RLP-encoded header, reading the trailing
// optional fields for as long as the list has unread items left.
func DecodeHeaderRLP(data []byte) (*Header, error) {
	s := rlp.NewStreamFromBytes(data)
	if _, err := s.List(); err != nil {
		return nil, err
	}

	h := &Header{}
	var err error
	if err = decodeHash(s, &h.ParentHash); err != nil {
		return nil, err
	}
	if err = decodeHash(s, &h.UncleHash); err != nil {
		return nil, err
	}
	if err = decodeAddress(s, &h.Coinbase); err != nil {
		return nil, err
	}
	if err = decodeHash(s, &h.Root); err != nil {
		return nil, err
	}
	if err = decodeHash(s, &h.TxHash); err != nil {
		return nil, err
	}
	if err = decodeHash(s, &h.ReceiptHash); err != nil {
		return nil, err
	}
	if err = decodeBloom(s, &h.Bloom); err != nil {
		return nil, err
	}
	if h.Difficulty, err = s.BigInt(); err != nil {
		return nil, err
	}
	if h.Number, err = s.BigInt(); err != nil {
		return nil, err
	}
	if h.GasLimit, err = s.Uint64(); err != nil {
		return nil, err
	}
	if h.GasUsed, err = s.Uint64(); err != nil {
		return nil, err
	}
	if h.Time, err = s.Uint64(); err != nil {
		return nil, err
	}
	if h.Extra, err = s.Bytes(); err != nil {
		return nil, err
	}
	if err = decodeHash(s, &h.MixDigest); err != nil {
		return nil, err
	}
	if err = decodeBlockNonce(s, &h.Nonce); err != nil {
		return nil, err
	}

	if !s.AtListEnd() {
		if h.BaseFee, err = s.BigInt(); err != nil {
			return nil, err
		}
	}
	if !s.AtListEnd() {
		var wh Hash
		if err = decodeHash(s, &wh); err != nil {
			return nil, err
		}
		h.WithdrawalsHash = &wh
	}
	if !s.AtListEnd() {
		bgu, err := s.Uint64()
		if err != nil {
			return nil, err
		}
		h.BlobGasUsed = &bgu
	}
	if !s.AtListEnd() {
		ebg, err := s.Uint64()
		if err != nil {
			return nil, err
		}
		h.ExcessBlobGas = &ebg
	}
	if !s.AtListEnd() {
		var pbr Hash
		if err = decodeHash(s, &pbr); err != nil {
			return nil, err
		}
		h.ParentBeaconRoot = &pbr
	}
	if !s.AtListEnd() {
		var rh Hash
		if err = decodeHash(s, &rh); err != nil {
			return nil, err
		}
		h.RequestsHash = &rh
	}

	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return h, nil
}

func decodeHash(s *rlp.Stream, h *Hash) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	copy(h[HashLength-len(b):], b)
	return nil
}

func decodeAddress(s *rlp.Stream, a *Address) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	copy(a[AddressLength-len(b):], b)
	return nil
}

func decodeBloom(s *rlp.Stream, bl *Bloom) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	copy(bl[BloomLength-len(b):], b)
	return nil
}

func decodeBlockNonce(s *rlp.Stream, n *BlockNonce) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	copy(n[NonceLength-len(b):], b)
	return nil
}
