// pihash.go implements the two bit-exact chunk public-input hashing
// pipelines of spec.md §4.I: the legacy pre-EuclidV2 scheme and the
// EuclidV2 rolling message-queue-hash scheme. Both are pure keccak
// pipelines over big-endian integers and hashes; no package in this
// repo hashes public inputs this way, so these are implemented directly
// from spec.md with no teacher analog (see DESIGN.md).
package chunk

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/crypto"
)

// LegacyDataHash computes the legacy data_hash: for each block, its
// number/timestamp/base-fee/gas-limit/tx-count, followed by the tx hash
// of every L1-message transaction across all blocks in order.
func LegacyDataHash(blocks []*types.Block) types.Hash {
	var buf []byte
	for _, b := range blocks {
		buf = appendBlockFields(buf, b)
	}
	for _, b := range blocks {
		for _, tx := range b.Transactions() {
			if tx.IsL1Message() {
				h := tx.Hash()
				buf = append(buf, h.Bytes()...)
			}
		}
	}
	return crypto.Keccak256Hash(buf)
}

func appendBlockFields(buf []byte, b *types.Block) []byte {
	var tmp [32]byte

	binary.BigEndian.PutUint64(tmp[:8], b.NumberU64())
	buf = append(buf, tmp[:8]...)

	binary.BigEndian.PutUint64(tmp[:8], b.Time())
	buf = append(buf, tmp[:8]...)

	baseFee := new(uint256.Int)
	if bf := b.BaseFee(); bf != nil {
		baseFee, _ = uint256.FromBig(bf)
	}
	b32 := baseFee.Bytes32()
	buf = append(buf, b32[:]...)

	binary.BigEndian.PutUint64(tmp[:8], b.GasLimit())
	buf = append(buf, tmp[:8]...)

	var txCount [2]byte
	binary.BigEndian.PutUint16(txCount[:], uint16(len(b.Transactions())))
	buf = append(buf, txCount[:]...)

	return buf
}

// TxDataDigest is keccak256 of the EIP-2718 envelope bytes of every
// non-L1-message transaction across all blocks, in block then
// within-block order.
func TxDataDigest(blocks []*types.Block) (types.Hash, error) {
	var buf []byte
	for _, b := range blocks {
		for _, tx := range b.Transactions() {
			if tx.IsL1Message() {
				continue
			}
			enc, err := types.EncodeTxEnvelope(tx)
			if err != nil {
				return types.Hash{}, err
			}
			buf = append(buf, enc...)
		}
	}
	return crypto.Keccak256Hash(buf), nil
}

// LegacyPIHash computes the pre-EuclidV2 chunk public-input hash
// (spec.md §4.I).
func LegacyPIHash(chainID uint64, prevStateRoot, postStateRoot, withdrawRoot types.Hash, blocks []*types.Block) (types.Hash, error) {
	dataHash := LegacyDataHash(blocks)
	txDigest, err := TxDataDigest(blocks)
	if err != nil {
		return types.Hash{}, err
	}

	var buf []byte
	var chainIDBytes [8]byte
	binary.BigEndian.PutUint64(chainIDBytes[:], chainID)
	buf = append(buf, chainIDBytes[:]...)
	buf = append(buf, prevStateRoot.Bytes()...)
	buf = append(buf, postStateRoot.Bytes()...)
	buf = append(buf, withdrawRoot.Bytes()...)
	buf = append(buf, dataHash.Bytes()...)
	buf = append(buf, txDigest.Bytes()...)

	return crypto.Keccak256Hash(buf), nil
}

// FoldMsgQueueHash is one step of the EuclidV2 rolling message-queue
// hash: h <- keccak(prev || txHash), then the low 4 bytes of h are
// zeroed. The zeroing step is mandatory (spec.md §4.I) and matches
// upstream DA codec rules.
func FoldMsgQueueHash(prev types.Hash, txHash types.Hash) types.Hash {
	buf := make([]byte, 0, 64)
	buf = append(buf, prev.Bytes()...)
	buf = append(buf, txHash.Bytes()...)
	h := crypto.Keccak256Hash(buf)
	h[28] = 0
	h[29] = 0
	h[30] = 0
	h[31] = 0
	return h
}

// EuclidV2PostMsgQueueHash folds prev across every L1-message
// transaction in blocks, in order.
func EuclidV2PostMsgQueueHash(prev types.Hash, blocks []*types.Block) types.Hash {
	h := prev
	for _, b := range blocks {
		for _, tx := range b.Transactions() {
			if tx.IsL1Message() {
				h = FoldMsgQueueHash(h, tx.Hash())
			}
		}
	}
	return h
}

// EuclidV2PIHash computes the EuclidV2 chunk public-input hash
// (spec.md §4.I). prevMsgQueueHash is supplied by the caller;
// postMsgQueueHash is the result of EuclidV2PostMsgQueueHash.
func EuclidV2PIHash(chainID uint64, prevStateRoot, postStateRoot, withdrawRoot, txDataDigest, prevMsgQueueHash, postMsgQueueHash types.Hash) types.Hash {
	var buf []byte
	var chainIDBytes [8]byte
	binary.BigEndian.PutUint64(chainIDBytes[:], chainID)
	buf = append(buf, chainIDBytes[:]...)
	buf = append(buf, prevStateRoot.Bytes()...)
	buf = append(buf, postStateRoot.Bytes()...)
	buf = append(buf, withdrawRoot.Bytes()...)
	buf = append(buf, txDataDigest.Bytes()...)
	buf = append(buf, prevMsgQueueHash.Bytes()...)
	buf = append(buf, postMsgQueueHash.Bytes()...)
	return crypto.Keccak256Hash(buf)
}
