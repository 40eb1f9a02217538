// json.go decodes the JSON witness format of spec.md §6 into a Witness.
// Grounded on the teacher's core/eftest/geth_runner.go idiom: plain
// string-keyed DTO structs plus small hexToX helper functions, rather
// than UnmarshalJSON methods on the domain types themselves (the teacher
// never adds JSON methods to core/types either).
package witness

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/scrollstateless/verifier/core/types"
)

type jsonHeader struct {
	ParentHash       string `json:"parent_hash"`
	UncleHash        string `json:"sha3_uncles"`
	Coinbase         string `json:"miner"`
	StateRoot        string `json:"state_root"`
	TxRoot           string `json:"transactions_root"`
	ReceiptRoot      string `json:"receipts_root"`
	Bloom            string `json:"logs_bloom"`
	Difficulty       string `json:"difficulty"`
	Number           string `json:"number"`
	GasLimit         string `json:"gas_limit"`
	GasUsed          string `json:"gas_used"`
	Timestamp        string `json:"timestamp"`
	ExtraData        string `json:"extra_data"`
	MixHash          string `json:"mix_hash"`
	Nonce            string `json:"nonce"`
	BaseFeePerGas    string `json:"base_fee_per_gas,omitempty"`
	WithdrawalsRoot  string `json:"withdrawals_root,omitempty"`
	BlobGasUsed      string `json:"blob_gas_used,omitempty"`
	ExcessBlobGas    string `json:"excess_blob_gas,omitempty"`
	ParentBeaconRoot string `json:"parent_beacon_block_root,omitempty"`
	RequestsHash     string `json:"requests_hash,omitempty"`
}

type jsonAccessTuple struct {
	Address     string   `json:"address"`
	StorageKeys []string `json:"storage_keys"`
}

type jsonAuthorization struct {
	ChainID uint64 `json:"chain_id"`
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
	V       uint8  `json:"v"`
	R       string `json:"r"`
	S       string `json:"s"`
}

type jsonTx struct {
	Type           string              `json:"type"`
	ChainID        uint64              `json:"chain_id,omitempty"`
	Nonce          uint64              `json:"nonce"`
	GasPrice       string              `json:"gas_price,omitempty"`
	GasTipCap      string              `json:"max_priority_fee_per_gas,omitempty"`
	GasFeeCap      string              `json:"max_fee_per_gas,omitempty"`
	Gas            uint64              `json:"gas"`
	To             string              `json:"to,omitempty"`
	Value          string              `json:"value"`
	Data           string              `json:"data"`
	AccessList     []jsonAccessTuple   `json:"access_list,omitempty"`
	BlobFeeCap     string              `json:"max_fee_per_blob_gas,omitempty"`
	BlobHashes     []string            `json:"blob_versioned_hashes,omitempty"`
	Authorizations []jsonAuthorization `json:"authorization_list,omitempty"`
	QueueIndex     uint64              `json:"queue_index,omitempty"`
	Sender         string              `json:"sender,omitempty"`
	V              uint64              `json:"v,omitempty"`
	R              string              `json:"r,omitempty"`
	S              string              `json:"s,omitempty"`
}

type jsonWithdrawal struct {
	Index          uint64 `json:"index"`
	ValidatorIndex uint64 `json:"validator_index"`
	Address        string `json:"address"`
	Amount         uint64 `json:"amount"`
}

type jsonWitness struct {
	ChainID      uint64            `json:"chain_id"`
	Header       jsonHeader        `json:"header"`
	PreStateRoot string            `json:"pre_state_root"`
	Transactions []jsonTx          `json:"transactions"`
	Withdrawals  []jsonWithdrawal  `json:"withdrawals"`
	BlockHashes  []string          `json:"block_hashes"`
	States       []string          `json:"states"`
	Codes        []string          `json:"codes"`
}

// DecodeChunk parses a JSON array of block witnesses (spec.md §6) into a
// chunk's worth of Witness values, in the order they appear in data.
func DecodeChunk(data []byte) ([]*Witness, error) {
	var raw []jsonWitness
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("witness: decode chunk json: %w", err)
	}
	out := make([]*Witness, len(raw))
	for i, jw := range raw {
		w, err := jw.toWitness()
		if err != nil {
			return nil, fmt.Errorf("witness: block %d: %w", i, err)
		}
		out[i] = w
	}
	return out, nil
}

func (jw *jsonWitness) toWitness() (*Witness, error) {
	header, err := jw.Header.toHeader()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	txs := make([]*types.Transaction, len(jw.Transactions))
	for i, jt := range jw.Transactions {
		tx, err := jt.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		txs[i] = tx
	}

	var withdrawals []*types.Withdrawal
	for _, jwd := range jw.Withdrawals {
		withdrawals = append(withdrawals, &types.Withdrawal{
			Index:          jwd.Index,
			ValidatorIndex: jwd.ValidatorIndex,
			Address:        types.HexToAddress(jwd.Address),
			Amount:         jwd.Amount,
		})
	}

	blockHashes := make([]types.Hash, len(jw.BlockHashes))
	for i, h := range jw.BlockHashes {
		blockHashes[i] = types.HexToHash(h)
	}

	states := make([][]byte, len(jw.States))
	for i, s := range jw.States {
		states[i] = hexToBytes(s)
	}
	codes := make([][]byte, len(jw.Codes))
	for i, c := range jw.Codes {
		codes[i] = hexToBytes(c)
	}

	return &Witness{
		ChainID:      jw.ChainID,
		Header:       header,
		PreStateRoot: types.HexToHash(jw.PreStateRoot),
		Transactions: txs,
		Withdrawals:  withdrawals,
		BlockHashes:  blockHashes,
		States:       states,
		Codes:        codes,
	}, nil
}

func (jh *jsonHeader) toHeader() (*types.Header, error) {
	h := &types.Header{
		ParentHash:  types.HexToHash(jh.ParentHash),
		UncleHash:   types.HexToHash(jh.UncleHash),
		Coinbase:    types.HexToAddress(jh.Coinbase),
		Root:        types.HexToHash(jh.StateRoot),
		TxHash:      types.HexToHash(jh.TxRoot),
		ReceiptHash: types.HexToHash(jh.ReceiptRoot),
		Difficulty:  hexToBigInt(jh.Difficulty),
		Number:      hexToBigInt(jh.Number),
		GasLimit:    hexToUint64(jh.GasLimit),
		GasUsed:     hexToUint64(jh.GasUsed),
		Time:        hexToUint64(jh.Timestamp),
		Extra:       hexToBytes(jh.ExtraData),
		MixDigest:   types.HexToHash(jh.MixHash),
	}
	copy(h.Bloom[:], hexToBytes(jh.Bloom))
	copy(h.Nonce[:], hexToBytes(jh.Nonce))

	if jh.BaseFeePerGas != "" {
		h.BaseFee = hexToBigInt(jh.BaseFeePerGas)
	}
	if jh.WithdrawalsRoot != "" {
		r := types.HexToHash(jh.WithdrawalsRoot)
		h.WithdrawalsHash = &r
	}
	if jh.BlobGasUsed != "" {
		v := hexToUint64(jh.BlobGasUsed)
		h.BlobGasUsed = &v
	}
	if jh.ExcessBlobGas != "" {
		v := hexToUint64(jh.ExcessBlobGas)
		h.ExcessBlobGas = &v
	}
	if jh.ParentBeaconRoot != "" {
		r := types.HexToHash(jh.ParentBeaconRoot)
		h.ParentBeaconRoot = &r
	}
	if jh.RequestsHash != "" {
		r := types.HexToHash(jh.RequestsHash)
		h.RequestsHash = &r
	}
	return h, nil
}

func (jt *jsonTx) toTransaction() (*types.Transaction, error) {
	toAddr := func() *types.Address {
		if jt.To == "" {
			return nil
		}
		a := types.HexToAddress(jt.To)
		return &a
	}

	accessList := func() types.AccessList {
		if len(jt.AccessList) == 0 {
			return nil
		}
		al := make(types.AccessList, len(jt.AccessList))
		for i, e := range jt.AccessList {
			keys := make([]types.Hash, len(e.StorageKeys))
			for j, k := range e.StorageKeys {
				keys[j] = types.HexToHash(k)
			}
			al[i] = types.AccessTuple{Address: types.HexToAddress(e.Address), StorageKeys: keys}
		}
		return al
	}

	typ, err := strconv.ParseUint(strings.TrimPrefix(jt.Type, "0x"), 16, 8)
	if err != nil {
		return nil, fmt.Errorf("decode tx type %q: %w", jt.Type, err)
	}

	switch byte(typ) {
	case types.LegacyTxType:
		return types.NewTx(&types.LegacyTx{
			Nonce:    jt.Nonce,
			GasPrice: hexToUint256(jt.GasPrice),
			Gas:      jt.Gas,
			To:       toAddr(),
			Value:    hexToUint256(jt.Value),
			Data:     hexToBytes(jt.Data),
			V:        jt.V,
			R:        hexToUint256(jt.R),
			S:        hexToUint256(jt.S),
		}), nil
	case types.AccessListTxType:
		return types.NewTx(&types.AccessListTx{
			ChainID:    jt.ChainID,
			Nonce:      jt.Nonce,
			GasPrice:   hexToUint256(jt.GasPrice),
			Gas:        jt.Gas,
			To:         toAddr(),
			Value:      hexToUint256(jt.Value),
			Data:       hexToBytes(jt.Data),
			AccessList: accessList(),
			V:          uint8(jt.V),
			R:          hexToUint256(jt.R),
			S:          hexToUint256(jt.S),
		}), nil
	case types.DynamicFeeTxType:
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:    jt.ChainID,
			Nonce:      jt.Nonce,
			GasTipCap:  hexToUint256(jt.GasTipCap),
			GasFeeCap:  hexToUint256(jt.GasFeeCap),
			Gas:        jt.Gas,
			To:         toAddr(),
			Value:      hexToUint256(jt.Value),
			Data:       hexToBytes(jt.Data),
			AccessList: accessList(),
			V:          uint8(jt.V),
			R:          hexToUint256(jt.R),
			S:          hexToUint256(jt.S),
		}), nil
	case types.BlobTxType:
		blobHashes := make([]types.Hash, len(jt.BlobHashes))
		for i, h := range jt.BlobHashes {
			blobHashes[i] = types.HexToHash(h)
		}
		var to types.Address
		if a := toAddr(); a != nil {
			to = *a
		}
		return types.NewTx(&types.BlobTx{
			ChainID:    jt.ChainID,
			Nonce:      jt.Nonce,
			GasTipCap:  hexToUint256(jt.GasTipCap),
			GasFeeCap:  hexToUint256(jt.GasFeeCap),
			Gas:        jt.Gas,
			To:         to,
			Value:      hexToUint256(jt.Value),
			Data:       hexToBytes(jt.Data),
			AccessList: accessList(),
			BlobFeeCap: hexToUint256(jt.BlobFeeCap),
			BlobHashes: blobHashes,
			V:          uint8(jt.V),
			R:          hexToUint256(jt.R),
			S:          hexToUint256(jt.S),
		}), nil
	case types.SetCodeTxType:
		auths := make([]types.Authorization, len(jt.Authorizations))
		for i, a := range jt.Authorizations {
			auths[i] = types.Authorization{
				ChainID: a.ChainID,
				Address: types.HexToAddress(a.Address),
				Nonce:   a.Nonce,
				V:       a.V,
				R:       hexToUint256(a.R),
				S:       hexToUint256(a.S),
			}
		}
		var to types.Address
		if a := toAddr(); a != nil {
			to = *a
		}
		return types.NewTx(&types.SetCodeTx{
			ChainID:        jt.ChainID,
			Nonce:          jt.Nonce,
			GasTipCap:      hexToUint256(jt.GasTipCap),
			GasFeeCap:      hexToUint256(jt.GasFeeCap),
			Gas:            jt.Gas,
			To:             to,
			Value:          hexToUint256(jt.Value),
			Data:           hexToBytes(jt.Data),
			AccessList:     accessList(),
			Authorizations: auths,
			V:              uint8(jt.V),
			R:              hexToUint256(jt.R),
			S:              hexToUint256(jt.S),
		}), nil
	case types.L1MessageTxType:
		tx := types.NewTx(&types.L1MessageTx{
			QueueIndex: jt.QueueIndex,
			Gas:        jt.Gas,
			To:         toAddr(),
			Value:      hexToUint256(jt.Value),
			Data:       hexToBytes(jt.Data),
			Sender:     types.HexToAddress(jt.Sender),
		})
		tx.SetSender(types.HexToAddress(jt.Sender))
		return tx, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", types.ErrUnknownTxType, typ)
	}
}

func hexToBytes(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func hexToUint64(s string) uint64 {
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	return v
}

func hexToBigInt(s string) *big.Int {
	if s == "" {
		return new(big.Int)
	}
	v := new(big.Int)
	v.SetString(strings.TrimPrefix(s, "0x"), 16)
	return v
}

func hexToUint256(s string) *uint256.Int {
	if s == "" {
		return new(uint256.Int)
	}
	v, _ := uint256.FromHex("0x" + strings.TrimPrefix(s, "0x"))
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
