package witness

import (
	"errors"
	"testing"

	"github.com/scrollstateless/verifier/core/types"
)

const sampleChunkJSON = `[
  {
    "chain_id": 1,
    "header": {
      "parent_hash": "0x0000000000000000000000000000000000000000000000000000000000000",
      "sha3_uncles": "0x1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347",
      "miner": "0x3333333333333333333333333333333333333333",
      "state_root": "0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421",
      "transactions_root": "0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421",
      "receipts_root": "0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421",
      "logs_bloom": "0x00",
      "difficulty": "0x00",
      "number": "0x01",
      "gas_limit": "0x1c9c380",
      "gas_used": "0x5208",
      "timestamp": "0x64",
      "extra_data": "0x",
      "mix_hash": "0x00",
      "nonce": "0x0000000000000000",
      "base_fee_per_gas": "0x32"
    },
    "pre_state_root": "0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421",
    "transactions": [
      {
        "type": "0x02",
        "chain_id": 1,
        "nonce": 0,
        "max_priority_fee_per_gas": "0x0a",
        "max_fee_per_gas": "0x64",
        "gas": 21000,
        "to": "0x2222222222222222222222222222222222222222",
        "value": "0x3e8",
        "data": "0x",
        "v": 1,
        "r": "0x01",
        "s": "0x01"
      }
    ],
    "withdrawals": [
      {"index": 0, "validator_index": 0, "address": "0x4444444444444444444444444444444444444444", "amount": 5}
    ],
    "block_hashes": [],
    "states": [],
    "codes": []
  }
]`

func TestDecodeChunk(t *testing.T) {
	witnesses, err := DecodeChunk([]byte(sampleChunkJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(witnesses) != 1 {
		t.Fatalf("len = %d, want 1", len(witnesses))
	}

	w := witnesses[0]
	if w.ChainID != 1 {
		t.Fatalf("chain id = %d, want 1", w.ChainID)
	}
	if w.Header.NumberU64() != 1 {
		t.Fatalf("block number = %d, want 1", w.Header.NumberU64())
	}
	if w.Header.GasLimit != 0x1c9c380 {
		t.Fatalf("gas limit = %d, want %d", w.Header.GasLimit, 0x1c9c380)
	}
	if w.Header.BaseFee == nil || w.Header.BaseFee.Uint64() != 0x32 {
		t.Fatalf("base fee = %v, want 0x32", w.Header.BaseFee)
	}
	if len(w.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(w.Transactions))
	}
	tx := w.Transactions[0]
	if tx.Type() != types.DynamicFeeTxType {
		t.Fatalf("tx type = %d, want %d", tx.Type(), types.DynamicFeeTxType)
	}
	if tx.Gas() != 21000 {
		t.Fatalf("tx gas = %d, want 21000", tx.Gas())
	}
	if len(w.Withdrawals) != 1 || w.Withdrawals[0].Amount != 5 {
		t.Fatalf("withdrawals = %+v", w.Withdrawals)
	}
}

func TestDecodeChunkUnknownTxType(t *testing.T) {
	const badJSON = `[{"chain_id":1,"header":{"parent_hash":"0x00","sha3_uncles":"0x00","miner":"0x00","state_root":"0x00","transactions_root":"0x00","receipts_root":"0x00","logs_bloom":"0x00","difficulty":"0x00","number":"0x01","gas_limit":"0x01","gas_used":"0x00","timestamp":"0x00","extra_data":"0x","mix_hash":"0x00","nonce":"0x0000000000000000"},"pre_state_root":"0x00","transactions":[{"type":"0xff","nonce":0,"gas":0,"value":"0x0","data":"0x"}],"withdrawals":[],"block_hashes":[],"states":[],"codes":[]}]`

	_, err := DecodeChunk([]byte(badJSON))
	if !errors.Is(err, types.ErrUnknownTxType) {
		t.Fatalf("expected ErrUnknownTxType, got %v", err)
	}
}

func TestDecodeChunkL1MessageSenderFromEnvelope(t *testing.T) {
	const l1JSON = `[{"chain_id":534352,"header":{"parent_hash":"0x00","sha3_uncles":"0x00","miner":"0x00","state_root":"0x00","transactions_root":"0x00","receipts_root":"0x00","logs_bloom":"0x00","difficulty":"0x00","number":"0x01","gas_limit":"0x01","gas_used":"0x00","timestamp":"0x00","extra_data":"0x","mix_hash":"0x00","nonce":"0x0000000000000000"},"pre_state_root":"0x00","transactions":[{"type":"0x7e","nonce":0,"gas":21000,"to":"0x2222222222222222222222222222222222222222","value":"0x01","data":"0x","queue_index":3,"sender":"0x4444444444444444444444444444444444444444"}],"withdrawals":[],"block_hashes":[],"states":[],"codes":[]}]`

	witnesses, err := DecodeChunk([]byte(l1JSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tx := witnesses[0].Transactions[0]
	if !tx.IsL1Message() {
		t.Fatal("expected an L1 message transaction")
	}
	sender := tx.Sender()
	if sender == nil || *sender != types.HexToAddress("0x4444444444444444444444444444444444444444") {
		t.Fatalf("sender = %v, want the envelope's sender field", sender)
	}
}
