package types

import (
	"math/big"
	"testing"
)

func TestHeaderRLPRoundTrip(t *testing.T) {
	blobGasUsed := uint64(131072)
	excessBlobGas := uint64(0)
	beaconRoot := HexToHash("0xbeac")
	reqHash := HexToHash("0x7685")
	withdrawalsHash := EmptyRootHash

	h := &Header{
		ParentHash:       HexToHash("0x1111"),
		UncleHash:        EmptyUncleHash,
		Coinbase:         HexToAddress("0xaabbcc"),
		Root:             EmptyRootHash,
		TxHash:           EmptyRootHash,
		ReceiptHash:      EmptyRootHash,
		Difficulty:       big.NewInt(0),
		Number:           big.NewInt(100),
		GasLimit:         30_000_000,
		GasUsed:          21_000,
		Time:             1700000000,
		Extra:            []byte("scroll"),
		BaseFee:          big.NewInt(1_000_000_000),
		WithdrawalsHash:  &withdrawalsHash,
		BlobGasUsed:      &blobGasUsed,
		ExcessBlobGas:    &excessBlobGas,
		ParentBeaconRoot: &beaconRoot,
		RequestsHash:     &reqHash,
	}

	enc, err := h.EncodeRLP()
	if err != nil {
		t.Fatalf("EncodeRLP failed: %v", err)
	}
	if len(enc) == 0 {
		t.Fatal("EncodeRLP returned empty bytes")
	}

	decoded, err := DecodeHeaderRLP(enc)
	if err != nil {
		t.Fatalf("DecodeHeaderRLP failed: %v", err)
	}

	if decoded.ParentHash != h.ParentHash {
		t.Fatal("ParentHash mismatch")
	}
	if decoded.UncleHash != h.UncleHash {
		t.Fatal("UncleHash mismatch")
	}
	if decoded.Coinbase != h.Coinbase {
		t.Fatal("Coinbase mismatch")
	}
	if decoded.Root != h.Root {
		t.Fatal("Root mismatch")
	}
	if decoded.Difficulty.Cmp(h.Difficulty) != 0 {
		t.Fatalf("Difficulty mismatch: got %v, want %v", decoded.Difficulty, h.Difficulty)
	}
	if decoded.Number.Cmp(h.Number) != 0 {
		t.Fatalf("Number mismatch: got %v, want %v", decoded.Number, h.Number)
	}
	if decoded.GasLimit != h.GasLimit {
		t.Fatalf("GasLimit mismatch: got %d, want %d", decoded.GasLimit, h.GasLimit)
	}
	if decoded.Time != h.Time {
		t.Fatalf("Time mismatch: got %d, want %d", decoded.Time, h.Time)
	}
	if string(decoded.Extra) != string(h.Extra) {
		t.Fatal("Extra mismatch")
	}
	if decoded.BaseFee.Cmp(h.BaseFee) != 0 {
		t.Fatalf("BaseFee mismatch: got %v, want %v", decoded.BaseFee, h.BaseFee)
	}
	if decoded.WithdrawalsHash == nil || *decoded.WithdrawalsHash != *h.WithdrawalsHash {
		t.Fatal("WithdrawalsHash mismatch")
	}
	if decoded.BlobGasUsed == nil || *decoded.BlobGasUsed != *h.BlobGasUsed {
		t.Fatal("BlobGasUsed mismatch")
	}
	if decoded.ExcessBlobGas == nil || *decoded.ExcessBlobGas != *h.ExcessBlobGas {
		t.Fatal("ExcessBlobGas mismatch")
	}
	if decoded.ParentBeaconRoot == nil || *decoded.ParentBeaconRoot != *h.ParentBeaconRoot {
		t.Fatal("ParentBeaconRoot mismatch")
	}
	if decoded.RequestsHash == nil || *decoded.RequestsHash != *h.RequestsHash {
		t.Fatal("RequestsHash mismatch")
	}
}

func TestHeaderRLPMinimalFields(t *testing.T) {
	// Pre-London header with no optional trailing fields.
	h := &Header{
		Difficulty: big.NewInt(1000000),
		Number:     big.NewInt(42),
		GasLimit:   8_000_000,
		GasUsed:    21_000,
		Time:       1600000000,
		Extra:      []byte{},
	}

	enc, err := h.EncodeRLP()
	if err != nil {
		t.Fatalf("EncodeRLP failed: %v", err)
	}

	decoded, err := DecodeHeaderRLP(enc)
	if err != nil {
		t.Fatalf("DecodeHeaderRLP failed: %v", err)
	}

	if decoded.Number.Cmp(h.Number) != 0 {
		t.Fatalf("Number mismatch: got %v, want %v", decoded.Number, h.Number)
	}
	if decoded.BaseFee != nil {
		t.Fatal("BaseFee should be nil for a pre-London header")
	}
	if decoded.WithdrawalsHash != nil {
		t.Fatal("WithdrawalsHash should be nil for a pre-Shanghai header")
	}
	if decoded.BlobGasUsed != nil {
		t.Fatal("BlobGasUsed should be nil for a pre-Cancun header")
	}
}

func TestHeaderHashConsistency(t *testing.T) {
	h := &Header{
		ParentHash: HexToHash("0xabcdef"),
		Number:     big.NewInt(1),
		Difficulty: big.NewInt(0),
		GasLimit:   30_000_000,
		Time:       1700000000,
	}

	hash1 := h.Hash()
	hash2 := h.Hash()
	if hash1 != hash2 {
		t.Fatal("Hash() should be memoised and consistent across calls")
	}
	if hash1.IsZero() {
		t.Fatal("Hash() should not return the zero hash for a populated header")
	}
}

func TestHeaderHashDifferentHeaders(t *testing.T) {
	h1 := &Header{Number: big.NewInt(1), Difficulty: big.NewInt(0)}
	h2 := &Header{Number: big.NewInt(2), Difficulty: big.NewInt(0)}

	if h1.Hash() == h2.Hash() {
		t.Fatal("different headers should hash differently")
	}
}

func TestHeaderNumberU64Nil(t *testing.T) {
	h := &Header{}
	if got := h.NumberU64(); got != 0 {
		t.Fatalf("NumberU64 on a nil Number should return 0, got %d", got)
	}
}
