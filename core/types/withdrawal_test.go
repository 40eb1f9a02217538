package types

import "testing"

func TestEncodeDecodeWithdrawal(t *testing.T) {
	w := &Withdrawal{
		Index:          1,
		ValidatorIndex: 2,
		Address:        addr(0x11),
		Amount:         1_000_000,
	}

	enc := EncodeWithdrawal(w)
	if len(enc) == 0 {
		t.Fatal("EncodeWithdrawal returned empty bytes")
	}

	decoded, err := DecodeWithdrawal(enc)
	if err != nil {
		t.Fatalf("DecodeWithdrawal: %v", err)
	}
	if *decoded != *w {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", decoded, w)
	}
}

func TestWithdrawalHashDeterministic(t *testing.T) {
	w := &Withdrawal{Index: 1, ValidatorIndex: 1, Address: addr(0x01), Amount: 1}
	h1 := WithdrawalHash(w)
	h2 := WithdrawalHash(w)
	if h1 != h2 {
		t.Fatal("WithdrawalHash should be deterministic")
	}

	other := &Withdrawal{Index: 2, ValidatorIndex: 1, Address: addr(0x01), Amount: 1}
	if WithdrawalHash(other) == h1 {
		t.Fatal("withdrawals differing only in Index should hash differently")
	}
}

func TestWithdrawalsRootEmpty(t *testing.T) {
	if got := WithdrawalsRoot(nil); got != EmptyRootHash {
		t.Fatalf("empty withdrawal list should root to EmptyRootHash, got %s", got.Hex())
	}
}

func TestWithdrawalsRootOrderSensitive(t *testing.T) {
	a := &Withdrawal{Index: 1, Address: addr(0x01), Amount: 1}
	b := &Withdrawal{Index: 2, Address: addr(0x02), Amount: 2}

	r1 := WithdrawalsRoot([]*Withdrawal{a, b})
	r2 := WithdrawalsRoot([]*Withdrawal{b, a})
	if r1 == r2 {
		t.Fatal("WithdrawalsRoot should depend on withdrawal order")
	}
}

func TestValidateWithdrawal(t *testing.T) {
	if err := ValidateWithdrawal(nil); err == nil {
		t.Fatal("expected an error for a nil withdrawal")
	}
	if err := ValidateWithdrawal(&Withdrawal{}); err == nil {
		t.Fatal("expected an error for a zero-address withdrawal")
	}
	if err := ValidateWithdrawal(&Withdrawal{Address: addr(0x01)}); err != nil {
		t.Fatalf("unexpected error for a valid withdrawal: %v", err)
	}
}

func TestProcessWithdrawals(t *testing.T) {
	ws := []*Withdrawal{
		{Index: 0, Address: addr(0x01), Amount: 100},
		{Index: 1, Address: addr(0x01), Amount: 50},
		{Index: 2, Address: addr(0x02), Amount: 10},
	}
	credits, err := ProcessWithdrawals(ws)
	if err != nil {
		t.Fatalf("ProcessWithdrawals: %v", err)
	}
	if credits[addr(0x01)] != 150 {
		t.Fatalf("expected 150 credited to addr 0x01, got %d", credits[addr(0x01)])
	}
	if credits[addr(0x02)] != 10 {
		t.Fatalf("expected 10 credited to addr 0x02, got %d", credits[addr(0x02)])
	}
}

func TestProcessWithdrawalsDuplicateIndex(t *testing.T) {
	ws := []*Withdrawal{
		{Index: 0, Address: addr(0x01), Amount: 1},
		{Index: 0, Address: addr(0x02), Amount: 1},
	}
	if _, err := ProcessWithdrawals(ws); err == nil {
		t.Fatal("expected an error for duplicate withdrawal indices")
	}
}

func TestProcessWithdrawalsTooMany(t *testing.T) {
	ws := make([]*Withdrawal, MaxWithdrawalsPerPayload+1)
	for i := range ws {
		ws[i] = &Withdrawal{Index: uint64(i), Address: addr(0x01), Amount: 1}
	}
	if _, err := ProcessWithdrawals(ws); err == nil {
		t.Fatal("expected an error for an oversized withdrawal payload")
	}
}
