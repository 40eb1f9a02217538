package types

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
)

func TestEncodeDecodeAccount(t *testing.T) {
	a := &Account{
		Nonce:    5,
		Balance:  uint256.NewInt(1_000_000_000_000),
		Root:     EmptyRootHash,
		CodeHash: append([]byte(nil), EmptyCodeHash.Bytes()...),
	}

	enc, err := EncodeAccount(a)
	if err != nil {
		t.Fatalf("EncodeAccount: %v", err)
	}

	decoded, err := DecodeAccount(enc)
	if err != nil {
		t.Fatalf("DecodeAccount: %v", err)
	}
	if decoded.Nonce != a.Nonce {
		t.Fatalf("Nonce mismatch: got %d, want %d", decoded.Nonce, a.Nonce)
	}
	if decoded.Balance.Cmp(a.Balance) != 0 {
		t.Fatalf("Balance mismatch: got %v, want %v", decoded.Balance, a.Balance)
	}
	if decoded.Root != a.Root {
		t.Fatal("Root mismatch")
	}
	if !bytes.Equal(decoded.CodeHash, a.CodeHash) {
		t.Fatal("CodeHash mismatch")
	}
}

func TestEncodeEmptyAccount(t *testing.T) {
	a := NewEmptyAccount()
	enc, err := EncodeAccount(a)
	if err != nil {
		t.Fatalf("EncodeAccount: %v", err)
	}
	decoded, err := DecodeAccount(enc)
	if err != nil {
		t.Fatalf("DecodeAccount: %v", err)
	}
	if !decoded.IsEmpty() {
		t.Fatal("round-tripped empty account should still report IsEmpty")
	}
}
