package rlp

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestEncodeStrings(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want []byte
	}{
		{"empty", "", []byte{0x80}},
		{"dog", "dog", []byte{0x83, 0x64, 0x6f, 0x67}},
		{"single char", "a", []byte{0x61}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeToBytes(tt.val)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("%s: got %x, want %x", tt.name, got, tt.want)
			}
		})
	}
}

func TestEncodeLongString(t *testing.T) {
	s := "Lorem ipsum dolor sit amet, consectetur adipisicing elit"
	got, err := EncodeToBytes(s)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0xb8 || got[1] != byte(len(s)) {
		t.Fatalf("long string header: got %x %x", got[0], got[1])
	}
	if !bytes.Equal(got[2:], []byte(s)) {
		t.Fatal("long string payload mismatch")
	}
}

func TestEncodeUint(t *testing.T) {
	tests := []struct {
		val  uint64
		want []byte
	}{
		{0, []byte{0x80}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x81, 0x80}},
		{256, []byte{0x82, 0x01, 0x00}},
		{1024, []byte{0x82, 0x04, 0x00}},
	}
	for _, tt := range tests {
		got, err := EncodeToBytes(tt.val)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Fatalf("uint(%d): got %x, want %x", tt.val, got, tt.want)
		}
	}
}

func TestEncodeBigIntAndUint256Agree(t *testing.T) {
	// A *big.Int and a *uint256.Int holding the same value must produce
	// identical encodings: both are minimal big-endian strings, zero as
	// the empty string.
	vals := []uint64{0, 1, 127, 128, 1024, 1<<32 - 1}
	for _, v := range vals {
		bi := new(big.Int).SetUint64(v)
		u := uint256.NewInt(v)

		encBI, err := EncodeToBytes(bi)
		if err != nil {
			t.Fatal(err)
		}
		encU, err := EncodeToBytes(u)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(encBI, encU) {
			t.Fatalf("value %d: big.Int encoding %x != uint256 encoding %x", v, encBI, encU)
		}
	}
}

func TestEncodeBoolAsByte(t *testing.T) {
	got, err := EncodeToBytes(true)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x01}) {
		t.Fatalf("true: got %x", got)
	}
	got, err = EncodeToBytes(false)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x80}) {
		t.Fatalf("false: got %x", got)
	}
}

func TestEncodeNilPointerIsEmptyString(t *testing.T) {
	var p *uint64
	got, err := EncodeToBytes(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x80}) {
		t.Fatalf("nil pointer: got %x, want 80", got)
	}
}

func TestEncodeStructAndNestedList(t *testing.T) {
	type pair struct {
		Name string
		Age  uint64
	}
	got, err := EncodeToBytes(pair{Name: "cat", Age: 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xc5, 0x83, 0x63, 0x61, 0x74, 0x05}
	if !bytes.Equal(got, want) {
		t.Fatalf("struct: got %x, want %x", got, want)
	}

	nested, err := EncodeToBytes([][]string{{"cat"}, {"dog"}})
	if err != nil {
		t.Fatal(err)
	}
	wantNested := []byte{0xca, 0xc4, 0x83, 0x63, 0x61, 0x74, 0xc4, 0x83, 0x64, 0x6f, 0x67}
	if !bytes.Equal(nested, wantNested) {
		t.Fatalf("nested list: got %x, want %x", nested, wantNested)
	}
}

func TestEncodeToWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, "dog"); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x83, 0x64, 0x6f, 0x67}) {
		t.Fatalf("Encode: got %x", buf.Bytes())
	}
}

func TestEncodeSingleByteIsItself(t *testing.T) {
	got, err := EncodeToBytes([]byte{0x42})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x42}) {
		t.Fatalf("single byte: got %x, want 42", got)
	}
}
