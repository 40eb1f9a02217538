package rlp

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestDecodeScalars(t *testing.T) {
	var s string
	if err := DecodeBytes([]byte{0x83, 0x64, 0x6f, 0x67}, &s); err != nil || s != "dog" {
		t.Fatalf("string: got %q, err %v", s, err)
	}

	var u uint64
	if err := DecodeBytes([]byte{0x82, 0x04, 0x00}, &u); err != nil || u != 1024 {
		t.Fatalf("uint64: got %d, err %v", u, err)
	}

	var bi big.Int
	if err := DecodeBytes([]byte{0x81, 0x80}, &bi); err != nil || bi.Cmp(big.NewInt(128)) != 0 {
		t.Fatalf("big.Int: got %s, err %v", bi.String(), err)
	}

	var b bool
	if err := DecodeBytes([]byte{0x01}, &b); err != nil || !b {
		t.Fatalf("bool: got %v, err %v", b, err)
	}
}

func TestDecodeUint256(t *testing.T) {
	var u uint256.Int
	if err := DecodeBytes([]byte{0x82, 0x04, 0x00}, &u); err != nil {
		t.Fatal(err)
	}
	if u.Cmp(uint256.NewInt(1024)) != 0 {
		t.Fatalf("got %v, want 1024", &u)
	}
}

func TestDecodeStructAndSlice(t *testing.T) {
	type pair struct {
		Name string
		Age  uint64
	}
	var p pair
	if err := DecodeBytes([]byte{0xc5, 0x83, 0x63, 0x61, 0x74, 0x05}, &p); err != nil {
		t.Fatal(err)
	}
	if p.Name != "cat" || p.Age != 5 {
		t.Fatalf("got %+v", p)
	}

	var ss []string
	if err := DecodeBytes([]byte{0xc8, 0x83, 0x63, 0x61, 0x74, 0x83, 0x64, 0x6f, 0x67}, &ss); err != nil {
		t.Fatal(err)
	}
	if len(ss) != 2 || ss[0] != "cat" || ss[1] != "dog" {
		t.Fatalf("got %v", ss)
	}
}

func TestDecodeNilPointerField(t *testing.T) {
	// A struct holding a *uint64 field: the field decodes to nil when the
	// wire value is the empty string, instead of an allocated zero value.
	type withOptional struct {
		P *uint64
	}
	enc, err := EncodeToBytes(withOptional{P: nil})
	if err != nil {
		t.Fatal(err)
	}
	var dec withOptional
	if err := DecodeBytes(enc, &dec); err != nil {
		t.Fatal(err)
	}
	if dec.P != nil {
		t.Fatalf("expected nil pointer, got %v", *dec.P)
	}

	v := uint64(7)
	enc, err = EncodeToBytes(withOptional{P: &v})
	if err != nil {
		t.Fatal(err)
	}
	if err := DecodeBytes(enc, &dec); err != nil {
		t.Fatal(err)
	}
	if dec.P == nil || *dec.P != 7 {
		t.Fatalf("expected pointer to 7, got %v", dec.P)
	}
}

func TestRoundTripScalars(t *testing.T) {
	for _, u := range []uint64{0, 1, 127, 128, 255, 256, 1024, 65535, 1<<32 - 1, 1<<64 - 1} {
		enc, err := EncodeToBytes(u)
		if err != nil {
			t.Fatal(err)
		}
		var dec uint64
		if err := DecodeBytes(enc, &dec); err != nil || dec != u {
			t.Fatalf("uint64 %d round-trip: got %d, err %v", u, dec, err)
		}
	}
	for _, b := range [][]byte{{}, {0x00}, {0x7f}, {0x80}, {0x01, 0x02, 0x03}} {
		enc, err := EncodeToBytes(b)
		if err != nil {
			t.Fatal(err)
		}
		var dec []byte
		if err := DecodeBytes(enc, &dec); err != nil || !bytes.Equal(dec, b) {
			t.Fatalf("bytes %x round-trip: got %x, err %v", b, dec, err)
		}
	}
}

func TestRoundTripUint256(t *testing.T) {
	vals := []*uint256.Int{uint256.NewInt(0), uint256.NewInt(1), uint256.NewInt(1 << 40)}
	maxU256, _ := uint256.FromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	vals = append(vals, maxU256)
	for _, u := range vals {
		enc, err := EncodeToBytes(u)
		if err != nil {
			t.Fatal(err)
		}
		var dec uint256.Int
		if err := DecodeBytes(enc, &dec); err != nil {
			t.Fatal(err)
		}
		if dec.Cmp(u) != 0 {
			t.Fatalf("round-trip: got %v, want %v", &dec, u)
		}
	}
}

func TestDecodeErrorsOnNonCanonicalInput(t *testing.T) {
	cases := map[string][]byte{
		"truncated string":        {0x83, 0x64, 0x6f},
		"non-canonical size":      {0xb8, 0x01, 0x61},
		"leading zero integer":    {0x82, 0x00, 0x80},
		"single byte as 2-length": {0x81, 0x01},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var u uint64
			if err := DecodeBytes(input, &u); err == nil {
				t.Fatalf("%s: expected a decode error", name)
			}
		})
	}
}

func TestStreamDirectAndList(t *testing.T) {
	s := NewStream(bytes.NewReader([]byte{0x83, 0x64, 0x6f, 0x67}))
	kind, size, err := s.Kind()
	if err != nil || kind != String || size != 3 {
		t.Fatalf("Kind: got (%v, %d), err %v", kind, size, err)
	}
	b, err := s.Bytes()
	if err != nil || string(b) != "dog" {
		t.Fatalf("Bytes: got %q, err %v", b, err)
	}

	ls := NewStreamFromBytes([]byte{0xc8, 0x83, 0x63, 0x61, 0x74, 0x83, 0x64, 0x6f, 0x67})
	if _, err := ls.List(); err != nil {
		t.Fatal(err)
	}
	first, err := ls.Bytes()
	if err != nil || string(first) != "cat" {
		t.Fatalf("first: got %q, err %v", first, err)
	}
	if ls.AtListEnd() {
		t.Fatal("should not be at list end after one of two items")
	}
	second, err := ls.Bytes()
	if err != nil || string(second) != "dog" {
		t.Fatalf("second: got %q, err %v", second, err)
	}
	if !ls.AtListEnd() {
		t.Fatal("should be at list end after both items")
	}
	if err := ls.ListEnd(); err != nil {
		t.Fatal(err)
	}
}
