package crypto

import (
	"errors"
	"math/big"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/scrollstateless/verifier/core/types"
)

// secp256k1N is the order of the secp256k1 curve, used for the Homestead
// low-s signature-malleability check.
var (
	secp256k1N     = gethcrypto.S256().Params().N
	secp256k1halfN = new(big.Int).Rsh(secp256k1N, 1)
)

// Ecrecover recovers the 65-byte uncompressed public key from a 32-byte
// hash and a 65-byte [R || S || V] signature, V in {0, 1}.
//
// The teacher repo's own crypto/secp256k1.go hand-rolls this with
// elliptic.P256() standing in for secp256k1 and openly admits ("TODO:
// Proper ecrecover requires secp256k1 curve ... not possible with the
// P256 placeholder curve") that it cannot recover a real key. Signature
// recovery is an out-of-scope pure-function collaborator here, so this
// delegates to the teacher's own genuine go-ethereum dependency instead
// of generalizing broken placeholder math.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, errors.New("crypto: hash must be 32 bytes")
	}
	if len(sig) != 65 {
		return nil, errors.New("crypto: signature must be 65 bytes [R || S || V]")
	}
	return gethcrypto.Ecrecover(hash, sig)
}

// RecoverSender recovers the sender address for a 32-byte signing hash and
// a 65-byte [R || S || V] signature.
func RecoverSender(hash, sig []byte) (types.Address, error) {
	pub, err := Ecrecover(hash, sig)
	if err != nil {
		return types.Address{}, err
	}
	if len(pub) == 0 || pub[0] != 0x04 {
		return types.Address{}, errors.New("crypto: invalid recovered public key")
	}
	addrHash := Keccak256(pub[1:])
	return types.BytesToAddress(addrHash[12:]), nil
}

// ValidateSignatureValues checks r, s, v for validity per Homestead rules.
// When homestead is true, s must lie in the lower half of the curve order
// (EIP-2), rejecting the malleable high-s counterpart.
func ValidateSignatureValues(v byte, r, s *big.Int, homestead bool) bool {
	if r == nil || s == nil {
		return false
	}
	if v > 1 {
		return false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	if homestead && s.Cmp(secp256k1halfN) > 0 {
		return false
	}
	return true
}
