// Package ecdsa verifies GG18 signature outputs against the standard
// secp256k1 ECDSA equation (component C7). It never handles a private
// key; it only checks what the signing protocol in protocols/signing
// produces.
package ecdsa

import (
	"math/big"

	"github.com/sigparty/gg18/pkg/curve"
)

// Signature is a finalized (r, s) pair. Normalize canonicalizes it to
// low-S form (spec §4.7's "implementations SHOULD normalize s to its
// lower-order representative").
type Signature struct {
	R *curve.Scalar
	S *curve.Scalar
}

// Normalize returns a copy of sig with S replaced by min(S, q-S), the
// low-S canonical form most ECDSA verifiers require. Verify in this
// package accepts both forms.
func (sig Signature) Normalize() Signature {
	halfOrder := new(big.Int).Rsh(curve.Order(), 1)
	sBig := new(big.Int).SetBytes(sig.S.Bytes())
	if sBig.Cmp(halfOrder) <= 0 {
		return sig
	}
	negS := curve.NewScalar().Set(sig.S).Negate()
	return Signature{R: sig.R, S: negS}
}

// Verify checks that sig is a valid ECDSA signature over message under
// public key y, per spec §4.5: R' = (digest/s)*G + (r/s)*Y, valid iff
// x(R') mod q == r.
func Verify(y *curve.Point, message []byte, sig Signature) bool {
	if sig.R == nil || sig.S == nil || sig.R.IsZero() || sig.S.IsZero() {
		return false
	}

	sInv := curve.NewScalar().Set(sig.S).Invert()
	digest := curve.HashToScalar(message)

	u1 := curve.NewScalar().Set(digest).Mul(sInv)
	u2 := curve.NewScalar().Set(sig.R).Mul(sInv)

	rPrime := u1.ActOnBase().Add(u2.Act(y))
	if rPrime.IsIdentity() {
		return false
	}

	return rPrime.XScalar().Equal(sig.R)
}
