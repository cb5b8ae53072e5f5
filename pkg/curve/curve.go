// Package curve is the secp256k1 scalar and point facade (components C1
// and C2). All arithmetic is modulo the curve order q unless stated
// otherwise.
package curve

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrInvalidPoint is returned when a byte string does not decode to a
// point on the curve.
var ErrInvalidPoint = errors.New("curve: invalid point encoding")

// Order returns a copy of the secp256k1 group order q as a big.Int; the
// value itself is parsed once at package initialization.
func Order() *big.Int {
	return new(big.Int).Set(curveOrder)
}

var curveOrder = func() *big.Int {
	// secp256k1 group order.
	n, ok := new(big.Int).SetString(
		"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	if !ok {
		panic("curve: failed to parse secp256k1 order")
	}
	return n
}()

// orderModulus is the saferith.Modulus view of the curve order, used for
// converting between the Paillier plaintext ring and scalar field.
var orderModulus = saferith.ModulusFromBytes(curveOrder.Bytes())

// OrderModulus exposes the curve order as a saferith.Modulus, so values
// decrypted from Paillier ciphertexts (which live in Z_N) can be reduced
// into the scalar field without leaving the saferith representation.
func OrderModulus() *saferith.Modulus {
	return orderModulus
}

// Scalar is an element of Z_q. The zero value is the scalar 0, which is
// what NewScalar returns.
type Scalar struct {
	v secp256k1.ModNScalar
}

// NewScalar returns the scalar 0.
func NewScalar() *Scalar {
	return &Scalar{}
}

// Set copies other's value into s and returns s.
func (s *Scalar) Set(other *Scalar) *Scalar {
	s.v = other.v
	return s
}

// Clone returns an independent copy of s.
func (s *Scalar) Clone() *Scalar {
	return NewScalar().Set(s)
}

// SetNat reduces n modulo q and stores the result in s.
func (s *Scalar) SetNat(n *saferith.Nat) *Scalar {
	reduced := new(saferith.Nat).Mod(n, orderModulus)
	s.v.SetByteSlice(reduced.Bytes())
	return s
}

// Nat returns s's value as a saferith.Nat in [0, q).
func (s *Scalar) Nat() *saferith.Nat {
	b := s.v.Bytes()
	return new(saferith.Nat).SetBytes(b[:])
}

// SetBytes interprets b as a big-endian integer, reduces it mod q and
// stores it in s. It is only exact for b of at most 32 bytes: the
// underlying ModNScalar.SetByteSlice keeps only the first 32 bytes of a
// longer input (its high-order bytes) and drops the rest before reducing,
// so the result is not b mod q. Callers with a value that may exceed
// 32 bytes (e.g. a saferith.Nat coming out of Paillier) must go through
// SetNat instead, which reduces the full value mod q before storing.
func (s *Scalar) SetBytes(b []byte) *Scalar {
	s.v.SetByteSlice(b)
	return s
}

// Bytes returns the 32-byte big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	b := s.v.Bytes()
	out := make([]byte, len(b))
	copy(out, b[:])
	return out
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	return s.v.IsZero()
}

// Equal reports whether s and other represent the same value.
func (s *Scalar) Equal(other *Scalar) bool {
	return s.v.Equals(&other.v)
}

// Add sets s = s + other and returns s.
func (s *Scalar) Add(other *Scalar) *Scalar {
	s.v.Add(&other.v)
	return s
}

// Sub sets s = s - other and returns s.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	neg := other.Clone().Negate()
	s.v.Add(&neg.v)
	return s
}

// Mul sets s = s * other and returns s.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	s.v.Mul(&other.v)
	return s
}

// Negate sets s = -s and returns s.
func (s *Scalar) Negate() *Scalar {
	s.v.Negate()
	return s
}

// Invert sets s = s^-1 mod q and returns s. Inverting zero is a
// programmer error and panics, mirroring the precondition every caller in
// this module already enforces (non-zero nonces, non-zero deltas).
func (s *Scalar) Invert() *Scalar {
	if s.v.IsZero() {
		panic("curve: cannot invert zero scalar")
	}
	s.v.InverseNonConst()
	return s
}

// ActOnBase returns s*G, the scalar multiplication of s with the curve
// generator.
func (s *Scalar) ActOnBase() *Point {
	var j secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&s.v, &j)
	return &Point{j: j}
}

// Act returns s*p.
func (s *Scalar) Act(p *Point) *Point {
	var j secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&s.v, &p.j, &j)
	return &Point{j: j}
}

// Point is a secp256k1 group element.
type Point struct {
	j secp256k1.JacobianPoint
}

// NewIdentity returns the point at infinity.
func NewIdentity() *Point {
	p := &Point{}
	p.j.Z.SetInt(0)
	return p
}

// Generator returns the secp256k1 base point G.
func Generator() *Point {
	one := new(secp256k1.ModNScalar).SetInt(1)
	var j secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(one, &j)
	return &Point{j: j}
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	affine := p.j
	affine.ToAffine()
	return affine.X.IsZero() && affine.Y.IsZero()
}

// Add returns p + other.
func (p *Point) Add(other *Point) *Point {
	var j secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p.j, &other.j, &j)
	return &Point{j: j}
}

// Equal reports whether p and other represent the same affine point.
func (p *Point) Equal(other *Point) bool {
	a, b := p.j, other.j
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// XScalar returns the affine x-coordinate of p, reduced mod q (as required
// by ECDSA's r = x(R) mod q).
func (p *Point) XScalar() *Scalar {
	affine := p.j
	affine.ToAffine()
	xBytes := affine.X.Bytes()
	return NewScalar().SetBytes(xBytes[:])
}

// MarshalBinary encodes p in the 65-byte SEC1 uncompressed form specified
// in spec §6 ("curve points use the uncompressed 65-byte SEC1 form").
func (p *Point) MarshalBinary() ([]byte, error) {
	if p.IsIdentity() {
		return nil, errors.New("curve: cannot encode the identity point")
	}
	affine := p.j
	affine.ToAffine()
	pub := secp256k1.NewPublicKey(&affine.X, &affine.Y)
	return pub.SerializeUncompressed(), nil
}

// UnmarshalBinary decodes a 65-byte SEC1 uncompressed point into p.
func (p *Point) UnmarshalBinary(data []byte) error {
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return ErrInvalidPoint
	}
	pub.AsJacobian(&p.j)
	return nil
}

// SampleScalar draws a uniformly random scalar in [1, q-1] from rnd,
// rejecting zero as required by spec §4.1.
func SampleScalar(rnd io.Reader) *Scalar {
	if rnd == nil {
		rnd = rand.Reader
	}
	buf := make([]byte, 32)
	for {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			panic("curve: entropy source failed: " + err.Error())
		}
		s := NewScalar().SetBytes(buf)
		if !s.IsZero() {
			return s
		}
	}
}

// HashToScalar implements spec §4.3: digest(message) = SHA-256(message)
// interpreted big-endian and reduced mod q.
func HashToScalar(message []byte) *Scalar {
	sum := sha256.Sum256(message)
	return NewScalar().SetBytes(sum[:])
}
