// Package paillier implements the additively homomorphic Paillier
// cryptosystem used by the MtA subprotocol (component C3). Bignum
// arithmetic is done with github.com/cronokirby/saferith, the same
// library the teacher codebase uses for its scalar/config math.
package paillier

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

// MinBitLen is the minimum modulus bit length spec §3 requires:
// "implementations SHALL choose N with bit-length >= 2048".
const MinBitLen = 2048

// ErrDecryptionFailure is returned when a ciphertext does not decode to a
// valid plaintext under the given key (spec §7, DecryptionFailure).
var ErrDecryptionFailure = errors.New("paillier: decryption failure")

// PublicKey is the encryption half of a Paillier key pair.
type PublicKey struct {
	n       *saferith.Nat
	nSquare *saferith.Modulus
	nMod    *saferith.Modulus
}

// PrivateKey is the decryption half of a Paillier key pair, owned by the
// Alice role of one MtA instance.
type PrivateKey struct {
	pub    *PublicKey
	lambda *saferith.Nat // lcm(p-1, q-1)
	mu     *saferith.Nat // (L(g^lambda mod n^2))^-1 mod n
}

// Ciphertext is an opaque Paillier ciphertext (RawCiphertext in spec §3).
type Ciphertext struct {
	c *saferith.Nat
}

// KeyGen produces a fresh Paillier key pair with an n-bit modulus. A
// bitLen below MinBitLen is raised to MinBitLen; the caller (MtA's Alice
// role) is responsible for bitLen being at least 2*bitLen(q)+1 per spec
// §4.2, which KeyGen does not check.
func KeyGen(bitLen int) (*PublicKey, *PrivateKey, error) {
	if bitLen < MinBitLen {
		bitLen = MinBitLen
	}
	primeLen := bitLen / 2

	p, err := randPrime(primeLen)
	if err != nil {
		return nil, nil, err
	}
	q, err := randPrime(primeLen)
	if err != nil {
		return nil, nil, err
	}
	for p.Cmp(q) == 0 {
		q, err = randPrime(primeLen)
		if err != nil {
			return nil, nil, err
		}
	}

	n := new(big.Int).Mul(p, q)
	nSquare := new(big.Int).Mul(n, n)

	pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
	qMinus1 := new(big.Int).Sub(q, big.NewInt(1))
	gcd := new(big.Int).GCD(nil, nil, pMinus1, qMinus1)
	lambda := new(big.Int).Div(new(big.Int).Mul(pMinus1, qMinus1), gcd)

	// g = n+1 so that g^lambda mod n^2 = 1 + lambda*n and
	// L(g^lambda mod n^2) = lambda mod n, giving mu = lambda^-1 mod n
	// directly (the standard simplified key gen).
	mu := new(big.Int).ModInverse(lambda, n)
	if mu == nil {
		return nil, nil, errors.New("paillier: failed to invert lambda mod n")
	}

	nNat := new(saferith.Nat).SetBig(n, n.BitLen())
	nSquareNat := new(saferith.Nat).SetBig(nSquare, nSquare.BitLen())

	pub := &PublicKey{
		n:       nNat,
		nSquare: saferith.ModulusFromNat(nSquareNat),
		nMod:    saferith.ModulusFromNat(nNat),
	}
	priv := &PrivateKey{
		pub:    pub,
		lambda: new(saferith.Nat).SetBig(lambda, lambda.BitLen()),
		mu:     new(saferith.Nat).SetBig(mu, mu.BitLen()),
	}
	return pub, priv, nil
}

func randPrime(bits int) (*big.Int, error) {
	return rand.Prime(rand.Reader, bits)
}

// N returns the public modulus as a saferith.Nat.
func (pk *PublicKey) N() *saferith.Nat {
	return pk.n
}

// BitLen returns the bit length of the public modulus.
func (pk *PublicKey) BitLen() int {
	return pk.n.TrueLen()
}

// Encrypt encrypts the non-negative plaintext m < N, returning the
// ciphertext and the randomness used (callers that don't need the
// randomness, i.e. everyone outside of tests, may discard it).
func (pk *PublicKey) Encrypt(m *saferith.Nat) (*Ciphertext, *saferith.Nat, error) {
	r, err := sampleUnit(pk.n)
	if err != nil {
		return nil, nil, err
	}
	return pk.encryptWithRandomness(m, r), r, nil
}

func (pk *PublicKey) encryptWithRandomness(m, r *saferith.Nat) *Ciphertext {
	// c = (1 + m*N) * r^N mod N^2, the g = N+1 optimization of standard
	// Paillier encryption.
	one := new(saferith.Nat).SetUint64(1)
	mN := new(saferith.Nat).ModMul(m, pk.n, pk.nSquare)
	base := new(saferith.Nat).ModAdd(one, mN, pk.nSquare)

	rToN := new(saferith.Nat).Exp(r, pk.n, pk.nSquare)

	c := new(saferith.Nat).ModMul(base, rToN, pk.nSquare)
	return &Ciphertext{c: c}
}

// Add homomorphically adds two ciphertexts: Enc(a) (+) Enc(b) = Enc(a+b mod N).
func (pk *PublicKey) Add(a, b *Ciphertext) *Ciphertext {
	c := new(saferith.Nat).ModMul(a.c, b.c, pk.nSquare)
	return &Ciphertext{c: c}
}

// Mul homomorphically multiplies a ciphertext by a cleartext scalar:
// Enc(a) (x) k = Enc(a*k mod N).
func (pk *PublicKey) Mul(a *Ciphertext, k *saferith.Nat) *Ciphertext {
	c := new(saferith.Nat).Exp(a.c, k, pk.nSquare)
	return &Ciphertext{c: c}
}

// Decrypt recovers the plaintext m in [0, N) from a ciphertext. It returns
// ErrDecryptionFailure if c is out of the valid range [1, N^2) or is not a
// unit mod N (both necessary conditions for c to be a well-formed Paillier
// ciphertext). This rejects ciphertexts that are malformed or corrupted
// badly enough to leave that range or that coprimality; it does not, and
// textbook Paillier cannot, detect every single-byte mutation of an
// otherwise well-formed ciphertext, since such a mutation almost always
// lands on another valid-looking (but wrong) ciphertext rather than an
// invalid one. See DESIGN.md's Open Questions for this boundary.
func (sk *PrivateKey) Decrypt(c *Ciphertext) (*saferith.Nat, error) {
	if c == nil || c.c == nil {
		return nil, ErrDecryptionFailure
	}

	nBig := new(big.Int).SetBytes(sk.pub.n.Bytes())
	nSquareBig := new(big.Int).Mul(nBig, nBig)
	cBig := new(big.Int).SetBytes(c.c.Bytes())
	if cBig.Sign() <= 0 || cBig.Cmp(nSquareBig) >= 0 {
		return nil, ErrDecryptionFailure
	}
	if new(big.Int).GCD(nil, nil, cBig, nBig).Cmp(big.NewInt(1)) != 0 {
		return nil, ErrDecryptionFailure
	}

	cToLambda := new(saferith.Nat).Exp(c.c, sk.lambda, sk.pub.nSquare)
	l := lFunction(cToLambda, sk.pub.n)
	m := new(saferith.Nat).ModMul(l, sk.mu, sk.pub.nMod)
	return m, nil
}

// lFunction computes L(x) = (x-1)/n for x congruent to 1 mod n, as used in
// the standard Paillier decryption formula with g = n+1.
func lFunction(x *saferith.Nat, n *saferith.Nat) *saferith.Nat {
	xBig := new(big.Int).SetBytes(x.Bytes())
	nBig := new(big.Int).SetBytes(n.Bytes())
	xMinus1 := new(big.Int).Sub(xBig, big.NewInt(1))
	l := new(big.Int).Div(xMinus1, nBig)
	return new(saferith.Nat).SetBig(l, l.BitLen())
}

// sampleUnit draws a uniformly random element of Z_N^*, approximated, as
// is conventional, by a plain uniform sample in [1, N): only zero is
// rejected, and the negligible-probability non-unit draws are not.
func sampleUnit(n *saferith.Nat) (*saferith.Nat, error) {
	nBig := new(big.Int).SetBytes(n.Bytes())
	for {
		r, err := randBigInt(rand.Reader, nBig)
		if err != nil {
			return nil, err
		}
		if r.Sign() != 0 {
			return new(saferith.Nat).SetBig(r, r.BitLen()), nil
		}
	}
}

func randBigInt(rnd io.Reader, max *big.Int) (*big.Int, error) {
	return rand.Int(rnd, max)
}

// SampleBelow draws a value uniformly from [0, n) using the public
// modulus's bit length, used by MtA's Bob role to pick beta' (spec
// §4.4 step 2).
func (pk *PublicKey) SampleBelow() (*saferith.Nat, error) {
	nBig := new(big.Int).SetBytes(pk.n.Bytes())
	r, err := randBigInt(rand.Reader, nBig)
	if err != nil {
		return nil, err
	}
	return new(saferith.Nat).SetBig(r, r.BitLen()), nil
}

// MarshalBinary encodes the ciphertext as a big-endian base-256 integer,
// per spec §6.
func (c *Ciphertext) MarshalBinary() ([]byte, error) {
	return c.c.Bytes(), nil
}

// UnmarshalBinary decodes a big-endian base-256 integer into c.
func (c *Ciphertext) UnmarshalBinary(data []byte) error {
	c.c = new(saferith.Nat).SetBytes(data)
	return nil
}

// MarshalBinary encodes the public key's modulus as big-endian base-256,
// per spec §6 ("Ciphertexts and keys use big-endian base-2^8 unsigned-
// integer encoding").
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return pk.n.Bytes(), nil
}

// PublicKeyFromBytes reconstructs a public key from its big-endian
// modulus encoding.
func PublicKeyFromBytes(data []byte) *PublicKey {
	n := new(saferith.Nat).SetBytes(data)
	nBig := new(big.Int).SetBytes(data)
	nSquare := new(big.Int).Mul(nBig, nBig)
	nSquareNat := new(saferith.Nat).SetBig(nSquare, nSquare.BitLen())
	return &PublicKey{
		n:       n,
		nSquare: saferith.ModulusFromNat(nSquareNat),
		nMod:    saferith.ModulusFromNat(n),
	}
}
