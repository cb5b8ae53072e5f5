// Package mta implements the two-round, two-party Multiplicative-to-
// Additive subprotocol (component C4): Alice holds a, Bob holds b, and
// after one exchange Alice holds alpha and Bob holds beta with
// alpha + beta == a*b (mod q). It is the cryptographic atom every
// pairwise exchange in the signing party (C5) is built from.
package mta

import (
	"errors"

	"github.com/sigparty/gg18/pkg/curve"
	"github.com/sigparty/gg18/pkg/paillier"
)

// DefaultPaillierBits is the modulus size Alice generates for each MtA
// instance. spec §3 requires bit_len(N) >= 2048 and >= 2*bit_len(q)+1;
// secp256k1's q is 256 bits, so 2048 comfortably dominates both bounds.
const DefaultPaillierBits = 2048

// ErrWrongRole is returned when a role-specific method is called on a
// Party that has not transitioned into that role.
var ErrWrongRole = errors.New("mta: party is not in the required role")

// ErrNotFinalized is returned when Result is read before the party's role
// has absorbed its final message.
var ErrNotFinalized = errors.New("mta: result read before finalization")

// role tags which branch of the Alice/Bob union a Party currently
// occupies. Phase-tagged per spec §9: never collapse this into nullable
// fields on Party itself.
type role int

const (
	roleUninitialized role = iota
	roleAlice
	roleBob
)

// AliceInit is the first protocol message: Alice's encryption key and her
// encrypted input (spec §4.4 step 1, and the mta_init wire payload of
// spec §6).
type AliceInit struct {
	EK *paillier.PublicKey
	CA *paillier.Ciphertext
}

// BobResponse is the second protocol message: Bob's response ciphertext
// (spec §4.4 step 2, and the mta_resp wire payload of spec §6).
type BobResponse struct {
	CB *paillier.Ciphertext
}

// alice holds Alice-role state for one MtA instance.
type alice struct {
	ek  *paillier.PublicKey
	dk  *paillier.PrivateKey
	m   *curve.Scalar
	a   *curve.Scalar
	fin bool
}

// bob holds Bob-role state for one MtA instance.
type bob struct {
	m   *curve.Scalar
	a   *curve.Scalar
	fin bool
}

// Party is one participant's view of a single pairwise MtA exchange. A
// Party holds exactly one role for its lifetime after the first
// alicization/bobization call; calling the other installer discards any
// previous role state (spec §3 invariant).
type Party struct {
	bits int
	m    *curve.Scalar
	role role
	a    *alice
	b    *bob
}

// NewParty constructs an MtA participant holding secret input m. bits
// controls the Paillier modulus size Alice will generate; callers
// normally pass mta.DefaultPaillierBits.
func NewParty(m *curve.Scalar, bits int) *Party {
	if bits < paillier.MinBitLen {
		bits = paillier.MinBitLen
	}
	return &Party{bits: bits, m: m.Clone(), role: roleUninitialized}
}

// Secret returns the party's own input m.
func (p *Party) Secret() *curve.Scalar {
	return p.m.Clone()
}

// Alicization installs the Alice role, generating a fresh Paillier
// keypair, and returns a handle for driving that role.
func (p *Party) Alicization() (*Party, error) {
	ek, dk, err := paillier.KeyGen(p.bits)
	if err != nil {
		return nil, err
	}
	p.role = roleAlice
	p.a = &alice{ek: ek, dk: dk, m: p.m.Clone(), a: curve.NewScalar()}
	p.b = nil
	return p, nil
}

// Bobization installs the Bob role.
func (p *Party) Bobization() *Party {
	p.role = roleBob
	p.b = &bob{m: p.m.Clone(), a: curve.NewScalar()}
	p.a = nil
	return p
}

// IsAlice reports whether the party currently holds the Alice role.
func (p *Party) IsAlice() bool { return p.role == roleAlice }

// IsBob reports whether the party currently holds the Bob role.
func (p *Party) IsBob() bool { return p.role == roleBob }

// Finalized reports whether the current role has absorbed its final
// message and produced an additive output.
func (p *Party) Finalized() bool {
	switch p.role {
	case roleAlice:
		return p.a.fin
	case roleBob:
		return p.b.fin
	default:
		return false
	}
}

// Result returns the party's additive share a, defined only once
// Finalized reports true (spec §3: "a is defined only when fin is true").
func (p *Party) Result() (*curve.Scalar, error) {
	if !p.Finalized() {
		return nil, ErrNotFinalized
	}
	switch p.role {
	case roleAlice:
		return p.a.a.Clone(), nil
	case roleBob:
		return p.b.a.Clone(), nil
	default:
		return nil, ErrWrongRole
	}
}

// ToBob produces the Alice role's first message: spec §4.4 step 1.
func (p *Party) ToBob() (*AliceInit, error) {
	if p.role != roleAlice {
		return nil, ErrWrongRole
	}
	plaintext := p.a.m.Nat()
	ct, _, err := p.a.ek.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}
	return &AliceInit{EK: p.a.ek, CA: ct}, nil
}

// FromAlice is the Bob role's response to Alice's first message: spec
// §4.4 step 2. It samples beta' uniformly in [0, N), computes
// c_B = Enc(a)*b (+) Enc(beta'), sets Bob's output beta = -beta' mod q,
// and returns c_B for Alice.
func (p *Party) FromAlice(init *AliceInit) (*BobResponse, error) {
	if p.role != roleBob {
		return nil, ErrWrongRole
	}
	if init == nil || init.EK == nil || init.CA == nil {
		return nil, errors.New("mta: malformed alice message")
	}

	betaPrime, err := init.EK.SampleBelow()
	if err != nil {
		return nil, err
	}

	bNat := p.b.m.Nat()
	scaled := init.EK.Mul(init.CA, bNat)
	encBetaPrime, _, err := init.EK.Encrypt(betaPrime)
	if err != nil {
		return nil, err
	}
	cB := init.EK.Add(scaled, encBetaPrime)

	// betaPrime is a ~2048-bit value; it must be reduced mod q through
	// SetNat (which goes via saferith's Mod), not truncated through
	// SetBytes (which only looks at the first 32 bytes of its input).
	beta := curve.NewScalar().SetNat(betaPrime).Negate()

	p.b.a = beta
	p.b.fin = true

	return &BobResponse{CB: cB}, nil
}

// FromBob is the Alice role's final step: spec §4.4 step 3. It decrypts
// Bob's response and reduces the result mod q to obtain alpha. A
// malformed ciphertext is a protocol abort (spec §7, DecryptionFailure).
func (p *Party) FromBob(resp *BobResponse) error {
	if p.role != roleAlice {
		return ErrWrongRole
	}
	if resp == nil || resp.CB == nil {
		return paillier.ErrDecryptionFailure
	}

	plain, err := p.a.dk.Decrypt(resp.CB)
	if err != nil {
		return paillier.ErrDecryptionFailure
	}

	p.a.a = curve.NewScalar().SetNat(plain)
	p.a.fin = true
	return nil
}
