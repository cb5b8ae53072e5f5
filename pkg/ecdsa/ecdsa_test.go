package ecdsa_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigparty/gg18/pkg/curve"
	"github.com/sigparty/gg18/pkg/ecdsa"
)

func sign(t *testing.T, priv *curve.Scalar, message []byte) ecdsa.Signature {
	t.Helper()
	k := curve.SampleScalar(nil)
	r := k.ActOnBase().XScalar()
	digest := curve.HashToScalar(message)

	kInv := k.Clone().Invert()
	s := digest.Clone().Add(r.Clone().Mul(priv))
	s.Mul(kInv)

	return ecdsa.Signature{R: r, S: s}
}

func TestVerifyValidSignature(t *testing.T) {
	priv := curve.SampleScalar(nil)
	pub := priv.ActOnBase()
	message := []byte("OMER")

	sig := sign(t, priv, message).Normalize()
	assert.True(t, ecdsa.Verify(pub, message, sig))
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	priv := curve.SampleScalar(nil)
	pub := priv.ActOnBase()

	sig := sign(t, priv, []byte("OMER")).Normalize()
	assert.False(t, ecdsa.Verify(pub, []byte("tampered"), sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	priv := curve.SampleScalar(nil)
	other := curve.SampleScalar(nil).ActOnBase()
	message := []byte("OMER")

	sig := sign(t, priv, message).Normalize()
	assert.False(t, ecdsa.Verify(other, message, sig))
}

func TestVerifyRejectsZeroComponents(t *testing.T) {
	priv := curve.SampleScalar(nil)
	pub := priv.ActOnBase()

	assert.False(t, ecdsa.Verify(pub, []byte("x"), ecdsa.Signature{
		R: curve.NewScalar(),
		S: curve.SampleScalar(nil),
	}))
	assert.False(t, ecdsa.Verify(pub, []byte("x"), ecdsa.Signature{
		R: curve.SampleScalar(nil),
		S: curve.NewScalar(),
	}))
}

func TestNormalizeProducesLowS(t *testing.T) {
	priv := curve.SampleScalar(nil)
	message := []byte("Miku-san maji tenshi!")
	sig := sign(t, priv, message)
	normalized := sig.Normalize()
	assert.True(t, ecdsa.Verify(priv.ActOnBase(), message, normalized))

	halfOrder := new(big.Int).Rsh(curve.Order(), 1)
	assert.True(t, new(big.Int).SetBytes(normalized.S.Bytes()).Cmp(halfOrder) <= 0, "normalized s should be at most q/2")
}
