package curve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigparty/gg18/pkg/curve"
)

func TestScalarArithmeticRoundTrip(t *testing.T) {
	a := curve.SampleScalar(nil)
	b := curve.SampleScalar(nil)

	sum := a.Clone().Add(b)
	diff := sum.Clone().Sub(b)
	assert.True(t, diff.Equal(a), "(a+b)-b should equal a")

	product := a.Clone().Mul(b)
	inv := b.Clone().Invert()
	recovered := product.Clone().Mul(inv)
	assert.True(t, recovered.Equal(a), "(a*b)*b^-1 should equal a")
}

func TestScalarIsZero(t *testing.T) {
	zero := curve.NewScalar()
	assert.True(t, zero.IsZero())

	one := curve.NewScalar().SetBytes([]byte{1})
	assert.False(t, one.IsZero())
}

func TestSampleScalarNeverZero(t *testing.T) {
	for i := 0; i < 64; i++ {
		s := curve.SampleScalar(nil)
		assert.False(t, s.IsZero())
	}
}

func TestPointAddAndGenerator(t *testing.T) {
	g := curve.Generator()
	two := curve.NewScalar().SetBytes([]byte{2})
	doubled := two.ActOnBase()

	sum := g.Add(g)
	assert.True(t, sum.Equal(doubled), "G+G should equal 2*G")
}

func TestPointMarshalRoundTrip(t *testing.T) {
	s := curve.SampleScalar(nil)
	p := s.ActOnBase()

	data, err := p.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 65)

	var decoded curve.Point
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(t, p.Equal(&decoded))
}

func TestIdentityPointMarshalFails(t *testing.T) {
	id := curve.NewIdentity()
	_, err := id.MarshalBinary()
	assert.Error(t, err)
}

func TestInvalidPointEncoding(t *testing.T) {
	var p curve.Point
	err := p.UnmarshalBinary([]byte{0x00, 0x01, 0x02})
	assert.ErrorIs(t, err, curve.ErrInvalidPoint)
}

func TestHashToScalarDeterministic(t *testing.T) {
	m := []byte("OMER")
	a := curve.HashToScalar(m)
	b := curve.HashToScalar(m)
	assert.True(t, a.Equal(b))

	c := curve.HashToScalar([]byte("different"))
	assert.False(t, a.Equal(c))
}

func TestActIsConsistentWithActOnBase(t *testing.T) {
	s := curve.SampleScalar(nil)
	g := curve.Generator()
	assert.True(t, s.ActOnBase().Equal(s.Act(g)))
}
