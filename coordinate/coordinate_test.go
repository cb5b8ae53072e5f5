package coordinate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigparty/gg18/coordinate"
	"github.com/sigparty/gg18/pkg/ecdsa"
	"github.com/sigparty/gg18/protocols/signing"
)

func TestSignTwoParty(t *testing.T) {
	parties := newGroup(2)
	sig, err := coordinate.Sign(context.Background(), parties, []byte("two party"))
	require.NoError(t, err)
	assert.True(t, ecdsa.Verify(parties[0].PublicKey(), []byte("two party"), sig))
}

func TestSignSevenParty(t *testing.T) {
	parties := newGroup(7)
	sig, err := coordinate.Sign(context.Background(), parties, []byte("seven party"))
	require.NoError(t, err)
	assert.True(t, ecdsa.Verify(parties[0].PublicKey(), []byte("seven party"), sig))
}

func TestSignPropagatesPartyErrors(t *testing.T) {
	parties := newGroup(3)
	// Drive party 0 out of Void before handing the slice to the
	// coordinator, so its first Begin() call is rejected.
	_, err := parties[0].Begin()
	require.NoError(t, err)

	_, err = coordinate.Sign(context.Background(), parties, []byte("x"))
	assert.ErrorIs(t, err, signing.ErrState)
}

func TestDistinctSessionsProduceDistinctKeys(t *testing.T) {
	a := newGroup(3)
	b := newGroup(3)

	sigA, err := coordinate.Sign(context.Background(), a, []byte("m"))
	require.NoError(t, err)
	sigB, err := coordinate.Sign(context.Background(), b, []byte("m"))
	require.NoError(t, err)

	assert.False(t, a[0].PublicKey().Equal(b[0].PublicKey()))
	assert.False(t, sigA.R.Equal(sigB.R))
}

func TestEveryPartyFinalizes(t *testing.T) {
	parties := newGroup(5)
	_, err := coordinate.Sign(context.Background(), parties, []byte("finalize"))
	require.NoError(t, err)

	for i, p := range parties {
		assert.Equal(t, signing.Finalized, p.State(), "party %d", i)
	}
}
