package signing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigparty/gg18/pkg/curve"
	"github.com/sigparty/gg18/pkg/ecdsa"
	"github.com/sigparty/gg18/protocols/signing"
)

// runSession drives n freshly constructed parties through every phase by
// hand, mirroring what coordinate.Sign does, so these tests can exercise
// the Party API directly without depending on the coordinate package.
func runSession(t *testing.T, n int, message []byte) ([]*signing.Party, ecdsa.Signature) {
	t.Helper()

	parties := make([]*signing.Party, n)
	for i := 0; i < n; i++ {
		parties[i] = signing.NewParty(i, n, curve.SampleScalar(nil))
	}

	commitments := make([]*signing.Commitment, n)
	for i := 0; i < n; i++ {
		c, err := parties[i].Begin()
		require.NoError(t, err)
		commitments[i] = c
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			require.NoError(t, parties[i].OnCommitment(j, *commitments[j]))
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			initI, err := parties[i].MtARound1(j)
			require.NoError(t, err)
			initJ, err := parties[j].MtARound1(i)
			require.NoError(t, err)

			respJ, err := parties[j].MtARound2(i, initI)
			require.NoError(t, err)
			respI, err := parties[i].MtARound2(j, initJ)
			require.NoError(t, err)

			require.NoError(t, parties[i].MtARound3(j, respJ))
			require.NoError(t, parties[j].MtARound3(i, respI))
		}
	}

	deltas := make([]*curve.Scalar, n)
	for i := 0; i < n; i++ {
		d, err := parties[i].Delta()
		require.NoError(t, err)
		deltas[i] = d
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			require.NoError(t, parties[i].OnDelta(j, deltas[j]))
		}
	}

	sis := make([]*curve.Scalar, n)
	for i := 0; i < n; i++ {
		si, err := parties[i].SignLocal(message)
		require.NoError(t, err)
		sis[i] = si
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			require.NoError(t, parties[i].OnSi(j, sis[j]))
		}
	}

	r, s, err := parties[0].Signature()
	require.NoError(t, err)
	return parties, ecdsa.Signature{R: r, S: s}.Normalize()
}

func TestHappyPathProducesVerifiableSignature(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		parties, sig := runSession(t, n, []byte("OMER"))
		assert.True(t, ecdsa.Verify(parties[0].PublicKey(), []byte("OMER"), sig))

		for i, p := range parties {
			assert.Equal(t, signing.Finalized, p.State(), "party %d should be finalized", i)
			r, s, err := p.Signature()
			require.NoError(t, err)
			assert.True(t, r.Equal(sig.R))
			// Every party's raw s_i sum agrees up to the low-S flip Normalize
			// may have applied once at the very end.
			assert.True(t, s.Equal(sig.S) || s.Clone().Negate().Equal(sig.S))
		}
	}
}

func TestAllPartiesAgreeOnPublicKey(t *testing.T) {
	parties, _ := runSession(t, 4, []byte("agreement"))
	for i := 1; i < len(parties); i++ {
		assert.True(t, parties[0].PublicKey().Equal(parties[i].PublicKey()))
	}
}

func TestDuplicateCommitmentRejected(t *testing.T) {
	n := 3
	parties := make([]*signing.Party, n)
	commitments := make([]*signing.Commitment, n)
	for i := 0; i < n; i++ {
		parties[i] = signing.NewParty(i, n, curve.SampleScalar(nil))
		c, err := parties[i].Begin()
		require.NoError(t, err)
		commitments[i] = c
	}

	require.NoError(t, parties[0].OnCommitment(1, *commitments[1]))
	err := parties[0].OnCommitment(1, *commitments[1])
	assert.ErrorIs(t, err, signing.ErrSlotAlreadyFilled)
}

func TestSelfAndOutOfRangePeerIndexRejected(t *testing.T) {
	n := 3
	p := signing.NewParty(0, n, curve.SampleScalar(nil))
	_, err := p.Begin()
	require.NoError(t, err)

	err = p.OnCommitment(0, signing.Commitment{UG: curve.Generator(), Gamma: curve.Generator()})
	assert.ErrorIs(t, err, signing.ErrUnknownPeer)

	err = p.OnCommitment(99, signing.Commitment{UG: curve.Generator(), Gamma: curve.Generator()})
	assert.ErrorIs(t, err, signing.ErrUnknownPeer)
}

func TestSignLocalBeforeDeltaCompleteFails(t *testing.T) {
	n := 3
	parties := make([]*signing.Party, n)
	commitments := make([]*signing.Commitment, n)
	for i := 0; i < n; i++ {
		parties[i] = signing.NewParty(i, n, curve.SampleScalar(nil))
		c, err := parties[i].Begin()
		require.NoError(t, err)
		commitments[i] = c
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			require.NoError(t, parties[i].OnCommitment(j, *commitments[j]))
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			initI, err := parties[i].MtARound1(j)
			require.NoError(t, err)
			initJ, err := parties[j].MtARound1(i)
			require.NoError(t, err)
			respJ, err := parties[j].MtARound2(i, initI)
			require.NoError(t, err)
			respI, err := parties[i].MtARound2(j, initJ)
			require.NoError(t, err)
			require.NoError(t, parties[i].MtARound3(j, respJ))
			require.NoError(t, parties[j].MtARound3(i, respI))
		}
	}

	// Party 0 has its own delta ready but has not yet absorbed every
	// peer's delta broadcast: advancing straight to SignLocal must fail.
	_, err := parties[0].SignLocal([]byte("too early"))
	assert.ErrorIs(t, err, signing.ErrState)
}

func TestOperationInWrongPhaseFails(t *testing.T) {
	p := signing.NewParty(0, 3, curve.SampleScalar(nil))
	_, err := p.MtARound1(1)
	assert.ErrorIs(t, err, signing.ErrState)

	_, err = p.Delta()
	assert.ErrorIs(t, err, signing.ErrState)

	err = p.OnDelta(1, curve.NewScalar())
	assert.ErrorIs(t, err, signing.ErrState)

	_, _, err = p.Signature()
	assert.ErrorIs(t, err, signing.ErrState)
}

func TestDifferentMessagesProduceDifferentSignatures(t *testing.T) {
	_, sigA := runSession(t, 3, []byte("message-a"))
	_, sigB := runSession(t, 3, []byte("message-b"))
	assert.False(t, sigA.R.Equal(sigB.R) && sigA.S.Equal(sigB.S))
}
