// Package signing implements the per-participant GG18 signing state
// machine (component C5): five phases carrying a party from its own
// freshly sampled nonce through pairwise MtA exchanges to a final
// signature share, gated by the monotonic State chain of state.go.
//
// The design is grounded in two sources: the teacher's round1/round2/
// round3 embedding chain (protocols/lss/sign/round1.go, sign.go) for the
// phase-by-phase grouping of state (here groups of fields on one Party
// struct, not separate structs), and original_source/src/etude.rs's
// Player/GG18 structs for which per-peer vectors a party must carry and
// when they get allocated.
package signing

import (
	"errors"
	"fmt"

	"github.com/sigparty/gg18/internal/mta"
	"github.com/sigparty/gg18/pkg/curve"
	"github.com/sigparty/gg18/pkg/paillier"
)

// Commitment is the phase-1 broadcast: a party's public key share and its
// nonce commitment (spec §4.5, §6 "commit" payload).
type Commitment struct {
	UG    *curve.Point
	Gamma *curve.Point
}

// MtAInitPair bundles the two Alice-initiated messages a party sends a
// given peer in mta_round_1: its k-share paired against the peer's gamma,
// and its k-share paired against the peer's u. The symmetric gamma/u
// terms are produced by the PEER running the same call toward this party
// and this party installing Bob roles on the crossed slots in
// mta_round_2 (see the doc comment on MtARound2).
type MtAInitPair struct {
	Kr *mta.AliceInit
	Ku *mta.AliceInit
}

// MtARespPair bundles the two Bob responses produced by mta_round_2.
type MtARespPair struct {
	Kr *mta.BobResponse
	Ku *mta.BobResponse
}

// Party is one participant's state across an entire GG18 signing session.
// Index identifies this party's position (and peers' positions) in the
// fixed n-party group; positions are a purely local bookkeeping device,
// never sent over the wire.
type Party struct {
	index int
	n     int

	state State

	// Phase 1: own secrets and the aggregated commitments.
	u     *curve.Scalar // long-term key share
	k     *curve.Scalar // nonce share
	gamma *curve.Scalar // blinding share
	Gamma *curve.Point  // gamma*G, broadcast in phase 1

	commitments *slotVector[Commitment]
	y           *curve.Point // Y = sum_j u_j*G, known once phase 1 completes

	// Phase 2: four n-vectors of MtA parties, indexed by peer position.
	// kr[j] and ku[j] are Alicized toward peer j (this party's own k
	// paired against the peer's gamma and u respectively); rk[j] and
	// uk[j] are Bobized upon receiving the peer's symmetric kr/ku
	// messages, per the crossed mapping documented on MtARound2.
	kr []*mta.Party
	rk []*mta.Party
	ku []*mta.Party
	uk []*mta.Party

	mtaDone *slotVector[struct{}]

	// Phase 3: delta shares and their sum.
	delta  *curve.Scalar
	deltas *slotVector[*curve.Scalar]
	Delta  *curve.Scalar

	// Phase 4: local signature share.
	sigma *curve.Scalar
	R     *curve.Point
	r     *curve.Scalar
	si    *curve.Scalar

	// Phase 5: aggregated signature.
	sis *slotVector[*curve.Scalar]
	s   *curve.Scalar
}

// NewParty constructs a signing party at the given index within an
// n-party group, holding long-term key share u.
func NewParty(index, n int, u *curve.Scalar) *Party {
	return &Party{
		index: index,
		n:     n,
		state: Void,
		u:     u.Clone(),
	}
}

// Index returns this party's position within the group.
func (p *Party) Index() int { return p.index }

// State returns the party's current phase tag.
func (p *Party) State() State { return p.state }

// Begin samples this party's nonce share k and blinding share gamma,
// computes Gamma = gamma*G, and returns the Commitment to broadcast to
// every peer (spec §4.5 phase 1).
func (p *Party) Begin() (*Commitment, error) {
	if err := p.requireState(Void); err != nil {
		return nil, err
	}

	p.k = curve.SampleScalar(nil)
	p.gamma = curve.SampleScalar(nil)
	p.Gamma = p.gamma.ActOnBase()

	p.commitments = newSlotVector[Commitment](p.n, p.index)
	p.advance(AwaitingCommitments)

	return &Commitment{UG: p.u.ActOnBase(), Gamma: p.Gamma}, nil
}

// OnCommitment absorbs peer j's phase-1 broadcast. Once every peer's
// commitment has arrived, it computes Y = sum(u_j*G), allocates the four
// MtA vectors seeded per spec §4.5's table, and advances to the MtA
// phase.
func (p *Party) OnCommitment(j int, c Commitment) error {
	if err := p.requireState(AwaitingCommitments); err != nil {
		return err
	}
	if c.UG == nil || c.Gamma == nil {
		return fmt.Errorf("signing: nil commitment field from peer %d", j)
	}
	if err := p.commitments.fill(j, c); err != nil {
		return err
	}
	if !p.commitments.complete() {
		return nil
	}

	y := p.u.ActOnBase()
	for i := 0; i < p.n; i++ {
		if i == p.index {
			continue
		}
		y = y.Add(p.commitments.get(i).UG)
	}
	p.y = y

	p.kr = make([]*mta.Party, p.n)
	p.rk = make([]*mta.Party, p.n)
	p.ku = make([]*mta.Party, p.n)
	p.uk = make([]*mta.Party, p.n)
	for i := 0; i < p.n; i++ {
		if i == p.index {
			continue
		}
		p.kr[i] = mta.NewParty(p.k, mta.DefaultPaillierBits)
		p.rk[i] = mta.NewParty(p.gamma, mta.DefaultPaillierBits)
		p.ku[i] = mta.NewParty(p.k, mta.DefaultPaillierBits)
		p.uk[i] = mta.NewParty(p.u, mta.DefaultPaillierBits)
	}
	p.mtaDone = newSlotVector[struct{}](p.n, p.index)

	p.advance(MtA)
	return nil
}

// PublicKey returns the aggregated public key Y, available from the MtA
// phase onward.
func (p *Party) PublicKey() *curve.Point { return p.y }

// MtARound1 Alicizes this party's kr[j] and ku[j] instances and returns
// the resulting pair of init messages for peer j: spec §4.5's "each
// ordered pair must produce additive shares of both k_i*gamma_j and
// k_i*u_j" half of the four-term exchange.
func (p *Party) MtARound1(j int) (*MtAInitPair, error) {
	if err := p.requireState(MtA); err != nil {
		return nil, err
	}
	if j < 0 || j >= p.n || j == p.index {
		return nil, ErrUnknownPeer
	}

	krAlice, err := p.kr[j].Alicization()
	if err != nil {
		return nil, err
	}
	kuAlice, err := p.ku[j].Alicization()
	if err != nil {
		return nil, err
	}

	krMsg, err := krAlice.ToBob()
	if err != nil {
		return nil, err
	}
	kuMsg, err := kuAlice.ToBob()
	if err != nil {
		return nil, err
	}
	return &MtAInitPair{Kr: krMsg, Ku: kuMsg}, nil
}

// MtARound2 receives peer j's MtARound1 output and installs the Bob role
// on this party's crossed slots: peer j's Alice-kr message (carrying
// k_j) pairs with this party's rk[j] (carrying gamma_i), producing
// k_j*gamma_i = gamma_i*k_j; peer j's Alice-ku message (carrying k_j)
// pairs with uk[j] (carrying u_i), producing u_i*k_j. This is the
// "symmetric terms ... provided when i acts as Bob for j" half of spec
// §4.5.
func (p *Party) MtARound2(j int, peer *MtAInitPair) (*MtARespPair, error) {
	if err := p.requireState(MtA); err != nil {
		return nil, err
	}
	if j < 0 || j >= p.n || j == p.index {
		return nil, ErrUnknownPeer
	}
	if peer == nil || peer.Kr == nil || peer.Ku == nil {
		return nil, fmt.Errorf("signing: nil mta init pair from peer %d", j)
	}

	krResp, err := p.rk[j].Bobization().FromAlice(peer.Kr)
	if err != nil {
		return nil, err
	}
	kuResp, err := p.uk[j].Bobization().FromAlice(peer.Ku)
	if err != nil {
		return nil, err
	}
	return &MtARespPair{Kr: krResp, Ku: kuResp}, nil
}

// MtARound3 absorbs peer j's MtARound2 response into the kr[j]/ku[j]
// instances this party Alicized in MtARound1, completing both of this
// party's initiated exchanges with peer j. Once every peer has completed
// (i.e. both halves of the four-term exchange have finalized for every
// j), it computes delta_i and sigma_i and advances to AwaitingDeltas.
func (p *Party) MtARound3(j int, resp *MtARespPair) error {
	if err := p.requireState(MtA); err != nil {
		return err
	}
	if j < 0 || j >= p.n || j == p.index {
		return ErrUnknownPeer
	}
	if resp == nil || resp.Kr == nil || resp.Ku == nil {
		return fmt.Errorf("signing: nil mta resp pair from peer %d", j)
	}

	if err := p.kr[j].FromBob(resp.Kr); err != nil {
		if errors.Is(err, paillier.ErrDecryptionFailure) {
			return fmt.Errorf("%w: %w", ErrDecryption, err)
		}
		return err
	}
	if err := p.ku[j].FromBob(resp.Ku); err != nil {
		if errors.Is(err, paillier.ErrDecryptionFailure) {
			return fmt.Errorf("%w: %w", ErrDecryption, err)
		}
		return err
	}

	if err := p.mtaDone.fill(j, struct{}{}); err != nil {
		return err
	}
	if !p.mtaDone.complete() {
		return nil
	}

	delta := p.k.Clone().Mul(p.gamma)
	sigma := p.k.Clone().Mul(p.u)
	for i := 0; i < p.n; i++ {
		if i == p.index {
			continue
		}
		krShare, err := p.kr[i].Result()
		if err != nil {
			return err
		}
		rkShare, err := p.rk[i].Result()
		if err != nil {
			return err
		}
		kuShare, err := p.ku[i].Result()
		if err != nil {
			return err
		}
		ukShare, err := p.uk[i].Result()
		if err != nil {
			return err
		}
		delta.Add(krShare).Add(rkShare)
		sigma.Add(kuShare).Add(ukShare)
	}

	p.delta = delta
	p.sigma = sigma
	p.deltas = newSlotVector[*curve.Scalar](p.n, p.index)

	p.advance(AwaitingDeltas)
	return nil
}

// Delta returns this party's delta share, for broadcasting in phase 3.
func (p *Party) Delta() (*curve.Scalar, error) {
	if err := p.requireState(AwaitingDeltas); err != nil {
		return nil, err
	}
	return p.delta.Clone(), nil
}

// OnDelta absorbs peer j's delta share. Once every peer's share has
// arrived, it reconstructs Delta = sum(delta_j) and advances to
// LocalSigning (spec §4.5 phase 3: "delta is reconstructed in the clear;
// it reveals no secret because kappa/gamma never appear individually").
func (p *Party) OnDelta(j int, deltaJ *curve.Scalar) error {
	if err := p.requireState(AwaitingDeltas); err != nil {
		return err
	}
	if j < 0 || j >= p.n || j == p.index {
		return ErrUnknownPeer
	}
	if err := p.deltas.fill(j, deltaJ.Clone()); err != nil {
		return err
	}
	if !p.deltas.complete() {
		return nil
	}

	total := p.delta.Clone()
	for i := 0; i < p.n; i++ {
		if i == p.index {
			continue
		}
		total.Add(p.deltas.get(i))
	}
	p.Delta = total

	p.advance(LocalSigning)
	return nil
}

// SignLocal computes this party's signature share s_i for message,
// advancing to AwaitingSi. It requires every peer's Gamma commitment
// (retained from phase 1) and Delta (from phase 3) to already be known.
func (p *Party) SignLocal(message []byte) (*curve.Scalar, error) {
	if err := p.requireState(LocalSigning); err != nil {
		return nil, err
	}

	bigR := p.Gamma
	for i := 0; i < p.n; i++ {
		if i == p.index {
			continue
		}
		bigR = bigR.Add(p.commitments.get(i).Gamma)
	}
	bigR = p.Delta.Clone().Invert().Act(bigR)

	p.R = bigR
	p.r = bigR.XScalar()

	digest := curve.HashToScalar(message)
	si := digest.Clone().Mul(p.k)
	si.Add(p.r.Clone().Mul(p.sigma))
	p.si = si

	p.sis = newSlotVector[*curve.Scalar](p.n, p.index)

	p.advance(AwaitingSi)
	return si.Clone(), nil
}

// ReconstructedR returns the reconstructed nonce point R, available once
// SignLocal has run.
func (p *Party) ReconstructedR() *curve.Point { return p.R }

// Rscalar returns r = x(R) mod q, available once SignLocal has run.
func (p *Party) Rscalar() *curve.Scalar {
	if p.r == nil {
		return nil
	}
	return p.r.Clone()
}

// OnSi absorbs peer j's signature share. Once every peer's share has
// arrived, it sums them into the final scalar s and advances to
// Finalized (spec §4.5 phase 5).
func (p *Party) OnSi(j int, sj *curve.Scalar) error {
	if err := p.requireState(AwaitingSi); err != nil {
		return err
	}
	if j < 0 || j >= p.n || j == p.index {
		return ErrUnknownPeer
	}
	if err := p.sis.fill(j, sj.Clone()); err != nil {
		return err
	}
	if !p.sis.complete() {
		return nil
	}

	total := p.si.Clone()
	for i := 0; i < p.n; i++ {
		if i == p.index {
			continue
		}
		total.Add(p.sis.get(i))
	}
	p.s = total

	p.advance(Finalized)
	return nil
}

// Signature returns the finalized (r, s) pair. It returns ErrState if the
// party has not reached Finalized.
func (p *Party) Signature() (r, s *curve.Scalar, err error) {
	if err := p.requireState(Finalized); err != nil {
		return nil, nil, err
	}
	return p.r.Clone(), p.s.Clone(), nil
}
