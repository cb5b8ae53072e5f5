// Package coordinate implements the in-process synchronous driver
// (component C6) that carries a fixed set of signing.Party instances
// through a full GG18 session. It is not a network transport: every
// "send" is a direct method call, and every phase is a barrier, matching
// the teacher's MultiHandler loop (pkg/protocol/handler.go) collapsed to
// a single process.
package coordinate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sigparty/gg18/pkg/curve"
	"github.com/sigparty/gg18/pkg/ecdsa"
	"github.com/sigparty/gg18/protocols/signing"
)

// Sign drives parties (already constructed with their key shares via
// signing.NewParty) through a complete session over message, returning
// the aggregated, low-S-normalized signature, or signing.ErrVerification
// if that signature does not verify under the group's aggregated public
// key. Phase 1, phase 3, and
// phase 5's broadcast steps fan out across parties with
// golang.org/x/sync/errgroup since they touch disjoint state; phase 2's
// pairwise MtA exchange is driven pair-by-pair in sequence because each
// pair mutates per-peer slots on both endpoints it shares with other
// pairs.
func Sign(ctx context.Context, parties []*signing.Party, message []byte) (ecdsa.Signature, error) {
	n := len(parties)

	commitments := make([]*signing.Commitment, n)
	if err := fanOut(ctx, n, func(i int) error {
		c, err := parties[i].Begin()
		if err != nil {
			return fmt.Errorf("party %d begin: %w", i, err)
		}
		commitments[i] = c
		return nil
	}); err != nil {
		return ecdsa.Signature{}, err
	}

	if err := fanOut(ctx, n, func(i int) error {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			if err := parties[i].OnCommitment(j, *commitments[j]); err != nil {
				return fmt.Errorf("party %d on_commitment(%d): %w", i, j, err)
			}
		}
		return nil
	}); err != nil {
		return ecdsa.Signature{}, err
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if err := exchangeMtA(parties, i, j); err != nil {
				return ecdsa.Signature{}, err
			}
		}
	}

	deltas := make([]*curve.Scalar, n)
	if err := fanOut(ctx, n, func(i int) error {
		d, err := parties[i].Delta()
		if err != nil {
			return fmt.Errorf("party %d delta: %w", i, err)
		}
		deltas[i] = d
		return nil
	}); err != nil {
		return ecdsa.Signature{}, err
	}

	if err := fanOut(ctx, n, func(i int) error {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			if err := parties[i].OnDelta(j, deltas[j]); err != nil {
				return fmt.Errorf("party %d on_delta(%d): %w", i, j, err)
			}
		}
		return nil
	}); err != nil {
		return ecdsa.Signature{}, err
	}

	sis := make([]*curve.Scalar, n)
	if err := fanOut(ctx, n, func(i int) error {
		si, err := parties[i].SignLocal(message)
		if err != nil {
			return fmt.Errorf("party %d sign_local: %w", i, err)
		}
		sis[i] = si
		return nil
	}); err != nil {
		return ecdsa.Signature{}, err
	}

	if err := fanOut(ctx, n, func(i int) error {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			if err := parties[i].OnSi(j, sis[j]); err != nil {
				return fmt.Errorf("party %d on_si(%d): %w", i, j, err)
			}
		}
		return nil
	}); err != nil {
		return ecdsa.Signature{}, err
	}

	r, s, err := parties[0].Signature()
	if err != nil {
		return ecdsa.Signature{}, err
	}
	sig := ecdsa.Signature{R: r, S: s}.Normalize()
	if !ecdsa.Verify(parties[0].PublicKey(), message, sig) {
		return ecdsa.Signature{}, signing.ErrVerification
	}
	return sig, nil
}

// exchangeMtA runs the two-round MtA exchange between parties i and j,
// completing all four bilinear terms the unordered pair owes the global
// delta/sigma sums (spec §4.5).
func exchangeMtA(parties []*signing.Party, i, j int) error {
	initI, err := parties[i].MtARound1(j)
	if err != nil {
		return fmt.Errorf("party %d mta_round_1(%d): %w", i, j, err)
	}
	initJ, err := parties[j].MtARound1(i)
	if err != nil {
		return fmt.Errorf("party %d mta_round_1(%d): %w", j, i, err)
	}

	respJ, err := parties[j].MtARound2(i, initI)
	if err != nil {
		return fmt.Errorf("party %d mta_round_2(%d): %w", j, i, err)
	}
	respI, err := parties[i].MtARound2(j, initJ)
	if err != nil {
		return fmt.Errorf("party %d mta_round_2(%d): %w", i, j, err)
	}

	if err := parties[i].MtARound3(j, respJ); err != nil {
		return fmt.Errorf("party %d mta_round_3(%d): %w", i, j, err)
	}
	if err := parties[j].MtARound3(i, respI); err != nil {
		return fmt.Errorf("party %d mta_round_3(%d): %w", j, i, err)
	}
	return nil
}

// fanOut runs fn(0..n-1) concurrently, returning the first error (if any)
// after every goroutine has finished. It preserves the barrier semantics
// of a plain sequential loop: callers never observe partial completion.
func fanOut(ctx context.Context, n int, fn func(i int) error) error {
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}
