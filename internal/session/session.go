// Package session derives a session-binding fingerprint from a GG18
// group's public parameters. It is entirely separate from the SHA-256
// message digest mandated by spec §4.3: that digest feeds the signature
// math directly, while this fingerprint is transport/audit bookkeeping
// a caller may use to confirm every party agrees on who's in the group
// and what message they're signing, before spending a round of network
// traffic on it.
package session

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"

	"github.com/sigparty/gg18/pkg/party"
)

// ID is a 32-byte session fingerprint.
type ID [32]byte

// Bind derives a session ID from the sorted set of participant IDs and
// the message to be signed. Any two honest parties that compute Bind
// with the same inputs agree on an identical ID; a single differing
// participant or byte of message changes every bit with overwhelming
// probability.
func Bind(ids []party.ID, message []byte) ID {
	sorted := party.Sorted(ids)

	h := sha3.New256()
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(sorted)))
	h.Write(lenBuf[:])
	for _, id := range sorted {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(id)))
		h.Write(lenBuf[:])
		h.Write([]byte(id))
	}
	transcript := h.Sum(nil)

	var out ID
	key := blake3.DeriveKey("gg18 signing session v1", append(transcript, message...))
	copy(out[:], key)
	return out
}
