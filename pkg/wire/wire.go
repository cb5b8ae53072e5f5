// Package wire defines the CBOR-serializable message envelopes for spec
// §6's payload table. The in-process coordinator (coordinate) never
// serializes anything — it calls signing.Party methods directly — but any
// transport that carries these messages between real processes uses
// these types, the same way the teacher's pkg/protocol/handler.go wraps
// round messages in a cbor-tagged envelope before handing them to a
// network.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/sigparty/gg18/internal/mta"
	"github.com/sigparty/gg18/pkg/curve"
	"github.com/sigparty/gg18/protocols/signing"
)

// Kind identifies which payload an Envelope carries.
type Kind string

const (
	KindCommitment Kind = "commit"
	KindMtAInit    Kind = "mta_init"
	KindMtAResp    Kind = "mta_resp"
	KindDelta      Kind = "delta"
	KindSi         Kind = "si"
)

// Envelope wraps one protocol message with its session and routing
// metadata. From and To are party positions (not the party.ID type one
// layer up, which a real transport maps to a network address).
type Envelope struct {
	Session [32]byte
	From    int
	To      int
	Kind    Kind
	Payload []byte
}

// Marshal CBOR-encodes e.
func (e Envelope) Marshal() ([]byte, error) {
	return cbor.Marshal(e)
}

// Unmarshal decodes data into e.
func (e *Envelope) Unmarshal(data []byte) error {
	return cbor.Unmarshal(data, e)
}

// CommitmentPayload is the wire form of signing.Commitment: curve points
// encoded as 65-byte SEC1 uncompressed strings.
type CommitmentPayload struct {
	UG    []byte
	Gamma []byte
}

// EncodeCommitment serializes a signing.Commitment for transport.
func EncodeCommitment(c signing.Commitment) ([]byte, error) {
	ugBytes, err := c.UG.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wire: marshal u*G: %w", err)
	}
	gammaBytes, err := c.Gamma.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wire: marshal Gamma: %w", err)
	}
	return cbor.Marshal(CommitmentPayload{UG: ugBytes, Gamma: gammaBytes})
}

// DecodeCommitment reverses EncodeCommitment.
func DecodeCommitment(data []byte) (signing.Commitment, error) {
	var payload CommitmentPayload
	if err := cbor.Unmarshal(data, &payload); err != nil {
		return signing.Commitment{}, fmt.Errorf("wire: decode commitment: %w", err)
	}
	ug := &curve.Point{}
	if err := ug.UnmarshalBinary(payload.UG); err != nil {
		return signing.Commitment{}, fmt.Errorf("wire: decode u*G: %w", err)
	}
	gamma := &curve.Point{}
	if err := gamma.UnmarshalBinary(payload.Gamma); err != nil {
		return signing.Commitment{}, fmt.Errorf("wire: decode Gamma: %w", err)
	}
	return signing.Commitment{UG: ug, Gamma: gamma}, nil
}

// MtAInitPayload is the wire form of an mta.AliceInit.
type MtAInitPayload struct {
	PublicKey []byte
	Cipher    []byte
}

// EncodeMtAInit serializes an mta.AliceInit for transport.
func EncodeMtAInit(init *mta.AliceInit) ([]byte, error) {
	pkBytes, err := init.EK.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wire: marshal paillier key: %w", err)
	}
	ctBytes, err := init.CA.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wire: marshal ciphertext: %w", err)
	}
	return cbor.Marshal(MtAInitPayload{PublicKey: pkBytes, Cipher: ctBytes})
}

// MtARespPayload is the wire form of an mta.BobResponse.
type MtARespPayload struct {
	Cipher []byte
}

// EncodeMtAResp serializes an mta.BobResponse for transport.
func EncodeMtAResp(resp *mta.BobResponse) ([]byte, error) {
	ctBytes, err := resp.CB.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wire: marshal ciphertext: %w", err)
	}
	return cbor.Marshal(MtARespPayload{Cipher: ctBytes})
}

// ScalarPayload is the wire form of a curve.Scalar: its 32-byte
// big-endian encoding.
type ScalarPayload struct {
	Value []byte
}

// EncodeScalar serializes a curve.Scalar (used for delta and s_i
// payloads, spec §6).
func EncodeScalar(s *curve.Scalar) ([]byte, error) {
	return cbor.Marshal(ScalarPayload{Value: s.Bytes()})
}

// DecodeScalar reverses EncodeScalar.
func DecodeScalar(data []byte) (*curve.Scalar, error) {
	var payload ScalarPayload
	if err := cbor.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("wire: decode scalar: %w", err)
	}
	return curve.NewScalar().SetBytes(payload.Value), nil
}
