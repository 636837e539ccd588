package keyring

import (
	"encoding/binary"

	"github.com/iotaledger/iota.go/trinary"
	"github.com/mamkit/mamkit/pkg/tritbytes"
	"github.com/pkg/errors"
)

// Record sizes in bytes, trits are stored one per byte.
const (
	PublicKeySize = 243

	ChannelIDSize  = PublicKeySize
	EndpointIDSize = PublicKeySize
	EndpointSize   = ChannelIDSize + EndpointIDSize

	PSKIDSize  = 81
	PSKKeySize = 243
	PSKSize    = PSKIDSize + PSKKeySize

	NTRUPublicKeySize = 9216
	NTRUSecretSize    = 1024
	PolyN             = 1024
	// NTRUSecretKeySize includes the associated public key and
	// the polynomial f as PolyN little-endian int16 coefficients.
	NTRUSecretKeySize = NTRUPublicKeySize + NTRUSecretSize + 2*PolyN

	MessageIDSize    = 63
	MessageOrderSize = 18
	SpongeStateSize  = 729
	ReadContextSize  = PublicKeySize + MessageOrderSize + SpongeStateSize
)

type (
	// PublicKey is a channel or endpoint public key.
	PublicKey []byte

	// Endpoint is a channel ID followed by an endpoint ID.
	Endpoint []byte

	// PSK is a pre-shared key ID followed by the key.
	PSK []byte

	NTRUPublicKey []byte

	// NTRUSecretKey is the public key, the secret key
	// and the polynomial f.
	NTRUSecretKey []byte

	MessageID []byte

	// ReadContext is the channel public key, the message order
	// and the sponge state of a message being read.
	ReadContext []byte
)

// ErrRecord is wrapped by all errors returned by record constructors.
var ErrRecord = errors.New("invalid record")

// record concatenates the given trit sequences validating each one.
func record(name string, parts ...field) ([]byte, error) {
	size := 0
	for _, p := range parts {
		size += p.size
	}
	r := make([]byte, 0, size)
	for _, p := range parts {
		if len(p.trits) != p.size {
			return nil, errors.Wrapf(
				ErrRecord, "%s %s: got %d trits, expected %d",
				name, p.name, len(p.trits), p.size,
			)
		}
		if err := trinary.ValidTrits(p.trits); err != nil {
			return nil, errors.Wrapf(
				ErrRecord, "%s %s: %s", name, p.name, err,
			)
		}
		r = tritbytes.Encode(r, p.trits)
	}
	return r, nil
}

type field struct {
	name  string
	trits trinary.Trits
	size  int
}

func NewPublicKey(key trinary.Trits) (PublicKey, error) {
	return record("public key", field{"key", key, PublicKeySize})
}

func NewEndpoint(channelID, endpointID trinary.Trits) (Endpoint, error) {
	return record("endpoint",
		field{"channel id", channelID, ChannelIDSize},
		field{"endpoint id", endpointID, EndpointIDSize},
	)
}

func NewPSK(id, key trinary.Trits) (PSK, error) {
	return record("psk",
		field{"id", id, PSKIDSize},
		field{"key", key, PSKKeySize},
	)
}

func NewNTRUPublicKey(key trinary.Trits) (NTRUPublicKey, error) {
	return record("ntru public key", field{"key", key, NTRUPublicKeySize})
}

// NewNTRUSecretKey requires len(f) == PolyN.
func NewNTRUSecretKey(
	publicKey, secretKey trinary.Trits,
	f []int16,
) (NTRUSecretKey, error) {
	if len(f) != PolyN {
		return nil, errors.Wrapf(
			ErrRecord, "ntru secret key f: got %d coefficients, expected %d",
			len(f), PolyN,
		)
	}
	r, err := record("ntru secret key",
		field{"public key", publicKey, NTRUPublicKeySize},
		field{"secret key", secretKey, NTRUSecretSize},
	)
	if err != nil {
		return nil, err
	}
	r = append(r, make([]byte, 2*PolyN)...)
	p := r[NTRUPublicKeySize+NTRUSecretSize:]
	for i, c := range f {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(c))
	}
	return r, nil
}

func NewMessageID(id trinary.Trits) (MessageID, error) {
	return record("message id", field{"id", id, MessageIDSize})
}

func NewReadContext(
	channelPK, order, spongeState trinary.Trits,
) (ReadContext, error) {
	return record("read context",
		field{"channel public key", channelPK, PublicKeySize},
		field{"order", order, MessageOrderSize},
		field{"sponge state", spongeState, SpongeStateSize},
	)
}

func (e Endpoint) ChannelID() []byte  { return e[:ChannelIDSize] }
func (e Endpoint) EndpointID() []byte { return e[ChannelIDSize:] }

func (p PSK) ID() []byte  { return p[:PSKIDSize] }
func (p PSK) Key() []byte { return p[PSKIDSize:] }

func (k NTRUSecretKey) PublicKey() NTRUPublicKey {
	return NTRUPublicKey(k[:NTRUPublicKeySize])
}

// F decodes the polynomial coefficients.
func (k NTRUSecretKey) F() []int16 {
	p := k[NTRUPublicKeySize+NTRUSecretSize:]
	f := make([]int16, PolyN)
	for i := range f {
		f[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}
	return f
}
