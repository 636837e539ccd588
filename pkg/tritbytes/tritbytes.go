// Package tritbytes stores trits one per byte, the layout keyring
// records use. Conversion between trytes and trits is left to
// github.com/iotaledger/iota.go/trinary.
package tritbytes

import (
	"github.com/iotaledger/iota.go/trinary"
	"github.com/pkg/errors"
)

var (
	ErrInvalidTrits  = errors.New("invalid trits")
	ErrInvalidTrytes = errors.New("invalid trytes")
)

// Encode appends t to dst storing one trit per byte.
// t isn't validated.
func Encode(dst []byte, t trinary.Trits) []byte {
	for _, v := range t {
		dst = append(dst, byte(v))
	}
	return dst
}

// Decode interprets b as one trit per byte.
func Decode(b []byte) (trinary.Trits, error) {
	t := make(trinary.Trits, len(b))
	for i := range b {
		t[i] = int8(b[i])
	}
	if err := trinary.ValidTrits(t); err != nil {
		return nil, errors.Wrapf(ErrInvalidTrits, "%s", err)
	}
	return t, nil
}

// Trits decodes s, which must only contain letters of
// trinary.TryteAlphabet.
func Trits(s string) (trinary.Trits, error) {
	t, err := trinary.TrytesToTrits(trinary.Trytes(s))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidTrytes, "%q: %s", s, err)
	}
	return t, nil
}

// Trytes decodes b and encodes it as trytes.
// len(b) must be a multiple of 3.
func Trytes(b []byte) (trinary.Trytes, error) {
	t, err := Decode(b)
	if err != nil {
		return "", err
	}
	s, err := trinary.TritsToTrytes(t)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidTrits, "%s", err)
	}
	return s, nil
}
