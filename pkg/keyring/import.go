package keyring

import (
	"github.com/iotaledger/iota.go/trinary"
	"github.com/mamkit/mamkit/pkg/tritbytes"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by ImportJSON for malformed documents.
var ErrInvalidJSON = errors.New("invalid JSON")

// ImportJSON adds the records of a JSON keyring document to k.
// All records are trytes encoded:
//
//	{
//	  "trusted_channels": ["<81 trytes>"],
//	  "trusted_endpoints": ["<81 trytes>"],
//	  "endpoints": [{"channel_id": "<81>", "endpoint_id": "<81>"}],
//	  "psks": [{"id": "<27>", "key": "<81>"}],
//	  "ntru_pks": ["<3072 trytes>"],
//	  "read_contexts": [{
//	    "message_id": "<21>", "channel_pk": "<81>",
//	    "order": "<6>", "sponge_state": "<243>"
//	  }]
//	}
//
// Absent registries are skipped. Import stops at the first invalid
// record, records imported before it remain in k.
func (k *Keyring) ImportJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return errors.Wrap(ErrInvalidJSON, "expected object")
	}

	imported := 0
	for _, r := range []struct {
		path string
		fn   func(v gjson.Result) error
	}{
		{RegTrustedChannels, func(v gjson.Result) error {
			t, err := trits(v, "")
			if err != nil {
				return err
			}
			pk, err := NewPublicKey(t)
			if err != nil {
				return err
			}
			return k.AddTrustedChannel(pk)
		}},
		{RegTrustedEndpoints, func(v gjson.Result) error {
			t, err := trits(v, "")
			if err != nil {
				return err
			}
			pk, err := NewPublicKey(t)
			if err != nil {
				return err
			}
			return k.AddTrustedEndpoint(pk)
		}},
		{RegEndpoints, func(v gjson.Result) error {
			t, err := fields(v, "channel_id", "endpoint_id")
			if err != nil {
				return err
			}
			e, err := NewEndpoint(t[0], t[1])
			if err != nil {
				return err
			}
			return k.AddEndpoint(e)
		}},
		{RegPSKs, func(v gjson.Result) error {
			t, err := fields(v, "id", "key")
			if err != nil {
				return err
			}
			p, err := NewPSK(t[0], t[1])
			if err != nil {
				return err
			}
			return k.AddPSK(p)
		}},
		{RegNTRUPublicKeys, func(v gjson.Result) error {
			t, err := trits(v, "")
			if err != nil {
				return err
			}
			pk, err := NewNTRUPublicKey(t)
			if err != nil {
				return err
			}
			return k.AddNTRUPublicKey(pk)
		}},
		{RegReadContexts, func(v gjson.Result) error {
			t, err := fields(
				v, "message_id", "channel_pk", "order", "sponge_state",
			)
			if err != nil {
				return err
			}
			id, err := NewMessageID(t[0])
			if err != nil {
				return err
			}
			ctx, err := NewReadContext(t[1], t[2], t[3])
			if err != nil {
				return err
			}
			return k.AddReadContext(id, ctx)
		}},
	} {
		n, err := importArray(doc, r.path, r.fn)
		imported += n
		if err != nil {
			return err
		}
	}

	k.log.Info().Int("records", imported).Msg("imported")
	return nil
}

func importArray(
	doc gjson.Result,
	path string,
	fn func(gjson.Result) error,
) (n int, err error) {
	a := doc.Get(path)
	if !a.Exists() {
		return 0, nil
	}
	if !a.IsArray() {
		return 0, errors.Wrapf(ErrInvalidJSON, "%s: expected array", path)
	}
	a.ForEach(func(_, v gjson.Result) bool {
		if err = fn(v); err != nil {
			err = errors.Wrapf(err, "%s.%d", path, n)
			return false
		}
		n++
		return true
	})
	return n, err
}

// trits decodes the trytes string at path of v,
// or v itself if path is empty.
func trits(v gjson.Result, path string) (trinary.Trits, error) {
	if path != "" {
		v = v.Get(path)
	}
	if v.Type != gjson.String {
		if path == "" {
			return nil, errors.Wrap(ErrInvalidJSON, "expected trytes string")
		}
		return nil, errors.Wrapf(
			ErrInvalidJSON, "%s: expected trytes string", path,
		)
	}
	return tritbytes.Trits(v.Str)
}

func fields(v gjson.Result, paths ...string) ([]trinary.Trits, error) {
	if !v.IsObject() {
		return nil, errors.Wrap(ErrInvalidJSON, "expected object")
	}
	t := make([]trinary.Trits, len(paths))
	for i, p := range paths {
		var err error
		if t[i], err = trits(v, p); err != nil {
			return nil, err
		}
	}
	return t, nil
}
