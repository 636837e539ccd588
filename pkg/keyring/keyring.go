// Package keyring holds the key material registries of a MAM API,
// each one a container instantiated for its record type.
package keyring

import (
	"github.com/google/uuid"
	"github.com/mamkit/mamkit/pkg/container"
	"github.com/mamkit/mamkit/pkg/container/bytemap"
	"github.com/mamkit/mamkit/pkg/container/byteset"
	"github.com/phuslu/log"
	"github.com/pkg/errors"
)

// Registry names.
const (
	RegTrustedChannels  = "trusted_channels"
	RegTrustedEndpoints = "trusted_endpoints"
	RegEndpoints        = "endpoints"
	RegPSKs             = "psks"
	RegNTRUPublicKeys   = "ntru_pks"
	RegNTRUSecretKeys   = "ntru_sks"
	RegReadContexts     = "read_contexts"
)

// Keyring isn't safe for concurrent use.
type Keyring struct {
	ID  uuid.UUID
	log log.Logger

	TrustedChannels  *byteset.Set[PublicKey]
	TrustedEndpoints *byteset.Set[PublicKey]
	Endpoints        *byteset.Set[Endpoint]
	PSKs             *byteset.Set[PSK]
	NTRUPublicKeys   *byteset.Set[NTRUPublicKey]
	NTRUSecretKeys   *byteset.Set[NTRUSecretKey]
	ReadContexts     *bytemap.Map[MessageID, ReadContext]
}

// New creates an empty keyring whose registries share o.
// The keyring ID is added to the context of l.
func New(o container.Options, l log.Logger) *Keyring {
	k := &Keyring{
		ID: uuid.New(),

		TrustedChannels:  byteset.New[PublicKey](PublicKeySize, o),
		TrustedEndpoints: byteset.New[PublicKey](PublicKeySize, o),
		Endpoints:        byteset.New[Endpoint](EndpointSize, o),
		PSKs:             byteset.New[PSK](PSKSize, o),
		NTRUPublicKeys:   byteset.New[NTRUPublicKey](NTRUPublicKeySize, o),
		NTRUSecretKeys:   byteset.New[NTRUSecretKey](NTRUSecretKeySize, o),
		ReadContexts: bytemap.New[MessageID, ReadContext](
			MessageIDSize, ReadContextSize, o,
		),
	}
	k.log = l
	ctx := make([]byte, len(l.Context), len(l.Context)+64)
	copy(ctx, l.Context)
	k.log.Context = log.NewContext(ctx).
		Str("keyring", k.ID.String()).Value()
	return k
}

func add[T container.Bytes](
	k *Keyring, registry string, s *byteset.Set[T], v T,
) error {
	if err := s.Add(v); err != nil {
		k.log.Error().
			Str("registry", registry).
			Err(err).
			Msg("adding record")
		return errors.Wrap(err, registry)
	}
	k.log.Debug().
		Str("registry", registry).
		Int("len", s.Len()).
		Msg("record added")
	return nil
}

func (k *Keyring) AddTrustedChannel(pk PublicKey) error {
	return add(k, RegTrustedChannels, k.TrustedChannels, pk)
}

func (k *Keyring) AddTrustedEndpoint(pk PublicKey) error {
	return add(k, RegTrustedEndpoints, k.TrustedEndpoints, pk)
}

func (k *Keyring) AddEndpoint(e Endpoint) error {
	return add(k, RegEndpoints, k.Endpoints, e)
}

func (k *Keyring) AddPSK(p PSK) error {
	return add(k, RegPSKs, k.PSKs, p)
}

func (k *Keyring) AddNTRUPublicKey(pk NTRUPublicKey) error {
	return add(k, RegNTRUPublicKeys, k.NTRUPublicKeys, pk)
}

func (k *Keyring) AddNTRUSecretKey(sk NTRUSecretKey) error {
	return add(k, RegNTRUSecretKeys, k.NTRUSecretKeys, sk)
}

// AddReadContext associates ctx with the message,
// replacing any context already associated with it.
func (k *Keyring) AddReadContext(id MessageID, ctx ReadContext) error {
	if err := k.ReadContexts.Add(id, ctx); err != nil {
		k.log.Error().
			Str("registry", RegReadContexts).
			Err(err).
			Msg("adding read context")
		return errors.Wrap(err, RegReadContexts)
	}
	k.log.Debug().
		Str("registry", RegReadContexts).
		Int("len", k.ReadContexts.Len()).
		Msg("read context set")
	return nil
}

// Merge adds all records of src to k.
// Read contexts of src replace those of k for the same message.
// Merge stops at the first error leaving k partially merged.
func (k *Keyring) Merge(src *Keyring) error {
	for _, fn := range []func() error{
		func() error { return appendTo(RegTrustedChannels, src.TrustedChannels, k.TrustedChannels) },
		func() error { return appendTo(RegTrustedEndpoints, src.TrustedEndpoints, k.TrustedEndpoints) },
		func() error { return appendTo(RegEndpoints, src.Endpoints, k.Endpoints) },
		func() error { return appendTo(RegPSKs, src.PSKs, k.PSKs) },
		func() error { return appendTo(RegNTRUPublicKeys, src.NTRUPublicKeys, k.NTRUPublicKeys) },
		func() error { return appendTo(RegNTRUSecretKeys, src.NTRUSecretKeys, k.NTRUSecretKeys) },
		func() (err error) {
			src.ReadContexts.Visit(func(
				e *bytemap.Entry[MessageID, ReadContext],
			) (stop bool) {
				err = k.ReadContexts.Add(e.Key, e.Value)
				return err != nil
			})
			return errors.Wrap(err, RegReadContexts)
		},
	} {
		if err := fn(); err != nil {
			k.log.Error().Str("from", src.ID.String()).Err(err).Msg("merging")
			return err
		}
	}
	k.log.Info().Str("from", src.ID.String()).Msg("merged")
	return nil
}

func appendTo[T container.Bytes](registry string, src, dst *byteset.Set[T]) error {
	return errors.Wrap(byteset.Append(src, dst), registry)
}

// Registry is the name and the number of records of a registry.
type Registry struct {
	Name string
	Len  int
}

// Registries returns all registries in a fixed order.
func (k *Keyring) Registries() []Registry {
	return []Registry{
		{RegTrustedChannels, k.TrustedChannels.Len()},
		{RegTrustedEndpoints, k.TrustedEndpoints.Len()},
		{RegEndpoints, k.Endpoints.Len()},
		{RegPSKs, k.PSKs.Len()},
		{RegNTRUPublicKeys, k.NTRUPublicKeys.Len()},
		{RegNTRUSecretKeys, k.NTRUSecretKeys.Len()},
		{RegReadContexts, k.ReadContexts.Len()},
	}
}

// Len returns the total number of records.
func (k *Keyring) Len() (n int) {
	for _, r := range k.Registries() {
		n += r.Len
	}
	return n
}

// Diff returns the names of the registries that differ between a and b.
// Read context maps holding the same messages with different
// contexts are reported as RegReadContexts+".values".
func Diff(a, b *Keyring) (differ []string) {
	for _, d := range []struct {
		name  string
		equal bool
	}{
		{RegTrustedChannels, byteset.Equal(a.TrustedChannels, b.TrustedChannels)},
		{RegTrustedEndpoints, byteset.Equal(a.TrustedEndpoints, b.TrustedEndpoints)},
		{RegEndpoints, byteset.Equal(a.Endpoints, b.Endpoints)},
		{RegPSKs, byteset.Equal(a.PSKs, b.PSKs)},
		{RegNTRUPublicKeys, byteset.Equal(a.NTRUPublicKeys, b.NTRUPublicKeys)},
		{RegNTRUSecretKeys, byteset.Equal(a.NTRUSecretKeys, b.NTRUSecretKeys)},
	} {
		if !d.equal {
			differ = append(differ, d.name)
		}
	}
	if !bytemap.Compare(a.ReadContexts, b.ReadContexts) {
		differ = append(differ, RegReadContexts)
	} else if !bytemap.Equal(a.ReadContexts, b.ReadContexts) {
		differ = append(differ, RegReadContexts+".values")
	}
	return differ
}

// Equal returns true if all registries of a and b are equal.
func Equal(a, b *Keyring) bool { return len(Diff(a, b)) < 1 }

// Free empties all registries. The keyring remains usable.
func (k *Keyring) Free() {
	k.TrustedChannels.Free()
	k.TrustedEndpoints.Free()
	k.Endpoints.Free()
	k.PSKs.Free()
	k.NTRUPublicKeys.Free()
	k.NTRUSecretKeys.Free()
	k.ReadContexts.Free()
	k.log.Debug().Msg("freed")
}
