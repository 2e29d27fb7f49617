package schema

import (
	"sync/atomic"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/store"
)

type snapshot struct {
	registry *codec.Registry
	contacts store.Codecs
}

// Live holds the current registry and swaps it atomically. It implements
// store.CodecSource.
type Live struct {
	current atomic.Pointer[snapshot]
}

var _ store.CodecSource = (*Live)(nil)

// NewLive returns a Live holding r. r must define the contact fields.
func NewLive(r *codec.Registry) (*Live, error) {
	l := &Live{}
	if err := l.Swap(r); err != nil {
		return nil, err
	}
	return l, nil
}

// Swap replaces the registry. A registry missing a contact field is rejected
// and the current one kept.
func (l *Live) Swap(r *codec.Registry) error {
	contacts, err := store.ContactCodecs(r)
	if err != nil {
		return err
	}
	l.current.Store(&snapshot{registry: r, contacts: contacts})
	return nil
}

// Registry returns the current registry.
func (l *Live) Registry() *codec.Registry {
	return l.current.Load().registry
}

// ContactCodecs implements store.CodecSource.
func (l *Live) ContactCodecs() store.Codecs {
	return l.current.Load().contacts
}
