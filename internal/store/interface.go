// Package store defines the persistence interface for contacts.
package store

import (
	"context"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Backends serialize contact fields through the codecs supplied by SetCodecs.
// CreateContact and UpdateContact resolve an empty slug inside their write
// transaction, so the highest key they read is the one they commit against.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error
	SetCodecs(src CodecSource)

	// Contacts
	CreateContact(ctx context.Context, c *domain.Contact) error
	GetContact(ctx context.Context, id int64) (*domain.Contact, error)
	GetContactBySlug(ctx context.Context, slug codec.Slug) (*domain.Contact, error)
	ListContacts(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Contact], error)
	UpdateContact(ctx context.Context, c *domain.Contact) error
	DeleteContact(ctx context.Context, id int64) error

	// HighestContactID returns the largest contact id, or ErrNoContacts.
	HighestContactID(ctx context.Context) (int64, error)
}

// Keys adapts a store to codec.KeySource. Reads happen outside any write
// transaction, so the result is only suitable for previews.
func Keys(s Store) codec.KeySource {
	return codec.KeySourceFunc(s.HighestContactID)
}
