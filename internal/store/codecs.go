package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

// Contact field names, as they appear in a field schema.
const (
	FieldSlug         = "slug"
	FieldPhone        = "phone"
	FieldLuckyNumbers = "lucky_numbers"
)

// Codecs are the codecs a backend serializes contact fields through.
type Codecs struct {
	Slug         *codec.SlugCodec
	Phone        *codec.PhoneCodec
	LuckyNumbers *codec.IntListCodec
}

// DefaultCodecs returns codecs with default configuration. The slug default
// is the highest key read from keys.
func DefaultCodecs(keys codec.KeySource) Codecs {
	slug, err := codec.NewSlugWithPolicy(codec.MustConfig(codec.DefaultSeparator, 50, false), codec.DefaultHighestKey, keys)
	if err != nil {
		panic(err)
	}
	phone, err := codec.NewPhone(codec.DefaultConfig(), codec.PhoneOptions{})
	if err != nil {
		panic(err)
	}
	return Codecs{
		Slug:         slug,
		Phone:        phone,
		LuckyNumbers: codec.NewIntList(codec.DefaultConfig()),
	}
}

// ContactCodecs looks up the contact fields in a registry.
func ContactCodecs(r *codec.Registry) (Codecs, error) {
	slug, err := lookup[codec.Slug, *codec.SlugCodec](r, FieldSlug)
	if err != nil {
		return Codecs{}, err
	}
	phone, err := lookup[codec.Phone, *codec.PhoneCodec](r, FieldPhone)
	if err != nil {
		return Codecs{}, err
	}
	lucky, err := lookup[codec.IntList, *codec.IntListCodec](r, FieldLuckyNumbers)
	if err != nil {
		return Codecs{}, err
	}
	return Codecs{Slug: slug, Phone: phone, LuckyNumbers: lucky}, nil
}

func lookup[T any, C codec.Codec[T]](r *codec.Registry, name string) (C, error) {
	var zero C
	c, err := codec.Lookup[T](r, name)
	if err != nil {
		return zero, fmt.Errorf("contact field %q: %w", name, err)
	}
	concrete, ok := c.(C)
	if !ok {
		return zero, domainerrors.Validationf("contact field %q has an unsupported codec %T", name, c)
	}
	return concrete, nil
}

// CodecSource supplies the current contact codecs. Implementations may swap
// them at runtime.
type CodecSource interface {
	ContactCodecs() Codecs
}

// FixedCodecs is a CodecSource that never changes.
type FixedCodecs Codecs

// ContactCodecs implements CodecSource.
func (c FixedCodecs) ContactCodecs() Codecs { return Codecs(c) }

// CodecHolder holds a store's CodecSource. Backends embed it.
type CodecHolder struct {
	mu  sync.RWMutex
	src CodecSource
}

// SetCodecs replaces the codec source.
func (h *CodecHolder) SetCodecs(src CodecSource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.src = src
}

// Codecs returns the current codecs.
func (h *CodecHolder) Codecs() Codecs {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.src.ContactCodecs()
}

// Row is a contact in its stored representation.
type Row struct {
	ID           int64          `msgpack:"id"`
	Slug         string         `msgpack:"slug"`
	Phone        sql.NullString `msgpack:"phone"`
	LuckyNumbers string         `msgpack:"lucky_numbers"`
	CreatedAt    time.Time      `msgpack:"created_at"`
	UpdatedAt    time.Time      `msgpack:"updated_at"`
}

// EncodeRow serializes a contact. An empty slug takes its default from keys,
// which must read inside the caller's write transaction.
func (c Codecs) EncodeRow(ctx context.Context, contact *domain.Contact, keys codec.KeySource) (Row, error) {
	slugCodec, err := c.Slug.BindKeys(keys)
	if err != nil {
		return Row{}, err
	}
	slug, err := slugCodec.Serialize(ctx, contact.Slug)
	if err != nil {
		return Row{}, err
	}
	phone, err := c.Phone.Serialize(ctx, contact.Phone)
	if err != nil {
		return Row{}, err
	}
	lucky, err := c.LuckyNumbers.Serialize(ctx, contact.LuckyNumbers)
	if err != nil {
		return Row{}, err
	}

	return Row{
		ID:           contact.ID,
		Slug:         slug.String,
		Phone:        phone,
		LuckyNumbers: lucky.String,
		CreatedAt:    contact.CreatedAt,
		UpdatedAt:    contact.UpdatedAt,
	}, nil
}

// DecodeRow parses a stored contact.
func (c Codecs) DecodeRow(row Row) (*domain.Contact, error) {
	slug, err := c.Slug.Parse(sql.NullString{String: row.Slug, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("contact %d slug: %w", row.ID, err)
	}
	phone, err := c.Phone.Parse(row.Phone)
	if err != nil {
		return nil, fmt.Errorf("contact %d phone: %w", row.ID, err)
	}
	lucky, err := c.LuckyNumbers.Parse(sql.NullString{String: row.LuckyNumbers, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("contact %d lucky numbers: %w", row.ID, err)
	}

	return &domain.Contact{
		ID:           row.ID,
		Slug:         slug,
		Phone:        phone,
		LuckyNumbers: lucky,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}, nil
}
