package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
	"github.com/listenupapp/fieldcodec/internal/store"
)

// ContactInput is the value assigned to each field of a new contact.
// Raw slug text is treated as a title and slugified.
type ContactInput struct {
	Slug         codec.Input[codec.Slug]
	Phone        codec.Input[codec.Phone]
	LuckyNumbers codec.Input[codec.IntList]
}

// ContactPatch changes some fields of a contact. A nil field is left as is.
// Setting Slug to Null re-derives the default.
type ContactPatch struct {
	Slug         *codec.Input[codec.Slug]
	Phone        *codec.Input[codec.Phone]
	LuckyNumbers *codec.Input[codec.IntList]
}

// ContactView is a contact rendered for output.
type ContactView struct {
	ID           int64     `json:"id"`
	Slug         string    `json:"slug"`
	Phone        *string   `json:"phone"`
	PhoneDisplay string    `json:"phone_display,omitempty"`
	PhoneValid   bool      `json:"phone_valid"`
	LuckyNumbers []int64   `json:"lucky_numbers"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContactService manages contacts.
type ContactService struct {
	store  store.Store
	codecs store.CodecSource
	logger *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(st store.Store, codecs store.CodecSource, logger *slog.Logger) *ContactService {
	return &ContactService{
		store:  st,
		codecs: codecs,
		logger: logger,
	}
}

// Create normalizes the input and stores a new contact.
func (s *ContactService) Create(ctx context.Context, in ContactInput) (*domain.Contact, error) {
	codecs := s.codecs.ContactCodecs()

	c := &domain.Contact{}
	if err := s.assign(codecs, c, &in.Slug, &in.Phone, &in.LuckyNumbers); err != nil {
		return nil, err
	}

	if err := s.store.CreateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	s.logger.Info("contact created", "id", c.ID, "slug", c.Slug)
	return c, nil
}

// Get returns a contact by id.
func (s *ContactService) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	return s.store.GetContact(ctx, id)
}

// GetBySlug returns a contact by slug.
func (s *ContactService) GetBySlug(ctx context.Context, slug string) (*domain.Contact, error) {
	return s.store.GetContactBySlug(ctx, codec.Slug(slug))
}

// List returns a page of contacts.
func (s *ContactService) List(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Contact], error) {
	return s.store.ListContacts(ctx, params)
}

// Update applies a patch to a contact.
func (s *ContactService) Update(ctx context.Context, id int64, patch ContactPatch) (*domain.Contact, error) {
	c, err := s.store.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}

	codecs := s.codecs.ContactCodecs()
	if err := s.assign(codecs, c, patch.Slug, patch.Phone, patch.LuckyNumbers); err != nil {
		return nil, err
	}

	if err := s.store.UpdateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}

	s.logger.Info("contact updated", "id", c.ID, "slug", c.Slug)
	return c, nil
}

// Delete removes a contact.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteContact(ctx, id); err != nil {
		return err
	}
	s.logger.Info("contact deleted", "id", id)
	return nil
}

// View renders a contact with the current codecs.
func (s *ContactService) View(c *domain.Contact) ContactView {
	codecs := s.codecs.ContactCodecs()

	v := ContactView{
		ID:           c.ID,
		Slug:         c.Slug.String(),
		PhoneValid:   c.Phone.IsZero() || c.Phone.Valid(),
		LuckyNumbers: []int64(c.LuckyNumbers.Clone()),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if !c.Phone.IsZero() {
		phone := c.Phone.String()
		v.Phone = &phone
		v.PhoneDisplay = codecs.Phone.Format(c.Phone, codec.PhoneInternational)
	}
	return v
}

// assign normalizes each non-nil input onto c.
func (s *ContactService) assign(
	codecs store.Codecs,
	c *domain.Contact,
	slug *codec.Input[codec.Slug],
	phone *codec.Input[codec.Phone],
	lucky *codec.Input[codec.IntList],
) error {
	if slug != nil {
		v, err := normalizeSlug(codecs.Slug, *slug)
		if err != nil {
			return fieldError(store.FieldSlug, err)
		}
		c.Slug = v
	}
	if phone != nil {
		v, err := codecs.Phone.Normalize(*phone)
		if err != nil {
			return fieldError(store.FieldPhone, err)
		}
		c.Phone = v
	}
	if lucky != nil {
		v, err := codecs.LuckyNumbers.Normalize(*lucky)
		if err != nil {
			return fieldError(store.FieldLuckyNumbers, err)
		}
		c.LuckyNumbers = v
	}
	return nil
}

// normalizeSlug slugifies raw text before normalizing it.
func normalizeSlug(c *codec.SlugCodec, in codec.Input[codec.Slug]) (codec.Slug, error) {
	if text, ok := in.RawText(); ok {
		v, err := c.FromText(text)
		if err != nil {
			return "", err
		}
		in = codec.Structured(v)
	}
	return c.Normalize(in)
}

// fieldError names the field an error came from.
func fieldError(field string, err error) error {
	var de *domainerrors.Error
	if !errors.As(err, &de) {
		return fmt.Errorf("%s: %w", field, err)
	}

	details := map[string]any{"field": field}
	if de.Details != nil {
		details["reason"] = de.Details
	}
	return de.WithMessage(field + ": " + de.Message).WithDetails(details)
}
