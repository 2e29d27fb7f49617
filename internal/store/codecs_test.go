package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

func fixedKeys(n int64) codec.KeySource {
	return codec.KeySourceFunc(func(context.Context) (int64, error) { return n, nil })
}

func mustPhone(t *testing.T, codecs Codecs, raw string) codec.Phone {
	t.Helper()
	p, err := codecs.Phone.Normalize(codec.Raw[codec.Phone](raw))
	require.NoError(t, err)
	return p
}

func TestCodecs_EncodeRow(t *testing.T) {
	codecs := DefaultCodecs(fixedKeys(1))
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	contact := &domain.Contact{
		ID:           8,
		Phone:        mustPhone(t, codecs, "+1 415 555 0132"),
		LuckyNumbers: codec.IntList{4, 8, 15},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	row, err := codecs.EncodeRow(context.Background(), contact, fixedKeys(7))
	require.NoError(t, err)
	assert.Equal(t, int64(8), row.ID)
	assert.Equal(t, "7", row.Slug)
	assert.Equal(t, "+14155550132", row.Phone.String)
	assert.True(t, row.Phone.Valid)
	assert.Equal(t, "4,8,15", row.LuckyNumbers)
	assert.Equal(t, now, row.CreatedAt)
}

func TestCodecs_EncodeRowNoContacts(t *testing.T) {
	codecs := DefaultCodecs(fixedKeys(1))
	empty := codec.KeySourceFunc(func(context.Context) (int64, error) { return 0, ErrNoContacts })

	_, err := codecs.EncodeRow(context.Background(), &domain.Contact{}, empty)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestCodecs_DecodeRow(t *testing.T) {
	codecs := DefaultCodecs(fixedKeys(1))

	row := Row{ID: 3, Slug: "ada", LuckyNumbers: "1,2"}
	row.Phone.String, row.Phone.Valid = "garbage", true

	c, err := codecs.DecodeRow(row)
	require.NoError(t, err)
	assert.Equal(t, codec.Slug("ada"), c.Slug)
	assert.Equal(t, codec.IntList{1, 2}, c.LuckyNumbers)
	assert.False(t, c.Phone.Valid())
	assert.Equal(t, "garbage", c.Phone.String())

	_, err = codecs.DecodeRow(Row{ID: 4, Slug: "bad slug"})
	assert.True(t, errors.Is(err, domainerrors.ErrFormat))

	_, err = codecs.DecodeRow(Row{ID: 5, Slug: "ok", LuckyNumbers: "1,two"})
	assert.True(t, errors.Is(err, domainerrors.ErrFormat))
}

func TestContactCodecs(t *testing.T) {
	defaults := DefaultCodecs(fixedKeys(1))

	r, err := codec.NewRegistry(
		codec.NewSlugField(FieldSlug, defaults.Slug),
		codec.NewPhoneField(FieldPhone, defaults.Phone),
		codec.NewIntListField(FieldLuckyNumbers, defaults.LuckyNumbers),
	)
	require.NoError(t, err)

	got, err := ContactCodecs(r)
	require.NoError(t, err)
	assert.Same(t, defaults.Slug, got.Slug)
	assert.Same(t, defaults.Phone, got.Phone)
	assert.Same(t, defaults.LuckyNumbers, got.LuckyNumbers)
}

func TestContactCodecs_MissingOrWrongKind(t *testing.T) {
	defaults := DefaultCodecs(fixedKeys(1))

	r, err := codec.NewRegistry(codec.NewSlugField(FieldSlug, defaults.Slug))
	require.NoError(t, err)
	_, err = ContactCodecs(r)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	r, err = codec.NewRegistry(
		codec.NewSlugField(FieldSlug, defaults.Slug),
		codec.NewIntListField(FieldPhone, defaults.LuckyNumbers),
		codec.NewIntListField(FieldLuckyNumbers, defaults.LuckyNumbers),
	)
	require.NoError(t, err)
	_, err = ContactCodecs(r)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestCodecHolder(t *testing.T) {
	first := DefaultCodecs(fixedKeys(1))
	second := DefaultCodecs(fixedKeys(2))

	var h CodecHolder
	h.SetCodecs(FixedCodecs(first))
	assert.Same(t, first.Slug, h.Codecs().Slug)

	h.SetCodecs(FixedCodecs(second))
	assert.Same(t, second.Slug, h.Codecs().Slug)
}
