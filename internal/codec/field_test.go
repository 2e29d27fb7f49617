package codec

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	phone, err := NewPhone(DefaultConfig(), PhoneOptions{})
	require.NoError(t, err)

	r, err := NewRegistry(
		NewSlugField("slug", NewSlug(DefaultConfig(), highest(42))),
		NewIntListField("lucky_numbers", NewIntList(DefaultConfig())),
		NewPhoneField("phone", phone),
	)
	require.NoError(t, err)
	return r
}

func TestRegistry_Fields(t *testing.T) {
	r := testRegistry(t)

	assert.Equal(t, 3, r.Len())
	names := make([]string, 0, r.Len())
	for _, f := range r.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"lucky_numbers", "phone", "slug"}, names)
}

func TestRegistry_Get(t *testing.T) {
	r := testRegistry(t)

	f, err := r.Get("phone")
	require.NoError(t, err)
	assert.Equal(t, KindPhone, f.Kind())

	_, err = r.Get("missing")
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestNewRegistry_Rejects(t *testing.T) {
	list := NewIntList(DefaultConfig())

	_, err := NewRegistry(NewIntListField("", list))
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = NewRegistry(NewIntListField("a", list), NewIntListField("a", list))
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestLookup(t *testing.T) {
	r := testRegistry(t)

	list, err := Lookup[IntList](r, "lucky_numbers")
	require.NoError(t, err)
	assert.Equal(t, KindIntList, list.Kind())

	_, err = Lookup[Phone](r, "lucky_numbers")
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = Lookup[Phone](r, "missing")
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestField_Text(t *testing.T) {
	r := testRegistry(t)
	ctx := context.Background()

	list, err := r.Get("lucky_numbers")
	require.NoError(t, err)

	v, err := list.ParseText(sql.NullString{String: "7, 13", Valid: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 13}, v.Data)
	assert.Equal(t, "7, 13", v.Display)

	stored, err := list.SerializeText(ctx, sql.NullString{String: "1, 2 ,3", Valid: true})
	require.NoError(t, err)
	assert.Equal(t, "1,2,3", stored.String)

	phone, err := r.Get("phone")
	require.NoError(t, err)

	v, err = phone.NormalizeText(sql.NullString{String: "+1 415 555 0132", Valid: true})
	require.NoError(t, err)
	assert.Equal(t, "+14155550132", v.Data)
	assert.Equal(t, "+1 415-555-0132", v.Display)
	assert.True(t, v.Valid)

	v, err = phone.ParseText(sql.NullString{String: "garbage", Valid: true})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, "garbage", v.Data)

	stored, err = phone.SerializeText(ctx, sql.NullString{})
	require.NoError(t, err)
	assert.False(t, stored.Valid)

	slug, err := r.Get("slug")
	require.NoError(t, err)

	stored, err = slug.SerializeText(ctx, sql.NullString{})
	require.NoError(t, err)
	assert.Equal(t, "42", stored.String)
}
