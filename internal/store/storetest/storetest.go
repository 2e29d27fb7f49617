// Package storetest holds behaviour tests shared by every store backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
	"github.com/listenupapp/fieldcodec/internal/store"
)

// Opener returns an empty store using the default codecs. It registers its
// own cleanup.
type Opener func(t *testing.T) store.Store

// Run runs the shared suite against a backend.
func Run(t *testing.T, open Opener) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"CreateAndGet", testCreateAndGet},
		{"CreateDefaultsSlugToHighestKey", testCreateDefaultsSlug},
		{"CreateEmptyStoreWithoutSlug", testCreateEmptyStore},
		{"CreateDuplicateSlug", testCreateDuplicateSlug},
		{"GetNotFound", testGetNotFound},
		{"GetBySlug", testGetBySlug},
		{"List", testList},
		{"Update", testUpdate},
		{"UpdateNotFound", testUpdateNotFound},
		{"UpdateDuplicateSlug", testUpdateDuplicateSlug},
		{"Delete", testDelete},
		{"HighestContactID", testHighestContactID},
		{"ConcurrentDefaults", testConcurrentDefaults},
		{"SetCodecs", testSetCodecs},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

func phone(t *testing.T, raw string) codec.Phone {
	t.Helper()
	c, err := codec.NewPhone(codec.DefaultConfig(), codec.PhoneOptions{})
	require.NoError(t, err)
	p, err := c.Normalize(codec.Raw[codec.Phone](raw))
	require.NoError(t, err)
	return p
}

func create(t *testing.T, s store.Store, slug string) *domain.Contact {
	t.Helper()
	c := &domain.Contact{Slug: codec.Slug(slug), LuckyNumbers: codec.IntList{}}
	require.NoError(t, s.CreateContact(context.Background(), c))
	return c
}

func testCreateAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()

	c := &domain.Contact{
		Slug:         "ada",
		Phone:        phone(t, "+1 415 555 0132"),
		LuckyNumbers: codec.IntList{3, 7, 42},
	}
	require.NoError(t, s.CreateContact(ctx, c))
	assert.Positive(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	got, err := s.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, codec.Slug("ada"), got.Slug)
	assert.Equal(t, "+14155550132", got.Phone.E164())
	assert.Equal(t, codec.IntList{3, 7, 42}, got.LuckyNumbers)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))

	bare := create(t, s, "grace")
	got, err = s.GetContact(ctx, bare.ID)
	require.NoError(t, err)
	assert.True(t, got.Phone.IsZero())
	assert.NotNil(t, got.LuckyNumbers)
	assert.Empty(t, got.LuckyNumbers)
}

func testCreateDefaultsSlug(t *testing.T, s store.Store) {
	first := create(t, s, "first")
	second := create(t, s, "")

	assert.Equal(t, codec.Slug(fmt.Sprint(first.ID)), second.Slug)

	got, err := s.GetContact(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Slug, got.Slug)
}

func testCreateEmptyStore(t *testing.T, s store.Store) {
	err := s.CreateContact(context.Background(), &domain.Contact{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = s.HighestContactID(context.Background())
	assert.True(t, errors.Is(err, store.ErrNoContacts))
}

func testCreateDuplicateSlug(t *testing.T, s store.Store) {
	create(t, s, "ada")

	err := s.CreateContact(context.Background(), &domain.Contact{Slug: "ada"})
	assert.True(t, errors.Is(err, store.ErrAlreadyExists))
}

func testGetNotFound(t *testing.T, s store.Store) {
	_, err := s.GetContact(context.Background(), 12345)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.GetContactBySlug(context.Background(), "nobody")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testGetBySlug(t *testing.T, s store.Store) {
	c := create(t, s, "linus")

	got, err := s.GetContactBySlug(context.Background(), "linus")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func testList(t *testing.T, s store.Store) {
	ctx := context.Background()
	var ids []int64
	for i := range 5 {
		ids = append(ids, create(t, s, fmt.Sprintf("c%d", i)).ID)
	}

	page, err := s.ListContacts(ctx, store.PaginationParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, ids[0], page.Items[0].ID)
	assert.Equal(t, ids[1], page.Items[1].ID)

	var seen []int64
	params := store.PaginationParams{Limit: 2}
	for {
		page, err := s.ListContacts(ctx, params)
		require.NoError(t, err)
		for _, c := range page.Items {
			seen = append(seen, c.ID)
		}
		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}
	assert.Equal(t, ids, seen)

	_, err = s.ListContacts(ctx, store.PaginationParams{Cursor: "%%%"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func testUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := create(t, s, "before")

	c.Slug = "after"
	c.Phone = phone(t, "+12015550123")
	c.LuckyNumbers = codec.IntList{9}
	require.NoError(t, s.UpdateContact(ctx, c))

	got, err := s.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, codec.Slug("after"), got.Slug)
	assert.Equal(t, "+12015550123", got.Phone.E164())
	assert.Equal(t, codec.IntList{9}, got.LuckyNumbers)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	_, err = s.GetContactBySlug(ctx, "before")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	c.Phone = codec.Phone{}
	require.NoError(t, s.UpdateContact(ctx, c))
	got, err = s.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Phone.IsZero())
}

func testUpdateNotFound(t *testing.T, s store.Store) {
	create(t, s, "someone")

	err := s.UpdateContact(context.Background(), &domain.Contact{ID: 999, Slug: "ghost"})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testUpdateDuplicateSlug(t *testing.T, s store.Store) {
	create(t, s, "taken")
	c := create(t, s, "free")

	c.Slug = "taken"
	err := s.UpdateContact(context.Background(), c)
	assert.True(t, errors.Is(err, store.ErrAlreadyExists))
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := create(t, s, "gone")

	require.NoError(t, s.DeleteContact(ctx, c.ID))

	_, err := s.GetContact(ctx, c.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = s.GetContactBySlug(ctx, "gone")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = s.DeleteContact(ctx, c.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	// The slug is free again.
	create(t, s, "gone")
}

func testHighestContactID(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.HighestContactID(ctx)
	assert.True(t, errors.Is(err, store.ErrNoContacts))

	create(t, s, "a")
	b := create(t, s, "b")

	got, err := s.HighestContactID(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got)
}

func testConcurrentDefaults(t *testing.T, s store.Store) {
	create(t, s, "seed")

	const writers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		slugs = make(map[codec.Slug]int64)
		errs  []error
	)
	for range writers {
		wg.Go(func() {
			c := &domain.Contact{}
			err := s.CreateContact(context.Background(), c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			slugs[c.Slug] = c.ID
		})
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, slugs, writers)
}

type swappable struct {
	mu     sync.Mutex
	codecs store.Codecs
}

func (s *swappable) ContactCodecs() store.Codecs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codecs
}

func testSetCodecs(t *testing.T, s store.Store) {
	ctx := context.Background()
	create(t, s, "seed")

	codecs := store.DefaultCodecs(store.Keys(s))
	pipe := codec.NewIntList(codec.MustConfig('|', 255, false))
	codecs.LuckyNumbers = pipe
	codecs.Slug = codecs.Slug.WithDefaults(codec.Static("Fixed Default"))
	s.SetCodecs(&swappable{codecs: codecs})

	c := &domain.Contact{LuckyNumbers: codec.IntList{1, 2}}
	require.NoError(t, s.CreateContact(ctx, c))
	assert.Equal(t, codec.Slug("fixed-default"), c.Slug)

	got, err := s.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, codec.IntList{1, 2}, got.LuckyNumbers)
}

func testPing(t *testing.T, s store.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}
