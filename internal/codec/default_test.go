package codec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

func TestHighestKey(t *testing.T) {
	v, err := highest(1234).DefaultValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1234", v)

	_, err = empty().DefaultValue(context.Background())
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestStatic(t *testing.T) {
	v, err := Static("fixed").DefaultValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", v)
}

func TestToken(t *testing.T) {
	a, err := Token(12).DefaultValue(context.Background())
	require.NoError(t, err)
	b, err := Token(12).DefaultValue(context.Background())
	require.NoError(t, err)

	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}

func TestWithFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("primary wins", func(t *testing.T) {
		v, err := WithFallback(highest(3), Static("x")).DefaultValue(ctx)
		require.NoError(t, err)
		assert.Equal(t, "3", v)
	})

	t.Run("not found falls back", func(t *testing.T) {
		v, err := WithFallback(empty(), Static("x")).DefaultValue(ctx)
		require.NoError(t, err)
		assert.Equal(t, "x", v)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		failing := DefaultProviderFunc(func(context.Context) (string, error) { return "", boom })

		_, err := WithFallback(failing, Static("x")).DefaultValue(ctx)
		assert.ErrorIs(t, err, boom)
	})
}

func TestDefaultPolicy_Provider(t *testing.T) {
	ctx := context.Background()
	keys := KeySourceFunc(func(context.Context) (int64, error) { return 5, nil })
	none := KeySourceFunc(func(context.Context) (int64, error) {
		return 0, domainerrors.NotFound("no records")
	})

	p, err := DefaultNone.Provider(keys)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = DefaultHighestKey.Provider(keys)
	require.NoError(t, err)
	v, err := p.DefaultValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5", v)

	p, err = DefaultHighestKeyOrToken.Provider(none)
	require.NoError(t, err)
	v, err = p.DefaultValue(ctx)
	require.NoError(t, err)
	assert.Len(t, v, 12)

	p, err = DefaultToken.Provider(nil)
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = DefaultHighestKey.Provider(nil)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	_, err = DefaultPolicy("random").Provider(keys)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}
