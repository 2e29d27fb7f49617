package codec

import (
	"context"
	"strconv"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
	"github.com/listenupapp/fieldcodec/internal/id"
)

// DefaultProvider computes the value a field takes when none was supplied.
//
// Providers that read persisted state are only as consistent as the
// transaction they run in. Stores call Serialize with a provider bound to the
// write transaction so two concurrent inserts cannot derive the same default.
type DefaultProvider interface {
	DefaultValue(ctx context.Context) (string, error)
}

// DefaultProviderFunc adapts a function to DefaultProvider.
type DefaultProviderFunc func(ctx context.Context) (string, error)

// DefaultValue implements DefaultProvider.
func (f DefaultProviderFunc) DefaultValue(ctx context.Context) (string, error) {
	return f(ctx)
}

// KeySource reports the highest primary key in a collection.
// Implementations return an error matching errors.ErrNotFound when the
// collection is empty.
type KeySource interface {
	HighestKey(ctx context.Context) (int64, error)
}

// KeySourceFunc adapts a function to KeySource.
type KeySourceFunc func(ctx context.Context) (int64, error)

// HighestKey implements KeySource.
func (f KeySourceFunc) HighestKey(ctx context.Context) (int64, error) {
	return f(ctx)
}

// HighestKey returns a provider yielding the decimal text of the highest key in src.
func HighestKey(src KeySource) DefaultProvider {
	return DefaultProviderFunc(func(ctx context.Context) (string, error) {
		key, err := src.HighestKey(ctx)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(key, 10), nil
	})
}

// Static returns a provider that always yields v.
func Static(v string) DefaultProvider {
	return DefaultProviderFunc(func(context.Context) (string, error) {
		return v, nil
	})
}

// Token returns a provider yielding random lowercase alphanumeric tokens of the given size.
func Token(size int) DefaultProvider {
	return DefaultProviderFunc(func(context.Context) (string, error) {
		return id.Token(size)
	})
}

// WithFallback returns a provider that consults fallback when primary reports
// errors.ErrNotFound. Other errors from primary are returned unchanged.
func WithFallback(primary, fallback DefaultProvider) DefaultProvider {
	return DefaultProviderFunc(func(ctx context.Context) (string, error) {
		v, err := primary.DefaultValue(ctx)
		if err == nil {
			return v, nil
		}
		if !domainerrors.Is(err, domainerrors.ErrNotFound) {
			return "", err
		}
		return fallback.DefaultValue(ctx)
	})
}

// DefaultPolicy names how a slug default is derived, so it can be rebuilt
// around a different KeySource.
type DefaultPolicy string

// Default policies.
const (
	DefaultNone              DefaultPolicy = "none"
	DefaultHighestKey        DefaultPolicy = "highest_key"
	DefaultToken             DefaultPolicy = "token"
	DefaultHighestKeyOrToken DefaultPolicy = "highest_key_or_token"
)

// Policies returns every default policy.
func Policies() []DefaultPolicy {
	return []DefaultPolicy{DefaultNone, DefaultHighestKey, DefaultToken, DefaultHighestKeyOrToken}
}

// Provider builds the policy's provider around src. DefaultNone yields nil.
func (p DefaultPolicy) Provider(src KeySource) (DefaultProvider, error) {
	switch p {
	case DefaultNone, "":
		return nil, nil
	case DefaultToken:
		return Token(id.DefaultTokenSize), nil
	}

	if src == nil {
		return nil, domainerrors.Validationf("default policy %q needs a key source", p)
	}
	switch p {
	case DefaultHighestKey:
		return HighestKey(src), nil
	case DefaultHighestKeyOrToken:
		return WithFallback(HighestKey(src), Token(id.DefaultTokenSize)), nil
	default:
		return nil, domainerrors.Validationf("unknown default policy %q", p)
	}
}
