package codec

import (
	"context"
	"database/sql"
	"slices"
	"strconv"
	"strings"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

// Value is a structured value with its type erased, shaped for transports.
type Value struct {
	Kind Kind
	// Data is []int64 for lists, a string for phones and slugs, or nil when absent.
	Data any
	// Display is a human-readable rendering.
	Display string
	// Valid is false only for a phone number kept unparsed on load.
	Valid bool
}

// Field is a named codec whose operations take and return text, so callers
// can dispatch on a field name without knowing its structured type.
type Field interface {
	Name() string
	Kind() Kind
	Config() Config

	// ParseText runs the load path.
	ParseText(stored sql.NullString) (Value, error)
	// NormalizeText runs the assignment path on raw text; NULL is the Null input.
	NormalizeText(raw sql.NullString) (Value, error)
	// SerializeText normalizes raw text and serializes the result.
	SerializeText(ctx context.Context, raw sql.NullString) (sql.NullString, error)
}

type typedField[T any] struct {
	name     string
	codec    Codec[T]
	describe func(T) Value
}

// Typed returns the underlying codec.
func (f *typedField[T]) Typed() Codec[T] { return f.codec }

func (f *typedField[T]) Name() string   { return f.name }
func (f *typedField[T]) Kind() Kind     { return f.codec.Kind() }
func (f *typedField[T]) Config() Config { return f.codec.Config() }

func (f *typedField[T]) ParseText(stored sql.NullString) (Value, error) {
	v, err := f.codec.Parse(stored)
	if err != nil {
		return Value{}, err
	}
	return f.describe(v), nil
}

func (f *typedField[T]) NormalizeText(raw sql.NullString) (Value, error) {
	v, err := f.normalize(raw)
	if err != nil {
		return Value{}, err
	}
	return f.describe(v), nil
}

func (f *typedField[T]) SerializeText(ctx context.Context, raw sql.NullString) (sql.NullString, error) {
	v, err := f.normalize(raw)
	if err != nil {
		return null, err
	}
	return f.codec.Serialize(ctx, v)
}

func (f *typedField[T]) normalize(raw sql.NullString) (T, error) {
	if !raw.Valid {
		return f.codec.Normalize(Null[T]())
	}
	return f.codec.Normalize(Raw[T](raw.String))
}

// NewIntListField names an integer list codec.
func NewIntListField(name string, c *IntListCodec) Field {
	return &typedField[IntList]{
		name:  name,
		codec: c,
		describe: func(v IntList) Value {
			parts := make([]string, len(v))
			for i, n := range v {
				parts[i] = strconv.FormatInt(n, 10)
			}
			return Value{
				Kind:    KindIntList,
				Data:    []int64(v.Clone()),
				Display: strings.Join(parts, ", "),
				Valid:   true,
			}
		},
	}
}

// NewPhoneField names a phone codec.
func NewPhoneField(name string, c *PhoneCodec) Field {
	return &typedField[Phone]{
		name:  name,
		codec: c,
		describe: func(v Phone) Value {
			if v.IsZero() {
				return Value{Kind: KindPhone, Valid: true}
			}
			return Value{
				Kind:    KindPhone,
				Data:    v.String(),
				Display: c.Format(v, PhoneInternational),
				Valid:   v.Valid(),
			}
		},
	}
}

// NewSlugField names a slug codec.
func NewSlugField(name string, c *SlugCodec) Field {
	return &typedField[Slug]{
		name:  name,
		codec: c,
		describe: func(v Slug) Value {
			if v.IsZero() {
				return Value{Kind: KindSlug, Valid: true}
			}
			return Value{Kind: KindSlug, Data: v.String(), Display: v.String(), Valid: true}
		},
	}
}

// Registry holds fields by name. It is immutable once built.
type Registry struct {
	fields map[string]Field
	names  []string
}

// NewRegistry builds a registry, rejecting empty and duplicate names.
func NewRegistry(fields ...Field) (*Registry, error) {
	r := &Registry{
		fields: make(map[string]Field, len(fields)),
		names:  make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		name := f.Name()
		if name == "" {
			return nil, domainerrors.Validation("field name is required")
		}
		if _, dup := r.fields[name]; dup {
			return nil, domainerrors.Validationf("field %q is defined more than once", name)
		}
		r.fields[name] = f
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)
	return r, nil
}

// Get returns the named field.
func (r *Registry) Get(name string) (Field, error) {
	f, ok := r.fields[name]
	if !ok {
		return nil, domainerrors.NotFoundf("field %q is not defined", name)
	}
	return f, nil
}

// Fields returns every field ordered by name.
func (r *Registry) Fields() []Field {
	out := make([]Field, len(r.names))
	for i, name := range r.names {
		out[i] = r.fields[name]
	}
	return out
}

// Len returns the number of fields.
func (r *Registry) Len() int {
	return len(r.names)
}

// Lookup returns the named field's codec with its structured type restored.
func Lookup[T any](r *Registry, name string) (Codec[T], error) {
	f, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	typed, ok := f.(interface{ Typed() Codec[T] })
	if !ok {
		return nil, domainerrors.Validationf("field %q is a %s field", name, f.Kind())
	}
	return typed.Typed(), nil
}
