// Package codec converts typed column values between their stored text
// representation and the structured form the application works with.
//
// Every field kind implements the same three operations:
//
//	Parse      stored text (or NULL)        -> structured value   (load path)
//	Normalize  raw text or structured input -> structured value   (assignment path)
//	Serialize  structured value             -> stored text        (write path)
//
// Stored text is carried as sql.NullString so the codecs plug directly into
// database/sql through Column.
package codec

import (
	"context"
	"database/sql"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

// Kind identifies a field kind.
type Kind string

// Supported field kinds.
const (
	KindIntList Kind = "intlist"
	KindPhone   Kind = "phone"
	KindSlug    Kind = "slug"
)

// Kinds lists every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindIntList, KindPhone, KindSlug}
}

// Codec is the conversion contract for one field kind.
type Codec[T any] interface {
	Kind() Kind
	Config() Config

	// Parse converts a stored representation into a structured value.
	// A NULL stored value yields the kind's empty value.
	Parse(stored sql.NullString) (T, error)

	// Normalize validates an assigned value and returns its structured form.
	Normalize(in Input[T]) (T, error)

	// Serialize converts a structured value into its stored representation.
	Serialize(ctx context.Context, v T) (sql.NullString, error)
}

// InputKind discriminates the variants of Input.
type InputKind uint8

// Input variants.
const (
	InputNull InputKind = iota
	InputRaw
	InputStructured
)

// String implements fmt.Stringer.
func (k InputKind) String() string {
	switch k {
	case InputNull:
		return "null"
	case InputRaw:
		return "raw"
	case InputStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Input is a value assigned to a field: nothing, raw text in stored form, or
// an already structured value. The zero Input is Null.
type Input[T any] struct {
	kind  InputKind
	raw   string
	value T
}

// Null returns an Input carrying no value.
func Null[T any]() Input[T] {
	return Input[T]{kind: InputNull}
}

// Raw returns an Input carrying text in stored form.
func Raw[T any](s string) Input[T] {
	return Input[T]{kind: InputRaw, raw: s}
}

// RawOrNull returns Raw(*s), or Null when s is nil.
func RawOrNull[T any](s *string) Input[T] {
	if s == nil {
		return Null[T]()
	}
	return Raw[T](*s)
}

// Structured returns an Input carrying an already structured value.
func Structured[T any](v T) Input[T] {
	return Input[T]{kind: InputStructured, value: v}
}

// Kind reports which variant the input holds.
func (in Input[T]) Kind() InputKind {
	return in.kind
}

// RawText returns the raw text and whether the input is the Raw variant.
func (in Input[T]) RawText() (string, bool) {
	return in.raw, in.kind == InputRaw
}

// Value returns the structured value and whether the input is the Structured variant.
func (in Input[T]) Value() (T, bool) {
	return in.value, in.kind == InputStructured
}

// inputCases holds one conversion per Input variant.
type inputCases[T any] struct {
	null       func() (T, error)
	raw        func(string) (T, error)
	structured func(T) (T, error)
}

// resolve dispatches an Input to the conversion for its variant.
func resolve[T any](in Input[T], cases inputCases[T]) (T, error) {
	switch in.kind {
	case InputNull:
		return cases.null()
	case InputRaw:
		return cases.raw(in.raw)
	case InputStructured:
		return cases.structured(in.value)
	default:
		var zero T
		return zero, domainerrors.Internal("unknown input variant " + in.kind.String())
	}
}

// null is the stored representation of an absent value.
var null = sql.NullString{}

// text returns a non-null stored representation.
func text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
