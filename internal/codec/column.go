package codec

import (
	"context"
	"database/sql"
	"database/sql/driver"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

// Column binds a codec to a value so it can be passed to database/sql
// directly, as a Scan destination or as a query argument.
//
//	lucky := codec.NewColumn(listCodec, codec.IntList(nil))
//	err := row.Scan(&id, lucky)
//
// Value serializes with a background context. For kinds whose Serialize
// consults a DefaultProvider, resolve the value inside the write transaction
// first and bind the resulting text instead.
type Column[T any] struct {
	codec Codec[T]
	V     T
}

var (
	_ sql.Scanner   = (*Column[IntList])(nil)
	_ driver.Valuer = Column[IntList]{}
)

// errNoCodec is returned by a Column built without NewColumn.
var errNoCodec = domainerrors.Internal("column has no codec; create it with NewColumn")

// NewColumn returns a column holding v. A zero Column has no codec and
// fails every Scan and Value.
func NewColumn[T any](c Codec[T], v T) *Column[T] {
	return &Column[T]{codec: c, V: v}
}

// Scan implements sql.Scanner by parsing the stored text.
func (c *Column[T]) Scan(src any) error {
	if c.codec == nil {
		return errNoCodec
	}
	var stored sql.NullString
	switch v := src.(type) {
	case nil:
	case string:
		stored = text(v)
	case []byte:
		stored = text(string(v))
	default:
		return domainerrors.Formatf("cannot scan %T into a %s column", src, c.codec.Kind())
	}

	v, err := c.codec.Parse(stored)
	if err != nil {
		return err
	}
	c.V = v
	return nil
}

// Value implements driver.Valuer by serializing the held value.
func (c Column[T]) Value() (driver.Value, error) {
	if c.codec == nil {
		return nil, errNoCodec
	}
	stored, err := c.codec.Serialize(context.Background(), c.V)
	if err != nil {
		return nil, err
	}
	if !stored.Valid {
		return nil, nil
	}
	return stored.String, nil
}
