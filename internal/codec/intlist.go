package codec

import (
	"context"
	"database/sql"
	"slices"
	"strconv"
	"strings"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

// IntList is an ordered sequence of integers stored as separated text, e.g. "4,8,15".
type IntList []int64

// Clone returns a copy that shares no memory with l. Clone of nil is empty, not nil.
func (l IntList) Clone() IntList {
	out := make(IntList, len(l))
	copy(out, l)
	return out
}

// Equal reports whether both lists hold the same integers in the same order.
func (l IntList) Equal(other IntList) bool {
	return slices.Equal(l, other)
}

// IntListCodec converts between IntList and separated text.
type IntListCodec struct {
	cfg Config
}

var _ Codec[IntList] = (*IntListCodec)(nil)

// NewIntList creates an integer list codec.
func NewIntList(cfg Config) *IntListCodec {
	return &IntListCodec{cfg: cfg.orDefault()}
}

// Kind implements Codec.
func (c *IntListCodec) Kind() Kind { return KindIntList }

// Config implements Codec.
func (c *IntListCodec) Config() Config { return c.cfg }

// Parse splits stored text on the separator. NULL and the empty string both
// yield an empty list; a token that is not a base-10 integer is a format error.
// Whitespace around a token is accepted, so "1, 2" reads as [1 2].
func (c *IntListCodec) Parse(stored sql.NullString) (IntList, error) {
	if !stored.Valid || stored.String == "" {
		return IntList{}, nil
	}

	parts := strings.Split(stored.String, string(c.cfg.separator))
	out := make(IntList, 0, len(parts))
	for i, part := range parts {
		n, err := parseElement(part)
		if err != nil {
			return nil, domainerrors.Formatf("list element %d (%q) is not an integer", i, part).
				WithDetails(map[string]any{"index": i, "token": part}).
				WithCause(err)
		}
		out = append(out, n)
	}
	return out, nil
}

// parseElement reads one list token. Padding is trimmed; whitespace inside
// the token, or a token that is only whitespace, is still an error.
func parseElement(token string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(token), 10, 64)
}

// Normalize accepts text in stored form or an IntList.
func (c *IntListCodec) Normalize(in Input[IntList]) (IntList, error) {
	return resolve(in, inputCases[IntList]{
		null: func() (IntList, error) {
			return IntList{}, nil
		},
		raw: func(s string) (IntList, error) {
			return c.Parse(text(s))
		},
		structured: func(v IntList) (IntList, error) {
			return v.Clone(), nil
		},
	})
}

// Serialize joins the integers with the separator. The result is never NULL.
func (c *IntListCodec) Serialize(_ context.Context, v IntList) (sql.NullString, error) {
	var b strings.Builder
	for i, n := range v {
		if i > 0 {
			b.WriteRune(c.cfg.separator)
		}
		b.WriteString(strconv.FormatInt(n, 10))
	}

	out := b.String()
	if c.cfg.exceeds(out) {
		return null, domainerrors.Validationf("list of %d integers exceeds %d characters", len(v), c.cfg.maxLength)
	}
	return text(out), nil
}
