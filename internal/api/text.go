package api

import (
	"bytes"
	"database/sql"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"
)

// Text is a JSON string that may be null or left out. Absent and null are
// told apart so a PATCH can distinguish "unchanged" from "clear".
type Text struct {
	Set   bool
	Null  bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	t.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		t.Null = true
		t.Value = ""
		return nil
	}
	t.Null = false
	return json.Unmarshal(b, &t.Value)
}

// Schema implements huma.SchemaProvider.
func (Text) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{Type: huma.TypeString, Nullable: true}
}

// NullString returns the value as nullable text; absent counts as null.
func (t Text) NullString() sql.NullString {
	if !t.Set || t.Null {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Value, Valid: true}
}

// Ptr returns the value, or nil when absent or null.
func (t Text) Ptr() *string {
	if !t.Set || t.Null {
		return nil
	}
	v := t.Value
	return &v
}
