// Package schema loads field definitions from YAML and builds codec
// registries from them.
package schema

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/listenupapp/fieldcodec/internal/codec"
	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
	"github.com/listenupapp/fieldcodec/internal/validation"
)

// FieldDef declares one field.
type FieldDef struct {
	Name      string     `yaml:"name" validate:"required,max=64"`
	Kind      codec.Kind `yaml:"kind" validate:"required,oneof=intlist phone slug"`
	Separator string     `yaml:"separator,omitempty" validate:"omitempty,len=1"`
	MaxLength int        `yaml:"max_length,omitempty" validate:"omitempty,gte=1,lte=65535"`

	// Slug options.
	AllowUnicode bool                `yaml:"allow_unicode,omitempty"`
	Default      codec.DefaultPolicy `yaml:"default,omitempty" validate:"omitempty,oneof=none highest_key token highest_key_or_token"`

	// Phone options.
	Region     string `yaml:"region,omitempty" validate:"omitempty,len=2,alpha,uppercase"`
	StrictLoad bool   `yaml:"strict_load,omitempty"`
}

// Schema is a set of field definitions.
type Schema struct {
	Fields []FieldDef `yaml:"fields" validate:"required,min=1,dive"`
}

var (
	schemaValidator = validation.New()
	fieldNameRe     = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Default returns the contact schema used when no file is configured.
func Default() *Schema {
	return &Schema{
		Fields: []FieldDef{
			{Name: "lucky_numbers", Kind: codec.KindIntList, Separator: ",", MaxLength: 255},
			{Name: "phone", Kind: codec.KindPhone, MaxLength: 32},
			{Name: "slug", Kind: codec.KindSlug, MaxLength: 50, Default: codec.DefaultHighestKey},
		},
	}
}

// Load reads and validates a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schema. Unknown keys are rejected.
func Parse(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Schema
	if err := dec.Decode(&s); err != nil {
		return nil, domainerrors.Validation("field schema is not valid YAML").WithCause(err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks field definitions and rejects duplicate names.
func (s *Schema) Validate() error {
	if err := schemaValidator.Validate(s); err != nil {
		return err
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if !fieldNameRe.MatchString(f.Name) {
			return domainerrors.Validationf("field name %q must be lowercase letters, digits or underscores", f.Name)
		}
		if seen[f.Name] {
			return domainerrors.Validationf("field %q is defined more than once", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Marshal encodes the schema as YAML.
func (s *Schema) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
