package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/listenupapp/fieldcodec/internal/codec"
)

// RegistrySource supplies the current field registry.
type RegistrySource interface {
	Registry() *codec.Registry
}

// FieldInfo describes a field's configuration.
type FieldInfo struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Separator    string `json:"separator"`
	MaxLength    int    `json:"max_length"`
	AllowUnicode bool   `json:"allow_unicode"`
}

// FieldService runs codec operations by field name.
type FieldService struct {
	registry RegistrySource
	logger   *slog.Logger
}

// NewFieldService creates a new field service.
func NewFieldService(registry RegistrySource, logger *slog.Logger) *FieldService {
	return &FieldService{
		registry: registry,
		logger:   logger,
	}
}

// Fields lists every field in name order.
func (s *FieldService) Fields() []FieldInfo {
	fields := s.registry.Registry().Fields()
	out := make([]FieldInfo, len(fields))
	for i, f := range fields {
		cfg := f.Config()
		out[i] = FieldInfo{
			Name:         f.Name(),
			Kind:         string(f.Kind()),
			Separator:    string(cfg.Separator()),
			MaxLength:    cfg.MaxLength(),
			AllowUnicode: cfg.AllowUnicode(),
		}
	}
	return out
}

// Parse reads a stored representation.
func (s *FieldService) Parse(name string, stored sql.NullString) (codec.Value, error) {
	f, err := s.registry.Registry().Get(name)
	if err != nil {
		return codec.Value{}, err
	}
	v, err := f.ParseText(stored)
	if err != nil {
		return codec.Value{}, fieldError(name, err)
	}
	return v, nil
}

// Normalize validates raw input.
func (s *FieldService) Normalize(name string, raw sql.NullString) (codec.Value, error) {
	f, err := s.registry.Registry().Get(name)
	if err != nil {
		return codec.Value{}, err
	}
	v, err := f.NormalizeText(raw)
	if err != nil {
		return codec.Value{}, fieldError(name, err)
	}
	return v, nil
}

// Serialize normalizes raw input and returns what would be stored. Slug
// defaults are computed against the current data without a write lock, so
// the result is a preview.
func (s *FieldService) Serialize(ctx context.Context, name string, raw sql.NullString) (sql.NullString, error) {
	f, err := s.registry.Registry().Get(name)
	if err != nil {
		return sql.NullString{}, err
	}
	stored, err := f.SerializeText(ctx, raw)
	if err != nil {
		return sql.NullString{}, fieldError(name, err)
	}
	s.logger.Debug("field serialized", "field", name, "null", !stored.Valid)
	return stored, nil
}
