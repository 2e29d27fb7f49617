package schema

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/listenupapp/fieldcodec/internal/codec"
)

// Deps are the collaborators fields may need.
type Deps struct {
	// Keys feeds highest-key slug defaults.
	Keys codec.KeySource
	// Logger receives permissive-load records from phone fields.
	Logger *slog.Logger
}

// Build creates a codec for every field.
func Build(s *Schema, deps Deps) (*codec.Registry, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fields := make([]codec.Field, 0, len(s.Fields))
	for _, def := range s.Fields {
		f, err := buildField(def, deps.Keys, logger)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", def.Name, err)
		}
		fields = append(fields, f)
	}
	return codec.NewRegistry(fields...)
}

func buildField(def FieldDef, keys codec.KeySource, logger *slog.Logger) (codec.Field, error) {
	sep := codec.DefaultSeparator
	if def.Separator != "" {
		sep, _ = utf8.DecodeRuneInString(def.Separator)
	}
	maxLength := def.MaxLength
	if maxLength == 0 {
		maxLength = codec.DefaultMaxLength
	}

	cfg, err := codec.NewConfig(sep, maxLength, def.AllowUnicode)
	if err != nil {
		return nil, err
	}

	switch def.Kind {
	case codec.KindIntList:
		return codec.NewIntListField(def.Name, codec.NewIntList(cfg)), nil

	case codec.KindPhone:
		c, err := codec.NewPhone(cfg, codec.PhoneOptions{
			Region:     def.Region,
			StrictLoad: def.StrictLoad,
			Logger:     logger.With("field", def.Name),
		})
		if err != nil {
			return nil, err
		}
		return codec.NewPhoneField(def.Name, c), nil

	case codec.KindSlug:
		policy := def.Default
		if policy == "" {
			policy = codec.DefaultHighestKey
		}
		c, err := codec.NewSlugWithPolicy(cfg, policy, keys)
		if err != nil {
			return nil, err
		}
		return codec.NewSlugField(def.Name, c), nil

	default:
		return nil, fmt.Errorf("unknown kind %q", def.Kind)
	}
}
