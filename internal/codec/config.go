package codec

import (
	"unicode/utf8"

	"github.com/listenupapp/fieldcodec/internal/validation"
)

// Default configuration values.
const (
	DefaultSeparator = ','
	DefaultMaxLength = 255
)

//nolint:gochecknoglobals // validator instances are safe for concurrent use
var configValidator = validation.New()

// Config is the immutable per-field configuration shared by all codec kinds.
// Build one with NewConfig; codecs treat the zero Config as DefaultConfig.
type Config struct {
	separator    rune
	maxLength    int
	allowUnicode bool
}

// configSpec is the validated, exported shape of Config.
type configSpec struct {
	Separator string `json:"separator" validate:"len=1,excludesall=0123456789+-"`
	MaxLength int    `json:"max_length" validate:"gte=1,lte=65535"`
}

// NewConfig validates and returns a configuration.
// The separator may not be a digit or a sign, since list tokens use those.
func NewConfig(separator rune, maxLength int, allowUnicode bool) (Config, error) {
	spec := configSpec{MaxLength: maxLength}
	if separator != 0 && separator != utf8.RuneError {
		spec.Separator = string(separator)
	}
	if err := configValidator.Validate(spec); err != nil {
		return Config{}, err
	}
	return Config{
		separator:    separator,
		maxLength:    maxLength,
		allowUnicode: allowUnicode,
	}, nil
}

// MustConfig is like NewConfig but panics on an invalid configuration.
func MustConfig(separator rune, maxLength int, allowUnicode bool) Config {
	cfg, err := NewConfig(separator, maxLength, allowUnicode)
	if err != nil {
		panic(err)
	}
	return cfg
}

// DefaultConfig returns a comma separator, a 255 character limit and ASCII-only slugs.
func DefaultConfig() Config {
	return Config{
		separator:    DefaultSeparator,
		maxLength:    DefaultMaxLength,
		allowUnicode: false,
	}
}

// Separator returns the list separator.
func (c Config) Separator() rune { return c.separator }

// MaxLength returns the maximum stored length in characters.
func (c Config) MaxLength() int { return c.maxLength }

// AllowUnicode reports whether slugs may contain non-ASCII letters.
func (c Config) AllowUnicode() bool { return c.allowUnicode }

// orDefault substitutes DefaultConfig for the zero Config.
func (c Config) orDefault() Config {
	if c == (Config{}) {
		return DefaultConfig()
	}
	return c
}

// exceeds reports whether s is longer than the configured maximum.
func (c Config) exceeds(s string) bool {
	return utf8.RuneCountInString(s) > c.maxLength
}
