package codec

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/nyaruka/phonenumbers"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

// Phone is a phone number. A parsed number holds its E.164 form; a number
// loaded permissively from malformed storage holds only the original text.
type Phone struct {
	e164 string
	raw  string
}

// IsZero reports whether no number is present.
func (p Phone) IsZero() bool {
	return p.e164 == "" && p.raw == ""
}

// Valid reports whether the number was parsed into E.164 form.
func (p Phone) Valid() bool {
	return p.e164 != ""
}

// E164 returns the canonical form, or "" when the number is not valid.
func (p Phone) E164() string {
	return p.e164
}

// String returns the E.164 form, or the unparsed text for an invalid number.
func (p Phone) String() string {
	if p.e164 != "" {
		return p.e164
	}
	return p.raw
}

// PhoneFormat selects a display style for PhoneCodec.Format.
type PhoneFormat int

// Display styles.
const (
	PhoneE164 PhoneFormat = iota
	PhoneInternational
	PhoneNational
)

// PhoneOptions configures a PhoneCodec.
type PhoneOptions struct {
	// Region is the ISO 3166-1 alpha-2 region assumed for numbers written
	// without a leading "+". Empty means every number must be international.
	Region string

	// StrictLoad makes Parse fail with a format error on malformed stored
	// text instead of returning the text unparsed.
	StrictLoad bool

	// Logger receives a debug record for every permissive load. Optional.
	Logger *slog.Logger
}

// phoneSpec is the validated shape of PhoneOptions.
type phoneSpec struct {
	Region string `json:"region" validate:"omitempty,len=2,alpha,uppercase"`
}

// PhoneCodec converts between Phone and E.164 text.
type PhoneCodec struct {
	cfg        Config
	region     string
	strictLoad bool
	logger     *slog.Logger
}

var _ Codec[Phone] = (*PhoneCodec)(nil)

// NewPhone creates a phone codec. It fails when the region is not one the
// numbering metadata knows about.
func NewPhone(cfg Config, opts PhoneOptions) (*PhoneCodec, error) {
	if err := configValidator.Validate(phoneSpec{Region: opts.Region}); err != nil {
		return nil, err
	}
	if opts.Region != "" && phonenumbers.GetCountryCodeForRegion(opts.Region) == 0 {
		return nil, domainerrors.Validationf("unknown phone region %q", opts.Region)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &PhoneCodec{
		cfg:        cfg.orDefault(),
		region:     opts.Region,
		strictLoad: opts.StrictLoad,
		logger:     logger,
	}, nil
}

// Kind implements Codec.
func (c *PhoneCodec) Kind() Kind { return KindPhone }

// Config implements Codec.
func (c *PhoneCodec) Config() Config { return c.cfg }

// Region returns the default region, or "" when numbers must be international.
func (c *PhoneCodec) Region() string { return c.region }

// StrictLoad reports whether Parse rejects malformed stored text.
func (c *PhoneCodec) StrictLoad() bool { return c.strictLoad }

// Parse reads a stored number. NULL and blank text yield the zero Phone.
//
// Malformed text is returned unparsed rather than rejected, unless the codec
// was built with StrictLoad. Serialize still rejects such a value, so a bad
// row can be read and corrected but not written back as is.
func (c *PhoneCodec) Parse(stored sql.NullString) (Phone, error) {
	if !stored.Valid || strings.TrimSpace(stored.String) == "" {
		return Phone{}, nil
	}

	p, err := c.parseNumber(stored.String)
	if err == nil {
		return p, nil
	}
	if c.strictLoad {
		return Phone{}, domainerrors.Formatf("stored phone number %q is malformed", stored.String).
			WithCause(domainerrors.Unwrap(err))
	}

	c.logger.Debug("keeping unparseable stored phone number",
		"value", stored.String,
		"error", err,
	)
	return Phone{raw: stored.String}, nil
}

// Normalize accepts text or a Phone. Text must be a valid number.
func (c *PhoneCodec) Normalize(in Input[Phone]) (Phone, error) {
	return resolve(in, inputCases[Phone]{
		null: func() (Phone, error) {
			return Phone{}, nil
		},
		raw: func(s string) (Phone, error) {
			if strings.TrimSpace(s) == "" {
				return Phone{}, nil
			}
			return c.parseNumber(s)
		},
		structured: func(v Phone) (Phone, error) {
			return v, nil
		},
	})
}

// Serialize returns the E.164 form, NULL for the zero Phone, or a validation
// error when the number cannot be parsed.
func (c *PhoneCodec) Serialize(_ context.Context, v Phone) (sql.NullString, error) {
	if v.IsZero() {
		return null, nil
	}

	if !v.Valid() {
		parsed, err := c.parseNumber(v.raw)
		if err != nil {
			return null, err
		}
		v = parsed
	}

	if c.cfg.exceeds(v.e164) {
		return null, domainerrors.Validationf("phone number exceeds %d characters", c.cfg.maxLength)
	}
	return text(v.e164), nil
}

// Format renders a number for display. Invalid numbers render as their raw text.
func (c *PhoneCodec) Format(p Phone, style PhoneFormat) string {
	if !p.Valid() || style == PhoneE164 {
		return p.String()
	}

	num, err := phonenumbers.Parse(p.e164, "")
	if err != nil {
		return p.e164
	}

	switch style {
	case PhoneInternational:
		return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
	case PhoneNational:
		return phonenumbers.Format(num, phonenumbers.NATIONAL)
	default:
		return p.e164
	}
}

// parseNumber parses and validates s, returning a validation error on failure.
func (c *PhoneCodec) parseNumber(s string) (Phone, error) {
	num, err := phonenumbers.Parse(s, c.region)
	if err != nil {
		return Phone{}, domainerrors.Validationf("%q is not a phone number", s).WithCause(err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return Phone{}, domainerrors.Validationf("%q is not a valid phone number", s)
	}
	return Phone{e164: phonenumbers.Format(num, phonenumbers.E164)}, nil
}
