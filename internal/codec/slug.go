package codec

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	domainerrors "github.com/listenupapp/fieldcodec/internal/errors"
)

// Slug is a short URL-safe identifier.
type Slug string

// String implements fmt.Stringer.
func (s Slug) String() string { return string(s) }

// IsZero reports whether the slug is empty.
func (s Slug) IsZero() bool { return s == "" }

var (
	asciiSlugRe   = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	unicodeSlugRe = regexp.MustCompile(`^[-\p{L}\p{M}\p{N}_]+$`)

	// Characters dropped by Slugify, after lowercasing.
	asciiStripRe   = regexp.MustCompile(`[^a-z0-9_\s-]`)
	unicodeStripRe = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s-]`)

	// Runs of whitespace and dashes collapse to a single dash.
	dashSpaceRe = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts free text to a slug.
//
//	"Hello, World!"  -> "hello-world"
//	"  Crème Brûlée" -> "creme-brulee"
//	"Über straße"    -> "über-straße" (allowUnicode)
//
// Without allowUnicode, accented letters are decomposed and every remaining
// non-ASCII rune is dropped.
func Slugify(s string, allowUnicode bool) string {
	strip := asciiStripRe
	if allowUnicode {
		s = norm.NFKC.String(s)
		strip = unicodeStripRe
	} else {
		s, _, _ = transform.String(asciiFold(), s)
	}

	s = strings.ToLower(s)
	s = strip.ReplaceAllString(s, "")
	s = dashSpaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-_")
}

// asciiFold decomposes accented letters and drops non-ASCII runes.
// Chains carry state, so every call builds its own.
func asciiFold() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
}

// SlugCodec converts between Slug and its stored text.
type SlugCodec struct {
	cfg      Config
	defaults DefaultProvider
	policy   DefaultPolicy
	shape    *regexp.Regexp
}

var _ Codec[Slug] = (*SlugCodec)(nil)

// NewSlug creates a slug codec. defaults supplies the value written for an
// empty slug; it may be nil, in which case serializing an empty slug fails.
func NewSlug(cfg Config, defaults DefaultProvider) *SlugCodec {
	cfg = cfg.orDefault()
	shape := asciiSlugRe
	if cfg.allowUnicode {
		shape = unicodeSlugRe
	}
	return &SlugCodec{cfg: cfg, defaults: defaults, shape: shape}
}

// NewSlugWithPolicy creates a slug codec whose default follows policy,
// reading keys from src. The policy is kept so BindKeys can rebuild it.
func NewSlugWithPolicy(cfg Config, policy DefaultPolicy, src KeySource) (*SlugCodec, error) {
	defaults, err := policy.Provider(src)
	if err != nil {
		return nil, err
	}
	c := NewSlug(cfg, defaults)
	c.policy = policy
	return c, nil
}

// WithDefaults returns a copy of the codec using a different default provider.
// The copy has no policy.
func (c *SlugCodec) WithDefaults(defaults DefaultProvider) *SlugCodec {
	return &SlugCodec{cfg: c.cfg, defaults: defaults, shape: c.shape}
}

// Policy returns the default policy, or "" when the provider was supplied directly.
func (c *SlugCodec) Policy() DefaultPolicy { return c.policy }

// BindKeys returns a copy whose policy reads keys from src. Stores call it
// with a source scoped to their write transaction. A codec built without a
// policy is returned unchanged.
func (c *SlugCodec) BindKeys(src KeySource) (*SlugCodec, error) {
	if c.policy == "" {
		return c, nil
	}
	return NewSlugWithPolicy(c.cfg, c.policy, src)
}

// Kind implements Codec.
func (c *SlugCodec) Kind() Kind { return KindSlug }

// Config implements Codec.
func (c *SlugCodec) Config() Config { return c.cfg }

// Parse checks the stored slug's shape and length. NULL and "" yield the empty slug.
func (c *SlugCodec) Parse(stored sql.NullString) (Slug, error) {
	if !stored.Valid || stored.String == "" {
		return "", nil
	}
	if problem := c.check(stored.String); problem != "" {
		return "", domainerrors.Formatf("stored slug %q is malformed: %s", stored.String, problem)
	}
	return Slug(stored.String), nil
}

// Normalize checks raw text the way Parse checks stored text, reporting a
// ValidationError instead, and passes a Slug through unchanged. Blank text
// yields the empty slug, which Serialize replaces with a default.
// Free text belongs in FromText.
func (c *SlugCodec) Normalize(in Input[Slug]) (Slug, error) {
	return resolve(in, inputCases[Slug]{
		null: func() (Slug, error) {
			return "", nil
		},
		raw: func(s string) (Slug, error) {
			if strings.TrimSpace(s) == "" {
				return "", nil
			}
			if problem := c.check(s); problem != "" {
				return "", domainerrors.Validationf("slug %q is invalid: %s", s, problem)
			}
			return Slug(s), nil
		},
		structured: func(v Slug) (Slug, error) {
			return v, nil
		},
	})
}

// FromText slugifies free text such as a title. Blank text yields the empty slug.
func (c *SlugCodec) FromText(s string) (Slug, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	slug := Slugify(s, c.cfg.allowUnicode)
	if slug == "" {
		return "", domainerrors.Validationf("%q has no characters usable in a slug", s)
	}
	if c.cfg.exceeds(slug) {
		return "", domainerrors.Validationf("slug %q exceeds %d characters", slug, c.cfg.maxLength)
	}
	return Slug(slug), nil
}

// Serialize writes the slug unchanged, or the computed default when it is empty.
func (c *SlugCodec) Serialize(ctx context.Context, v Slug) (sql.NullString, error) {
	if v == "" {
		def, err := c.resolveDefault(ctx)
		if err != nil {
			return null, err
		}
		v = def
	}

	if problem := c.check(string(v)); problem != "" {
		return null, domainerrors.Validationf("slug %q is invalid: %s", v, problem)
	}
	return text(string(v)), nil
}

// resolveDefault asks the provider for a value and slugifies it.
func (c *SlugCodec) resolveDefault(ctx context.Context) (Slug, error) {
	if c.defaults == nil {
		return "", domainerrors.Validation("slug is empty and no default is configured")
	}

	raw, err := c.defaults.DefaultValue(ctx)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			return "", domainerrors.Validation("slug is empty and there is no existing record to derive a default from").
				WithCause(err)
		}
		return "", fmt.Errorf("compute default slug: %w", err)
	}

	slug := Slugify(raw, c.cfg.allowUnicode)
	if slug == "" {
		return "", domainerrors.Validationf("default value %q has no characters usable in a slug", raw)
	}
	return Slug(slug), nil
}

// check describes what is wrong with the slug's shape or length, or returns "".
func (c *SlugCodec) check(s string) string {
	if !c.shape.MatchString(s) {
		if c.cfg.allowUnicode {
			return "only letters, numbers, underscores or hyphens are allowed"
		}
		return "only ASCII letters, numbers, underscores or hyphens are allowed"
	}
	if c.cfg.exceeds(s) {
		return fmt.Sprintf("longer than %d characters", c.cfg.maxLength)
	}
	return ""
}
