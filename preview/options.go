package preview

import (
	"errors"
	"strconv"
	"strings"
)

// ECL is a QR error-correction level.
type ECL string

const (
	ECLLow      ECL = "L"
	ECLMedium   ECL = "M"
	ECLQuartile ECL = "Q"
	ECLHigh     ECL = "H"
)

// ParseECL parses a level letter, ignoring case and surrounding space.
func ParseECL(s string) (ECL, bool) {
	switch ECL(strings.ToUpper(strings.TrimSpace(s))) {
	case ECLLow:
		return ECLLow, true
	case ECLMedium:
		return ECLMedium, true
	case ECLQuartile:
		return ECLQuartile, true
	case ECLHigh:
		return ECLHigh, true
	}
	return "", false
}

// Format is the output format of a preview.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat parses an output format, ignoring case and surrounding space.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, true
	case FormatPNG:
		return FormatPNG, true
	}
	return "", false
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Color is a six digit lowercase hex RGB color without a leading '#'.
type Color string

const (
	DefaultDark  Color = "000000"
	DefaultLight Color = "ffffff"
)

// ParseColor accepts "rrggbb", "rgb" and either with a leading '#'.
func ParseColor(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if !isHex(s[i]) {
			return "", false
		}
	}
	return Color(strings.ToLower(s)), true
}

// RGB returns the color's channels. Invalid colors yield black.
func (c Color) RGB() (r, g, b uint8) {
	v, err := strconv.ParseUint(string(c), 16, 32)
	if err != nil || len(c) != 6 {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// RawOptions are rendering options as received, keyed by query parameter.
type RawOptions map[string]string

// Option keys recognized in RawOptions.
const (
	OptECL    = "ecl"
	OptMargin = "margin"
	OptWidth  = "width"
	OptDark   = "dark"
	OptLight  = "light"
	OptFormat = "format"
)

// RenderOptions is the canonical, fully defaulted rendering configuration.
// Values are comparable with ==.
type RenderOptions struct {
	ErrorCorrection ECL
	Margin          int
	Width           int
	Dark            Color
	Light           Color
	Format          Format
}

// DefaultOptions returns the options used for absent or invalid fields.
func DefaultOptions() RenderOptions {
	return RenderOptions{
		ErrorCorrection: ECLMedium,
		Margin:          4,
		Width:           256,
		Dark:            DefaultDark,
		Light:           DefaultLight,
		Format:          FormatSVG,
	}
}

// Canonical serializes the options in struct field order. It is the
// option half of the cache key.
func (o RenderOptions) Canonical() []byte {
	b := make([]byte, 0, 64)
	b = append(b, "ecl="...)
	b = append(b, o.ErrorCorrection...)
	b = append(b, ";margin="...)
	b = strconv.AppendInt(b, int64(o.Margin), 10)
	b = append(b, ";width="...)
	b = strconv.AppendInt(b, int64(o.Width), 10)
	b = append(b, ";dark="...)
	b = append(b, o.Dark...)
	b = append(b, ";light="...)
	b = append(b, o.Light...)
	b = append(b, ";format="...)
	b = append(b, o.Format...)
	return b
}

// String returns the canonical serialization.
func (o RenderOptions) String() string {
	return string(o.Canonical())
}

// Limits bounds what a single request may cost.
type Limits struct {
	// MaxContentBytes caps the content length in bytes.
	// Default: 2953 (byte-mode capacity of a version 40-L symbol)
	MaxContentBytes int

	// MinWidth and MaxWidth clamp the requested width.
	// Defaults: 32 and 2048
	MinWidth int
	MaxWidth int

	// MaxMargin clamps the quiet zone, in modules.
	// Default: 64 (zero or negative uses the default)
	MaxMargin int
}

// DefaultLimits returns the default request limits.
func DefaultLimits() Limits {
	return Limits{
		MaxContentBytes: MaxCapacity,
		MinWidth:        32,
		MaxWidth:        2048,
		MaxMargin:       64,
	}
}

// WithDefaults fills zero or inconsistent fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxContentBytes <= 0 {
		l.MaxContentBytes = d.MaxContentBytes
	}
	if l.MinWidth <= 0 {
		l.MinWidth = d.MinWidth
	}
	if l.MaxWidth <= 0 {
		l.MaxWidth = d.MaxWidth
	}
	if l.MaxWidth < l.MinWidth {
		l.MaxWidth = l.MinWidth
	}
	if l.MaxMargin <= 0 {
		l.MaxMargin = d.MaxMargin
	}
	return l
}

// Normalizer maps RawOptions to RenderOptions. It is total: every input,
// however malformed, yields valid options.
type Normalizer struct {
	defaults RenderOptions
	limits   Limits
}

// NewNormalizer creates a normalizer. The defaults are themselves
// normalized: empty fields and a non-positive width take DefaultOptions
// values, and out-of-range numbers are clamped. Margin is taken as given,
// so callers should start from DefaultOptions.
func NewNormalizer(defaults RenderOptions, limits Limits) *Normalizer {
	n := &Normalizer{defaults: DefaultOptions(), limits: limits.WithDefaults()}

	raw := RawOptions{
		OptECL:    string(defaults.ErrorCorrection),
		OptMargin: strconv.Itoa(defaults.Margin),
		OptDark:   string(defaults.Dark),
		OptLight:  string(defaults.Light),
		OptFormat: string(defaults.Format),
	}
	if defaults.Width > 0 {
		raw[OptWidth] = strconv.Itoa(defaults.Width)
	}
	n.defaults = n.Normalize(raw)
	n.defaults.Width = clamp(n.defaults.Width, n.limits.MinWidth, n.limits.MaxWidth)
	return n
}

// Defaults returns the effective default options.
func (n *Normalizer) Defaults() RenderOptions {
	return n.defaults
}

// Limits returns the effective limits.
func (n *Normalizer) Limits() Limits {
	return n.limits
}

// Normalize canonicalizes raw. Each field is handled independently.
func (n *Normalizer) Normalize(raw RawOptions) RenderOptions {
	opts := n.defaults

	if v, ok := raw[OptECL]; ok {
		if ecl, ok := ParseECL(v); ok {
			opts.ErrorCorrection = ecl
		}
	}
	if v, ok := raw[OptFormat]; ok {
		if f, ok := ParseFormat(v); ok {
			opts.Format = f
		}
	}
	if v, ok := raw[OptDark]; ok {
		if c, ok := ParseColor(v); ok {
			opts.Dark = c
		}
	}
	if v, ok := raw[OptLight]; ok {
		if c, ok := ParseColor(v); ok {
			opts.Light = c
		}
	}
	if v, ok := parseInt(raw, OptMargin); ok {
		opts.Margin = clamp(v, 0, n.limits.MaxMargin)
	}
	if v, ok := parseInt(raw, OptWidth); ok {
		opts.Width = clamp(v, n.limits.MinWidth, n.limits.MaxWidth)
	}

	return opts
}

// parseInt reads an integer option. Values too large for int are
// returned saturated so they clamp instead of falling back to defaults.
func parseInt(raw RawOptions, key string) (int, bool) {
	s, ok := raw[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
