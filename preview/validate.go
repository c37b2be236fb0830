package preview

import (
	"fmt"
	"unicode/utf8"
)

// Byte-mode capacity of a version 40 symbol per error-correction level.
const (
	CapacityLow      = 2953
	CapacityMedium   = 2331
	CapacityQuartile = 1663
	CapacityHigh     = 1273

	MaxCapacity = CapacityLow
)

// Capacity returns the byte-mode capacity for ecl, or 0 for an unknown level.
func Capacity(ecl ECL) int {
	switch ecl {
	case ECLLow:
		return CapacityLow
	case ECLMedium:
		return CapacityMedium
	case ECLQuartile:
		return CapacityQuartile
	case ECLHigh:
		return CapacityHigh
	}
	return 0
}

// ValidationResult is the outcome of validating content.
type ValidationResult struct {
	Valid  bool
	Reason string
}

func valid() ValidationResult { return ValidationResult{Valid: true} }

func invalid(format string, args ...any) ValidationResult {
	return ValidationResult{Reason: fmt.Sprintf(format, args...)}
}

// Validator checks content before any other stage runs. It is pure and
// safe for concurrent use.
type Validator struct {
	maxBytes int
}

// NewValidator creates a validator. A non-positive maxBytes uses MaxCapacity.
func NewValidator(maxBytes int) *Validator {
	if maxBytes <= 0 || maxBytes > MaxCapacity {
		maxBytes = MaxCapacity
	}
	return &Validator{maxBytes: maxBytes}
}

// MaxBytes returns the content length limit.
func (v *Validator) MaxBytes() int {
	return v.maxBytes
}

// Validate rejects empty content, content longer than the limit, invalid
// UTF-8 and control characters other than tab, newline and carriage return.
func (v *Validator) Validate(content string) ValidationResult {
	if content == "" {
		return invalid("content is empty")
	}
	if len(content) > v.maxBytes {
		return invalid("content is %d bytes, limit is %d", len(content), v.maxBytes)
	}
	if !utf8.ValidString(content) {
		return invalid("content is not valid UTF-8")
	}
	for i, r := range content {
		if (r < 0x20 && r != '\t' && r != '\n' && r != '\r') || r == 0x7f {
			return invalid("content has control character %U at byte %d", r, i)
		}
	}
	return valid()
}

// ValidateCapacity rejects content that does not fit a symbol at ecl.
func ValidateCapacity(content string, ecl ECL) ValidationResult {
	limit := Capacity(ecl)
	if limit == 0 {
		return invalid("unknown error correction level %q", ecl)
	}
	if len(content) > limit {
		return invalid("content is %d bytes, level %s holds at most %d", len(content), ecl, limit)
	}
	return valid()
}
