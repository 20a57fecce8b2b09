package document

import (
	"fmt"
	"strconv"
	"strings"
)

// InheritText is the textual form of the Inherit sentinel.
const InheritText = "inherit"

// Dimension is a width or height: either Inherit or a pixel count.
// Dimension is an immutable value type. The zero value is Inherit.
type Dimension struct {
	px    int
	fixed bool
}

// Inherit lets the surrounding layout decide the size.
var Inherit = Dimension{}

// Pixels returns a fixed pixel dimension.
// Negative values are clamped to zero; use ParseDimension to reject them.
func Pixels(n int) Dimension {
	if n < 0 {
		n = 0
	}
	return Dimension{px: n, fixed: true}
}

// IsInherit returns true if the dimension is the Inherit sentinel.
func (d Dimension) IsInherit() bool {
	return !d.fixed
}

// Px returns the pixel count. It returns 0 for Inherit.
func (d Dimension) Px() int {
	return d.px
}

// Or returns the pixel count, or fallback when the dimension is Inherit.
func (d Dimension) Or(fallback int) int {
	if d.fixed {
		return d.px
	}
	return fallback
}

// String returns "inherit" or the decimal pixel count.
func (d Dimension) String() string {
	if !d.fixed {
		return InheritText
	}
	return strconv.Itoa(d.px)
}

// Value returns the dimension as a plain value suitable for encoders:
// the string "inherit" or an int64 pixel count.
func (d Dimension) Value() any {
	if !d.fixed {
		return InheritText
	}
	return int64(d.px)
}

// ParseDimension parses "inherit" or a non-negative decimal pixel count.
// An optional "px" suffix is accepted.
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, InheritText) {
		return Inherit, nil
	}
	s = strings.TrimSuffix(s, "px")
	n, err := strconv.Atoi(s)
	if err != nil {
		return Inherit, fmt.Errorf("%w: %q", ErrInvalidDimension, s)
	}
	if n < 0 {
		return Inherit, fmt.Errorf("%w: negative value %d", ErrInvalidDimension, n)
	}
	return Pixels(n), nil
}

// DimensionFromValue converts a decoded YAML/TOML value into a Dimension.
// A nil value is Inherit.
func DimensionFromValue(v any) (Dimension, error) {
	switch x := v.(type) {
	case nil:
		return Inherit, nil
	case string:
		return ParseDimension(x)
	case int:
		return intDimension(int64(x))
	case int64:
		return intDimension(x)
	case uint64:
		return intDimension(int64(x))
	case float64:
		if x != float64(int64(x)) {
			return Inherit, fmt.Errorf("%w: fractional value %v", ErrInvalidDimension, x)
		}
		return intDimension(int64(x))
	default:
		return Inherit, fmt.Errorf("%w: unsupported type %T", ErrInvalidDimension, v)
	}
}

func intDimension(n int64) (Dimension, error) {
	if n < 0 {
		return Inherit, fmt.Errorf("%w: negative value %d", ErrInvalidDimension, n)
	}
	return Pixels(int(n)), nil
}
