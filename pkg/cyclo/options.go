package cyclo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrUnknownOption is returned when an option name is not recognized.
var ErrUnknownOption = errors.New("unknown cyclo option")

// Option names a rule that can be switched on for a computation.
type Option string

const (
	// IgnoreBooleanPaths stops short-circuit operators and multi-value case
	// labels from adding decision points.
	IgnoreBooleanPaths Option = "ignore_boolean_paths"

	// ConsiderAssert counts assert statements as an if that throws.
	ConsiderAssert Option = "consider_assert"
)

// AllOptions lists every recognized option.
var AllOptions = []Option{IgnoreBooleanPaths, ConsiderAssert}

// ParseOption maps a user supplied name to an Option. Snake case, kebab case
// and camel case spellings are accepted ("ignore-boolean-paths",
// "ignoreBooleanPaths").
func ParseOption(name string) (Option, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	switch norm {
	case "ignorebooleanpaths":
		return IgnoreBooleanPaths, nil
	case "considerassert":
		return ConsiderAssert, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
}

// Options selects which optional counting rules are active. The zero value
// is not the default: use DefaultOptions or NewOptions.
type Options struct {
	booleanPaths bool
	assert       bool
}

// NewOptions builds an immutable option set. Flags that are not given are
// off, so NewOptions() counts boolean paths and ignores asserts.
func NewOptions(flags ...Option) Options {
	o := Options{booleanPaths: true}
	for _, f := range flags {
		switch f {
		case IgnoreBooleanPaths:
			o.booleanPaths = false
		case ConsiderAssert:
			o.assert = true
		}
	}
	return o
}

// DefaultOptions returns the option set used when nothing is configured.
func DefaultOptions() Options {
	return NewOptions()
}

// ConsiderBooleanPaths reports whether && and || add decision points and
// case labels count once per value.
func (o Options) ConsiderBooleanPaths() bool { return o.booleanPaths }

// ConsiderAssert reports whether assert statements add decision points.
func (o Options) ConsiderAssert() bool { return o.assert }

// Flags returns the options that were switched on, in AllOptions order.
func (o Options) Flags() []Option {
	var flags []Option
	if !o.booleanPaths {
		flags = append(flags, IgnoreBooleanPaths)
	}
	if o.assert {
		flags = append(flags, ConsiderAssert)
	}
	return flags
}

// String renders the active flags, or "default".
func (o Options) String() string {
	flags := o.Flags()
	if len(flags) == 0 {
		return "default"
	}
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = string(f)
	}
	return strings.Join(names, ",")
}

// Fingerprint identifies the option set, for use in cache keys.
func (o Options) Fingerprint() uint64 {
	return xxhash.Sum64String("cyclo:" + o.String())
}
