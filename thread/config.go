package thread

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Config holds the parameters shared by every thread variant.
// Variants embed it to gain the Parameters and Base methods.
type Config struct {
	Length     float64 // axial length of the thread
	Pitch      float64 // thread to thread distance
	StartCount int     // number of interleaved starts
	Radius     float64 // nominal major radius
	// Inner marks the thread as material to be cut from a host,
	// as in a nut, instead of added to it.
	Inner    bool
	LeftHand bool
}

// DefaultConfig returns the parameters used when none are given.
func DefaultConfig() Config {
	return Config{
		Length:     10,
		Pitch:      1,
		StartCount: 1,
		Radius:     3,
	}
}

// Parameters returns a copy of the configuration.
func (c *Config) Parameters() Config { return *c }

// Base returns the configuration for modification.
func (c *Config) Base() *Config { return c }

// Lead returns the axial advance per turn.
func (c Config) Lead() float64 { return float64(c.StartCount) * c.Pitch }

var errOutOfRange = errors.New("value out of range")

// Validate checks the configuration describes a buildable thread.
func (c Config) Validate() error {
	switch {
	case !(c.Length > 0):
		return &ParamError{Key: "length", Value: fmtFloat(c.Length), Err: errOutOfRange}
	case !(c.Pitch > 0):
		return &ParamError{Key: "pitch", Value: fmtFloat(c.Pitch), Err: errOutOfRange}
	case c.StartCount < 1:
		return &ParamError{Key: "start_count", Value: strconv.Itoa(c.StartCount), Err: errOutOfRange}
	case !(c.Radius > 0):
		return &ParamError{Key: "radius", Value: fmtFloat(c.Radius), Err: errOutOfRange}
	}
	return nil
}

// set parses value into the field named key. It reports false if key
// does not name a common parameter.
func (c *Config) set(key, value string) (bool, error) {
	var err error
	switch key {
	case "length":
		c.Length, err = strconv.ParseFloat(value, 64)
	case "pitch":
		c.Pitch, err = strconv.ParseFloat(value, 64)
	case "start_count":
		c.StartCount, err = strconv.Atoi(value)
	case "radius":
		c.Radius, err = strconv.ParseFloat(value, 64)
	case "inner":
		c.Inner, err = strconv.ParseBool(value)
	case "lefthand":
		c.LeftHand, err = strconv.ParseBool(value)
	default:
		return false, nil
	}
	return true, err
}

// ParamSetter is implemented by variants with parameters of their own.
type ParamSetter interface {
	// SetParam parses value into the variant parameter named key.
	// It reports false if the variant has no such parameter.
	SetParam(key, value string) (bool, error)
}

// Variant is a thread type whose parameters can be set by name.
type Variant interface {
	ProfileProvider
	ParamSetter
	Base() *Config
}

// ParseConfig sets the parameters of v from string values keyed by
// parameter name. Keys are applied in lexical order. A key that is
// neither a common parameter nor one accepted by v's SetParam yields
// an *UnknownParamError. On error v is left as it was before the call.
func ParseConfig(v Variant, params map[string]string) (err error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct {
		saved := reflect.New(rv.Elem().Type()).Elem()
		saved.Set(rv.Elem())
		defer func() {
			if err != nil {
				rv.Elem().Set(saved)
			}
		}()
	}
	for _, key := range slices.Sorted(maps.Keys(params)) {
		value := params[key]
		ok, err := v.Base().set(key, value)
		if !ok {
			ok, err = v.SetParam(key, value)
		}
		if !ok {
			return &UnknownParamError{Key: key, Variant: variantName(v)}
		}
		if err != nil {
			return &ParamError{Key: key, Value: value, Err: err}
		}
	}
	return v.Base().Validate()
}

func variantName(v any) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}

// UnknownParamError is returned when a parameter is not accepted
// by a thread variant.
type UnknownParamError struct {
	Key     string
	Variant string
}

func (e *UnknownParamError) Error() string {
	return fmt.Sprintf("thread: %s does not accept a %q parameter", e.Variant, e.Key)
}

// ParamError is returned when a parameter value can not be parsed
// or is out of range.
type ParamError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("thread: parameter %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
