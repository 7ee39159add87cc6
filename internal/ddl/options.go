package ddl

import (
	"fmt"
	"math"
)

// Option keys understood by the Table builder.
const (
	OptType          = "type"
	OptLength        = "length"
	OptSize          = "size" // alias of OptLength
	OptNullable      = "nullable"
	OptDefault       = "default"
	OptUnsigned      = "unsigned"
	OptAutoIncrement = "autoIncrement"
	OptPrimary       = "primary"
	OptUnique        = "unique"
	OptCollation     = "collation"
	optName          = "name"
)

type nullMarker struct{}

func (nullMarker) String() string { return "NULL" }

// Null is the explicit NULL default marker:
//
//	t.VarChar("nickname", ddl.Options{"default": ddl.Null})
//
// A present key holding an untyped nil means the same thing.
var Null = nullMarker{}

// Options is the option payload accepted by the builder methods. Keys are
// the Opt* constants; values are plain Go values (bool, int, string, ...),
// which keeps options decodable from JSON or YAML.
type Options map[string]any

// merged returns a new Options holding defaults overlaid with o. Caller
// values win on key collision and the "name" key is always dropped. When
// both "size" and "length" are given, "length" wins.
func (o Options) merged(defaults Options) Options {
	out := make(Options, len(defaults)+len(o))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range o {
		if k != OptSize {
			out[k] = v
		}
	}
	if v, ok := o[OptSize]; ok && !o.Has(OptLength) {
		out[OptLength] = v
	}
	delete(out, optName)
	return out
}

// Has reports whether key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Bool returns the bool value for key or def when key is absent. A present
// value of another type is an error.
func (o Options) Bool(key string, def bool) (bool, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, fmt.Errorf("%w: %s must be a bool, got %T", ErrInvalidOption, key, v)
	}
	return b, nil
}

// Int returns the integer value for key or def when key is absent. JSON
// numbers arrive as float64 and are accepted when they hold a whole number.
func (o Options) Int(key string, def int) (int, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return def, fmt.Errorf("%w: %s must be an integer, got %T(%v)", ErrInvalidOption, key, v, v)
}

// String returns the string value for key or def when key is absent.
func (o Options) String(key, def string) (string, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidOption, key, v)
	}
	return s, nil
}

// Default returns the DefaultValue described by the "default" key.
func (o Options) Default() DefaultValue {
	v, ok := o[OptDefault]
	if !ok {
		return DefaultValue{}
	}
	switch v.(type) {
	case nil, nullMarker:
		return NullDefault()
	}
	return LiteralDefault(v)
}
