// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Builtin type tags accepted in arg-spec strings.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeFloat   = "float"
	TypeBoolean = "boolean"
)

// CoerceFunc converts a raw token into a typed value.
type CoerceFunc func(raw string) (any, error)

type handlerKind int

const (
	handlerNone handlerKind = iota
	handlerFunc
	handlerRegexp
	handlerLiteral
)

// CoerceHandler is a closed variant over the three custom type handler
// shapes: a function, a regular expression, or a literal constant. The zero
// value is invalid; build handlers with CoerceWith, CoerceRegexp or
// CoerceLiteral.
type CoerceHandler struct {
	kind handlerKind
	fn   CoerceFunc
	re   *regexp.Regexp
	lit  any
}

// CoerceWith wraps a conversion function. A returned error or a panic is
// recorded as a node error and the raw string is kept.
func CoerceWith(fn CoerceFunc) CoerceHandler {
	return CoerceHandler{kind: handlerFunc, fn: fn}
}

// CoerceRegexp matches the raw token and yields the first capture group (or
// the whole match when the expression has no groups). On no match the rule's
// declared default is used if one exists, otherwise a match error is
// recorded.
func CoerceRegexp(re *regexp.Regexp) CoerceHandler {
	return CoerceHandler{kind: handlerRegexp, re: re}
}

// CoerceLiteral always yields the given constant regardless of input.
func CoerceLiteral(v any) CoerceHandler {
	return CoerceHandler{kind: handlerLiteral, lit: v}
}

func (h CoerceHandler) valid() bool { return h.kind != handlerNone }

// apply runs the handler over one raw token. def is the rule's declared
// default ("" when absent), consulted only by regexp handlers on no match.
func (h CoerceHandler) apply(raw, def string) (v any, err error) {
	switch h.kind {
	case handlerFunc:
		defer func() {
			if r := recover(); r != nil {
				v = raw
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		v, err = h.fn(raw)
		if err != nil {
			return raw, err
		}
		return v, nil
	case handlerRegexp:
		m := h.re.FindStringSubmatch(raw)
		if m == nil {
			if def != "" {
				return def, nil
			}
			return raw, fmt.Errorf("value does not match %s", h.re)
		}
		if len(m) > 1 {
			return m[1], nil
		}
		return m[0], nil
	case handlerLiteral:
		return h.lit, nil
	default:
		return raw, fmt.Errorf("unknown coercion handler")
	}
}

func isBuiltinType(typ string) bool {
	switch typ {
	case TypeString, TypeNumber, TypeFloat, TypeBoolean:
		return true
	}
	return false
}

// truthy implements the boolean coercion: a small set of affirmative
// strings map to true, everything else to false.
func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// boolLooking reports whether a token reads as a boolean literal. Used by
// the tokenizer to decide whether a boolean option may consume the next
// token instead of auto-supplying "true".
func boolLooking(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "0", "1", "yes", "no", "on", "off":
		return true
	}
	return false
}

func coerceBuiltin(typ, raw string) (any, error) {
	switch typ {
	case TypeNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return raw, err
		}
		return n, nil
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, err
		}
		return f, nil
	case TypeBoolean:
		return truthy(raw), nil
	default: // TypeString
		return raw, nil
	}
}

// coerceValue dispatches one raw token through the rule's type: builtin
// primitives directly, anything else through the custom handler table.
func coerceValue(rule ArgRule, raw, def string, ctypes map[string]CoerceHandler) (any, error) {
	if isBuiltinType(rule.Type) {
		return coerceBuiltin(rule.Type, raw)
	}
	h, ok := ctypes[rule.Type]
	if !ok || !h.valid() {
		return raw, fmt.Errorf("unknown coercion handler for type %q", rule.Type)
	}
	return h.apply(raw, def)
}
