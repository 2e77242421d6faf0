// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unbounded marks a variadic slot with no upper count.
const Unbounded = math.MaxInt

// ArgRule is one compiled argument slot of a command or option.
type ArgRule struct {
	Name     string // optional declared name; "" for unnamed slots
	Type     string // builtin primitive or custom type key
	Required bool
	Variadic bool
	Min      int // valid when Variadic
	Max      int // valid when Variadic; Unbounded for no cap
}

// ArgSpec is the ordered rule list compiled from one arg-spec string, plus
// the counts derived from it.
type ArgSpec struct {
	Rules      []ArgRule
	NeedArgs   int // sum of required minima
	ExpectArgs int // count of non-variadic slots
}

// MaxArgs returns the total token capacity, Unbounded when the trailing
// slot is open ended.
func (s *ArgSpec) MaxArgs() int {
	if s == nil {
		return 0
	}
	n := s.ExpectArgs
	if v := s.variadic(); v != nil {
		if v.Max == Unbounded {
			return Unbounded
		}
		n += v.Max
	}
	return n
}

// MinArgs returns the required token minimum.
func (s *ArgSpec) MinArgs() int {
	if s == nil {
		return 0
	}
	return s.NeedArgs
}

func (s *ArgSpec) variadic() *ArgRule {
	if s == nil || len(s.Rules) == 0 {
		return nil
	}
	last := &s.Rules[len(s.Rules)-1]
	if last.Variadic {
		return last
	}
	return nil
}

// Usage renders the spec back into its bracket form for help output.
func (s *ArgSpec) Usage() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		var b strings.Builder
		if r.Name != "" {
			b.WriteString(r.Name)
		}
		if r.Type != TypeString {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(r.Type)
		}
		if r.Variadic {
			b.WriteString("..")
			if !(r.Min == 0 && r.Max == Unbounded) {
				b.WriteString(strconv.Itoa(r.Min))
				if r.Max == Unbounded {
					b.WriteByte(',')
				} else if r.Max != r.Min {
					b.WriteString("," + strconv.Itoa(r.Max))
				}
			}
		}
		body := b.String()
		if r.Required {
			parts = append(parts, "<"+body+">")
		} else {
			parts = append(parts, "["+body+"]")
		}
	}
	return strings.Join(parts, " ")
}

var (
	specTokenRe = regexp.MustCompile(`([<\[])([^<>\[\]]*)([>\]])`)
	specBodyRe  = regexp.MustCompile(`^(?:([A-Za-z0-9_][\w-]*)\s+)?([A-Za-z_][\w-]*)?(\.\.(\d+)?(,(\d+|Inf)?)?)?$`)
)

// CompileArgSpec compiles one arg-spec string into an ArgSpec. customTypes
// supplies the extra type keys a token may name; a nil map allows builtins
// only. Violations of the grammar rules return a configuration error naming
// the offending token.
func CompileArgSpec(spec string, customTypes map[string]CoerceHandler) (*ArgSpec, error) {
	out := &ArgSpec{}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return out, nil
	}

	matches := specTokenRe.FindAllStringSubmatchIndex(spec, -1)
	// everything outside bracket tokens must be whitespace
	prev := 0
	for _, m := range matches {
		if strings.TrimSpace(spec[prev:m[0]]) != "" {
			return nil, fmt.Errorf("%w: stray text %q in %q", ErrBadArgSpec, spec[prev:m[0]], spec)
		}
		prev = m[1]
	}
	if len(matches) == 0 || strings.TrimSpace(spec[prev:]) != "" {
		return nil, fmt.Errorf("%w: %q", ErrBadArgSpec, spec)
	}

	seenOptional := false
	for _, m := range matches {
		tok := spec[m[0]:m[1]]
		open, body, closing := spec[m[2]:m[3]], strings.TrimSpace(spec[m[4]:m[5]]), spec[m[6]:m[7]]
		if (open == "<") != (closing == ">") {
			return nil, fmt.Errorf("%w: mismatched brackets in %q", ErrBadArgSpec, tok)
		}

		rule, err := compileRule(body, open == "<", customTypes)
		if err != nil {
			return nil, fmt.Errorf("%w in token %q", err, tok)
		}

		if v := out.variadic(); v != nil {
			return nil, fmt.Errorf("%w: variadic must be the final token, got %q after it", ErrBadArgSpec, tok)
		}
		if rule.Required && seenOptional {
			return nil, fmt.Errorf("%w: required token %q after an optional one", ErrBadArgSpec, tok)
		}
		if !rule.Required {
			seenOptional = true
		}

		out.Rules = append(out.Rules, rule)
		if rule.Variadic {
			if rule.Required {
				out.NeedArgs += rule.Min
			}
		} else {
			out.ExpectArgs++
			if rule.Required {
				out.NeedArgs++
			}
		}
	}
	return out, nil
}

func compileRule(body string, required bool, customTypes map[string]CoerceHandler) (ArgRule, error) {
	m := specBodyRe.FindStringSubmatch(body)
	if m == nil {
		return ArgRule{}, ErrBadArgSpec
	}
	name, typ, dots, minStr, commaPart, maxStr := m[1], m[2], m[3], m[4], m[5], m[6]

	// A lone word is the slot name unless it names a known type, in which
	// case it is an unnamed typed slot.
	if name == "" && typ != "" && !isKnownType(typ, customTypes) {
		name, typ = typ, ""
	}
	if typ == "" {
		typ = TypeString
	}
	if !isKnownType(typ, customTypes) {
		return ArgRule{}, fmt.Errorf("%w: %q", ErrUnknownArgType, typ)
	}
	if h, ok := customTypes[typ]; ok && !h.valid() {
		return ArgRule{}, fmt.Errorf("%w for type %q", ErrBadHandler, typ)
	}

	rule := ArgRule{Name: name, Type: typ, Required: required}
	if dots == "" {
		return rule, nil
	}

	rule.Variadic = true
	if minStr != "" {
		n, err := strconv.Atoi(minStr)
		if err != nil {
			return ArgRule{}, fmt.Errorf("%w: bad count %q", ErrBadArgSpec, minStr)
		}
		rule.Min = n
	}
	switch {
	case commaPart == "":
		if minStr == "" { // ".." = 0..Inf
			rule.Max = Unbounded
		} else { // "..N" = exactly N
			rule.Max = rule.Min
		}
	case maxStr == "" || maxStr == "Inf": // "..N," and "..N,Inf" = N..Inf
		rule.Max = Unbounded
	default: // "..N,M" and "..,M"; the min defaults to 0
		x, err := strconv.Atoi(maxStr)
		if err != nil || x < rule.Min {
			return ArgRule{}, fmt.Errorf("%w: bad range %q", ErrBadArgSpec, dots)
		}
		rule.Max = x
	}
	return rule, nil
}

func isKnownType(typ string, customTypes map[string]CoerceHandler) bool {
	if isBuiltinType(typ) {
		return true
	}
	_, ok := customTypes[typ]
	return ok
}
