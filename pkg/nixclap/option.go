// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"fmt"
	"sort"
)

// OptionSpec is the raw option declaration supplied by the host.
type OptionSpec struct {
	// Alias lists alternative names, typically single-character shorts.
	Alias []string
	// Desc is the one-line description used by help renderers.
	Desc string
	// Args is the arg-spec string declaring the option's value slots.
	// Empty means a boolean flag.
	Args string
	// ArgDefault supplies raw default values, one per slot, coerced through
	// the same pipeline as CLI values.
	ArgDefault []string
	// CustomTypes maps extra type keys usable in Args to their handlers.
	CustomTypes map[string]CoerceHandler
	// Required makes a parse without this option record a
	// missing-required-options error on the root.
	Required bool
	// Counting makes bare repetitions tally (-v -v -v = 3) instead of
	// gathering values.
	Counting bool
}

// Option is one compiled option bound to its owning command scope.
type Option struct {
	Name    string
	Aliases []string
	Desc    string
	Args    *ArgSpec
	Spec    OptionSpec

	ctypes map[string]CoerceHandler
	owner  *Command // scope back-reference for bubbling diagnostics
}

// Boolean reports whether the option gathers no value tokens: either no
// slots at all or a single boolean slot.
func (o *Option) Boolean() bool {
	if o.Spec.Counting || len(o.Args.Rules) == 0 {
		return true
	}
	return len(o.Args.Rules) == 1 && !o.Args.Rules[0].Variadic && o.Args.Rules[0].Type == TypeBoolean
}

// Owner returns the command scope the option was declared on.
func (o *Option) Owner() *Command { return o.owner }

// OptionRegistry holds the compiled options of one command scope with a
// canonical-name and alias lookup table.
type OptionRegistry struct {
	owner   *Command
	options map[string]*Option // canonical name -> option
	alias   map[string]string  // alias -> canonical name
}

func newOptionRegistry(owner *Command, specs map[string]OptionSpec) (*OptionRegistry, error) {
	r := &OptionRegistry{
		owner:   owner,
		options: make(map[string]*Option, len(specs)),
		alias:   make(map[string]string),
	}
	// deterministic order so collision errors are stable
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := specs[name]
		args, err := CompileArgSpec(spec.Args, spec.CustomTypes)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", name, err)
		}
		opt := &Option{
			Name:    name,
			Aliases: spec.Alias,
			Desc:    spec.Desc,
			Args:    args,
			Spec:    spec,
			ctypes:  spec.CustomTypes,
			owner:   owner,
		}
		if err := r.add(opt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *OptionRegistry) add(opt *Option) error {
	if r.taken(opt.Name) {
		return fmt.Errorf("%w: option %q in command %q", ErrNameCollision, opt.Name, r.owner.Name)
	}
	r.options[opt.Name] = opt
	for _, a := range opt.Aliases {
		if r.taken(a) {
			return fmt.Errorf("%w: option alias %q of %q in command %q", ErrNameCollision, a, opt.Name, r.owner.Name)
		}
		r.alias[a] = opt.Name
	}
	return nil
}

func (r *OptionRegistry) taken(name string) bool {
	if _, ok := r.options[name]; ok {
		return true
	}
	_, ok := r.alias[name]
	return ok
}

// Match resolves a token against canonical names and aliases.
func (r *OptionRegistry) Match(token string) (*Option, bool) {
	if r == nil {
		return nil, false
	}
	if opt, ok := r.options[token]; ok {
		return opt, true
	}
	if canon, ok := r.alias[token]; ok {
		return r.options[canon], true
	}
	return nil, false
}

// Options returns the registry's options sorted by canonical name.
func (r *OptionRegistry) Options() []*Option {
	if r == nil {
		return nil
	}
	out := make([]*Option, 0, len(r.options))
	for _, opt := range r.options {
		out = append(out, opt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
