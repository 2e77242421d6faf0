// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"context"
	"fmt"
	"sort"
)

// ExecFunc is a command's execution callback. It receives the finished
// command node; the node must be treated as read-only.
type ExecFunc func(ctx context.Context, node *CommandNode) error

// CommandSpec is the raw command declaration supplied by the host.
type CommandSpec struct {
	Alias       []string
	Desc        string
	Args        string
	ArgDefault  []string
	CustomTypes map[string]CoerceHandler
	Options     map[string]OptionSpec
	SubCommands map[string]CommandSpec
	Exec        ExecFunc
	// AllowUnknownOption overrides Config.AllowUnknownOption for this
	// scope when non-nil.
	AllowUnknownOption *bool
}

// Command is one compiled command scope in the immutable tree.
type Command struct {
	Name    string
	Aliases []string
	Desc    string
	Args    *ArgSpec
	Exec    ExecFunc

	spec     CommandSpec
	ctypes   map[string]CoerceHandler
	parent   *Command
	opts     *OptionRegistry
	subs     map[string]*Command
	subAlias map[string]string
	cc       *NixClap
}

// Config carries cross-cutting knobs for a compiled declaration tree.
type Config struct {
	// Name is the program name used for the root command.
	Name string
	// AllowUnknownOption tolerates unmatched option tokens everywhere a
	// scope does not override it.
	AllowUnknownOption bool
	// DupOverride lets a descendant scope redeclare an ancestor's option
	// name or alias; the nearer scope then wins during resolution. Without
	// it such a redeclaration is a configuration error.
	DupOverride bool
	// Handlers are invoked directly as parse events occur.
	Handlers Handlers
}

// NixClap is a compiled declaration tree. It is immutable after New and
// safe for concurrent Parse calls.
type NixClap struct {
	cfg  Config
	root *Command
}

// New compiles the declaration tree. All configuration errors (malformed
// arg specs, name collisions across scopes, invalid handlers) surface here
// and never during Parse.
func New(cfg Config, root CommandSpec) (*NixClap, error) {
	if cfg.Name == "" {
		cfg.Name = "program"
	}
	cc := &NixClap{cfg: cfg}
	cmd, err := compileCommand(cc, cfg.Name, root, nil)
	if err != nil {
		return nil, err
	}
	cc.root = cmd
	return cc, nil
}

// Root returns the compiled root command, for help renderers and other
// read-only consumers.
func (cc *NixClap) Root() *Command { return cc.root }

func compileCommand(cc *NixClap, name string, spec CommandSpec, parent *Command) (*Command, error) {
	args, err := CompileArgSpec(spec.Args, spec.CustomTypes)
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", name, err)
	}
	cmd := &Command{
		Name:     name,
		Aliases:  spec.Alias,
		Desc:     spec.Desc,
		Args:     args,
		Exec:     spec.Exec,
		spec:     spec,
		ctypes:   spec.CustomTypes,
		parent:   parent,
		subs:     make(map[string]*Command, len(spec.SubCommands)),
		subAlias: make(map[string]string),
		cc:       cc,
	}

	cmd.opts, err = newOptionRegistry(cmd, spec.Options)
	if err != nil {
		return nil, err
	}
	// each option name/alias is checked against every ancestor scope
	if !cc.cfg.DupOverride {
		for _, opt := range cmd.opts.Options() {
			for _, key := range append([]string{opt.Name}, opt.Aliases...) {
				for anc := parent; anc != nil; anc = anc.parent {
					if other, ok := anc.opts.Match(key); ok {
						return nil, fmt.Errorf("%w: option %q of command %q shadows %q declared on %q",
							ErrNameCollision, key, name, other.Name, anc.Name)
					}
				}
			}
		}
	}

	subNames := make([]string, 0, len(spec.SubCommands))
	for sub := range spec.SubCommands {
		subNames = append(subNames, sub)
	}
	sort.Strings(subNames)
	for _, sub := range subNames {
		child, err := compileCommand(cc, sub, spec.SubCommands[sub], cmd)
		if err != nil {
			return nil, err
		}
		if err := cmd.addSub(child); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func (c *Command) addSub(child *Command) error {
	if c.subTaken(child.Name) {
		return fmt.Errorf("%w: command %q under %q", ErrNameCollision, child.Name, c.Name)
	}
	c.subs[child.Name] = child
	for _, a := range child.Aliases {
		if c.subTaken(a) {
			return fmt.Errorf("%w: command alias %q of %q under %q", ErrNameCollision, a, child.Name, c.Name)
		}
		c.subAlias[a] = child.Name
	}
	return nil
}

func (c *Command) subTaken(name string) bool {
	if _, ok := c.subs[name]; ok {
		return true
	}
	_, ok := c.subAlias[name]
	return ok
}

// MatchSub resolves a token against sub-command names and aliases.
func (c *Command) MatchSub(token string) (*Command, bool) {
	if sub, ok := c.subs[token]; ok {
		return sub, true
	}
	if canon, ok := c.subAlias[token]; ok {
		return c.subs[canon], true
	}
	return nil, false
}

// Options returns the command's option registry.
func (c *Command) Options() *OptionRegistry { return c.opts }

// SubCommands returns the compiled children sorted by name.
func (c *Command) SubCommands() []*Command {
	out := make([]*Command, 0, len(c.subs))
	for _, sub := range c.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Parent returns the owning command scope, nil for the root.
func (c *Command) Parent() *Command { return c.parent }

// ArgDefaults returns the declared raw defaults for positional args.
func (c *Command) ArgDefaults() []string { return c.spec.ArgDefault }

// Path returns the space-joined command path from the root, for messages.
func (c *Command) Path() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.Path() + " " + c.Name
}

func (c *Command) allowUnknown() bool {
	if c.spec.AllowUnknownOption != nil {
		return *c.spec.AllowUnknownOption
	}
	return c.cc.cfg.AllowUnknownOption
}

// matchOptionFrom walks this scope and its ancestors, nearest first, and
// returns the first registry match. This is the bubbling primitive: an
// unmatched option is retried against every ancestor before being declared
// unknown.
func (c *Command) matchOptionFrom(token string) (*Option, *Command, bool) {
	for scope := c; scope != nil; scope = scope.parent {
		if opt, ok := scope.opts.Match(token); ok {
			return opt, scope, true
		}
	}
	return nil, nil, false
}
