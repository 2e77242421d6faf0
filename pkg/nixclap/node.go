// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"sort"
	"strconv"
	"strings"
)

// Value source tags, ordered by precedence: cli input beats user config
// beats declared defaults.
const (
	SourceCLI        = "cli"
	SourceCLIDefault = "cli-default"
	SourceUser       = "user"
	SourceDefault    = "default"
)

type nodeState int

const (
	stGathering nodeState = iota
	stGatherEnded
	stComplete
)

// parseNode holds what command and option nodes share: the raw tokens
// consumed, the coerced value map and the recoverable errors recorded while
// building it.
type parseNode struct {
	Name  string
	Alias string // name as matched on the CLI when it differs from Name

	ArgsList []string
	argsMap  map[string]any

	state      nodeState
	errs       []error // recorded parse errors
	coerceErrs []error // rebuilt on every finalize
}

func (n *parseNode) addError(err error) { n.errs = append(n.errs, err) }

// Errors returns the recoverable errors recorded on this node.
func (n *parseNode) Errors() []error {
	out := make([]error, 0, len(n.errs)+len(n.coerceErrs))
	out = append(out, n.errs...)
	return append(out, n.coerceErrs...)
}

// ArgsMap returns the coerced values keyed by both position ("0", "1", ...)
// and rule name.
func (n *parseNode) ArgsMap() map[string]any {
	if n.argsMap == nil {
		return map[string]any{}
	}
	return n.argsMap
}

// finalize (re)coerces the accumulated raw tokens against the compiled
// rules. Tokens are dealt to the rules in order, the trailing variadic rule
// absorbing the remainder; slots left empty fall back to the positional
// defaults. It reports how many slots got a value and whether any of them
// came from a default.
func (n *parseNode) finalize(spec *ArgSpec, defaults []string, ctypes map[string]CoerceHandler) (filled int, usedDefault bool) {
	n.argsMap = make(map[string]any)
	n.coerceErrs = nil

	defAt := func(i int) string {
		if i < len(defaults) {
			return defaults[i]
		}
		return ""
	}
	put := func(rule ArgRule, i int, v any) {
		n.argsMap[strconv.Itoa(i)] = v
		if rule.Name != "" {
			n.argsMap[rule.Name] = v
		}
	}
	coerce := func(rule ArgRule, i int, raw string) any {
		v, err := coerceValue(rule, raw, defAt(i), ctypes)
		if err != nil {
			key := rule.Name
			if key == "" {
				key = strconv.Itoa(i)
			}
			n.coerceErrs = append(n.coerceErrs, &CoerceError{Rule: key, Type: rule.Type, Raw: raw, Err: err})
		}
		return v
	}

	next := 0
	for i, rule := range spec.Rules {
		if rule.Variadic {
			rest := n.ArgsList[next:]
			if rule.Max != Unbounded && len(rest) > rule.Max {
				rest = rest[:rule.Max]
			}
			if len(rest) == 0 && len(defaults) > next {
				rest = defaults[next:]
				usedDefault = true
			}
			vals := make([]any, 0, len(rest))
			for j, raw := range rest {
				vals = append(vals, coerce(rule, next+j, raw))
			}
			put(rule, i, vals)
			filled += len(vals)
			next += len(rest)
			break // variadic is always last
		}
		if next < len(n.ArgsList) {
			put(rule, i, coerce(rule, i, n.ArgsList[next]))
			filled++
			next++
			continue
		}
		if def := defAt(i); def != "" {
			put(rule, i, coerce(rule, i, def))
			filled++
			usedDefault = true
		}
	}
	return filled, usedDefault
}

// OptionNode is one matched (or synthesized) option occurrence.
type OptionNode struct {
	parseNode
	// Source tags the value provenance: cli, cli-default, user or default.
	Source string

	opt    *Option // nil for unknown options
	parent *CommandNode
	// cliTokens counts argv tokens consumed as values, as opposed to
	// synthesized or defaulted ones. Drives the cli vs cli-default tag.
	cliTokens int
}

// Option returns the compiled option, nil when the node is synthetic
// (unknown option or unmatched overlay key).
func (o *OptionNode) Option() *Option { return o.opt }

// Parent returns the command node the option is attached to.
func (o *OptionNode) Parent() *CommandNode { return o.parent }

// Value returns the single coerced value for one-slot options, the full
// positional map otherwise.
func (o *OptionNode) Value() any {
	if o.opt != nil && len(o.opt.Args.Rules) > 1 {
		return o.ArgsMap()
	}
	if v, ok := o.argsMap["0"]; ok {
		return v
	}
	return nil
}

func (o *OptionNode) endGather() {
	if o.state != stGathering {
		return // idempotent
	}
	o.state = stGatherEnded
	var spec *ArgSpec
	var defaults []string
	var ctypes map[string]CoerceHandler
	switch {
	case o.opt == nil:
		// synthetic unknown option: keep the raw string
		spec = &ArgSpec{Rules: []ArgRule{{Type: TypeString}}}
	case len(o.opt.Args.Rules) == 0 && !o.opt.Spec.Counting:
		// bare flag: an implicit boolean slot carries true/false
		spec = &ArgSpec{Rules: []ArgRule{{Type: TypeBoolean}}}
		defaults, ctypes = o.opt.Spec.ArgDefault, o.opt.ctypes
	default:
		spec, defaults, ctypes = o.opt.Args, o.opt.Spec.ArgDefault, o.opt.ctypes
	}
	filled, usedDefault := o.finalize(spec, defaults, ctypes)
	if o.Source == SourceCLI && usedDefault && o.cliTokens == 0 {
		o.Source = SourceCLIDefault
	}
	if o.opt != nil && !o.opt.Spec.Counting && filled < spec.MinArgs() {
		o.addError(&InsufficientArgsError{Name: o.Name, Need: spec.MinArgs(), Got: filled})
	}
}

// CommandNode is one matched command scope in the result tree.
type CommandNode struct {
	parseNode

	cmd    *Command
	parent *CommandNode

	Subs   map[string]*CommandNode
	Opts   map[string]*OptionNode
	Counts map[string]int // per-name occurrence counters
	Greedy bool

	subOrder []string
	// argsClosed is set by an explicit soft terminator; it blocks further
	// argument consumption including bubbled tokens.
	argsClosed bool
	snap       *Snapshot
}

func newCommandNode(cmd *Command, alias string, parent *CommandNode) *CommandNode {
	n := &CommandNode{
		cmd:    cmd,
		parent: parent,
		Subs:   make(map[string]*CommandNode),
		Opts:   make(map[string]*OptionNode),
		Counts: make(map[string]int),
	}
	n.Name = cmd.Name
	if alias != cmd.Name {
		n.Alias = alias
	}
	return n
}

// Command returns the compiled command this node matched.
func (n *CommandNode) Command() *Command { return n.cmd }

// Parent returns the owning command node, nil for the root.
func (n *CommandNode) Parent() *CommandNode { return n.parent }

func (n *CommandNode) acceptsArgs() bool {
	if n.argsClosed || n.state != stGathering {
		return false
	}
	max := n.cmd.Args.MaxArgs()
	return max == Unbounded || len(n.ArgsList) < max
}

// hasArgRoom ignores the gathering state; used for bubbled tokens, which a
// node that already pushed a child may still absorb as trailing arguments.
func (n *CommandNode) hasArgRoom() bool {
	if n.argsClosed {
		return false
	}
	max := n.cmd.Args.MaxArgs()
	return max == Unbounded || len(n.ArgsList) < max
}

func (n *CommandNode) appendArg(tok string) {
	// a bubbled trailing argument may arrive after gathering ended; the
	// final complete() pass re-coerces in that case
	n.ArgsList = append(n.ArgsList, tok)
	max := n.cmd.Args.MaxArgs()
	if max != Unbounded && len(n.ArgsList) >= max {
		n.endGather()
	}
}

func (n *CommandNode) endGather() {
	if n.state != stGathering {
		return
	}
	n.state = stGatherEnded
	n.finalize(n.cmd.Args, n.cmd.spec.ArgDefault, n.cmd.ctypes)
}

// complete finalizes the node at end of parse: coercion over the final
// token list and the minimum-count assertion, recorded rather than thrown.
func (n *CommandNode) complete() {
	if n.state == stComplete {
		return
	}
	n.state = stComplete
	filled, _ := n.finalize(n.cmd.Args, n.cmd.spec.ArgDefault, n.cmd.ctypes)
	if need := n.cmd.Args.MinArgs(); filled < need {
		n.addError(&InsufficientArgsError{Name: n.Name, Need: need, Got: filled})
	}
}

func (n *CommandNode) attachOption(o *OptionNode) {
	o.parent = n
	n.Opts[o.Name] = o
	n.Counts[o.Name]++
	n.snap = nil
}

// MatchedSubs returns the child command nodes in match order.
func (n *CommandNode) MatchedSubs() []*CommandNode {
	out := make([]*CommandNode, 0, len(n.subOrder))
	for _, name := range n.subOrder {
		out = append(out, n.Subs[name])
	}
	return out
}

// Snapshot is the frozen view of a command node, built by recursively
// folding child snapshots. It is computed once and cached; mutating the
// underlying tree afterwards is unsupported.
type Snapshot struct {
	Name        string
	Alias       string
	ArgList     []string
	Args        map[string]any
	Opts        map[string]any
	OptsFull    map[string]map[string]any
	OptsCount   map[string]int
	Source      map[string]string
	SubCommands map[string]*Snapshot
}

// Snapshot returns the cached frozen view, computing it on first use.
func (n *CommandNode) Snapshot() *Snapshot {
	if n.snap != nil {
		return n.snap
	}
	s := &Snapshot{
		Name:        n.Name,
		Alias:       n.Alias,
		ArgList:     append([]string{}, n.ArgsList...),
		Args:        n.ArgsMap(),
		Opts:        make(map[string]any),
		OptsFull:    make(map[string]map[string]any),
		OptsCount:   make(map[string]int),
		Source:      make(map[string]string),
		SubCommands: make(map[string]*Snapshot),
	}
	names := make([]string, 0, len(n.Opts))
	for name := range n.Opts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		o := n.Opts[name]
		var val any
		switch {
		case o.opt != nil && o.opt.Spec.Counting:
			val = n.Counts[name]
		default:
			val = o.Value()
		}
		// every name containing a dash is additionally exposed under its
		// camelCase form, both keys referencing the same node
		for _, key := range snapshotKeys(name) {
			s.Opts[key] = val
			s.OptsFull[key] = o.ArgsMap()
			s.OptsCount[key] = n.Counts[name]
			s.Source[key] = o.Source
		}
	}
	for name, sub := range n.Subs {
		s.SubCommands[name] = sub.Snapshot()
	}
	n.snap = s
	return s
}

func snapshotKeys(name string) []string {
	if !strings.Contains(name, "-") {
		return []string{name}
	}
	return []string{name, camelCase(name)}
}

func camelCase(name string) string {
	parts := strings.Split(name, "-")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
