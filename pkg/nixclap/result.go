// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Result is the outcome of one Parse call: a best-effort node tree plus the
// recoverable errors recorded while building it.
type Result struct {
	Root *CommandNode
	// Unconsumed holds the tokens after a hard terminator ("--"), returned
	// to the caller untouched.
	Unconsumed []string

	cc *NixClap
}

// Errors returns every recoverable error in the tree, in tree order. The
// missing-required aggregate is computed from the current tree, so options
// satisfied by a later ApplyConfig overlay no longer report as missing.
func (r *Result) Errors() []error {
	var out []error
	var walk func(n *CommandNode)
	walk = func(n *CommandNode) {
		out = append(out, n.Errors()...)
		names := make([]string, 0, len(n.Opts))
		for name := range n.Opts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, n.Opts[name].Errors()...)
		}
		for _, name := range n.subOrder {
			walk(n.Subs[name])
		}
	}
	walk(r.Root)
	if missing := missingRequired(r.Root); len(missing) > 0 {
		out = append(out, &MissingRequiredError{Names: missing})
	}
	return out
}

// Err joins the recorded errors, nil when the parse was clean.
func (r *Result) Err() error {
	return errors.Join(r.Errors()...)
}

// ApplyConfig overlays an external key to value map onto the root node. The
// optional source label defaults to "user". Values already set from the CLI
// (source beginning with "cli") are protected; everything else is replaced.
// Keys matching no declared option are still attached as unknown options so
// a round trip through the snapshot is lossless.
func (r *Result) ApplyConfig(cfg map[string]any, source ...string) {
	label := SourceUser
	if len(source) > 0 && source[0] != "" {
		label = source[0]
	}
	r.Root.ApplyConfig(cfg, label)
}

// ApplyConfig overlays an external config map onto this command scope.
func (n *CommandNode) ApplyConfig(cfg map[string]any, label string) {
	keys := make([]string, 0, len(cfg))
	for key := range cfg {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := cfg[key]
		opt, ok := n.cmd.opts.Match(key)
		if !ok {
			// camelCase keys resolve against dashed declarations
			opt, ok = n.cmd.opts.Match(kebabCase(key))
		}
		if !ok {
			node := &OptionNode{Source: label}
			node.Name = key
			setOverlayValue(node, raw)
			n.attachSynthesized(node)
			continue
		}
		if existing, found := n.Opts[opt.Name]; found && strings.HasPrefix(existing.Source, SourceCLI) {
			continue // CLI input wins
		}
		node := &OptionNode{Source: label, opt: opt}
		node.Name = opt.Name
		setOverlayValue(node, raw)
		n.attachSynthesized(node)
	}
}

// setOverlayValue feeds an overlay value into a node. Strings run through
// the normal coercion pipeline; anything already typed is stored as-is.
func setOverlayValue(node *OptionNode, raw any) {
	switch v := raw.(type) {
	case string:
		node.ArgsList = append(node.ArgsList, v)
		node.endGather()
	case []string:
		node.ArgsList = append(node.ArgsList, v...)
		node.endGather()
	default:
		node.state = stGatherEnded
		node.argsMap = map[string]any{"0": v}
		if node.opt != nil && len(node.opt.Args.Rules) > 0 && node.opt.Args.Rules[0].Name != "" {
			node.argsMap[node.opt.Args.Rules[0].Name] = v
		}
		node.ArgsList = append(node.ArgsList, fmt.Sprint(v))
	}
}

// attachSynthesized attaches a node built outside the token pass (defaults,
// overlay). It does not bump the occurrence counter, which tracks CLI
// occurrences only.
func (n *CommandNode) attachSynthesized(node *OptionNode) {
	node.parent = n
	n.Opts[node.Name] = node
	n.snap = nil
}

// applyDefaults walks the matched tree and synthesizes a default-sourced
// node for every declared option with defaults that produced no node during
// tokenizing. Missing command argument slots were already filled by the
// coercion pass.
func applyDefaults(n *CommandNode) {
	for _, opt := range n.cmd.opts.Options() {
		if _, ok := n.Opts[opt.Name]; ok {
			continue
		}
		if len(opt.Spec.ArgDefault) == 0 {
			continue
		}
		node := &OptionNode{Source: SourceDefault, opt: opt}
		node.Name = opt.Name
		n.attachSynthesized(node)
		node.endGather()
	}
	for _, sub := range n.Subs {
		applyDefaults(sub)
	}
}

// missingRequired collects every required option with no node in its
// matched scope, in tree order. Evaluated whenever errors are read rather
// than once at parse time, because the config overlay is a legitimate later
// source for a required value.
func missingRequired(root *CommandNode) []string {
	var missing []string
	var walk func(n *CommandNode)
	walk = func(n *CommandNode) {
		for _, opt := range n.cmd.opts.Options() {
			if opt.Spec.Required {
				if _, ok := n.Opts[opt.Name]; !ok {
					missing = append(missing, opt.Name)
				}
			}
		}
		for _, name := range n.subOrder {
			walk(n.Subs[name])
		}
	}
	walk(root)
	return missing
}

// kebabCase converts a camelCase overlay key back to its dashed form.
func kebabCase(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
