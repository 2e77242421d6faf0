// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import "context"

// Handlers is an explicit table of named callbacks invoked directly as
// parse events occur. All fields are optional.
type Handlers struct {
	// OnUnknownOption fires when an option token matched no registry and no
	// scope tolerates unknown options.
	OnUnknownOption func(name string, node *CommandNode)
	// OnUnknownArg fires when a non-option token resolved nowhere after
	// walking to the root.
	OnUnknownArg func(token string, node *CommandNode)
	// OnParseFail fires once per Parse call that recorded any error.
	OnParseFail func(*Result)
}

// Run invokes the exec callbacks of every matched command, one at a time in
// tree order: sub-commands before the command that owns them, never
// concurrently. Context cancellation is honored between callbacks; the
// first error stops the run.
func (r *Result) Run(ctx context.Context) error {
	var run func(n *CommandNode) error
	run = func(n *CommandNode) error {
		for _, name := range n.subOrder {
			if err := run(n.Subs[name]); err != nil {
				return err
			}
		}
		if n.cmd.Exec == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return n.cmd.Exec(ctx, n)
	}
	return run(r.Root)
}

// ParseAndRun parses argv and, when no error was recorded, runs the matched
// exec callbacks. The result is returned either way so callers can inspect
// the tree.
func (cc *NixClap) ParseAndRun(ctx context.Context, argv []string) (*Result, error) {
	res := cc.Parse(argv)
	if err := res.Err(); err != nil {
		return res, err
	}
	return res, res.Run(ctx)
}
