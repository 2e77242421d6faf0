// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// A git-shaped CLI showing sub-commands, option bubbling and exec order.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jchip/nix-clap-sub000/pkg/nixclap"
)

func main() {
	cc, err := nixclap.New(nixclap.Config{Name: "gitlike"}, nixclap.CommandSpec{
		Options: map[string]nixclap.OptionSpec{
			// resolves from any depth via bubbling
			"work-dir": {Alias: []string{"C"}, Args: "<dir>", ArgDefault: []string{"."}},
		},
		SubCommands: map[string]nixclap.CommandSpec{
			"commit": {
				Options: map[string]nixclap.OptionSpec{
					"message": {Alias: []string{"m"}, Args: "<msg>", Required: true},
					"amend":   {},
				},
				Exec: func(ctx context.Context, node *nixclap.CommandNode) error {
					snap := node.Snapshot()
					fmt.Printf("commit %q (amend: %v) in %v\n",
						snap.Opts["message"], snap.Opts["amend"] == true, workDir(node))
					return nil
				},
			},
			"push": {
				Args: "[remote] [branch]",
				Exec: func(ctx context.Context, node *nixclap.CommandNode) error {
					args := node.ArgsMap()
					remote, branch := or(args["remote"], "origin"), or(args["branch"], "main")
					fmt.Printf("push %v %v from %v\n", remote, branch, workDir(node))
					return nil
				},
			},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := cc.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func workDir(node *nixclap.CommandNode) any {
	for n := node; n != nil; n = n.Parent() {
		if opt, ok := n.Opts["work-dir"]; ok {
			return opt.Value()
		}
	}
	return "."
}

func or(v any, fallback string) any {
	if v == nil {
		return fallback
	}
	return v
}
