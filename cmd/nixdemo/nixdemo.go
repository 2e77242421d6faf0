// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command nixdemo is a small CLI built on pkg/nixclap, wiring together the
// parser, the help renderer and the user config overlay.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/jchip/nix-clap-sub000/pkg/clihelp"
	"github.com/jchip/nix-clap-sub000/pkg/nixclap"
	"github.com/jchip/nix-clap-sub000/pkg/userconf"
)

var customTypes = map[string]nixclap.CoerceHandler{
	"semver": nixclap.CoerceWith(func(raw string) (any, error) {
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	}),
	"uuid": nixclap.CoerceWith(func(raw string) (any, error) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		return id, nil
	}),
}

func buildCLI() (*nixclap.NixClap, error) {
	return nixclap.New(nixclap.Config{Name: "nixdemo"}, nixclap.CommandSpec{
		Desc: "demo driver for the nixclap parser",
		Options: map[string]nixclap.OptionSpec{
			"help":    {Alias: []string{"h"}, Desc: "show help"},
			"config":  {Alias: []string{"c"}, Args: "<file>", Desc: "overlay a TOML or YAML config file"},
			"verbose": {Alias: []string{"v"}, Counting: true, Desc: "increase verbosity"},
		},
		SubCommands: map[string]nixclap.CommandSpec{
			"echo": {
				Desc: "print the given words",
				Args: "[words..]",
				Exec: runEcho,
			},
			"release": {
				Desc:        "cut a release at the given version",
				Args:        "<version semver>",
				CustomTypes: customTypes,
				Options: map[string]nixclap.OptionSpec{
					"dry-run": {Alias: []string{"n"}, Desc: "print what would happen"},
					"channel": {Args: "[ch]", ArgDefault: []string{"stable"}, Desc: "release channel"},
				},
				Exec: runRelease,
			},
			"trace": {
				Desc:        "look up a request trace",
				Args:        "<id uuid>",
				CustomTypes: customTypes,
				Exec:        runTrace,
			},
		},
	})
}

func main() {
	cc, err := buildCLI()
	if err != nil {
		log.Fatalf("bad CLI declaration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := cc.Parse(os.Args[1:])
	snap := res.Root.Snapshot()

	if snap.Opts["help"] == true {
		clihelp.Render(os.Stdout, helpTarget(res), clihelp.Options{})
		return
	}

	if path := configPath(snap); path != "" {
		if err := userconf.Apply(res, path); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("%v", err))
			os.Exit(1)
		}
	}

	if err := res.Err(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		clihelp.Render(os.Stderr, helpTarget(res), clihelp.Options{})
		os.Exit(2)
	}
	if err := res.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		os.Exit(1)
	}
}

// configPath returns the overlay file to load: an explicit --config wins,
// otherwise a "nixdemo" config is discovered by walking up from the current
// directory. Empty means no overlay.
func configPath(snap *nixclap.Snapshot) string {
	if path, ok := snap.Opts["config"].(string); ok && path != "" {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	path, err := userconf.Find(cwd, "nixdemo")
	if err != nil {
		return ""
	}
	return path
}

// helpTarget picks the deepest matched command so --help after a
// sub-command shows that command's help.
func helpTarget(res *nixclap.Result) *nixclap.Command {
	node := res.Root
	for {
		subs := node.MatchedSubs()
		if len(subs) == 0 {
			return node.Command()
		}
		node = subs[len(subs)-1]
	}
}

func verbosity(node *nixclap.CommandNode) int {
	for n := node; n != nil; n = n.Parent() {
		if c, ok := n.Counts["verbose"]; ok {
			return c
		}
	}
	return 0
}

func runEcho(ctx context.Context, node *nixclap.CommandNode) error {
	words, _ := node.ArgsMap()["words"].([]any)
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, fmt.Sprint(w))
	}
	fmt.Println(strings.Join(parts, " "))
	return nil
}

func runRelease(ctx context.Context, node *nixclap.CommandNode) error {
	v, ok := node.ArgsMap()["version"].(*semver.Version)
	if !ok {
		return fmt.Errorf("version missing")
	}
	snap := node.Snapshot()
	channel := "stable"
	if ch, ok := snap.Opts["channel"].(string); ok {
		channel = ch
	}
	if snap.Opts["dry-run"] == true {
		fmt.Printf("would release %s to %s\n", v, channel)
		return nil
	}
	if verbosity(node) > 0 {
		fmt.Printf("releasing %s to %s (prerelease: %v)\n", v, channel, v.Prerelease() != "")
		return nil
	}
	fmt.Printf("releasing %s to %s\n", v, channel)
	return nil
}

func runTrace(ctx context.Context, node *nixclap.CommandNode) error {
	id, ok := node.ArgsMap()["id"].(uuid.UUID)
	if !ok {
		return fmt.Errorf("trace id missing")
	}
	fmt.Printf("trace %s (version %d)\n", id, id.Version())
	return nil
}
