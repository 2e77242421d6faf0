// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clihelp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jchip/nix-clap-sub000/pkg/nixclap"
)

func testTree(t *testing.T) *nixclap.NixClap {
	t.Helper()
	cc, err := nixclap.New(nixclap.Config{Name: "tool"}, nixclap.CommandSpec{
		Desc: "a demo tool",
		Options: map[string]nixclap.OptionSpec{
			"verbose":   {Alias: []string{"v"}, Desc: "increase verbosity"},
			"log-level": {Args: "<level>", ArgDefault: []string{"info"}, Desc: "set the log level"},
		},
		SubCommands: map[string]nixclap.CommandSpec{
			"copy": {
				Alias: []string{"cp"},
				Desc:  "copy files",
				Args:  "<src> <dst>",
			},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cc
}

func TestRenderGlobalHelp(t *testing.T) {
	off := false
	var buf bytes.Buffer
	Render(&buf, testTree(t).Root(), Options{Width: 100, Color: &off})
	out := buf.String()

	for _, want := range []string{
		"tool - a demo tool",
		"USAGE:",
		"COMMANDS:",
		"copy",
		"(aliases: cp)",
		"OPTIONS:",
		"-v, --verbose",
		"--log-level <level>",
		"(default: info)",
		"Run 'tool COMMAND --help'",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("help missing %q:\n%s", want, out)
		}
	}
	// color forced off: no escape sequences
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected ANSI escapes:\n%s", out)
	}
}

func TestRenderSubCommandHelp(t *testing.T) {
	off := false
	cc := testTree(t)
	sub, ok := cc.Root().MatchSub("copy")
	if !ok {
		t.Fatalf("copy not found")
	}
	var buf bytes.Buffer
	Render(&buf, sub, Options{Width: 100, Color: &off})
	out := buf.String()

	if !strings.Contains(out, "tool copy - copy files") {
		t.Fatalf("missing path header:\n%s", out)
	}
	if !strings.Contains(out, "<src> <dst>") {
		t.Fatalf("missing arg usage:\n%s", out)
	}
}

func TestRenderWrapsLongDescriptions(t *testing.T) {
	off := false
	cc, err := nixclap.New(nixclap.Config{Name: "tool"}, nixclap.CommandSpec{
		Options: map[string]nixclap.OptionSpec{
			"opt": {Desc: strings.Repeat("word ", 30)},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	Render(&buf, cc.Root(), Options{Width: 60, Color: &off})
	for _, line := range strings.Split(buf.String(), "\n") {
		if len(line) > 60 {
			t.Fatalf("line overflows width: %q", line)
		}
	}
}
