// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clihelp renders help text for a compiled nixclap command tree.
package clihelp

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/jchip/nix-clap-sub000/pkg/nixclap"
)

// Options controls rendering.
type Options struct {
	// Width is the wrap column; 0 means detect from the terminal, falling
	// back to 80.
	Width int
	// Color forces colored headers on or off; nil means auto-detect from
	// the output terminal.
	Color *bool
}

// Render writes help for cmd to w.
func Render(w io.Writer, cmd *nixclap.Command, opts Options) {
	width := opts.Width
	if width == 0 {
		width = 80
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
				width = cols
			}
		}
	}
	useColor := false
	if opts.Color != nil {
		useColor = *opts.Color
	} else if f, ok := w.(*os.File); ok {
		useColor = term.IsTerminal(int(f.Fd()))
	}
	header := func(s string) string {
		if useColor {
			return color.New(color.Bold, color.FgCyan).Sprint(s)
		}
		return s
	}

	var b strings.Builder

	b.WriteString(cmd.Path())
	if cmd.Desc != "" {
		b.WriteString(" - ")
		b.WriteString(cmd.Desc)
	}
	b.WriteString("\n\n")

	b.WriteString(header("USAGE:") + "\n")
	usage := "    " + cmd.Path()
	if len(cmd.Options().Options()) > 0 {
		usage += " [OPTIONS]"
	}
	if len(cmd.SubCommands()) > 0 {
		usage += " COMMAND"
	}
	if u := cmd.Args.Usage(); u != "" {
		usage += " " + u
	}
	b.WriteString(usage + "\n\n")

	if subs := cmd.SubCommands(); len(subs) > 0 {
		b.WriteString(header("COMMANDS:") + "\n")
		for _, sub := range subs {
			b.WriteString(fmt.Sprintf("    %-12s %s\n", sub.Name, describeWithAliases(sub.Desc, sub.Aliases)))
		}
		b.WriteString("\n")
	}

	if optList := cmd.Options().Options(); len(optList) > 0 {
		b.WriteString(header("OPTIONS:") + "\n")
		for _, line := range optionLines(optList, width) {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(cmd.SubCommands()) > 0 {
		b.WriteString(fmt.Sprintf("Run '%s COMMAND --help' for more information on a specific command.\n", cmd.Path()))
	}

	io.WriteString(w, b.String())
}

// optionLines renders one aligned line per option, wrapping descriptions
// that overflow the width.
func optionLines(opts []*nixclap.Option, width int) []string {
	var out []string
	for _, opt := range opts {
		flagStr := "    " + flagLabel(opt)
		desc := opt.Desc
		if opt.Spec.Required {
			desc = strings.TrimSpace(desc + " (required)")
		}
		if len(opt.Spec.ArgDefault) > 0 {
			desc = strings.TrimSpace(desc + fmt.Sprintf(" (default: %s)", strings.Join(opt.Spec.ArgDefault, " ")))
		}
		if desc == "" {
			out = append(out, flagStr)
			continue
		}
		line := fmt.Sprintf("%-28s %s", flagStr, desc)
		if len(line) <= width {
			out = append(out, line)
			continue
		}
		// wrap the description column
		out = append(out, flagStr)
		for _, part := range wrap(desc, width-29) {
			out = append(out, strings.Repeat(" ", 29)+part)
		}
	}
	return out
}

func flagLabel(opt *nixclap.Option) string {
	names := make([]string, 0, len(opt.Aliases)+1)
	aliases := append([]string{}, opt.Aliases...)
	sort.Strings(aliases)
	for _, a := range aliases {
		if len(a) == 1 {
			names = append(names, "-"+a)
		} else {
			names = append(names, "--"+a)
		}
	}
	names = append(names, "--"+opt.Name)
	label := strings.Join(names, ", ")
	if u := opt.Args.Usage(); u != "" {
		label += " " + u
	}
	return label
}

func describeWithAliases(desc string, aliases []string) string {
	if len(aliases) == 0 {
		return desc
	}
	suffix := fmt.Sprintf("(aliases: %s)", strings.Join(aliases, ", "))
	if desc == "" {
		return suffix
	}
	return desc + " " + suffix
}

func wrap(s string, width int) []string {
	if width < 10 {
		width = 10
	}
	words := strings.Fields(s)
	var lines []string
	var cur string
	for _, w := range words {
		if cur == "" {
			cur = w
			continue
		}
		if len(cur)+1+len(w) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
