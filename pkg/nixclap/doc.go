// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nixclap parses a flat token array (a command line) into a typed,
// hierarchical tree of matched commands and options.
//
// The library is declaration driven: the host supplies a CommandSpec tree
// (commands, nested sub-commands, options, aliases, arg-spec strings,
// defaults, custom type handlers, exec callbacks) and nixclap compiles it
// once into an immutable registry. Each Parse call then consumes the token
// array against that registry and produces a fresh result tree.
//
// # Declaring commands
//
//	cc, err := nixclap.New(nixclap.Config{Name: "prog"}, nixclap.CommandSpec{
//	    Options: map[string]nixclap.OptionSpec{
//	        "verbose": {Alias: []string{"v"}, Desc: "Verbose output"},
//	    },
//	    SubCommands: map[string]nixclap.CommandSpec{
//	        "copy": {
//	            Alias: []string{"cp"},
//	            Args:  "<src> <dst> [extra..0,3]",
//	            Exec:  handleCopy,
//	        },
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result := cc.Parse(os.Args[1:])
//
// # Arg-spec strings
//
// Arguments for commands and options are declared with one spec string made
// of bracketed tokens. Angle brackets mark required slots, square brackets
// optional ones:
//
//	<name>            required string argument called "name"
//	<count number>    required argument coerced with strconv
//	[files..1,3]      optional slot absorbing one to three tokens
//	[rest..]          optional slot absorbing everything left
//
// A ".." suffix on the final token makes it variadic: ".." means 0..Inf,
// "..N" a fixed count of N, "..N," N..Inf and "..N,M" N..M.
//
// # Value sources
//
// Parsed values carry a provenance tag. CLI input always wins, followed by
// externally supplied user config (Result.ApplyConfig), followed by declared
// defaults. Callers inspect provenance through the snapshot's Source map.
//
// # Errors
//
// Configuration mistakes (alias collisions, malformed arg specs, bad custom
// type handlers) are returned by New and never reach a live parse. Parse
// never aborts: unknown options, missing arguments and coercion failures are
// recorded on the node where they occurred and aggregated on the Result,
// letting the caller decide which of them is fatal.
package nixclap
