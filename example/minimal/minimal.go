// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jchip/nix-clap-sub000/pkg/nixclap"
)

func main() {
	cc, err := nixclap.New(nixclap.Config{Name: "minimal"}, nixclap.CommandSpec{
		Args: "[names..]",
		Options: map[string]nixclap.OptionSpec{
			"shout": {Alias: []string{"s"}},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	res := cc.Parse(os.Args[1:])
	if err := res.Err(); err != nil {
		log.Fatal(err)
	}
	snap := res.Root.Snapshot()
	greeting := "hello"
	if snap.Opts["shout"] == true {
		greeting = "HELLO"
	}
	names, _ := snap.Args["names"].([]any)
	if len(names) == 0 {
		fmt.Printf("%s, world\n", greeting)
		return
	}
	for _, name := range names {
		fmt.Printf("%s, %v\n", greeting, name)
	}
}
