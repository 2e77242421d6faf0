// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestRunOrderDeepestFirst(t *testing.T) {
	var order []string
	record := func(name string) ExecFunc {
		return func(ctx context.Context, node *CommandNode) error {
			order = append(order, name)
			return nil
		}
	}
	cc := mustNew(t, Config{Name: "prog"}, CommandSpec{
		Exec: record("root"),
		SubCommands: map[string]CommandSpec{
			"deploy": {
				Exec: record("deploy"),
				SubCommands: map[string]CommandSpec{
					"db": {Exec: record("db")},
				},
			},
		},
	})
	res := cc.Parse([]string{"deploy", "db"})
	if err := res.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"db", "deploy", "root"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %#v, want %#v", order, want)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	cc := mustNew(t, Config{Name: "prog"}, CommandSpec{
		Exec: func(ctx context.Context, node *CommandNode) error {
			t.Fatalf("exec ran after cancel")
			return nil
		},
	})
	res := cc.Parse(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := res.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}

func TestRunStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	rootRan := false
	cc := mustNew(t, Config{Name: "prog"}, CommandSpec{
		Exec: func(ctx context.Context, node *CommandNode) error {
			rootRan = true
			return nil
		},
		SubCommands: map[string]CommandSpec{
			"bad": {
				Exec: func(ctx context.Context, node *CommandNode) error { return boom },
			},
		},
	})
	res := cc.Parse([]string{"bad"})
	if err := res.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run = %v, want boom", err)
	}
	if rootRan {
		t.Fatalf("root exec ran after child error")
	}
}

func TestParseAndRunSkipsExecOnParseError(t *testing.T) {
	ran := false
	cc := mustNew(t, Config{Name: "prog"}, CommandSpec{
		Args: "<needed>",
		Exec: func(ctx context.Context, node *CommandNode) error {
			ran = true
			return nil
		},
	})
	res, err := cc.ParseAndRun(context.Background(), nil)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if ran {
		t.Fatalf("exec ran despite parse error")
	}
	if res == nil {
		t.Fatalf("result should be returned for inspection")
	}
}

func TestParseConcurrent(t *testing.T) {
	cc := mustNew(t, Config{Name: "prog"}, CommandSpec{
		Options: map[string]OptionSpec{
			"retries": {Args: "<n number>"},
		},
		SubCommands: map[string]CommandSpec{
			"echo": {Args: "<what>"},
		},
	})

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		want := fmt.Sprintf("msg-%d", i)
		n := i
		g.Go(func() error {
			res := cc.Parse([]string{"echo", want, "--retries", fmt.Sprint(n)})
			if err := res.Err(); err != nil {
				return err
			}
			snap := res.Root.Snapshot()
			if got := snap.SubCommands["echo"].Args["what"]; got != want {
				return fmt.Errorf("what = %#v, want %q", got, want)
			}
			if got := snap.Opts["retries"]; got != n {
				return fmt.Errorf("retries = %#v, want %d", got, n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent parse: %v", err)
	}
}
