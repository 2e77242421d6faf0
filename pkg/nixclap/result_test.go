// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"errors"
	"testing"
)

func overlayClap(t *testing.T) *NixClap {
	t.Helper()
	return mustNew(t, Config{Name: "prog"}, CommandSpec{
		Options: map[string]OptionSpec{
			"retries":   {Args: "<n number>"},
			"log-level": {Args: "<level>"},
			"mode":      {Args: "[m]", ArgDefault: []string{"fast"}},
		},
	})
}

func TestApplyConfigFillsMissing(t *testing.T) {
	cc := overlayClap(t)
	res := cc.Parse(nil)
	res.ApplyConfig(map[string]any{"retries": "3"})

	node := res.Root.Opts["retries"]
	if node == nil {
		t.Fatalf("retries not synthesized")
	}
	if node.Source != SourceUser {
		t.Fatalf("Source = %q, want user", node.Source)
	}
	if got := node.Value(); got != 3 {
		t.Fatalf("retries = %#v (%T), want 3", got, got)
	}
}

func TestApplyConfigDoesNotOverrideCLI(t *testing.T) {
	cc := overlayClap(t)
	res := cc.Parse([]string{"--retries", "5"})
	res.ApplyConfig(map[string]any{"retries": "9"})

	node := res.Root.Opts["retries"]
	if node.Source != SourceCLI {
		t.Fatalf("Source = %q, want cli", node.Source)
	}
	if got := node.Value(); got != 5 {
		t.Fatalf("retries = %#v, want 5", got)
	}
}

func TestApplyConfigProtectsCLIDefault(t *testing.T) {
	cc := overlayClap(t)
	// --mode with no value: present on the CLI, value from its default
	res := cc.Parse([]string{"--mode"})
	res.ApplyConfig(map[string]any{"mode": "slow"})

	node := res.Root.Opts["mode"]
	if node.Source != SourceCLIDefault {
		t.Fatalf("Source = %q, want cli-default", node.Source)
	}
	if got := node.Value(); got != "fast" {
		t.Fatalf("mode = %#v, want fast", got)
	}
}

func TestApplyConfigOverridesDefault(t *testing.T) {
	cc := overlayClap(t)
	res := cc.Parse(nil)
	// the default pass already synthesized mode=fast
	if got := res.Root.Opts["mode"].Source; got != SourceDefault {
		t.Fatalf("pre Source = %q, want default", got)
	}
	res.ApplyConfig(map[string]any{"mode": "slow"})

	node := res.Root.Opts["mode"]
	if node.Source != SourceUser || node.Value() != "slow" {
		t.Fatalf("node = %q/%#v, want user/slow", node.Source, node.Value())
	}
}

func TestApplyConfigCamelKeyResolvesDashed(t *testing.T) {
	cc := overlayClap(t)
	res := cc.Parse(nil)
	res.ApplyConfig(map[string]any{"logLevel": "debug"})

	node := res.Root.Opts["log-level"]
	if node == nil {
		t.Fatalf("camelCase key did not resolve: %#v", res.Root.Opts)
	}
	if got := node.Value(); got != "debug" {
		t.Fatalf("log-level = %#v, want debug", got)
	}
	snap := res.Root.Snapshot()
	if snap.Opts["log-level"] != "debug" || snap.Opts["logLevel"] != "debug" {
		t.Fatalf("snapshot keys = %#v", snap.Opts)
	}
}

func TestApplyConfigUnmatchedKeyAttached(t *testing.T) {
	cc := overlayClap(t)
	res := cc.Parse(nil)
	res.ApplyConfig(map[string]any{"extra": "kept"})

	node := res.Root.Opts["extra"]
	if node == nil || node.Option() != nil {
		t.Fatalf("extra should be a synthetic node: %#v", node)
	}
	if got := node.Value(); got != "kept" {
		t.Fatalf("extra = %#v, want kept", got)
	}
	if node.Source != SourceUser {
		t.Fatalf("Source = %q, want user", node.Source)
	}
}

func TestApplyConfigTypedValueStoredDirectly(t *testing.T) {
	cc := overlayClap(t)
	res := cc.Parse(nil)
	res.ApplyConfig(map[string]any{"retries": 7})

	node := res.Root.Opts["retries"]
	if got := node.Value(); got != 7 {
		t.Fatalf("retries = %#v (%T), want int 7", got, got)
	}
	if got := node.ArgsMap()["n"]; got != 7 {
		t.Fatalf("named slot n = %#v, want 7", got)
	}
}

func TestApplyConfigCustomSourceLabel(t *testing.T) {
	cc := overlayClap(t)
	res := cc.Parse(nil)
	res.ApplyConfig(map[string]any{"retries": "2"}, "remote")

	if got := res.Root.Opts["retries"].Source; got != "remote" {
		t.Fatalf("Source = %q, want remote", got)
	}
}

func TestApplyConfigSatisfiesRequiredOption(t *testing.T) {
	cc := mustNew(t, Config{Name: "prog"}, CommandSpec{
		Options: map[string]OptionSpec{
			"token": {Args: "<t>", Required: true},
		},
	})
	res := cc.Parse(nil)
	var missing *MissingRequiredError
	if err := res.Err(); !errors.As(err, &missing) {
		t.Fatalf("pre-overlay err = %v, want missing required", err)
	}

	// the overlay is a legitimate source for a required value
	res.ApplyConfig(map[string]any{"token": "abc"})
	if err := res.Err(); err != nil {
		t.Fatalf("post-overlay err = %v, want nil", err)
	}
	node := res.Root.Opts["token"]
	if node.Source != SourceUser || node.Value() != "abc" {
		t.Fatalf("node = %q/%#v, want user/abc", node.Source, node.Value())
	}
}

func TestKebabCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"logLevel", "log-level"},
		{"already-dashed", "already-dashed"},
		{"plain", "plain"},
		{"maxRetryCount", "max-retry-count"},
	}
	for _, tt := range tests {
		if got := kebabCase(tt.in); got != tt.want {
			t.Fatalf("kebabCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCamelCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"log-level", "logLevel"},
		{"max-retry-count", "maxRetryCount"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := camelCase(tt.in); got != tt.want {
			t.Fatalf("camelCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
