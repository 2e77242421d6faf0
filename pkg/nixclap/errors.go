// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors. These are returned by New and can never surface
// during a parse.
var (
	// ErrBadArgSpec is returned when an arg-spec string does not follow the
	// bracket grammar.
	ErrBadArgSpec = errors.New("nixclap: malformed arg spec")

	// ErrUnknownArgType is returned when a spec token names a type that is
	// neither a builtin primitive nor a declared custom type.
	ErrUnknownArgType = errors.New("nixclap: unknown arg type")

	// ErrNameCollision is returned when a command or option name/alias
	// collides with another declaration in the same or an ancestor scope.
	ErrNameCollision = errors.New("nixclap: name collision")

	// ErrBadHandler is returned when a custom type handler has no valid
	// shape (it must be built with CoerceWith, CoerceRegexp or CoerceLiteral).
	ErrBadHandler = errors.New("nixclap: invalid coercion handler")
)

// UnknownOptionError records an option token that matched no registry from
// the active command up to the root.
type UnknownOptionError struct {
	Name    string // option name as given, without dashes
	Command string // command scope where the token was seen
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option --%s for command %q", e.Name, e.Command)
}

// UnknownArgError records a non-option token that matched no sub-command and
// no remaining argument slot in any ancestor scope.
type UnknownArgError struct {
	Token   string
	Command string
}

func (e *UnknownArgError) Error() string {
	return fmt.Sprintf("unknown CLI argument %q for command %q", e.Token, e.Command)
}

// InsufficientArgsError records a command or option that gathered fewer
// tokens than its required minimum.
type InsufficientArgsError struct {
	Name string
	Need int
	Got  int
}

func (e *InsufficientArgsError) Error() string {
	return fmt.Sprintf("%q requires at least %d argument(s), got %d", e.Name, e.Need, e.Got)
}

// CoerceError records a value that a rule's type handler rejected. The raw
// string is kept on the node.
type CoerceError struct {
	Rule string // rule name, or positional index when unnamed
	Type string
	Raw  string
	Err  error
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("invalid %s value %q for %q: %v", e.Type, e.Raw, e.Rule, e.Err)
}

func (e *CoerceError) Unwrap() error { return e.Err }

// MissingRequiredError aggregates every required option that has no node in
// its matched scope. It is computed when the result's errors are read, so a
// later ApplyConfig overlay can still satisfy the requirement.
type MissingRequiredError struct {
	Names []string
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("missing required options: %s", strings.Join(e.Names, ", "))
}
