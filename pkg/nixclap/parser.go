// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nixclap

import (
	"strings"
)

// Terminator tokens. The soft form ends gathering for the current option or
// command only; the hard form stops the parse and hands the remaining
// tokens back unconsumed. The greedy toggle flips verbatim consumption on
// the active command.
const (
	softTerm       = "-."
	softTermLong   = "--."
	greedyToggle   = "-#"
	greedyToggleLn = "--#"
	hardTerm       = "--"
)

// optStep is the explicit result of feeding one token to the active option
// builder.
type optStep int

const (
	optConsumed optStep = iota // token taken, keep gathering
	optFilled                  // token taken, option reached its max
	optReject                  // token refused, option gathering ended
)

type parser struct {
	cc    *NixClap
	stack []*CommandNode // nesting path; top is the active builder
	opt   *OptionNode    // option currently gathering values, if any
	res   *Result
}

// Parse consumes the token array against the compiled tree and returns a
// fresh result tree. It never aborts: recoverable errors are recorded on
// the nodes where they occurred (see Result.Errors).
func (cc *NixClap) Parse(argv []string) *Result {
	root := newCommandNode(cc.root, cc.root.Name, nil)
	res := &Result{Root: root, cc: cc}
	p := &parser{cc: cc, stack: []*CommandNode{root}, res: res}

	i := 0
	for i < len(argv) {
		tok := argv[i]
		if tok == hardTerm {
			res.Unconsumed = append([]string{}, argv[i+1:]...)
			break
		}
		i = p.step(tok, argv, i)
	}

	p.endOption()
	completeTree(root)
	applyDefaults(root)
	if h := cc.cfg.Handlers.OnParseFail; h != nil && len(res.Errors()) > 0 {
		h(res)
	}
	return res
}

func (p *parser) top() *CommandNode { return p.stack[len(p.stack)-1] }

// step consumes argv[i] and returns the index of the next token to look at
// (i+2 when a following token was taken as a value).
func (p *parser) step(tok string, argv []string, i int) int {
	top := p.top()

	if top.Greedy {
		// verbatim until a soft terminator, dashes and all
		if tok == softTerm || tok == softTermLong {
			p.softTerminate()
		} else {
			top.ArgsList = append(top.ArgsList, tok)
		}
		return i + 1
	}

	switch tok {
	case softTerm, softTermLong:
		p.softTerminate()
		return i + 1
	case greedyToggle, greedyToggleLn:
		p.endOption()
		top.Greedy = !top.Greedy
		return i + 1
	}

	if isOptionToken(tok) {
		return p.stepOption(tok, argv, i)
	}
	p.stepPlain(tok)
	return i + 1
}

// isOptionToken reports whether a token is option syntax. A lone "-" and
// negative numbers are plain arguments.
func isOptionToken(tok string) bool {
	return len(tok) > 1 && tok[0] == '-' && !isNumeric(tok)
}

// isNumeric reports whether a string reads as a number ("10", "-10",
// "-3.14"), so negative values are not mistaken for options.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		if len(s) == 1 {
			return false
		}
		start = 1
	}
	hasDigit, hasDot := false, false
	for i := start; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			hasDigit = true
		case s[i] == '.':
			if hasDot {
				return false
			}
			hasDot = true
		default:
			return false
		}
	}
	return hasDigit
}

func (p *parser) softTerminate() {
	top := p.top()
	top.Greedy = false
	if p.opt != nil {
		p.endOption()
		return
	}
	top.endGather()
	top.argsClosed = true
}

func (p *parser) endOption() {
	if p.opt == nil {
		return
	}
	p.opt.endGather()
	p.opt = nil
}

// stepOption handles one option-syntax token: dash count, --no- negation,
// =value suffix and single-dash combined short runs.
func (p *parser) stepOption(tok string, argv []string, i int) int {
	p.endOption() // a new option displaces the gathering one

	body := strings.TrimLeft(tok, "-")
	dashes := len(tok) - len(body)
	name, val := body, ""
	hasVal := false
	if eq := strings.IndexByte(name, '='); eq >= 0 {
		name, val, hasVal = name[:eq], name[eq+1:], true
	}

	// --no-foo forces boolean false, consuming nothing further
	if dashes == 2 && strings.HasPrefix(name, "no-") {
		if opt, owner, ok := p.top().cmd.matchOptionFrom(name[3:]); ok {
			node := p.newOptionNode(opt, name[3:], owner)
			node.ArgsList = append(node.ArgsList, "false")
			node.endGather()
			return i + 1
		}
	}

	// single-dash multi-char runs are combined shorts, unless the whole
	// run resolves as one declared name or alias
	if dashes == 1 && len(name) > 1 {
		if _, _, ok := p.top().cmd.matchOptionFrom(name); !ok {
			return p.stepShortRun(name, val, hasVal, argv, i)
		}
	}

	opt, owner, ok := p.top().cmd.matchOptionFrom(name)
	if !ok {
		return p.unknownOption(name, val, hasVal, i)
	}
	return p.beginOption(opt, name, owner, val, hasVal, argv, i)
}

// stepShortRun expands "-abc" into its constituent options. Only the last
// of the run may gather a following value; the others are applied as bare
// flags.
func (p *parser) stepShortRun(run, val string, hasVal bool, argv []string, i int) int {
	next := i + 1
	for k := 0; k < len(run); k++ {
		name := string(run[k])
		last := k == len(run)-1
		opt, owner, ok := p.top().cmd.matchOptionFrom(name)
		if !ok {
			next = p.unknownOption(name, "", false, i)
			continue
		}
		if last {
			next = p.beginOption(opt, name, owner, val, hasVal, argv, i)
			continue
		}
		node := p.newOptionNode(opt, name, owner)
		if !opt.Spec.Counting {
			node.ArgsList = append(node.ArgsList, "true")
		}
		node.endGather()
	}
	return next
}

// beginOption attaches a node for a resolved option and decides how its
// values arrive: inline =value, a consumed boolean literal, an auto
// supplied "true", or subsequent tokens via the active-option builder.
func (p *parser) beginOption(opt *Option, asGiven string, owner *Command, val string, hasVal bool, argv []string, i int) int {
	node := p.newOptionNode(opt, asGiven, owner)

	if opt.Spec.Counting {
		node.endGather()
		return i + 1
	}
	if hasVal {
		node.ArgsList = append(node.ArgsList, val)
		node.cliTokens++
	}
	if opt.Boolean() {
		if !hasVal {
			// only a boolean literal may follow; anything else stays for
			// the command walk, so "--flag sub" never swallows "sub"
			if i+1 < len(argv) && boolLooking(argv[i+1]) {
				node.ArgsList = append(node.ArgsList, argv[i+1])
				node.cliTokens++
				node.endGather()
				return i + 2
			}
			node.ArgsList = append(node.ArgsList, "true")
		}
		node.endGather()
		return i + 1
	}

	max := opt.Args.MaxArgs()
	if max != Unbounded && len(node.ArgsList) >= max {
		node.endGather()
		return i + 1
	}
	p.opt = node
	return i + 1
}

func (p *parser) newOptionNode(opt *Option, asGiven string, owner *Command) *OptionNode {
	node := &OptionNode{Source: SourceCLI, opt: opt}
	node.Name = opt.Name
	if asGiven != opt.Name {
		node.Alias = asGiven
	}
	p.nodeFor(owner).attachOption(node)
	return node
}

// nodeFor maps a command scope back to its builder on the stack.
func (p *parser) nodeFor(cmd *Command) *CommandNode {
	for j := len(p.stack) - 1; j >= 0; j-- {
		if p.stack[j].cmd == cmd {
			return p.stack[j]
		}
	}
	return p.top()
}

// unknownOption attaches a synthetic node for an unmatched option token.
// The outermost scope tolerating unknown options adopts it silently;
// otherwise the error is recorded on the current node and the node is
// attached there anyway so parsing continues.
func (p *parser) unknownOption(name, val string, hasVal bool, i int) int {
	var target *CommandNode
	for j := 0; j < len(p.stack); j++ {
		if p.stack[j].cmd.allowUnknown() {
			target = p.stack[j]
			break
		}
	}
	if target == nil {
		top := p.top()
		target = top
		top.addError(&UnknownOptionError{Name: name, Command: top.Name})
		if h := p.cc.cfg.Handlers.OnUnknownOption; h != nil {
			h(name, top)
		}
	}
	node := &OptionNode{Source: SourceCLI}
	node.Name = name
	if hasVal {
		node.ArgsList = append(node.ArgsList, val)
		node.cliTokens++
	} else {
		node.ArgsList = append(node.ArgsList, "true")
	}
	target.attachOption(node)
	node.endGather()
	return i + 1
}

// stepPlain consumes a non-option token: active option values first, then
// sub-command match, then the active command's own argument slots, then the
// ancestor walk.
func (p *parser) stepPlain(tok string) {
	if p.opt != nil {
		switch p.feedOption(tok) {
		case optConsumed, optFilled:
			return
		case optReject:
			// fall through to the command walk
		}
	}
	top := p.top()

	if child, ok := top.cmd.MatchSub(tok); ok {
		top.endGather() // the parent's own gathering ends first
		node := newCommandNode(child, tok, top)
		top.Subs[child.Name] = node
		top.subOrder = append(top.subOrder, child.Name)
		top.snap = nil
		p.stack = append(p.stack, node)
		return
	}
	if top.acceptsArgs() {
		top.appendArg(tok)
		return
	}
	// bubble: a full command may still yield the token to an ancestor with
	// room for trailing arguments
	for j := len(p.stack) - 2; j >= 0; j-- {
		if p.stack[j].hasArgRoom() {
			p.stack[j].appendArg(tok)
			return
		}
	}
	top.addError(&UnknownArgError{Token: tok, Command: top.Name})
	if h := p.cc.cfg.Handlers.OnUnknownArg; h != nil {
		h(tok, top)
	}
}

func (p *parser) feedOption(tok string) optStep {
	o := p.opt
	max := o.opt.Args.MaxArgs()
	if max != Unbounded && len(o.ArgsList) >= max {
		p.endOption()
		return optReject
	}
	o.ArgsList = append(o.ArgsList, tok)
	o.cliTokens++
	if max != Unbounded && len(o.ArgsList) >= max {
		p.endOption()
		return optFilled
	}
	return optConsumed
}

func completeTree(n *CommandNode) {
	n.complete()
	for _, sub := range n.Subs {
		completeTree(sub)
	}
}
