// Package dispatch implements the mesh-oriented argv dispatcher: it
// tokenizes an inbound text payload, walks the command tree to a leaf,
// binds flags and positional arguments, and produces either a runtime
// invocation plan or a user-facing text reply (help or error).
package dispatch

import (
	"strings"

	"github.com/Dark-Alex-17/meshexec/internal/help"
	"github.com/Dark-Alex-17/meshexec/internal/meshconfig"
)

// Kind discriminates the three possible dispatch outcomes.
type Kind int

const (
	// KindIgnore means the payload did not start with '!' and produces no
	// reply at all.
	KindIgnore Kind = iota
	// KindReply means a text reply (help or error) should be sent verbatim.
	KindReply
	// KindInvoke means a runtime invocation is ready for the Executor.
	KindInvoke
)

// Result is the outcome of dispatching one inbound payload.
type Result struct {
	Kind       Kind
	Reply      string
	Invocation *Invocation
}

// Invocation is a runtime-bound execution plan: built by Dispatch, consumed
// by the Executor, and dropped once the reply is sent.
type Invocation struct {
	Leaf *meshconfig.Node
	Env  map[string]string
	Argv []string
}

// Dispatch resolves one inbound message against cfg's command tree.
func Dispatch(cfg *meshconfig.RootConfig, payload string) *Result {
	if payload == "" || payload[0] != '!' {
		return &Result{Kind: KindIgnore}
	}

	tokens := Tokenize(payload[1:])

	if len(tokens) == 1 && tokens[0] == "help" {
		return &Result{Kind: KindReply, Reply: help.RenderRoot(cfg.Root)}
	}

	if idx := indexOfHelpFlag(tokens); idx != -1 {
		node, _, _ := walk(cfg.Root, tokens[:idx])
		return &Result{Kind: KindReply, Reply: renderHelpFor(cfg, node)}
	}

	node, consumed, derr := walk(cfg.Root, tokens)
	if derr != nil {
		return &Result{Kind: KindReply, Reply: derr.Reply()}
	}

	if node.IsGroup() {
		return &Result{Kind: KindReply, Reply: renderHelpFor(cfg, node)}
	}

	inv, derr := bindLeaf(node, tokens[consumed:])
	if derr != nil {
		if derr.HelpText == "" {
			derr.HelpText = help.Render(node)
		}
		return &Result{Kind: KindReply, Reply: derr.Reply()}
	}
	return &Result{Kind: KindInvoke, Invocation: inv}
}

func renderHelpFor(cfg *meshconfig.RootConfig, node *meshconfig.Node) string {
	if node == cfg.Root {
		return help.RenderRoot(cfg.Root)
	}
	return help.Render(node)
}

// indexOfHelpFlag returns the index of the first "--help" or "-h" token, or
// -1 if none is present.
func indexOfHelpFlag(tokens []string) int {
	for i, t := range tokens {
		if t == "--help" || t == "-h" {
			return i
		}
	}
	return -1
}

// walk descends the tree consuming tokens that match child names, stopping
// at a Leaf, at a token that matches no child, or when tokens run out.
func walk(root *meshconfig.Node, tokens []string) (*meshconfig.Node, int, *DispatchError) {
	current := root
	i := 0
	for i < len(tokens) && current.IsGroup() {
		child := current.Child(tokens[i])
		if child == nil {
			return current, i, unknownCommand(tokens[i], helpTextFor(root, current))
		}
		current = child
		i++
	}
	return current, i, nil
}

func helpTextFor(root, node *meshconfig.Node) string {
	if node == root {
		return help.RenderRoot(root)
	}
	return help.Render(node)
}

// bindLeaf parses the remaining tokens into flags and positionals per §4.D
// step 4, then fills the leaf's env map per step 5.
func bindLeaf(leaf *meshconfig.Node, tokens []string) (*Invocation, *DispatchError) {
	var positionals []string
	flagValues := map[string]string{} // long name -> bound value, or "true" for boolean

	i := 0
	flagsDone := false
	for i < len(tokens) {
		tok := tokens[i]

		if !flagsDone && tok == "--" {
			flagsDone = true
			i++
			continue
		}

		if !flagsDone && isLongFlag(tok) {
			f, derr := findFlag(leaf, tok, true)
			if derr != nil {
				return nil, derr
			}
			i++
			if f.IsBoolean() {
				flagValues[f.LongName()] = "true"
				continue
			}
			if f.Greedy {
				rest := tokens[i:]
				flagValues[f.LongName()] = strings.Join(rest, " ")
				i = len(tokens)
				continue
			}
			if i >= len(tokens) {
				return nil, missingFlagValue(f.Long)
			}
			flagValues[f.LongName()] = tokens[i]
			i++
			continue
		}

		if !flagsDone && isShortFlag(tok) {
			f, derr := findFlag(leaf, tok, false)
			if derr != nil {
				return nil, derr
			}
			i++
			if f.IsBoolean() {
				flagValues[f.LongName()] = "true"
				continue
			}
			if f.Greedy {
				rest := tokens[i:]
				flagValues[f.LongName()] = strings.Join(rest, " ")
				i = len(tokens)
				continue
			}
			if i >= len(tokens) {
				return nil, missingFlagValue(f.Long)
			}
			flagValues[f.LongName()] = tokens[i]
			i++
			continue
		}

		positionals = append(positionals, tok)
		i++
	}

	env := map[string]string{}

	if derr := bindArgs(leaf, positionals, env); derr != nil {
		return nil, derr
	}
	if derr := bindFlags(leaf, flagValues, env); derr != nil {
		return nil, derr
	}

	return &Invocation{Leaf: leaf, Env: env, Argv: tokens}, nil
}

func isLongFlag(tok string) bool {
	return strings.HasPrefix(tok, "--") && len(tok) > 2
}

func isShortFlag(tok string) bool {
	return len(tok) == 2 && strings.HasPrefix(tok, "-") && !strings.HasPrefix(tok, "--")
}

func findFlag(leaf *meshconfig.Node, tok string, isLong bool) (meshconfig.Flag, *DispatchError) {
	for _, f := range leaf.Flags {
		if isLong && f.Long == tok {
			return f, nil
		}
		if !isLong && f.Short == tok {
			return f, nil
		}
	}
	return meshconfig.Flag{}, unknownFlag(tok)
}

func bindArgs(leaf *meshconfig.Node, positionals []string, env map[string]string) *DispatchError {
	n := len(leaf.Args)
	greedyIdx := -1
	for i, a := range leaf.Args {
		if a.Greedy {
			greedyIdx = i
		}
	}

	if greedyIdx == -1 && len(positionals) > n {
		return tooManyArgs(n)
	}

	for i, a := range leaf.Args {
		var value string
		has := false

		switch {
		case a.Greedy:
			if i < len(positionals) {
				value = strings.Join(positionals[i:], " ")
				has = true
			}
		case i < len(positionals):
			value = positionals[i]
			has = true
		}

		if !has {
			if a.Default == nil {
				return missingRequiredArg(a.Name)
			}
			value = *a.Default
		}
		env[a.BindingName()] = value
	}
	return nil
}

func bindFlags(leaf *meshconfig.Node, flagValues map[string]string, env map[string]string) *DispatchError {
	for _, f := range leaf.Flags {
		value, present := flagValues[f.LongName()]

		if f.IsBoolean() {
			if present {
				env[f.BindingName()] = "true"
			}
			continue
		}

		if !present {
			if f.Required && f.Default == nil {
				return missingRequiredFlag(f.Long)
			}
			if f.Default != nil {
				env[f.BindingName()] = *f.Default
			}
			continue
		}
		env[f.BindingName()] = value
	}
	return nil
}
