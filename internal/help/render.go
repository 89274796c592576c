// Package help renders plain-text usage and help output for any node in a
// loaded command tree.
package help

import (
	"fmt"
	"strings"

	"github.com/Dark-Alex-17/meshexec/internal/meshconfig"
)

// Render produces the help text for node, dispatching on whether it is a
// Leaf or a Group. Output is pure ASCII so it passes through the chunker
// untouched.
func Render(node *meshconfig.Node) string {
	if node.IsLeaf() {
		return renderLeaf(node)
	}
	return renderGroup(node)
}

func renderLeaf(n *meshconfig.Node) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s [args...] [flags...]\n", n.Path())
	if n.Help != "" {
		fmt.Fprintf(&b, "\n%s\n", n.Help)
	}

	if len(n.Args) > 0 {
		b.WriteString("\nArguments:\n")
		for _, a := range n.Args {
			fmt.Fprintf(&b, "  %s %s    %s\n", strings.ToUpper(a.Name), argQualifier(a), a.Help)
		}
	}

	b.WriteString("\nFlags:\n")
	b.WriteString("  -h, --help    show this help\n")
	for _, f := range n.Flags {
		fmt.Fprintf(&b, "  %s%s%s %s    %s\n", flagShortPrefix(f), f.Long, flagArgSuffix(f), flagQualifier(f), f.Help)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderGroup(n *meshconfig.Node) string {
	var b strings.Builder
	path := n.Path()
	if path == "!" {
		path = "!help"
	}
	fmt.Fprintf(&b, "%s <subcommand> [args...]\n", path)
	if n.Help != "" {
		fmt.Fprintf(&b, "\n%s\n", n.Help)
	}

	b.WriteString("\nSubcommands:\n")
	width := 0
	for _, c := range n.Commands {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}
	for _, c := range n.Commands {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, c.Name, c.Help)
	}

	return strings.TrimRight(b.String(), "\n")
}

func argQualifier(a meshconfig.Arg) string {
	switch {
	case a.Greedy:
		return "(greedy)"
	case a.Default != nil:
		return fmt.Sprintf("(default=%q)", *a.Default)
	default:
		return "(required)"
	}
}

func flagArgSuffix(f meshconfig.Flag) string {
	if f.Arg == "" {
		return ""
	}
	return " <" + strings.ToUpper(f.Arg) + ">"
}

func flagQualifier(f meshconfig.Flag) string {
	switch {
	case f.Greedy:
		return "(greedy)"
	case f.Default != nil:
		return "(default)"
	case f.Required:
		return "(required)"
	default:
		return ""
	}
}

func flagShortPrefix(f meshconfig.Flag) string {
	if f.Short != "" {
		return f.Short + ", "
	}
	return "    "
}

// RenderRoot renders the synthetic root group wrapping the top-level
// command list, used for "!help" and for "unknown command" errors.
func RenderRoot(root *meshconfig.Node) string {
	var b strings.Builder
	b.WriteString("!<command> [args...] [flags...]\n")
	b.WriteString("\nCommands:\n")
	width := 0
	for _, c := range root.Commands {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}
	for _, c := range root.Commands {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, c.Name, c.Help)
	}
	return strings.TrimRight(b.String(), "\n")
}
