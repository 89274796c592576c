// Package meshconfig defines the in-memory command tree and the root
// gateway configuration, and provides the YAML loader that builds them.
package meshconfig

import "strings"

// Arg is a single positional argument accepted by a Leaf.
type Arg struct {
	Name    string  `yaml:"name"`
	Help    string  `yaml:"help,omitempty"`
	Default *string `yaml:"default,omitempty"`
	Greedy  bool    `yaml:"greedy,omitempty"`
}

// Required reports whether the argument has no default and must be supplied.
func (a Arg) Required() bool {
	return a.Default == nil
}

// BindingName is the environment-variable identifier this arg's value is
// exported under: hyphens in the name become underscores.
func (a Arg) BindingName() string {
	return strings.ReplaceAll(a.Name, "-", "_")
}

// Flag is a named option accepted by a Leaf, long-form required, short-form
// optional, boolean unless Arg is set.
type Flag struct {
	Long     string  `yaml:"long"`
	Short    string  `yaml:"short,omitempty"`
	Help     string  `yaml:"help,omitempty"`
	Arg      string  `yaml:"arg,omitempty"`
	Required bool    `yaml:"required,omitempty"`
	Default  *string `yaml:"default,omitempty"`
	Greedy   bool    `yaml:"greedy,omitempty"`
}

// IsBoolean reports whether the flag carries no value (a presence switch).
func (f Flag) IsBoolean() bool {
	return f.Arg == ""
}

// LongName returns Long with its leading dashes stripped.
func (f Flag) LongName() string {
	return strings.TrimPrefix(f.Long, "--")
}

// BindingName is the environment-variable identifier this flag's value is
// exported under. For value flags it is Arg (hyphens to underscores); for
// boolean flags it is Arg if set, else the long name with hyphens to
// underscores.
func (f Flag) BindingName() string {
	name := f.Arg
	if name == "" {
		name = f.LongName()
	}
	return strings.ReplaceAll(name, "-", "_")
}

// Node is a single entry in the command tree. It carries both the Leaf and
// Group shapes and is valid only when exactly one of Command or Commands is
// populated; this mirrors the flat representation used by the original
// prototype rather than a Go interface-based sum type, since the data
// naturally validates as "exactly one of two optional fields" rather than a
// closed set of implementations.
type Node struct {
	Name     string  `yaml:"name"`
	Help     string  `yaml:"help,omitempty"`
	Command  string  `yaml:"command,omitempty"`
	Args     []Arg   `yaml:"args,omitempty"`
	Flags    []Flag  `yaml:"flags,omitempty"`
	Commands []*Node `yaml:"commands,omitempty"`

	// Parent is nil at the root group and set during tree assembly; it lets
	// the help renderer and dispatcher recover a node's full path without
	// threading path slices through every call.
	Parent *Node `yaml:"-"`
}

// IsLeaf reports whether this node is a Leaf (has a command body).
func (n *Node) IsLeaf() bool {
	return n.Command != ""
}

// IsGroup reports whether this node is a Group (has children).
func (n *Node) IsGroup() bool {
	return len(n.Commands) > 0
}

// Child returns the direct child of a Group matching name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Path returns the '!'-prefixed space-joined chain of names from the root
// group(s) down to this node, e.g. "!network check-port".
func (n *Node) Path() string {
	var names []string
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		names = append([]string{cur.Name}, names...)
	}
	return "!" + strings.Join(names, " ")
}

// RootConfig is the top-level gateway configuration as loaded from YAML.
type RootConfig struct {
	Device     string   `yaml:"device"`
	Channel    int      `yaml:"channel"`
	Baud       *int     `yaml:"baud,omitempty"`
	Shell      string   `yaml:"shell"`
	ShellArgs  []string `yaml:"shell_args,omitempty"`

	MaxTextBytes    int `yaml:"max_text_bytes"`
	ChunkDelayMS    int `yaml:"chunk_delay"`
	MaxContentBytes int `yaml:"max_content_bytes"`

	// ExecTimeoutSeconds and MaxOutputBytes bound the Executor (§4.E);
	// promoted to config so operators can tune them without a rebuild.
	ExecTimeoutSeconds int `yaml:"exec_timeout_seconds,omitempty"`
	MaxOutputBytes     int `yaml:"max_output_bytes,omitempty"`

	Commands []*Node `yaml:"commands"`

	// Root is a synthetic Group wrapping Commands, used so the help
	// renderer and dispatcher can treat "the top of the tree" uniformly
	// with any other Group.
	Root *Node `yaml:"-"`
}

// DefaultExecTimeoutSeconds is used when a config omits exec_timeout_seconds.
const DefaultExecTimeoutSeconds = 60

// DefaultMaxOutputBytes is used when a config omits max_output_bytes.
const DefaultMaxOutputBytes = 64 * 1024

func (c *RootConfig) execTimeoutSeconds() int {
	if c.ExecTimeoutSeconds > 0 {
		return c.ExecTimeoutSeconds
	}
	return DefaultExecTimeoutSeconds
}

func (c *RootConfig) maxOutputBytes() int {
	if c.MaxOutputBytes > 0 {
		return c.MaxOutputBytes
	}
	return DefaultMaxOutputBytes
}

// ExecTimeoutSecondsOrDefault returns the effective Executor timeout.
func (c *RootConfig) ExecTimeoutSecondsOrDefault() int {
	return c.execTimeoutSeconds()
}

// MaxOutputBytesOrDefault returns the effective Executor output cap.
func (c *RootConfig) MaxOutputBytesOrDefault() int {
	return c.maxOutputBytes()
}
