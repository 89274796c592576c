package meshconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// loadStack tracks the canonicalized absolute paths currently being read,
// for import-cycle detection (§4.B step 3).
type loadStack struct {
	chain []string
	seen  map[string]bool
}

func newLoadStack() *loadStack {
	return &loadStack{seen: map[string]bool{}}
}

func (s *loadStack) push(path string) error {
	if s.seen[path] {
		chain := append(append([]string{}, s.chain...), path)
		return &CycleError{Chain: chain}
	}
	s.seen[path] = true
	s.chain = append(s.chain, path)
	return nil
}

func (s *loadStack) pop() {
	last := s.chain[len(s.chain)-1]
	s.chain = s.chain[:len(s.chain)-1]
	delete(s.seen, last)
}

// resolveYAMLPath locates the file a path refers to, trying the literal
// path first and falling back to a .yaml then .yml suffix when the given
// path has no extension — the same fallback the original prototype applied
// at its config entrypoint, extended here to cover import paths too.
func resolveYAMLPath(p string) (string, error) {
	candidates := []string{p}
	if filepath.Ext(p) == "" {
		candidates = append(candidates, p+".yaml", p+".yml")
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("file not found: %s", p)
}

func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// entryShape is decoded first to detect an {import: <path>} entry before
// attempting to decode the entry as an inline Command node.
type entryShape struct {
	Import string `yaml:"import"`
}

// nodeRaw mirrors Node but keeps Commands as raw yaml.Node values so nested
// entries can themselves be import directives before being resolved into
// concrete *Node children.
type nodeRaw struct {
	Name     string      `yaml:"name"`
	Help     string      `yaml:"help,omitempty"`
	Command  string      `yaml:"command,omitempty"`
	Args     []Arg       `yaml:"args,omitempty"`
	Flags    []Flag      `yaml:"flags,omitempty"`
	Commands []yaml.Node `yaml:"commands,omitempty"`
}

// Load reads and validates a root configuration document, recursively
// resolving any {import: <path>} entries relative to the directory of the
// file that references them.
func Load(path string) (*RootConfig, error) {
	resolved, err := resolveYAMLPath(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	canon, err := canonicalize(resolved)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	stack := newLoadStack()
	if err := stack.push(canon); err != nil {
		return nil, err
	}
	defer stack.pop()

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &LoadError{Path: resolved, Err: err}
	}

	var raw struct {
		Device          string      `yaml:"device"`
		Channel         int         `yaml:"channel"`
		Baud            *int        `yaml:"baud"`
		Shell           string      `yaml:"shell"`
		ShellArgs       []string    `yaml:"shell_args"`
		MaxTextBytes    int         `yaml:"max_text_bytes"`
		ChunkDelay      int         `yaml:"chunk_delay"`
		MaxContentBytes int         `yaml:"max_content_bytes"`
		ExecTimeout     int         `yaml:"exec_timeout_seconds"`
		MaxOutputBytes  int         `yaml:"max_output_bytes"`
		Commands        []yaml.Node `yaml:"commands"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Path: resolved, Err: err}
	}

	baseDir := filepath.Dir(resolved)
	children, err := resolveEntries(raw.Commands, baseDir, stack)
	if err != nil {
		return nil, err
	}

	root := &Node{Commands: children}
	for _, c := range children {
		c.Parent = root
	}

	cfg := &RootConfig{
		Device:             raw.Device,
		Channel:            raw.Channel,
		Baud:               raw.Baud,
		Shell:              raw.Shell,
		ShellArgs:          raw.ShellArgs,
		MaxTextBytes:       raw.MaxTextBytes,
		ChunkDelayMS:       raw.ChunkDelay,
		MaxContentBytes:    raw.MaxContentBytes,
		ExecTimeoutSeconds: raw.ExecTimeout,
		MaxOutputBytes:     raw.MaxOutputBytes,
		Commands:           children,
		Root:               root,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveEntries resolves a raw commands list: each entry is either an
// {import: path} directive (spliced, flattened, in place) or an inline
// Command node (recursed into).
func resolveEntries(entries []yaml.Node, baseDir string, stack *loadStack) ([]*Node, error) {
	var out []*Node
	for i := range entries {
		entry := entries[i]

		var shape entryShape
		if err := entry.Decode(&shape); err != nil {
			return nil, fmt.Errorf("decoding commands[%d]: %w", i, err)
		}

		if shape.Import != "" {
			imported, err := loadImport(shape.Import, baseDir, stack)
			if err != nil {
				return nil, err
			}
			out = append(out, imported...)
			continue
		}

		var raw nodeRaw
		if err := entry.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding commands[%d]: %w", i, err)
		}

		node := &Node{
			Name:    raw.Name,
			Help:    raw.Help,
			Command: raw.Command,
			Args:    raw.Args,
			Flags:   raw.Flags,
		}

		if len(raw.Commands) > 0 {
			childBaseDir := baseDir
			children, err := resolveEntries(raw.Commands, childBaseDir, stack)
			if err != nil {
				return nil, err
			}
			node.Commands = children
			for _, c := range children {
				c.Parent = node
			}
		}

		out = append(out, node)
	}
	return out, nil
}

// loadImport resolves a single {import: path} directive: reads the target
// file relative to baseDir, pushing its canonical path onto stack for cycle
// detection, and returns the one or many Command nodes it contains.
func loadImport(importPath, baseDir string, stack *loadStack) ([]*Node, error) {
	full := importPath
	if !filepath.IsAbs(full) {
		full = filepath.Join(baseDir, importPath)
	}
	resolved, err := resolveYAMLPath(full)
	if err != nil {
		return nil, &LoadError{Path: importPath, Err: err}
	}
	canon, err := canonicalize(resolved)
	if err != nil {
		return nil, &LoadError{Path: importPath, Err: err}
	}

	if err := stack.push(canon); err != nil {
		return nil, err
	}
	defer stack.pop()

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &LoadError{Path: resolved, Err: err}
	}

	var top yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, &LoadError{Path: resolved, Err: err}
	}
	if len(top.Content) == 0 {
		return nil, &LoadError{Path: resolved, Err: fmt.Errorf("empty document")}
	}
	doc := top.Content[0]
	childBaseDir := filepath.Dir(resolved)

	switch doc.Kind {
	case yaml.SequenceNode:
		items := make([]yaml.Node, len(doc.Content))
		for i, c := range doc.Content {
			items[i] = *c
		}
		return resolveEntries(items, childBaseDir, stack)
	case yaml.MappingNode:
		nodes, err := resolveEntries([]yaml.Node{*doc}, childBaseDir, stack)
		if err != nil {
			return nil, err
		}
		return nodes, nil
	default:
		return nil, &LoadError{Path: resolved, Err: fmt.Errorf("expected a mapping or sequence at document root")}
	}
}
