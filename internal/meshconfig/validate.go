package meshconfig

import (
	"fmt"
	"regexp"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
var longFlagRe = regexp.MustCompile(`^--[a-zA-Z0-9-]+$`)
var shortFlagRe = regexp.MustCompile(`^-[^-]$`)

// Validate runs the full structural validation pass of §3 against an
// already-assembled config tree, returning the first violation found with
// its locator path.
func Validate(cfg *RootConfig) error {
	if cfg.Device == "" {
		return newValidationError("root", "device must not be empty")
	}
	if cfg.Shell == "" {
		return newValidationError("root", "shell must not be empty")
	}
	if cfg.MaxTextBytes < 16 {
		return newValidationError("root", "max_text_bytes must be >= 16")
	}
	if cfg.ChunkDelayMS < 0 {
		return newValidationError("root", "chunk_delay must be >= 0")
	}
	if cfg.MaxContentBytes <= 0 {
		return newValidationError("root", "max_content_bytes must be > 0")
	}
	if len(cfg.Commands) == 0 {
		return newValidationError("root.commands", "must not be empty")
	}

	if err := validateFooterReserve(cfg); err != nil {
		return err
	}

	return validateNodes(cfg.Commands, "root.commands")
}

// validateFooterReserve implements the Open Question resolution recorded in
// DESIGN.md: the worst-case frame count is bounded by the configured
// output cap, since the Executor never produces more than that many bytes
// for the Chunker to split.
func validateFooterReserve(cfg *RootConfig) error {
	maxN := (cfg.MaxOutputBytesOrDefault() + cfg.MaxContentBytes - 1) / cfg.MaxContentBytes
	if maxN < 1 {
		maxN = 1
	}
	footer := fmt.Sprintf(" [%d/%d]", maxN, maxN)
	if cfg.MaxContentBytes+len(footer) > cfg.MaxTextBytes {
		return newValidationError("root",
			"max_content_bytes (%d) + worst-case footer %q (for up to %d frames) exceeds max_text_bytes (%d)",
			cfg.MaxContentBytes, footer, maxN, cfg.MaxTextBytes)
	}
	return nil
}

func validateNodes(nodes []*Node, locator string) error {
	seen := map[string]bool{}
	for i, n := range nodes {
		loc := fmt.Sprintf("%s[%d]", locator, i)

		if n.Name == "" {
			return newValidationError(loc, "name must not be empty")
		}
		if !nameRe.MatchString(n.Name) {
			return newValidationError(loc, "name %q must match [A-Za-z0-9_-]+", n.Name)
		}
		if seen[n.Name] {
			return newValidationError(loc, "duplicate child name %q", n.Name)
		}
		seen[n.Name] = true

		isLeaf := n.Command != ""
		isGroup := len(n.Commands) > 0
		switch {
		case isLeaf && isGroup:
			return newValidationError(loc, "node has both command and commands; exactly one is required")
		case !isLeaf && !isGroup:
			return newValidationError(loc, "node has neither command nor commands; exactly one is required")
		case isGroup:
			if len(n.Args) > 0 || len(n.Flags) > 0 {
				return newValidationError(loc, "a group node must not have args or flags")
			}
			if err := validateNodes(n.Commands, loc+".commands"); err != nil {
				return err
			}
		case isLeaf:
			if err := validateLeaf(n, loc); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateLeaf(n *Node, loc string) error {
	if n.Command == "" {
		return newValidationError(loc, "command must not be empty")
	}

	greedyArgIdx := -1
	envNames := map[string]string{} // binding name -> owning arg or flag
	for i, a := range n.Args {
		argLoc := fmt.Sprintf("%s.args[%d]", loc, i)
		if a.Name == "" {
			return newValidationError(argLoc, "name must not be empty")
		}
		if !nameRe.MatchString(a.Name) {
			return newValidationError(argLoc, "name %q must match [A-Za-z0-9_-]+", a.Name)
		}
		if prev, ok := envNames[a.BindingName()]; ok {
			return newValidationError(argLoc, "binding name %q collides with %s", a.BindingName(), prev)
		}
		envNames[a.BindingName()] = fmt.Sprintf("arg %q", a.Name)
		if a.Greedy {
			if greedyArgIdx != -1 {
				return newValidationError(argLoc, "at most one arg may be greedy")
			}
			greedyArgIdx = i
		}
	}
	if greedyArgIdx != -1 && greedyArgIdx != len(n.Args)-1 {
		return newValidationError(fmt.Sprintf("%s.args[%d]", loc, greedyArgIdx), "the greedy arg must be the last arg")
	}

	greedyFlagIdx := -1
	bindingNames := map[string]string{}
	claim := func(flagLoc, kind, name string) error {
		if name == "" {
			return nil
		}
		if prev, ok := bindingNames[name]; ok {
			return newValidationError(flagLoc, "%s %q collides with %s", kind, name, prev)
		}
		bindingNames[name] = fmt.Sprintf("%s %q", kind, name)
		return nil
	}

	for i, f := range n.Flags {
		flagLoc := fmt.Sprintf("%s.flags[%d]", loc, i)
		if !longFlagRe.MatchString(f.Long) {
			return newValidationError(flagLoc, "long %q must start with -- and contain only [a-zA-Z0-9-]", f.Long)
		}
		if f.Short != "" && !shortFlagRe.MatchString(f.Short) {
			return newValidationError(flagLoc, "short %q must be '-' followed by one non-dash character", f.Short)
		}
		if f.Greedy {
			if f.Arg == "" {
				return newValidationError(flagLoc, "a greedy flag must have arg set")
			}
			if greedyFlagIdx != -1 {
				return newValidationError(flagLoc, "at most one flag may be greedy")
			}
			greedyFlagIdx = i
		}

		longName := f.LongName()
		reserved := map[string]bool{"help": true, "h": true}
		if reserved[longName] {
			return newValidationError(flagLoc, "long name %q is reserved", f.Long)
		}
		if f.Short != "" && reserved[f.Short[1:]] {
			return newValidationError(flagLoc, "short name %q is reserved", f.Short)
		}
		if f.Arg != "" && reserved[f.Arg] {
			return newValidationError(flagLoc, "arg name %q is reserved", f.Arg)
		}
		if err := claim(flagLoc, "long", longName); err != nil {
			return err
		}
		if f.Short != "" {
			if err := claim(flagLoc, "short", f.Short[1:]); err != nil {
				return err
			}
		}
		// A flag's own arg may repeat its long name; it binds only one name.
		if f.Arg != "" && f.Arg != longName {
			if err := claim(flagLoc, "arg", f.Arg); err != nil {
				return err
			}
		}
		if prev, ok := envNames[f.BindingName()]; ok {
			return newValidationError(flagLoc, "binding name %q collides with %s", f.BindingName(), prev)
		}
		envNames[f.BindingName()] = fmt.Sprintf("flag %q", f.Long)
	}
	if greedyFlagIdx != -1 && greedyFlagIdx != len(n.Flags)-1 {
		return newValidationError(fmt.Sprintf("%s.flags[%d]", loc, greedyFlagIdx), "the greedy flag must be the last flag")
	}

	return nil
}
