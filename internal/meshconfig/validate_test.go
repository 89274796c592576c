package meshconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func minimalConfig() *RootConfig {
	return &RootConfig{
		Device:          "/dev/ttyUSB0",
		Channel:         1,
		Shell:           "/bin/sh",
		MaxTextBytes:    200,
		MaxContentBytes: 180,
		Commands: []*Node{
			{Name: "a", Command: "echo hi"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, Validate(minimalConfig()))
}

func TestValidate_DuplicateChildNames(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands = append(cfg.Commands, &Node{Name: "a", Command: "echo again"})
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate child name")
}

func TestValidate_GroupWithArgs(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands = []*Node{
		{Name: "g", Args: []Arg{{Name: "x"}}, Commands: []*Node{
			{Name: "child", Command: "echo hi"},
		}},
	}
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not have args or flags")
}

func TestValidate_GreedyArgMustBeLast(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands[0].Args = []Arg{
		{Name: "first", Greedy: true},
		{Name: "second"},
	}
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "greedy arg must be the last")
}

func TestValidate_TwoGreedyArgsRejected(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands[0].Args = []Arg{
		{Name: "first", Greedy: true},
		{Name: "second", Greedy: true},
	}
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "at most one arg")
}

func TestValidate_FlagLongMustStartWithDashDash(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands[0].Flags = []Flag{{Long: "bad"}}
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must start with --")
}

func TestValidate_FlagShortShape(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands[0].Flags = []Flag{{Long: "--foo", Short: "--f"}}
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be '-' followed by")
}

func TestValidate_ReservedFlagNames(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands[0].Flags = []Flag{{Long: "--help"}}
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "reserved")
}

func TestValidate_GreedyFlagRequiresArg(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands[0].Flags = []Flag{{Long: "--tail", Greedy: true}}
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must have arg set")
}

func TestValidate_GreedyFlagMustBeLast(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands[0].Flags = []Flag{
		{Long: "--tail", Arg: "tail", Greedy: true},
		{Long: "--other", Arg: "other"},
	}
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "greedy flag must be the last")
}

func TestValidate_DuplicateBindingNames(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands[0].Flags = []Flag{
		{Long: "--foo", Arg: "bar"},
		{Long: "--bar"},
	}
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "collides")
}

func TestValidate_InvalidNodeName(t *testing.T) {
	cfg := minimalConfig()
	cfg.Commands[0].Name = "bad name"
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must match")
}

func TestArg_BindingNameReplacesHyphens(t *testing.T) {
	a := Arg{Name: "servarr-name"}
	require.Equal(t, "servarr_name", a.BindingName())
}

func TestArg_Required(t *testing.T) {
	require.True(t, Arg{Name: "x"}.Required())
	require.False(t, Arg{Name: "x", Default: strPtr("v")}.Required())
}

func TestFlag_BindingName(t *testing.T) {
	require.Equal(t, "verbose", Flag{Long: "--verbose"}.BindingName())
	require.Equal(t, "servarr_name", Flag{Long: "--servarr-name", Arg: "servarr-name"}.BindingName())
}
