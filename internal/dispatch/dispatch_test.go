package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dark-Alex-17/meshexec/internal/meshconfig"
)

func strPtr(s string) *string { return &s }

func exampleConfig(t *testing.T) *meshconfig.RootConfig {
	t.Helper()
	checkPort := &meshconfig.Node{
		Name:    "check-port",
		Command: `sudo lsof -i :"$port"`,
		Args:    []meshconfig.Arg{{Name: "port"}},
	}
	network := &meshconfig.Node{Name: "network", Commands: []*meshconfig.Node{checkPort}}
	checkPort.Parent = network

	loki := &meshconfig.Node{
		Name:    "loki",
		Command: `loki "$question"`,
		Args:    []meshconfig.Arg{{Name: "question", Greedy: true}},
	}

	listDiskSpace := &meshconfig.Node{
		Name:    "list-disk-space",
		Command: `df -h "$servarr"`,
		Args:    []meshconfig.Arg{{Name: "servarr"}},
		Flags: []meshconfig.Flag{
			{Long: "--servarr-name", Short: "-s", Arg: "servarr_name"},
		},
	}

	root := &meshconfig.Node{Commands: []*meshconfig.Node{loki, listDiskSpace, network}}
	loki.Parent = root
	listDiskSpace.Parent = root
	network.Parent = root

	cfg := &meshconfig.RootConfig{
		Device:          "/dev/ttyUSB0",
		Channel:         1,
		Shell:           "/bin/sh",
		MaxTextBytes:    200,
		MaxContentBytes: 180,
		Commands:        root.Commands,
		Root:            root,
	}
	return cfg
}

func TestDispatch_IgnoresNonBangMessage(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, "hello world")
	require.Equal(t, KindIgnore, res.Kind)
}

func TestDispatch_Help(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, "!help")
	require.Equal(t, KindReply, res.Kind)
	require.Contains(t, res.Reply, "loki")
	require.Contains(t, res.Reply, "list-disk-space")
	require.Contains(t, res.Reply, "network")
}

func TestDispatch_NestedGroupLeaf(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!network check-port 8080`)
	require.Equal(t, KindInvoke, res.Kind)
	require.Equal(t, "8080", res.Invocation.Env["port"])
}

func TestDispatch_GreedyArg(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!loki what is 2 plus 2`)
	require.Equal(t, KindInvoke, res.Kind)
	require.Equal(t, "what is 2 plus 2", res.Invocation.Env["question"])
}

func TestDispatch_FlagAndPositional(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!list-disk-space radarr -s main`)
	require.Equal(t, KindInvoke, res.Kind)
	require.Equal(t, "radarr", res.Invocation.Env["servarr"])
	require.Equal(t, "main", res.Invocation.Env["servarr_name"])
}

func TestDispatch_MissingRequiredArg(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!list-disk-space`)
	require.Equal(t, KindReply, res.Kind)
	require.Contains(t, res.Reply, "missing required argument: servarr")
	require.Contains(t, res.Reply, "Arguments:")
}

func TestDispatch_UnknownCommand(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!nosuch`)
	require.Equal(t, KindReply, res.Kind)
	require.Contains(t, res.Reply, "unknown command: 'nosuch'")
	require.Contains(t, res.Reply, "Commands:")
}

func TestDispatch_HelpFlagOnLeaf(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!list-disk-space --help`)
	require.Equal(t, KindReply, res.Kind)
	require.Contains(t, res.Reply, "!list-disk-space [args...] [flags...]")
}

func TestDispatch_HelpFlagOnGroup(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!network -h`)
	require.Equal(t, KindReply, res.Kind)
	require.Contains(t, res.Reply, "!network <subcommand>")
}

func TestDispatch_UnknownFlag(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!list-disk-space radarr --bogus`)
	require.Equal(t, KindReply, res.Kind)
	require.Contains(t, res.Reply, "unknown flag: '--bogus'")
}

func TestDispatch_QuotedToken(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!loki "two words" more`)
	require.Equal(t, KindInvoke, res.Kind)
	require.Equal(t, "two words more", res.Invocation.Env["question"])
}

func TestDispatch_RepeatedFlagLastWins(t *testing.T) {
	cfg := exampleConfig(t)
	res := Dispatch(cfg, `!list-disk-space radarr -s first -s second`)
	require.Equal(t, KindInvoke, res.Kind)
	require.Equal(t, "second", res.Invocation.Env["servarr_name"])
}

func TestDispatch_Idempotence(t *testing.T) {
	cfg := exampleConfig(t)
	r1 := Dispatch(cfg, `!network check-port 8080`)
	r2 := Dispatch(cfg, `!network check-port 8080`)
	require.Equal(t, r1.Invocation.Env, r2.Invocation.Env)
	require.Equal(t, r1.Invocation.Leaf, r2.Invocation.Leaf)
}

func TestTokenize_QuotedSpan(t *testing.T) {
	toks := Tokenize(`foo "bar baz" qux`)
	require.Equal(t, []string{"foo", "bar baz", "qux"}, toks)
}

func TestTokenize_Empty(t *testing.T) {
	require.Empty(t, Tokenize(""))
	require.Empty(t, Tokenize("   "))
}
