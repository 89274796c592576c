package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Dark-Alex-17/meshexec/internal/meshconfig"
	"github.com/Dark-Alex-17/meshexec/internal/transport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() *meshconfig.RootConfig {
	leaf := &meshconfig.Node{Name: "echo", Command: `echo "$msg"`, Args: []meshconfig.Arg{{Name: "msg"}}}
	root := &meshconfig.Node{Commands: []*meshconfig.Node{leaf}}
	leaf.Parent = root
	return &meshconfig.RootConfig{
		Device:          "/dev/ttyUSB0",
		Channel:         1,
		Shell:           "/bin/sh",
		ShellArgs:       []string{"-c"},
		MaxTextBytes:    200,
		MaxContentBytes: 180,
		ChunkDelayMS:    0,
		Commands:        root.Commands,
		Root:            root,
	}
}

func TestGateway_IgnoresOtherChannels(t *testing.T) {
	cfg := testConfig()
	mock := transport.NewMock()
	gw := New(cfg, mock, nil)

	mock.Inject(transport.Event{Channel: 99, Text: "!help"})
	mock.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, gw.Run(ctx))
	require.Empty(t, mock.Sent())
}

func TestGateway_DispatchesAndReplies(t *testing.T) {
	cfg := testConfig()
	mock := transport.NewMock()
	gw := New(cfg, mock, nil)

	mock.Inject(transport.Event{Channel: 1, Text: "!echo hello"})
	mock.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, gw.Run(ctx))

	sent := mock.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "hello\n", sent[0])
}

func TestGateway_HelpReplyNeedsNoExecution(t *testing.T) {
	cfg := testConfig()
	mock := transport.NewMock()
	gw := New(cfg, mock, nil)

	mock.Inject(transport.Event{Channel: 1, Text: "!help"})
	mock.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, gw.Run(ctx))
	require.Len(t, mock.Sent(), 1)
	require.Contains(t, mock.Sent()[0], "echo")
}

func TestGateway_StopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	mock := transport.NewMock()
	gw := New(cfg, mock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("gateway did not stop after context cancel")
	}
}

func TestGateway_ShutdownWaitsOutInFlightInvocation(t *testing.T) {
	cfg := testConfig()
	cfg.Commands[0].Command = `sleep 0.2; echo "$msg"`
	mock := transport.NewMock()
	gw := New(cfg, mock, nil)

	mock.Inject(transport.Event{Channel: 1, Text: "!echo hello"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("gateway did not return after shutdown grace handling")
	}
	require.Len(t, mock.Sent(), 1)
	require.Equal(t, "hello\n", mock.Sent()[0])
}

func TestGateway_ShutdownForcesExitPastGracePeriod(t *testing.T) {
	original := ShutdownGrace
	ShutdownGrace = 50 * time.Millisecond
	defer func() { ShutdownGrace = original }()

	cfg := testConfig()
	cfg.Commands[0].Command = `sleep 5; echo "$msg"`
	mock := transport.NewMock()
	gw := New(cfg, mock, nil)

	mock.Inject(transport.Event{Channel: 1, Text: "!echo hello"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("gateway did not force the in-flight invocation to exit after the grace period")
	}
	require.Empty(t, mock.Sent())
}
