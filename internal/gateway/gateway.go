// Package gateway wires the transport, dispatcher, executor, and chunker
// together into the single cooperative event loop described by the
// concurrency model: one inbound message is gated, dispatched, executed,
// and fully replied before the next is drawn.
package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dark-Alex-17/meshexec/internal/chunk"
	"github.com/Dark-Alex-17/meshexec/internal/dispatch"
	"github.com/Dark-Alex-17/meshexec/internal/exec"
	"github.com/Dark-Alex-17/meshexec/internal/meshconfig"
	"github.com/Dark-Alex-17/meshexec/internal/transport"
)

// ShutdownGrace bounds how long Run waits, after a shutdown signal, for the
// in-flight invocation (if any) to finish before forcing it to exit. A var,
// not a const, so tests can shrink it instead of waiting out the real grace
// period.
var ShutdownGrace = 5 * time.Second

// Gateway owns the transport handle exclusively and runs the cooperative
// loop described in the concurrency model: no other component may call
// Transport.SendText while the loop is running.
type Gateway struct {
	Config    *meshconfig.RootConfig
	Transport transport.Transport
	Executor  *exec.Executor
	Logger    *zap.Logger
}

// New constructs a Gateway wired from cfg, using shell/shell_args from cfg
// for the Executor and the supplemented exec_timeout_seconds/max_output_bytes
// fields for its limits.
func New(cfg *meshconfig.RootConfig, t transport.Transport, logger *zap.Logger) *Gateway {
	return &Gateway{
		Config:    cfg,
		Transport: t,
		Logger:    logger,
		Executor: &exec.Executor{
			Shell:          cfg.Shell,
			ShellArgs:      cfg.ShellArgs,
			Timeout:        time.Duration(cfg.ExecTimeoutSecondsOrDefault()) * time.Second,
			MaxOutputBytes: cfg.MaxOutputBytesOrDefault(),
		},
	}
}

// Run pulls inbound events one at a time until ctx is cancelled or the
// transport's event stream closes or errors. Each event is handled to
// completion — including all chunk pacing — before the next is drawn.
func (g *Gateway) Run(ctx context.Context) error {
	events, errs := g.Transport.RecvText(ctx)

	for {
		select {
		case <-ctx.Done():
			return g.shutdown()
		case err, ok := <-errs:
			if !ok {
				// No error was delivered; keep draining events until the
				// event channel itself closes.
				errs = nil
				continue
			}
			g.log().Error("transport stream closed with error", zap.Error(err))
			return err
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if evt.Channel != g.Config.Channel {
				continue
			}
			g.handleGraceful(ctx, evt)
		}
	}
}

// shutdown closes the transport. By the time Run reaches here, handleGraceful
// has already waited out any in-flight invocation (or forced it to exit), so
// there is nothing left running for Close to race against.
func (g *Gateway) shutdown() error {
	g.log().Info("shutting down")
	return g.Transport.Close()
}

// handleGraceful runs handle for one event on its own goroutine so Run's
// select loop can keep watching ctx while the invocation is in flight. On
// ctx cancellation it gives the invocation up to ShutdownGrace to finish on
// its own — Executor.Run observes the context passed to the goroutine and
// kills the child immediately once that context is cancelled, so after the
// grace period expires here the invocation's own context is cancelled too,
// guaranteeing handle returns. Only one of these ever runs at a time: Run
// does not draw the next event until this call returns.
func (g *Gateway) handleGraceful(parent context.Context, evt transport.Event) {
	execCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		g.handle(execCtx, evt)
		close(done)
	}()

	select {
	case <-done:
		return
	case <-parent.Done():
	}

	select {
	case <-done:
	case <-time.After(ShutdownGrace):
		g.log().Warn("shutdown grace period exceeded, cancelling in-flight invocation")
		cancel()
		<-done
	}
}

func (g *Gateway) handle(ctx context.Context, evt transport.Event) {
	correlationID := uuid.New().String()
	log := g.log().With(zap.String("correlation_id", correlationID), zap.String("sender", evt.SenderID))

	log.Debug("gate", zap.String("text", evt.Text))
	result := dispatch.Dispatch(g.Config, evt.Text)

	switch result.Kind {
	case dispatch.KindIgnore:
		return
	case dispatch.KindReply:
		log.Info("dispatch produced reply", zap.String("reply", result.Reply))
		g.reply(ctx, log, result.Reply)
		return
	case dispatch.KindInvoke:
		log.Info("executing", zap.String("leaf", result.Invocation.Leaf.Path()))
		output := g.Executor.Run(ctx, result.Invocation)
		log.Info("executed", zap.Int("output_bytes", len(output)))
		if ctx.Err() != nil {
			log.Warn("invocation cancelled during shutdown, reply not sent")
			return
		}
		g.reply(ctx, log, output)
	}
}

func (g *Gateway) reply(ctx context.Context, log *zap.Logger, text string) {
	delay := time.Duration(g.Config.ChunkDelayMS) * time.Millisecond
	if err := chunk.Send(ctx, g.Transport, text, g.Config.MaxContentBytes, delay); err != nil {
		log.Warn("send failed, abandoning remaining frames", zap.Error(err))
	}
}

func (g *Gateway) log() *zap.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return zap.NewNop()
}
