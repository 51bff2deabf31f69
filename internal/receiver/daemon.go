// Daemon receiving GELF datagrams, reassembling and decoding them, and delivering translated events to the configured sink
package receiver

import (
	"context"
	"errors"
	"fmt"
	"gelfmover/internal/atomics"
	"gelfmover/internal/externalio/beats"
	"gelfmover/internal/externalio/console"
	"gelfmover/internal/externalio/journald"
	"gelfmover/internal/externalio/kafka"
	"gelfmover/internal/externalio/sentry"
	"gelfmover/internal/externalio/server"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/receiver/chunkstore"
	"gelfmover/internal/receiver/dispatcher"
	"gelfmover/internal/receiver/managers/in"
	"gelfmover/internal/receiver/managers/proc"
	"gelfmover/internal/receiver/metrics"
	"gelfmover/internal/receiver/processor"
	"gelfmover/internal/receiver/reaper"
	"gelfmover/internal/receiver/reassembler"
	"gelfmover/internal/receiver/translator"
	"net"
	"net/http"
	"os"
	"time"
)

// Create new receiver daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	ctx, cancel := context.WithCancel(context.Background())
	new = &Daemon{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	return
}

// Starts pipeline workers in background - gracefully shuts down if startup error is encountered
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// New context for the daemon
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = logctx.WithLogger(daemon.ctx, logctx.GetLogger(globalCtx))

	// Top level tag for daemon logs
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSRecv)
	namespace := logctx.GetTagList(daemon.ctx)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	daemon.cfg.setDefaults()
	err = daemon.cfg.validate()
	if err != nil {
		return
	}

	global.Hostname, err = os.Hostname()
	if err != nil {
		err = fmt.Errorf("failed to determine local hostname: %w", err)
		return
	}
	global.PID = os.Getpid()

	// Delivery
	daemon.sink, daemon.sinkShutdown, err = newSink(namespace, daemon.cfg)
	if err != nil {
		err = fmt.Errorf("failed creating %s sink: %w", daemon.cfg.SinkType, err)
		return
	}
	daemon.Dispatcher, err = dispatcher.New(namespace, daemon.sink, daemon.cfg.Dispatch)
	if err != nil {
		err = fmt.Errorf("failed creating dispatcher: %w", err)
		daemon.Shutdown()
		return
	}
	daemon.Dispatcher.Start(daemon.ctx)

	// Reassembly state
	daemon.Store, err = chunkstore.New(namespace, daemon.cfg.ShardCount, chunkstore.Limits{
		MaxSets:  daemon.cfg.MaxFragmentSets,
		MaxBytes: daemon.cfg.MaxBufferedBytes,
	})
	if err != nil {
		err = fmt.Errorf("failed creating chunk store: %w", err)
		daemon.Shutdown()
		return
	}
	reasm := reassembler.New(namespace, daemon.Store)

	daemon.Reaper, err = reaper.New(namespace, daemon.Store, daemon.cfg.SweepInterval, daemon.cfg.CompletionDeadline)
	if err != nil {
		err = fmt.Errorf("failed creating reaper: %w", err)
		daemon.Shutdown()
		return
	}
	reaperCtx, reaperCancel := context.WithCancel(daemon.ctx)
	daemon.stopReaper = reaperCancel
	daemon.reaperWG.Add(1)
	go func() {
		defer daemon.reaperWG.Done()
		daemon.Reaper.Run(logctx.OverwriteCtxTag(reaperCtx, daemon.Reaper.Namespace))
	}()

	trans, err := translator.New(daemon.cfg.LoggerName, daemon.cfg.SeverityMap)
	if err != nil {
		err = fmt.Errorf("failed creating translator: %w", err)
		daemon.Shutdown()
		return
	}

	// Processors
	daemon.Mgrs.Proc, err = proc.NewInstanceManager(daemon.ctx,
		daemon.cfg.ProcessorQueue,
		processor.Pipeline{
			Reassembler:     reasm,
			Translator:      trans,
			Dispatcher:      daemon.Dispatcher,
			MaxDecompressed: daemon.cfg.MaxDecompressedBytes,
		})
	if err != nil {
		err = fmt.Errorf("failed adding new processor manager: %w", err)
		daemon.Shutdown()
		return
	}
	for i := 0; i < daemon.cfg.ProcessorThreads; i++ {
		daemon.Mgrs.Proc.AddInstance()
	}

	// Listeners
	daemon.Mgrs.Input = in.NewInstanceManager(daemon.ctx,
		daemon.cfg.ListenAddr,
		daemon.cfg.SocketReadBuffer,
		daemon.cfg.SocketDrainLimit,
		daemon.Mgrs.Proc.Inbox)
	for i := 0; i < daemon.cfg.ReaderThreads; i++ {
		_, err = daemon.Mgrs.Input.AddInstance()
		if err != nil {
			err = fmt.Errorf("failed adding new listener instance: %w", err)
			daemon.Shutdown()
			return
		}
	}

	// Metrics Collector
	daemon.Mgrs.Shared = []metrics.Collector{daemon.Store, reasm, daemon.Reaper, daemon.Dispatcher}
	if collector, ok := daemon.sink.(metrics.Collector); ok {
		daemon.Mgrs.Shared = append(daemon.Mgrs.Shared, collector)
	}
	daemon.metricsCollector = metrics.New(daemon.Mgrs,
		daemon.cfg.MetricCollectionInterval,
		daemon.cfg.MetricMaxAge)
	workerCtx := daemon.ctx
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.metricsCollector.Run(workerCtx)
	}()
	daemon.MetricDataSearcher = daemon.metricsCollector.Registry.Search
	daemon.MetricDiscoverer = daemon.metricsCollector.Registry.Discover

	// Metric Server
	if daemon.cfg.MetricQueryServerEnabled {
		serverCtx := logctx.AppendCtxTag(daemon.ctx, global.NSMetric)
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetricSrv)

		daemon.MetricServer, err = server.SetupListener(serverCtx,
			daemon.cfg.MetricQueryServerPort,
			daemon.MetricDataSearcher,
			daemon.MetricDiscoverer,
			daemon.metricsCollector.Registry.Latest)
		if err != nil {
			err = fmt.Errorf("failed setting up metric server: %w", err)
			daemon.Shutdown()
			return
		}
		daemon.wg.Add(1)
		go func() {
			defer daemon.wg.Done()
			server.Start(serverCtx, daemon.MetricServer)
		}()
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Startup complete, receiving on %s and delivering to %s\n", daemon.ListenAddr(), daemon.cfg.SinkType)
	return
}

// Builds the configured sink and its release function
func newSink(namespace []string, cfg Config) (sink dispatcher.Sink, shutdown func() error, err error) {
	switch cfg.SinkType {
	case global.SinkSentry:
		var mod *sentry.Sink
		mod, err = sentry.New(namespace, cfg.SentryDSN, cfg.SinkTimeout)
		if err != nil {
			return
		}
		sink, shutdown = mod, mod.Shutdown
	case global.SinkBeats:
		var mod *beats.OutModule
		mod, err = beats.NewOutput(namespace, cfg.BeatsAddress, cfg.SinkTimeout)
		if err != nil {
			return
		}
		sink, shutdown = mod, mod.Shutdown
	case global.SinkKafka:
		var mod *kafka.OutModule
		mod, err = kafka.NewOutput(namespace, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.SinkTimeout)
		if err != nil {
			return
		}
		sink, shutdown = mod, mod.Shutdown
	case global.SinkJournal:
		var mod *journald.OutModule
		mod, err = journald.NewOutput(namespace, cfg.JournalURL, cfg.SinkTimeout)
		if err != nil {
			return
		}
		sink, shutdown = mod, mod.Shutdown
	case global.SinkConsole:
		sink = console.NewOutput(os.Stdout)
		shutdown = func() error { return nil }
	default:
		err = fmt.Errorf("unknown sink type %q", cfg.SinkType)
	}
	return
}

// Address the listeners are bound to (nil before Start)
func (daemon *Daemon) ListenAddr() (addr *net.UDPAddr) {
	if daemon.Mgrs.Input == nil {
		return
	}
	addr = daemon.Mgrs.Input.LocalAddr()
	return
}

// Blocking daemon waiter
func (daemon *Daemon) Run() {
	<-daemon.ctx.Done()
}

// Gracefully shutdown pipeline workers front to back (errors are printed to program log buffer)
func (daemon *Daemon) Shutdown() {
	daemon.shutOnce.Do(daemon.shutdown)
}

func (daemon *Daemon) shutdown() {
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	// Stop metric server
	if daemon.MetricServer != nil {
		shutdownCtx, cancel := context.WithTimeout(daemon.ctx, global.HTTPWriteTimeout)
		err := daemon.MetricServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", err)
		}
	}

	// Stop listener instances (each drains its socket first)
	if daemon.Mgrs.Input != nil {
		daemon.Mgrs.Input.RemoveAll()
	}

	// Let processors empty the inbox, then stop them
	if daemon.Mgrs.Proc != nil {
		success, last := atomics.WaitUntilZero(&daemon.Mgrs.Proc.Inbox.Metrics.Depth, daemon.cfg.ShutdownGrace)
		if !success {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"processor inbox did not empty in time: dropped %d datagrams\n", last)
		}
		daemon.Mgrs.Proc.RemoveAll()
	}

	// Partial messages left in the store are abandoned
	if daemon.stopReaper != nil {
		daemon.stopReaper()
		daemon.reaperWG.Wait()
	}
	if daemon.Store != nil && daemon.Store.Len() > 0 {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"discarding %d incomplete messages\n", daemon.Store.Len())
	}

	// Drain delivery
	if daemon.Dispatcher != nil {
		discarded := daemon.Dispatcher.Shutdown(daemon.ctx, daemon.cfg.ShutdownGrace)
		if discarded > 0 {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"discarded %d undelivered events\n", discarded)
		}
	}
	if daemon.sinkShutdown != nil {
		err := daemon.sinkShutdown()
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"sink did not close cleanly: %v\n", err)
		}
	}

	// Stop the run loop after instances are drained and stopped
	daemon.cancel()

	// Wait for all workers to finish (with timeout)
	done := make(chan struct{})
	go func() {
		daemon.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	case <-time.After(global.ReceiveShutdownTimeout):
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Timeout: receive daemon did not shutdown within %v seconds\n",
			global.ReceiveShutdownTimeout.Seconds())
	}
}
