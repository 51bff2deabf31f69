package lifecycle

import (
	"context"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"os"
	"os/signal"
	"syscall"
)

type DaemonLike interface {
	Shutdown()
}

// Handles all incoming signals from external sources.
// Blocks until a termination signal arrives (or ctx ends), then shuts the daemon down.
func SignalHandler(ctx context.Context, daemonManager DaemonLike) {
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			daemonManager.Shutdown()
			return
		case sig := <-sigChan:
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", sig)

			if sig == syscall.SIGHUP {
				// Configuration is read once at startup
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Reload not supported, restart the service to apply changes\n")
				continue
			}

			err := NotifyStopping(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", err)
			}

			daemonManager.Shutdown()

			logger := logctx.GetLogger(ctx)
			logger.Wake()
			return
		}
	}
}
