package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/lifecycle"
	"gelfmover/internal/logctx"
	"gelfmover/internal/receiver"
	"io/fs"
	"os"
)

func ReceiveMode(ctx context.Context, commandname string, args []string) {
	var configPath string
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	commandFlags.Parse(args[0:])
	logctx.SetLogLevel(ctx, global.Verbosity)

	daemonConfig, err := loadReceiveConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	recvDaemon := receiver.NewDaemon(daemonConfig)
	err = recvDaemon.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting receiving daemon: %v\n", err)
		os.Exit(1)
	}

	err = lifecycle.NotifyReady(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
	}

	// Blocks until a termination signal shuts the daemon down
	lifecycle.SignalHandler(ctx, recvDaemon)
}

// File values (when present), then environment overrides
func loadReceiveConfig(configPath string) (daemonConfig receiver.Config, err error) {
	jsonCfg, err := receiver.LoadConfig(configPath)
	if err != nil {
		// Default path is optional, env and defaults are enough
		if !errors.Is(err, fs.ErrNotExist) || configPath != global.DefaultConfigPath {
			return
		}
		err = nil
	}

	daemonConfig, err = jsonCfg.NewDaemonConf()
	if err != nil {
		return
	}

	err = daemonConfig.ApplyEnv(os.LookupEnv)
	return
}
