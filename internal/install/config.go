// Template configuration generation
package install

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/receiver"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var ErrNotOverwritten = errors.New("existing configuration file kept")

// Receiver config with every commonly tuned value filled in
func TemplateConfig() (newCfg receiver.JSONConfig) {
	newCfg.Network.Address = global.DefaultListenAddr
	newCfg.Network.ReaderThreads = global.DefaultReaderThreads

	newCfg.Processing.Threads = 2
	newCfg.Processing.MaxParallelChunks = global.DefaultMaxFragmentSets
	newCfg.Processing.CompletionDeadline = global.DefaultCompletionDeadline.String()
	newCfg.Processing.SweepInterval = global.DefaultSweepInterval.String()
	newCfg.Processing.LoggerName = global.DefaultLoggerName

	newCfg.Dispatch.Workers = global.DefaultDispatchWorkers
	newCfg.Dispatch.QueueSize = global.DefaultDispatchQueue
	newCfg.Dispatch.MaxAttempts = global.DefaultMaxAttempts
	newCfg.Dispatch.InitialBackoff = global.DefaultInitialBackoff.String()
	newCfg.Dispatch.MaxBackoff = global.DefaultMaxBackoff.String()
	jitter := global.DefaultBackoffJitter
	newCfg.Dispatch.Jitter = &jitter
	newCfg.Dispatch.CallTimeout = global.DefaultSinkTimeout.String()
	newCfg.Dispatch.ShutdownGrace = global.DefaultShutdownGrace.String()

	newCfg.Sink.Type = global.SinkSentry
	newCfg.Sink.SentryDSN = "https://publickey@sentry.example.com/1"

	newCfg.Metrics.Interval = global.DefaultMetricInterval.String()
	newCfg.Metrics.MaxAge = global.DefaultMetricRetention.String()
	newCfg.Metrics.QueryServerPort = global.HTTPListenPort
	return
}

// Writes the template config to filepath.
// An existing file is only replaced when confirm returns true.
func CreateTemplateConfig(filepath string, confirm func(prompt string) bool) (err error) {
	if filepath == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	// Don't overwrite existing without consent
	_, err = os.Stat(filepath)
	if err == nil {
		prompt := fmt.Sprintf("Configuration file already exists at '%s'. Are you SURE you want to overwrite it? (yes/no): ", filepath)
		if confirm == nil || !confirm(prompt) {
			err = ErrNotOverwritten
			return
		}
	} else if !os.IsNotExist(err) {
		err = fmt.Errorf("failed checking config file: %w", err)
		return
	}

	confBytes, err := json.MarshalIndent(TemplateConfig(), "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling new config: %w", err)
		return
	}
	confBytes = append(confBytes, []byte("\n")...)

	err = os.WriteFile(filepath, confBytes, 0600)
	if err != nil {
		err = fmt.Errorf("failed to write config to file: %w", err)
		return
	}
	return
}

// Asks on the terminal. Never confirms when stdout is not a terminal.
func TerminalConfirm(prompt string) (confirmed bool) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	confirmed = askYes(os.Stdin, os.Stdout, prompt)
	return
}

func askYes(in io.Reader, out io.Writer, prompt string) (confirmed bool) {
	fmt.Fprint(out, prompt)
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	confirmed = strings.ToLower(strings.TrimSpace(input)) == "yes"
	return
}
