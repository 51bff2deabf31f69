package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/network"
	"gelfmover/internal/random"
	"gelfmover/internal/syslog"
	"gelfmover/pkg/gelf"
	"net"
	"os"
	"strings"
	"time"
)

// Sends a single GELF message for testing a receiver
func SendMode(ctx context.Context, commandname string, args []string) {
	var address, message, host, compression string
	var level, maxSize int
	extra := make(map[string]string)

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	commandFlags.StringVar(&address, "a", "127.0.0.1:12201", "Receiver address (host:port)")
	commandFlags.StringVar(&address, "address", "127.0.0.1:12201", "Receiver address (host:port)")
	commandFlags.StringVar(&message, "m", "", "Short message text")
	commandFlags.StringVar(&message, "message", "", "Short message text")
	commandFlags.StringVar(&host, "host", "", "Host field (defaults to local hostname)")
	level = 1
	parseLevel := func(raw string) (err error) {
		level, err = syslog.ParseSeverity(raw)
		return
	}
	commandFlags.Func("l", "Syslog severity level <0...7|emerg...debug> (default 1)", parseLevel)
	commandFlags.Func("level", "Syslog severity level <0...7|emerg...debug> (default 1)", parseLevel)
	commandFlags.StringVar(&compression, "compress", "none", "Payload compression <none|gzip|zlib>")
	commandFlags.IntVar(&maxSize, "chunk-size", 0, "Maximum datagram size (0 = path MTU)")
	commandFlags.Func("field", "Additional field as key=value (repeatable)", func(raw string) (err error) {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || key == "" {
			err = fmt.Errorf("expected key=value")
			return
		}
		extra[key] = value
		return
	})

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])
	logctx.SetLogLevel(ctx, global.Verbosity)

	if host == "" {
		host, _ = os.Hostname()
	}

	codec, err := gelf.ParseCodec(compression)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if maxSize == 0 {
		maxSize, err = network.MaxUDPPayload(address)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	fields := messageFields(message, host, level, time.Now(), extra)
	datagrams, err := buildDatagrams(fields, codec, maxSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = sendDatagrams(address, datagrams)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Sent message to %s in %d datagram(s)\n", address, len(datagrams))
}

// GELF record fields. Extra keys gain the custom field underscore prefix.
func messageFields(message, host string, level int, now time.Time, extra map[string]string) (fields map[string]any) {
	fields = map[string]any{
		"version":       "1.1",
		"short_message": message,
		"host":          host,
		"level":         level,
		"timestamp":     json.Number(fmt.Sprintf("%.3f", float64(now.UnixMilli())/1000)),
	}
	for key, value := range extra {
		if !strings.HasPrefix(key, "_") {
			key = "_" + key
		}
		fields[key] = value
	}
	return
}

// Encodes the record and splits it into chunks when it exceeds maxSize
func buildDatagrams(fields map[string]any, codec gelf.Codec, maxSize int) (datagrams [][]byte, err error) {
	payload, err := gelf.Encode(fields, codec)
	if err != nil {
		return
	}

	if len(payload) <= maxSize {
		datagrams = [][]byte{payload}
		return
	}

	id, err := random.EightByte()
	if err != nil {
		return
	}
	datagrams, err = gelf.Fragment(id, payload, maxSize)
	return
}

func sendDatagrams(address string, datagrams [][]byte) (err error) {
	conn, err := net.Dial("udp", address)
	if err != nil {
		err = fmt.Errorf("failed to open socket to %s: %w", address, err)
		return
	}
	defer conn.Close()

	for _, datagram := range datagrams {
		_, err = conn.Write(datagram)
		if err != nil {
			err = fmt.Errorf("failed to send datagram: %w", err)
			return
		}
	}
	return
}
