package receiver

import (
	"encoding/json"
	"errors"
	"fmt"
	"gelfmover/internal/global"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pbnjay/memory"
)

// Environment variable names accepted as overrides of the config file
const (
	EnvSentryDSN         string = "SENTRY_DSN"
	EnvSentryDSNFile     string = "SENTRY_DSN_FILE"
	EnvUDPAddr           string = "UDP_ADDR"
	EnvSystem            string = "SYSTEM"
	EnvReaderThreads     string = "READER_THREADS"
	EnvUnpackerThreads   string = "UNPACKER_THREADS"
	EnvMaxParallelChunks string = "MAX_PARALLEL_CHUNKS"
)

var ErrDSNConflict = errors.New(EnvSentryDSN + " and " + EnvSentryDSNFile + " are mutually exclusive")

// Loads JSON config from file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}

	return
}

// Parses JSON config into daemon config
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	// Network settings
	config.ListenAddr = cfg.Network.Address
	config.SocketReadBuffer = cfg.Network.ReadBuffer
	config.ReaderThreads = cfg.Network.ReaderThreads

	// Processing settings
	config.ProcessorThreads = cfg.Processing.Threads
	config.ProcessorQueue = cfg.Processing.QueueSize
	config.MaxFragmentSets = cfg.Processing.MaxParallelChunks
	config.MaxBufferedBytes = cfg.Processing.MaxBufferedBytes
	config.MaxDecompressedBytes = cfg.Processing.MaxDecompressedBytes
	config.LoggerName = cfg.Processing.LoggerName
	config.SeverityMap = cfg.Processing.SeverityMap
	config.CompletionDeadline, err = optionalDuration(cfg.Processing.CompletionDeadline)
	if err != nil {
		err = fmt.Errorf("failed to parse completion deadline: %w", err)
		return
	}
	config.SweepInterval, err = optionalDuration(cfg.Processing.SweepInterval)
	if err != nil {
		err = fmt.Errorf("failed to parse sweep interval: %w", err)
		return
	}

	// Dispatch settings
	config.Dispatch.Workers = cfg.Dispatch.Workers
	config.Dispatch.QueueSize = cfg.Dispatch.QueueSize
	config.Dispatch.MaxAttempts = cfg.Dispatch.MaxAttempts
	config.Dispatch.Multiplier = cfg.Dispatch.Multiplier
	config.Dispatch.Jitter = global.DefaultBackoffJitter
	if cfg.Dispatch.Jitter != nil {
		config.Dispatch.Jitter = *cfg.Dispatch.Jitter
	}
	config.Dispatch.RateLimit = cfg.Dispatch.RateLimit
	config.Dispatch.RateBurst = cfg.Dispatch.RateBurst
	config.Dispatch.InitialBackoff, err = optionalDuration(cfg.Dispatch.InitialBackoff)
	if err != nil {
		err = fmt.Errorf("failed to parse initial backoff: %w", err)
		return
	}
	config.Dispatch.MaxBackoff, err = optionalDuration(cfg.Dispatch.MaxBackoff)
	if err != nil {
		err = fmt.Errorf("failed to parse maximum backoff: %w", err)
		return
	}
	config.Dispatch.CallTimeout, err = optionalDuration(cfg.Dispatch.CallTimeout)
	if err != nil {
		err = fmt.Errorf("failed to parse sink call timeout: %w", err)
		return
	}
	config.ShutdownGrace, err = optionalDuration(cfg.Dispatch.ShutdownGrace)
	if err != nil {
		err = fmt.Errorf("failed to parse shutdown grace: %w", err)
		return
	}

	// Sink settings
	config.SinkType = strings.ToLower(cfg.Sink.Type)
	config.SentryDSN = cfg.Sink.SentryDSN
	config.BeatsAddress = cfg.Sink.BeatsAddress
	config.KafkaBrokers = cfg.Sink.KafkaBrokers
	config.KafkaTopic = cfg.Sink.KafkaTopic
	config.JournalURL = cfg.Sink.JournalURL

	// Metric settings
	config.MetricQueryServerEnabled = cfg.Metrics.EnableQueryServer
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	config.MetricMaxAge, err = optionalDuration(cfg.Metrics.MaxAge)
	if err != nil {
		err = fmt.Errorf("failed to parse metric max age time: %w", err)
		return
	}
	config.MetricCollectionInterval, err = optionalDuration(cfg.Metrics.Interval)
	if err != nil {
		err = fmt.Errorf("failed to parse metric collection interval time: %w", err)
		return
	}
	return
}

// Empty string is zero (filled in by defaults)
func optionalDuration(raw string) (dur time.Duration, err error) {
	if raw == "" {
		return
	}
	dur, err = time.ParseDuration(raw)
	if err == nil && dur < 0 {
		err = fmt.Errorf("duration %q must not be negative", raw)
	}
	return
}

// Applies environment overrides on top of file values.
// lookup is normally os.LookupEnv.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) (err error) {
	dsn, hasDSN := lookup(EnvSentryDSN)
	dsnFile, hasDSNFile := lookup(EnvSentryDSNFile)
	hasDSN = hasDSN && dsn != ""
	hasDSNFile = hasDSNFile && dsnFile != ""

	switch {
	case hasDSN && hasDSNFile:
		err = ErrDSNConflict
		return
	case hasDSN:
		cfg.SentryDSN = strings.TrimSpace(dsn)
	case hasDSNFile:
		var content []byte
		content, err = os.ReadFile(dsnFile)
		if err != nil {
			err = fmt.Errorf("failed to read %s: %w", EnvSentryDSNFile, err)
			return
		}
		cfg.SentryDSN = strings.TrimSpace(string(content))
	}

	if value, ok := lookup(EnvUDPAddr); ok && value != "" {
		_, _, err = net.SplitHostPort(value)
		if err != nil {
			err = fmt.Errorf("invalid %s: %w", EnvUDPAddr, err)
			return
		}
		cfg.ListenAddr = value
	}
	if value, ok := lookup(EnvSystem); ok && value != "" {
		cfg.LoggerName = value
	}

	counts := []struct {
		name   string
		target *int
	}{
		{EnvReaderThreads, &cfg.ReaderThreads},
		{EnvUnpackerThreads, &cfg.ProcessorThreads},
		{EnvMaxParallelChunks, &cfg.MaxFragmentSets},
	}
	for _, count := range counts {
		value, ok := lookup(count.name)
		if !ok || value == "" {
			continue
		}
		var parsed int
		parsed, err = strconv.Atoi(value)
		if err != nil || parsed < 1 {
			err = fmt.Errorf("invalid %s %q: must be a positive integer", count.name, value)
			return
		}
		*count.target = parsed
	}
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Network
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = global.DefaultListenAddr
	}
	if cfg.SocketReadBuffer == 0 {
		cfg.SocketReadBuffer = global.DefaultSocketBufferSize
	}
	if cfg.ReaderThreads == 0 {
		cfg.ReaderThreads = global.DefaultReaderThreads
	}
	if cfg.SocketDrainLimit == 0 {
		cfg.SocketDrainLimit = global.DefaultSocketDrainLimit
	}

	// Processing
	logicalCPUCount := runtime.NumCPU()
	if cfg.ProcessorThreads == 0 {
		cfg.ProcessorThreads = logicalCPUCount
	}
	if cfg.ProcessorQueue == 0 {
		cfg.ProcessorQueue = global.DefaultQueueSize
	}
	if cfg.ShardCount == 0 {
		cfg.ShardCount = global.DefaultShardCount
	}
	if cfg.MaxFragmentSets == 0 {
		cfg.MaxFragmentSets = global.DefaultMaxFragmentSets
	}
	if cfg.MaxBufferedBytes == 0 {
		cfg.MaxBufferedBytes = bufferBudget(memory.FreeMemory())
	}
	if cfg.MaxDecompressedBytes == 0 {
		cfg.MaxDecompressedBytes = global.DefaultMaxDecompressed
	}
	if cfg.CompletionDeadline == 0 {
		cfg.CompletionDeadline = global.DefaultCompletionDeadline
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = global.DefaultSweepInterval
	}
	if cfg.LoggerName == "" {
		cfg.LoggerName = global.DefaultLoggerName
	}

	// Delivery
	if cfg.Dispatch.Workers == 0 {
		cfg.Dispatch.Workers = global.DefaultDispatchWorkers
	}
	if cfg.Dispatch.QueueSize == 0 {
		cfg.Dispatch.QueueSize = global.DefaultDispatchQueue
	}
	if cfg.Dispatch.MaxAttempts == 0 {
		cfg.Dispatch.MaxAttempts = global.DefaultMaxAttempts
	}
	if cfg.Dispatch.InitialBackoff == 0 {
		cfg.Dispatch.InitialBackoff = global.DefaultInitialBackoff
	}
	if cfg.Dispatch.MaxBackoff == 0 {
		cfg.Dispatch.MaxBackoff = global.DefaultMaxBackoff
	}
	if cfg.Dispatch.Multiplier == 0 {
		cfg.Dispatch.Multiplier = global.DefaultBackoffFactor
	}
	if cfg.Dispatch.CallTimeout == 0 {
		cfg.Dispatch.CallTimeout = global.DefaultSinkTimeout
	}
	if cfg.ShutdownGrace == 0 {
		cfg.ShutdownGrace = global.DefaultShutdownGrace
	}

	// Sink
	if cfg.SinkType == "" {
		cfg.SinkType = global.DefaultSinkType
	}
	if cfg.SinkTimeout == 0 {
		cfg.SinkTimeout = cfg.Dispatch.CallTimeout
	}

	// Metrics
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = global.DefaultMetricRetention
	}
	if cfg.MetricQueryServerPort == 0 {
		cfg.MetricQueryServerPort = global.HTTPListenPort
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = global.DefaultMetricInterval
	}
}

// Chunk buffer budget: an eighth of free memory, capped at the default
func bufferBudget(free uint64) (budget int64) {
	budget = global.DefaultMaxBufferedBytes
	if free == 0 {
		// Unknown on this platform
		return
	}
	share := free / 8
	if share < uint64(budget) {
		budget = int64(share)
	}
	if budget < int64(global.MaxDatagramSize) {
		budget = int64(global.MaxDatagramSize)
	}
	return
}

// Checks that the selected sink has what it needs
func (cfg Config) validate() (err error) {
	switch cfg.SinkType {
	case global.SinkSentry:
		if cfg.SentryDSN == "" {
			err = fmt.Errorf("sentry sink requires a DSN (config sink.sentryDSN, %s or %s)", EnvSentryDSN, EnvSentryDSNFile)
		}
	case global.SinkBeats:
		if cfg.BeatsAddress == "" {
			err = fmt.Errorf("beats sink requires sink.beatsAddress")
		}
	case global.SinkKafka:
		if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopic == "" {
			err = fmt.Errorf("kafka sink requires sink.kafkaBrokers and sink.kafkaTopic")
		}
	case global.SinkJournal:
		if cfg.JournalURL == "" {
			err = fmt.Errorf("journald sink requires sink.journalURL")
		}
	case global.SinkConsole:
	default:
		err = fmt.Errorf("unknown sink type %q", cfg.SinkType)
	}
	return
}
