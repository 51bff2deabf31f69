package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgName    string = "gelfmover"
	ProgVersion string = "v0.3.0"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath  string = "/etc/gelfmover.json"
	DefaultListenAddr  string = "0.0.0.0:12201"
	DefaultLoggerName  string = "gelf-mover"
	DefaultSinkType    string = SinkSentry
	DefaultSinkTimeout        = 10 * time.Second

	// Ingest side
	DefaultReaderThreads    int   = 1
	DefaultQueueSize        int   = 4096
	DefaultSocketBufferSize int   = 4 << 20
	MaxDatagramSize         int   = 65535
	DefaultShardCount       int   = 16
	DefaultMaxFragmentSets  int   = 500
	DefaultMaxBufferedBytes int64 = 64 << 20
	DefaultMaxDecompressed  int64 = 8 << 20

	// Reassembly timing
	DefaultCompletionDeadline time.Duration = 5 * time.Second
	DefaultSweepInterval      time.Duration = 1 * time.Second

	// Dispatch side
	DefaultDispatchWorkers  int           = 4
	DefaultDispatchQueue    int           = 1024
	DefaultMaxAttempts      int           = 5
	DefaultInitialBackoff   time.Duration = 200 * time.Millisecond
	DefaultMaxBackoff       time.Duration = 30 * time.Second
	DefaultBackoffFactor    float64       = 2.0
	DefaultBackoffJitter    float64       = 0.2
	DefaultShutdownGrace    time.Duration = 5 * time.Second
	DefaultMetricInterval   time.Duration = 10 * time.Second
	DefaultMetricRetention  time.Duration = 1 * time.Hour
	DefaultSocketDrainLimit time.Duration = 2 * time.Second
	MaxRetryAfter           time.Duration = 5 * time.Minute // ceiling on sink supplied Retry-After

	// Timeout values
	ReceiveShutdownTimeout time.Duration = 20 * time.Second

	// Metric HTTP server
	HTTPListenPort   int           = 22201
	HTTPListenAddr   string        = "localhost" // Metric queries only exposed to local machine
	HTTPReadTimeout  time.Duration = 30 * time.Second
	HTTPWriteTimeout time.Duration = 10 * time.Second
	HTTPIdleTimeout  time.Duration = 180 * time.Second
	DiscoveryPath    string        = "/discover/"
	DataPath         string        = "/data/"
	PrometheusPath   string        = "/metrics"
	PrometheusPrefix string        = "gelfmover"

	// Sink type names
	SinkSentry  string = "sentry"
	SinkBeats   string = "beats"
	SinkKafka   string = "kafka"
	SinkConsole string = "console"
	SinkJournal string = "journald"

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSCLI       string = "CLI"
	NSRecv      string = "Receiver"
	NSProc      string = "Processor"
	NSQueue     string = "Queue"
	NSListen    string = "Listener"
	NSWorker    string = "Worker"
	NSStore     string = "ChunkStore"
	NSReasm     string = "Reassembler"
	NSReaper    string = "Reaper"
	NSDispatch  string = "Dispatcher"
	NSSink      string = "Sink"
	NSmIngest   string = "Ingest"
	NSmProc     string = "Processing"
)
