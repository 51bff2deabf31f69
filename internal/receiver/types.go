package receiver

import (
	"context"
	metricGlb "gelfmover/internal/metrics"
	"gelfmover/internal/receiver/chunkstore"
	"gelfmover/internal/receiver/dispatcher"
	"gelfmover/internal/receiver/metrics"
	"gelfmover/internal/receiver/reaper"
	"net/http"
	"sync"
	"time"
)

type JSONConfig struct {
	Network struct {
		Address       string `json:"address"` // host:port
		ReadBuffer    int    `json:"socketReceiveBuffer,omitempty"`
		ReaderThreads int    `json:"readerThreads,omitempty"`
	} `json:"network"`
	Processing struct {
		Threads              int            `json:"unpackerThreads,omitempty"`
		QueueSize            int            `json:"queueSize,omitempty"`
		MaxParallelChunks    int            `json:"maxParallelChunks,omitempty"`
		MaxBufferedBytes     int64          `json:"maxBufferedBytes,omitempty"`
		MaxDecompressedBytes int64          `json:"maxDecompressedBytes,omitempty"`
		CompletionDeadline   string         `json:"completionDeadline,omitempty"`
		SweepInterval        string         `json:"sweepInterval,omitempty"`
		LoggerName           string         `json:"system,omitempty"`
		SeverityMap          map[int]string `json:"severityMap,omitempty"`
	} `json:"processing"`
	Dispatch struct {
		Workers        int      `json:"workers,omitempty"`
		QueueSize      int      `json:"queueSize,omitempty"`
		MaxAttempts    int      `json:"maxAttempts,omitempty"`
		InitialBackoff string   `json:"initialBackoff,omitempty"`
		MaxBackoff     string   `json:"maxBackoff,omitempty"`
		Multiplier     float64  `json:"backoffMultiplier,omitempty"`
		Jitter         *float64 `json:"backoffJitter,omitempty"` // absent means the default, 0 disables
		CallTimeout    string   `json:"callTimeout,omitempty"`
		ShutdownGrace  string   `json:"shutdownGrace,omitempty"`
		RateLimit      float64  `json:"rateLimit,omitempty"`
		RateBurst      int      `json:"rateBurst,omitempty"`
	} `json:"dispatch"`
	Sink struct {
		Type         string   `json:"type"`
		SentryDSN    string   `json:"sentryDSN,omitempty"`
		BeatsAddress string   `json:"beatsAddress,omitempty"`
		KafkaBrokers []string `json:"kafkaBrokers,omitempty"`
		KafkaTopic   string   `json:"kafkaTopic,omitempty"`
		JournalURL   string   `json:"journalURL,omitempty"`
	} `json:"sink"`
	Metrics struct {
		Interval          string `json:"collectionInterval,omitempty"`
		MaxAge            string `json:"maximumRetention,omitempty"`
		EnableQueryServer bool   `json:"enableHTTPQueryServer"`
		QueryServerPort   int    `json:"queryServerPort,omitempty"`
	} `json:"metrics"`
}

type Config struct {
	// Network
	ListenAddr       string
	SocketReadBuffer int
	ReaderThreads    int
	SocketDrainLimit time.Duration
	ProcessorThreads int
	ProcessorQueue   int

	// Reassembly and decoding
	ShardCount           int
	MaxFragmentSets      int
	MaxBufferedBytes     int64
	MaxDecompressedBytes int64
	CompletionDeadline   time.Duration
	SweepInterval        time.Duration

	// Translation
	LoggerName  string
	SeverityMap map[int]string

	// Delivery
	Dispatch      dispatcher.Config
	ShutdownGrace time.Duration

	// Sink
	SinkType     string
	SentryDSN    string
	BeatsAddress string
	KafkaBrokers []string
	KafkaTopic   string
	JournalURL   string
	SinkTimeout  time.Duration

	// Metrics
	MetricQueryServerEnabled bool
	MetricQueryServerPort    int
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

type Daemon struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	wg         sync.WaitGroup
	shutOnce   sync.Once
	stopReaper context.CancelFunc
	reaperWG   sync.WaitGroup

	Mgrs             metrics.Managers
	Store            *chunkstore.Store
	Reaper           *reaper.Instance
	Dispatcher       *dispatcher.Dispatcher
	sink             dispatcher.Sink
	sinkShutdown     func() error
	metricsCollector *metrics.Gatherer

	MetricServer       *http.Server
	MetricDataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metricGlb.Metric
	MetricDiscoverer   func(name, description string, namespacePrefix []string, unit string, metricType metricGlb.MetricType) []metricGlb.Metric
}
