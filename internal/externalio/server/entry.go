// HTTP server to expose discovery and querying of metric data to other programs only on the local system
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const helpPage string = `%s metric server

GET %s<namespace>?name=&description=&unit=&type=   list available metrics
GET %s<namespace>?name=&starttime=&endtime=        query values (starttime: RFC3339 or -duration)
GET %s                                             Prometheus exposition of the latest interval
`

// Builds the local metric server: JSON discovery and data queries plus a Prometheus scrape endpoint
func SetupListener(ctx context.Context, port int, search DataSearcher, discover Discoverer, latest LatestReader) (server *http.Server, err error) {
	requestMultiplexer := http.NewServeMux()

	promRegistry := prometheus.NewRegistry()
	err = promRegistry.Register(newRegistryCollector(latest))
	if err != nil {
		err = fmt.Errorf("failed registering metric exporter: %w", err)
		return
	}
	err = promRegistry.Register(collectors.NewGoCollector())
	if err != nil {
		err = fmt.Errorf("failed registering runtime metrics: %w", err)
		return
	}

	help := fmt.Sprintf(helpPage, global.ProgName, global.DiscoveryPath, global.DataPath, global.PrometheusPath)

	// Method qualified patterns answer 405 for other methods
	requestMultiplexer.HandleFunc("GET /{$}", func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		serverResponder.Header().Set("Content-Type", "text/plain; charset=utf-8")
		serverResponder.WriteHeader(http.StatusOK)
		serverResponder.Write([]byte(help))
	})
	requestMultiplexer.HandleFunc("GET "+global.DiscoveryPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleDiscovery(ctx, discover, serverResponder, clientRequest)
	})
	requestMultiplexer.HandleFunc("GET "+global.DataPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		handleData(ctx, search, serverResponder, clientRequest)
	})
	requestMultiplexer.Handle("GET "+global.PrometheusPath, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{
		ErrorLog:      log.New(httpLogWriter{ctx: ctx}, "", 0),
		ErrorHandling: promhttp.ContinueOnError,
		Registry:      promRegistry,
	}))

	// Server configuration
	server = &http.Server{
		Addr:         global.HTTPListenAddr + ":" + strconv.Itoa(port),
		Handler:      requestMultiplexer,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(httpLogWriter{ctx: ctx}, "", 0),
	}
	return
}

// Starts the metric HTTP server and waits for requests
func Start(ctx context.Context, server *http.Server) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Metric query server starting on %s (http://%s/)\n",
		server.Addr,
		server.Addr,
	)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Metric query server failed to start: %v\n", err)
	}
}

// Encodes JSON and sends as response body
func jResp(ctx context.Context, serverResponder http.ResponseWriter, content any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(content); err != nil {
		serverResponder.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed marshaling metric results: %v\n", err)
		return
	}
	serverResponder.Header().Set("Content-Type", "application/json")
	serverResponder.WriteHeader(http.StatusOK)
	serverResponder.Write(buf.Bytes())
}

// Logs HTTP server errors to internal program buffer (via context logger)
func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(
		logWriter.ctx,
		global.VerbosityStandard,
		global.ErrorLog,
		"%s\n", strings.TrimSpace(string(p)),
	)
	return
}

