package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"gelfmover/internal/logctx"
	"net"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

// Searches the in-memory log buffer for lines matching all non-empty filters
func filterLogBuffer(ctx context.Context, searchText, searchTag, searchSeverity string) (matches string, found bool) {
	logger := logctx.GetLogger(ctx)
	if logger == nil {
		return
	}

	lines := logger.GetFormattedLogLines()

	bracketRe := regexp.MustCompile(`\[[^\]]*\]`)
	var re *regexp.Regexp
	if searchTag != "" {
		re = regexp.MustCompile(regexp.QuoteMeta(searchTag))
	}

	var foundLines []string
	for _, line := range lines {
		if re != nil {
			foundTag := false
			for _, b := range bracketRe.FindAllString(line, -1) {
				if re.MatchString(b) {
					foundTag = true
					break
				}
			}
			if !foundTag {
				continue
			}
		}
		if searchSeverity != "" && !strings.Contains(line, "["+searchSeverity+"]") {
			continue
		}
		if searchText != "" && !strings.Contains(line, searchText) {
			continue
		}
		foundLines = append(foundLines, line)
		found = true
	}

	matches = strings.Join(foundLines, "")
	return
}

// Event as received by the store endpoint
type storedEvent struct {
	EventID    string            `json:"event_id"`
	Message    string            `json:"message"`
	ServerName string            `json:"server_name"`
	Level      string            `json:"level"`
	Timestamp  json.Number       `json:"timestamp"`
	Logger     string            `json:"logger"`
	Tags       map[string]string `json:"tags"`
	Extra      map[string]any    `json:"extra"`
}

// Minimal Sentry store endpoint recording every accepted event
type sentryStub struct {
	mu       sync.Mutex
	events   []storedEvent
	listener net.Listener
	server   *fasthttp.Server
}

func newSentryStub(t *testing.T) (stub *sentryStub) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	stub = &sentryStub{listener: listener}
	stub.server = &fasthttp.Server{Handler: stub.handle}
	go stub.server.Serve(listener)
	t.Cleanup(func() { stub.server.Shutdown() })
	return
}

func (stub *sentryStub) handle(reqCtx *fasthttp.RequestCtx) {
	var event storedEvent
	decoder := json.NewDecoder(strings.NewReader(string(reqCtx.PostBody())))
	decoder.UseNumber()
	if err := decoder.Decode(&event); err != nil {
		reqCtx.SetStatusCode(fasthttp.StatusBadRequest)
		return
	}

	stub.mu.Lock()
	stub.events = append(stub.events, event)
	stub.mu.Unlock()

	reqCtx.SetStatusCode(fasthttp.StatusOK)
	reqCtx.SetBodyString(fmt.Sprintf(`{"id":%q}`, event.EventID))
}

func (stub *sentryStub) dsn() (raw string) {
	raw = fmt.Sprintf("http://integration@%s/1", stub.listener.Addr().String())
	return
}

func (stub *sentryStub) received() (events []storedEvent) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	events = append(events, stub.events...)
	return
}

func (stub *sentryStub) byMessage(message string) (event storedEvent, found bool) {
	for _, candidate := range stub.received() {
		if candidate.Message == message {
			event = candidate
			found = true
			return
		}
	}
	return
}
