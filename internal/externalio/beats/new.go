package beats

import (
	"fmt"
	"gelfmover/internal/global"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Creates new beats (lumberjack) output module. Returns nil nil if no endpoint.
func NewOutput(namespace []string, endpoint string, timeout time.Duration) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}
	if timeout <= 0 {
		timeout = global.DefaultSinkTimeout
	}

	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSSink),
		endpoint:  endpoint,
		timeout:   timeout,
	}

	module.sink, err = module.dial()
	if err != nil {
		module = nil
		return
	}
	return
}

func (mod *OutModule) dial() (client *lumberjack.SyncClient, err error) {
	compression := lumberjack.CompressionLevel(0)
	timeout := lumberjack.Timeout(mod.timeout)

	client, err = lumberjack.SyncDial(mod.endpoint, compression, timeout)
	if err != nil {
		err = fmt.Errorf("failed connection to beats server: %w", err)
		return
	}
	return
}
