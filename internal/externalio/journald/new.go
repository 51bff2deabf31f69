package journald

import (
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/random"
	"net/http"
	"net/url"
	"time"
)

// Creates new journald output module. Returns nil nil if no url.
func NewOutput(namespace []string, endpoint string, timeout time.Duration) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}
	if timeout <= 0 {
		timeout = global.DefaultSinkTimeout
	}

	baseURL, err := url.Parse(endpoint)
	if err != nil {
		err = fmt.Errorf("invalid journald URL: %w", err)
		return
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		err = fmt.Errorf("invalid journald URL scheme %q: must be http or https", baseURL.Scheme)
		return
	}
	messagePublishPath := &url.URL{Path: "upload"} // Only path accepted by the remote server

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		DisableKeepAlives:     false,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: -1, // Not supported by journal remote server
	}

	bootID, err := random.EventID()
	if err != nil {
		err = fmt.Errorf("failed to generate boot id: %w", err)
		return
	}

	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSSink),
		url:       baseURL.ResolveReference(messagePublishPath).String(),
		bootID:    bootID,
		sink: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
	return
}
