package server

import (
	"context"
	"errors"
	"gelfmover/internal/global"
	"net/http"
	"time"
)

var errFutureStart = errors.New("start time is in the future")

// Handles metric search requests based on time for data
func handleData(baseCtx context.Context, search DataSearcher, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqName := clientRequest.FormValue("name")

	reqStartTime, reqEndTime, err := parseWindow(time.Now(), clientRequest.FormValue("starttime"), clientRequest.FormValue("endtime"))
	if err != nil {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	rawResults := search(reqName, requestNamespace(clientRequest.URL.Path, global.DataPath), reqStartTime, reqEndTime)
	writeResults(baseCtx, serverResponder, rawResults)
}

// Resolves query time bounds. Start defaults to the last minute and accepts a
// relative "-duration"; unparsable relative values fall back to the default.
func parseWindow(now time.Time, rawStart, rawEnd string) (start, end time.Time, err error) {
	switch {
	case rawStart == "":
		start = now.Add(-1 * time.Minute)
	case rawStart[0] == '-' || rawStart[0] == '+':
		dur, parseErr := time.ParseDuration(rawStart)
		if parseErr != nil {
			start = now.Add(-1 * time.Minute)
		} else if dur > 0 {
			err = errFutureStart
			return
		} else {
			start = now.Add(dur)
		}
	default:
		start, err = time.Parse(time.RFC3339Nano, rawStart)
		if err != nil {
			return
		}
	}

	if rawEnd == "now" || rawEnd == "" {
		end = now // Default end is now
	} else {
		end, err = time.Parse(time.RFC3339Nano, rawEnd)
		if err != nil {
			return
		}
	}
	return
}
