package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"gelfmover/internal/global"
	"testing"
	"time"
)

func TestHandleData(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{
			name:       "data default times",
			path:       global.DataPath + "?name=test",
			wantStatus: http.StatusOK,
		},
		{
			name:       "data invalid starttime",
			path:       global.DataPath + "?starttime=badtime",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "data invalid triggers default relative start time",
			path:       global.DataPath + "?starttime=-5w",
			wantStatus: http.StatusOK,
		},
		{
			name:       "data invalid relative end time",
			path:       global.DataPath + "?endtime=+2y",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "data relative start time past",
			path:       global.DataPath + "?starttime=-5m",
			wantStatus: http.StatusOK,
		},
		{
			name:       "data relative start time future",
			path:       global.DataPath + "?starttime=%2B15m",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "data absolute start time",
			path:       global.DataPath + "?starttime=2001-01-02T01:02:03.001Z",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)

			handleData(ctx, mockDataSearcher(nil), rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	start, end, err := parseWindow(now, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(now.Add(-time.Minute)) || !end.Equal(now) {
		t.Fatalf("default window wrong: %v - %v", start, end)
	}

	start, _, err = parseWindow(now, "-10m", "now")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(now.Add(-10 * time.Minute)) {
		t.Fatalf("relative start wrong: %v", start)
	}

	_, _, err = parseWindow(now, "+1m", "")
	if err != errFutureStart {
		t.Fatalf("expected future start error, got %v", err)
	}
}
