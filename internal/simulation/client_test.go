package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanonhq/kanon/internal/log"
)

// streamHandler writes the given frames as data: records, flushing after
// each one to exercise chunked delivery.
func streamHandler(t *testing.T, frames []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n", frame)
			flusher.Flush()
		}
	}
}

func simRequest(strategies int) Request {
	req := Request{CaseFacts: "defendant disputes the search"}
	for i := range strategies {
		req.Strategies = append(req.Strategies, RequestStrategy{
			ID:    fmt.Sprintf("strategy-%d", i+1),
			Title: fmt.Sprintf("Strategy %d", i+1),
		})
	}
	return req
}

func TestClient_Run(t *testing.T) {
	t.Parallel()

	frames := []string{
		`{"type":"run_complete","strategyId":"strategy-1","run":{"runId":"strategy-1-run-0","variation":"Standard Approach","score":7,"winner":"defense"}}`,
		`{"type":"run_complete","strategyId":"strategy-1","run":{"runId":"strategy-1-run-1","variation":"Aggressive Variant","score":4,"winner":"plaintiff"}}`,
		`{"type":"run_complete","strategyId":"strategy-1","run":{"runId":"strategy-1-run-2","variation":"Conservative Variant","score":8,"winner":"defense"}}`,
		`{"type":"strategy_complete","strategy":{"strategyTitle":"Strategy 1","averageScore":6.33,"winsCount":2,"totalRuns":3}}`,
		`{"type":"complete","results":[{"strategyTitle":"Strategy 1","averageScore":6.33,"winsCount":2,"totalRuns":3}]}`,
	}
	srv := httptest.NewServer(streamHandler(t, frames))
	defer srv.Close()

	store := newRecordingStore()
	agg := NewAggregator(store, log.NewNop())
	client := NewClient(srv.URL, log.NewNop())

	require.NoError(t, client.Run(context.Background(), simRequest(1), agg))

	assert.Equal(t, StateDone, agg.State())
	assert.Equal(t, 100, agg.Progress())
	assert.Equal(t, 3, agg.CompletedRuns())

	runs := agg.RunsForStrategy("strategy-1")
	require.Len(t, runs, 3)
	assert.Equal(t, "strategy-1-run-0", runs[0].RunID)
	assert.True(t, runs[0].SynthesizedFactors)

	_, ok := store.get(ResultsKey)
	assert.True(t, ok)
}

func TestClient_Run_MalformedFramesSkipped(t *testing.T) {
	t.Parallel()

	frames := []string{
		`{"type":"run_complete","strategyId":"strategy-1","run":{"runId":"a","score":7}}`,
		`{not valid json`,
		`{"noType":true}`,
		`{"type":"complete","results":[]}`,
	}
	srv := httptest.NewServer(streamHandler(t, frames))
	defer srv.Close()

	agg := NewAggregator(nil, log.NewNop())
	client := NewClient(srv.URL, log.NewNop())

	require.NoError(t, client.Run(context.Background(), simRequest(1), agg))
	assert.Equal(t, StateDone, agg.State())
	assert.Equal(t, 1, agg.CompletedRuns())
}

func TestClient_Run_TruncatedStream(t *testing.T) {
	t.Parallel()

	frames := []string{
		`{"type":"run_complete","strategyId":"strategy-1","run":{"runId":"a","score":7}}`,
	}
	srv := httptest.NewServer(streamHandler(t, frames))
	defer srv.Close()

	agg := NewAggregator(nil, log.NewNop())
	client := NewClient(srv.URL, log.NewNop())

	err := client.Run(context.Background(), simRequest(1), agg)
	require.ErrorIs(t, err, ErrStreamTruncated)
	assert.Equal(t, StateFailed, agg.State())
	assert.Equal(t, 1, agg.CompletedRuns(), "runs before truncation are retained")
}

func TestClient_Run_ErrorEvent(t *testing.T) {
	t.Parallel()

	frames := []string{
		`{"type":"run_complete","strategyId":"strategy-1","run":{"runId":"a","score":7}}`,
		`{"type":"error","error":"upstream model unavailable"}`,
	}
	srv := httptest.NewServer(streamHandler(t, frames))
	defer srv.Close()

	agg := NewAggregator(nil, log.NewNop())
	client := NewClient(srv.URL, log.NewNop())

	err := client.Run(context.Background(), simRequest(1), agg)
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "upstream model unavailable")
	assert.Equal(t, StateFailed, agg.State())
}

func TestClient_Run_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no upstream capacity"})
	}))
	defer srv.Close()

	agg := NewAggregator(nil, log.NewNop())
	client := NewClient(srv.URL, log.NewNop())

	err := client.Run(context.Background(), simRequest(1), agg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "no upstream capacity")
	assert.Equal(t, StateFailed, agg.State())
}

func TestClient_Run_EmptyStrategiesRejectedBeforeRequest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server")
	}))
	defer srv.Close()

	agg := NewAggregator(nil, log.NewNop())
	client := NewClient(srv.URL, log.NewNop())

	err := client.Run(context.Background(), Request{CaseFacts: "facts"}, agg)
	require.ErrorIs(t, err, ErrNoStrategies)
	assert.Equal(t, StateIdle, agg.State())
}

func TestClient_Run_ContextCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"type\":\"run_complete\",\"strategyId\":\"strategy-1\",\"run\":{\"runId\":\"a\",\"score\":7}}\n")
		flusher.Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	agg := NewAggregator(nil, log.NewNop())
	client := NewClient(srv.URL, log.NewNop())

	err := client.Run(ctx, simRequest(1), agg)
	require.Error(t, err)
	assert.Equal(t, StateFailed, agg.State())
	assert.Equal(t, 1, agg.CompletedRuns())
}

func TestClient_Run_ChunkedMidFrameDelivery(t *testing.T) {
	t.Parallel()

	// The server flushes mid-record; the client must reassemble across
	// chunk boundaries.
	whole := "data: {\"type\":\"run_complete\",\"strategyId\":\"strategy-1\"," +
		"\"run\":{\"runId\":\"a\",\"variation\":\"Standard Approach\",\"score\":7}}\n" +
		"data: {\"type\":\"complete\",\"results\":[]}\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < len(whole); i += 11 {
			end := min(i+11, len(whole))
			fmt.Fprint(w, whole[i:end])
			flusher.Flush()
		}
	}))
	defer srv.Close()

	agg := NewAggregator(nil, log.NewNop())
	client := NewClient(srv.URL, log.NewNop())

	require.NoError(t, client.Run(context.Background(), simRequest(1), agg))
	assert.Equal(t, StateDone, agg.State())
	assert.Equal(t, 1, agg.CompletedRuns())
}
