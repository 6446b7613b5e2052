package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lightbox/internal/api"
	"lightbox/internal/pipeline"
	"lightbox/internal/services"
)

type stubSource struct {
	items []pipeline.Item
	stats pipeline.Stats
}

func (s stubSource) Items() []pipeline.Item { return s.items }

func (s stubSource) ItemAt(index int) (pipeline.Item, bool) {
	if index < 0 || index >= len(s.items) {
		return pipeline.Item{}, false
	}
	return s.items[index], true
}

func (s stubSource) Stats() pipeline.Stats { return s.stats }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fetchErr := services.Wrap(services.ErrFetch, "fetch", "http get", "gone", nil)
	source := stubSource{
		items: []pipeline.Item{
			{Key: 0, Name: "Bridge", Locator: "http://example.com/a.jpg", State: pipeline.StateTransformed, Artifact: []byte("\x89PNG\r\n\x1a\nrest")},
			{Key: 1, Name: "Harbor", Locator: "http://example.com/b.jpg", State: pipeline.StateFailed, Failure: fetchErr},
			{Key: 2, Name: "Tower", Locator: "http://example.com/c.jpg", State: pipeline.StateNew, Pending: pipeline.StageFetch},
		},
		stats: pipeline.Stats{
			Items:    3,
			ByState:  map[pipeline.State]int{pipeline.StateTransformed: 1, pipeline.StateFailed: 1, pipeline.StateNew: 1},
			Fetching: 1,
		},
	}
	srv := httptest.NewServer(api.NewServer(source, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d, want %d (%s)", url, resp.StatusCode, wantStatus, body)
	}
	if out == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestListItems(t *testing.T) {
	srv := newTestServer(t)

	var items []api.ItemView
	getJSON(t, srv.URL+"/api/items", http.StatusOK, &items)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].State != "transformed" || items[0].ArtifactBytes != 12 {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].FailureLabel != "fetch failed" || items[1].Failure == "" {
		t.Fatalf("expected fetch failure on second item, got %+v", items[1])
	}
	if items[2].Phase != "fetching" {
		t.Fatalf("expected derived fetching phase, got %q", items[2].Phase)
	}
}

func TestGetItemAndErrors(t *testing.T) {
	srv := newTestServer(t)

	var item api.ItemView
	getJSON(t, srv.URL+"/api/items/1", http.StatusOK, &item)
	if item.Name != "Harbor" {
		t.Fatalf("unexpected item %+v", item)
	}

	var notFound api.ErrorResponse
	getJSON(t, srv.URL+"/api/items/9", http.StatusNotFound, &notFound)
	if notFound.Code != http.StatusNotFound || notFound.RequestID == "" {
		t.Fatalf("unexpected error body %+v", notFound)
	}

	var badKey api.ErrorResponse
	getJSON(t, srv.URL+"/api/items/abc", http.StatusBadRequest, &badKey)
}

func TestArtifact(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/items/0/artifact")
	if err != nil {
		t.Fatalf("GET artifact: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("artifact status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	if len(body) != 12 {
		t.Fatalf("expected 12 artifact bytes, got %d", len(body))
	}

	getJSON(t, srv.URL+"/api/items/2/artifact", http.StatusNotFound, nil)
}

func TestStatsAndHealth(t *testing.T) {
	srv := newTestServer(t)

	var stats api.StatsView
	getJSON(t, srv.URL+"/api/stats", http.StatusOK, &stats)
	if stats.Items != 3 || stats.Fetching != 1 || stats.ByState["failed"] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, body)
	}
}

func TestServeStopsWithContext(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- api.NewServer(stubSource{}, nil).Serve(ctx, listener)
	}()

	url := fmt.Sprintf("http://%s/health", listener.Addr())
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never became reachable: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestListenAndServeRejectsBadAddress(t *testing.T) {
	err := api.NewServer(stubSource{}, nil).ListenAndServe(context.Background(), "not-an-address")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
