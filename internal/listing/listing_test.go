package listing_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lightbox/internal/listing"
	"lightbox/internal/services"
)

const plistDictionary = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Lion</key>
	<string>http://example.com/lion.jpg</string>
	<key>Dome</key>
	<string>http://example.com/dome.jpg</string>
</dict>
</plist>`

func TestDetectFormat(t *testing.T) {
	cases := map[string]listing.Format{
		"photos.plist":                    listing.FormatPlist,
		"https://x/photos.yml?sig=abc":    listing.FormatYAML,
		"/tmp/photos.YAML":                listing.FormatYAML,
		"https://x/ClassicPhotos.plist#a": listing.FormatPlist,
		"photos.json":                     listing.FormatJSON,
		"photos":                          listing.FormatJSON,
	}
	for location, want := range cases {
		if got := listing.DetectFormat(location); got != want {
			t.Fatalf("DetectFormat(%q) = %q, want %q", location, got, want)
		}
	}
}

func TestParseDictionaryIsOrderedByName(t *testing.T) {
	records, err := listing.Parse([]byte(`{"Zebra":"http://z","Apple":"http://a","Blank":""}`), listing.FormatJSON)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := []listing.Record{
		{Name: "Apple", Locator: "http://a"},
		{Name: "Blank", Locator: ""},
		{Name: "Zebra", Locator: "http://z"},
	}
	assertRecords(t, records, want)
}

func TestParseArrayKeepsOrder(t *testing.T) {
	doc := `[{"name":"second","url":"u2"},{"name":"first","locator":"u1"},{"name":"none"}]`
	records, err := listing.Parse([]byte(doc), listing.FormatJSON)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	assertRecords(t, records, []listing.Record{
		{Name: "second", Locator: "u2"},
		{Name: "first", Locator: "u1"},
		{Name: "none"},
	})
}

func TestParseYAML(t *testing.T) {
	doc := "- name: Lion\n  url: http://example.com/lion.jpg\n- name: Missing\n"
	records, err := listing.Parse([]byte(doc), listing.FormatYAML)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	assertRecords(t, records, []listing.Record{
		{Name: "Lion", Locator: "http://example.com/lion.jpg"},
		{Name: "Missing"},
	})
}

func TestParsePlistDictionary(t *testing.T) {
	records, err := listing.Parse([]byte(plistDictionary), listing.FormatPlist)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	assertRecords(t, records, []listing.Record{
		{Name: "Dome", Locator: "http://example.com/dome.jpg"},
		{Name: "Lion", Locator: "http://example.com/lion.jpg"},
	})
}

func TestParseErrorsAreListErrors(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		format listing.Format
	}{
		{"empty", "   ", listing.FormatJSON},
		{"malformed json", "{", listing.FormatJSON},
		{"scalar", `"just a string"`, listing.FormatJSON},
		{"bad locator", `{"a": 5}`, listing.FormatJSON},
		{"bad entry", `[1, 2]`, listing.FormatJSON},
		{"unknown format", `{}`, listing.Format("xml")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := listing.Parse([]byte(tc.data), tc.format)
			if !errors.Is(err, services.ErrList) {
				t.Fatalf("expected ErrList, got %v", err)
			}
		})
	}
}

func TestLoaderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.plist")
	if err := os.WriteFile(path, []byte(plistDictionary), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}
	loader := listing.NewLoader(path, "", time.Second)
	if loader.Format != listing.FormatPlist {
		t.Fatalf("expected plist format detection, got %q", loader.Format)
	}
	records, err := loader.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if health := loader.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy loader, got %+v", health)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	loader := listing.NewLoader(filepath.Join(t.TempDir(), "missing.json"), "", time.Second)
	if _, err := loader.List(context.Background()); !errors.Is(err, services.ErrList) {
		t.Fatalf("expected ErrList, got %v", err)
	}
	if health := loader.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy loader for missing file")
	}
}

func TestLoaderDownloadsOverHTTP(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		if r.URL.Path != "/photos.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{"name":"a","url":"http://a"}]`))
	}))
	t.Cleanup(srv.Close)

	loader := listing.NewLoader(srv.URL+"/photos.json", "", time.Second)
	loader.UserAgent = "Lightbox/test"
	records, err := loader.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	assertRecords(t, records, []listing.Record{{Name: "a", Locator: "http://a"}})
	if gotAgent != "Lightbox/test" {
		t.Fatalf("expected user agent header, got %q", gotAgent)
	}

	missing := listing.NewLoader(srv.URL+"/missing.json", "", time.Second)
	if _, err := missing.List(context.Background()); !errors.Is(err, services.ErrList) {
		t.Fatalf("expected ErrList for 404, got %v", err)
	}
}

func TestLoaderRejectsOversizedListing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	if err := os.WriteFile(path, []byte(`{"a":"http://a","b":"http://b"}`), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}
	loader := listing.NewLoader(path, "", time.Second)
	loader.MaxBytes = 8
	if _, err := loader.List(context.Background()); !errors.Is(err, services.ErrList) {
		t.Fatalf("expected ErrList for oversized listing, got %v", err)
	}
}

func TestStaticReturnsCopy(t *testing.T) {
	src := listing.Static{{Name: "a"}}
	records, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	records[0].Name = "mutated"
	if src[0].Name != "a" {
		t.Fatal("expected Static to return a copy")
	}
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photos.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- listing.Watch(ctx, path, 10*time.Millisecond, nil, func() { changed <- struct{}{} })
	}()

	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-changed:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned error: %v", err)
			}
			return
		case <-ticker.C:
			// Keep writing until the watcher is attached and reports a change.
			if err := os.WriteFile(path, []byte(`{"a":"http://a"}`), 0o644); err != nil {
				t.Fatalf("rewrite listing: %v", err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for change notification")
		}
	}
}

func assertRecords(t *testing.T, got, want []listing.Record) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records %+v, want %d %+v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
