package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const rssFixture = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Newest Item</title>
      <link>https://example.com/item3</link>
      <guid>item-3</guid>
      <pubDate>Wed, 05 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Middle Item</title>
      <link>https://example.com/item2</link>
      <guid>item-2</guid>
      <pubDate>Tue, 04 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No Link Item</title>
      <guid>item-nolink</guid>
    </item>
    <item>
      <title>Oldest Item</title>
      <link>https://example.com/item1</link>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestFetch(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "skypost-test/1.0")
	entries, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotUserAgent != "skypost-test/1.0" {
		t.Errorf("Expected user agent 'skypost-test/1.0', got '%s'", gotUserAgent)
	}

	// The item without a link must be dropped, source order preserved.
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	if entries[0].ID != "item-3" {
		t.Errorf("Expected first entry 'item-3', got '%s'", entries[0].ID)
	}
	if entries[0].URL != "https://example.com/item3" {
		t.Errorf("Expected URL 'https://example.com/item3', got '%s'", entries[0].URL)
	}
	if entries[0].Title != "Newest Item" {
		t.Errorf("Expected title 'Newest Item', got '%s'", entries[0].Title)
	}
	if entries[0].PublishedAt == nil {
		t.Error("Expected published timestamp to be set")
	}
	if entries[2].ID != "item-1" {
		t.Errorf("Expected last entry 'item-1', got '%s'", entries[2].ID)
	}
}

func TestFetchGUIDFallsBackToLink(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Item Without GUID</title>
      <link>https://example.com/item</link>
    </item>
  </channel>
</rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssData))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "skypost-test/1.0")
	entries, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != "https://example.com/item" {
		t.Errorf("Expected ID to fall back to link, got '%s'", entries[0].ID)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "skypost-test/1.0")
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}
}

func TestFetchParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "skypost-test/1.0")
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for unparseable feed body")
	}
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	fetcher := NewFetcher(http.DefaultClient, "skypost-test/1.0")
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for unreachable server")
	}
}
