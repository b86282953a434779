package bluesky

import (
	"testing"
	"time"

	"skypost/app/feed"
	"skypost/app/scrape"
)

func composeTestClient() *Client {
	return &Client{session: Session{Did: "did:plc:bot", Handle: "bot.example.com"}}
}

func testEntry() feed.Entry {
	return feed.Entry{
		ID:    "entry-1",
		URL:   "https://example.com/article",
		Title: "Entry Title",
	}
}

func TestComposeRecordWithMetadata(t *testing.T) {
	client := composeTestClient()
	metadata := &scrape.PageMetadata{
		Title:       "OG Title",
		Description: "OG description.",
	}
	uploaded := &Blob{Type: "blob", Ref: BlobRef{Link: "bafkrei"}, MimeType: "image/jpeg", Size: 54321}

	record := client.ComposeRecord(testEntry(), metadata, uploaded)

	if record.Repo != "did:plc:bot" {
		t.Errorf("Expected repo 'did:plc:bot', got '%s'", record.Repo)
	}
	if record.Collection != "app.bsky.feed.post" {
		t.Errorf("Expected collection 'app.bsky.feed.post', got '%s'", record.Collection)
	}
	if record.Record.Text != "Entry Title" {
		t.Errorf("Expected text 'Entry Title', got '%s'", record.Record.Text)
	}

	embed := record.Record.Embed
	if embed == nil {
		t.Fatal("Expected embed to be present")
	}
	if embed.Type != "app.bsky.embed.external" {
		t.Errorf("Expected embed type 'app.bsky.embed.external', got '%s'", embed.Type)
	}
	if embed.External.URI != "https://example.com/article" {
		t.Errorf("Expected embed URI to be the entry URL, got '%s'", embed.External.URI)
	}
	if embed.External.Title != "OG Title" {
		t.Errorf("Expected embed title 'OG Title', got '%s'", embed.External.Title)
	}
	if embed.External.Description != "OG description." {
		t.Errorf("Expected embed description 'OG description.', got '%s'", embed.External.Description)
	}
	if embed.External.Thumb == nil || embed.External.Thumb.Ref.Link != "bafkrei" {
		t.Errorf("Expected thumbnail 'bafkrei', got %v", embed.External.Thumb)
	}
}

func TestComposeRecordWithoutMetadata(t *testing.T) {
	record := composeTestClient().ComposeRecord(testEntry(), nil, nil)

	if record.Record.Text != "Entry Title" {
		t.Errorf("Expected text 'Entry Title', got '%s'", record.Record.Text)
	}
	if record.Record.Embed != nil {
		t.Error("Expected no embed when metadata is absent")
	}
}

func TestComposeRecordEmbedTitleFallsBackToEntry(t *testing.T) {
	metadata := &scrape.PageMetadata{Description: "Only a description."}

	record := composeTestClient().ComposeRecord(testEntry(), metadata, nil)

	if record.Record.Embed == nil {
		t.Fatal("Expected embed to be present")
	}
	if record.Record.Embed.External.Title != "Entry Title" {
		t.Errorf("Expected embed title to fall back to entry title, got '%s'", record.Record.Embed.External.Title)
	}
}

func TestComposeRecordUntitledEntry(t *testing.T) {
	entry := feed.Entry{ID: "entry-1", URL: "https://example.com/article"}

	record := composeTestClient().ComposeRecord(entry, &scrape.PageMetadata{}, nil)

	// A feed entry without a title and a page without og:title produce an
	// empty post text; documented behavior.
	if record.Record.Text != "" {
		t.Errorf("Expected empty text, got '%s'", record.Record.Text)
	}
	if record.Record.Embed.External.Title != "" {
		t.Errorf("Expected empty embed title, got '%s'", record.Record.Embed.External.Title)
	}
}

func TestComposeRecordOversizeThumbnailDropped(t *testing.T) {
	metadata := &scrape.PageMetadata{Title: "OG Title"}
	uploaded := &Blob{Ref: BlobRef{Link: "bafkrei"}, MimeType: "image/jpeg", Size: MaxThumbSize + 1}

	record := composeTestClient().ComposeRecord(testEntry(), metadata, uploaded)

	if record.Record.Embed == nil {
		t.Fatal("Expected embed to survive without the thumbnail")
	}
	if record.Record.Embed.External.Thumb != nil {
		t.Error("Expected oversize thumbnail to be dropped")
	}
}

func TestComposeRecordThumbnailAtBoundKept(t *testing.T) {
	metadata := &scrape.PageMetadata{Title: "OG Title"}
	uploaded := &Blob{Ref: BlobRef{Link: "bafkrei"}, MimeType: "image/jpeg", Size: MaxThumbSize}

	record := composeTestClient().ComposeRecord(testEntry(), metadata, uploaded)

	if record.Record.Embed.External.Thumb == nil {
		t.Error("Expected thumbnail exactly at the size bound to be kept")
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 2, 8, 12, 34, 56, 789000000, time.UTC)

	formatted := FormatTime(ts)
	if formatted != "2024-02-08T12:34:56.789000Z" {
		t.Errorf("Expected '2024-02-08T12:34:56.789000Z', got '%s'", formatted)
	}

	if _, err := time.Parse(time.RFC3339Nano, formatted); err != nil {
		t.Errorf("Expected RFC 3339 parseable timestamp: %v", err)
	}
}
