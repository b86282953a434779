package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"skypost/app/bluesky"
	"skypost/app/feed"
	"skypost/app/store"
)

// Pipeline runs one synchronization pass over all subscribed feeds. Feeds
// and entries are processed sequentially; the cursor advance after each
// confirmed publish makes an interrupted run resumable.
type Pipeline struct {
	store       store.SubscriptionStore
	fetcher     FeedFetcher
	extractor   MetadataExtractor
	thumbnailer ThumbnailFetcher
	publisher   Publisher
}

func New(subscriptions store.SubscriptionStore, fetcher FeedFetcher, extractor MetadataExtractor,
	thumbnailer ThumbnailFetcher, publisher Publisher) *Pipeline {
	return &Pipeline{
		store:       subscriptions,
		fetcher:     fetcher,
		extractor:   extractor,
		thumbnailer: thumbnailer,
		publisher:   publisher,
	}
}

// Run processes every subscription. Feed failures are isolated: each feed is
// attempted regardless of earlier failures and the aggregate error is
// returned at the end. An authentication failure aborts the run, since no
// feed can publish without a session.
func (p *Pipeline) Run(ctx context.Context) error {
	subscriptions, err := p.store.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}

	slog.Info("Sync run started", "feeds", len(subscriptions))

	var feedErrs []error
	for _, subscription := range subscriptions {
		if err := p.processFeed(ctx, subscription); err != nil {
			if errors.Is(err, bluesky.ErrAuthFailed) {
				return fmt.Errorf("feed %s: %w", subscription.URL, err)
			}
			slog.Error("Feed processing failed", "feed", subscription.URL, "error", err)
			feedErrs = append(feedErrs, fmt.Errorf("feed %s: %w", subscription.URL, err))
		}
	}

	return errors.Join(feedErrs...)
}

func (p *Pipeline) processFeed(ctx context.Context, subscription store.Subscription) error {
	start := time.Now()

	entries, err := p.fetcher.Fetch(ctx, subscription.URL)
	if err != nil {
		return err
	}

	delta := Unpublished(entries, subscription.LastPostedEntryID)

	published := 0
	for _, entry := range delta {
		if err := p.publishEntry(ctx, entry); err != nil {
			return fmt.Errorf("entry %s: %w", entry.ID, err)
		}

		// The cursor moves only after the publish confirmed; a crash here
		// means the entry is published again next run, never skipped.
		if err := p.store.AdvanceCursor(ctx, subscription.URL, entry.ID); err != nil {
			return fmt.Errorf("failed to advance cursor past %s: %w", entry.ID, err)
		}
		published++
	}

	slog.Info("Feed processed",
		"feed", subscription.URL,
		"entries", len(entries),
		"new", len(delta),
		"published", published,
		"duration", time.Since(start))

	return nil
}

func (p *Pipeline) publishEntry(ctx context.Context, entry feed.Entry) error {
	metadata := p.extractor.ExtractMetadata(ctx, entry.URL)

	var uploaded *bluesky.Blob
	if metadata != nil && metadata.ImageURL != "" {
		asset, err := p.thumbnailer.FetchImage(ctx, metadata.ImageURL)
		if err != nil {
			// Enrichment only; the entry still gets posted without a thumbnail.
			slog.Debug("Thumbnail fetch failed", "entry", entry.ID, "image_url", metadata.ImageURL, "error", err)
		} else {
			uploaded, err = p.publisher.UploadBlob(ctx, asset.Data, asset.ContentType)
			if err != nil {
				return fmt.Errorf("failed to upload thumbnail: %w", err)
			}
		}
	}

	record := p.publisher.ComposeRecord(entry, metadata, uploaded)
	created, err := p.publisher.CreateRecord(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to publish entry: %w", err)
	}

	slog.Debug("Entry published", "entry", entry.ID, "uri", created.URI)
	return nil
}
