package pipeline

import (
	"context"

	"skypost/app/bluesky"
	"skypost/app/feed"
	"skypost/app/scrape"
)

type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Entry, error)
}

type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, pageURL string) *scrape.PageMetadata
}

type ThumbnailFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (*scrape.ImageAsset, error)
}

// Publisher is the slice of the Bluesky client the pipeline needs.
type Publisher interface {
	UploadBlob(ctx context.Context, data []byte, contentType string) (*bluesky.Blob, error)
	ComposeRecord(entry feed.Entry, metadata *scrape.PageMetadata, uploaded *bluesky.Blob) bluesky.CreateRecordRequest
	CreateRecord(ctx context.Context, record bluesky.CreateRecordRequest) (*bluesky.CreateRecordResponse, error)
}
