package bluesky

import (
	"cmp"
	"time"

	"skypost/app/feed"
	"skypost/app/scrape"
)

const (
	postCollection    = "app.bsky.feed.post"
	postType          = "app.bsky.feed.post"
	embedExternalType = "app.bsky.embed.external"
)

// MaxThumbSize is the largest uploaded thumbnail, in bytes, that gets
// attached to a post. Oversize thumbnails are dropped; the post itself is
// still created.
const MaxThumbSize = 1_000_000

// ComposeRecord formats the post for a feed entry. Pure: no network, no
// session mutation. Post text is the entry title, which may be empty when
// the feed carries none. An embed is attached only when page metadata was
// obtained; its title falls back to the entry title.
func (c *Client) ComposeRecord(entry feed.Entry, metadata *scrape.PageMetadata, uploaded *Blob) CreateRecordRequest {
	var embed *Embed
	if metadata != nil {
		var thumb *Blob
		if uploaded != nil && uploaded.Size <= MaxThumbSize {
			thumb = uploaded
		}

		embed = &Embed{
			Type: embedExternalType,
			External: EmbedExternal{
				URI:         entry.URL,
				Title:       cmp.Or(metadata.Title, entry.Title),
				Description: metadata.Description,
				Thumb:       thumb,
			},
		}
	}

	return CreateRecordRequest{
		Repo:       c.session.Did,
		Collection: postCollection,
		Record: Record{
			Type:      postType,
			Text:      entry.Title,
			Embed:     embed,
			CreatedAt: FormatTime(time.Now()),
		},
	}
}

// FormatTime formats a time into the microsecond-precision RFC 3339 form
// expected by AT Protocol records.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}
