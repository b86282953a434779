package store

// Subscription represents one tracked feed. LastPostedEntryID is nil until the
// first entry for the feed has been published.
type Subscription struct {
	URL               string
	LastPostedEntryID *string
}
