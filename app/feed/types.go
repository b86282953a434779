package feed

import (
	"time"
)

// Entry is one publishable feed item. Source order is preserved by the
// fetcher; feeds list entries newest-first.
type Entry struct {
	ID          string
	URL         string
	Title       string
	PublishedAt *time.Time
}
