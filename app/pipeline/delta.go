package pipeline

import (
	"skypost/app/feed"
)

// Unpublished returns the entries not yet published, oldest first. Entries
// arrive in source order, newest-first.
//
// Without a cursor only the newest entry counts as new, so a freshly
// registered feed does not get its whole history posted. With a cursor,
// entries are collected newest-first until the cursor's entry is reached;
// a cursor pointing at an entry no longer present means everything fetched
// is new.
func Unpublished(entries []feed.Entry, lastPostedID *string) []feed.Entry {
	if len(entries) == 0 {
		return nil
	}

	collected := entries[:1]
	if lastPostedID != nil {
		cut := len(entries)
		for i, entry := range entries {
			if entry.ID == *lastPostedID {
				cut = i
				break
			}
		}
		collected = entries[:cut]
	}

	// Reverse to ascending chronological order, the publish order.
	delta := make([]feed.Entry, 0, len(collected))
	for i := len(collected) - 1; i >= 0; i-- {
		delta = append(delta, collected[i])
	}
	return delta
}
