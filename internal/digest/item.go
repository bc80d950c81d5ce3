// Package digest implements the pure processing pipeline that turns raw
// feed entries into a ranked, size-capped daily digest: normalization,
// near-duplicate collapsing, keyword/freshness scoring, and selection.
package digest

import "time"

// RawItem is one feed entry as delivered by the collector. Any field may be
// empty or malformed; normalization decides what is usable.
type RawItem struct {
	Title     string
	Link      string
	Summary   string
	Published string // raw timestamp text from the feed
	Source    string
}

// Item is the canonical record owned by the pipeline. ID uniquely
// identifies a story within one run; two raw entries normalizing to the
// same ID are duplicates by construction.
type Item struct {
	ID          string
	Title       string
	URL         string
	Summary     string
	PublishedAt time.Time
	FetchedAt   time.Time
	Source      string
	Score       float64 // assigned by the scorer, zero before that stage
}

// Stats describes what one pipeline run did to its batch.
type Stats struct {
	Collected  int // raw items received
	Normalized int // items surviving normalization
	Dropped    int // unusable raw items (no resolvable link)
	Collapsed  int // near-duplicates merged away
	Excluded   int // items older than the lookback window
	Selected   int // final digest size
}
