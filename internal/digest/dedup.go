package digest

import (
	"slices"
	"time"
)

// Deduplicator collapses near-duplicate Items: the same story picked up
// from several outlets survives as a single representative.
type Deduplicator struct {
	threshold      float64
	window         time.Duration
	sourcePriority map[string]int
}

func NewDeduplicator(cfg Config) *Deduplicator {
	return &Deduplicator{
		threshold:      cfg.SimilarityThreshold,
		window:         cfg.DedupWindow,
		sourcePriority: cfg.SourcePriority,
	}
}

// Run collapses duplicates, returning representatives in first-seen order.
// Quadratic over the batch, which stays small for one day's worth of feeds.
func (d *Deduplicator) Run(items []Item) []Item {
	kept := make([]Item, 0, len(items))
	for _, item := range items {
		kept = d.merge(kept, item)
	}
	return kept
}

// merge folds item into the kept representatives. Title similarity is not
// transitive, so winning a collapse can hand the survivor a match with a
// representative further down the list; the scan keeps folding until the
// survivor matches nothing. The collapsed story takes the earliest position
// involved, and representatives stay pairwise distinct, which makes Run
// idempotent.
func (d *Deduplicator) merge(kept []Item, item Item) []Item {
	pos := -1
	for i := 0; i < len(kept); {
		if !d.isDuplicate(kept[i], item) {
			i++
			continue
		}
		item = d.survivor(kept[i], item)
		if pos == -1 {
			pos = i
		}
		kept = append(kept[:i], kept[i+1:]...)
	}
	if pos == -1 {
		return append(kept, item)
	}
	return slices.Insert(kept, pos, item)
}

// isDuplicate: identical ID, or titles fuzzy-matching above the threshold
// while both items were published within the dedup window of each other.
func (d *Deduplicator) isDuplicate(a, b Item) bool {
	if a.ID == b.ID {
		return true
	}
	gap := a.PublishedAt.Sub(b.PublishedAt)
	if gap < 0 {
		gap = -gap
	}
	return gap <= d.window && titleSimilarity(a.Title, b.Title) >= d.threshold
}

// survivor picks which of two duplicates to keep. The more authoritative
// source wins; between equals, fresher coverage wins; IDs settle the rest.
// The rule is symmetric, so the merge does not depend on input order.
func (d *Deduplicator) survivor(a, b Item) Item {
	pa, pb := d.sourcePriority[a.Source], d.sourcePriority[b.Source]
	if pa != pb {
		if pa > pb {
			return a
		}
		return b
	}
	if !a.PublishedAt.Equal(b.PublishedAt) {
		if a.PublishedAt.After(b.PublishedAt) {
			return a
		}
		return b
	}
	if a.ID <= b.ID {
		return a
	}
	return b
}
