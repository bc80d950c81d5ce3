package digest

import "sort"

// Selector orders scored items and truncates to the digest size. It is the
// terminal stage before handoff to rendering.
type Selector struct {
	size int
}

func NewSelector(cfg Config) *Selector {
	return &Selector{size: cfg.DigestSize}
}

// Run returns at most size items: score descending, then more recent
// publishedAt, then ID, so the ordering is fully deterministic. The input
// slice is left untouched.
func (s *Selector) Run(items []Item) []Item {
	ranked := append([]Item(nil), items...)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].PublishedAt.Equal(ranked[j].PublishedAt) {
			return ranked[i].PublishedAt.After(ranked[j].PublishedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})

	if len(ranked) > s.size {
		ranked = ranked[:s.size]
	}
	return ranked
}
