package digest

import (
	"fmt"
	"time"
)

// Config carries every tunable the pipeline consumes. Values, not files:
// the caller decides where they come from.
type Config struct {
	DigestSize          int
	Lookback            time.Duration
	KeywordWeights      map[string]float64
	MaxFreshnessPoints  float64
	FreshnessDecay      float64 // points lost per hour of age
	SimilarityThreshold float64
	DedupWindow         time.Duration
	SourcePriority      map[string]int
	SummaryMaxLen       int
	TrackingParams      []string
}

// Validate fails fast on configuration that would make a run meaningless.
// This is the only class of error the pipeline reports upward.
func (c Config) Validate() error {
	if c.DigestSize <= 0 {
		return fmt.Errorf("digest size must be positive, got %d", c.DigestSize)
	}
	if c.Lookback <= 0 {
		return fmt.Errorf("lookback window must be positive, got %s", c.Lookback)
	}
	if len(c.KeywordWeights) == 0 {
		return fmt.Errorf("keyword weights must not be empty")
	}
	for kw, w := range c.KeywordWeights {
		if kw == "" || w <= 0 {
			return fmt.Errorf("keyword %q has invalid weight %v", kw, w)
		}
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got %v", c.SimilarityThreshold)
	}
	if c.DedupWindow <= 0 {
		return fmt.Errorf("dedup window must be positive, got %s", c.DedupWindow)
	}
	if c.SummaryMaxLen <= 0 {
		return fmt.Errorf("summary max length must be positive, got %d", c.SummaryMaxLen)
	}
	if c.MaxFreshnessPoints < 0 || c.FreshnessDecay < 0 {
		return fmt.Errorf("freshness parameters must not be negative")
	}
	return nil
}

// Pipeline is the single linear pass over one batch: normalize, dedupe,
// score, select. It holds no state between runs.
type Pipeline struct {
	normalizer   *Normalizer
	deduplicator *Deduplicator
	scorer       *Scorer
	selector     *Selector
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	return &Pipeline{
		normalizer:   NewNormalizer(cfg),
		deduplicator: NewDeduplicator(cfg),
		scorer:       NewScorer(cfg),
		selector:     NewSelector(cfg),
	}, nil
}

// Run processes one batch to completion. It is a pure function of the
// batch and the injected clock: the same inputs always produce the same
// ranked digest. An empty batch yields an empty digest, not an error.
func (p *Pipeline) Run(batch []RawItem, now time.Time) ([]Item, Stats) {
	stats := Stats{Collected: len(batch)}

	items := make([]Item, 0, len(batch))
	for _, raw := range batch {
		item, ok := p.normalizer.Normalize(raw, now)
		if !ok {
			stats.Dropped++
			continue
		}
		items = append(items, item)
	}
	stats.Normalized = len(items)

	deduped := p.deduplicator.Run(items)
	stats.Collapsed = len(items) - len(deduped)

	scored := p.scorer.Run(deduped, now)
	stats.Excluded = len(deduped) - len(scored)

	digest := p.selector.Run(scored)
	stats.Selected = len(digest)

	return digest, stats
}
