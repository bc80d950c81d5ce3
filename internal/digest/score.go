package digest

import (
	"regexp"
	"sort"
	"time"
)

// Scorer assigns each item a rank score from keyword relevance and recency.
// Items older than the lookback window are cut before scoring.
type Scorer struct {
	keywords []string // sorted, so float sums are order-stable
	weights  map[string]float64
	patterns map[string]*regexp.Regexp
	lookback time.Duration
	maxFresh float64
	decay    float64
}

func NewScorer(cfg Config) *Scorer {
	keywords := make([]string, 0, len(cfg.KeywordWeights))
	patterns := make(map[string]*regexp.Regexp, len(cfg.KeywordWeights))
	for kw := range cfg.KeywordWeights {
		keywords = append(keywords, kw)
		// Whole-word match so "patch" does not fire on "dispatched".
		patterns[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	sort.Strings(keywords)
	return &Scorer{
		keywords: keywords,
		weights:  cfg.KeywordWeights,
		patterns: patterns,
		lookback: cfg.Lookback,
		maxFresh: cfg.MaxFreshnessPoints,
		decay:    cfg.FreshnessDecay,
	}
}

// Run returns a new slice of items annotated with scores. Items outside
// the lookback window are excluded entirely, not merely penalized.
func (s *Scorer) Run(items []Item, now time.Time) []Item {
	scored := make([]Item, 0, len(items))
	for _, item := range items {
		if now.Sub(item.PublishedAt) > s.lookback {
			continue
		}
		item.Score = s.keywordScore(item) + s.freshnessScore(item, now)
		scored = append(scored, item)
	}
	return scored
}

// keywordScore sums the weight of every configured keyword appearing in
// the title or summary. Each keyword counts once, however often it repeats.
func (s *Scorer) keywordScore(item Item) float64 {
	text := item.Title + " " + item.Summary
	var score float64
	for _, kw := range s.keywords {
		if s.patterns[kw].MatchString(text) {
			score += s.weights[kw]
		}
	}
	return score
}

// freshnessScore decays linearly with age and never goes negative.
func (s *Scorer) freshnessScore(item Item, now time.Time) float64 {
	age := now.Sub(item.PublishedAt).Hours()
	if age < 0 {
		age = 0
	}
	fresh := s.maxFresh - age*s.decay
	if fresh < 0 {
		return 0
	}
	return fresh
}
