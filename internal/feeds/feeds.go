// Package feeds collects raw items from the configured RSS/Atom sources.
// All network I/O lives here; the digest pipeline never fetches anything.
package feeds

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/cyberbrief/cyberbrief/internal/config"
	"github.com/cyberbrief/cyberbrief/internal/digest"
	"github.com/cyberbrief/cyberbrief/internal/logger"
	"github.com/cyberbrief/cyberbrief/internal/metrics"
	"github.com/cyberbrief/cyberbrief/internal/ratelimit"
	"github.com/cyberbrief/cyberbrief/internal/retry"
)

// Source is one configured feed. Priority feeds the dedup survivor rule:
// a higher value marks a more authoritative outlet.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Priority int    `yaml:"priority"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the feed list from a YAML file.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg sourcesFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Sources, nil
}

// Priorities maps source names to their configured priority.
func Priorities(sources []Source) map[string]int {
	m := make(map[string]int, len(sources))
	for _, s := range sources {
		m[s.Name] = s.Priority
	}
	return m
}

// Collector fetches all sources concurrently with per-host pacing and
// retries, and flattens the results into one RawItem batch.
type Collector struct {
	client      *http.Client
	userAgent   string
	concurrency int
	pacer       *ratelimit.Pacer
	retryCfg    retry.Config
}

func NewCollector(cfg *config.Config) *Collector {
	return &Collector{
		client:      &http.Client{Timeout: cfg.FetchTimeout},
		userAgent:   cfg.UserAgent,
		concurrency: cfg.FetchConcurrency,
		pacer:       ratelimit.NewPacer(cfg.FetchPace),
		retryCfg: retry.Config{
			Attempts: cfg.RetryAttempts,
			Delay:    cfg.RetryDelay,
			Backoff:  true,
		},
	}
}

// Collect downloads every source and returns the combined batch. Items
// keep a stable order (config order, then feed order) so pipeline runs
// over the same snapshot are reproducible. A failing feed is logged and
// skipped; it only shrinks the batch.
func (c *Collector) Collect(ctx context.Context, sources []Source) []digest.RawItem {
	results := make([][]digest.RawItem, len(sources))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.concurrency)

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := c.fetch(ctx, src)
			if err != nil {
				logger.Warn("feed fetch failed", "source", src.Name, "url", src.URL, "error", err)
				metrics.Global.IncrementFeedFailures()
				return
			}
			logger.Info("feed fetched", "source", src.Name, "items", len(items))
			metrics.Global.AddFeedsFetched(1)
			results[i] = items
		}(i, src)
	}
	wg.Wait()

	var batch []digest.RawItem
	for _, items := range results {
		batch = append(batch, items...)
	}

	logger.Info("collection finished", "sources", len(sources), "items", len(batch))
	metrics.Global.AddItemsCollected(int64(len(batch)))
	return batch
}

func (c *Collector) fetch(ctx context.Context, src Source) ([]digest.RawItem, error) {
	if err := c.pacer.Wait(ctx, hostOf(src.URL)); err != nil {
		return nil, err
	}

	parser := gofeed.NewParser()
	parser.Client = c.client
	parser.UserAgent = c.userAgent

	var feed *gofeed.Feed
	err := retry.WithRetry(ctx, c.retryCfg, func() error {
		var ferr error
		feed, ferr = parser.ParseURLWithContext(src.URL, ctx)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	items := make([]digest.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		items = append(items, digest.RawItem{
			Title:     entry.Title,
			Link:      entry.Link,
			Summary:   coalesce(entry.Description, entry.Content),
			Published: coalesce(entry.Published, entry.Updated),
			Source:    src.Name,
		})
	}
	return items, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.ToLower(u.Host)
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
