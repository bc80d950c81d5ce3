// Package app wires the collector, the digest pipeline, the insight
// generator, and the emailer into one daily run.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberbrief/cyberbrief/internal/config"
	"github.com/cyberbrief/cyberbrief/internal/digest"
	"github.com/cyberbrief/cyberbrief/internal/feeds"
	"github.com/cyberbrief/cyberbrief/internal/insights"
	"github.com/cyberbrief/cyberbrief/internal/logger"
	"github.com/cyberbrief/cyberbrief/internal/mail"
	"github.com/cyberbrief/cyberbrief/internal/metrics"
	"github.com/cyberbrief/cyberbrief/internal/ratelimit"
)

// Run executes one end-to-end briefing: collect, process, enrich, send.
// Configuration problems fail fast; everything downstream degrades
// gracefully instead of aborting the day's digest.
func Run() error {
	logger.Init()
	logger.Info("starting cyberbrief run")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sources, err := feeds.LoadSources(cfg.SourcesPath)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources configured in %s", cfg.SourcesPath)
	}

	// Construct the pipeline before any fetching so bad tuning surfaces
	// before the first network request.
	pipeline, err := digest.New(digest.Config{
		DigestSize:          cfg.DigestSize,
		Lookback:            cfg.Lookback,
		KeywordWeights:      cfg.KeywordWeights,
		MaxFreshnessPoints:  cfg.MaxFreshnessPoints,
		FreshnessDecay:      cfg.FreshnessDecay,
		SimilarityThreshold: cfg.SimilarityThreshold,
		DedupWindow:         cfg.DedupWindow,
		SourcePriority:      feeds.Priorities(sources),
		SummaryMaxLen:       cfg.SummaryMaxLen,
		TrackingParams:      cfg.TrackingParams,
	})
	if err != nil {
		return err
	}

	emailer, err := mail.NewEmailer(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	collector := feeds.NewCollector(cfg)
	batch := collector.Collect(ctx, sources)

	start := time.Now()
	items, stats := pipeline.Run(batch, time.Now())
	metrics.Global.RecordProcessingTime(time.Since(start))
	metrics.Global.AddItemsDropped(int64(stats.Dropped))
	metrics.Global.AddDuplicatesCollapsed(int64(stats.Collapsed))
	metrics.Global.AddItemsExcluded(int64(stats.Excluded))
	metrics.Global.SetLastDigestSize(int64(stats.Selected))

	logger.Info("pipeline finished",
		"collected", stats.Collected,
		"normalized", stats.Normalized,
		"dropped", stats.Dropped,
		"collapsed", stats.Collapsed,
		"excluded", stats.Excluded,
		"selected", stats.Selected)

	briefing := buildBriefing(ctx, cfg, items)

	if cfg.DryRun {
		body, err := emailer.Render(briefing)
		if err != nil {
			metrics.Global.SetError(err.Error())
			return err
		}
		fmt.Println(body)
		logger.Info("dry run, briefing rendered to stdout", "stories", len(briefing.Stories))
		metrics.Global.SetLastRun()
		return nil
	}

	if err := emailer.Send(ctx, briefing); err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}

	metrics.Global.SetLastRun()
	logger.Info("daily briefing completed")
	return nil
}

// buildBriefing wraps ranked items as stories and, when a Gemini key is
// configured, annotates them within the per-run request budget. Insight
// failures are logged and skipped; the digest goes out either way.
func buildBriefing(ctx context.Context, cfg *config.Config, items []digest.Item) mail.Briefing {
	briefing := mail.Briefing{
		Date:    time.Now().Format("2006-01-02"),
		Stories: make([]mail.Story, 0, len(items)),
	}
	for _, item := range items {
		briefing.Stories = append(briefing.Stories, mail.Story{Item: item})
	}

	if cfg.GeminiAPIKey == "" || cfg.MaxInsightRequests <= 0 || len(items) == 0 {
		return briefing
	}

	budget := ratelimit.NewBudget(cfg.MaxInsightRequests)
	client, err := insights.NewClient(ctx, cfg.GeminiAPIKey, budget)
	if err != nil {
		logger.Warn("insights disabled", "error", err)
		return briefing
	}
	defer client.Close()

	for i := range briefing.Stories {
		if !budget.Allow() {
			logger.Debug("insight budget exhausted", "used", budget.Used())
			break
		}
		why, err := client.AnalyzeStory(ctx, briefing.Stories[i].Item)
		if err != nil {
			logger.Warn("story analysis failed", "title", briefing.Stories[i].Title, "error", err)
			continue
		}
		briefing.Stories[i].WhyItMatters = why
	}

	if budget.Allow() {
		overview, err := client.BriefingInsight(ctx, items)
		if err != nil {
			logger.Warn("briefing insight failed", "error", err)
		} else {
			briefing.ExecutiveSummary = overview.ExecutiveSummary
			for _, s := range overview.Signals {
				briefing.Signals = append(briefing.Signals, mail.Signal{
					Title:       s.Title,
					Description: s.Description,
				})
			}
		}
	}

	return briefing
}
