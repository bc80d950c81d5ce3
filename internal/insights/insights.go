// Package insights enriches the briefing with Gemini-generated analysis:
// a "why this matters" line per story and an executive summary across the
// digest. Everything here is optional; failures degrade to a plain digest.
package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/cyberbrief/cyberbrief/internal/digest"
	"github.com/cyberbrief/cyberbrief/internal/metrics"
	"github.com/cyberbrief/cyberbrief/internal/ratelimit"
)

const modelName = "gemini-1.5-flash"

type Client struct {
	client *genai.Client
	budget *ratelimit.Budget
}

type Signal struct {
	Title       string
	Description string
}

type Briefing struct {
	ExecutiveSummary string
	Signals          []Signal
}

func NewClient(ctx context.Context, apiKey string, budget *ratelimit.Budget) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, budget: budget}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// AnalyzeStory generates the "why this matters" line for one story.
func (c *Client) AnalyzeStory(ctx context.Context, item digest.Item) (string, error) {
	if err := c.budget.Use(); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Analyze this cybersecurity news item:
Title: %s
Summary: %s

Write a "Why This Matters" analysis in at most 2-3 sentences. Focus on
impact, improved defense, or strategic importance.

Output format:
Why: [Analysis text]`, item.Title, item.Summary)

	response, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return parseAnalysis(response), nil
}

// BriefingInsight generates the executive summary and cross-story signals
// for the whole digest.
func (c *Client) BriefingInsight(ctx context.Context, items []digest.Item) (*Briefing, error) {
	if err := c.budget.Use(); err != nil {
		return nil, err
	}

	var titles strings.Builder
	for _, item := range items {
		titles.WriteString("- " + item.Title + "\n")
	}

	prompt := fmt.Sprintf(`Based on the following cybersecurity news briefing digest:
%s
Task 1: Write an 'Executive Insight Summary' (approx 150-200 words).
Highlight key emerging themes, repeated threat patterns, or notable shifts.
Task 2: Identify up to 3 distinct 'Signals' (cross-story trends). For each,
provide a short Title and Description.

Output format:
SUMMARY:
[Summary text]

SIGNAL 1: [Title] - [Description]
SIGNAL 2: [Title] - [Description]
SIGNAL 3: [Title] - [Description]`, titles.String())

	response, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseBriefing(response), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	metrics.Global.IncrementInsightRequests()

	model := c.client.GenerativeModel(modelName)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// parseAnalysis extracts the text after the "Why:" label; an unlabeled
// response is used as-is.
func parseAnalysis(response string) string {
	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if rest, found := strings.CutPrefix(line, "Why:"); found {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(response)
}

// parseBriefing walks the labeled sections of the model response. Lines
// after SUMMARY: accumulate until the first SIGNAL label; each SIGNAL line
// splits into title and description on " - ".
func parseBriefing(response string) *Briefing {
	briefing := &Briefing{}
	var summaryLines []string
	inSummary := false

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "SUMMARY:"):
			inSummary = true
			if rest := strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:")); rest != "" {
				summaryLines = append(summaryLines, rest)
			}
		case strings.HasPrefix(line, "SIGNAL"):
			inSummary = false
			_, content, found := strings.Cut(line, ":")
			if !found {
				continue
			}
			content = strings.TrimSpace(content)
			if title, desc, ok := strings.Cut(content, " - "); ok {
				briefing.Signals = append(briefing.Signals, Signal{
					Title:       strings.TrimSpace(title),
					Description: strings.TrimSpace(desc),
				})
			} else if content != "" {
				briefing.Signals = append(briefing.Signals, Signal{Title: "Trend", Description: content})
			}
		case inSummary:
			summaryLines = append(summaryLines, line)
		}
	}

	briefing.ExecutiveSummary = strings.Join(summaryLines, " ")
	return briefing
}
