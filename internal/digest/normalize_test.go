package digest

import (
	"strings"
	"testing"
	"time"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(Config{
		SummaryMaxLen:  400,
		TrackingParams: []string{"utm_*", "ref", "fbclid"},
	})
}

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func TestNormalize_StripsHTMLAndCollapsesWhitespace(t *testing.T) {
	n := testNormalizer()

	item, ok := n.Normalize(RawItem{
		Title:   "  <b>Critical</b> flaw\n\n found  ",
		Link:    "https://example.com/story",
		Summary: "<p>Attackers are &amp; exploiting<br> it in the wild.</p>",
	}, testNow)
	if !ok {
		t.Fatal("expected item to survive normalization")
	}

	if item.Title != "Critical flaw found" {
		t.Errorf("unexpected title: %q", item.Title)
	}
	if item.Summary != "Attackers are & exploiting it in the wild." {
		t.Errorf("unexpected summary: %q", item.Summary)
	}
}

func TestNormalize_CanonicalURL(t *testing.T) {
	n := testNormalizer()

	item, ok := n.Normalize(RawItem{
		Title: "Story",
		Link:  "HTTPS://Example.COM/News/Story/?utm_source=rss&utm_medium=feed&id=7&fbclid=abc#section",
	}, testNow)
	if !ok {
		t.Fatal("expected item to survive normalization")
	}

	want := "https://example.com/News/Story?id=7"
	if item.URL != want {
		t.Errorf("canonical URL = %q, want %q", item.URL, want)
	}
}

func TestNormalize_DropsUnusableLinks(t *testing.T) {
	n := testNormalizer()

	for _, link := range []string{"", "   ", "/relative/path", "not a url", "ftp://example.com/file"} {
		if _, ok := n.Normalize(RawItem{Title: "x", Link: link}, testNow); ok {
			t.Errorf("link %q should have been dropped", link)
		}
	}
}

func TestNormalize_TimestampFallback(t *testing.T) {
	n := testNormalizer()

	for _, published := range []string{"", "not a date", "yesterday-ish"} {
		item, ok := n.Normalize(RawItem{Title: "x", Link: "https://example.com/a", Published: published}, testNow)
		if !ok {
			t.Fatalf("item with published %q should survive", published)
		}
		if !item.PublishedAt.Equal(testNow) {
			t.Errorf("published %q: expected fallback to now, got %v", published, item.PublishedAt)
		}
		if !item.FetchedAt.Equal(testNow) {
			t.Errorf("fetchedAt not set to now: %v", item.FetchedAt)
		}
	}
}

func TestNormalize_ParsesCommonTimestampFormats(t *testing.T) {
	n := testNormalizer()

	formats := []string{
		"Fri, 29 Aug 2026 10:30:00 +0000",
		"2026-08-29T10:30:00Z",
		"2026-08-29 10:30:00",
	}
	want := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	for _, published := range formats {
		item, ok := n.Normalize(RawItem{Title: "x", Link: "https://example.com/a", Published: published}, testNow)
		if !ok {
			t.Fatalf("item with published %q should survive", published)
		}
		if !item.PublishedAt.Equal(want) {
			t.Errorf("published %q parsed to %v, want %v", published, item.PublishedAt, want)
		}
	}
}

func TestNormalize_SummaryTruncatedAtWordBoundary(t *testing.T) {
	n := NewNormalizer(Config{SummaryMaxLen: 20, TrackingParams: nil})

	item, ok := n.Normalize(RawItem{
		Title:   "x",
		Link:    "https://example.com/a",
		Summary: "the quick brown fox jumps over the lazy dog",
	}, testNow)
	if !ok {
		t.Fatal("expected item to survive normalization")
	}

	if item.Summary != "the quick brown..." {
		t.Errorf("unexpected truncation: %q", item.Summary)
	}
	if strings.Contains(item.Summary, "jump") {
		t.Errorf("summary not truncated: %q", item.Summary)
	}
}

func TestNormalize_TruncationNeverExceedsMaxLen(t *testing.T) {
	const maxLen = 20
	n := NewNormalizer(Config{SummaryMaxLen: maxLen, TrackingParams: nil})

	summaries := []string{
		"the quick brown fox jumps over the lazy dog",
		"supercalifragilisticexpialidocious",       // no word boundary to cut at
		"short",                                    // under the cap, untouched
		"exactly twenty chars",                     // at the cap, untouched
	}

	for _, summary := range summaries {
		item, ok := n.Normalize(RawItem{Title: "x", Link: "https://example.com/a", Summary: summary}, testNow)
		if !ok {
			t.Fatalf("item with summary %q should survive", summary)
		}
		if got := len([]rune(item.Summary)); got > maxLen {
			t.Errorf("summary %q truncated to %d runes, cap is %d: %q", summary, got, maxLen, item.Summary)
		}
	}

	item, _ := n.Normalize(RawItem{Title: "x", Link: "https://example.com/a", Summary: "short"}, testNow)
	if item.Summary != "short" {
		t.Errorf("text under the cap should be untouched, got %q", item.Summary)
	}
}

func TestNormalize_IDStableAcrossTrackingParams(t *testing.T) {
	n := testNormalizer()

	a, _ := n.Normalize(RawItem{Title: "Story", Link: "https://example.com/a?utm_source=rss"}, testNow)
	b, _ := n.Normalize(RawItem{Title: "Story", Link: "https://example.com/a"}, testNow)

	if a.ID != b.ID {
		t.Errorf("tracking parameters changed the id: %s vs %s", a.ID, b.ID)
	}
}

func TestNormalize_BareHostIDFallsBackToTitle(t *testing.T) {
	n := testNormalizer()

	a, _ := n.Normalize(RawItem{Title: "First story", Link: "https://example.com/"}, testNow)
	b, _ := n.Normalize(RawItem{Title: "Second story", Link: "https://example.com/"}, testNow)

	if a.ID == b.ID {
		t.Error("bare-host items with different titles should not share an id")
	}
}
