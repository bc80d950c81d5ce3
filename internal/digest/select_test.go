package digest

import (
	"fmt"
	"testing"
	"time"
)

func TestSelector_CutoffCorrectness(t *testing.T) {
	s := NewSelector(Config{DigestSize: 10})

	items := make([]Item, 15)
	for i := range items {
		items[i] = Item{
			ID:          fmt.Sprintf("id-%02d", i),
			Score:       float64(i),
			PublishedAt: testNow,
		}
	}

	ranked := s.Run(items)
	if len(ranked) != 10 {
		t.Fatalf("expected 10 items, got %d", len(ranked))
	}

	minSelected := ranked[len(ranked)-1].Score
	for _, item := range items {
		excluded := true
		for _, r := range ranked {
			if r.ID == item.ID {
				excluded = false
				break
			}
		}
		if excluded && item.Score > minSelected {
			t.Errorf("excluded item %s (score %v) outranks a selected item (min %v)",
				item.ID, item.Score, minSelected)
		}
	}
}

func TestSelector_OrderingAndTieBreaks(t *testing.T) {
	s := NewSelector(Config{DigestSize: 10})

	items := []Item{
		{ID: "c", Score: 5, PublishedAt: testNow.Add(-3 * time.Hour)},
		{ID: "a", Score: 8, PublishedAt: testNow.Add(-5 * time.Hour)},
		{ID: "d", Score: 5, PublishedAt: testNow.Add(-1 * time.Hour)},
		{ID: "b", Score: 5, PublishedAt: testNow.Add(-1 * time.Hour)},
	}

	ranked := s.Run(items)

	// score desc, then newer publishedAt, then id asc
	want := []string{"a", "b", "d", "c"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, ranked[i].ID, id)
		}
	}
}

func TestSelector_FewerThanN(t *testing.T) {
	s := NewSelector(Config{DigestSize: 10})

	items := []Item{
		{ID: "a", Score: 1, PublishedAt: testNow},
		{ID: "b", Score: 2, PublishedAt: testNow},
	}

	ranked := s.Run(items)
	if len(ranked) != 2 {
		t.Errorf("expected all 2 items back, got %d", len(ranked))
	}
}

func TestSelector_EmptyInput(t *testing.T) {
	s := NewSelector(Config{DigestSize: 10})

	if ranked := s.Run(nil); len(ranked) != 0 {
		t.Errorf("expected empty output, got %d items", len(ranked))
	}
}

func TestSelector_InputLeftUntouched(t *testing.T) {
	s := NewSelector(Config{DigestSize: 1})

	items := []Item{
		{ID: "a", Score: 1, PublishedAt: testNow},
		{ID: "b", Score: 2, PublishedAt: testNow},
	}

	s.Run(items)
	if items[0].ID != "a" || items[1].ID != "b" {
		t.Error("selector mutated its input slice")
	}
}
