package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// Normalizer turns raw feed entries into canonical Items. It is a pure
// per-item transform; items without a resolvable link yield nothing.
type Normalizer struct {
	summaryMaxLen  int
	trackingParams []string
}

func NewNormalizer(cfg Config) *Normalizer {
	return &Normalizer{
		summaryMaxLen:  cfg.SummaryMaxLen,
		trackingParams: cfg.TrackingParams,
	}
}

// Normalize returns the canonical Item for raw, or false when the entry is
// unusable. now is injected so runs are reproducible.
func (n *Normalizer) Normalize(raw RawItem, now time.Time) (Item, bool) {
	canonical, path, ok := n.canonicalURL(raw.Link)
	if !ok {
		return Item{}, false
	}

	title := cleanText(raw.Title)
	summary := truncateAtWord(cleanText(raw.Summary), n.summaryMaxLen)

	publishedAt := now
	if raw.Published != "" {
		if t, err := dateparse.ParseAny(raw.Published); err == nil {
			publishedAt = t
		}
	}

	return Item{
		ID:          itemID(canonical, path, title),
		Title:       title,
		URL:         canonical,
		Summary:     summary,
		PublishedAt: publishedAt,
		FetchedAt:   now,
		Source:      strings.TrimSpace(raw.Source),
	}, true
}

// canonicalURL lower-cases scheme and host, drops tracking parameters and
// the fragment, and strips the trailing slash. The result is the primary
// dedup key. Links without a host are unresolvable and rejected.
func (n *Normalizer) canonicalURL(link string) (canonical, path string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return "", "", false
	}
	if u.Scheme != "" && !strings.EqualFold(u.Scheme, "http") && !strings.EqualFold(u.Scheme, "https") {
		return "", "", false
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	for key := range q {
		if n.isTrackingParam(key) {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode() // Encode sorts keys, keeping the form stable

	return u.String(), u.Path, true
}

func (n *Normalizer) isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	for _, entry := range n.trackingParams {
		entry = strings.ToLower(entry)
		if prefix, found := strings.CutSuffix(entry, "*"); found {
			if strings.HasPrefix(key, prefix) {
				return true
			}
			continue
		}
		if key == entry {
			return true
		}
	}
	return false
}

// itemID hashes the canonical URL. A bare-host URL carries too little
// identity on its own, so the normalized title joins the hash input.
func itemID(canonical, path, title string) string {
	input := canonical
	if path == "" {
		input += "|" + strings.ToLower(title)
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// cleanText strips HTML markup, decodes entities, and collapses whitespace.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// truncateAtWord caps s at max runes, ellipsis included, cutting back to
// the nearest word boundary instead of mid-word.
func truncateAtWord(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}

	cut := string(runes[:max-3])
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:.") + "..."
}
