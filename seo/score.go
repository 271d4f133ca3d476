package seo

import (
	"math"
	"strings"

	"seodesk/models"
)

// Length bounds used by both scorers. Character counts, not words.
const (
	TitleMinLen   = 30
	TitleMaxLen   = 60
	MetaMinLen    = 120
	MetaMaxLen    = 160
	ContentMinLen = 300
)

const checklistItems = 14

// PageScore grades a page against five independent checks worth 20 points
// each. There is no partial credit per check, so the result is always a
// multiple of 20 in [0,100]. Callers persist the result themselves.
func PageScore(p *models.Page) int {
	score := 0

	if n := len(p.MetaTitle); n >= TitleMinLen && n <= TitleMaxLen {
		score += 20
	}

	if n := len(p.MetaDescription); n >= MetaMinLen && n <= MetaMaxLen {
		score += 20
	}

	if p.H1Tag != "" {
		score += 20
	}

	if len(p.Content) >= ContentMinLen {
		score += 20
	}

	if p.Slug != "" && strings.Contains(p.Slug, "/") {
		score += 20
	}

	return score
}

// Result is the live score returned by the content analysis endpoint.
type Result struct {
	TitleScore   int      `json:"title_score"`
	MetaScore    int      `json:"meta_score"`
	ContentScore int      `json:"content_score"`
	OverallScore int      `json:"overall_score"`
	Suggestions  []string `json:"suggestions"`
}

// ScoreContent grades a title/meta/content triad on a three-tier scale:
// 100 when in range, 50 when present but out of range, 0 when absent.
// Suggestions accumulate in field order (title, meta, content); a field
// gets at most one suggestion. Stateless and idempotent.
func ScoreContent(title, metaDescription, content string) Result {
	r := Result{Suggestions: []string{}}

	switch {
	case len(title) >= TitleMinLen && len(title) <= TitleMaxLen:
		r.TitleScore = 100
	case len(title) > 0:
		r.TitleScore = 50
		r.Suggestions = append(r.Suggestions, "Title should be between 30-60 characters")
	default:
		r.Suggestions = append(r.Suggestions, "Add a title tag")
	}

	switch {
	case len(metaDescription) >= MetaMinLen && len(metaDescription) <= MetaMaxLen:
		r.MetaScore = 100
	case len(metaDescription) > 0:
		r.MetaScore = 50
		r.Suggestions = append(r.Suggestions, "Meta description should be between 120-160 characters")
	default:
		r.Suggestions = append(r.Suggestions, "Add a meta description")
	}

	switch {
	case len(content) >= ContentMinLen:
		r.ContentScore = 100
	case len(content) > 0:
		r.ContentScore = 50
		r.Suggestions = append(r.Suggestions, "Content should be at least 300 characters")
	default:
		r.Suggestions = append(r.Suggestions, "Add page content")
	}

	r.OverallScore = int(math.Round(float64(r.TitleScore+r.MetaScore+r.ContentScore) / 3))
	return r
}

// ChecklistCompletion returns round(100 * completed / 14) for the fixed
// 14-item checklist. With 14 items, 100*k/14 never lands on an exact .5,
// so math.Round's half-away-from-zero behavior is never exercised.
func ChecklistCompletion(cl *models.SEOChecklist) int {
	flags := []bool{
		cl.DomainSelected,
		cl.HostingSetup,
		cl.SSLInstalled,
		cl.CorePagesCreated,
		cl.KeywordResearch,
		cl.ContentOptimized,
		cl.MetaTagsSet,
		cl.ImagesOptimized,
		cl.SiteSpeedOptimized,
		cl.MobileFriendly,
		cl.AnalyticsSetup,
		cl.SearchConsoleSetup,
		cl.SitemapSubmitted,
		cl.BacklinksStarted,
	}

	completed := 0
	for _, f := range flags {
		if f {
			completed++
		}
	}

	return int(math.Round(float64(completed) / checklistItems * 100))
}
