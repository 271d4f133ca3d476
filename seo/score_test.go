package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"seodesk/models"
)

func fullPage() *models.Page {
	return &models.Page{
		MetaTitle:       strings.Repeat("a", 45),
		MetaDescription: strings.Repeat("b", 140),
		H1Tag:           "Welcome",
		Content:         strings.Repeat("c", 350),
		Slug:            "/services/seo",
	}
}

func TestPageScore_AllChecksPass(t *testing.T) {
	assert.Equal(t, 100, PageScore(fullPage()))
}

func TestPageScore_EmptyPage(t *testing.T) {
	assert.Equal(t, 0, PageScore(&models.Page{}))
}

func TestPageScore_TitleBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		titleLen int
		expected int
	}{
		{"below minimum", 29, 80},
		{"at minimum", 30, 100},
		{"at maximum", 60, 100},
		{"above maximum", 61, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fullPage()
			p.MetaTitle = strings.Repeat("x", tt.titleLen)
			assert.Equal(t, tt.expected, PageScore(p))
		})
	}
}

func TestPageScore_MetaDescriptionBoundaries(t *testing.T) {
	tests := []struct {
		metaLen  int
		expected int
	}{
		{119, 80},
		{120, 100},
		{160, 100},
		{161, 80},
	}

	for _, tt := range tests {
		p := fullPage()
		p.MetaDescription = strings.Repeat("x", tt.metaLen)
		assert.Equal(t, tt.expected, PageScore(p))
	}
}

func TestPageScore_ContentIsCharacterCount(t *testing.T) {
	p := fullPage()
	p.Content = strings.Repeat("x", 299)
	assert.Equal(t, 80, PageScore(p))

	p.Content = strings.Repeat("x", 300)
	assert.Equal(t, 100, PageScore(p))
}

func TestPageScore_SlugNeedsSeparator(t *testing.T) {
	p := fullPage()
	p.Slug = "services-seo"
	assert.Equal(t, 80, PageScore(p))

	p.Slug = ""
	assert.Equal(t, 80, PageScore(p))

	p.Slug = "services/seo"
	assert.Equal(t, 100, PageScore(p))
}

func TestPageScore_H1AnyLength(t *testing.T) {
	p := fullPage()
	p.H1Tag = "x"
	assert.Equal(t, 100, PageScore(p))

	p.H1Tag = ""
	assert.Equal(t, 80, PageScore(p))
}

func TestPageScore_AlwaysMultipleOf20(t *testing.T) {
	pages := []*models.Page{
		{},
		{H1Tag: "h"},
		{H1Tag: "h", Slug: "a/b"},
		{MetaTitle: strings.Repeat("a", 40), Content: strings.Repeat("c", 400)},
		fullPage(),
	}

	for _, p := range pages {
		score := PageScore(p)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
		assert.Equal(t, 0, score%20)
	}
}

func TestPageScore_Idempotent(t *testing.T) {
	p := fullPage()
	first := PageScore(p)
	second := PageScore(p)
	assert.Equal(t, first, second)
}

func TestScoreContent_AllEmpty(t *testing.T) {
	r := ScoreContent("", "", "")

	assert.Equal(t, 0, r.TitleScore)
	assert.Equal(t, 0, r.MetaScore)
	assert.Equal(t, 0, r.ContentScore)
	assert.Equal(t, 0, r.OverallScore)
	assert.Equal(t, []string{
		"Add a title tag",
		"Add a meta description",
		"Add page content",
	}, r.Suggestions)
}

func TestScoreContent_AllInRange(t *testing.T) {
	r := ScoreContent(
		strings.Repeat("A", 45),
		strings.Repeat("B", 140),
		strings.Repeat("C", 350),
	)

	assert.Equal(t, 100, r.TitleScore)
	assert.Equal(t, 100, r.MetaScore)
	assert.Equal(t, 100, r.ContentScore)
	assert.Equal(t, 100, r.OverallScore)
	assert.Empty(t, r.Suggestions)
}

func TestScoreContent_OutOfRangeGetsHalfCredit(t *testing.T) {
	r := ScoreContent("short", strings.Repeat("B", 200), strings.Repeat("C", 10))

	assert.Equal(t, 50, r.TitleScore)
	assert.Equal(t, 50, r.MetaScore)
	assert.Equal(t, 50, r.ContentScore)
	assert.Equal(t, 50, r.OverallScore)
	assert.Equal(t, []string{
		"Title should be between 30-60 characters",
		"Meta description should be between 120-160 characters",
		"Content should be at least 300 characters",
	}, r.Suggestions)
}

func TestScoreContent_SuggestionsKeepFieldOrder(t *testing.T) {
	// Empty meta, out-of-range content, valid title: only two suggestions,
	// meta before content.
	r := ScoreContent(strings.Repeat("A", 45), "", "tiny")

	assert.Equal(t, 100, r.TitleScore)
	assert.Equal(t, 0, r.MetaScore)
	assert.Equal(t, 50, r.ContentScore)
	assert.Equal(t, []string{
		"Add a meta description",
		"Content should be at least 300 characters",
	}, r.Suggestions)
}

func TestScoreContent_OverallRounds(t *testing.T) {
	// 100 + 50 + 0 = 150 / 3 = 50
	r := ScoreContent(strings.Repeat("A", 45), strings.Repeat("B", 10), "")
	assert.Equal(t, 50, r.OverallScore)

	// 100 + 100 + 50 = 250 / 3 = 83.33 -> 83
	r = ScoreContent(strings.Repeat("A", 45), strings.Repeat("B", 140), "x")
	assert.Equal(t, 83, r.OverallScore)

	// 100 + 50 + 50 = 200 / 3 = 66.67 -> 67
	r = ScoreContent(strings.Repeat("A", 45), strings.Repeat("B", 10), "x")
	assert.Equal(t, 67, r.OverallScore)
}

func checklistWith(n int) *models.SEOChecklist {
	cl := &models.SEOChecklist{}
	setters := []*bool{
		&cl.DomainSelected, &cl.HostingSetup, &cl.SSLInstalled,
		&cl.CorePagesCreated, &cl.KeywordResearch, &cl.ContentOptimized,
		&cl.MetaTagsSet, &cl.ImagesOptimized, &cl.SiteSpeedOptimized,
		&cl.MobileFriendly, &cl.AnalyticsSetup, &cl.SearchConsoleSetup,
		&cl.SitemapSubmitted, &cl.BacklinksStarted,
	}
	for i := 0; i < n; i++ {
		*setters[i] = true
	}
	return cl
}

func TestChecklistCompletion(t *testing.T) {
	tests := []struct {
		completed int
		expected  int
	}{
		{0, 0},
		{1, 7},   // 7.14 -> 7
		{5, 36},  // 35.71 -> 36
		{7, 50},  // exact
		{10, 71}, // 71.43 -> 71
		{13, 93}, // 92.86 -> 93
		{14, 100},
	}

	for _, tt := range tests {
		cl := checklistWith(tt.completed)
		assert.Equal(t, tt.expected, ChecklistCompletion(cl), "completed=%d", tt.completed)
	}
}

func TestChecklistCompletion_FlagOrderIrrelevant(t *testing.T) {
	a := &models.SEOChecklist{DomainSelected: true, BacklinksStarted: true}
	b := &models.SEOChecklist{MetaTagsSet: true, MobileFriendly: true}

	assert.Equal(t, ChecklistCompletion(a), ChecklistCompletion(b))
}
