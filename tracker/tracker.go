package tracker

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"seodesk/cache"
	"seodesk/common"
	"seodesk/models"
	"seodesk/seo"
)

// TrackerModule is the standalone project tracker: projects with pages,
// keywords, backlinks and the 14-item onboarding checklist. It has no
// login; routes live under /tracker.
type TrackerModule struct {
	db *gorm.DB
}

func NewTrackerModule(db *gorm.DB) *TrackerModule {
	return &TrackerModule{db: db}
}

func (t *TrackerModule) RegisterRoutes(router *gin.Engine) {
	trackerGroup := router.Group("/tracker")
	{
		trackerGroup.GET("", t.index)
		trackerGroup.GET("/", t.index)
		trackerGroup.GET("/dashboard", t.dashboard)

		trackerGroup.GET("/project/new", t.newProject)
		trackerGroup.POST("/project/new", t.createProject)
		trackerGroup.GET("/project/:id", t.projectDetail)

		trackerGroup.GET("/project/:id/pages", t.listPages)
		trackerGroup.GET("/project/:id/page/new", t.newPage)
		trackerGroup.POST("/project/:id/page/new", t.createPage)
		trackerGroup.GET("/project/:id/page/:pageID/edit", t.editPage)
		trackerGroup.POST("/project/:id/page/:pageID/edit", t.updatePage)

		trackerGroup.GET("/project/:id/keywords", t.listKeywords)
		trackerGroup.POST("/project/:id/keyword/add", t.addKeyword)

		trackerGroup.GET("/project/:id/checklist", t.checklist)
		trackerGroup.POST("/project/:id/checklist", t.updateChecklist)

		trackerGroup.GET("/project/:id/backlinks", t.listBacklinks)
		trackerGroup.POST("/project/:id/backlink/add", t.addBacklink)

		trackerGroup.GET("/project/:id/speed-test", t.speedTest)
		trackerGroup.GET("/project/:id/google-integration", t.googleIntegration)

		trackerGroup.POST("/api/seo-score", t.apiSeoScore)
	}
}

func (t *TrackerModule) loadProject(c *gin.Context) (*models.Project, bool) {
	var project models.Project
	if err := t.db.First(&project, c.Param("id")).Error; err != nil {
		c.HTML(http.StatusNotFound, "tracker_error.html", gin.H{
			"error": "Project not found",
		})
		return nil, false
	}
	return &project, true
}

func (t *TrackerModule) index(c *gin.Context) {
	var projects []models.Project
	if err := t.db.Order("created_at DESC").Find(&projects).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to load projects",
		})
		return
	}

	c.HTML(http.StatusOK, "tracker_index.html", gin.H{
		"projects": projects,
	})
}

func (t *TrackerModule) dashboard(c *gin.Context) {
	var projects []models.Project
	t.db.Find(&projects)

	var totalPages, totalKeywords int64
	t.db.Model(&models.Page{}).Count(&totalPages)
	t.db.Model(&models.Keyword{}).Count(&totalKeywords)

	avgSeoScore := 0
	if len(projects) > 0 {
		total := 0
		for _, p := range projects {
			total += p.SeoScore
		}
		avgSeoScore = total / len(projects)
	}

	c.HTML(http.StatusOK, "tracker_dashboard.html", gin.H{
		"projects":      projects,
		"totalProjects": len(projects),
		"totalPages":    totalPages,
		"totalKeywords": totalKeywords,
		"avgSeoScore":   avgSeoScore,
	})
}

func (t *TrackerModule) newProject(c *gin.Context) {
	c.HTML(http.StatusOK, "tracker_new_project.html", gin.H{})
}

// createProject inserts the project together with its empty checklist so
// first access never races to create one.
func (t *TrackerModule) createProject(c *gin.Context) {
	project := models.Project{
		Name:           c.PostForm("name"),
		Niche:          c.PostForm("niche"),
		Domain:         c.PostForm("domain"),
		TargetKeywords: c.PostForm("target_keywords"),
		Description:    c.PostForm("description"),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	err := t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		checklist := models.SEOChecklist{
			ProjectID: project.ID,
			UpdatedAt: time.Now(),
		}
		return tx.Create(&checklist).Error
	})
	if err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to create project",
		})
		return
	}

	c.Redirect(http.StatusFound, "/tracker/project/"+strconv.Itoa(project.ID))
}

// getOrCreateChecklist returns the project's checklist, creating it inside a
// transaction when a legacy project has none yet.
func (t *TrackerModule) getOrCreateChecklist(projectID int) (*models.SEOChecklist, error) {
	var checklist models.SEOChecklist
	err := t.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("project_id = ?", projectID).First(&checklist).Error
		if err == gorm.ErrRecordNotFound {
			checklist = models.SEOChecklist{
				ProjectID: projectID,
				UpdatedAt: time.Now(),
			}
			return tx.Create(&checklist).Error
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &checklist, nil
}

func (t *TrackerModule) projectDetail(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	var pages []models.Page
	t.db.Where("project_id = ?", project.ID).Find(&pages)

	var keywords []models.Keyword
	t.db.Where("project_id = ?", project.ID).Find(&keywords)

	checklist, err := t.getOrCreateChecklist(project.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to load checklist",
		})
		return
	}

	c.HTML(http.StatusOK, "tracker_project_detail.html", gin.H{
		"project":    project,
		"pages":      pages,
		"keywords":   keywords,
		"checklist":  checklist,
		"completion": seo.ChecklistCompletion(checklist),
	})
}

func (t *TrackerModule) listPages(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	var pages []models.Page
	t.db.Where("project_id = ?", project.ID).Find(&pages)

	c.HTML(http.StatusOK, "tracker_pages.html", gin.H{
		"project": project,
		"pages":   pages,
	})
}

func (t *TrackerModule) newPage(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "tracker_new_page.html", gin.H{
		"project": project,
	})
}

func (t *TrackerModule) createPage(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	page := models.Page{
		ProjectID:       project.ID,
		Title:           c.PostForm("title"),
		Slug:            c.PostForm("slug"),
		PageType:        c.PostForm("page_type"),
		MetaTitle:       c.PostForm("meta_title"),
		MetaDescription: c.PostForm("meta_description"),
		Content:         c.PostForm("content"),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	page.SeoScore = seo.PageScore(&page)

	if err := t.db.Create(&page).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to create page",
		})
		return
	}

	cache.ClearProject(project.ID)

	c.Redirect(http.StatusFound, "/tracker/project/"+strconv.Itoa(project.ID)+"/page/"+strconv.Itoa(page.ID)+"/edit")
}

func (t *TrackerModule) loadPage(c *gin.Context, projectID int) (*models.Page, bool) {
	var page models.Page
	if err := t.db.Where("id = ? AND project_id = ?", c.Param("pageID"), projectID).First(&page).Error; err != nil {
		c.HTML(http.StatusNotFound, "tracker_error.html", gin.H{
			"error": "Page not found",
		})
		return nil, false
	}
	return &page, true
}

func (t *TrackerModule) editPage(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	page, ok := t.loadPage(c, project.ID)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "tracker_edit_page.html", gin.H{
		"project":   project,
		"page":      page,
		"liveScore": seo.ScoreContent(page.MetaTitle, page.MetaDescription, page.Content),
	})
}

// updatePage saves the edited fields and recomputes the page score from the
// new values in the same write.
func (t *TrackerModule) updatePage(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	page, ok := t.loadPage(c, project.ID)
	if !ok {
		return
	}

	page.Title = c.PostForm("title")
	page.Slug = c.PostForm("slug")
	page.PageType = c.PostForm("page_type")
	page.MetaTitle = c.PostForm("meta_title")
	page.MetaDescription = c.PostForm("meta_description")
	page.Content = c.PostForm("content")
	page.H1Tag = c.PostForm("h1_tag")
	page.UpdatedAt = time.Now()
	page.SeoScore = seo.PageScore(page)

	if err := t.db.Save(page).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to update page",
		})
		return
	}

	cache.ClearProject(project.ID)

	c.Redirect(http.StatusFound, "/tracker/project/"+strconv.Itoa(project.ID)+"/page/"+strconv.Itoa(page.ID)+"/edit")
}

func (t *TrackerModule) listKeywords(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	var keywords []models.Keyword
	t.db.Where("project_id = ?", project.ID).Find(&keywords)

	c.HTML(http.StatusOK, "tracker_keywords.html", gin.H{
		"project":  project,
		"keywords": keywords,
	})
}

func (t *TrackerModule) addKeyword(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	searchVolume, err := common.FormIntOptional(c, "search_volume")
	if err != nil {
		c.HTML(http.StatusBadRequest, "tracker_error.html", gin.H{"error": err.Error()})
		return
	}
	currentRank, err := common.FormIntOptional(c, "current_rank")
	if err != nil {
		c.HTML(http.StatusBadRequest, "tracker_error.html", gin.H{"error": err.Error()})
		return
	}
	targetRank, err := common.FormIntOptional(c, "target_rank")
	if err != nil {
		c.HTML(http.StatusBadRequest, "tracker_error.html", gin.H{"error": err.Error()})
		return
	}

	keyword := models.Keyword{
		ProjectID:    project.ID,
		Keyword:      c.PostForm("keyword"),
		SearchVolume: searchVolume,
		Difficulty:   c.PostForm("difficulty"),
		CurrentRank:  currentRank,
		TargetRank:   targetRank,
		CreatedAt:    time.Now(),
	}

	if err := t.db.Create(&keyword).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to add keyword",
		})
		return
	}

	cache.ClearProject(project.ID)

	c.Redirect(http.StatusFound, "/tracker/project/"+strconv.Itoa(project.ID)+"/keywords")
}

func (t *TrackerModule) checklist(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	checklist, err := t.getOrCreateChecklist(project.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to load checklist",
		})
		return
	}

	c.HTML(http.StatusOK, "tracker_checklist.html", gin.H{
		"project":    project,
		"checklist":  checklist,
		"completion": seo.ChecklistCompletion(checklist),
	})
}

// updateChecklist saves the 14 flags and mirrors the completion percentage
// onto the project's seo_score in the same transaction, so project lists
// reflect checklist state.
func (t *TrackerModule) updateChecklist(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	checklist, err := t.getOrCreateChecklist(project.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to load checklist",
		})
		return
	}

	checked := func(field string) bool { return c.PostForm(field) == "on" }

	checklist.DomainSelected = checked("domain_selected")
	checklist.HostingSetup = checked("hosting_setup")
	checklist.SSLInstalled = checked("ssl_installed")
	checklist.CorePagesCreated = checked("core_pages_created")
	checklist.KeywordResearch = checked("keyword_research_done")
	checklist.ContentOptimized = checked("content_optimized")
	checklist.MetaTagsSet = checked("meta_tags_set")
	checklist.ImagesOptimized = checked("images_optimized")
	checklist.SiteSpeedOptimized = checked("site_speed_optimized")
	checklist.MobileFriendly = checked("mobile_friendly")
	checklist.AnalyticsSetup = checked("analytics_setup")
	checklist.SearchConsoleSetup = checked("search_console_setup")
	checklist.SitemapSubmitted = checked("sitemap_submitted")
	checklist.BacklinksStarted = checked("backlinks_started")
	checklist.UpdatedAt = time.Now()

	err = t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(checklist).Error; err != nil {
			return err
		}
		project.SeoScore = seo.ChecklistCompletion(checklist)
		project.UpdatedAt = time.Now()
		return tx.Save(project).Error
	})
	if err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to update checklist",
		})
		return
	}

	cache.ClearProject(project.ID)

	c.Redirect(http.StatusFound, "/tracker/project/"+strconv.Itoa(project.ID)+"/checklist")
}

func (t *TrackerModule) listBacklinks(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	var backlinks []models.Backlink
	t.db.Where("project_id = ?", project.ID).Find(&backlinks)

	c.HTML(http.StatusOK, "tracker_backlinks.html", gin.H{
		"project":   project,
		"backlinks": backlinks,
	})
}

func (t *TrackerModule) addBacklink(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	domainAuthority, err := common.FormIntOptional(c, "domain_authority")
	if err != nil {
		c.HTML(http.StatusBadRequest, "tracker_error.html", gin.H{"error": err.Error()})
		return
	}

	status := c.PostForm("status")
	if status == "" {
		status = "pending"
	}

	backlink := models.Backlink{
		ProjectID:       project.ID,
		SourceURL:       c.PostForm("source_url"),
		TargetURL:       c.PostForm("target_url"),
		AnchorText:      c.PostForm("anchor_text"),
		DomainAuthority: domainAuthority,
		Status:          status,
		CreatedAt:       time.Now(),
	}

	if err := t.db.Create(&backlink).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "tracker_error.html", gin.H{
			"error": "Failed to add backlink",
		})
		return
	}

	cache.ClearProject(project.ID)

	c.Redirect(http.StatusFound, "/tracker/project/"+strconv.Itoa(project.ID)+"/backlinks")
}

// speedTest is a placeholder page; no external speed API is called.
func (t *TrackerModule) speedTest(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "tracker_speed_test.html", gin.H{
		"project": project,
	})
}

// googleIntegration is a placeholder page; no Google API is called.
func (t *TrackerModule) googleIntegration(c *gin.Context) {
	project, ok := t.loadProject(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "tracker_google_integration.html", gin.H{
		"project": project,
	})
}

// apiSeoScore grades a title/meta/content triad and returns the live score.
// Stateless: nothing is persisted.
func (t *TrackerModule) apiSeoScore(c *gin.Context) {
	var request struct {
		Title           string `json:"title"`
		MetaDescription string `json:"meta_description"`
		Content         string `json:"content"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	c.JSON(http.StatusOK, seo.ScoreContent(request.Title, request.MetaDescription, request.Content))
}
