package tracker

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"seodesk/cache"
	"seodesk/models"
	"seodesk/seo"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(
		&models.Project{}, &models.Page{}, &models.Keyword{},
		&models.SEOChecklist{}, &models.Backlink{},
	)
	return db
}

func setupTestRouter(trackerModule *TrackerModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("").Parse(
		`{{define "tracker_error.html"}}{{.error}}{{end}}` +
			`{{define "tracker_index.html"}}index{{end}}` +
			`{{define "tracker_checklist.html"}}{{.completion}}{{end}}` +
			`{{define "tracker_edit_page.html"}}edit{{end}}`)))
	trackerModule.RegisterRoutes(router)
	return router
}

func createTestProject(db *gorm.DB) *models.Project {
	project := &models.Project{
		Name:   "Test Project",
		Niche:  "plumbing",
		Domain: "example.com",
	}
	db.Create(project)
	return project
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateProject_AlsoCreatesChecklist(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	form := url.Values{}
	form.Set("name", "New Site")
	form.Set("niche", "dentist")

	w := postForm(router, "/tracker/project/new", form)
	assert.Equal(t, http.StatusFound, w.Code)

	var project models.Project
	assert.NoError(t, db.Where("name = ?", "New Site").First(&project).Error)

	var checklistCount int64
	db.Model(&models.SEOChecklist{}).Where("project_id = ?", project.ID).Count(&checklistCount)
	assert.Equal(t, int64(1), checklistCount)
}

func TestGetOrCreateChecklist_SingleRowPerProject(t *testing.T) {
	db := setupTestDB()
	trackerModule := NewTrackerModule(db)

	project := createTestProject(db)

	first, err := trackerModule.getOrCreateChecklist(project.ID)
	assert.NoError(t, err)

	second, err := trackerModule.getOrCreateChecklist(project.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.SEOChecklist{}).Where("project_id = ?", project.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateChecklist_MirrorsCompletionOntoProject(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	project := createTestProject(db)

	// 5 of 14 flags on -> 36%.
	form := url.Values{}
	for _, field := range []string{
		"domain_selected", "hosting_setup", "ssl_installed",
		"core_pages_created", "keyword_research_done",
	} {
		form.Set(field, "on")
	}

	w := postForm(router, "/tracker/project/"+strconv.Itoa(project.ID)+"/checklist", form)
	assert.Equal(t, http.StatusFound, w.Code)

	var updatedProject models.Project
	db.First(&updatedProject, project.ID)
	assert.Equal(t, 36, updatedProject.SeoScore)

	var checklist models.SEOChecklist
	db.Where("project_id = ?", project.ID).First(&checklist)
	assert.True(t, checklist.SSLInstalled)
	assert.False(t, checklist.BacklinksStarted)
	assert.Equal(t, 36, seo.ChecklistCompletion(&checklist))
}

func TestUpdateChecklist_UncheckedBoxesClearFlags(t *testing.T) {
	db := setupTestDB()
	trackerModule := NewTrackerModule(db)
	router := setupTestRouter(trackerModule)

	project := createTestProject(db)
	checklist, _ := trackerModule.getOrCreateChecklist(project.ID)
	checklist.DomainSelected = true
	checklist.MobileFriendly = true
	db.Save(checklist)

	// An unchecked checkbox is simply absent from the form.
	w := postForm(router, "/tracker/project/"+strconv.Itoa(project.ID)+"/checklist", url.Values{})
	assert.Equal(t, http.StatusFound, w.Code)

	var reloaded models.SEOChecklist
	db.Where("project_id = ?", project.ID).First(&reloaded)
	assert.False(t, reloaded.DomainSelected)
	assert.False(t, reloaded.MobileFriendly)

	var updatedProject models.Project
	db.First(&updatedProject, project.ID)
	assert.Equal(t, 0, updatedProject.SeoScore)
}

func TestUpdatePage_RecomputesScore(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	project := createTestProject(db)
	page := models.Page{ProjectID: project.ID, Title: "Home"}
	db.Create(&page)

	form := url.Values{}
	form.Set("title", "Home")
	form.Set("slug", "/services/plumbing")
	form.Set("meta_title", strings.Repeat("a", 45))
	form.Set("meta_description", strings.Repeat("b", 140))
	form.Set("h1_tag", "Plumbing Services")
	form.Set("content", strings.Repeat("c", 350))

	path := "/tracker/project/" + strconv.Itoa(project.ID) + "/page/" + strconv.Itoa(page.ID) + "/edit"
	w := postForm(router, path, form)
	assert.Equal(t, http.StatusFound, w.Code)

	var updated models.Page
	db.First(&updated, page.ID)
	assert.Equal(t, 100, updated.SeoScore)
	assert.False(t, updated.UpdatedAt.IsZero())
}

func TestUpdatePage_ScoreDropsWhenFieldsRemoved(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	project := createTestProject(db)
	page := models.Page{
		ProjectID: project.ID,
		Title:     "Home",
		MetaTitle: strings.Repeat("a", 45),
		H1Tag:     "Hello",
		SeoScore:  40,
	}
	db.Create(&page)

	// Form clears everything but the h1.
	form := url.Values{}
	form.Set("title", "Home")
	form.Set("h1_tag", "Hello")

	path := "/tracker/project/" + strconv.Itoa(project.ID) + "/page/" + strconv.Itoa(page.ID) + "/edit"
	w := postForm(router, path, form)
	assert.Equal(t, http.StatusFound, w.Code)

	var updated models.Page
	db.First(&updated, page.ID)
	assert.Equal(t, 20, updated.SeoScore)
}

func TestUpdatePage_UnknownPage(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	project := createTestProject(db)

	path := "/tracker/project/" + strconv.Itoa(project.ID) + "/page/999/edit"
	w := postForm(router, path, url.Values{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectDetail_UnknownProject(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	req, _ := http.NewRequest("GET", "/tracker/project/999/checklist", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddKeyword_RejectsMalformedNumber(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	project := createTestProject(db)

	form := url.Values{}
	form.Set("keyword", "emergency plumber")
	form.Set("search_volume", "lots")

	w := postForm(router, "/tracker/project/"+strconv.Itoa(project.ID)+"/keyword/add", form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "search_volume")

	var count int64
	db.Model(&models.Keyword{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAddKeyword_OptionalFieldsMayBeEmpty(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	project := createTestProject(db)

	form := url.Values{}
	form.Set("keyword", "emergency plumber")
	form.Set("difficulty", "low")

	w := postForm(router, "/tracker/project/"+strconv.Itoa(project.ID)+"/keyword/add", form)
	assert.Equal(t, http.StatusFound, w.Code)

	var keyword models.Keyword
	db.Where("project_id = ?", project.ID).First(&keyword)
	assert.Equal(t, "emergency plumber", keyword.Keyword)
	assert.Nil(t, keyword.SearchVolume)
	assert.Nil(t, keyword.CurrentRank)
}

func TestAddBacklink_DefaultsToPending(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	project := createTestProject(db)

	form := url.Values{}
	form.Set("source_url", "https://blog.example.org/post")
	form.Set("target_url", "https://example.com/")
	form.Set("anchor_text", "best plumber")

	w := postForm(router, "/tracker/project/"+strconv.Itoa(project.ID)+"/backlink/add", form)
	assert.Equal(t, http.StatusFound, w.Code)

	var backlink models.Backlink
	db.Where("project_id = ?", project.ID).First(&backlink)
	assert.Equal(t, "pending", backlink.Status)
	assert.Nil(t, backlink.DomainAuthority)
}

// setupCachingRouter wires the page cache middleware in front of the tracker
// routes, with a detail template that renders the keyword list.
func setupCachingRouter(trackerModule *TrackerModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(cache.Middleware(10 * time.Minute))
	router.SetHTMLTemplate(template.Must(template.New("").Parse(
		`{{define "tracker_project_detail.html"}}keywords:{{range .keywords}} {{.Keyword}}{{end}}{{end}}`)))
	trackerModule.RegisterRoutes(router)
	return router
}

func getPage(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddKeyword_InvalidatesCachedProjectPage(t *testing.T) {
	wd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(wd)

	db := setupTestDB()
	router := setupCachingRouter(NewTrackerModule(db))

	project := createTestProject(db)
	detailPath := "/tracker/project/" + strconv.Itoa(project.ID)

	first := getPage(router, detailPath)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	form := url.Values{}
	form.Set("keyword", "emergency plumber")
	w := postForm(router, detailPath+"/keyword/add", form)
	assert.Equal(t, http.StatusFound, w.Code)

	second := getPage(router, detailPath)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "emergency plumber")
}

func TestAddBacklink_InvalidatesCachedProjectPage(t *testing.T) {
	wd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(wd)

	db := setupTestDB()
	router := setupCachingRouter(NewTrackerModule(db))

	project := createTestProject(db)
	detailPath := "/tracker/project/" + strconv.Itoa(project.ID)

	getPage(router, detailPath)
	_, cached := cache.ReadProject(project.ID, 10*time.Minute)
	assert.True(t, cached)

	form := url.Values{}
	form.Set("source_url", "https://blog.example.org/post")
	form.Set("target_url", "https://example.com/")
	w := postForm(router, detailPath+"/backlink/add", form)
	assert.Equal(t, http.StatusFound, w.Code)

	_, cached = cache.ReadProject(project.ID, 10*time.Minute)
	assert.False(t, cached)
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestApiSeoScore_EmptyFields(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	w := postJSON(router, "/tracker/api/seo-score", map[string]string{
		"title":            "",
		"meta_description": "",
		"content":          "",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var result seo.Result
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 0, result.OverallScore)
	assert.Equal(t, []string{
		"Add a title tag",
		"Add a meta description",
		"Add page content",
	}, result.Suggestions)
}

func TestApiSeoScore_AllInRange(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	w := postJSON(router, "/tracker/api/seo-score", map[string]string{
		"title":            strings.Repeat("A", 45),
		"meta_description": strings.Repeat("B", 140),
		"content":          strings.Repeat("C", 350),
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var result seo.Result
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 100, result.TitleScore)
	assert.Equal(t, 100, result.MetaScore)
	assert.Equal(t, 100, result.ContentScore)
	assert.Equal(t, 100, result.OverallScore)
	assert.Empty(t, result.Suggestions)
}

func TestApiSeoScore_MalformedBody(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewTrackerModule(db))

	req, _ := http.NewRequest("POST", "/tracker/api/seo-score", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
