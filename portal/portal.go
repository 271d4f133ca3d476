package portal

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"seodesk/auth"
	"seodesk/common"
	"seodesk/metrics"
	"seodesk/models"
)

// PortalModule serves the read-only client dashboard. Any authenticated user
// may enter, but everything shown is scoped to their own client profile.
type PortalModule struct {
	db      *gorm.DB
	auth    *auth.AuthModule
	metrics *metrics.MetricsModule
}

func NewPortalModule(db *gorm.DB, authModule *auth.AuthModule, metricsModule *metrics.MetricsModule) *PortalModule {
	return &PortalModule{
		db:      db,
		auth:    authModule,
		metrics: metricsModule,
	}
}

func (p *PortalModule) RegisterRoutes(router *gin.Engine) {
	portalGroup := router.Group("/portal")
	portalGroup.Use(p.auth.RequireAuth)
	{
		portalGroup.GET("/", p.dashboard)
		portalGroup.GET("", p.dashboard)
		portalGroup.GET("/invoice/:id", p.invoiceDetail)
	}
}

func (p *PortalModule) loadOwnClient(c *gin.Context) (*models.Client, bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return nil, false
	}

	var client models.Client
	if err := p.db.Where("user_id = ?", user.ID).First(&client).Error; err != nil {
		c.HTML(http.StatusNotFound, "portal_error.html", gin.H{
			"error": "No client profile is linked to this account",
		})
		return nil, false
	}
	return &client, true
}

type deliverableView struct {
	models.Deliverable
	NotesHTML template.HTML
}

func (p *PortalModule) dashboard(c *gin.Context) {
	client, ok := p.loadOwnClient(c)
	if !ok {
		return
	}

	user, _ := auth.CurrentUser(c)

	var pkg models.ServicePackage
	p.db.First(&pkg, client.PackageID)

	var deliverables []models.Deliverable
	p.db.Where("client_id = ?", client.ID).Order("created_at DESC").Find(&deliverables)

	views := make([]deliverableView, len(deliverables))
	for i, d := range deliverables {
		views[i] = deliverableView{
			Deliverable: d,
			NotesHTML:   common.RenderMarkdown(d.Notes),
		}
	}

	var invoices []models.Invoice
	p.db.Where("client_id = ?", client.ID).Order("issued_at DESC").Find(&invoices)

	var keywords []models.TrackedKeyword
	p.db.Where("client_id = ?", client.ID).Order("created_at DESC").Find(&keywords)

	trafficChart := metrics.NormalizeChart(p.metrics.TrafficByDay(client.ID, 30))

	c.HTML(http.StatusOK, "portal_dashboard.html", gin.H{
		"user":         user,
		"client":       client,
		"package":      pkg,
		"deliverables": views,
		"invoices":     invoices,
		"keywords":     keywords,
		"latestMetric": p.metrics.Latest(client.ID),
		"trafficChart": trafficChart,
	})
}

func (p *PortalModule) invoiceDetail(c *gin.Context) {
	client, ok := p.loadOwnClient(c)
	if !ok {
		return
	}

	// Scoped by client_id so one client can never read another's invoice.
	var invoice models.Invoice
	if err := p.db.Where("id = ? AND client_id = ?", c.Param("id"), client.ID).First(&invoice).Error; err != nil {
		c.HTML(http.StatusNotFound, "portal_error.html", gin.H{
			"error": "Invoice not found",
		})
		return
	}

	var payments []models.Payment
	p.db.Where("invoice_id = ?", invoice.ID).Order("paid_at ASC").Find(&payments)

	c.HTML(http.StatusOK, "portal_invoice.html", gin.H{
		"client":   client,
		"invoice":  invoice,
		"payments": payments,
	})
}
