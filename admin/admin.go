package admin

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"seodesk/auth"
	"seodesk/common"
	emailpkg "seodesk/email"
	"seodesk/metrics"
	"seodesk/models"
)

type AdminModule struct {
	db      *gorm.DB
	auth    *auth.AuthModule
	metrics *metrics.MetricsModule
	email   *emailpkg.EmailService
}

func NewAdminModule(db *gorm.DB, authModule *auth.AuthModule, metricsModule *metrics.MetricsModule) *AdminModule {
	return &AdminModule{
		db:      db,
		auth:    authModule,
		metrics: metricsModule,
		email:   emailpkg.NewEmailService(),
	}
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	adminGroup := router.Group("/admin")
	adminGroup.Use(a.auth.RequireAdmin)
	{
		adminGroup.GET("/", a.dashboard)
		adminGroup.GET("", a.dashboard)

		adminGroup.GET("/clients", a.listClients)
		adminGroup.GET("/client/new", a.newClient)
		adminGroup.POST("/client/new", a.createClient)
		adminGroup.GET("/client/:id", a.clientDetail)
		adminGroup.POST("/client/:id", a.updateClient)
		adminGroup.DELETE("/client/:id", a.deleteClient)

		adminGroup.GET("/packages", a.listPackages)
		adminGroup.POST("/packages", a.createPackage)
		adminGroup.POST("/package/:id", a.updatePackage)

		adminGroup.POST("/client/:id/deliverable", a.addDeliverable)
		adminGroup.POST("/deliverable/:id/complete", a.completeDeliverable)

		adminGroup.POST("/client/:id/invoice", a.createInvoice)
		adminGroup.GET("/invoice/:id", a.invoiceDetail)
		adminGroup.POST("/invoice/:id/payment", a.recordPaymentPost)

		adminGroup.POST("/client/:id/keyword", a.addTrackedKeyword)
		adminGroup.POST("/keyword/:id/rank", a.updateKeywordRank)

		adminGroup.POST("/client/:id/metric", a.recordMetric)
	}
}

func (a *AdminModule) dashboard(c *gin.Context) {
	var clientCount, activeCount, pendingDeliverables int64
	a.db.Model(&models.Client{}).Count(&clientCount)
	a.db.Model(&models.Client{}).Where("status = ?", "active").Count(&activeCount)
	a.db.Model(&models.Deliverable{}).Where("status = ?", "pending").Count(&pendingDeliverables)

	var unpaidCents int64
	a.db.Model(&models.Invoice{}).
		Where("status = ?", "unpaid").
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&unpaidCents)

	var recentInvoices []models.Invoice
	a.db.Order("issued_at DESC").Limit(10).Find(&recentInvoices)

	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"clientCount":         clientCount,
		"activeCount":         activeCount,
		"pendingDeliverables": pendingDeliverables,
		"unpaidCents":         unpaidCents,
		"recentInvoices":      recentInvoices,
	})
}

func (a *AdminModule) listClients(c *gin.Context) {
	var clients []models.Client
	if err := a.db.Order("created_at DESC").Find(&clients).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to load clients",
		})
		return
	}

	users := map[int]models.User{}
	packages := map[int]models.ServicePackage{}
	for _, client := range clients {
		var user models.User
		if err := a.db.First(&user, client.UserID).Error; err == nil {
			users[client.ID] = user
		}
		var pkg models.ServicePackage
		if err := a.db.First(&pkg, client.PackageID).Error; err == nil {
			packages[client.ID] = pkg
		}
	}

	c.HTML(http.StatusOK, "admin_list_clients.html", gin.H{
		"clients":  clients,
		"users":    users,
		"packages": packages,
	})
}

func (a *AdminModule) newClient(c *gin.Context) {
	var packages []models.ServicePackage
	a.db.Find(&packages)

	c.HTML(http.StatusOK, "admin_new_client.html", gin.H{
		"packages": packages,
	})
}

// createClient creates the backing user and the client profile in one
// transaction so a failed profile insert never leaves an orphan login.
func (a *AdminModule) createClient(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	name := c.PostForm("name")
	company := c.PostForm("company")
	website := c.PostForm("website")

	formData := gin.H{
		"email":   email,
		"name":    name,
		"company": company,
		"website": website,
	}

	packageID, err := common.FormInt(c, "package_id")
	if err != nil {
		formData["error"] = err.Error()
		c.HTML(http.StatusBadRequest, "admin_new_client.html", formData)
		return
	}

	var existingUser models.User
	if err := a.db.Where("email = ?", email).First(&existingUser).Error; err == nil {
		formData["error"] = "This email is already registered"
		c.HTML(http.StatusBadRequest, "admin_new_client.html", formData)
		return
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		formData["error"] = "Failed to create account"
		c.HTML(http.StatusInternalServerError, "admin_new_client.html", formData)
		return
	}

	var client models.Client
	err = a.db.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Email:        email,
			PasswordHash: passwordHash,
			Name:         name,
			Role:         models.RoleClient,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		client = models.Client{
			UserID:    user.ID,
			PackageID: packageID,
			Company:   company,
			Website:   website,
			Status:    "active",
		}
		return tx.Create(&client).Error
	})
	if err != nil {
		formData["error"] = "Failed to create client"
		c.HTML(http.StatusInternalServerError, "admin_new_client.html", formData)
		return
	}

	c.Redirect(http.StatusFound, "/admin/client/"+strconv.Itoa(client.ID))
}

func (a *AdminModule) loadClient(c *gin.Context) (*models.Client, bool) {
	var client models.Client
	if err := a.db.First(&client, c.Param("id")).Error; err != nil {
		c.HTML(http.StatusNotFound, "admin_error.html", gin.H{
			"error": "Client not found",
		})
		return nil, false
	}
	return &client, true
}

func (a *AdminModule) clientDetail(c *gin.Context) {
	client, ok := a.loadClient(c)
	if !ok {
		return
	}

	var user models.User
	a.db.First(&user, client.UserID)

	var pkg models.ServicePackage
	a.db.First(&pkg, client.PackageID)

	var deliverables []models.Deliverable
	a.db.Where("client_id = ?", client.ID).Order("created_at DESC").Find(&deliverables)

	var invoices []models.Invoice
	a.db.Where("client_id = ?", client.ID).Order("issued_at DESC").Find(&invoices)

	var keywords []models.TrackedKeyword
	a.db.Where("client_id = ?", client.ID).Order("created_at DESC").Find(&keywords)

	var packages []models.ServicePackage
	a.db.Find(&packages)

	trafficChart := metrics.NormalizeChart(a.metrics.TrafficByDay(client.ID, 30))

	c.HTML(http.StatusOK, "admin_client_detail.html", gin.H{
		"client":       client,
		"user":         user,
		"package":      pkg,
		"packages":     packages,
		"deliverables": deliverables,
		"invoices":     invoices,
		"keywords":     keywords,
		"latestMetric": a.metrics.Latest(client.ID),
		"trafficChart": trafficChart,
	})
}

func (a *AdminModule) updateClient(c *gin.Context) {
	client, ok := a.loadClient(c)
	if !ok {
		return
	}

	packageID, err := common.FormInt(c, "package_id")
	if err != nil {
		c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{
			"error": err.Error(),
		})
		return
	}

	client.Company = c.PostForm("company")
	client.Website = c.PostForm("website")
	client.Status = c.PostForm("status")
	client.PackageID = packageID

	if err := a.db.Save(client).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to update client",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/client/"+strconv.Itoa(client.ID))
}

func (a *AdminModule) deleteClient(c *gin.Context) {
	var client models.Client
	if err := a.db.First(&client, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	if err := a.deleteClientAccount(client.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client account deleted"})
}

// deleteClientAccount removes a user and everything hanging off its client
// profile in one transaction. Dependents go first, in a fixed order, so a
// partial failure rolls back instead of leaving orphans: payments, invoices,
// deliverables, metrics, tracked keywords, client, user.
func (a *AdminModule) deleteClientAccount(userID int) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		err := tx.Where("user_id = ?", userID).First(&client).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}

		if err == nil {
			var invoiceIDs []int
			if err := tx.Model(&models.Invoice{}).
				Where("client_id = ?", client.ID).
				Pluck("id", &invoiceIDs).Error; err != nil {
				return err
			}

			if len(invoiceIDs) > 0 {
				if err := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&models.Payment{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("client_id = ?", client.ID).Delete(&models.Invoice{}).Error; err != nil {
				return err
			}
			if err := tx.Where("client_id = ?", client.ID).Delete(&models.Deliverable{}).Error; err != nil {
				return err
			}
			if err := tx.Where("client_id = ?", client.ID).Delete(&models.SEOMetric{}).Error; err != nil {
				return err
			}
			if err := tx.Where("client_id = ?", client.ID).Delete(&models.TrackedKeyword{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Client{}, client.ID).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.User{}, userID).Error
	})
}

func (a *AdminModule) listPackages(c *gin.Context) {
	var packages []models.ServicePackage
	if err := a.db.Order("price_cents ASC").Find(&packages).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to load packages",
		})
		return
	}

	c.HTML(http.StatusOK, "admin_packages.html", gin.H{
		"packages": packages,
	})
}

func (a *AdminModule) createPackage(c *gin.Context) {
	pkg, ok := a.packageFromForm(c)
	if !ok {
		return
	}

	if err := a.db.Create(pkg).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to create package",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/packages")
}

func (a *AdminModule) updatePackage(c *gin.Context) {
	var existing models.ServicePackage
	if err := a.db.First(&existing, c.Param("id")).Error; err != nil {
		c.HTML(http.StatusNotFound, "admin_error.html", gin.H{
			"error": "Package not found",
		})
		return
	}

	pkg, ok := a.packageFromForm(c)
	if !ok {
		return
	}

	existing.Name = pkg.Name
	existing.Description = pkg.Description
	existing.PriceCents = pkg.PriceCents
	existing.KeywordLimit = pkg.KeywordLimit
	existing.PageLimit = pkg.PageLimit

	if err := a.db.Save(&existing).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to update package",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/packages")
}

func (a *AdminModule) packageFromForm(c *gin.Context) (*models.ServicePackage, bool) {
	priceCents, err := common.FormInt(c, "price_cents")
	if err == nil {
		var keywordLimit, pageLimit int
		if keywordLimit, err = common.FormInt(c, "keyword_limit"); err == nil {
			if pageLimit, err = common.FormInt(c, "page_limit"); err == nil {
				return &models.ServicePackage{
					Name:         c.PostForm("name"),
					Description:  c.PostForm("description"),
					PriceCents:   priceCents,
					KeywordLimit: keywordLimit,
					PageLimit:    pageLimit,
				}, true
			}
		}
	}

	c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{
		"error": err.Error(),
	})
	return nil, false
}

func (a *AdminModule) addDeliverable(c *gin.Context) {
	client, ok := a.loadClient(c)
	if !ok {
		return
	}

	deliverable := models.Deliverable{
		ClientID: client.ID,
		Title:    c.PostForm("title"),
		Notes:    c.PostForm("notes"),
		Status:   "pending",
	}

	if due := c.PostForm("due_date"); due != "" {
		parsed, err := time.Parse("2006-01-02", due)
		if err != nil {
			c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{
				"error": "due_date must be formatted YYYY-MM-DD",
			})
			return
		}
		deliverable.DueDate = &parsed
	}

	if err := a.db.Create(&deliverable).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to create deliverable",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/client/"+strconv.Itoa(client.ID))
}

func (a *AdminModule) completeDeliverable(c *gin.Context) {
	var deliverable models.Deliverable
	if err := a.db.First(&deliverable, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deliverable not found"})
		return
	}

	now := time.Now()
	deliverable.Status = "completed"
	deliverable.CompletedAt = &now

	if err := a.db.Save(&deliverable).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update deliverable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": deliverable.Status})
}

func (a *AdminModule) createInvoice(c *gin.Context) {
	client, ok := a.loadClient(c)
	if !ok {
		return
	}

	amountCents, err := common.FormInt(c, "amount_cents")
	if err != nil {
		c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{
			"error": err.Error(),
		})
		return
	}

	dueAt, err := time.Parse("2006-01-02", c.PostForm("due_at"))
	if err != nil {
		c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{
			"error": "due_at must be formatted YYYY-MM-DD",
		})
		return
	}

	invoice := models.Invoice{
		ClientID:    client.ID,
		Number:      "INV-" + uuid.NewString()[:8],
		AmountCents: amountCents,
		Status:      "unpaid",
		IssuedAt:    time.Now(),
		DueAt:       dueAt,
	}

	if err := a.db.Create(&invoice).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to create invoice",
		})
		return
	}

	// Notify the client by email; a failed send never fails the request.
	var user models.User
	if err := a.db.First(&user, client.UserID).Error; err == nil {
		if err := a.email.SendInvoiceEmail(user.Email, invoice.Number, invoice.AmountCents, invoice.DueAt); err != nil {
			log.Printf("failed to send invoice email to %s: %v", user.Email, err)
		}
	}

	c.Redirect(http.StatusFound, "/admin/invoice/"+strconv.Itoa(invoice.ID))
}

func (a *AdminModule) invoiceDetail(c *gin.Context) {
	var invoice models.Invoice
	if err := a.db.First(&invoice, c.Param("id")).Error; err != nil {
		c.HTML(http.StatusNotFound, "admin_error.html", gin.H{
			"error": "Invoice not found",
		})
		return
	}

	var payments []models.Payment
	a.db.Where("invoice_id = ?", invoice.ID).Order("paid_at ASC").Find(&payments)

	var client models.Client
	a.db.First(&client, invoice.ClientID)

	c.HTML(http.StatusOK, "admin_invoice_detail.html", gin.H{
		"invoice":  invoice,
		"payments": payments,
		"client":   client,
	})
}

func (a *AdminModule) recordPaymentPost(c *gin.Context) {
	invoiceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice id"})
		return
	}

	amountCents, err := common.FormInt(c, "amount_cents")
	if err != nil {
		c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{
			"error": err.Error(),
		})
		return
	}

	if err := a.recordPayment(invoiceID, amountCents, c.PostForm("method"), c.PostForm("reference")); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.HTML(http.StatusNotFound, "admin_error.html", gin.H{
				"error": "Invoice not found",
			})
			return
		}
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to record payment",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/invoice/"+strconv.Itoa(invoiceID))
}

// recordPayment inserts the payment and flips the invoice to paid in the
// same transaction. This is the only path that changes invoice status.
func (a *AdminModule) recordPayment(invoiceID, amountCents int, method, reference string) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, invoiceID).Error; err != nil {
			return err
		}

		payment := models.Payment{
			InvoiceID:   invoice.ID,
			AmountCents: amountCents,
			Method:      method,
			Reference:   reference,
			PaidAt:      time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		invoice.Status = "paid"
		return tx.Save(&invoice).Error
	})
}

func (a *AdminModule) addTrackedKeyword(c *gin.Context) {
	client, ok := a.loadClient(c)
	if !ok {
		return
	}

	searchVolume, err := common.FormIntOptional(c, "search_volume")
	if err != nil {
		c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{"error": err.Error()})
		return
	}
	currentRank, err := common.FormIntOptional(c, "current_rank")
	if err != nil {
		c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{"error": err.Error()})
		return
	}
	targetRank, err := common.FormIntOptional(c, "target_rank")
	if err != nil {
		c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{"error": err.Error()})
		return
	}

	keyword := models.TrackedKeyword{
		ClientID:     client.ID,
		Keyword:      c.PostForm("keyword"),
		SearchVolume: searchVolume,
		CurrentRank:  currentRank,
		TargetRank:   targetRank,
	}

	if err := a.db.Create(&keyword).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to add keyword",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/client/"+strconv.Itoa(client.ID))
}

func (a *AdminModule) updateKeywordRank(c *gin.Context) {
	var keyword models.TrackedKeyword
	if err := a.db.First(&keyword, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyword not found"})
		return
	}

	rank, err := common.FormInt(c, "current_rank")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	keyword.CurrentRank = &rank
	if err := a.db.Save(&keyword).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update keyword"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "current_rank": rank})
}

func (a *AdminModule) recordMetric(c *gin.Context) {
	client, ok := a.loadClient(c)
	if !ok {
		return
	}

	visits, err := common.FormInt(c, "organic_visits")
	if err != nil {
		c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{"error": err.Error()})
		return
	}
	backlinks, err := common.FormInt(c, "backlink_count")
	if err != nil {
		c.HTML(http.StatusBadRequest, "admin_error.html", gin.H{"error": err.Error()})
		return
	}

	if _, err := a.metrics.Record(client.ID, visits, backlinks, nil); err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Failed to record metric",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/client/"+strconv.Itoa(client.ID))
}
