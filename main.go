package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"seodesk/admin"
	"seodesk/auth"
	"seodesk/cache"
	"seodesk/common"
	"seodesk/database"
	"seodesk/metrics"
	"seodesk/portal"
	"seodesk/tracker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if err := database.SeedDefaults(db); err != nil {
		log.Fatal("Failed to seed defaults:", err)
	}

	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})

	router.Use(sessions.Sessions("seodesk-session", store))
	router.Use(cache.Middleware(10 * time.Minute))

	router.LoadHTMLGlob("*/views/*.html")
	router.Static("/public", "./public")

	authModule := auth.NewAuthModule(db)
	authModule.RegisterRoutes(router)

	metricsModule := metrics.NewMetricsModule(db)

	adminModule := admin.NewAdminModule(db, authModule, metricsModule)
	adminModule.RegisterRoutes(router)

	portalModule := portal.NewPortalModule(db, authModule, metricsModule)
	portalModule.RegisterRoutes(router)

	trackerModule := tracker.NewTrackerModule(db)
	trackerModule.RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		session := sessions.Default(c)
		flashes := session.Flashes()
		session.Save()

		c.HTML(200, "home.html", gin.H{
			"title":    "SEODesk - SEO Agency Platform",
			"warnings": flashes,
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
