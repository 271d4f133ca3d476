package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"seodesk/models"
)

const currentUserKey = "current_user"

type AuthModule struct {
	db *gorm.DB
}

func NewAuthModule(db *gorm.DB) *AuthModule {
	return &AuthModule{db: db}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginPost)
	router.GET("/logout", a.logout)
}

func (a *AuthModule) loginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusFound, roleHome(session.Get("role")))
		return
	}

	c.HTML(http.StatusOK, "auth_login.html", gin.H{})
}

func (a *AuthModule) loginPost(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		c.HTML(http.StatusUnauthorized, "auth_login.html", gin.H{
			"error": "Invalid email or password",
			"email": email,
		})
		return
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		c.HTML(http.StatusUnauthorized, "auth_login.html", gin.H{
			"error": "Invalid email or password",
			"email": email,
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("role", user.Role)
	session.Set("name", user.Name)
	session.Save()

	c.Redirect(http.StatusFound, roleHome(user.Role))
}

// logout always succeeds, even without an active session.
func (a *AuthModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/login")
}

// RequireAuth redirects anonymous callers to the login page. On success the
// loaded user is placed in the request context; no role is checked.
func (a *AuthModule) RequireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		session.Clear()
		session.Save()
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set(currentUserKey, &user)
	c.Next()
}

// RequireAdmin distinguishes "not logged in" (redirect to login) from
// "logged in but unauthorized" (flash warning, redirect to the public index).
func (a *AuthModule) RequireAdmin(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		session.Clear()
		session.Save()
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	if user.Role != models.RoleAdmin {
		session.AddFlash("You do not have permission to access the admin area")
		session.Save()
		c.Redirect(http.StatusFound, "/")
		c.Abort()
		return
	}

	c.Set(currentUserKey, &user)
	c.Next()
}

// CurrentUser returns the user loaded by RequireAuth/RequireAdmin.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func roleHome(role interface{}) string {
	if role == models.RoleAdmin {
		return "/admin"
	}
	return "/portal"
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
