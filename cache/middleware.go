package cache

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware caches rendered tracker project detail pages on disk. Only
// GET /tracker/project/:id is cached; every other path passes through.
func Middleware(maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Next()
			return
		}

		projectID, ok := projectIDFromPath(c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		if cached, found := ReadProject(projectID, maxAge); found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() == http.StatusOK &&
			strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/html") {
			WriteProject(projectID, writer.body.String())
		}
	}
}

// projectIDFromPath matches exactly /tracker/project/<id> (the detail page).
// Subpaths like /tracker/project/1/pages are never cached.
func projectIDFromPath(path string) (int, bool) {
	const prefix = "/tracker/project/"
	if !strings.HasPrefix(path, prefix) {
		return 0, false
	}

	rest := strings.TrimSuffix(path[len(prefix):], "/")
	if rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}

	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}
