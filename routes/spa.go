package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterSPA serves the built storefront from dist. Unknown paths outside
// /api fall back to index.html so client-side routes resolve.
func RegisterSPA(r *gin.Engine, dist string) {
	index := filepath.Join(dist, "index.html")

	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/api" {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}

		if dist != "" {
			candidate := filepath.Join(dist, filepath.FromSlash(filepath.Clean("/"+path)))
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				c.File(candidate)
				return
			}
			if _, err := os.Stat(index); err == nil {
				c.File(index)
				return
			}
		}
		c.Status(http.StatusNotFound)
	})
}
