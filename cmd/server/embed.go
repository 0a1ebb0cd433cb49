//go:build embed
// +build embed

package main

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed web/dist
var webDist embed.FS

// setupStaticFiles serves the prediction page from the embedded assets
func setupStaticFiles(router *gin.Engine) {
	log.Println("📦 Using embedded prediction page")

	// Get the sub-filesystem for dist directory
	distFS, err := fs.Sub(webDist, "web/dist")
	if err != nil {
		log.Fatalf("Failed to get dist subdirectory: %v", err)
	}

	index, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		log.Fatalf("Failed to read embedded index.html: %v", err)
	}

	servePage := func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	}
	router.GET("/", servePage)
	router.GET("/index.html", servePage)

	router.NoRoute(func(c *gin.Context) {
		// Skip API routes (they are handled by other routes)
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.FileFromFS(c.Request.URL.Path, http.FS(distFS))
	})
}
