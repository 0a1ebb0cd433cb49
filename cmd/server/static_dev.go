//go:build !embed
// +build !embed

package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles configures static file serving for development (no embedding)
func setupStaticFiles(router *gin.Engine) {
	webDir := os.Getenv("WEB_DIR")
	if webDir == "" {
		webDir = "./cmd/server/web/dist"
	}
	log.Printf("🔧 Serving prediction page from %s (development mode)", webDir)

	router.StaticFile("/", webDir+"/index.html")
	router.StaticFile("/index.html", webDir+"/index.html")

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(404, gin.H{
			"error": "Not found",
			"hint":  "The prediction page is served at /",
		})
	})
}
