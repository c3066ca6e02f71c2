package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Traffic *TrafficHandler
	Proxy   *ProxyHandler
	Health  *HealthHandler
}

// SetupRouter 註冊所有路由；staticDir 為前端 build 目錄
func SetupRouter(h Handlers, staticDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), CORS())

	traffic := r.Group("/api/traffic")
	{
		traffic.POST("/analyze", h.Traffic.Analyze)
		traffic.GET("/analyze/:domain", h.Traffic.Overview)
		traffic.POST("/batch-analyze", h.Traffic.BatchAnalyze)
		traffic.GET("/export/:domain", h.Traffic.Export)
		traffic.GET("/health", h.Health.Health)
	}
	r.POST("/api/plausible/query", h.Proxy.PlausibleQuery)

	r.NoRoute(spaFallback(staticDir))
	return r
}

// spaFallback 存在的靜態檔直接回傳，其餘路徑交給前端路由 (index.html)
func spaFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		if staticDir == "" {
			c.String(http.StatusNotFound, "Static folder not configured")
			return
		}

		// Clean 之後不會跳出 staticDir
		file := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}

		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.String(http.StatusNotFound, "index.html not found")
			return
		}
		c.File(index)
	}
}
