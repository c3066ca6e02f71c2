package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"traffic-analyzer/internal/service"
)

type ProxyHandler struct {
	Plausible *service.PlausibleService
}

func NewProxyHandler(p *service.PlausibleService) *ProxyHandler {
	return &ProxyHandler{Plausible: p}
}

// PlausibleQuery 轉送到 Plausible，上游狀態碼與內容原樣回傳
func (h *ProxyHandler) PlausibleQuery(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, payload, err := h.Plausible.Query(c.Request.Context(), body)
	switch {
	case err == nil:
		c.Data(status, "application/json", payload)
	case errors.Is(err, service.ErrPlausibleNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUpstream):
		requestLogger(c).Warnf("[Proxy] %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
