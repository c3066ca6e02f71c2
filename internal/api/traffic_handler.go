package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"traffic-analyzer/internal/domain"
	"traffic-analyzer/internal/service"
	"traffic-analyzer/internal/synth"
)

type TrafficHandler struct {
	Analyzer *service.AnalyzerService
	now      func() time.Time
}

type AnalyzeRequest struct {
	Domain string `json:"domain" binding:"required"`
}

type BatchAnalyzeRequest struct {
	Domains []string `json:"domains"`
}

func NewTrafficHandler(analyzer *service.AnalyzerService) *TrafficHandler {
	return &TrafficHandler{Analyzer: analyzer, now: time.Now}
}

// =============================================================================
// Analyze APIs
// =============================================================================

// Analyze 前端主要入口，回傳四個主要指標與流量來源
func (h *TrafficHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Domain is required"})
		return
	}

	a, err := h.Analyzer.Analyze(c.Request.Context(), req.Domain)
	if err != nil {
		respondAnalyzeError(c, err)
		return
	}
	requestLogger(c).Infof("📈 [Analyze] %s -> %s visitors", a.Domain, domain.FormatValue(a.Summary.Metrics.Visitors.Value))
	c.JSON(http.StatusOK, a.Response())
}

// Overview 完整 MetricSet + 30 日時間序列
func (h *TrafficHandler) Overview(c *gin.Context) {
	ov, err := h.Analyzer.Overview(c.Request.Context(), c.Param("domain"), h.now())
	if err != nil {
		respondAnalyzeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// BatchAnalyze 一次分析 1-10 個網域
func (h *TrafficHandler) BatchAnalyze(c *gin.Context) {
	var req BatchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	results, err := h.Analyzer.AnalyzeBatch(c.Request.Context(), req.Domains)
	if err != nil {
		respondAnalyzeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"batch_results":      results,
		"analysis_timestamp": h.now().UTC().Format(time.RFC3339),
		"domains_analyzed":   len(results),
	})
}

// =============================================================================
// Export
// =============================================================================

// Export 匯出 MetricSet (format=csv|xlsx，預設 csv)
func (h *TrafficHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	a, err := h.Analyzer.Analyze(c.Request.Context(), c.Param("domain"))
	if err != nil {
		respondAnalyzeError(c, err)
		return
	}

	filename := fmt.Sprintf("traffic_%s_v%s.%s", a.Domain, synth.DerivationVersion, format)
	if format == "xlsx" {
		writeXLSX(c, filename, a)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment;filename="+filename)
	if err := writeMetricsCSV(c.Writer, a.Metrics); err != nil {
		// header 已送出，只能記錄
		requestLogger(c).Errorf("[Export] 寫入 csv 失敗: %v", err)
	}
}

// writeMetricsCSV 輸出 BOM + Metric,Value 兩欄
func writeMetricsCSV(w io.Writer, ms domain.MetricSet) error {
	if _, err := w.Write([]byte("\xEF\xBB\xBF")); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	for _, m := range ms.Entries() {
		if err := writer.Write([]string{m.Key, domain.FormatValue(m.Value)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

const exportSheet = "Metrics"

func writeXLSX(c *gin.Context, filename string, a service.Analysis) {
	f, err := buildWorkbook(a.Metrics)
	if err != nil {
		requestLogger(c).Errorf("[Export] 產生 xlsx 失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment;filename="+filename)
	if err := f.Write(c.Writer); err != nil {
		requestLogger(c).Errorf("[Export] 寫入 xlsx 失敗: %v", err)
	}
}

func buildWorkbook(ms domain.MetricSet) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillWorkbook(f, ms); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fillWorkbook(f *excelize.File, ms domain.MetricSet) error {
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &[]any{"Metric", "Value"}); err != nil {
		return err
	}
	for i, m := range ms.Entries() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &[]any{m.Key, m.Value}); err != nil {
			return err
		}
	}
	return f.SetColWidth(exportSheet, "A", "A", 36)
}

func respondAnalyzeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain"})
	case errors.Is(err, service.ErrBatchSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		requestLogger(c).Errorf("[Analyze] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
