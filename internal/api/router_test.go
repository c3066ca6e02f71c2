package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"traffic-analyzer/internal/domain"
	"traffic-analyzer/internal/repository"
	"traffic-analyzer/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixedSeeds struct{}

func (fixedSeeds) Collect(_ context.Context, _ string) domain.SeedObservations {
	return domain.SeedObservations{DomainAgeDays: 3650, SearchIndexCount: 50000, NameserverCount: 2}
}

func newTestRouter(t *testing.T, plausible *service.PlausibleService) *gin.Engine {
	t.Helper()

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>spa</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "app.js"), []byte("console.log(1)"), 0o644))

	if plausible == nil {
		plausible = service.NewPlausibleService("http://127.0.0.1:1", "", time.Second)
	}
	traffic := NewTrafficHandler(service.NewAnalyzerService(fixedSeeds{}))
	traffic.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }

	return SetupRouter(Handlers{
		Traffic: traffic,
		Proxy:   NewProxyHandler(plausible),
		Health:  NewHealthHandler(repository.NewMemorySeedRepo(time.Hour), plausible.Configured(), true),
	}, static)
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyze_EmptyDomainIsClientError(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, nil)

	for _, body := range []string{`{"domain":""}`, `{}`, `{"domain":"   "}`, `not json`} {
		w := doRequest(r, http.MethodPost, "/api/traffic/analyze", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp["error"])
	}
}

func TestAnalyze_ResponseShape(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, nil)

	w := doRequest(r, http.MethodPost, "/api/traffic/analyze", `{"domain":"https://www.example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(HeaderRequestID))

	var resp domain.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "example.com", resp.Domain)
	require.Equal(t, domain.UnitVisitors, resp.Metrics.Visitors.Unit)
	require.Equal(t, domain.UnitPageviews, resp.Metrics.Pageviews.Unit)
	require.Equal(t, domain.UnitRatio, resp.Metrics.BounceRate.Unit)
	require.Equal(t, domain.UnitSeconds, resp.Metrics.VisitDuration.Unit)
	require.GreaterOrEqual(t, resp.Metrics.Visitors.Value, 1000.0)
	require.Equal(t, service.DataSource, resp.Details.DataSource)

	require.Len(t, resp.Details.TrafficSources, 4)
	for i, channel := range []string{"Direct", "Search", "Social", "Referral"} {
		require.Equal(t, channel, resp.Details.TrafficSources[i].Channel)
	}
}

func TestOverview_MetricsInOrder(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/traffic/analyze/example.com", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Domain     string                  `json:"domain"`
		Seed       domain.SeedObservations `json:"seed"`
		Metrics    json.RawMessage         `json:"metrics"`
		Timeseries []domain.DailyTraffic   `json:"timeseries"`
		Version    string                  `json:"version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "example.com", resp.Domain)
	require.Equal(t, domain.SiteUnknown, resp.Seed.SiteStatus)
	require.Equal(t, "5.0", resp.Version)
	require.Len(t, resp.Timeseries, 30)
	require.Equal(t, "2026-10-18", resp.Timeseries[29].Date)

	// 鍵的順序即 M01..M40
	dec := json.NewDecoder(bytes.NewReader(resp.Metrics))
	_, err := dec.Token()
	require.NoError(t, err)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		_, err = dec.Token()
		require.NoError(t, err)
	}
	require.Equal(t, domain.MetricKeys, keys)
}

func TestBatchAnalyze_Bounds(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, nil)

	w := doRequest(r, http.MethodPost, "/api/traffic/batch-analyze", `{"domains":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	eleven := `{"domains":["a.com","b.com","c.com","d.com","e.com","f.com","g.com","h.com","i.com","j.com","k.com"]}`
	w = doRequest(r, http.MethodPost, "/api/traffic/batch-analyze", eleven)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/traffic/batch-analyze", `{"domains":["example.com","","www.example.org"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		BatchResults    map[string]domain.AnalyzeResponse `json:"batch_results"`
		DomainsAnalyzed int                               `json:"domains_analyzed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.DomainsAnalyzed)
	require.Contains(t, resp.BatchResults, "example.com")
	require.Contains(t, resp.BatchResults, "example.org")
}

func TestExport_CSV(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/traffic/export/example.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "traffic_example.com_v5.0.csv")

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte("\xEF\xBB\xBF")))

	rows, err := csv.NewReader(bytes.NewReader(body[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(domain.MetricKeys)+1)
	require.Equal(t, []string{"Metric", "Value"}, rows[0])
	require.Equal(t, []string{domain.KeyDomainAgeDays, "3650"}, rows[1])
	require.Equal(t, domain.KeyMobileFriendlinessScore, rows[len(rows)-1][0])
}

func TestExport_XLSXAndBadFormat(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/traffic/export/example.com?format=xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	w = doRequest(r, http.MethodGet, "/api/traffic/export/example.com?format=pdf", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/api/traffic/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp["status"])
	require.Equal(t, false, resp["plausible_api_configured"])
	require.Equal(t, true, resp["search_scrape_enabled"])
	require.Equal(t, "5.0", resp["version"])
}

func TestPlausibleProxy(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results":[{"metrics":[42]}]}`))
	}))
	defer upstream.Close()

	// 未設定 API key
	r := newTestRouter(t, nil)
	w := doRequest(r, http.MethodPost, "/api/plausible/query", `{"site_id":"example.com"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "not configured")

	r = newTestRouter(t, service.NewPlausibleService(upstream.URL, "key", time.Second))
	w = doRequest(r, http.MethodPost, "/api/plausible/query", `{bad`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/plausible/query", `{"site_id":"example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"results":[{"metrics":[42]}]}`, w.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/traffic/health", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = doRequest(r, http.MethodOptions, "/api/traffic/analyze", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSPAFallback(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "console.log(1)", w.Body.String())

	w = doRequest(r, http.MethodGet, "/dashboard/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "<html>spa</html>", w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/unknown", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
