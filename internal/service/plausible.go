package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"
)

var (
	ErrPlausibleNotConfigured = errors.New("plausible API key not configured. Set PLAUSIBLE_API_KEY in the environment or plausible.api_key in config.yaml")
	ErrInvalidQuery           = errors.New("request body must be valid JSON")
	ErrUpstream               = errors.New("plausible upstream unreachable")
)

const plausibleQueryPath = "/api/v2/query"

// PlausibleService 將查詢原封不動轉送到 Plausible Stats API v2
type PlausibleService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPlausibleService(baseURL, apiKey string, timeout time.Duration) *PlausibleService {
	return &PlausibleService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *PlausibleService) Configured() bool {
	return s.apiKey != ""
}

// Query 回傳上游的狀態碼與內容；err 只代表本地或傳輸錯誤
func (s *PlausibleService) Query(ctx context.Context, body []byte) (int, []byte, error) {
	if !s.Configured() {
		return 0, nil, ErrPlausibleNotConfigured
	}
	if len(bytes.TrimSpace(body)) == 0 || !sonic.Valid(body) {
		return 0, nil, ErrInvalidQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+plausibleQueryPath, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logrus.Warnf("❌ [Proxy] Plausible 連線失敗: %v", err)
		return 0, nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	logrus.Debugf("[Proxy] Plausible 回應 %d (%d bytes)", resp.StatusCode, len(payload))
	return resp.StatusCode, payload, nil
}
