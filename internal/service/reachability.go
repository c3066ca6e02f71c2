package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"traffic-analyzer/internal/domain"
)

// Reachability 網站連線檢查結果
type Reachability struct {
	Status         string
	ResponseTimeMs int64
}

type ReachabilitySource interface {
	Check(ctx context.Context, domainName string) (Reachability, error)
}

type reachabilityCheck struct {
	httpClient *http.Client
	schemes    []string
}

// NewReachabilitySource 先以 HTTPS 送出 HEAD，連線失敗才改試 HTTP
func NewReachabilitySource(timeout time.Duration) ReachabilitySource {
	return &reachabilityCheck{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		schemes: []string{"https", "http"},
	}
}

// Check 只有所有協定都連不上時才回傳 error (Status = offline)
func (r *reachabilityCheck) Check(ctx context.Context, domainName string) (Reachability, error) {
	var lastErr error
	for _, scheme := range r.schemes {
		status, elapsed, err := r.head(ctx, fmt.Sprintf("%s://%s", scheme, domainName))
		if err != nil {
			lastErr = err
			continue
		}

		result := Reachability{Status: domain.SiteOnline, ResponseTimeMs: elapsed.Milliseconds()}
		if status >= http.StatusBadRequest {
			result.Status = domain.SiteIssues
		}
		return result, nil
	}
	return Reachability{Status: domain.SiteOffline}, fmt.Errorf("reachability %s: %w", domainName, lastErr)
}

func (r *reachabilityCheck) head(ctx context.Context, url string) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, 0, err
	}

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	elapsed := time.Since(start)
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) // 讀完 Body 讓連線可重用

	return resp.StatusCode, elapsed, nil
}
