package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

var errNoResultCount = errors.New("search: result count element not found")

type IndexSource interface {
	IndexCount(ctx context.Context, domainName string) (int64, error)
}

type searchScraper struct {
	client      *http.Client
	urlTemplate string
	selector    string
	limiter     *rate.Limiter
}

// NewSearchIndexSource urlTemplate 需包含一個 %s，接收已編碼的 "site:<domain>" 查詢
func NewSearchIndexSource(urlTemplate, selector string, timeout time.Duration, rps float64) IndexSource {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &searchScraper{
		client:      &http.Client{Timeout: timeout},
		urlTemplate: urlTemplate,
		selector:    selector,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

func (s *searchScraper) IndexCount(ctx context.Context, domainName string) (int64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	target := fmt.Sprintf(s.urlTemplate, url.QueryEscape("site:"+domainName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("search: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("search: parse html: %w", err)
	}
	text := strings.TrimSpace(doc.Find(s.selector).First().Text())
	if text == "" {
		return 0, errNoResultCount
	}
	return parseResultCount(text)
}

// 數字之間允許千分位符號 (, . 空白 nbsp)
var countPattern = regexp.MustCompile(`\d(?:[\d,.\x{00A0}\x{202F} ]*\d)?`)

// parseResultCount 取文字中最大的數字，"Page 2 of about 1,230,000 results" -> 1230000
func parseResultCount(text string) (int64, error) {
	var best int64 = -1
	for _, m := range countPattern.FindAllString(text, -1) {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, m)
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("search: no number in %q", text)
	}
	return best, nil
}
