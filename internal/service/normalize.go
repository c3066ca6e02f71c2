package service

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeDomain 清理使用者輸入: 去除協定、路徑、port 與開頭的 www.
// 回傳空字串代表無效輸入
func NormalizeDomain(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	host = strings.TrimPrefix(host, "www.")
	if strings.ContainsAny(host, " /\\") {
		return ""
	}
	return host
}

// getRootDomain 取得可註冊的根網域 (sub.example.co.uk -> example.co.uk)
// WHOIS 查詢與種子快取都以根網域為 key
func getRootDomain(domainName string) string {
	root, err := publicsuffix.EffectiveTLDPlusOne(domainName)
	if err != nil {
		// localhost、IP 或單一標籤，直接沿用
		return domainName
	}
	return root
}
