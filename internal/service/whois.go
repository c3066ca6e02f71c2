package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// WhoisRecord 從 WHOIS 解析出的欄位
type WhoisRecord struct {
	CreatedDate time.Time
	Registrar   string
	NameServers []string
}

type WhoisSource interface {
	Lookup(ctx context.Context, rootDomain string) (WhoisRecord, error)
}

type whoisLookup struct {
	client  *whois.Client
	timeout time.Duration
	retries uint
}

// NewWhoisSource timeout 為包含重試的總預算
func NewWhoisSource(timeout time.Duration, retries uint) WhoisSource {
	if retries == 0 {
		retries = 1
	}
	return &whoisLookup{
		client:  whois.NewClient().SetTimeout(timeout),
		timeout: timeout,
		retries: retries,
	}
}

func (w *whoisLookup) Lookup(ctx context.Context, rootDomain string) (WhoisRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	raw, err := backoff.Retry(ctx, func() (string, error) {
		return w.client.Whois(rootDomain)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(w.retries),
	)
	if err != nil {
		return WhoisRecord{}, fmt.Errorf("whois %s: %w", rootDomain, err)
	}
	return parseWhois(raw)
}

func parseWhois(raw string) (WhoisRecord, error) {
	info, err := whoisparser.Parse(raw)
	if err != nil {
		return WhoisRecord{}, fmt.Errorf("parse whois: %w", err)
	}

	var rec WhoisRecord
	if info.Registrar != nil {
		rec.Registrar = strings.TrimSpace(info.Registrar.Name)
	}
	if info.Domain == nil {
		return rec, errors.New("whois: no domain section")
	}
	rec.NameServers = info.Domain.NameServers

	if info.Domain.CreatedDate != "" {
		created, err := parseWhoisTime(info.Domain.CreatedDate)
		if err != nil {
			return rec, err
		}
		rec.CreatedDate = created
	}
	return rec, nil
}

// parseWhoisTime 各註冊局的日期格式不一
// TWNIC 常見: "2026-06-17 13:11:45 (UTC+8)"
func parseWhoisTime(dateStr string) (time.Time, error) {
	if idx := strings.Index(dateStr, " ("); idx != -1 {
		dateStr = dateStr[:idx]
	}
	dateStr = strings.TrimSpace(dateStr)

	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05.00Z",
		time.RFC3339,
		"2006-01-02",
		"02-Jan-2006",
		"2006.01.02",
		"2006/01/02",
	}
	for _, f := range formats {
		if t, e := time.Parse(f, dateStr); e == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown date format: %s", dateStr)
}

// domainAgeDays 以天數計的網域年齡，未知或未來日期回傳 false
func domainAgeDays(created, now time.Time) (int64, bool) {
	if created.IsZero() || created.After(now) {
		return 0, false
	}
	return int64(now.Sub(created).Hours() / 24), true
}
