package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

type NameserverSource interface {
	Nameservers(ctx context.Context, rootDomain string) ([]string, error)
}

type dnsLookup struct {
	server  string
	timeout time.Duration
}

func NewNameserverSource(server string, timeout time.Duration) NameserverSource {
	return &dnsLookup{server: server, timeout: timeout}
}

// Nameservers 查詢 NS 記錄，UDP 被截斷或失敗時改用 TCP
func (d *dnsLookup) Nameservers(ctx context.Context, rootDomain string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(rootDomain), dns.TypeNS)
	msg.RecursionDesired = true

	in, err := d.exchange(ctx, msg, "udp")
	if err != nil || in.Truncated {
		in, err = d.exchange(ctx, msg, "tcp")
	}
	if err != nil {
		return nil, fmt.Errorf("dns ns %s: %w", rootDomain, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("dns ns %s: %s", rootDomain, dns.RcodeToString[in.Rcode])
	}

	seen := make(map[string]bool)
	var names []string
	for _, rr := range in.Answer {
		ns, ok := rr.(*dns.NS)
		if !ok {
			continue
		}
		name := strings.ToLower(strings.TrimSuffix(ns.Ns, "."))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

func (d *dnsLookup) exchange(ctx context.Context, msg *dns.Msg, network string) (*dns.Msg, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	c := &dns.Client{Net: network, Timeout: d.timeout}
	in, _, err := c.ExchangeContext(ctx, msg, d.server)
	return in, err
}
