package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"traffic-analyzer/internal/domain"
	"traffic-analyzer/internal/repository"
)

// SeedService 收集合成模型需要的種子觀測值 (WHOIS / DNS / 搜尋索引 / 連線狀態)
// 任何查詢失敗都以預設值代替，Collect 不回傳錯誤
type SeedService struct {
	Repo  repository.SeedRepository
	Whois WhoisSource
	DNS   NameserverSource
	Index IndexSource        // nil = 停用搜尋索引抓取
	Reach ReachabilitySource // nil = 不檢查網站連線

	now func() time.Time
}

func NewSeedService(repo repository.SeedRepository, whois WhoisSource, dns NameserverSource, index IndexSource, reach ReachabilitySource) *SeedService {
	return &SeedService{
		Repo:  repo,
		Whois: whois,
		DNS:   dns,
		Index: index,
		Reach: reach,
		now:   time.Now,
	}
}

// Collect 先查快取，miss 才對外查詢
func (s *SeedService) Collect(ctx context.Context, domainName string) domain.SeedObservations {
	root := getRootDomain(domainName)
	if seed, ok := s.Repo.Get(ctx, root); ok {
		logrus.Debugf("[Seed] 快取命中: %s", root)
		return seed
	}
	return s.Refresh(ctx, domainName)
}

// Refresh 略過快取重新查詢；至少一項查詢成功才寫回快取
func (s *SeedService) Refresh(ctx context.Context, domainName string) domain.SeedObservations {
	root := getRootDomain(domainName)
	start := time.Now()

	seed := domain.DefaultSeed()
	var (
		record      WhoisRecord
		whoisOK     bool
		nameservers []string
		dnsOK       bool
		indexCount  int64
		indexOK     bool
		reach       Reachability
		reachOK     bool
	)

	// 各查詢自行吸收錯誤，goroutine 只寫自己的變數
	var g errgroup.Group
	g.Go(func() error {
		rec, err := s.Whois.Lookup(ctx, root)
		if err != nil {
			logrus.Warnf("⚠️ [Seed] WHOIS 查詢失敗 %s: %v", root, err)
		}
		// 解析失敗時仍可能帶回註冊商
		record, whoisOK = rec, err == nil
		return nil
	})
	g.Go(func() error {
		ns, err := s.DNS.Nameservers(ctx, root)
		if err != nil {
			logrus.Warnf("⚠️ [Seed] DNS NS 查詢失敗 %s: %v", root, err)
			return nil
		}
		nameservers, dnsOK = ns, true
		return nil
	})
	if s.Index != nil {
		g.Go(func() error {
			n, err := s.Index.IndexCount(ctx, root)
			if err != nil {
				logrus.Debugf("[Seed] 搜尋索引抓取失敗 %s: %v", root, err)
				return nil
			}
			indexCount, indexOK = n, true
			return nil
		})
	}
	if s.Reach != nil {
		g.Go(func() error {
			r, err := s.Reach.Check(ctx, root)
			if err != nil {
				logrus.Debugf("[Seed] 網站連線失敗 %s: %v", root, err)
			}
			reach, reachOK = r, err == nil
			return nil
		})
	}
	_ = g.Wait()

	if record.Registrar != "" {
		seed.RegistrarName = record.Registrar
	}
	if whoisOK {
		if age, ok := domainAgeDays(record.CreatedDate, s.now()); ok {
			seed.DomainAgeDays = age
		}
	}

	switch {
	case dnsOK && len(nameservers) > 0:
		seed.NameserverCount = int64(len(nameservers))
	case len(record.NameServers) > 0:
		// DNS 失敗時改用 WHOIS 上登記的 NS
		seed.NameserverCount = int64(len(record.NameServers))
	}
	if indexOK {
		seed.SearchIndexCount = indexCount
	}
	if reach.Status != "" {
		seed.SiteStatus = reach.Status
		seed.ResponseTimeMs = reach.ResponseTimeMs
	}

	seed = seed.Sanitized()
	if whoisOK || dnsOK || indexOK || reachOK {
		s.Repo.Put(ctx, root, seed)
	} else {
		logrus.Warnf("⚠️ [Seed] 所有查詢皆失敗，不寫入快取: %s", root)
	}

	logrus.WithFields(logrus.Fields{
		"domain":      root,
		"age_days":    seed.DomainAgeDays,
		"index_count": seed.SearchIndexCount,
		"nameservers": seed.NameserverCount,
		"site_status": seed.SiteStatus,
		"elapsed":     time.Since(start).String(),
	}).Info("🔍 [Seed] 種子收集完成")
	return seed
}
