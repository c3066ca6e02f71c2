package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"traffic-analyzer/internal/conf"
	"traffic-analyzer/internal/domain"
)

const jobWarmSeeds = "warm_seeds"

type SeedRefresher interface {
	Refresh(ctx context.Context, domainName string) domain.SeedObservations
}

// WarmStats 記錄一次預熱的統計數據
type WarmStats struct {
	Total    int
	Warmed   int
	Skipped  int
	Duration string
}

// CronService 依排程重新收集常用網域的種子並寫入快取
type CronService struct {
	Cron     *cron.Cron
	Seeds    SeedRefresher
	EntryIDs map[string]cron.EntryID

	mu       sync.Mutex
	schedule string
	domains  []string
}

func NewCronService(seeds SeedRefresher, cfg conf.LookupConfig) *CronService {
	return &CronService{
		Cron:     cron.New(),
		Seeds:    seeds,
		EntryIDs: make(map[string]cron.EntryID),
		schedule: cfg.WarmSchedule,
		domains:  cfg.WarmDomains,
	}
}

// Start 啟動排程
func (s *CronService) Start() {
	s.ReloadJobs(s.schedule, s.domains)
	s.Cron.Start()
}

// Stop 等待執行中的任務結束
func (s *CronService) Stop() {
	<-s.Cron.Stop().Done()
}

// ReloadJobs 以新的排程與網域清單取代舊任務
func (s *CronService) ReloadJobs(schedule string, domains []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. 清除舊任務
	for _, id := range s.EntryIDs {
		s.Cron.Remove(id)
	}
	s.EntryIDs = make(map[string]cron.EntryID)
	s.schedule = schedule
	s.domains = append([]string(nil), domains...)

	// 2. 註冊預熱任務
	if schedule == "" || len(domains) == 0 {
		logrus.Info("[Cron] 未設定快取預熱排程")
		return
	}
	targets := s.domains
	s.registerJob(jobWarmSeeds, schedule, func() {
		s.WarmCache(context.Background(), targets)
	})
}

// registerJob 封裝註冊邏輯
func (s *CronService) registerJob(name, schedule string, cmd func()) {
	id, err := s.Cron.AddFunc(schedule, cmd)
	if err == nil {
		s.EntryIDs[name] = id
		logrus.Infof("已排程自動任務 [%s]: %s", name, schedule)
	} else {
		logrus.Errorf("排程註冊失敗 [%s]: %v", name, err)
	}
}

// WarmCache 依序重新收集每個網域的種子，無效網域略過
func (s *CronService) WarmCache(ctx context.Context, domains []string) WarmStats {
	start := time.Now()
	stats := WarmStats{Total: len(domains)}

	logrus.Infof("🚀 [Cron] 開始預熱種子快取，共 %d 個網域...", len(domains))
	for _, raw := range domains {
		if ctx.Err() != nil {
			logrus.Warn("[Cron] 預熱中止")
			break
		}
		name := NormalizeDomain(raw)
		if name == "" {
			stats.Skipped++
			continue
		}
		s.Seeds.Refresh(ctx, name)
		stats.Warmed++
	}

	stats.Duration = time.Since(start).String()
	logrus.Infof("✅ [Cron] 預熱完成: %d 成功, %d 略過 (耗時: %s)", stats.Warmed, stats.Skipped, stats.Duration)
	return stats
}
