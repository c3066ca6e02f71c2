package main

import (
	"traffic-analyzer/internal/api"
	"traffic-analyzer/internal/conf"
	"traffic-analyzer/internal/repository"
	"traffic-analyzer/internal/service"

	"github.com/sirupsen/logrus"
)

func main() {

	// 設定 Log 格式
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})

	// 1. Config
	cfg, err := conf.LoadConfig()
	if err != nil {
		logrus.Fatalf("Config error: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logrus.Warnf("未知的 log.level %q，改用 info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// 2. Dependency Injection (依賴注入)
	// Repo -> Sources -> Service -> Handler
	seedRepo := repository.NewMemorySeedRepo(cfg.Lookup.CacheTTL)

	whoisSource := service.NewWhoisSource(cfg.Lookup.WhoisTimeout, cfg.Lookup.WhoisRetries)
	dnsSource := service.NewNameserverSource(cfg.Lookup.DNSServer, cfg.Lookup.DNSTimeout)
	var indexSource service.IndexSource
	if cfg.Lookup.SearchEnabled {
		indexSource = service.NewSearchIndexSource(cfg.Lookup.SearchURL, cfg.Lookup.SearchSelector, cfg.Lookup.SearchTimeout, cfg.Lookup.SearchRPS)
	}
	reachSource := service.NewReachabilitySource(cfg.Lookup.ReachTimeout)

	seedService := service.NewSeedService(seedRepo, whoisSource, dnsSource, indexSource, reachSource)
	analyzerService := service.NewAnalyzerService(seedService)
	plausibleService := service.NewPlausibleService(cfg.Plausible.BaseURL, cfg.Plausible.APIKey, cfg.Plausible.Timeout)

	// 3. 快取預熱排程
	cronService := service.NewCronService(seedService, cfg.Lookup)
	cronService.Start()
	defer cronService.Stop()

	if !cfg.PlausibleConfigured() {
		logrus.Warn("⚠️ PLAUSIBLE_API_KEY 未設定，/api/plausible/query 將回傳 500")
	}

	// 4. Gin Router Setup
	r := api.SetupRouter(api.Handlers{
		Traffic: api.NewTrafficHandler(analyzerService),
		Proxy:   api.NewProxyHandler(plausibleService),
		Health:  api.NewHealthHandler(seedRepo, plausibleService.Configured(), cfg.Lookup.SearchEnabled),
	}, cfg.Server.StaticDir)

	// 5. Start Server
	logrus.Infof("Server starting on %s [%s]", cfg.Server.Port, service.DataSource)
	if err := r.Run(cfg.Server.Port); err != nil {
		logrus.Fatalf("Server startup failed: %v", err)
	}
}
