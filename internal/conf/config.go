package conf

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Plausible PlausibleConfig
	Lookup    LookupConfig
}

type ServerConfig struct {
	Port      string
	StaticDir string `mapstructure:"static_dir"`
}

type LogConfig struct {
	Level string
}

type PlausibleConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LookupConfig 外部查詢 (WHOIS / DNS / 搜尋) 與種子快取設定
type LookupConfig struct {
	WhoisTimeout   time.Duration `mapstructure:"whois_timeout"`
	WhoisRetries   uint          `mapstructure:"whois_retries"`
	DNSServer      string        `mapstructure:"dns_server"`
	DNSTimeout     time.Duration `mapstructure:"dns_timeout"`
	SearchEnabled  bool          `mapstructure:"search_enabled"`
	SearchURL      string        `mapstructure:"search_url"`
	SearchSelector string        `mapstructure:"search_selector"`
	SearchTimeout  time.Duration `mapstructure:"search_timeout"`
	SearchRPS      float64       `mapstructure:"search_rps"`
	ReachTimeout   time.Duration `mapstructure:"reach_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	WarmSchedule   string        `mapstructure:"warm_schedule"`
	WarmDomains    []string      `mapstructure:"warm_domains"`
}

var defaults = map[string]any{
	"server.port":            ":5000",
	"server.static_dir":      "./build",
	"log.level":              "info",
	"plausible.base_url":     "https://plausible.io",
	"plausible.api_key":      "",
	"plausible.timeout":      "10s",
	"lookup.whois_timeout":   "8s",
	"lookup.whois_retries":   2,
	"lookup.dns_server":      "1.1.1.1:53",
	"lookup.dns_timeout":     "3s",
	"lookup.search_enabled":  true,
	"lookup.search_url":      "https://www.bing.com/search?q=%s",
	"lookup.search_selector": ".sb_count",
	"lookup.search_timeout":  "6s",
	"lookup.search_rps":      1.0,
	"lookup.reach_timeout":   "5s",
	"lookup.cache_ttl":       "1h",
	"lookup.warm_schedule":   "",
	"lookup.warm_domains":    []string{},
}

// LoadConfig 讀取 ./config/config.yaml (可選) 與環境變數
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // .env 不存在時忽略
	return Load(viper.New(), "./config")
}

// Load 以指定的 viper 實例載入設定；環境變數如 PLAUSIBLE_API_KEY 覆蓋檔案值
func Load(v *viper.Viper, paths ...string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		logrus.Info("找不到設定檔，使用預設值與環境變數")
	} else {
		logrus.Infof("設定檔讀取成功: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PlausibleConfigured 是否已設定 API Key
func (c *Config) PlausibleConfigured() bool {
	return c.Plausible.APIKey != ""
}
