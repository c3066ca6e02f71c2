package domain

// 外部查詢失敗時使用的預設值
const (
	DefaultDomainAgeDays = 365
	RegistrarUnknown     = "N/A"
)

// 網站連線狀態
const (
	SiteOnline  = "online"
	SiteIssues  = "issues"
	SiteOffline = "offline"
	SiteUnknown = "unknown"
)

// SeedObservations 是合成指標的種子資料 (WHOIS / DNS / 搜尋索引)
// SiteStatus 與 ResponseTimeMs 僅供顯示，不參與合成
type SeedObservations struct {
	DomainAgeDays    int64  `json:"domain_age_days"`
	SearchIndexCount int64  `json:"search_index_count"`
	NameserverCount  int64  `json:"nameserver_count"`
	RegistrarName    string `json:"registrar_name"`
	SiteStatus       string `json:"site_status"`
	ResponseTimeMs   int64  `json:"response_time_ms"`
}

// DefaultSeed 回傳所有查詢都失敗時的種子
func DefaultSeed() SeedObservations {
	return SeedObservations{
		DomainAgeDays: DefaultDomainAgeDays,
		RegistrarName: RegistrarUnknown,
		SiteStatus:    SiteUnknown,
	}
}

// Sanitized 將負值或空值換回預設值
func (s SeedObservations) Sanitized() SeedObservations {
	if s.DomainAgeDays < 0 {
		s.DomainAgeDays = DefaultDomainAgeDays
	}
	if s.SearchIndexCount < 0 {
		s.SearchIndexCount = 0
	}
	if s.NameserverCount < 0 {
		s.NameserverCount = 0
	}
	if s.RegistrarName == "" {
		s.RegistrarName = RegistrarUnknown
	}
	if s.SiteStatus == "" {
		s.SiteStatus = SiteUnknown
	}
	if s.ResponseTimeMs < 0 {
		s.ResponseTimeMs = 0
	}
	return s
}
