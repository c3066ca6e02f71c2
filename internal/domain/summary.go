package domain

// 前端顯示用的單位
const (
	UnitVisitors  = "visitors"
	UnitPageviews = "pageviews"
	UnitRatio     = "ratio"
	UnitSeconds   = "seconds"
)

type HeadlineMetric struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// HeadlineMetrics 前端卡片顯示的四個主要指標
type HeadlineMetrics struct {
	Visitors      HeadlineMetric `json:"visitors"`
	Pageviews     HeadlineMetric `json:"pageviews"`
	BounceRate    HeadlineMetric `json:"bounce_rate"`
	VisitDuration HeadlineMetric `json:"visit_duration"`
}

type TrafficSource struct {
	Channel string `json:"channel"`
	Value   int64  `json:"value"`
}

// FrontendSummary 由 MetricSet 投影而來，不獨立計算
type FrontendSummary struct {
	Metrics        HeadlineMetrics `json:"metrics"`
	TrafficSources []TrafficSource `json:"traffic_sources"`
}

// TrafficDetails 對應前端 response.data.details
type TrafficDetails struct {
	TrafficSources []TrafficSource `json:"traffic_sources"`
	DataSource     string          `json:"data_source"`
}

// AnalyzeResponse POST /api/traffic/analyze 的回傳格式
type AnalyzeResponse struct {
	Domain  string          `json:"domain"`
	Metrics HeadlineMetrics `json:"metrics"`
	Details TrafficDetails  `json:"details"`
}
