package domain

import (
	"bytes"
	"strconv"
)

// 指標鍵值 (順序即輸出順序，不可更動)
const (
	KeyDomainAgeDays           = "M01_Domain_Age_Days"
	KeyDomainAgeYears          = "M02_Domain_Age_Years"
	KeySearchIndexCount        = "M03_Search_Index_Count"
	KeyNameserverCount         = "M04_Nameserver_Count"
	KeyAuthorityScore          = "M05_Authority_Score"
	KeyEstimatedBacklinks      = "M06_Estimated_Backlinks"
	KeyTrustScore              = "M07_Trust_Score"
	KeyRankingKeywords         = "M08_Ranking_Keywords"
	KeyContentDensityFactor    = "M09_Content_Density_Factor"
	KeyDNSStabilityScore       = "M10_DNS_Stability_Score"
	KeyTrafficVarianceFactor   = "M11_Traffic_Variance_Factor"
	KeyUpdateFrequencyDays     = "M12_Update_Frequency_Days"
	KeyDomainQualityScore      = "M13_Domain_Quality_Score"
	KeyCompetitivenessFactor   = "M14_Competitiveness_Factor"
	KeyMonthlyVisitors         = "M15_Estimated_Monthly_Visitors"
	KeyMonthlyPageviews        = "M16_Monthly_Pageviews"
	KeyBounceRate              = "M17_Bounce_Rate"
	KeyAvgVisitDuration        = "M18_Avg_Visit_Duration"
	KeyWeeklyVisitors          = "M19_Weekly_Visitors"
	KeyDailyVisitors           = "M20_Daily_Visitors"
	KeyPagesPerVisit           = "M21_Pages_Per_Visit"
	KeyTrafficScore            = "M22_Traffic_Score"
	KeyOrganicTraffic          = "M23_Organic_Traffic"
	KeyUniqueVisitors          = "M24_Unique_Visitors"
	KeyDirectShare             = "M25_Direct_Traffic_Pct"
	KeySearchShare             = "M26_Search_Traffic_Pct"
	KeySocialShare             = "M27_Social_Traffic_Pct"
	KeyReferralShare           = "M28_Referral_Traffic_Pct"
	KeyMailShare               = "M29_Mail_Traffic_Pct"
	KeyPaidShare               = "M30_Paid_Traffic_Pct"
	KeyDirectVisits            = "M31_Direct_Visits"
	KeySearchVisits            = "M32_Search_Visits"
	KeySocialVisits            = "M33_Social_Visits"
	KeyReferralVisits          = "M34_Referral_Visits"
	KeyIPReputationScore       = "M35_IP_Reputation_Score"
	KeyHostingQualityScore     = "M36_Hosting_Quality_Score"
	KeyHTTPSScore              = "M37_HTTPS_Score"
	KeySpamScore               = "M38_Spam_Score"
	KeyPageLoadTime            = "M39_Page_Load_Time"
	KeyMobileFriendlinessScore = "M40_Mobile_Friendliness_Score"
)

// MetricKeys 全部 40 個指標，依輸出順序排列
var MetricKeys = []string{
	KeyDomainAgeDays, KeyDomainAgeYears, KeySearchIndexCount, KeyNameserverCount,
	KeyAuthorityScore, KeyEstimatedBacklinks, KeyTrustScore, KeyRankingKeywords,
	KeyContentDensityFactor, KeyDNSStabilityScore, KeyTrafficVarianceFactor, KeyUpdateFrequencyDays,
	KeyDomainQualityScore, KeyCompetitivenessFactor, KeyMonthlyVisitors, KeyMonthlyPageviews,
	KeyBounceRate, KeyAvgVisitDuration, KeyWeeklyVisitors, KeyDailyVisitors,
	KeyPagesPerVisit, KeyTrafficScore, KeyOrganicTraffic, KeyUniqueVisitors,
	KeyDirectShare, KeySearchShare, KeySocialShare, KeyReferralShare,
	KeyMailShare, KeyPaidShare, KeyDirectVisits, KeySearchVisits,
	KeySocialVisits, KeyReferralVisits, KeyIPReputationScore, KeyHostingQualityScore,
	KeyHTTPSScore, KeySpamScore, KeyPageLoadTime, KeyMobileFriendlinessScore,
}

// Metric 單一指標
type Metric struct {
	Key   string
	Value float64
}

// MetricSet 有序且不可變的指標集合
type MetricSet struct {
	entries []Metric
	index   map[string]int
}

// NewMetricSet 複製 entries 建立集合；重複的 key 以後者為準
func NewMetricSet(entries []Metric) MetricSet {
	ms := MetricSet{
		entries: make([]Metric, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, m := range entries {
		if i, ok := ms.index[m.Key]; ok {
			ms.entries[i].Value = m.Value
			continue
		}
		ms.index[m.Key] = len(ms.entries)
		ms.entries = append(ms.entries, m)
	}
	return ms
}

func (ms MetricSet) Len() int { return len(ms.entries) }

// Get 取得指標值
func (ms MetricSet) Get(key string) (float64, bool) {
	i, ok := ms.index[key]
	if !ok {
		return 0, false
	}
	return ms.entries[i].Value, true
}

// Value 取得指標值，不存在時回傳 0
func (ms MetricSet) Value(key string) float64 {
	v, _ := ms.Get(key)
	return v
}

// Entries 回傳副本，呼叫端修改不影響集合
func (ms MetricSet) Entries() []Metric {
	out := make([]Metric, len(ms.entries))
	copy(out, ms.entries)
	return out
}

// MarshalJSON 依插入順序輸出 JSON 物件
func (ms MetricSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range ms.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(m.Key))
		buf.WriteByte(':')
		buf.WriteString(FormatValue(m.Value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatValue 以最短表示輸出數值 (整數不帶小數點)
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
