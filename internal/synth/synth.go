// Package synth derives a fixed set of 40 pseudo traffic metrics from a domain
// name and its seed observations.
//
// Every random value comes from one stream keyed by SHA-256(domain). The order
// and number of draws is part of the output contract: changing either changes
// every metric for every domain, so any such change must bump DerivationVersion.
package synth

import (
	"math"

	"traffic-analyzer/internal/domain"
)

// DerivationVersion 公式或抽樣順序變更時必須遞增
const DerivationVersion = "5.0"

// drawsPerDerivation 一次 Synthesize 消耗的亂數數量
const drawsPerDerivation = 22

const (
	weeksPerMonth       = 4.3
	daysPerMonth        = 30.4
	daysPerYear         = 365.25
	minMonthlyVisitors  = 1000
	minBacklinks        = 100
	uniqueVisitorsRatio = 0.85
)

var (
	updateFrequencies = []float64{1, 7, 14, 30}
	hostingQualities  = []float64{60, 75, 90}
	mobileScores      = []float64{70, 85, 100}
)

type shareRange struct{ lo, hi float64 }

// 流量來源比例的抽樣區間: Direct, Search, Social, Referral, Mail, Paid
var shareRanges = [6]shareRange{
	{0.20, 0.35},
	{0.30, 0.50},
	{0.05, 0.15},
	{0.05, 0.15},
	{0.01, 0.05},
	{0.01, 0.10},
}

// Synthesize 依 domain 與種子資料產生 MetricSet。
// domain 必須已正規化 (無協定、無 www、無路徑)；相同輸入永遠得到相同輸出。
func Synthesize(domainName string, seed domain.SeedObservations) domain.MetricSet {
	ms, _ := derive(domainName, seed)
	return ms
}

func derive(domainName string, seed domain.SeedObservations) (domain.MetricSet, int) {
	rng := newStream(domainName)
	out := make([]domain.Metric, 0, len(domain.MetricKeys))
	add := func(key string, v float64) {
		out = append(out, domain.Metric{Key: key, Value: v})
	}

	// 1. 種子資料
	ageDays := float64(seed.DomainAgeDays)
	years := round2(ageDays / daysPerYear)
	index := float64(seed.SearchIndexCount)
	add(domain.KeyDomainAgeDays, ageDays)
	add(domain.KeyDomainAgeYears, years)
	add(domain.KeySearchIndexCount, index)
	add(domain.KeyNameserverCount, float64(seed.NameserverCount))

	// 2. 權威分數
	jitter := rng.uniform(-5, 5)
	authority := round2(clamp(5*math.Log(index+1)+2*years+jitter, 0, 100))
	add(domain.KeyAuthorityScore, authority)

	// 3. 反向連結
	backlinkRatio := rng.uniform(0.1, 0.5)
	add(domain.KeyEstimatedBacklinks, math.Max(minBacklinks, math.Floor(index*authority*backlinkRatio)))

	// 4. 信任分數
	trustBase := rng.uniform(50, 70)
	trust := round2(math.Min(100, 1.5*years+trustBase))
	add(domain.KeyTrustScore, trust)

	// 5. 其他衍生分數
	keywordRatio := rng.uniform(0.01, 0.05)
	add(domain.KeyRankingKeywords, math.Floor(index*keywordRatio))
	add(domain.KeyContentDensityFactor, round2(rng.uniform(0.5, 1.5)))
	add(domain.KeyDNSStabilityScore, dnsStabilityScore(seed.NameserverCount))
	variance := round2(rng.uniform(0.8, 1.2))
	add(domain.KeyTrafficVarianceFactor, variance)
	add(domain.KeyUpdateFrequencyDays, rng.pick(updateFrequencies))
	add(domain.KeyDomainQualityScore, round2((authority+trust)/2))
	competitiveness := round2(authority / 100)
	add(domain.KeyCompetitivenessFactor, competitiveness)

	// 6. 基礎流量 = 每月訪客
	visitors := math.Max(minMonthlyVisitors, math.Floor(index*competitiveness*100*variance))
	add(domain.KeyMonthlyVisitors, visitors)

	// 7. 瀏覽量、跳出率、停留時間
	pageviews := math.Floor(visitors * rng.uniform(1.5, 4.5))
	add(domain.KeyMonthlyPageviews, pageviews)
	add(domain.KeyBounceRate, round2(rng.uniform(0.3, 0.8)))
	add(domain.KeyAvgVisitDuration, math.Floor(rng.uniform(45, 360)))

	// 8-10. 不抽樣的換算值
	add(domain.KeyWeeklyVisitors, math.Floor(visitors/weeksPerMonth))
	add(domain.KeyDailyVisitors, math.Floor(visitors/daysPerMonth))
	add(domain.KeyPagesPerVisit, round2(pageviews/visitors))
	add(domain.KeyTrafficScore, round2(10*math.Log(visitors+1)))

	// 11. 自然流量
	add(domain.KeyOrganicTraffic, math.Floor(visitors*rng.uniform(0.4, 0.6)))
	add(domain.KeyUniqueVisitors, math.Floor(visitors*uniqueVisitorsRatio))

	// 12. 流量來源比例 (正規化後總和為 1)
	shares := trafficShares(rng)
	add(domain.KeyDirectShare, shares[0])
	add(domain.KeySearchShare, shares[1])
	add(domain.KeySocialShare, shares[2])
	add(domain.KeyReferralShare, shares[3])
	add(domain.KeyMailShare, shares[4])
	add(domain.KeyPaidShare, shares[5])

	// 13. 流量來源人數
	counts := trafficCounts(shares[:4], visitors)
	add(domain.KeyDirectVisits, counts[0])
	add(domain.KeySearchVisits, counts[1])
	add(domain.KeySocialVisits, counts[2])
	add(domain.KeyReferralVisits, counts[3])

	// 14. 技術指標
	add(domain.KeyIPReputationScore, round2(rng.uniform(70, 100)))
	add(domain.KeyHostingQualityScore, rng.pick(hostingQualities))
	add(domain.KeyHTTPSScore, 100)
	add(domain.KeySpamScore, round2(rng.uniform(0, 15)))
	add(domain.KeyPageLoadTime, round2(rng.uniform(0.8, 4.0)))
	add(domain.KeyMobileFriendlinessScore, rng.pick(mobileScores))

	return domain.NewMetricSet(out), rng.draws
}

func dnsStabilityScore(nameservers int64) float64 {
	switch {
	case nameservers >= 4:
		return 95
	case nameservers >= 2:
		return 80
	default:
		return 50
	}
}

// trafficShares 抽六個來源比例並正規化。
// 前五個取到小數四位，Paid 為剩餘值，確保總和為 1。
func trafficShares(rng *stream) [6]float64 {
	var raw [6]float64
	var total float64
	for i, r := range shareRanges {
		raw[i] = rng.uniform(r.lo, r.hi)
		total += raw[i]
	}

	var shares [6]float64
	var acc float64
	for i := 0; i < 5; i++ {
		shares[i] = round4(raw[i] / total)
		acc += shares[i]
	}
	shares[5] = round4(1 - acc)
	return shares
}

// trafficCounts 比例換算成人數；總和超過 visitors 時等比例縮小
func trafficCounts(shares []float64, visitors float64) [4]float64 {
	var counts [4]float64
	var total float64
	for i, s := range shares {
		counts[i] = math.Floor(s * visitors)
		total += counts[i]
	}
	if total > visitors {
		scale := visitors / total
		for i := range counts {
			counts[i] = math.Floor(counts[i] * scale)
		}
	}
	return counts
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
