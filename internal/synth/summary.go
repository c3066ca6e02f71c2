package synth

import "traffic-analyzer/internal/domain"

// Summarize 由 MetricSet 投影出前端摘要
func Summarize(ms domain.MetricSet) domain.FrontendSummary {
	return domain.FrontendSummary{
		Metrics: domain.HeadlineMetrics{
			Visitors:      domain.HeadlineMetric{Value: ms.Value(domain.KeyMonthlyVisitors), Unit: domain.UnitVisitors},
			Pageviews:     domain.HeadlineMetric{Value: ms.Value(domain.KeyMonthlyPageviews), Unit: domain.UnitPageviews},
			BounceRate:    domain.HeadlineMetric{Value: ms.Value(domain.KeyBounceRate), Unit: domain.UnitRatio},
			VisitDuration: domain.HeadlineMetric{Value: ms.Value(domain.KeyAvgVisitDuration), Unit: domain.UnitSeconds},
		},
		TrafficSources: []domain.TrafficSource{
			{Channel: "Direct", Value: int64(ms.Value(domain.KeyDirectVisits))},
			{Channel: "Search", Value: int64(ms.Value(domain.KeySearchVisits))},
			{Channel: "Social", Value: int64(ms.Value(domain.KeySocialVisits))},
			{Channel: "Referral", Value: int64(ms.Value(domain.KeyReferralVisits))},
		},
	}
}
