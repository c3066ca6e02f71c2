package synth

import (
	"math"
	"time"

	"traffic-analyzer/internal/domain"
)

const (
	weekendFactor  = 0.7
	trendPerDay    = 0.01
	timeseriesSalt = "timeseries:"
)

// Timeseries 產生以 end 為最後一天、共 days 天的每日流量。
// 使用獨立的亂數流 (SHA-256("timeseries:"+domain))，不影響 Synthesize 的抽樣順序。
func Timeseries(domainName string, monthlyVisitors float64, end time.Time, days int) []domain.DailyTraffic {
	if days <= 0 {
		return nil
	}
	rng := newStream(timeseriesSalt + domainName)
	dailyAverage := monthlyVisitors / 30
	y, m, d := end.UTC().Date()
	lastDay := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	points := make([]domain.DailyTraffic, 0, days)
	for i := 0; i < days; i++ {
		day := lastDay.AddDate(0, 0, -(days - i - 1))

		factor := 1.0
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			factor = weekendFactor
		}
		random := rng.uniform(0.8, 1.2)
		trend := 1 + (float64(i)-float64(days)/2)*trendPerDay

		visits := math.Floor(dailyAverage * factor * random * trend)
		pageviews := math.Floor(visits * rng.uniform(2.0, 4.0))

		points = append(points, domain.DailyTraffic{
			Date:           day.Format("2006-01-02"),
			Visits:         atLeastOne(visits),
			Pageviews:      atLeastOne(pageviews),
			UniqueVisitors: atLeastOne(math.Floor(visits * uniqueVisitorsRatio)),
		})
	}
	return points
}

func atLeastOne(v float64) int64 {
	if v < 1 {
		return 1
	}
	return int64(v)
}
