package domain

// DailyTraffic 時間序列中的單日資料
type DailyTraffic struct {
	Date           string `json:"date"`
	Visits         int64  `json:"visits"`
	Pageviews      int64  `json:"pageviews"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// TimeseriesStats 每日造訪數的統計值
type TimeseriesStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Max    float64 `json:"max"`
}
