package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"traffic-analyzer/internal/domain"
	"traffic-analyzer/internal/synth"
)

const (
	MaxBatchDomains  = 10
	batchConcurrency = 5
	TimeseriesDays   = 30
)

// DataSource 回傳給前端的資料來源說明
const DataSource = "Synthetic Model v" + synth.DerivationVersion + " (WHOIS + DNS + Search Index)"

var (
	ErrInvalidDomain = errors.New("invalid domain")
	ErrBatchSize     = fmt.Errorf("provide 1-%d domains", MaxBatchDomains)
)

type SeedCollector interface {
	Collect(ctx context.Context, domainName string) domain.SeedObservations
}

// Analysis 單一網域的完整合成結果
type Analysis struct {
	Domain  string
	Seed    domain.SeedObservations
	Metrics domain.MetricSet
	Summary domain.FrontendSummary
}

// Response 轉為 POST /api/traffic/analyze 的回傳格式
func (a Analysis) Response() domain.AnalyzeResponse {
	return domain.AnalyzeResponse{
		Domain:  a.Domain,
		Metrics: a.Summary.Metrics,
		Details: domain.TrafficDetails{
			TrafficSources: a.Summary.TrafficSources,
			DataSource:     DataSource,
		},
	}
}

// Overview GET /api/traffic/analyze/:domain 的完整回傳
type Overview struct {
	Domain            string                  `json:"domain"`
	Seed              domain.SeedObservations `json:"seed"`
	Metrics           domain.MetricSet        `json:"metrics"`
	Summary           domain.FrontendSummary  `json:"summary"`
	Timeseries        []domain.DailyTraffic   `json:"timeseries"`
	TimeseriesStats   domain.TimeseriesStats  `json:"timeseries_stats"`
	AnalysisTimestamp string                  `json:"analysis_timestamp"`
	Version           string                  `json:"version"`
	DataSource        string                  `json:"data_source"`
}

type AnalyzerService struct {
	Seeds SeedCollector
}

func NewAnalyzerService(seeds SeedCollector) *AnalyzerService {
	return &AnalyzerService{Seeds: seeds}
}

// Analyze 正規化 -> 收集種子 -> 合成 -> 摘要
func (s *AnalyzerService) Analyze(ctx context.Context, raw string) (Analysis, error) {
	name := NormalizeDomain(raw)
	if name == "" {
		return Analysis{}, ErrInvalidDomain
	}

	seed := s.Seeds.Collect(ctx, name).Sanitized()
	ms := synth.Synthesize(name, seed)
	return Analysis{
		Domain:  name,
		Seed:    seed,
		Metrics: ms,
		Summary: synth.Summarize(ms),
	}, nil
}

// AnalyzeBatch 併發分析多個網域，無效的項目略過
func (s *AnalyzerService) AnalyzeBatch(ctx context.Context, raws []string) (map[string]domain.AnalyzeResponse, error) {
	if len(raws) == 0 || len(raws) > MaxBatchDomains {
		return nil, ErrBatchSize
	}

	p := pool.NewWithResults[Analysis]().WithMaxGoroutines(batchConcurrency)
	seen := make(map[string]bool)
	for _, raw := range raws {
		name := NormalizeDomain(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		p.Go(func() Analysis {
			a, err := s.Analyze(ctx, name)
			if err != nil {
				// 已正規化過，不應發生
				logrus.Errorf("[Batch] %s: %v", name, err)
			}
			return a
		})
	}

	results := make(map[string]domain.AnalyzeResponse, len(seen))
	for _, a := range p.Wait() {
		if a.Domain != "" {
			results[a.Domain] = a.Response()
		}
	}
	logrus.Infof("📦 [Batch] 批次分析完成: %d/%d", len(results), len(raws))
	return results, nil
}

// Overview 完整分析加上以 end 為最後一天的 30 日時間序列
func (s *AnalyzerService) Overview(ctx context.Context, raw string, end time.Time) (Overview, error) {
	a, err := s.Analyze(ctx, raw)
	if err != nil {
		return Overview{}, err
	}

	series := synth.Timeseries(a.Domain, a.Metrics.Value(domain.KeyMonthlyVisitors), end, TimeseriesDays)
	summary, err := summarizeTimeseries(series)
	if err != nil {
		return Overview{}, fmt.Errorf("timeseries stats: %w", err)
	}

	return Overview{
		Domain:            a.Domain,
		Seed:              a.Seed,
		Metrics:           a.Metrics,
		Summary:           a.Summary,
		Timeseries:        series,
		TimeseriesStats:   summary,
		AnalysisTimestamp: end.UTC().Format(time.RFC3339),
		Version:           synth.DerivationVersion,
		DataSource:        DataSource,
	}, nil
}

func summarizeTimeseries(series []domain.DailyTraffic) (domain.TimeseriesStats, error) {
	visits := make(stats.Float64Data, 0, len(series))
	for _, p := range series {
		visits = append(visits, float64(p.Visits))
	}

	mean, err := visits.Mean()
	if err != nil {
		return domain.TimeseriesStats{}, err
	}
	median, err := visits.Median()
	if err != nil {
		return domain.TimeseriesStats{}, err
	}
	stddev, err := visits.StandardDeviation()
	if err != nil {
		return domain.TimeseriesStats{}, err
	}
	maxVisits, err := visits.Max()
	if err != nil {
		return domain.TimeseriesStats{}, err
	}

	return domain.TimeseriesStats{
		Mean:   round2(mean),
		Median: median,
		StdDev: round2(stddev),
		Max:    maxVisits,
	}, nil
}

func round2(v float64) float64 {
	r, _ := stats.Round(v, 2)
	return r
}
