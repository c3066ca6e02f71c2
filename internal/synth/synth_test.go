package synth

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"traffic-analyzer/internal/domain"
)

var update = flag.Bool("update", false, "rewrite golden files under testdata/")

var scenarioA = domain.SeedObservations{
	DomainAgeDays:    3650,
	SearchIndexCount: 50000,
	NameserverCount:  2,
	RegistrarName:    "Example Registrar",
}

func TestSynthesize_Deterministic(t *testing.T) {
	t.Parallel()

	first := Synthesize("example.com", scenarioA)
	second := Synthesize("example.com", scenarioA)

	require.Empty(t, cmp.Diff(first.Entries(), second.Entries()))

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestSynthesize_DifferentDomainsDiverge(t *testing.T) {
	t.Parallel()

	a := Synthesize("example.com", scenarioA)
	b := Synthesize("example.org", scenarioA)

	require.NotEmpty(t, cmp.Diff(a.Entries(), b.Entries()), "different domains should not share a stream")
}

func TestSynthesize_DrawCount(t *testing.T) {
	t.Parallel()

	for _, seed := range []domain.SeedObservations{domain.DefaultSeed(), scenarioA} {
		_, draws := derive("example.com", seed)
		require.Equal(t, drawsPerDerivation, draws, "the draw sequence is part of the output contract")
	}
}

func TestSynthesize_KeysInOrder(t *testing.T) {
	t.Parallel()

	ms := Synthesize("example.com", domain.DefaultSeed())
	require.Equal(t, 40, ms.Len())

	entries := ms.Entries()
	for i, key := range domain.MetricKeys {
		require.Equal(t, key, entries[i].Key)
	}
}

func TestSynthesize_Invariants(t *testing.T) {
	t.Parallel()

	indexCounts := []int64{0, 1, 120, 5000, 50000, 2_000_000, 900_000_000}
	ages := []int64{0, 30, 365, 3650, 12000}
	nameservers := []int64{0, 1, 2, 3, 4, 8}

	n := 0
	for _, idx := range indexCounts {
		for _, age := range ages {
			for _, ns := range nameservers {
				n++
				name := fmt.Sprintf("site-%d.example", n)
				seed := domain.SeedObservations{DomainAgeDays: age, SearchIndexCount: idx, NameserverCount: ns}
				ms := Synthesize(name, seed)

				require.Equal(t, len(domain.MetricKeys), ms.Len(), name)

				// 比例總和為 1
				var shareSum float64
				for _, key := range []string{
					domain.KeyDirectShare, domain.KeySearchShare, domain.KeySocialShare,
					domain.KeyReferralShare, domain.KeyMailShare, domain.KeyPaidShare,
				} {
					v := ms.Value(key)
					require.GreaterOrEqual(t, v, 0.0, "%s %s", name, key)
					shareSum += v
				}
				require.InDelta(t, 1.0, shareSum, 1e-9, name)

				// 來源人數不超過每月訪客
				visitors := ms.Value(domain.KeyMonthlyVisitors)
				var countSum float64
				for _, key := range []string{
					domain.KeyDirectVisits, domain.KeySearchVisits, domain.KeySocialVisits, domain.KeyReferralVisits,
				} {
					v := ms.Value(key)
					require.GreaterOrEqual(t, v, 0.0)
					require.Equal(t, math.Floor(v), v, "%s must be an integer", key)
					countSum += v
				}
				require.LessOrEqual(t, countSum, visitors, name)

				// 下限
				require.GreaterOrEqual(t, visitors, 1000.0)
				require.GreaterOrEqual(t, ms.Value(domain.KeyEstimatedBacklinks), 100.0)

				// 衍生值
				pageviews := ms.Value(domain.KeyMonthlyPageviews)
				require.Equal(t, math.Round(pageviews/visitors*100)/100, ms.Value(domain.KeyPagesPerVisit), name)
				require.Equal(t, math.Floor(visitors/4.3), ms.Value(domain.KeyWeeklyVisitors))
				require.Equal(t, math.Floor(visitors/30.4), ms.Value(domain.KeyDailyVisitors))
				require.LessOrEqual(t, ms.Value(domain.KeyDailyVisitors), ms.Value(domain.KeyWeeklyVisitors))

				authority := ms.Value(domain.KeyAuthorityScore)
				require.GreaterOrEqual(t, authority, 0.0)
				require.LessOrEqual(t, authority, 100.0)
				require.LessOrEqual(t, ms.Value(domain.KeyTrustScore), 100.0)
				require.Equal(t, 100.0, ms.Value(domain.KeyHTTPSScore))
			}
		}
	}
}

func TestSynthesize_ScenarioB_DefaultSeed(t *testing.T) {
	t.Parallel()

	ms := Synthesize("example.com", domain.SeedObservations{DomainAgeDays: 365})

	require.Equal(t, 1000.0, ms.Value(domain.KeyMonthlyVisitors), "visitor floor applies")
	require.Equal(t, 50.0, ms.Value(domain.KeyDNSStabilityScore))
	require.Equal(t, 100.0, ms.Value(domain.KeyEstimatedBacklinks))
	require.Equal(t, 0.0, ms.Value(domain.KeyRankingKeywords))
	require.Equal(t, 232.0, ms.Value(domain.KeyWeeklyVisitors))
	require.Equal(t, 32.0, ms.Value(domain.KeyDailyVisitors))
	require.Equal(t, 850.0, ms.Value(domain.KeyUniqueVisitors))
}

func TestSynthesize_ScenarioA_Golden(t *testing.T) {
	ms := Synthesize("example.com", scenarioA)

	// 不經抽樣的欄位
	require.Equal(t, 3650.0, ms.Value(domain.KeyDomainAgeDays))
	require.Equal(t, 9.99, ms.Value(domain.KeyDomainAgeYears))
	require.Equal(t, 50000.0, ms.Value(domain.KeySearchIndexCount))
	require.Equal(t, 2.0, ms.Value(domain.KeyNameserverCount))
	require.Equal(t, 80.0, ms.Value(domain.KeyDNSStabilityScore))

	// 抽樣欄位
	require.Equal(t, 69.87, ms.Value(domain.KeyAuthorityScore))
	require.Equal(t, 3920000.0, ms.Value(domain.KeyMonthlyVisitors))
	require.Equal(t, 0.1003, ms.Value(domain.KeyPaidShare))

	got, err := json.Marshal(ms)
	require.NoError(t, err)
	got = append(got, '\n')

	path := filepath.Join("testdata", "scenario_a.golden")
	if *update {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, got, 0o644))
		t.Logf("recorded golden output: %s", path)
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		t.Fatalf("golden file %s is missing; rerun with -update to record it", path)
	}
	require.NoError(t, err)
	require.Equal(t, string(want), string(got), "derivation output changed; bump DerivationVersion and rerun with -update")
}

func TestDNSStabilityScore(t *testing.T) {
	t.Parallel()

	cases := map[int64]float64{0: 50, 1: 50, 2: 80, 3: 80, 4: 95, 13: 95}
	for ns, want := range cases {
		require.Equal(t, want, dnsStabilityScore(ns), "nameservers=%d", ns)
	}
}

func TestTrafficCounts_ScalesDown(t *testing.T) {
	t.Parallel()

	counts := trafficCounts([]float64{0.5, 0.4, 0.3, 0.2}, 1000)

	var sum float64
	for _, c := range counts {
		sum += c
	}
	require.LessOrEqual(t, sum, 1000.0)
	require.Equal(t, [4]float64{357, 285, 214, 142}, counts)
}
