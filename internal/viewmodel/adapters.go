package viewmodel

import (
	"math"
	"sort"
	"strconv"

	"churn-insights-go/internal/types"
)

// Provenance tag on every assembled view model, so consumers can render a
// disclosure banner instead of silently showing substituted data.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// RiskDistribution is a sample statistic over recent predictions, not a
// population one. SampleSize is carried so the consumer can label it.
// Percentages are rounded independently and may not sum to exactly 100.
type RiskDistribution struct {
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Low        int `json:"low"`
	HighCount  int `json:"high_count"`
	MedCount   int `json:"medium_count"`
	LowCount   int `json:"low_count"`
	SampleSize int `json:"sample_size"`
}

// DefaultRiskDistribution is the fixed placeholder shown when there is no
// sample to compute from. The split is illustrative, not derived from data.
func DefaultRiskDistribution() RiskDistribution {
	return RiskDistribution{High: 18, Medium: 32, Low: 50}
}

func RiskDistributionFromSample(preds []types.PredictionResponse) RiskDistribution {
	if len(preds) == 0 {
		return DefaultRiskDistribution()
	}
	d := RiskDistribution{SampleSize: len(preds)}
	for _, p := range preds {
		switch p.RiskLevel {
		case types.RiskHigh:
			d.HighCount++
		case types.RiskMedium:
			d.MedCount++
		case types.RiskLow:
			d.LowCount++
		}
	}
	d.High = pct(d.HighCount, d.SampleSize)
	d.Medium = pct(d.MedCount, d.SampleSize)
	d.Low = pct(d.LowCount, d.SampleSize)
	return d
}

// RiskDistributionFromPopulation estimates the split from aggregate counts:
// the API reports only the high-risk headcount, the medium bucket is assumed
// to be 30% of the population and the rest is low.
func RiskDistributionFromPopulation(total, highRisk int) RiskDistribution {
	if total <= 0 {
		return DefaultRiskDistribution()
	}
	medium := int(math.Round(float64(total) * 0.3))
	low := total - highRisk - medium
	if low < 0 {
		low = 0
	}
	d := RiskDistribution{
		HighCount:  highRisk,
		MedCount:   medium,
		LowCount:   low,
		SampleSize: highRisk + medium + low,
	}
	d.High = pct(d.HighCount, d.SampleSize)
	d.Medium = pct(d.MedCount, d.SampleSize)
	d.Low = pct(d.LowCount, d.SampleSize)
	return d
}

func pct(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// TrendPoint is one bar of the churn/retained chart. Label is an hour
// ("9:00") for live data and a month name for the fallback table.
type TrendPoint struct {
	Label    string `json:"label"`
	Churn    int    `json:"churn"`
	Retained int    `json:"retained"`
}

// HourlyTrend projects the aggregate hourly traffic counts into an estimated
// churn/retained split using the global churn rate. This is a linear
// apportionment, not a measured per-hour outcome: the source counts are
// traffic volumes. Hours are sorted numerically; unparseable keys are
// dropped.
func HourlyTrend(hourly map[string]int, churnRate float64) []TrendPoint {
	type hc struct {
		hour  int
		count int
	}
	entries := make([]hc, 0, len(hourly))
	for k, v := range hourly {
		h, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		entries = append(entries, hc{hour: h, count: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].hour < entries[j].hour })
	out := make([]TrendPoint, 0, len(entries))
	for _, e := range entries {
		out = append(out, TrendPoint{
			Label:    strconv.Itoa(e.hour) + ":00",
			Churn:    int(math.Round(float64(e.count) * churnRate)),
			Retained: int(math.Round(float64(e.count) * (1 - churnRate))),
		})
	}
	return out
}

type FeatureWeight struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// TopFeatures ranks feature importances descending by weight, ties broken by
// name so the ordering is stable across refreshes.
func TopFeatures(importance map[string]float64, limit int) []FeatureWeight {
	out := make([]FeatureWeight, 0, len(importance))
	for k, v := range importance {
		out = append(out, FeatureWeight{Feature: k, Importance: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].Feature < out[j].Feature
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DashboardSnapshot is everything the dashboard view renders in one shot.
type DashboardSnapshot struct {
	Analytics types.AnalyticsResponse    `json:"analytics"`
	Recent    []types.PredictionResponse `json:"recent_predictions"`
	Risk      RiskDistribution           `json:"risk_distribution"`
	Trend     []TrendPoint               `json:"hourly_trend"`
	Source    string                     `json:"source"`
}

func BuildDashboard(analytics types.AnalyticsResponse, recent []types.PredictionResponse) DashboardSnapshot {
	return DashboardSnapshot{
		Analytics: analytics,
		Recent:    recent,
		Risk:      RiskDistributionFromSample(recent),
		Trend:     HourlyTrend(analytics.HourlyDistribution, analytics.ChurnRate),
		Source:    SourceLive,
	}
}

// AnalyticsOverview backs the analytics page: population-level risk split,
// model performance and the ranked feature importances.
type AnalyticsOverview struct {
	Analytics   types.AnalyticsResponse    `json:"analytics"`
	Metrics     types.ModelMetricsResponse `json:"model_metrics"`
	Risk        RiskDistribution           `json:"risk_distribution"`
	Trend       []TrendPoint               `json:"hourly_trend"`
	TopFeatures []FeatureWeight            `json:"top_features"`
	Source      string                     `json:"source"`
}

func BuildAnalyticsOverview(analytics types.AnalyticsResponse, metrics types.ModelMetricsResponse) AnalyticsOverview {
	return AnalyticsOverview{
		Analytics:   analytics,
		Metrics:     metrics,
		Risk:        RiskDistributionFromPopulation(analytics.TotalPredictions, analytics.HighRiskCustomers),
		Trend:       HourlyTrend(analytics.HourlyDistribution, analytics.ChurnRate),
		TopFeatures: TopFeatures(metrics.FeatureImportance, 6),
		Source:      SourceLive,
	}
}
