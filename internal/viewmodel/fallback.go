package viewmodel

import "churn-insights-go/internal/types"

// Fixed illustrative constants substituted when the prediction API is
// unreachable, so passive views never render blank. Every snapshot built
// from them is tagged SourceFallback; user-initiated actions never get
// fallback results.

// FallbackAnalytics returns the canned aggregate. Fresh value on every call,
// structurally identical each time.
func FallbackAnalytics() types.AnalyticsResponse {
	return types.AnalyticsResponse{
		TotalPredictions:  1247,
		ChurnRate:         0.143,
		AvgConfidence:     0.872,
		PredictionsToday:  42,
		HighRiskCustomers: 224,
	}
}

// FallbackTrend is the historical Jan-Jun demo table; monthly labels rather
// than hourly ones, which the chart renders just the same.
func FallbackTrend() []TrendPoint {
	return []TrendPoint{
		{Label: "Jan", Churn: 45, Retained: 320},
		{Label: "Feb", Churn: 52, Retained: 315},
		{Label: "Mar", Churn: 48, Retained: 325},
		{Label: "Apr", Churn: 61, Retained: 310},
		{Label: "May", Churn: 55, Retained: 305},
		{Label: "Jun", Churn: 58, Retained: 312},
	}
}

func FallbackDashboard() DashboardSnapshot {
	return DashboardSnapshot{
		Analytics: FallbackAnalytics(),
		Risk:      DefaultRiskDistribution(),
		Trend:     FallbackTrend(),
		Source:    SourceFallback,
	}
}

func FallbackModelMetrics() types.ModelMetricsResponse {
	return types.ModelMetricsResponse{
		ModelVersion: "unknown",
		Accuracy:     0.872,
		Precision:    0.85,
		Recall:       0.81,
		F1Score:      0.83,
	}
}

func FallbackAnalyticsOverview() AnalyticsOverview {
	return AnalyticsOverview{
		Analytics: FallbackAnalytics(),
		Metrics:   FallbackModelMetrics(),
		Risk:      DefaultRiskDistribution(),
		Trend:     FallbackTrend(),
		Source:    SourceFallback,
	}
}
