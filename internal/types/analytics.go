package types

// --------------------------------------------
// Aggregate analytics from /analytics/dashboard
// --------------------------------------------
// HourlyDistribution maps an hour label ("0".."23") to a traffic count.
// Keys are not necessarily contiguous; missing hours mean zero traffic.
type AnalyticsResponse struct {
	TotalPredictions   int            `json:"total_predictions"`
	ChurnRate          float64        `json:"churn_rate"`
	AvgConfidence      float64        `json:"avg_confidence"`
	PredictionsToday   int            `json:"predictions_today"`
	HighRiskCustomers  int            `json:"high_risk_customers"`
	HourlyDistribution map[string]int `json:"hourly_distribution"`
}

// --------------------------------------------
// Model performance from /model/metrics
// --------------------------------------------
type ModelMetricsResponse struct {
	ModelVersion      string             `json:"model_version"`
	TrainingDate      string             `json:"training_date"`
	Accuracy          float64            `json:"accuracy"`
	Precision         float64            `json:"precision"`
	Recall            float64            `json:"recall"`
	F1Score           float64            `json:"f1_score"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	ConfusionMatrix   *ConfusionMatrix   `json:"confusion_matrix,omitempty"`
}

type ConfusionMatrix struct {
	TruePositive  []int `json:"true_positive"`
	FalsePositive []int `json:"false_positive"`
	FalseNegative []int `json:"false_negative"`
	TrueNegative  []int `json:"true_negative"`
}

// --------------------------------------------
// Retrain acknowledgement from /model/retrain
// --------------------------------------------
type RetrainResponse struct {
	Message string `json:"message"`
}
