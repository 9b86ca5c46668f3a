package types

import "github.com/go-playground/validator/v10"

// Risk buckets as reported by the prediction API.
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
	RiskLow    = "LOW"
)

// ChurnThreshold is the decision cut-off applied to churn_probability.
// The server is assumed to use the same threshold; Decision() recomputes it
// locally rather than trusting the wire field.
const ChurnThreshold = 0.5

// PredictionInput is the feature vector posted to /predict. Usage fields are
// non-negative; the two plan flags are strictly 0 or 1.
type PredictionInput struct {
	AccountLength        int     `json:"account_length" validate:"gte=0"`
	InternationalPlan    int     `json:"international_plan" validate:"oneof=0 1"`
	VoiceMailPlan        int     `json:"voice_mail_plan" validate:"oneof=0 1"`
	NumberVmailMessages  int     `json:"number_vmail_messages" validate:"gte=0"`
	TotalDayMinutes      float64 `json:"total_day_minutes" validate:"gte=0"`
	TotalDayCalls        int     `json:"total_day_calls" validate:"gte=0"`
	TotalDayCharge       float64 `json:"total_day_charge" validate:"gte=0"`
	TotalEveMinutes      float64 `json:"total_eve_minutes" validate:"gte=0"`
	TotalEveCalls        int     `json:"total_eve_calls" validate:"gte=0"`
	TotalEveCharge       float64 `json:"total_eve_charge" validate:"gte=0"`
	TotalNightMinutes    float64 `json:"total_night_minutes" validate:"gte=0"`
	TotalNightCalls      int     `json:"total_night_calls" validate:"gte=0"`
	TotalNightCharge     float64 `json:"total_night_charge" validate:"gte=0"`
	TotalIntlMinutes     float64 `json:"total_intl_minutes" validate:"gte=0"`
	TotalIntlCalls       int     `json:"total_intl_calls" validate:"gte=0"`
	TotalIntlCharge      float64 `json:"total_intl_charge" validate:"gte=0"`
	CustomerServiceCalls int     `json:"customer_service_calls" validate:"gte=0"`
	CustomerID           string  `json:"customer_id,omitempty"`
	CustomerName         string  `json:"customer_name,omitempty"`
}

var validate = validator.New()

func (p PredictionInput) Validate() error {
	return validate.Struct(p)
}

// PredictionResponse is a single prediction result.
type PredictionResponse struct {
	PredictionID      string             `json:"prediction_id"`
	ChurnProbability  float64            `json:"churn_probability"`
	Prediction        int                `json:"prediction"`
	Confidence        float64            `json:"confidence"`
	RiskLevel         string             `json:"risk_level"`
	Message           string             `json:"message"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
	Timestamp         string             `json:"timestamp"`
	CustomerID        string             `json:"customer_id,omitempty"`
}

// Decision recomputes the thresholded churn decision from the probability.
func (p PredictionResponse) Decision() int {
	if p.ChurnProbability >= ChurnThreshold {
		return 1
	}
	return 0
}

// CustomerRecord is a workbook row: the feature vector plus the identity
// columns that never go to the prediction API.
type CustomerRecord struct {
	PredictionInput
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	SignupDate string `json:"signup_date,omitempty"`
}

type BatchSummary struct {
	TotalCustomers int     `json:"total_customers"`
	ChurnCount     int     `json:"churn_count"`
	ChurnRate      float64 `json:"churn_rate"`
	AvgConfidence  float64 `json:"avg_confidence"`
}

type BatchPredictionResponse struct {
	BatchID     string               `json:"batch_id"`
	Predictions []PredictionResponse `json:"predictions"`
	Summary     BatchSummary         `json:"summary"`
}

type PredictionHistory struct {
	Predictions []PredictionResponse `json:"predictions"`
	TotalCount  int                  `json:"total_count"`
	HasMore     bool                 `json:"has_more"`
}

type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelStatus string `json:"model_status,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}
