package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() PredictionInput {
	return PredictionInput{
		AccountLength:        120,
		InternationalPlan:    0,
		VoiceMailPlan:        1,
		NumberVmailMessages:  25,
		TotalDayMinutes:      265.1,
		TotalDayCalls:        110,
		TotalDayCharge:       45.07,
		TotalEveMinutes:      197.4,
		TotalEveCalls:        99,
		TotalEveCharge:       16.78,
		TotalNightMinutes:    244.7,
		TotalNightCalls:      91,
		TotalNightCharge:     11.01,
		TotalIntlMinutes:     10.0,
		TotalIntlCalls:       3,
		TotalIntlCharge:      2.7,
		CustomerServiceCalls: 1,
		CustomerID:           "c-1",
		CustomerName:         "John Doe",
	}
}

func TestPredictionInputValidate(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		assert.NoError(t, validInput().Validate())
	})

	t.Run("negative usage field rejected", func(t *testing.T) {
		in := validInput()
		in.TotalDayMinutes = -1
		assert.Error(t, in.Validate())
	})

	t.Run("plan flag must be binary", func(t *testing.T) {
		in := validInput()
		in.InternationalPlan = 2
		assert.Error(t, in.Validate())
	})
}

func TestPredictionInputWireNames(t *testing.T) {
	data, err := json.Marshal(validInput())
	require.NoError(t, err)
	body := string(data)

	// the API contract uses customer_name, not name
	assert.Contains(t, body, `"customer_name":"John Doe"`)
	assert.Contains(t, body, `"account_length":120`)
	assert.Contains(t, body, `"customer_service_calls":1`)
	assert.NotContains(t, body, `"name"`)
}

func TestPredictionInputOmitsEmptyIdentity(t *testing.T) {
	in := validInput()
	in.CustomerID = ""
	in.CustomerName = ""
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "customer_id")
	assert.NotContains(t, string(data), "customer_name")
}

func TestDecisionRecomputesThreshold(t *testing.T) {
	cases := []struct {
		prob float64
		want int
	}{
		{0.0, 0},
		{0.49, 0},
		{0.5, 1},
		{0.93, 1},
	}
	for _, c := range cases {
		p := PredictionResponse{ChurnProbability: c.prob, Prediction: 1 - c.want}
		assert.Equal(t, c.want, p.Decision(), "probability %v", c.prob)
	}
}
