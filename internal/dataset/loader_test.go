package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"churn-insights-go/internal/types"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "customers.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Customer ID", "Customer Name", "Email", "account_length", "International Plan", "voice_mail_plan", "total_day_minutes", "total_day_calls", "customer_service_calls"},
		{"c-1", "John Doe", "john@example.com", 120, "yes", 0, 265.1, 110, 1},
		{"", "No ID Row", "skip@example.com", 10, 0, 0, 1.0, 1, 0},
		{"c-2", "Sarah Johnson", "sarah@example.com", 210, 1, "no", 189.5, 95, 3},
	})

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 2) // row without a customer id is skipped

	assert.Equal(t, "c-1", recs[0].CustomerID)
	assert.Equal(t, "John Doe", recs[0].CustomerName)
	assert.Equal(t, "john@example.com", recs[0].Email)
	assert.Equal(t, 120, recs[0].AccountLength)
	assert.Equal(t, 1, recs[0].InternationalPlan) // "yes" parsed as 1
	assert.Equal(t, 0, recs[0].VoiceMailPlan)
	assert.Equal(t, 265.1, recs[0].TotalDayMinutes)
	assert.Equal(t, 110, recs[0].TotalDayCalls)

	assert.Equal(t, "c-2", recs[1].CustomerID)
	assert.Equal(t, 1, recs[1].InternationalPlan)
	assert.Equal(t, 0, recs[1].VoiceMailPlan) // "no" parsed as 0
	assert.Equal(t, 3, recs[1].CustomerServiceCalls)
}

func TestLoadRejectsEmptyWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"customer_id", "account_length"},
	})
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	recs := []types.CustomerRecord{
		{PredictionInput: types.PredictionInput{InternationalPlan: 1, VoiceMailPlan: 1, TotalDayMinutes: 200, CustomerServiceCalls: 5}},
		{PredictionInput: types.PredictionInput{TotalDayMinutes: 100, CustomerServiceCalls: 1}},
	}
	s := Summarize(recs)
	assert.Equal(t, 2, s.TotalCustomers)
	assert.Equal(t, 1, s.IntlPlanCount)
	assert.Equal(t, 1, s.VoiceMailPlanCount)
	assert.Equal(t, 1, s.FrequentCallers)
	assert.Equal(t, 150.0, s.AvgDayMinutes)
	assert.Equal(t, 3.0, s.AvgServiceCalls)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
}
