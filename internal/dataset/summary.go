package dataset

import (
	"fmt"

	"churn-insights-go/internal/logger"
	"churn-insights-go/internal/types"
)

type Summary struct {
	TotalCustomers     int     `json:"total_customers"`
	IntlPlanCount      int     `json:"international_plan_count"`
	VoiceMailPlanCount int     `json:"voice_mail_plan_count"`
	AvgDayMinutes      float64 `json:"avg_day_minutes"`
	AvgServiceCalls    float64 `json:"avg_service_calls"`
	FrequentCallers    int     `json:"frequent_callers"`
}

// frequent-caller cut-off: four or more support calls is the usual churn
// warning sign in this dataset
const frequentCallerMin = 4

// LoadAndSummarize reads the customer workbook and produces the compact
// summary logged at boot and served alongside the dataset demo.
func LoadAndSummarize(path string) (Summary, error) {
	log := logger.NewComponent("dataset.summary").WithField("path", path)
	log.Info("opening customer workbook")
	records, err := Load(path)
	if err != nil {
		log.WithError(err).Error("load failed")
		return Summary{}, fmt.Errorf("load: %w", err)
	}
	s := Summarize(records)
	log.WithField("total_customers", s.TotalCustomers).Info("workbook summarized")
	return s, nil
}

func Summarize(records []types.CustomerRecord) Summary {
	s := Summary{TotalCustomers: len(records)}
	if len(records) == 0 {
		return s
	}
	var daySum, svcSum float64
	for _, r := range records {
		if r.InternationalPlan == 1 {
			s.IntlPlanCount++
		}
		if r.VoiceMailPlan == 1 {
			s.VoiceMailPlanCount++
		}
		if r.CustomerServiceCalls >= frequentCallerMin {
			s.FrequentCallers++
		}
		daySum += r.TotalDayMinutes
		svcSum += float64(r.CustomerServiceCalls)
	}
	s.AvgDayMinutes = daySum / float64(len(records))
	s.AvgServiceCalls = svcSum / float64(len(records))
	return s
}
