package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"churn-insights-go/internal/types"
)

// Load reads customer feature rows from the first sheet of an .xlsx
// workbook. Columns are resolved by header name after normalization, so
// "Total Day Minutes" and "total_day_minutes" both match. Rows without a
// customer id are skipped.
func Load(path string) ([]types.CustomerRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[normalize(h)] = i
	}

	var out []types.CustomerRecord
	for i, r := range rows {
		if i == 0 {
			continue
		}
		rec := types.CustomerRecord{}
		rec.CustomerID = text(r, cols, "customer_id", "id")
		rec.CustomerName = text(r, cols, "customer_name", "name")
		rec.Email = text(r, cols, "email")
		rec.Phone = text(r, cols, "phone")
		rec.SignupDate = text(r, cols, "signup_date")

		rec.AccountLength = integer(r, cols, "account_length")
		rec.InternationalPlan = integer(r, cols, "international_plan")
		rec.VoiceMailPlan = integer(r, cols, "voice_mail_plan")
		rec.NumberVmailMessages = integer(r, cols, "number_vmail_messages")
		rec.TotalDayMinutes = number(r, cols, "total_day_minutes")
		rec.TotalDayCalls = integer(r, cols, "total_day_calls")
		rec.TotalDayCharge = number(r, cols, "total_day_charge")
		rec.TotalEveMinutes = number(r, cols, "total_eve_minutes")
		rec.TotalEveCalls = integer(r, cols, "total_eve_calls")
		rec.TotalEveCharge = number(r, cols, "total_eve_charge")
		rec.TotalNightMinutes = number(r, cols, "total_night_minutes")
		rec.TotalNightCalls = integer(r, cols, "total_night_calls")
		rec.TotalNightCharge = number(r, cols, "total_night_charge")
		rec.TotalIntlMinutes = number(r, cols, "total_intl_minutes")
		rec.TotalIntlCalls = integer(r, cols, "total_intl_calls")
		rec.TotalIntlCharge = number(r, cols, "total_intl_charge")
		rec.CustomerServiceCalls = integer(r, cols, "customer_service_calls")

		if rec.CustomerID == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func normalize(h string) string {
	n := strings.ToLower(strings.TrimSpace(h))
	n = strings.ReplaceAll(n, " ", "_")
	n = strings.ReplaceAll(n, "-", "_")
	return n
}

func text(row []string, cols map[string]int, names ...string) string {
	for _, n := range names {
		if idx, ok := cols[n]; ok && idx < len(row) {
			if v := strings.TrimSpace(row[idx]); v != "" {
				return v
			}
		}
	}
	return ""
}

func number(row []string, cols map[string]int, names ...string) float64 {
	v, _ := strconv.ParseFloat(text(row, cols, names...), 64)
	return v
}

func integer(row []string, cols map[string]int, names ...string) int {
	raw := text(row, cols, names...)
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	// plan flags sometimes come as yes/no
	switch strings.ToLower(raw) {
	case "yes", "true":
		return 1
	}
	return 0
}
