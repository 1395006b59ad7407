package algo

import (
	"fmt"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
)

// Cards builds the five headline KPI cards in display order: pilot productivity,
// productivity multiple, pilot QA churn, pilot output share and availability.
func Cards(s schema.PeriodSummary, cfg *contract.Config) []schema.KpiCard {
	rosterShare := schema.SafeDiv(float64(cfg.PilotRoster), float64(cfg.PilotRoster+cfg.NonPilotRoster)) * 100

	return []schema.KpiCard{
		{
			Key:     schema.CardPilotProductivity,
			Label:   "Pilot Productivity",
			Value:   fmt.Sprintf("%.3f", s.PilotProductivity),
			Delta:   fmt.Sprintf("%+.0f%% vs baseline", s.ProductivityDeltaPercent),
			Context: fmt.Sprintf("tickets / person-day (baseline: %.3f)", cfg.BaselineProductivity),
			Tone:    toneAtLeast(s.ProductivityDelta, 0),
		},
		{
			Key:     schema.CardMultiple,
			Label:   "Productivity Multiple",
			Value:   fmt.Sprintf("%.2f×", s.ProductivityMultiple),
			Delta:   multipleDelta(s.ProductivityMultiple),
			Context: fmt.Sprintf("%d high-confidence weeks", s.ValidWeeks),
			Tone:    toneAtLeast(s.ProductivityMultiple, 1),
		},
		{
			Key:     schema.CardPilotQAChurn,
			Label:   "Pilot QA Churn",
			Value:   fmt.Sprintf("%.1f%%", s.PilotQAChurn),
			Delta:   fmt.Sprintf("%+.0f%% vs baseline (%.1f%%)", s.QAChurnDeltaPercent, cfg.BaselineQAChurn),
			Context: fmt.Sprintf("Non-pilot: %.1f%%", s.NonPilotQAChurn),
			Tone:    toneAtLeast(s.NonPilotQAChurn, s.PilotQAChurn),
		},
		{
			Key:     schema.CardOutputShare,
			Label:   "Pilot Output Share",
			Value:   fmt.Sprintf("%.1f%%", s.PilotShare*100),
			Delta:   fmt.Sprintf("%d of %d tickets", s.PilotTickets, s.TotalTickets),
			Context: fmt.Sprintf("%.0f%% of developers", rosterShare),
			Tone:    schema.ToneNeutral,
		},
		{
			Key:     schema.CardAvailability,
			Label:   "Availability",
			Value:   fmt.Sprintf("%.0f%%", s.Availability*100),
			Delta:   fmt.Sprintf("%d of %d weeks with pilot output", s.AvailableWeeks, s.Weeks),
			Context: fmt.Sprintf("%d pilot developers", cfg.PilotRoster),
			Tone:    toneAtLeast(s.Availability, 0.5),
		},
	}
}

func multipleDelta(multiple float64) string {
	if multiple >= 1 {
		return "Pilot ≥ Non-Pilot"
	}
	return "Non-Pilot ahead"
}

func toneAtLeast(value, threshold float64) schema.Tone {
	if value >= threshold {
		return schema.TonePositive
	}
	return schema.ToneWarning
}
