package algo

import (
	"testing"
	"time"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		window   int
		expected []float64
	}{
		{
			name:     "empty",
			values:   nil,
			window:   4,
			expected: []float64{},
		},
		{
			name:     "partial leading window",
			values:   []float64{2, 4, 6, 8, 10},
			window:   3,
			expected: []float64{2, 3, 4, 6, 8},
		},
		{
			name:     "window of one is identity",
			values:   []float64{1, 5, 3},
			window:   1,
			expected: []float64{1, 5, 3},
		},
		{
			name:     "window below one is treated as one",
			values:   []float64{1, 5, 3},
			window:   0,
			expected: []float64{1, 5, 3},
		},
		{
			name:     "window longer than series",
			values:   []float64{3, 5},
			window:   10,
			expected: []float64{3, 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.values, tt.window)
			require.Len(t, got, len(tt.expected))
			for i := range got {
				assert.InDelta(t, tt.expected[i], got[i], 1e-9, "index %d", i)
			}
		})
	}
}

func TestMovingAverageFirstEqualsRaw(t *testing.T) {
	values := []float64{0.7, 0.1, 0.4}
	for window := 1; window <= 5; window++ {
		assert.Equal(t, values[0], MovingAverage(values, window)[0])
	}
}

func week(n int) time.Time {
	return time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*n)
}

func TestTrailingDelta(t *testing.T) {
	weeks := []schema.WeeklyMetrics{
		{Week: week(0), PilotProductivity: 9, NonPilotProductivity: 1},
		{Week: week(1), PilotProductivity: 0.3, NonPilotProductivity: 0.2},
		{Week: week(2), PilotProductivity: 0.3, NonPilotProductivity: 0.2},
	}

	got := TrailingDelta(weeks, 2)
	assert.Equal(t, 2, got.Weeks)
	assert.Equal(t, 50.0, got.Percent)

	all := TrailingDelta(weeks, 10)
	assert.Equal(t, 3, all.Weeks)

	assert.Equal(t, schema.TrailingDelta{}, TrailingDelta(nil, 4))

	zero := TrailingDelta([]schema.WeeklyMetrics{{PilotProductivity: 0.5}}, 1)
	assert.Equal(t, 0.0, zero.Percent)
}

func summaryConfig(t *testing.T) *contract.Config {
	t.Helper()
	input := contract.DefaultRawInput()
	input.PilotRoster = 2
	input.NonPilotRoster = 4
	input.BaselineProductivity = 0.2
	input.BaselineQAChurn = 25
	input.TrailingWeeks = 2
	cfg := &contract.Config{}
	require.NoError(t, contract.ProcessAndValidate(cfg, input))
	return cfg
}

func TestSummarize(t *testing.T) {
	cfg := summaryConfig(t)

	tickets := []schema.AggregatedTicket{
		{TicketID: "1", Week: week(0), Pilot: true, Authors: []string{"ann"}},
		{TicketID: "2", Week: week(0), Pilot: true, Authors: []string{"ann", "ben"}},
		{TicketID: "3", Week: week(0), Pilot: false, Authors: []string{"zed"}},
		{TicketID: "4", Week: week(1), Pilot: false, Authors: []string{"zed", "yan"}},
	}
	weeks := []schema.WeeklyMetrics{
		{Week: week(0), PilotTickets: 4, NonPilotTickets: 2, TotalTickets: 6, PilotProductivity: 0.4, NonPilotProductivity: 0.1},
		{Week: week(1), PilotTickets: 2, NonPilotTickets: 4, TotalTickets: 6, PilotProductivity: 0.2, NonPilotProductivity: 0.2},
		{Week: week(2), PilotTickets: 0, NonPilotTickets: 1, TotalTickets: 1, NonPilotProductivity: 0.05, LowConfidence: true},
	}
	churn := []schema.QaChurnWeekly{
		{Week: week(0), PilotChurned: 1, PilotTickets: 4, NonPilotChurned: 1, NonPilotTickets: 2},
		{Week: week(1), PilotChurned: 0, PilotTickets: 2, NonPilotChurned: 2, NonPilotTickets: 4},
	}

	s := Summarize(tickets, weeks, churn, cfg)

	assert.Equal(t, 3, s.Weeks)
	assert.Equal(t, 2, s.ValidWeeks)
	assert.Equal(t, 2, s.PilotTickets)
	assert.Equal(t, 2, s.NonPilotTickets)
	assert.Equal(t, 4, s.TotalTickets)
	assert.Equal(t, 2, s.PilotAuthors)
	assert.Equal(t, 2, s.NonPilotAuthors)

	// Only the two valid weeks contribute to the means.
	assert.InDelta(t, 0.3, s.PilotProductivity, 1e-9)
	assert.InDelta(t, 0.15, s.NonPilotProductivity, 1e-9)
	assert.InDelta(t, 0.1, s.PilotProductivityStd, 1e-9)
	assert.InDelta(t, 0.05, s.NonPilotProductivityStd, 1e-9)
	assert.InDelta(t, 2.0, s.ProductivityMultiple, 1e-9)
	assert.InDelta(t, 0.1, s.ProductivityDelta, 1e-9)
	assert.InDelta(t, 50.0, s.ProductivityDeltaPercent, 1e-9)

	// 1 of 6 pilot tickets and 3 of 6 non-pilot tickets churned.
	assert.Equal(t, 16.7, s.PilotQAChurn)
	assert.Equal(t, 50.0, s.NonPilotQAChurn)
	assert.InDelta(t, -8.3, s.QAChurnDelta, 1e-9)
	assert.InDelta(t, -33.2, s.QAChurnDeltaPercent, 1e-9)

	assert.InDelta(t, 0.5, s.PilotShare, 1e-9)
	assert.InDelta(t, 0.6667, s.ValidWeekFraction, 1e-9)
	assert.Equal(t, 2, s.AvailableWeeks)
	assert.InDelta(t, 0.6667, s.Availability, 1e-9)
	assert.Equal(t, 2, s.Trailing.Weeks)
}

func TestSummarizeNoValidWeeksUsesAll(t *testing.T) {
	cfg := summaryConfig(t)
	weeks := []schema.WeeklyMetrics{
		{Week: week(0), PilotProductivity: 0.1, NonPilotProductivity: 0.0, LowConfidence: true},
		{Week: week(1), PilotProductivity: 0.3, NonPilotProductivity: 0.0, LowConfidence: true},
	}
	s := Summarize(nil, weeks, nil, cfg)
	assert.Equal(t, 0, s.ValidWeeks)
	assert.InDelta(t, 0.2, s.PilotProductivity, 1e-9)
	assert.Equal(t, 0.0, s.ProductivityMultiple, "zero denominator yields 0")
	assert.Equal(t, 0.0, s.PilotQAChurn)
}

func TestSummarizeZeroBaseline(t *testing.T) {
	cfg := summaryConfig(t)
	cfg.BaselineProductivity = 0
	cfg.BaselineQAChurn = 0
	weeks := []schema.WeeklyMetrics{{Week: week(0), PilotProductivity: 0.3, TotalTickets: 9}}
	s := Summarize(nil, weeks, nil, cfg)
	assert.Equal(t, 0.0, s.ProductivityDeltaPercent)
	assert.Equal(t, 0.0, s.QAChurnDeltaPercent)
}

func TestCards(t *testing.T) {
	cfg := summaryConfig(t)
	s := schema.PeriodSummary{
		Weeks:                    4,
		ValidWeeks:               3,
		PilotTickets:             12,
		TotalTickets:             40,
		PilotProductivity:        0.25,
		ProductivityDelta:        0.05,
		ProductivityDeltaPercent: 25,
		ProductivityMultiple:     1.8,
		PilotQAChurn:             12.5,
		NonPilotQAChurn:          20,
		QAChurnDeltaPercent:      -50,
		PilotShare:               0.3,
		Availability:             0.75,
		AvailableWeeks:           3,
	}

	cards := Cards(s, cfg)
	require.Len(t, cards, 5)

	keys := make([]schema.CardKey, len(cards))
	for i, c := range cards {
		keys[i] = c.Key
	}
	assert.Equal(t, []schema.CardKey{
		schema.CardPilotProductivity,
		schema.CardMultiple,
		schema.CardPilotQAChurn,
		schema.CardOutputShare,
		schema.CardAvailability,
	}, keys)

	assert.Equal(t, "0.250", cards[0].Value)
	assert.Equal(t, "+25% vs baseline", cards[0].Delta)
	assert.Equal(t, schema.TonePositive, cards[0].Tone)

	assert.Equal(t, "1.80×", cards[1].Value)
	assert.Equal(t, "Pilot ≥ Non-Pilot", cards[1].Delta)
	assert.Equal(t, "3 high-confidence weeks", cards[1].Context)

	assert.Equal(t, "12.5%", cards[2].Value)
	assert.Equal(t, "-50% vs baseline (25.0%)", cards[2].Delta)
	assert.Equal(t, "Non-pilot: 20.0%", cards[2].Context)
	assert.Equal(t, schema.TonePositive, cards[2].Tone)

	assert.Equal(t, "30.0%", cards[3].Value)
	assert.Equal(t, "12 of 40 tickets", cards[3].Delta)
	assert.Equal(t, "33% of developers", cards[3].Context)
	assert.Equal(t, schema.ToneNeutral, cards[3].Tone)

	assert.Equal(t, "75%", cards[4].Value)
	assert.Equal(t, "3 of 4 weeks with pilot output", cards[4].Delta)
	assert.Equal(t, "2 pilot developers", cards[4].Context)
}

func TestCardsWarningTones(t *testing.T) {
	cfg := summaryConfig(t)
	s := schema.PeriodSummary{
		ProductivityDelta:    -0.01,
		ProductivityMultiple: 0.9,
		PilotQAChurn:         30,
		NonPilotQAChurn:      10,
		Availability:         0.25,
	}
	cards := Cards(s, cfg)
	assert.Equal(t, schema.ToneWarning, cards[0].Tone)
	assert.Equal(t, "Non-Pilot ahead", cards[1].Delta)
	assert.Equal(t, schema.ToneWarning, cards[1].Tone)
	assert.Equal(t, schema.ToneWarning, cards[2].Tone)
	assert.Equal(t, schema.ToneWarning, cards[4].Tone)
}
