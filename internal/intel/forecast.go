package intel

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/david/project-radar/internal/models"
)

// DemandForecastModel projects future monthly demand from a historical time
// series using a linear trend with a sinusoidal seasonal adjustment.
// Forecast and AnalyzeSeasonality never mutate the history, so calls are
// freely repeatable.
type DemandForecastModel struct {
	cfg     ScoringConfig
	history []HistoryPoint
}

func NewDemandForecastModel(cfg ScoringConfig) *DemandForecastModel {
	return &DemandForecastModel{cfg: cfg}
}

// AddHistoricalData appends one observation.
func (m *DemandForecastModel) AddHistoricalData(date time.Time, value float64) {
	m.history = append(m.history, HistoryPoint{Date: date, Value: value})
}

// SetHistory replaces the full series.
func (m *DemandForecastModel) SetHistory(points []HistoryPoint) {
	m.history = append([]HistoryPoint(nil), points...)
}

// Forecast returns exactly monthsAhead points, ordered by month offset.
// With no history it returns a flat default forecast.
func (m *DemandForecastModel) Forecast(monthsAhead int) ([]models.ForecastPoint, error) {
	if monthsAhead <= 0 {
		return nil, fmt.Errorf("%w: monthsAhead must be positive", ErrInvalidInput)
	}

	if len(m.history) == 0 {
		return m.defaultForecast(monthsAhead), nil
	}

	sorted := append([]HistoryPoint(nil), m.history...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	// Simple end-to-end trend. Too few points to fit anything fancier.
	trend := 0.0
	if len(sorted) >= 3 {
		trend = (sorted[len(sorted)-1].Value - sorted[0].Value) / float64(len(sorted))
	}
	lastValue := sorted[len(sorted)-1].Value

	forecast := make([]models.ForecastPoint, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		predicted := lastValue + trend*float64(i)
		seasonal := 1 + m.cfg.SeasonalAmplitude*math.Sin(float64(i)*math.Pi/6)
		predicted *= seasonal

		forecast = append(forecast, models.ForecastPoint{
			Month:           i,
			PredictedValue:  maxF(0, predicted),
			ConfidenceLower: maxF(0, predicted*m.cfg.ForecastLowerFactor),
			ConfidenceUpper: predicted * m.cfg.ForecastUpperFactor,
		})
	}
	return forecast, nil
}

func (m *DemandForecastModel) defaultForecast(monthsAhead int) []models.ForecastPoint {
	base := m.cfg.DefaultForecastBase
	forecast := make([]models.ForecastPoint, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		forecast = append(forecast, models.ForecastPoint{
			Month:           i,
			PredictedValue:  base,
			ConfidenceLower: base * m.cfg.ForecastLowerFactor,
			ConfidenceUpper: base * m.cfg.ForecastUpperFactor,
		})
	}
	return forecast
}

// AnalyzeSeasonality buckets history by calendar month. Fewer than twelve
// data points yields an explicit insufficient-data result, not an error.
func (m *DemandForecastModel) AnalyzeSeasonality() models.SeasonalityResult {
	if len(m.history) < 12 {
		return models.SeasonalityResult{Insufficient: true}
	}

	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for _, point := range m.history {
		month := point.Date.Month()
		sums[month] += point.Value
		counts[month]++
	}

	byMonth := make(map[time.Month]float64, len(sums))
	var peak, trough time.Month
	for month := time.January; month <= time.December; month++ {
		count, ok := counts[month]
		if !ok {
			continue
		}
		avg := sums[month] / float64(count)
		byMonth[month] = avg
		if peak == 0 || avg > byMonth[peak] {
			peak = month
		}
		if trough == 0 || avg < byMonth[trough] {
			trough = month
		}
	}

	return models.SeasonalityResult{
		ByMonth:     byMonth,
		PeakMonth:   peak,
		TroughMonth: trough,
	}
}
