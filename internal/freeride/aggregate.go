// Package freeride turns hourly forecasts into freeride verdicts: it reduces
// a series to summary scalars, labels a single resort, and ranks several
// resorts against each other. Everything here is pure and safe for
// concurrent use.
package freeride

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

// Aggregate reduces an hourly series to a ResortSummary.
func Aggregate(series models.HourlySeries) (models.ResortSummary, error) {
	if err := Validate(series); err != nil {
		return models.ResortSummary{}, err
	}

	temp, err := MeanTemperature(series)
	if err != nil {
		return models.ResortSummary{}, err
	}

	wind, err := MeanWind(series)
	if err != nil {
		return models.ResortSummary{}, err
	}

	return models.ResortSummary{
		Name:          series.Resort,
		SnowfallTotal: SnowfallTotal(series),
		TempMean:      temp,
		WindMean:      wind,
		IsClear:       IsClear(series),
	}, nil
}

// Validate checks that the sample slices are parallel and that wind and
// snowfall are finite and non-negative.
func Validate(series models.HourlySeries) error {
	n := len(series.Temperature)
	if len(series.WindSpeed) != n || len(series.Snowfall) != n || len(series.WeatherCode) != n {
		return &MalformedSeriesError{
			Resort: series.Resort,
			Window: series.Window,
			Reason: fmt.Sprintf("sample counts differ (temperature=%d wind=%d snowfall=%d weathercode=%d)",
				len(series.Temperature), len(series.WindSpeed), len(series.Snowfall), len(series.WeatherCode)),
		}
	}

	checks := []struct {
		field       string
		values      []float64
		nonNegative bool
	}{
		{"temperature", series.Temperature, false},
		{"wind", series.WindSpeed, true},
		{"snowfall", series.Snowfall, true},
	}
	for _, c := range checks {
		for i, v := range c.values {
			if math.IsNaN(v) || math.IsInf(v, 0) || (c.nonNegative && v < 0) {
				return &MalformedSeriesError{
					Resort: series.Resort,
					Window: series.Window,
					Reason: fmt.Sprintf("%s sample %d is out of range: %v", c.field, i, v),
				}
			}
		}
	}

	return nil
}

// SnowfallTotal sums the snowfall samples. An empty series totals zero.
func SnowfallTotal(series models.HourlySeries) float64 {
	return round1(floats.Sum(series.Snowfall))
}

func MeanTemperature(series models.HourlySeries) (float64, error) {
	return mean(series, "temperature", series.Temperature)
}

func MeanWind(series models.HourlySeries) (float64, error) {
	return mean(series, "wind", series.WindSpeed)
}

// IsClear reports whether the last sample's weather code is clear or mainly
// clear sky.
func IsClear(series models.HourlySeries) bool {
	n := len(series.WeatherCode)
	if n == 0 {
		return false
	}
	code := series.WeatherCode[n-1]
	return code == 0 || code == 1
}

// mean rounds to one decimal, then clamps into [min, max] of the samples so
// that rounding never reports a value no sample came close to. A clamped
// result keeps the precision of the sample it was clamped to, so it may have
// more than one decimal: samples {-1.25, -1.25} give -1.25.
func mean(series models.HourlySeries, field string, values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, &EmptySeriesError{Resort: series.Resort, Window: series.Window, Field: field}
	}
	m := round1(stat.Mean(values, nil))
	return math.Min(math.Max(m, floats.Min(values)), floats.Max(values)), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
