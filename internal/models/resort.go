package models

import "time"

type Resort struct {
	Name      string  `json:"name" yaml:"name"`
	Country   string  `json:"country" yaml:"country"`
	Latitude  float64 `json:"latitude" yaml:"lat"`
	Longitude float64 `json:"longitude" yaml:"lon"`
}

// ResortReport is the classified conditions of a single resort over a window.
type ResortReport struct {
	Resort         Resort         `json:"resort"`
	Window         Window         `json:"window"`
	Summary        ResortSummary  `json:"summary"`
	Classification Classification `json:"classification"`
	Sky            string         `json:"sky"`
	FetchedAt      time.Time      `json:"fetched_at"`
}

type ResortFailure struct {
	Resort string `json:"resort"`
	Error  string `json:"error"`
}

// ChartRow is one bar of the grouped comparison chart.
type ChartRow struct {
	Resort  string  `json:"resort"`
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

const (
	FeatureSnowfall = "Snowfall (cm)"
	FeatureAvgTemp  = "Avg Temp (°C)"
	FeatureAvgWind  = "Avg Wind (km/h)"
)

type Comparison struct {
	Window         Window           `json:"window"`
	Ranking        RankedComparison `json:"ranking"`
	Chart          []ChartRow       `json:"chart"`
	Narrative      string           `json:"narrative,omitempty"`
	NarrativeError string           `json:"narrative_error,omitempty"`
	Failures       []ResortFailure  `json:"failures,omitempty"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

type Marker struct {
	Resort    string  `json:"resort"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Badge     string  `json:"badge"`
	Label     Label   `json:"label"`
	Color     string  `json:"color"`
	Sky       string  `json:"sky"`
	Snowfall  float64 `json:"snowfall_cm"`
	AvgTemp   float64 `json:"avg_temp_c"`
	AvgWind   float64 `json:"avg_wind_kmh"`
}

type MapOverview struct {
	Window      Window          `json:"window"`
	Markers     []Marker        `json:"markers"`
	Failures    []ResortFailure `json:"failures,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}
