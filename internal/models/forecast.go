package models

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidWindow = errors.New("invalid forecast window")

// Window is the inclusive date range a series is aggregated over.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow builds a window from two calendar dates. Both dates must lie
// within maxOffsetDays of today and start must not be after end.
func NewWindow(start, end, today time.Time, maxOffsetDays int) (Window, error) {
	start, end, today = truncateDay(start), truncateDay(end), truncateDay(today)

	if start.After(end) {
		return Window{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidWindow, start.Format(DateLayout), end.Format(DateLayout))
	}

	earliest := today.AddDate(0, 0, -maxOffsetDays)
	latest := today.AddDate(0, 0, maxOffsetDays)
	if start.Before(earliest) || end.After(latest) {
		return Window{}, fmt.Errorf("%w: dates must be between %s and %s",
			ErrInvalidWindow, earliest.Format(DateLayout), latest.Format(DateLayout))
	}

	return Window{Start: start, End: end}, nil
}

// WindowAround returns the window spanning pastDays before today to futureDays after it.
func WindowAround(today time.Time, pastDays, futureDays int) Window {
	today = truncateDay(today)
	return Window{
		Start: today.AddDate(0, 0, -pastDays),
		End:   today.AddDate(0, 0, futureDays),
	}
}

func (w Window) StartDate() string { return w.Start.Format(DateLayout) }
func (w Window) EndDate() string   { return w.End.Format(DateLayout) }

func (w Window) String() string {
	return w.StartDate() + " to " + w.EndDate()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// HourlySeries holds the hourly samples fetched for one resort. The four
// sample slices are parallel and must have equal length.
type HourlySeries struct {
	Resort      string
	Window      Window
	Temperature []float64 // °C
	WindSpeed   []float64 // km/h
	Snowfall    []float64 // cm
	WeatherCode []int     // WMO
}

func (s HourlySeries) Len() int {
	return len(s.Temperature)
}

// ResortSummary is the reduction of an HourlySeries to the scalars the
// classifier and ranker work on. Values are rounded to one decimal, except a
// mean that had to be clamped back into the sample range, which keeps the
// precision of that sample.
type ResortSummary struct {
	Name          string  `json:"name"`
	SnowfallTotal float64 `json:"snowfall_total"`
	TempMean      float64 `json:"temp_mean"`
	WindMean      float64 `json:"wind_mean"`
	IsClear       bool    `json:"is_clear"`
}

type Label string

const (
	LabelPowCuscus       Label = "Pow Cuscus"
	LabelAmazing         Label = "Amazing"
	LabelMarginalIcy     Label = "Marginal/Icy"
	LabelBeginnerWeather Label = "Beginner Weather"
	LabelNotWorthIt      Label = "Not Worth It"
)

type Tag string

const (
	TagPowderBlue Tag = "powder-blue"
	TagGreen      Tag = "green"
	TagYellow     Tag = "yellow"
	TagRed        Tag = "red"
	TagGray       Tag = "gray"
)

var tagColors = map[Tag]string{
	TagPowderBlue: "#add8e6",
	TagGreen:      "#008000",
	TagYellow:     "#ffff00",
	TagRed:        "#ff0000",
	TagGray:       "#808080",
}

// Color returns the CSS color used for map markers.
func (t Tag) Color() string {
	if c, ok := tagColors[t]; ok {
		return c
	}
	return tagColors[TagGray]
}

type Badge string

const (
	BadgeGold       Badge = "gold"
	BadgeSilver     Badge = "silver"
	BadgeRock       Badge = "rock"
	BadgeGraduate   Badge = "graduate"
	BadgeThumbsDown Badge = "thumbs-down"
)

var badgeEmoji = map[Badge]string{
	BadgeGold:       "🥇",
	BadgeSilver:     "🥈",
	BadgeRock:       "🪨",
	BadgeGraduate:   "🎓",
	BadgeThumbsDown: "👎",
}

func (b Badge) Emoji() string {
	return badgeEmoji[b]
}

type Classification struct {
	Label Label `json:"label"`
	Tag   Tag   `json:"tag"`
	Badge Badge `json:"badge"`
}

type RankedResort struct {
	Summary        ResortSummary  `json:"summary"`
	Classification Classification `json:"classification"`
	Score          float64        `json:"score"`
}

// RankedComparison lists resorts best first. Recommended indexes Resorts.
type RankedComparison struct {
	Resorts     []RankedResort `json:"resorts"`
	Recommended int            `json:"recommended"`
}

// Pick returns the recommended entry.
func (r RankedComparison) Pick() RankedResort {
	return r.Resorts[r.Recommended]
}
