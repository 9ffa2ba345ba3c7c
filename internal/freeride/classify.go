package freeride

import "github.com/bobby-s-dev/freeride-assistant/internal/models"

type rule struct {
	name   string
	match  func(s models.ResortSummary) bool
	result models.Classification
}

// rules are evaluated in order and the first match wins. The two fresh-snow
// rules share the same guard; a cold powder day that fits neither sub-case
// (clear but windy, or overcast and stormy) matches nothing below and ends
// up as NotWorthIt.
var rules = []rule{
	{
		name: "powder-clear-calm",
		match: func(s models.ResortSummary) bool {
			return freshColdSnow(s) && s.IsClear && s.WindMean < 10
		},
		result: PowCuscus,
	},
	{
		name: "powder-overcast",
		match: func(s models.ResortSummary) bool {
			return freshColdSnow(s) && !s.IsClear && s.WindMean < 20
		},
		result: Amazing,
	},
	{
		name: "thin-cover",
		match: func(s models.ResortSummary) bool {
			return s.SnowfallTotal < 10 && s.TempMean < 5 && s.WindMean < 20
		},
		result: MarginalIcy,
	},
	{
		name: "no-snow-mild",
		match: func(s models.ResortSummary) bool {
			return round1(s.SnowfallTotal) == 0 && s.TempMean < 10 && s.WindMean < 20
		},
		result: BeginnerWeather,
	},
}

var (
	PowCuscus       = models.Classification{Label: models.LabelPowCuscus, Tag: models.TagPowderBlue, Badge: models.BadgeGold}
	Amazing         = models.Classification{Label: models.LabelAmazing, Tag: models.TagGreen, Badge: models.BadgeSilver}
	MarginalIcy     = models.Classification{Label: models.LabelMarginalIcy, Tag: models.TagYellow, Badge: models.BadgeRock}
	BeginnerWeather = models.Classification{Label: models.LabelBeginnerWeather, Tag: models.TagRed, Badge: models.BadgeGraduate}
	NotWorthIt      = models.Classification{Label: models.LabelNotWorthIt, Tag: models.TagGray, Badge: models.BadgeThumbsDown}
)

// Classify labels a resort summary. Every summary maps to exactly one
// classification.
func Classify(summary models.ResortSummary) models.Classification {
	for _, r := range rules {
		if r.match(summary) {
			return r.result
		}
	}
	return NotWorthIt
}

func freshColdSnow(s models.ResortSummary) bool {
	return s.SnowfallTotal > 30 && s.TempMean < 0
}
