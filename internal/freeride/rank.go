package freeride

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

// WindThreshold is the mean wind (km/h) above which a resort starts losing score.
const WindThreshold = 15.0

// Weights tunes the suitability score. TempPenalty is subtracted per degree
// away from 0°C, WindPenalty per km/h above WindThreshold.
type Weights struct {
	TempPenalty float64 `json:"temp_penalty"`
	WindPenalty float64 `json:"wind_penalty"`
}

func DefaultWeights() Weights {
	return Weights{TempPenalty: 2.0, WindPenalty: 1.0}
}

func (w Weights) Validate() error {
	if !(w.TempPenalty > 0) || math.IsInf(w.TempPenalty, 0) {
		return fmt.Errorf("temperature penalty weight must be positive, got %v", w.TempPenalty)
	}
	if !(w.WindPenalty > 0) || math.IsInf(w.WindPenalty, 0) {
		return fmt.Errorf("wind penalty weight must be positive, got %v", w.WindPenalty)
	}
	return nil
}

// Score rates a resort for freeriding; higher is better. The value is not
// rounded, so resorts only tie when their scores are exactly equal.
func (w Weights) Score(s models.ResortSummary) float64 {
	return s.SnowfallTotal -
		math.Abs(s.TempMean)*w.TempPenalty -
		math.Max(0, s.WindMean-WindThreshold)*w.WindPenalty
}

type Ranker struct {
	weights Weights
}

func NewRanker(weights Weights) (*Ranker, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Ranker{weights: weights}, nil
}

func (r *Ranker) Weights() Weights {
	return r.weights
}

// Rank classifies and scores every summary and orders them best first.
// Equal scores are ordered by resort name.
func (r *Ranker) Rank(summaries []models.ResortSummary) (models.RankedComparison, error) {
	if len(summaries) == 0 {
		return models.RankedComparison{}, &NoResortsError{}
	}

	ranked := make([]models.RankedResort, 0, len(summaries))
	for _, s := range summaries {
		ranked = append(ranked, models.RankedResort{
			Summary:        s,
			Classification: Classify(s),
			Score:          r.weights.Score(s),
		})
	}

	slices.SortStableFunc(ranked, func(a, b models.RankedResort) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Summary.Name, b.Summary.Name)
	})

	return models.RankedComparison{Resorts: ranked, Recommended: 0}, nil
}
