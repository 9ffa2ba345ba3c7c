// Package narrative builds prose reports from classified forecasts using a
// text-generation backend.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

var ErrDisabled = errors.New("narrative generation is not configured")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Narrator turns structured results into prose. A nil generator disables it.
type Narrator struct {
	generator Generator
	logger    *zap.Logger
}

func NewNarrator(generator Generator, logger *zap.Logger) *Narrator {
	return &Narrator{generator: generator, logger: logger}
}

func (n *Narrator) Enabled() bool {
	return n != nil && n.generator != nil
}

func (n *Narrator) DescribeResort(ctx context.Context, summary models.ResortSummary, classification models.Classification, window models.Window) (string, error) {
	return n.generate(ctx, ResortPrompt(summary, classification, window))
}

func (n *Narrator) DescribeComparison(ctx context.Context, ranked models.RankedComparison, window models.Window) (string, error) {
	if len(ranked.Resorts) == 0 {
		return "", fmt.Errorf("describe comparison: no resorts")
	}
	return n.generate(ctx, ComparisonPrompt(ranked, window))
}

func (n *Narrator) generate(ctx context.Context, prompt Prompt) (string, error) {
	if !n.Enabled() {
		return "", ErrDisabled
	}

	text, err := n.generator.Generate(ctx, prompt)
	if err != nil {
		n.logger.Warn("Narrative generation failed", zap.Error(err))
		return "", err
	}

	return strings.TrimSpace(text), nil
}
