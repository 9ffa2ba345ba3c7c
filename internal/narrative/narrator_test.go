package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

type recordingGenerator struct {
	prompts []Prompt
	reply   string
	err     error
}

func (g *recordingGenerator) Generate(_ context.Context, p Prompt) (string, error) {
	g.prompts = append(g.prompts, p)
	return g.reply, g.err
}

var testWindow = models.Window{
	Start: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
}

func TestDescribeResort(t *testing.T) {
	gen := &recordingGenerator{reply: "  Deep powder, go early.\n"}
	n := NewNarrator(gen, zap.NewNop())

	summary := models.ResortSummary{Name: "Baqueira Beret (Spain)", SnowfallTotal: 35, TempMean: -4, WindMean: 8, IsClear: true}
	text, err := n.DescribeResort(context.Background(), summary, models.Classification{Label: models.LabelPowCuscus}, testWindow)
	if err != nil {
		t.Fatalf("DescribeResort failed: %v", err)
	}
	if text != "Deep powder, go early." {
		t.Errorf("expected trimmed reply, got %q", text)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(gen.prompts))
	}
	p := gen.prompts[0]
	for _, want := range []string{"Baqueira Beret (Spain)", "2026-02-01 to 2026-02-03", "35.0 cm", "-4.0 °C", "8.0 km/h", "Pow Cuscus"} {
		if !strings.Contains(p.Text, want) {
			t.Errorf("prompt missing %q:\n%s", want, p.Text)
		}
	}
	if p.MaxTokens != 250 || p.Temperature != 0.7 {
		t.Errorf("unexpected generation settings: %+v", p)
	}
}

func TestDescribeComparison(t *testing.T) {
	gen := &recordingGenerator{reply: "Baqueira is the pick."}
	n := NewNarrator(gen, zap.NewNop())

	ranked := models.RankedComparison{
		Resorts: []models.RankedResort{
			{Summary: models.ResortSummary{Name: "Baqueira Beret (Spain)", SnowfallTotal: 35, TempMean: -4, WindMean: 9}},
			{Summary: models.ResortSummary{Name: "Formigal (Spain)", SnowfallTotal: 20, TempMean: -2, WindMean: 12}},
		},
	}
	if _, err := n.DescribeComparison(context.Background(), ranked, testWindow); err != nil {
		t.Fatalf("DescribeComparison failed: %v", err)
	}

	p := gen.prompts[0]
	first := strings.Index(p.Text, "Baqueira Beret (Spain):")
	second := strings.Index(p.Text, "Formigal (Spain):")
	if first < 0 || second < 0 || first > second {
		t.Errorf("resorts not listed in ranked order:\n%s", p.Text)
	}
	if !strings.Contains(p.Text, "Top pick by score: Baqueira Beret (Spain)") {
		t.Errorf("prompt does not name the pick:\n%s", p.Text)
	}
	if p.MaxTokens != 300 || p.Temperature != 0.6 {
		t.Errorf("unexpected generation settings: %+v", p)
	}
}

func TestNarratorDisabled(t *testing.T) {
	n := NewNarrator(nil, zap.NewNop())
	if n.Enabled() {
		t.Fatal("narrator without generator must be disabled")
	}
	_, err := n.DescribeResort(context.Background(), models.ResortSummary{}, models.Classification{}, testWindow)
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestNarratorPropagatesErrors(t *testing.T) {
	boom := errors.New("upstream down")
	n := NewNarrator(&recordingGenerator{err: boom}, zap.NewNop())

	ranked := models.RankedComparison{Resorts: []models.RankedResort{{Summary: models.ResortSummary{Name: "A"}}}}
	if _, err := n.DescribeComparison(context.Background(), ranked, testWindow); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, err := n.DescribeComparison(context.Background(), models.RankedComparison{}, testWindow); err == nil {
		t.Fatal("expected error for empty comparison")
	}
}
