package narrative

import (
	"fmt"
	"strings"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

// Prompt is a text-generation request.
type Prompt struct {
	Text        string
	MaxTokens   int
	Temperature float64
}

const resortInstructions = `You are a snow conditions assistant. Based on the following ski data, write a short and helpful paragraph summarizing the current conditions and whether it's a good day to ski. Focus on freeride skiing. Be concise and avoid greetings.`

const comparisonInstructions = `You are a snow analyst assistant for freeride skiers. Based on the data below, analyze the ski conditions for each resort. First, clearly recommend the best one for freeriding and explain why. Then, provide a short summary for the others. Focus on snowfall (more is better), temperature (below 0ºC is ideal), and wind (under 15 km/h is best).
Be concise, skip greetings, and do not repeat resort names unnecessarily. Output should be no more than 5 sentences.`

// ResortPrompt asks for a single-resort report.
func ResortPrompt(summary models.ResortSummary, classification models.Classification, window models.Window) Prompt {
	var b strings.Builder
	b.WriteString(resortInstructions)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Resort: %s\n", summary.Name)
	fmt.Fprintf(&b, "Date: %s\n", window)
	fmt.Fprintf(&b, "Snowfall: %.1f cm\n", summary.SnowfallTotal)
	fmt.Fprintf(&b, "Temperature: %.1f °C\n", summary.TempMean)
	fmt.Fprintf(&b, "Wind speed: %.1f km/h\n", summary.WindMean)
	fmt.Fprintf(&b, "Sky: %s\n", sky(summary.IsClear))
	fmt.Fprintf(&b, "Grade: %s\n", classification.Label)
	b.WriteString("\nRecommendation:\n")

	return Prompt{Text: b.String(), MaxTokens: 250, Temperature: 0.7}
}

// ComparisonPrompt asks for a multi-resort report. Resorts are listed best
// first and the recommended pick is named explicitly.
func ComparisonPrompt(ranked models.RankedComparison, window models.Window) Prompt {
	var b strings.Builder
	b.WriteString(comparisonInstructions)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Date: %s\n", window)
	for _, r := range ranked.Resorts {
		s := r.Summary
		fmt.Fprintf(&b, "\n- %s: %.1f cm snow, %.1f ºC, %.1f km/h wind, %s, graded %s",
			s.Name, s.SnowfallTotal, s.TempMean, s.WindMean, sky(s.IsClear), r.Classification.Label)
	}
	if len(ranked.Resorts) > 0 {
		fmt.Fprintf(&b, "\n\nTop pick by score: %s", ranked.Pick().Summary.Name)
	}
	b.WriteString("\n\nRecommendation:\n")

	return Prompt{Text: b.String(), MaxTokens: 300, Temperature: 0.6}
}

func sky(clear bool) string {
	if clear {
		return "clear sky"
	}
	return "cloudy"
}
