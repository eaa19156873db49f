package advisor

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"YieldRadar/internal/model"
)

// buildExplanation renders the ranked suggestions into a human-readable
// summary for the calling application.
func buildExplanation(profile model.RiskProfile, ranked []model.ScoredPool, positions []model.SizedPosition, sentiment string, fallback bool) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Ranked %d pools for the %s profile; market sentiment is %s.\n", len(ranked), profile, sentiment))

	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}
	for i, c := range top {
		b.WriteString(fmt.Sprintf("%d. %s/%s — %.1f%% APR, $%s TVL, score %.2f (%s timing)",
			i+1, c.Pool.Token0, c.Pool.Token1, c.Pool.APR24h,
			humanize.CommafWithDigits(c.Pool.TVL, 0), c.RawScore, c.TimingBand))
		if len(c.Reasons) > 0 {
			b.WriteString(": " + strings.Join(c.Reasons, ", "))
		}
		b.WriteString("\n")
	}

	if len(positions) > 0 {
		if positions[0].ManualSizing {
			b.WriteString("No amount was specified; manual sizing required.\n")
		} else {
			var total float64
			for _, p := range positions {
				total += p.Amount
			}
			b.WriteString(fmt.Sprintf("Suggested split: $%s across %d positions.\n",
				humanize.CommafWithDigits(total, 2), len(positions)))
		}
	}

	if fallback {
		b.WriteString("Some market data was unavailable; neutral defaults were used where needed.\n")
	}
	return b.String()
}
