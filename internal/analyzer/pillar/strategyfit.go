package pillar

import "vera-api/internal/analyzer/fields"

// Fit is the lightweight 0-100 confidence companion to the main inference.
// It is computed from a coarser weighting pass and kept separate so the
// alignment layer can penalize it without touching the primary inference.
type Fit struct {
	Score         *int
	Suggested     *Pillar
	Justification string
}

const noSignalJustification = "Sem sinais suficientes."

// StrategyFit expresses the three-way pillar competition as a confidence
// percentage: dominant contribution over total contribution.
func StrategyFit(f fields.ProjectFields, nums fields.Numbers, targets Targets) Fit {
	text := SearchText(f)

	excScore, cliScore, capScore := 0, 0, 0
	if containsAny(text, excellenceKeywords) {
		excScore += 20
	}
	if containsAny(text, customerKeywords) {
		cliScore += 20
	}
	if containsAny(text, capitalKeywords) {
		capScore += 20
	}

	for _, m := range []struct {
		value  *float64
		target float64
	}{
		{nums.CPI, targets.CPI},
		{nums.SPI, targets.SPI},
	} {
		if m.value != nil && *m.value < m.target {
			excScore += 10
		}
	}
	for _, v := range []*float64{f.Indicators.ISP, f.Indicators.IDP, f.Indicators.IDCo, f.Indicators.IDB} {
		if v != nil && *v < targets.Index {
			excScore += 5
		}
	}

	total := excScore + cliScore + capScore
	if total == 0 {
		zero := 0
		return Fit{Score: &zero, Justification: noSignalJustification}
	}

	suggested := Excellence
	top := excScore
	if cliScore > top {
		suggested, top = Customer, cliScore
	}
	if capScore > top {
		suggested, top = Capital, capScore
	}

	score := top * 100 / total
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return Fit{
		Score:         &score,
		Suggested:     &suggested,
		Justification: Justification(string(suggested)),
	}
}
