// Package risk implements the additive risk-scoring engine. Every rule
// contributes a fixed number of points independently of the others; the
// score is the plain sum and is never negative. Rules whose input is absent
// are skipped, so an empty submission scores zero.
package risk

import (
	"fmt"
	"strings"
	"time"

	"vera-api/internal/analyzer/fields"
	"vera-api/internal/analyzer/textnorm"
)

// Classification tiers. There is deliberately no "Crítico" tier: the two
// highest historical tiers are consolidated into Alto.
const (
	ClassLow    = "Baixo"
	ClassMedium = "Médio"
	ClassHigh   = "Alto"
)

// observationKeywords are matched as substrings against the normalized
// observation text; each distinct hit counts once, capped at 4 points.
var observationKeywords = []string{
	"atraso", "licenc", "embargo", "paralis", "fornecedor",
	"pressao", "custo", "multas", "sancao", "risco", "equip", "critico",
}

type Config struct {
	IndexTarget   float64 // ISP/IDP/IDCo/IDB target, 1.00
	HighThreshold float64 // score at which classification becomes Alto
	SchedulePack  bool
	FinancePack   bool
}

// Assessment is the engine's primary output: the score, its classification
// and an ordered human-readable trace of every contribution.
type Assessment struct {
	Score          float64
	Classification string
	Trace          []string
}

type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score evaluates all contribution sources against the canonical fields.
// The evaluation date is explicit so schedule rules are reproducible.
func (s *Scorer) Score(f fields.ProjectFields, nums fields.Numbers, at time.Time) Assessment {
	var trace []string
	score := 0.0

	score += s.baseContributions(nums, f.Observations, &trace)
	score += s.indicatorContributions(f.Indicators, &trace)
	if s.cfg.SchedulePack {
		score += s.scheduleContributions(f.Schedule, at, &trace)
	}
	if s.cfg.FinancePack {
		score += s.financeContributions(f.EffectiveFinancial(), &trace)
	}

	return Assessment{
		Score:          score,
		Classification: s.Classify(score),
		Trace:          trace,
	}
}

// Classify maps a score to its tier: >= HighThreshold Alto, >= 4 Médio,
// otherwise Baixo.
func (s *Scorer) Classify(score float64) string {
	switch {
	case score >= s.cfg.HighThreshold:
		return ClassHigh
	case score >= 4:
		return ClassMedium
	default:
		return ClassLow
	}
}

func (s *Scorer) baseContributions(nums fields.Numbers, observations string, trace *[]string) float64 {
	score := 0.0

	if nums.CPI != nil {
		if *nums.CPI < 0.85 {
			score += 5
			*trace = append(*trace, "CPI<0,85: +5")
		} else if *nums.CPI < 0.90 {
			score += 3
			*trace = append(*trace, "0,85≤CPI<0,90: +3")
		}
	}

	if nums.SPI != nil {
		if *nums.SPI < 0.90 {
			score += 5
			*trace = append(*trace, "SPI<0,90: +5")
		} else if *nums.SPI < 0.95 {
			score += 3
			*trace = append(*trace, "0,90≤SPI<0,95: +3")
		}
	}

	if gap := nums.ProgressGap(); gap != nil {
		if *gap >= 15 {
			score += 2
			*trace = append(*trace, "Gap físico x financeiro ≥15pp: +2")
		} else if *gap >= 8 {
			score += 1
			*trace = append(*trace, "Gap físico x financeiro ≥8pp: +1")
		}
	}

	if hits := KeywordHits(observations); hits > 0 {
		add := hits
		if add > 4 {
			add = 4
		}
		score += float64(add)
		*trace = append(*trace, fmt.Sprintf("Keywords observações (+%d)", add))
	}

	return score
}

// KeywordHits counts distinct observation keywords present in the text
// (presence, not frequency).
func KeywordHits(observations string) int {
	norm := textnorm.Normalize(observations)
	hits := 0
	for _, k := range observationKeywords {
		if strings.Contains(norm, k) {
			hits++
		}
	}
	return hits
}

func (s *Scorer) indicatorContributions(ind fields.Indicators, trace *[]string) float64 {
	score := 0.0
	add := func(name string, v *float64) {
		if v == nil {
			return
		}
		switch {
		case *v < 0.90:
			score += 3
			*trace = append(*trace, fmt.Sprintf("%s<0,90: +3", name))
		case *v < s.cfg.IndexTarget:
			score += 1
			*trace = append(*trace, fmt.Sprintf("0,90≤%s<1,00: +1", name))
		default:
			*trace = append(*trace, fmt.Sprintf("%s≥1,00: +0", name))
		}
	}
	add("ISP", ind.ISP)
	add("IDP", ind.IDP)
	add("IDCO", ind.IDCo)
	add("IDB", ind.IDB)
	return score
}

func (s *Scorer) scheduleContributions(tasks []fields.Task, at time.Time, trace *[]string) float64 {
	score := 0.0
	for _, t := range tasks {
		overdue := t.Overdue(at)
		if overdue && t.Critical {
			score += 3
			*trace = append(*trace, fmt.Sprintf("Tarefa crítica atrasada: %s (+3)", t.Name))
		} else if overdue {
			score += 1
			*trace = append(*trace, fmt.Sprintf("Tarefa atrasada: %s (+1)", t.Name))
		}
		// low progress on a critical task stacks with the overdue points
		if t.Pct != nil && *t.Pct < 30 && t.Critical {
			score += 1
			*trace = append(*trace, fmt.Sprintf("Tarefa crítica <30%%: %s (+1)", t.Name))
		}
	}
	return score
}

func (s *Scorer) financeContributions(fin fields.Financial, trace *[]string) float64 {
	score := 0.0
	if fin.VAC != nil && *fin.VAC < 0 {
		score += 3
		*trace = append(*trace, "VAC < 0 (projeção acima do aprovado): +3")
	}
	if fin.ApprovedCapex != nil && fin.EAC != nil && *fin.EAC > *fin.ApprovedCapex {
		score += 2
		*trace = append(*trace, "EAC > CAPEX aprovado: +2")
	}
	if fin.ApprovedCapex != nil && fin.CommittedCapex != nil && *fin.CommittedCapex > *fin.ApprovedCapex {
		score += 2
		*trace = append(*trace, "Comprometido > Aprovado: +2")
	}
	return score
}
