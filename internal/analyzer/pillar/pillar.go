// Package pillar infers which of the three strategic pillars a project's
// narrative most resembles and compares the result against the pillar the
// submitter declared. The inference is advisory: a declared pillar always
// prevails as the final value.
package pillar

import (
	"strings"

	"vera-api/internal/analyzer/fields"
	"vera-api/internal/analyzer/textnorm"
)

// Pillar is one of the three fixed strategic-focus categories.
type Pillar string

const (
	Excellence Pillar = "Excelência Organizacional"
	Customer   Pillar = "Foco no Cliente"
	Capital    Pillar = "Alocação Estratégica de Capital"
)

// Targets holds the metric targets the inference bonuses compare against.
type Targets struct {
	CPI   float64
	SPI   float64
	Index float64
}

var (
	excellenceKeywords = []string{
		"processo", "estrutura", "governanca", "rituais",
		"metas", "desdobramento", "coerencia", "execucao",
	}
	customerKeywords = []string{
		"cliente", "experiencia", "sla", "jornada",
		"confiabilidade", "satisfacao", "atendimento",
	}
	capitalKeywords = []string{
		"capex", "investimento", "priorizacao", "retorno",
		"vpl", "tir", "payback", "disciplina de capital",
	}
	returnKeywords = []string{"retorno", "vpl", "tir", "payback"}
)

// Scores carries the per-pillar inference points, exposed for the trace.
type Scores struct {
	Excellence int
	Customer   int
	Capital    int
}

// Assessment is the complete declared-vs-inferred comparison.
type Assessment struct {
	Declared  string
	Suggested *Pillar
	Divergent bool
	Final     string
	Scores    Scores
}

// SearchText concatenates and normalizes every narrative field the inference
// scans: observations, objective, scope, status bullets and plan bullets.
func SearchText(f fields.ProjectFields) string {
	parts := []string{
		textnorm.Normalize(f.Observations),
		textnorm.Normalize(f.Objective),
		textnorm.Normalize(f.Scope),
	}
	for _, b := range f.StatusSummary {
		parts = append(parts, textnorm.Normalize(b))
	}
	for _, b := range f.NextPeriodPlans {
		parts = append(parts, textnorm.Normalize(b))
	}
	return strings.Join(parts, " ")
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Infer scores the three candidate pillars and returns the strictly highest
// one, or nil when no signal is present. Ties resolve in the fixed order
// Excellence, Customer, Capital.
func Infer(f fields.ProjectFields, nums fields.Numbers, targets Targets) (Scores, *Pillar) {
	text := SearchText(f)

	var s Scores
	if containsAny(text, excellenceKeywords) {
		s.Excellence += 2
	}
	if containsAny(text, customerKeywords) {
		s.Customer += 2
	}
	if containsAny(text, capitalKeywords) {
		s.Capital += 2
	}

	// below-target core metrics pull towards Excellence (execution capacity)
	if (nums.CPI != nil && *nums.CPI < targets.CPI) || (nums.SPI != nil && *nums.SPI < targets.SPI) {
		s.Excellence += 2
	}
	for _, v := range []*float64{f.Indicators.ISP, f.Indicators.IDP, f.Indicators.IDCo, f.Indicators.IDB} {
		if v != nil && *v < targets.Index {
			s.Excellence++
		}
	}

	// emphasized returns or a numeric approved budget pull towards Capital
	if containsAny(text, returnKeywords) || f.Financial.ApprovedCapex != nil {
		s.Capital++
	}

	return s, dominant(s)
}

func dominant(s Scores) *Pillar {
	best := Excellence
	bestScore := s.Excellence
	if s.Customer > bestScore {
		best, bestScore = Customer, s.Customer
	}
	if s.Capital > bestScore {
		best, bestScore = Capital, s.Capital
	}
	if bestScore == 0 {
		return nil
	}
	return &best
}

// Assess runs the inference and resolves divergence and the final pillar.
// Divergent iff a declared pillar and an inferred pillar both exist and
// differ after normalization; the declared value always wins as Final.
func Assess(f fields.ProjectFields, nums fields.Numbers, targets Targets) Assessment {
	scores, suggested := Infer(f, nums, targets)

	declared := f.Pillar
	divergent := fields.Informed(declared) && suggested != nil &&
		textnorm.Normalize(declared) != textnorm.Normalize(string(*suggested))

	final := fields.NotInformed
	switch {
	case fields.Informed(declared):
		final = declared
	case suggested != nil:
		final = string(*suggested)
	}

	return Assessment{
		Declared:  declared,
		Suggested: suggested,
		Divergent: divergent,
		Final:     final,
		Scores:    scores,
	}
}

// Justification returns the fixed rationale text for a pillar name, matched
// leniently so declared values with typos in casing or accents still map.
func Justification(pillar string) string {
	p := textnorm.Normalize(pillar)
	switch {
	case strings.Contains(p, "excelencia"):
		return "Excelência Organizacional: alinhar pessoas, processos, estrutura e incentivos à estratégia; " +
			"desdobrar metas para coerência entre áreas e execução coordenada."
	case strings.Contains(p, "cliente"):
		return "Foco no Cliente: colocar o cliente no centro, entender necessidades, antecipar soluções " +
			"e melhorar continuamente as jornadas com confiabilidade e SLAs."
	case strings.Contains(p, "alocacao"):
		return "Alocação Estratégica de Capital: priorizar investimentos que maximizem valor no longo prazo, " +
			"com disciplina de capital e seleção criteriosa (VPL/TIR ajustadas a risco)."
	default:
		return "Pilar declarado: " + pillar
	}
}
