// Package advice derives the human-facing outputs: the key-risk list, the
// two recommended next-step tracks and the suggested lessons learned. It
// reuses the same threshold conditions as the scoring engine but phrases
// them as narrative bullets.
package advice

import (
	"fmt"
	"strings"
	"time"

	"vera-api/internal/analyzer/fields"
	"vera-api/internal/analyzer/textnorm"
)

// Targets mirrors the metric targets used by the scoring heuristics.
type Targets struct {
	CPI   float64
	SPI   float64
	Index float64
}

// observationRiskMessages maps normalized keyword fragments to risk bullets.
// Order matters: it fixes the emission order of narrative risks.
var observationRiskMessages = []struct {
	keyword string
	message string
}{
	{"licenc", "Regulatório: risco de licenças/autorizações."},
	{"embargo", "Regulatório: risco de embargo/interdição."},
	{"paralis", "Operação: risco de paralisação de frentes."},
	{"fornecedor", "Suprimentos: dependência de fornecedor crítico."},
	{"pressao", "Financeiro: pressão de custos em pacotes."},
	{"equip", "Técnico: fornecimento de equipamentos sensível."},
	{"critico", "Risco crítico citado em observações."},
	{"risco", "Risco adicional citado em observações."},
}

// KeyRisks emits one descriptive sentence per detected condition, in
// first-occurrence order and deduplicated byte-for-byte. A detected
// condition is never silently dropped.
func KeyRisks(f fields.ProjectFields, nums fields.Numbers, targets Targets, at time.Time) []string {
	var risks []string

	if nums.CPI != nil {
		if *nums.CPI < 0.85 {
			risks = append(risks, "Custo: CPI < 0,85 — forte risco orçamentário.")
		} else if *nums.CPI < targets.CPI {
			risks = append(risks, "Custo: CPI entre 0,85 e 0,90 — pressão de custos.")
		}
	}
	if nums.SPI != nil {
		if *nums.SPI < 0.90 {
			risks = append(risks, "Prazo: SPI < 0,90 — alto risco de atraso.")
		} else if *nums.SPI < targets.SPI {
			risks = append(risks, "Prazo: SPI entre 0,90 e 0,95 — risco de deslizamento.")
		}
	}
	if gap := nums.ProgressGap(); gap != nil {
		if *gap >= 15 {
			risks = append(risks, "Execução: gap físico x financeiro ≥15pp — risco de inconsistência de medição.")
		} else if *gap >= 8 {
			risks = append(risks, "Execução: gap físico x financeiro ≥8pp — atenção à coerência de medição.")
		}
	}

	for _, ind := range []struct {
		name  string
		value *float64
	}{
		{"ISP", f.Indicators.ISP},
		{"IDP", f.Indicators.IDP},
		{"IDCO", f.Indicators.IDCo},
		{"IDB", f.Indicators.IDB},
	} {
		if ind.value != nil && *ind.value < targets.Index {
			risks = append(risks, fmt.Sprintf("Índice %s abaixo de 1,00 (%.2f).", ind.name, *ind.value))
		}
	}

	for _, t := range f.Schedule {
		if !t.Overdue(at) {
			continue
		}
		if t.Critical {
			risks = append(risks, fmt.Sprintf("Cronograma: tarefa crítica atrasada — %s.", t.Name))
		} else {
			risks = append(risks, fmt.Sprintf("Cronograma: tarefa atrasada — %s.", t.Name))
		}
	}

	fin := f.EffectiveFinancial()
	if fin.VAC != nil && *fin.VAC < 0 {
		risks = append(risks, "Financeiro: VAC negativo — projeção acima do aprovado.")
	}
	if fin.ApprovedCapex != nil && fin.EAC != nil && *fin.EAC > *fin.ApprovedCapex {
		risks = append(risks, "Financeiro: EAC acima do CAPEX aprovado.")
	}
	if fin.ApprovedCapex != nil && fin.CommittedCapex != nil && *fin.CommittedCapex > *fin.ApprovedCapex {
		risks = append(risks, "Financeiro: comprometido acima do aprovado.")
	}

	obs := textnorm.Normalize(f.Observations)
	for _, m := range observationRiskMessages {
		if strings.Contains(obs, m.keyword) {
			risks = append(risks, m.message)
		}
	}

	return dedup(risks)
}

// dedup removes exact-string duplicates while preserving first-occurrence
// order.
func dedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
