package advice

import (
	"strings"

	"vera-api/internal/analyzer/fields"
	"vera-api/internal/analyzer/textnorm"
)

// SplitStakeholders breaks the free-form stakeholders field into individual
// names. The first separator found among ";", ",", newline and "|" wins; a
// field without separators is a single name.
func SplitStakeholders(stakeholders string) []string {
	if !fields.Informed(stakeholders) {
		return nil
	}
	var parts []string
	for _, sep := range []string{";", ",", "\n", "|"} {
		if strings.Contains(stakeholders, sep) {
			parts = strings.Split(stakeholders, sep)
			break
		}
	}
	if parts == nil {
		parts = []string{stakeholders}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NextSteps assembles the action plan for one pillar track: metric-driven
// actions first, then observation-driven contingencies, then the actions
// specific to the pillar, then a suggested-owners line capped at three
// names. Deduplicated in first-occurrence order.
func NextSteps(nums fields.Numbers, observations, finalPillar, stakeholders string, targets Targets) []string {
	var steps []string

	if nums.CPI != nil && *nums.CPI < targets.CPI {
		steps = append(steps,
			"Estabelecer plano de contenção de custos e variação de escopo (D+7).",
			"Revisar curvas de medição e baseline financeiro (D+10).")
	}
	if nums.SPI != nil && *nums.SPI < targets.SPI {
		steps = append(steps,
			"Replanejar caminho crítico e renegociar marcos críticos (D+5).",
			"Avaliar compressão de cronograma/fast-track onde aplicável (D+10).")
	}
	if gap := nums.ProgressGap(); gap != nil {
		if *gap >= 15 {
			steps = append(steps, "Investigar assimetria físico x financeiro (≥15pp): auditoria de medição (D+7).")
		} else if *gap >= 8 {
			steps = append(steps, "Alinhar critérios de medição físico x financeiro (≥8pp) (D+10).")
		}
	}

	obs := textnorm.Normalize(observations)
	if strings.Contains(obs, "fornecedor") {
		steps = append(steps, "Conduzir reunião executiva com fornecedor crítico e plano 5W2H (D+3).")
	}
	if strings.Contains(obs, "equip") || strings.Contains(obs, "critico") {
		steps = append(steps, "Ativar contingência p/ equipamentos críticos e alternativas logísticas (D+7).")
	}
	if strings.Contains(obs, "licenc") || strings.Contains(obs, "embargo") || strings.Contains(obs, "paralis") {
		steps = append(steps, "Acionar frente regulatória/jurídica para destravar licenças/embargos (D+3).")
	}

	p := textnorm.Normalize(finalPillar)
	if strings.Contains(p, "excelencia") {
		steps = append(steps,
			"Desdobrar metas operacionais e RACI de governança semanal (D+7).",
			"Implantar rituais de performance e indicadores leading/lagging (D+14).")
	}
	if strings.Contains(p, "cliente") {
		steps = append(steps,
			"Mapear jornada do cliente e ajustar SLAs de comunicação (D+15).",
			"Rodar pulso de satisfação/NPS até o próximo marco (D+30).")
	}
	if strings.Contains(p, "alocacao") {
		steps = append(steps,
			"Repriorizar CAPEX priorizando retorno ajustado a risco (D+20).",
			"Revisar business case e opções de escopo/financiamento (D+30).")
	}

	if owners := SplitStakeholders(stakeholders); len(owners) > 0 {
		if len(owners) > 3 {
			owners = owners[:3]
		}
		steps = append(steps, "Responsáveis sugeridos: "+strings.Join(owners, ", ")+".")
	}

	return dedup(steps)
}
