package advice

import (
	"fmt"
	"time"

	"vera-api/internal/analyzer/fields"
)

// Lesson is one suggested lessons-learned record.
type Lesson struct {
	Problema     string `json:"problema"`
	CausaRaiz    string `json:"causa_raiz"`
	Contramedida string `json:"contramedida"`
	Owner        string `json:"owner"`
	Prazo        string `json:"prazo"`
	Categoria    string `json:"categoria"`
}

const maxLessons = 5

// Lessons proposes lessons-learned records from the recurring deviation
// patterns: cost deviation, schedule deviation, measurement asymmetry and
// the first overdue critical task. The first stakeholder owns every record,
// falling back to "PMO/Projeto". At most five records are returned.
func Lessons(f fields.ProjectFields, nums fields.Numbers, targets Targets, at time.Time) []Lesson {
	owner := "PMO/Projeto"
	if owners := SplitStakeholders(f.Stakeholders); len(owners) > 0 {
		owner = owners[0]
	}

	var items []Lesson
	if nums.CPI != nil && *nums.CPI < targets.CPI {
		items = append(items, Lesson{
			Problema:     "Desvio de custo (CPI abaixo da meta).",
			CausaRaiz:    "Estimativas subavaliadas e controle de mudanças sem gate claro.",
			Contramedida: "Instalar Change Control Board e reforçar baseline; auditoria de medição financeira.",
			Owner:        owner,
			Prazo:        "D+14",
			Categoria:    "Financeiro/Controle",
		})
	}
	if nums.SPI != nil && *nums.SPI < targets.SPI {
		items = append(items, Lesson{
			Problema:     "Risco de atraso (SPI abaixo da meta).",
			CausaRaiz:    "Caminho crítico sem replanejamento tempestivo.",
			Contramedida: "Replanejar caminho crítico e instituir rito semanal com EVM.",
			Owner:        owner,
			Prazo:        "D+7",
			Categoria:    "Prazo/Planejamento",
		})
	}
	if gap := nums.ProgressGap(); gap != nil && *gap >= 15 {
		items = append(items, Lesson{
			Problema:     "Assimetria físico x financeiro ≥15pp.",
			CausaRaiz:    "Critérios de medição divergentes entre equipes.",
			Contramedida: "Unificar critérios e auditar 3 pacotes críticos.",
			Owner:        owner,
			Prazo:        "D+10",
			Categoria:    "Execução/Medição",
		})
	}
	for _, t := range f.Schedule {
		if t.Critical && t.Overdue(at) {
			items = append(items, Lesson{
				Problema:     fmt.Sprintf("Tarefa crítica atrasada: %s.", t.Name),
				CausaRaiz:    "Sequenciamento de frentes e restrições não modeladas.",
				Contramedida: "Aplicar técnica de remoção de restrições (LPS) e travas de pré-requisitos.",
				Owner:        owner,
				Prazo:        "D+5",
				Categoria:    "Planejamento/Execução",
			})
			break
		}
	}

	if len(items) > maxLessons {
		items = items[:maxLessons]
	}
	return items
}
