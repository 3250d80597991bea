package server

import (
	"encoding/json"
	"strings"

	"vera-api/internal/analyzer/fields"
	"vera-api/internal/analyzer/textnorm"
	"vera-api/internal/analyzer/textparse"
)

// TextRequest is the payload of the pasted-text endpoint.
type TextRequest struct {
	Texto string `json:"texto"`
}

// flexValue accepts a JSON string or number and preserves it as text, so the
// same locale-aware parsing applies regardless of how the client typed it.
type flexValue string

func (v *flexValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = flexValue(s)
		return nil
	}
	*v = flexValue(strings.TrimSpace(string(data)))
	return nil
}

func (v flexValue) String() string { return string(v) }

// StructuredRequest is the payload of the structured endpoint. Every field
// is optional; absent fields fall back to the sentinel.
type StructuredRequest struct {
	NomeProjeto       *string              `json:"nome_projeto"`
	CPI               flexValue            `json:"cpi"`
	SPI               flexValue            `json:"spi"`
	AvancoFisico      flexValue            `json:"avanco_fisico"`
	AvancoFinanceiro  flexValue            `json:"avanco_financeiro"`
	TipoContrato      *string              `json:"tipo_contrato"`
	Stakeholders      *string              `json:"stakeholders"`
	Observacoes       *string              `json:"observacoes"`
	Pilar             *string              `json:"pilar"`
	Objetivo          *string              `json:"objetivo"`
	ResumoStatus      []string             `json:"resumo_status"`
	PlanosProximo     []string             `json:"planos_proximo_periodo"`
	PontosAtencao     []string             `json:"pontos_atencao"`
	Indicadores       map[string]flexValue `json:"indicadores"`
	DataFinal         *string              `json:"data_final_planejada"`
	Baseline          *BaselinePayload     `json:"baseline"`
	Escopo            *string              `json:"escopo"`
	Cronograma        *SchedulePayload     `json:"cronograma"`
	Financeiro        map[string]flexValue `json:"financeiro"`
}

// BaselinePayload mirrors the nested baseline block.
type BaselinePayload struct {
	Prazo  *BaselineDeadline `json:"prazo"`
	Custo  *BaselineCost     `json:"custo"`
	Escopo *string           `json:"escopo"`
}

type BaselineDeadline struct {
	DataPlanejada flexValue `json:"data_planejada"`
}

type BaselineCost struct {
	CapexAprovado flexValue `json:"capex_aprovado"`
}

// SchedulePayload mirrors the nested schedule block.
type SchedulePayload struct {
	Tarefas []TaskPayload `json:"tarefas"`
}

type TaskPayload struct {
	Nome    string    `json:"nome"`
	Inicio  flexValue `json:"inicio"`
	Fim     flexValue `json:"fim"`
	Pct     flexValue `json:"pct"`
	Critica bool      `json:"critica"`
}

func valueOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}

func flexOr(v flexValue, fallback string) string {
	if v == "" {
		return fallback
	}
	return string(v)
}

// Fields converts the structured payload into the canonical field set,
// resolving all key aliases and type coercions here so the engine only sees
// typed records.
func (r StructuredRequest) Fields() fields.ProjectFields {
	f := fields.New()

	f.Name = valueOr(r.NomeProjeto, f.Name)
	f.CPI = flexOr(r.CPI, f.CPI)
	f.SPI = flexOr(r.SPI, f.SPI)
	f.PhysicalProgress = flexOr(r.AvancoFisico, f.PhysicalProgress)
	f.FinancialProgress = flexOr(r.AvancoFinanceiro, f.FinancialProgress)
	f.ContractType = valueOr(r.TipoContrato, f.ContractType)
	f.Stakeholders = valueOr(r.Stakeholders, f.Stakeholders)
	f.Observations = valueOr(r.Observacoes, f.Observations)
	f.Pillar = valueOr(r.Pilar, f.Pillar)
	f.Objective = valueOr(r.Objetivo, f.Objective)
	f.Scope = valueOr(r.Escopo, f.Scope)
	f.PlannedEndDate = valueOr(r.DataFinal, f.PlannedEndDate)
	f.StatusSummary = r.ResumoStatus
	f.NextPeriodPlans = r.PlanosProximo
	f.AttentionPoints = r.PontosAtencao

	for key, raw := range r.Indicadores {
		n, ok := textnorm.ToNumber(raw.String())
		if !ok {
			continue
		}
		switch textnorm.Normalize(key) {
		case "isp":
			f.Indicators.ISP = &n
		case "idp":
			f.Indicators.IDP = &n
		case "idco":
			f.Indicators.IDCo = &n
		case "idb":
			f.Indicators.IDB = &n
		}
	}

	if r.Baseline != nil {
		if r.Baseline.Prazo != nil {
			if d, ok := textnorm.ParseDate(r.Baseline.Prazo.DataPlanejada.String()); ok {
				f.Baseline.PlannedDate = &d
			}
		}
		if r.Baseline.Custo != nil {
			if n, ok := textnorm.ToNumber(r.Baseline.Custo.CapexAprovado.String()); ok {
				f.Baseline.ApprovedCapex = &n
			}
		}
		if r.Baseline.Escopo != nil && !fields.Informed(f.Scope) {
			f.Scope = *r.Baseline.Escopo
		}
	}

	if r.Cronograma != nil {
		for _, t := range r.Cronograma.Tarefas {
			task := fields.Task{Name: t.Nome, Critical: t.Critica}
			if d, ok := textnorm.ParseDate(t.Inicio.String()); ok {
				task.Start = &d
			}
			if d, ok := textnorm.ParseDate(t.Fim.String()); ok {
				task.End = &d
			}
			if n, ok := textnorm.ToNumber(t.Pct.String()); ok {
				task.Pct = &n
			}
			f.Schedule = append(f.Schedule, task)
		}
	}

	for key, raw := range r.Financeiro {
		textparse.SetFinancial(&f.Financial, key, raw.String())
	}

	return f
}

// scalarType matches a JSON string or number.
var scalarType = []interface{}{"string", "number"}

// textRequestSchema rejects payloads without a usable "texto" field.
var textRequestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"texto"},
	"properties": map[string]interface{}{
		"texto": map[string]interface{}{"type": "string", "minLength": 1},
	},
}

// structuredRequestSchema type-checks the structured payload. Everything is
// optional; unknown fields pass through unvalidated for forward compat.
var structuredRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"nome_projeto":           map[string]interface{}{"type": "string"},
		"cpi":                    map[string]interface{}{"type": scalarType},
		"spi":                    map[string]interface{}{"type": scalarType},
		"avanco_fisico":          map[string]interface{}{"type": scalarType},
		"avanco_financeiro":      map[string]interface{}{"type": scalarType},
		"tipo_contrato":          map[string]interface{}{"type": "string"},
		"stakeholders":           map[string]interface{}{"type": "string"},
		"observacoes":            map[string]interface{}{"type": "string"},
		"pilar":                  map[string]interface{}{"type": "string"},
		"objetivo":               map[string]interface{}{"type": "string"},
		"escopo":                 map[string]interface{}{"type": "string"},
		"data_final_planejada":   map[string]interface{}{"type": "string"},
		"resumo_status":          stringArraySchema,
		"planos_proximo_periodo": stringArraySchema,
		"pontos_atencao":         stringArraySchema,
		"indicadores":            map[string]interface{}{"type": "object"},
		"baseline":               map[string]interface{}{"type": "object"},
		"financeiro":             map[string]interface{}{"type": "object"},
		"cronograma": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"tarefas": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "object"},
				},
			},
		},
	},
}

var stringArraySchema = map[string]interface{}{
	"type":  "array",
	"items": map[string]interface{}{"type": "string"},
}
