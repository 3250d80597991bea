package advice

import (
	"testing"
	"time"

	"vera-api/internal/analyzer/fields"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evalDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func defaultTargets() Targets {
	return Targets{CPI: 0.90, SPI: 0.95, Index: 1.00}
}

func fptr(v float64) *float64 { return &v }

func tptr(v time.Time) *time.Time { return &v }

func TestSplitStakeholders(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"semicolon separated", "Ana; Bruno; Carla", []string{"Ana", "Bruno", "Carla"}},
		{"comma separated", "Ana, Bruno", []string{"Ana", "Bruno"}},
		{"pipe separated", "Ana|Bruno", []string{"Ana", "Bruno"}},
		{"first separator wins", "Ana; Bruno, Carla", []string{"Ana", "Bruno, Carla"}},
		{"single name", "Diretoria de Obras", []string{"Diretoria de Obras"}},
		{"empty entries dropped", "Ana;;Bruno; ", []string{"Ana", "Bruno"}},
		{"not informed", fields.NotInformed, nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitStakeholders(tt.input))
		})
	}
}

func TestKeyRisks_MetricBands(t *testing.T) {
	f := fields.New()
	f.CPI = "0.82"
	f.SPI = "0.92"
	f.PhysicalProgress = "70%"
	f.FinancialProgress = "85%"

	risks := KeyRisks(f, f.Numbers(), defaultTargets(), evalDate)

	assert.Equal(t, []string{
		"Custo: CPI < 0,85 — forte risco orçamentário.",
		"Prazo: SPI entre 0,90 e 0,95 — risco de deslizamento.",
		"Execução: gap físico x financeiro ≥15pp — risco de inconsistência de medição.",
	}, risks)
}

func TestKeyRisks_IndicatorsAndSchedule(t *testing.T) {
	f := fields.New()
	f.Indicators.IDP = fptr(0.87)
	f.Schedule = []fields.Task{
		{Name: "Fundações", End: tptr(evalDate.AddDate(0, 0, -10)), Pct: fptr(60), Critical: true},
		{Name: "Pintura", End: tptr(evalDate.AddDate(0, 0, -3)), Pct: fptr(90)},
		{Name: "Entrega", End: tptr(evalDate.AddDate(0, 1, 0))},
	}

	risks := KeyRisks(f, f.Numbers(), defaultTargets(), evalDate)

	assert.Equal(t, []string{
		"Índice IDP abaixo de 1,00 (0.87).",
		"Cronograma: tarefa crítica atrasada — Fundações.",
		"Cronograma: tarefa atrasada — Pintura.",
	}, risks)
}

func TestKeyRisks_FinanceAndObservations(t *testing.T) {
	f := fields.New()
	f.Financial = fields.Financial{
		ApprovedCapex:  fptr(1000),
		CommittedCapex: fptr(1200),
		EAC:            fptr(1100),
		VAC:            fptr(-100),
	}
	f.Observations = "pressão de custos com fornecedor e risco de embargo"

	risks := KeyRisks(f, f.Numbers(), defaultTargets(), evalDate)

	assert.Equal(t, []string{
		"Financeiro: VAC negativo — projeção acima do aprovado.",
		"Financeiro: EAC acima do CAPEX aprovado.",
		"Financeiro: comprometido acima do aprovado.",
		"Regulatório: risco de embargo/interdição.",
		"Suprimentos: dependência de fornecedor crítico.",
		"Financeiro: pressão de custos em pacotes.",
		"Risco adicional citado em observações.",
	}, risks)
}

func TestKeyRisks_BaselineCapexFallback(t *testing.T) {
	f := fields.New()
	f.Baseline.ApprovedCapex = fptr(1000)
	f.Financial.EAC = fptr(1500)

	risks := KeyRisks(f, f.Numbers(), defaultTargets(), evalDate)
	assert.Contains(t, risks, "Financeiro: EAC acima do CAPEX aprovado.")
}

func TestKeyRisks_EmptyInput(t *testing.T) {
	f := fields.New()
	assert.Empty(t, KeyRisks(f, f.Numbers(), defaultTargets(), evalDate))
}

func TestNextSteps_MetricActions(t *testing.T) {
	f := fields.New()
	f.CPI = "0.85"
	f.SPI = "0.90"
	nums := f.Numbers()

	steps := NextSteps(nums, f.Observations, fields.NotInformed, fields.NotInformed, defaultTargets())

	assert.Equal(t, []string{
		"Estabelecer plano de contenção de custos e variação de escopo (D+7).",
		"Revisar curvas de medição e baseline financeiro (D+10).",
		"Replanejar caminho crítico e renegociar marcos críticos (D+5).",
		"Avaliar compressão de cronograma/fast-track onde aplicável (D+10).",
	}, steps)
}

func TestNextSteps_PillarTracksDiffer(t *testing.T) {
	f := fields.New()
	nums := f.Numbers()

	recommended := NextSteps(nums, f.Observations, "Excelência Organizacional", fields.NotInformed, defaultTargets())
	current := NextSteps(nums, f.Observations, "Foco no Cliente", fields.NotInformed, defaultTargets())

	assert.Contains(t, recommended, "Desdobrar metas operacionais e RACI de governança semanal (D+7).")
	assert.Contains(t, current, "Mapear jornada do cliente e ajustar SLAs de comunicação (D+15).")
	assert.NotEqual(t, recommended, current)
}

func TestNextSteps_ObservationContingencies(t *testing.T) {
	f := fields.New()
	steps := NextSteps(f.Numbers(), "atraso do fornecedor e equipamento crítico sem licença",
		fields.NotInformed, fields.NotInformed, defaultTargets())

	assert.Equal(t, []string{
		"Conduzir reunião executiva com fornecedor crítico e plano 5W2H (D+3).",
		"Ativar contingência p/ equipamentos críticos e alternativas logísticas (D+7).",
		"Acionar frente regulatória/jurídica para destravar licenças/embargos (D+3).",
	}, steps)
}

func TestNextSteps_OwnersCappedAtThree(t *testing.T) {
	f := fields.New()
	steps := NextSteps(f.Numbers(), f.Observations, fields.NotInformed,
		"Ana; Bruno; Carla; Davi", defaultTargets())

	require.Len(t, steps, 1)
	assert.Equal(t, "Responsáveis sugeridos: Ana, Bruno, Carla.", steps[0])
}

func TestLessons_Patterns(t *testing.T) {
	f := fields.New()
	f.CPI = "0.85"
	f.SPI = "0.90"
	f.PhysicalProgress = "50"
	f.FinancialProgress = "70"
	f.Stakeholders = "Maria; João"
	f.Schedule = []fields.Task{
		{Name: "Montagem", End: tptr(evalDate.AddDate(0, 0, -1)), Critical: true},
	}

	lessons := Lessons(f, f.Numbers(), defaultTargets(), evalDate)

	require.Len(t, lessons, 4)
	assert.Equal(t, "Desvio de custo (CPI abaixo da meta).", lessons[0].Problema)
	assert.Equal(t, "Risco de atraso (SPI abaixo da meta).", lessons[1].Problema)
	assert.Equal(t, "Assimetria físico x financeiro ≥15pp.", lessons[2].Problema)
	assert.Equal(t, "Tarefa crítica atrasada: Montagem.", lessons[3].Problema)
	for _, l := range lessons {
		assert.Equal(t, "Maria", l.Owner)
		assert.NotEmpty(t, l.Prazo)
		assert.NotEmpty(t, l.Categoria)
	}
}

func TestLessons_DefaultOwner(t *testing.T) {
	f := fields.New()
	f.CPI = "0.80"

	lessons := Lessons(f, f.Numbers(), defaultTargets(), evalDate)
	require.Len(t, lessons, 1)
	assert.Equal(t, "PMO/Projeto", lessons[0].Owner)
}

func TestLessons_NoDeviationsNoRecords(t *testing.T) {
	f := fields.New()
	f.CPI = "1.05"
	assert.Empty(t, Lessons(f, f.Numbers(), defaultTargets(), evalDate))
}
