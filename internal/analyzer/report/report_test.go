package report

import (
	"fmt"
	"strings"
	"testing"

	"vera-api/internal/analyzer/advice"
	"vera-api/internal/analyzer/fields"
	"vera-api/internal/analyzer/pillar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func baseInput() Input {
	f := fields.New()
	f.Name = "Expansão Mina Norte"
	f.CPI = "0,82"
	f.SPI = "0,91"
	f.PhysicalProgress = "70%"
	f.FinancialProgress = "85%"
	f.ContractType = "EPC"
	f.Observations = "Atraso no fornecedor"

	return Input{
		Fields:             f,
		Score:              11,
		Classification:     "Alto",
		Pillars:            pillar.Assessment{Declared: fields.NotInformed, Final: fields.NotInformed},
		JustificationFinal: "Pilar declarado: Não informado",
		FinancePack:        true,
		StrategyFit:        true,
	}
}

func TestRender_SectionOrder(t *testing.T) {
	out := Render(baseInput())

	sections := []string{
		"📊 Relatório Executivo Preditivo – Projeto “Expansão Mina Norte”",
		"✅ Status Geral",
		"🎯 Objetivo do Projeto",
		"📈 Diagnóstico de Performance",
		"📅 Projeção de Impactos",
		"🧭 Recomendações Estratégicas (metas gerais)",
		"🏛 Pilar ECK (foco estratégico)",
		"✅ Resumo Executivo",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out.TXT, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}
}

func TestRender_StatusValuesAndScore(t *testing.T) {
	out := Render(baseInput())

	assert.Contains(t, out.TXT, "CPI: 0,82")
	assert.Contains(t, out.TXT, "Risco (classificação): Alto 🔴 (score interno: 11.0)")
	assert.Contains(t, out.TXT, "requer atenção alto 🔴")
}

func TestRender_MarkdownMirrorsTXT(t *testing.T) {
	out := Render(baseInput())
	assert.Equal(t, out.TXT, out.MD)
}

func TestRender_HTMLIsEscapedTXT(t *testing.T) {
	in := baseInput()
	in.Fields.Observations = "Escopo <pendente> & risco"
	out := Render(in)

	assert.NotContains(t, out.HTML, "\n")
	assert.Contains(t, out.HTML, "<br/>")
	assert.Contains(t, out.HTML, "&lt;pendente&gt; &amp; risco")
}

func TestRender_DivergentPillar(t *testing.T) {
	suggested := pillar.Excellence
	in := baseInput()
	in.Pillars = pillar.Assessment{
		Declared:  "Foco no Cliente",
		Suggested: &suggested,
		Divergent: true,
		Final:     "Foco no Cliente",
	}
	in.JustificationFinal = pillar.Justification("Foco no Cliente")
	in.JustificationSuggested = pillar.Justification(string(suggested))

	out := Render(in)
	assert.Contains(t, out.TXT, "- Pilar declarado: Foco no Cliente")
	assert.Contains(t, out.TXT, "- Pilar sugerido (análise): Excelência Organizacional ⚠️ (recomendado realinhar)")
	assert.Contains(t, out.TXT, "- Justificativa (sugerido):")
	assert.Contains(t, out.TXT, "- Justificativa (atual):")
	// divergent summary highlights the suggested pillar
	assert.Contains(t, out.TXT, "Considerar foco no pilar Excelência Organizacional")
}

func TestRender_FinancePackGate(t *testing.T) {
	in := baseInput()
	in.Fields.Financial.ApprovedCapex = fptr(1200000)
	in.Fields.Financial.VAC = fptr(-200000)

	out := Render(in)
	assert.Contains(t, out.TXT, "💰 Financeiro (resumo)")
	assert.Contains(t, out.TXT, "- CAPEX Aprovado: 1200000")
	assert.Contains(t, out.TXT, "VAC=-200000")

	in.FinancePack = false
	out = Render(in)
	assert.NotContains(t, out.TXT, "💰 Financeiro (resumo)")
}

func TestRender_IndicatorsAndGap(t *testing.T) {
	in := baseInput()
	in.Fields.Indicators.ISP = fptr(0.95)
	in.ProgressGap = fptr(15)

	out := Render(in)
	assert.Contains(t, out.TXT, "- Indicadores de desempenho (meta = 1,00):")
	assert.Contains(t, out.TXT, "  • ISP: 0.95")
	assert.Contains(t, out.TXT, "- Gap físico x financeiro: 15.0pp.")
}

func TestRender_StrategyFitAndAlignment(t *testing.T) {
	score := 66
	suggested := pillar.Customer
	in := baseInput()
	in.Strategy = pillar.Fit{Score: &score, Suggested: &suggested}
	in.Alignment = &pillar.Alignment{AdjustedScore: 46, Level: pillar.AlignmentMedium, Route: pillar.RouteSafeguards}

	out := Render(in)
	assert.Contains(t, out.TXT, "📐 Strategy Fit (ECK)")
	assert.Contains(t, out.TXT, "- Score (0-100): 66")
	assert.Contains(t, out.TXT, "- Pilar dominante sugerido: Foco no Cliente")
	assert.Contains(t, out.TXT, "🧮 Alinhamento Estratégico")
	assert.Contains(t, out.TXT, "- Rota recomendada: Continuar com salvaguardas")
}

func TestRender_LessonsAndEvidence(t *testing.T) {
	in := baseInput()
	in.Lessons = []advice.Lesson{{
		Problema:     "Desvio de custo (CPI abaixo da meta).",
		CausaRaiz:    "Estimativas subavaliadas.",
		Contramedida: "Instalar Change Control Board.",
		Owner:        "Maria",
		Prazo:        "D+14",
		Categoria:    "Financeiro/Controle",
	}}
	in.Evidence = []string{"Caso semelhante: projeto X (2019)."}

	out := Render(in)
	assert.Contains(t, out.TXT, "📚 Lições Aprendidas (sugeridas)")
	assert.Contains(t, out.TXT, "  • Owner: Maria   • Prazo: D+14   • Categoria: Financeiro/Controle")
	assert.Contains(t, out.TXT, "🌐 Evidências Externas")
	assert.Contains(t, out.TXT, "- Caso semelhante: projeto X (2019).")
}

func TestRender_LeanCapsBullets(t *testing.T) {
	in := baseInput()
	in.Lean = true
	for i := 1; i <= 8; i++ {
		in.KeyRisks = append(in.KeyRisks, fmt.Sprintf("Risco %d", i))
	}

	out := Render(in)
	assert.Contains(t, out.TXT, "- Risco 5")
	assert.NotContains(t, out.TXT, "- Risco 6")
}

func TestRender_MissingNameFallsBack(t *testing.T) {
	in := baseInput()
	in.Fields.Name = fields.NotInformed

	out := Render(in)
	assert.Contains(t, out.TXT, "Projeto “Projeto não identificado”")
}
