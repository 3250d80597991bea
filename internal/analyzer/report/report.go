// Package report renders the executive conclusion in the three formats the
// consuming bots expect. The TXT layout is the contract: RPA flows read it
// verbatim, so section order and wording are stable. MD mirrors TXT and HTML
// is the escaped TXT with <br/> line breaks.
package report

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"vera-api/internal/analyzer/advice"
	"vera-api/internal/analyzer/fields"
	"vera-api/internal/analyzer/pillar"
)

// Input carries everything the renderer needs, already computed.
type Input struct {
	Fields         fields.ProjectFields
	Score          float64
	Classification string

	Pillars                pillar.Assessment
	JustificationFinal     string
	JustificationSuggested string

	Strategy  pillar.Fit
	Alignment *pillar.Alignment

	KeyRisks         []string
	StepsRecommended []string
	StepsCurrent     []string
	Lessons          []advice.Lesson
	Evidence         []string

	ProgressGap *float64

	FinancePack bool
	StrategyFit bool
	Lean        bool
}

// Output holds the three renderings of the same report.
type Output struct {
	TXT  string
	MD   string
	HTML string
}

// leanLimit caps each bullet list when lean mode is on.
const leanLimit = 5

var riskEmoji = map[string]string{
	"Alto":  "🔴",
	"Médio": "🟠",
	"Baixo": "🟢",
}

func emoji(classification string) string {
	if e, ok := riskEmoji[classification]; ok {
		return e
	}
	return "⚠️"
}

func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Render builds the executive report.
func Render(in Input) Output {
	f := in.Fields
	name := f.Name
	if !fields.Informed(name) {
		name = "Projeto não identificado"
	}

	var b builder
	b.lean = in.Lean

	b.lines(
		fmt.Sprintf("📊 Relatório Executivo Preditivo – Projeto “%s”", name),
		"",
		"✅ Status Geral",
		"CPI: "+f.CPI,
		"SPI: "+f.SPI,
		"Avanço Físico: "+f.PhysicalProgress,
		"Avanço Financeiro: "+f.FinancialProgress,
		"Tipo de Contrato: "+f.ContractType,
		"Stakeholders: "+f.Stakeholders,
		fmt.Sprintf("Risco (classificação): %s %s (score interno: %.1f)", in.Classification, emoji(in.Classification), in.Score),
		"Observação: "+f.Observations,
	)
	if fields.Informed(f.Scope) {
		b.lines("Escopo: " + f.Scope)
	}
	if fields.Informed(f.PlannedEndDate) {
		b.lines("Data Final Planejada: " + f.PlannedEndDate)
	}

	objective := f.Objective
	if !fields.Informed(objective) {
		objective = "—"
	}
	b.lines("", "🎯 Objetivo do Projeto", objective)

	if len(f.StatusSummary) > 0 {
		b.lines("", "📝 RESUMO DA SITUAÇÃO ATUAL (PROGRESSO) E AÇÕES CORRETIVAS REALIZADAS")
		b.bullets(f.StatusSummary)
	}
	if len(f.NextPeriodPlans) > 0 {
		b.lines("", "📅 PLANOS PARA O PRÓXIMO PERÍODO")
		b.bullets(f.NextPeriodPlans)
	}
	if len(f.AttentionPoints) > 0 {
		b.lines("", "🔎 PONTOS DE ATENÇÃO")
		b.bullets(f.AttentionPoints)
	}

	b.lines(
		"",
		"📈 Diagnóstico de Performance",
		fmt.Sprintf("- Custo: CPI em %s → disciplina orçamentária.", f.CPI),
		fmt.Sprintf("- Prazo: SPI em %s → gestão de caminho crítico.", f.SPI),
		fmt.Sprintf("- Execução: físico (%s) vs. financeiro (%s).", f.PhysicalProgress, f.FinancialProgress),
		fmt.Sprintf("- Contrato: “%s” → reforçar governança de escopo/custos.", f.ContractType),
	)
	if in.ProgressGap != nil {
		b.lines(fmt.Sprintf("- Gap físico x financeiro: %.1fpp.", *in.ProgressGap))
	}
	renderIndicators(&b, f.Indicators)

	if in.FinancePack {
		renderFinancial(&b, f)
	}

	if len(in.KeyRisks) > 0 {
		b.lines("", "⚠️ Riscos‑chave identificados")
		b.bullets(in.KeyRisks)
	}

	b.lines(
		"",
		"📅 Projeção de Impactos",
		"- Curto prazo: risco de novos atrasos e pressão de custos.",
		"- Médio prazo: impacto em marcos contratuais e metas estratégicas.",
		"- Stakeholders: intensificar monitoramento e comunicação executiva.",
		"",
		"🧭 Recomendações Estratégicas (metas gerais)",
		"- Revisar caminho crítico e renegociar entregas críticas.",
		"- Metas-alvo: CPI ≥ 0,90 e SPI ≥ 0,95.",
		"- Integrar áreas e reforçar controle de produtividade.",
		"",
		"🏛 Pilar ECK (foco estratégico)",
	)
	renderPillars(&b, in)

	if in.StrategyFit && in.Strategy.Score != nil {
		b.lines("", "📐 Strategy Fit (ECK)", fmt.Sprintf("- Score (0-100): %d", *in.Strategy.Score))
		if in.Strategy.Suggested != nil {
			b.lines(fmt.Sprintf("- Pilar dominante sugerido: %s", *in.Strategy.Suggested))
		}
	}
	if in.Alignment != nil {
		b.lines(
			"",
			"🧮 Alinhamento Estratégico",
			fmt.Sprintf("- Score ajustado (0-100): %d", in.Alignment.AdjustedScore),
			"- Nível: "+in.Alignment.Level,
			"- Rota recomendada: "+in.Alignment.Route,
		)
	}

	if len(in.StepsRecommended) > 0 {
		b.lines("", "▶ Próximos Passos — (Recomendado, alinhado ao Pilar sugerido)")
		b.bullets(in.StepsRecommended)
	}
	if len(in.StepsCurrent) > 0 {
		b.lines("", "▶ Próximos Passos — (Atual, alinhado ao Pilar declarado)")
		b.bullets(in.StepsCurrent)
	}

	if len(in.Lessons) > 0 {
		b.lines("", "📚 Lições Aprendidas (sugeridas)")
		for _, l := range in.Lessons {
			b.lines(
				"- Problema: "+l.Problema,
				"  • Causa-raiz: "+l.CausaRaiz,
				"  • Contramedida: "+l.Contramedida,
				fmt.Sprintf("  • Owner: %s   • Prazo: %s   • Categoria: %s", l.Owner, l.Prazo, l.Categoria),
			)
		}
	}

	if len(in.Evidence) > 0 {
		b.lines("", "🌐 Evidências Externas")
		b.bullets(in.Evidence)
	}

	b.lines("", "✅ Resumo Executivo")
	b.lines(fmt.Sprintf(
		"O projeto “%s” requer atenção %s %s. Considerar foco no pilar %s e disciplina de execução para assegurar valor e entrega.",
		name, strings.ToLower(in.Classification), emoji(in.Classification), summaryPillar(in),
	))

	txt := strings.TrimSpace(b.String())
	return Output{
		TXT:  txt,
		MD:   txt,
		HTML: strings.ReplaceAll(html.EscapeString(txt), "\n", "<br/>"),
	}
}

// summaryPillar picks the pillar highlighted in the closing sentence: the
// suggested one when divergent, otherwise the declared or final pillar.
func summaryPillar(in Input) string {
	if in.Pillars.Divergent && in.Pillars.Suggested != nil {
		return string(*in.Pillars.Suggested)
	}
	if fields.Informed(in.Pillars.Declared) {
		return in.Pillars.Declared
	}
	return in.Pillars.Final
}

func renderIndicators(b *builder, ind fields.Indicators) {
	entries := []struct {
		label string
		value *float64
	}{
		{"ISP", ind.ISP},
		{"IDP", ind.IDP},
		{"IDCo", ind.IDCo},
		{"IDB", ind.IDB},
	}
	any := false
	for _, e := range entries {
		if e.value != nil {
			any = true
			break
		}
	}
	if !any {
		return
	}
	b.lines("- Indicadores de desempenho (meta = 1,00):")
	for _, e := range entries {
		if e.value != nil {
			b.lines(fmt.Sprintf("  • %s: %s", e.label, fnum(*e.value)))
		}
	}
}

func renderFinancial(b *builder, f fields.ProjectFields) {
	fin := f.EffectiveFinancial()
	if fin.ApprovedCapex == nil && fin.CommittedCapex == nil && fin.ExecutedCapex == nil &&
		fin.EV == nil && fin.PV == nil && fin.AC == nil && fin.EAC == nil && fin.VAC == nil {
		return
	}
	b.lines("", "💰 Financeiro (resumo)")
	if fin.ApprovedCapex != nil {
		b.lines("- CAPEX Aprovado: " + fnum(*fin.ApprovedCapex))
	}
	if fin.CommittedCapex != nil {
		b.lines("- CAPEX Comprometido: " + fnum(*fin.CommittedCapex))
	}
	if fin.ExecutedCapex != nil {
		b.lines("- CAPEX Executado: " + fnum(*fin.ExecutedCapex))
	}
	var evm []string
	for _, e := range []struct {
		label string
		value *float64
	}{
		{"EV", fin.EV}, {"PV", fin.PV}, {"AC", fin.AC}, {"EAC", fin.EAC}, {"VAC", fin.VAC},
	} {
		if e.value != nil {
			evm = append(evm, e.label+"="+fnum(*e.value))
		}
	}
	if len(evm) > 0 {
		b.lines("- " + strings.Join(evm, ", "))
	}
}

func renderPillars(b *builder, in Input) {
	declared := in.Pillars.Declared
	if fields.Informed(declared) {
		b.lines("- Pilar declarado: " + declared)
	}
	if in.Pillars.Divergent && in.Pillars.Suggested != nil {
		b.lines(fmt.Sprintf("- Pilar sugerido (análise): %s ⚠️ (recomendado realinhar)", *in.Pillars.Suggested))
		if in.JustificationSuggested != "" {
			b.lines("- Justificativa (sugerido): " + in.JustificationSuggested)
		}
		b.lines("- Justificativa (atual): " + in.JustificationFinal)
		return
	}
	show := in.Pillars.Final
	if fields.Informed(declared) {
		show = declared
	}
	b.lines("- Pilar: "+show, "- Justificativa: "+in.JustificationFinal)
}

// builder accumulates report lines, applying the lean bullet cap.
type builder struct {
	sb   strings.Builder
	lean bool
}

func (b *builder) lines(ls ...string) {
	for _, l := range ls {
		if b.sb.Len() > 0 {
			b.sb.WriteByte('\n')
		}
		b.sb.WriteString(l)
	}
}

func (b *builder) bullets(items []string) {
	if b.lean && len(items) > leanLimit {
		items = items[:leanLimit]
	}
	for _, it := range items {
		b.lines("- " + it)
	}
}

func (b *builder) String() string { return b.sb.String() }
