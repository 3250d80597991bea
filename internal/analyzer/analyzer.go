// Package analyzer orchestrates one full project analysis: numeric
// normalization, risk scoring, pillar assessment, strategy fit, alignment,
// recommendations, lessons and the rendered executive report. The pipeline
// is deterministic for a given input and evaluation date.
package analyzer

import (
	"context"
	"time"

	"vera-api/internal/analyzer/advice"
	"vera-api/internal/analyzer/fields"
	"vera-api/internal/analyzer/pillar"
	"vera-api/internal/analyzer/report"
	"vera-api/internal/analyzer/risk"
	"vera-api/internal/common/config"
)

// APIVersion is echoed in every response for consumer compatibility checks.
const APIVersion = "1.4.0"

// InterpretedFields echoes back the raw fields alongside their parsed
// numeric views, so RPA consumers can audit what the engine understood.
type InterpretedFields struct {
	Name              string   `json:"nome_projeto"`
	CPI               string   `json:"cpi"`
	SPI               string   `json:"spi"`
	PhysicalProgress  string   `json:"avanco_fisico"`
	FinancialProgress string   `json:"avanco_financeiro"`
	ContractType      string   `json:"tipo_contrato"`
	Stakeholders      string   `json:"stakeholders"`
	Observations      string   `json:"observacoes"`
	Pillar            string   `json:"pilar"`
	Objective         string   `json:"objetivo"`
	Scope             string   `json:"escopo"`
	PlannedEndDate    string   `json:"data_final_planejada"`
	StatusSummary     []string `json:"resumo_status"`
	NextPeriodPlans   []string `json:"planos_proximo_periodo"`
	AttentionPoints   []string `json:"pontos_atencao"`

	CPINum               *float64 `json:"cpi_num"`
	SPINum               *float64 `json:"spi_num"`
	PhysicalProgressNum  *float64 `json:"avanco_fisico_num"`
	FinancialProgressNum *float64 `json:"avanco_financeiro_num"`

	FinalPillar string `json:"pilar_final"`
}

// IndicatorValues carries the parsed auxiliary indices.
type IndicatorValues struct {
	ISP  *float64 `json:"isp"`
	IDP  *float64 `json:"idp"`
	IDCo *float64 `json:"idco"`
	IDB  *float64 `json:"idb"`
}

// KPIs are the derived gap metrics against the targets.
type KPIs struct {
	GapPF  *float64 `json:"gap_pf"`
	GapCPI *float64 `json:"gap_cpi"`
	GapSPI *float64 `json:"gap_spi"`
}

// StrategyFitResult is the wire view of the fit layer.
type StrategyFitResult struct {
	Score           *int    `json:"score"`
	SuggestedPillar *string `json:"pilar_sugerido"`
	Justification   *string `json:"justificativa"`
}

// AlignmentResult is the wire view of the strategic-alignment layer.
type AlignmentResult struct {
	AdjustedScore int    `json:"score_ajustado"`
	Level         string `json:"nivel"`
	Route         string `json:"rota_recomendada"`
}

// Result is the complete analysis payload. Field names follow the contract
// the consuming bots were built against.
type Result struct {
	APIVersion        string            `json:"versao_api"`
	Interpreted       InterpretedFields `json:"campos_interpretados"`
	Indicators        IndicatorValues   `json:"indicadores"`
	KPIs              KPIs              `json:"kpis"`
	RiskScore         float64           `json:"score_risco"`
	RiskClass         string            `json:"classificacao_risco"`
	KeyRisks          []string          `json:"riscos_chave"`
	StrategyFit       StrategyFitResult `json:"strategy_fit"`
	DeclaredPillar    string            `json:"pilar_declarado"`
	SuggestedPillar   *string           `json:"pilar_sugerido"`
	DivergentPillar   bool              `json:"pilar_divergente"`
	StepsRecommended  []string          `json:"proximos_passos_recomendado"`
	StepsCurrent      []string          `json:"proximos_passos_atual"`
	Lessons           []advice.Lesson   `json:"licoes_aprendidas"`
	Alignment         *AlignmentResult  `json:"alinhamento_estrategico,omitempty"`
	ExternalEvidence  []string          `json:"evidencias_externas,omitempty"`
	ConclusionTXT     string            `json:"conclusao_executiva"`
	ConclusionMD      string            `json:"conclusao_executiva_markdown"`
	ConclusionHTML    string            `json:"conclusao_executiva_html"`
}

// EvidenceLookup abstracts the external-evidence fetcher so the engine can
// be tested without a network.
type EvidenceLookup interface {
	Lookup(ctx context.Context, topics []string) []string
}

// Engine runs analyses with a fixed configuration snapshot.
type Engine struct {
	features config.FeatureConfig
	targets  config.TargetConfig
	scorer   *risk.Scorer
	evidence EvidenceLookup

	// now is injectable for deterministic schedule evaluation in tests.
	now func() time.Time
}

// Option adjusts an Engine at construction time.
type Option func(*Engine)

// WithClock fixes the evaluation date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithEvidence wires the external-evidence fetcher.
func WithEvidence(lookup EvidenceLookup) Option {
	return func(e *Engine) { e.evidence = lookup }
}

// NewEngine builds the analysis engine from a configuration snapshot.
func NewEngine(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		features: cfg.Features,
		targets:  cfg.Targets,
		scorer: risk.NewScorer(risk.Config{
			IndexTarget:   cfg.Targets.Index,
			HighThreshold: cfg.Risk.HighThreshold,
			SchedulePack:  cfg.Features.SchedulePack,
			FinancePack:   cfg.Features.FinancePack,
		}),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the full pipeline over an extracted field set.
func (e *Engine) Analyze(ctx context.Context, f fields.ProjectFields) Result {
	at := e.now()
	nums := f.Numbers()

	pillarTargets := pillar.Targets{CPI: e.targets.CPI, SPI: e.targets.SPI, Index: e.targets.Index}
	adviceTargets := advice.Targets{CPI: e.targets.CPI, SPI: e.targets.SPI, Index: e.targets.Index}

	assessment := e.scorer.Score(f, nums, at)
	pillars := pillar.Assess(f, nums, pillarTargets)

	keyRisks := advice.KeyRisks(f, nums, adviceTargets, at)

	// recommended track follows the inferred pillar, current track the declared one
	recommendedPillar := pillars.Final
	if pillars.Suggested != nil {
		recommendedPillar = string(*pillars.Suggested)
	}
	stepsRecommended := advice.NextSteps(nums, f.Observations, recommendedPillar, f.Stakeholders, adviceTargets)
	stepsCurrent := advice.NextSteps(nums, f.Observations, pillars.Declared, f.Stakeholders, adviceTargets)

	var fit pillar.Fit
	if e.features.StrategyFit {
		fit = pillar.StrategyFit(f, nums, pillarTargets)
	}

	var alignment *AlignmentResult
	if e.features.StrategyFit && fit.Score != nil {
		a := pillar.Align(*fit.Score, pillars.Divergent, assessment.Classification)
		alignment = &AlignmentResult{AdjustedScore: a.AdjustedScore, Level: a.Level, Route: a.Route}
	}

	var lessons []advice.Lesson
	if e.features.LessonsLearned {
		lessons = advice.Lessons(f, nums, adviceTargets, at)
	}

	var externalEvidence []string
	if e.features.ExternalEvidence && e.evidence != nil {
		externalEvidence = e.evidence.Lookup(ctx, keyRisks)
	}

	justificationFinal := pillar.Justification(pillars.Final)
	var justificationSuggested string
	if pillars.Suggested != nil {
		justificationSuggested = pillar.Justification(string(*pillars.Suggested))
	}

	var reportAlignment *pillar.Alignment
	if alignment != nil {
		reportAlignment = &pillar.Alignment{
			AdjustedScore: alignment.AdjustedScore,
			Level:         alignment.Level,
			Route:         alignment.Route,
		}
	}

	rendered := report.Render(report.Input{
		Fields:                 f,
		Score:                  assessment.Score,
		Classification:         assessment.Classification,
		Pillars:                pillars,
		JustificationFinal:     justificationFinal,
		JustificationSuggested: justificationSuggested,
		Strategy:               fit,
		Alignment:              reportAlignment,
		KeyRisks:               keyRisks,
		StepsRecommended:       stepsRecommended,
		StepsCurrent:           stepsCurrent,
		Lessons:                lessons,
		Evidence:               externalEvidence,
		ProgressGap:            nums.ProgressGap(),
		FinancePack:            e.features.FinancePack,
		StrategyFit:            e.features.StrategyFit,
		Lean:                   e.features.LeanReport,
	})

	var suggestedName *string
	if pillars.Suggested != nil {
		s := string(*pillars.Suggested)
		suggestedName = &s
	}

	return Result{
		APIVersion:  APIVersion,
		Interpreted: interpreted(f, nums, pillars.Final),
		Indicators: IndicatorValues{
			ISP:  f.Indicators.ISP,
			IDP:  f.Indicators.IDP,
			IDCo: f.Indicators.IDCo,
			IDB:  f.Indicators.IDB,
		},
		KPIs:             kpis(nums, e.targets),
		RiskScore:        assessment.Score,
		RiskClass:        assessment.Classification,
		KeyRisks:         keyRisks,
		StrategyFit:      strategyFitResult(fit),
		DeclaredPillar:   pillars.Declared,
		SuggestedPillar:  suggestedName,
		DivergentPillar:  pillars.Divergent,
		StepsRecommended: stepsRecommended,
		StepsCurrent:     stepsCurrent,
		Lessons:          lessons,
		Alignment:        alignment,
		ExternalEvidence: externalEvidence,
		ConclusionTXT:    rendered.TXT,
		ConclusionMD:     rendered.MD,
		ConclusionHTML:   rendered.HTML,
	}
}

func interpreted(f fields.ProjectFields, nums fields.Numbers, finalPillar string) InterpretedFields {
	return InterpretedFields{
		Name:              f.Name,
		CPI:               f.CPI,
		SPI:               f.SPI,
		PhysicalProgress:  f.PhysicalProgress,
		FinancialProgress: f.FinancialProgress,
		ContractType:      f.ContractType,
		Stakeholders:      f.Stakeholders,
		Observations:      f.Observations,
		Pillar:            f.Pillar,
		Objective:         f.Objective,
		Scope:             f.Scope,
		PlannedEndDate:    f.PlannedEndDate,
		StatusSummary:     f.StatusSummary,
		NextPeriodPlans:   f.NextPeriodPlans,
		AttentionPoints:   f.AttentionPoints,

		CPINum:               nums.CPI,
		SPINum:               nums.SPI,
		PhysicalProgressNum:  nums.Physical,
		FinancialProgressNum: nums.Financial,

		FinalPillar: finalPillar,
	}
}

func kpis(nums fields.Numbers, targets config.TargetConfig) KPIs {
	k := KPIs{GapPF: nums.ProgressGap()}
	if nums.CPI != nil {
		gap := targets.CPI - *nums.CPI
		k.GapCPI = &gap
	}
	if nums.SPI != nil {
		gap := targets.SPI - *nums.SPI
		k.GapSPI = &gap
	}
	return k
}

func strategyFitResult(fit pillar.Fit) StrategyFitResult {
	out := StrategyFitResult{Score: fit.Score}
	if fit.Suggested != nil {
		s := string(*fit.Suggested)
		out.SuggestedPillar = &s
	}
	if fit.Justification != "" {
		j := fit.Justification
		out.Justification = &j
	}
	return out
}
