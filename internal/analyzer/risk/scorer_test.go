package risk

import (
	"testing"
	"time"

	"vera-api/internal/analyzer/fields"

	"github.com/stretchr/testify/assert"
)

func defaultConfig() Config {
	return Config{
		IndexTarget:   1.00,
		HighThreshold: 7,
		SchedulePack:  true,
		FinancePack:   true,
	}
}

func fptr(v float64) *float64 { return &v }

func tptr(t time.Time) *time.Time { return &t }

var evalDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func TestScorer_CPIBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		cpi      string
		expected float64
	}{
		{"below lower bound", "0.80", 5},
		{"exactly 0.85 contributes 3 not 5", "0.85", 3},
		{"just under 0.90", "0.89", 3},
		{"exactly 0.90 contributes nothing", "0.90", 0},
		{"above target", "1.05", 0},
	}

	s := NewScorer(defaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields.New()
			f.CPI = tt.cpi
			got := s.Score(f, f.Numbers(), evalDate)
			assert.Equal(t, tt.expected, got.Score)
		})
	}
}

func TestScorer_SPIBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		spi      string
		expected float64
	}{
		{"below lower bound", "0.85", 5},
		{"exactly 0.90 contributes 3 not 5", "0.90", 3},
		{"exactly 0.95 contributes nothing", "0.95", 0},
	}

	s := NewScorer(defaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields.New()
			f.SPI = tt.spi
			got := s.Score(f, f.Numbers(), evalDate)
			assert.Equal(t, tt.expected, got.Score)
		})
	}
}

func TestScorer_ProgressGap(t *testing.T) {
	tests := []struct {
		name       string
		physical   string
		financial  string
		expected   float64
		traceCount int
	}{
		{"gap 15pp adds 2", "50%", "35%", 2, 1},
		{"gap 10pp adds 1", "50%", "40%", 1, 1},
		{"gap 5pp adds nothing", "50%", "45%", 0, 0},
		{"one side missing is skipped", "50%", "Não informado", 0, 0},
	}

	s := NewScorer(defaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields.New()
			f.PhysicalProgress = tt.physical
			f.FinancialProgress = tt.financial
			got := s.Score(f, f.Numbers(), evalDate)
			assert.Equal(t, tt.expected, got.Score)
			assert.Len(t, got.Trace, tt.traceCount)
		})
	}
}

func TestScorer_KeywordCap(t *testing.T) {
	s := NewScorer(defaultConfig())

	f := fields.New()
	f.Observations = "atraso com fornecedor, embargo, multas, paralisação e risco de custo"
	got := s.Score(f, f.Numbers(), evalDate)
	// more than four distinct keywords present, capped at +4
	assert.Equal(t, 4.0, got.Score)

	f2 := fields.New()
	f2.Observations = "atraso no cronograma"
	got2 := s.Score(f2, f2.Numbers(), evalDate)
	assert.Equal(t, 1.0, got2.Score)
}

func TestScorer_Indicators(t *testing.T) {
	s := NewScorer(defaultConfig())

	f := fields.New()
	f.Indicators = fields.Indicators{
		ISP:  fptr(0.85), // +3
		IDP:  fptr(0.95), // +1
		IDCo: fptr(1.00), // +0
		IDB:  nil,        // skipped
	}
	got := s.Score(f, f.Numbers(), evalDate)
	assert.Equal(t, 4.0, got.Score)
	// the at-target index still leaves an audit entry
	assert.Contains(t, got.Trace, "IDCO≥1,00: +0")
}

func TestScorer_ScheduleRisk(t *testing.T) {
	s := NewScorer(defaultConfig())
	past := evalDate.AddDate(0, -1, 0)
	future := evalDate.AddDate(0, 1, 0)

	tests := []struct {
		name     string
		task     fields.Task
		expected float64
	}{
		{
			name:     "overdue critical with low progress stacks to 4",
			task:     fields.Task{Name: "Fundação", End: tptr(past), Pct: fptr(20), Critical: true},
			expected: 4,
		},
		{
			name:     "overdue non-critical adds 1",
			task:     fields.Task{Name: "Pintura", End: tptr(past), Pct: fptr(60)},
			expected: 1,
		},
		{
			name:     "complete task is never overdue",
			task:     fields.Task{Name: "Terraplanagem", End: tptr(past), Pct: fptr(100), Critical: true},
			expected: 0,
		},
		{
			name:     "future critical below 30pct adds 1",
			task:     fields.Task{Name: "Comissionamento", End: tptr(future), Pct: fptr(10), Critical: true},
			expected: 1,
		},
		{
			name:     "unknown percent counts as incomplete",
			task:     fields.Task{Name: "Montagem", End: tptr(past), Critical: true},
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields.New()
			f.Schedule = []fields.Task{tt.task}
			got := s.Score(f, f.Numbers(), evalDate)
			assert.Equal(t, tt.expected, got.Score)
		})
	}
}

func TestScorer_SchedulePackDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.SchedulePack = false
	s := NewScorer(cfg)

	f := fields.New()
	f.Schedule = []fields.Task{{Name: "Fundação", End: tptr(evalDate.AddDate(0, -1, 0)), Critical: true}}
	got := s.Score(f, f.Numbers(), evalDate)
	assert.Equal(t, 0.0, got.Score)
}

func TestScorer_FinanceRisk(t *testing.T) {
	s := NewScorer(defaultConfig())

	f := fields.New()
	f.Financial = fields.Financial{
		ApprovedCapex:  fptr(1000),
		CommittedCapex: fptr(1100), // +2
		EAC:            fptr(1200), // +2
		VAC:            fptr(-200), // +3
	}
	got := s.Score(f, f.Numbers(), evalDate)
	assert.Equal(t, 7.0, got.Score)
	assert.Equal(t, ClassHigh, got.Classification)
}

func TestScorer_ApprovedCapexFallsBackToBaseline(t *testing.T) {
	s := NewScorer(defaultConfig())

	f := fields.New()
	f.Baseline.ApprovedCapex = fptr(1000)
	f.Financial = fields.Financial{EAC: fptr(1500)}
	got := s.Score(f, f.Numbers(), evalDate)
	assert.Equal(t, 2.0, got.Score)
}

func TestScorer_Classify(t *testing.T) {
	s := NewScorer(defaultConfig())

	assert.Equal(t, ClassLow, s.Classify(0))
	assert.Equal(t, ClassLow, s.Classify(3.9))
	assert.Equal(t, ClassMedium, s.Classify(4))
	assert.Equal(t, ClassMedium, s.Classify(6.9))
	assert.Equal(t, ClassHigh, s.Classify(7))
	assert.Equal(t, ClassHigh, s.Classify(42))
}

func TestScorer_ConfigurableHighThreshold(t *testing.T) {
	cfg := defaultConfig()
	cfg.HighThreshold = 10
	s := NewScorer(cfg)

	assert.Equal(t, ClassMedium, s.Classify(9))
	assert.Equal(t, ClassHigh, s.Classify(10))
}

func TestScorer_EmptyFieldsScoreZero(t *testing.T) {
	s := NewScorer(defaultConfig())
	f := fields.New()
	got := s.Score(f, f.Numbers(), evalDate)

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, ClassLow, got.Classification)
	assert.Empty(t, got.Trace)
}

func TestScorer_Idempotent(t *testing.T) {
	s := NewScorer(defaultConfig())

	f := fields.New()
	f.CPI = "0.80"
	f.SPI = "0.92"
	f.Observations = "atraso no fornecedor crítico"

	first := s.Score(f, f.Numbers(), evalDate)
	second := s.Score(f, f.Numbers(), evalDate)
	assert.Equal(t, first, second)
}
