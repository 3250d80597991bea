// Package fields defines the canonical field-set every analysis consumes.
// Scalars absent from the input carry the NotInformed sentinel and containers
// stay empty, so downstream rules never deal with nil strings.
package fields

import (
	"time"

	"vera-api/internal/analyzer/textnorm"
)

// NotInformed is the sentinel value for scalar fields absent from the input.
const NotInformed = "Não informado"

// ProjectFields is the canonical, post-extraction view of a project status
// submission. Constructed once per request and immutable thereafter.
type ProjectFields struct {
	Name              string
	CPI               string
	SPI               string
	PhysicalProgress  string
	FinancialProgress string
	ContractType      string
	Stakeholders      string
	Observations      string
	Pillar            string
	Objective         string
	Scope             string
	PlannedEndDate    string

	StatusSummary   []string
	NextPeriodPlans []string
	AttentionPoints []string

	Indicators Indicators
	Schedule   []Task
	Baseline   Baseline
	Financial  Financial
}

// Indicators holds the four auxiliary performance indices, target 1.00 each.
type Indicators struct {
	ISP  *float64
	IDP  *float64
	IDCo *float64
	IDB  *float64
}

// Task is one schedule entry. Start/End stay nil when unparseable.
type Task struct {
	Name     string
	Start    *time.Time
	End      *time.Time
	Pct      *float64
	Critical bool
}

// Overdue reports whether the task's end date has passed without completion,
// evaluated against an explicit reference date.
func (t Task) Overdue(at time.Time) bool {
	if t.End == nil {
		return false
	}
	if !t.End.Before(at) {
		return false
	}
	return t.Pct == nil || *t.Pct < 100
}

// Baseline carries the approved plan reference values.
type Baseline struct {
	PlannedDate   *time.Time
	ApprovedCapex *float64
}

// Financial is the earned-value snapshot. All fields optional.
type Financial struct {
	ApprovedCapex  *float64
	CommittedCapex *float64
	ExecutedCapex  *float64
	EV             *float64
	PV             *float64
	AC             *float64
	EAC            *float64
	VAC            *float64
}

// Numbers are the scalar fields after numeric normalization. A nil entry
// means the raw value was absent or unparseable; rules skip it either way.
type Numbers struct {
	CPI       *float64
	SPI       *float64
	Physical  *float64
	Financial *float64
}

// New returns a ProjectFields with every scalar set to the sentinel.
func New() ProjectFields {
	return ProjectFields{
		Name:              NotInformed,
		CPI:               NotInformed,
		SPI:               NotInformed,
		PhysicalProgress:  NotInformed,
		FinancialProgress: NotInformed,
		ContractType:      NotInformed,
		Stakeholders:      NotInformed,
		Observations:      NotInformed,
		Pillar:            NotInformed,
		Objective:         NotInformed,
		Scope:             NotInformed,
		PlannedEndDate:    NotInformed,
	}
}

// Numbers normalizes the scalar metric fields once, so every engine shares
// the same parsed view.
func (f ProjectFields) Numbers() Numbers {
	var n Numbers
	if v, ok := textnorm.ToNumber(f.CPI); ok {
		n.CPI = &v
	}
	if v, ok := textnorm.ToNumber(f.SPI); ok {
		n.SPI = &v
	}
	if v, ok := textnorm.PercentToNumber(f.PhysicalProgress); ok {
		n.Physical = &v
	}
	if v, ok := textnorm.PercentToNumber(f.FinancialProgress); ok {
		n.Financial = &v
	}
	return n
}

// ProgressGap is the absolute physical-vs-financial difference in percentage
// points, or nil when either side is unknown.
func (n Numbers) ProgressGap() *float64 {
	if n.Physical == nil || n.Financial == nil {
		return nil
	}
	gap := *n.Physical - *n.Financial
	if gap < 0 {
		gap = -gap
	}
	return &gap
}

// EffectiveFinancial resolves the approved-capex alias: the financial block
// wins, the cost baseline is the fallback.
func (f ProjectFields) EffectiveFinancial() Financial {
	fin := f.Financial
	if fin.ApprovedCapex == nil {
		fin.ApprovedCapex = f.Baseline.ApprovedCapex
	}
	return fin
}

// Informed reports whether a scalar carries a real value.
func Informed(s string) bool {
	return s != "" && s != NotInformed
}
