// Package textparse turns the label-oriented status text pasted by RPA bots
// into the canonical field set. The grammar is line-based: "Label: value"
// scalars, bullet blocks under block labels, one task per bullet under
// "Tarefas" and "key: value" lines under "Financeiro". Unknown lines are
// skipped, never fatal.
package textparse

import (
	"strings"

	"vera-api/internal/analyzer/fields"
	"vera-api/internal/analyzer/textnorm"
)

// knownLabels is the normalized label vocabulary. A line only counts as a
// label when its key normalizes into this set, so free prose containing a
// colon does not terminate a bullet block.
var knownLabels = map[string]struct{}{
	"nome do projeto":                   {},
	"objetivo":                          {},
	"resumo status":                     {},
	"resumo da situacao atual":          {},
	"planos proximo periodo":            {},
	"planos para o proximo periodo":     {},
	"pontos de atencao":                 {},
	"cpi":                               {},
	"spi":                               {},
	"isp":                               {},
	"idp":                               {},
	"idco":                              {},
	"idb":                               {},
	"avanco fisico":                     {},
	"avanco financeiro":                 {},
	"tipo de contrato":                  {},
	"stakeholders":                      {},
	"data final planejada":              {},
	"baseline prazo":                    {},
	"baseline custo (capex aprovado)":   {},
	"baseline custo":                    {},
	"escopo":                            {},
	"observacoes":                       {},
	"tarefas":                           {},
	"financeiro":                        {},
	"pilar":                             {},
}

// splitLabel reports whether the line is a known "Label: value" line and
// returns the normalized key and the trimmed raw value.
func splitLabel(line string) (bool, string, string) {
	k, v, found := strings.Cut(line, ":")
	if !found {
		return false, "", ""
	}
	nk := textnorm.Normalize(k)
	if _, ok := knownLabels[nk]; !ok {
		return false, "", ""
	}
	return true, nk, strings.TrimSpace(v)
}

// orSentinel keeps the sentinel when the label carried no value.
func orSentinel(v string) string {
	if v == "" {
		return fields.NotInformed
	}
	return v
}

// Parse extracts the canonical field set from pasted status text.
func Parse(text string) fields.ProjectFields {
	f := fields.New()
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}
		ok, key, val := splitLabel(line)
		if !ok {
			i++
			continue
		}

		switch key {
		case "resumo status", "resumo da situacao atual":
			f.StatusSummary, i = collectBullets(lines, i+1)
			continue
		case "planos proximo periodo", "planos para o proximo periodo":
			f.NextPeriodPlans, i = collectBullets(lines, i+1)
			continue
		case "pontos de atencao":
			f.AttentionPoints, i = collectBullets(lines, i+1)
			continue
		case "tarefas":
			f.Schedule, i = collectTasks(lines, i+1)
			continue
		case "financeiro":
			f.Financial, i = collectFinancial(lines, i+1, f.Financial)
			continue
		case "nome do projeto":
			f.Name = orSentinel(val)
		case "objetivo":
			f.Objective = orSentinel(val)
		case "cpi":
			f.CPI = orSentinel(val)
		case "spi":
			f.SPI = orSentinel(val)
		case "isp", "idp", "idco", "idb":
			setIndicator(&f.Indicators, key, val)
		case "avanco fisico":
			f.PhysicalProgress = orSentinel(val)
		case "avanco financeiro":
			f.FinancialProgress = orSentinel(val)
		case "tipo de contrato":
			f.ContractType = orSentinel(val)
		case "stakeholders":
			f.Stakeholders = orSentinel(val)
		case "data final planejada":
			f.PlannedEndDate = orSentinel(val)
		case "baseline prazo":
			if d, ok := textnorm.ParseDate(val); ok {
				f.Baseline.PlannedDate = &d
			}
		case "baseline custo (capex aprovado)", "baseline custo":
			if n, ok := textnorm.ToNumber(val); ok {
				f.Baseline.ApprovedCapex = &n
			}
		case "escopo":
			f.Scope = orSentinel(val)
		case "observacoes":
			f.Observations = orSentinel(val)
		case "pilar":
			f.Pillar = orSentinel(val)
		}
		i++
	}

	return f
}

func setIndicator(ind *fields.Indicators, key, val string) {
	n, ok := textnorm.ToNumber(val)
	if !ok {
		return
	}
	switch key {
	case "isp":
		ind.ISP = &n
	case "idp":
		ind.IDP = &n
	case "idco":
		ind.IDCo = &n
	case "idb":
		ind.IDB = &n
	}
}

// collectBullets gathers "- item" lines until a blank line or the next known
// label. A continuation line without the dash is appended to the previous
// bullet.
func collectBullets(lines []string, start int) ([]string, int) {
	var bullets []string
	j := start
	for j < len(lines) {
		raw := strings.TrimSpace(lines[j])
		if raw == "" {
			break
		}
		if ok, _, _ := splitLabel(raw); ok {
			break
		}
		if strings.HasPrefix(raw, "- ") {
			bullets = append(bullets, strings.TrimSpace(raw[2:]))
		} else if len(bullets) > 0 {
			bullets[len(bullets)-1] = strings.TrimSpace(bullets[len(bullets)-1] + " " + raw)
		} else {
			bullets = append(bullets, raw)
		}
		j++
	}
	return bullets, j
}

// collectTasks gathers one task per bullet line, e.g.
// "- Nome: Fundação | Início: 2025-08-01 | Fim: 2025-09-15 | %: 60 | Crítica: Sim".
func collectTasks(lines []string, start int) ([]fields.Task, int) {
	var tasks []fields.Task
	j := start
	for j < len(lines) {
		raw := strings.TrimSpace(lines[j])
		if raw == "" {
			break
		}
		if ok, _, _ := splitLabel(raw); ok {
			break
		}
		if strings.HasPrefix(raw, "-") {
			if t, ok := parseTaskLine(strings.TrimSpace(strings.TrimLeft(raw, "-"))); ok {
				tasks = append(tasks, t)
			}
		}
		j++
	}
	return tasks, j
}

func parseTaskLine(raw string) (fields.Task, bool) {
	attrs := make(map[string]string)
	for _, part := range strings.Split(raw, "|") {
		k, v, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		attrs[textnorm.Normalize(k)] = strings.TrimSpace(v)
	}
	if len(attrs) == 0 {
		return fields.Task{}, false
	}

	t := fields.Task{Name: attrs["nome"]}
	if t.Name == "" {
		t.Name = raw
	}
	if d, ok := textnorm.ParseDate(attrs["inicio"]); ok {
		t.Start = &d
	}
	if d, ok := textnorm.ParseDate(attrs["fim"]); ok {
		t.End = &d
	}
	pctRaw := attrs["%"]
	if pctRaw == "" {
		pctRaw = attrs["pct"]
	}
	if n, ok := textnorm.ToNumber(pctRaw); ok {
		t.Pct = &n
	}
	switch textnorm.Normalize(attrs["critica"]) {
	case "sim", "true", "critica":
		t.Critical = true
	}
	return t, true
}

// financialKeys maps normalized "Financeiro" block keys to setters. Text
// input uses spaced labels and structured input uses snake_case; both funnel
// through the same canonical key.
var financialKeys = map[string]string{
	"capex aprovado":     "capex_aprovado",
	"capex_aprovado":     "capex_aprovado",
	"capex comprometido": "capex_comp",
	"capex comp":         "capex_comp",
	"capex_comp":         "capex_comp",
	"capex executado":    "capex_exec",
	"capex exec":         "capex_exec",
	"capex_exec":         "capex_exec",
	"ev":                 "ev",
	"pv":                 "pv",
	"ac":                 "ac",
	"eac":                "eac",
	"vac":                "vac",
}

// SetFinancial applies one raw financial entry onto the block, accepting the
// spaced and snake_case key spellings.
func SetFinancial(fin *fields.Financial, key, val string) {
	canonical, ok := financialKeys[textnorm.Normalize(key)]
	if !ok {
		return
	}
	n, okNum := textnorm.ToNumber(val)
	if !okNum {
		return
	}
	switch canonical {
	case "capex_aprovado":
		fin.ApprovedCapex = &n
	case "capex_comp":
		fin.CommittedCapex = &n
	case "capex_exec":
		fin.ExecutedCapex = &n
	case "ev":
		fin.EV = &n
	case "pv":
		fin.PV = &n
	case "ac":
		fin.AC = &n
	case "eac":
		fin.EAC = &n
	case "vac":
		fin.VAC = &n
	}
}

func collectFinancial(lines []string, start int, fin fields.Financial) (fields.Financial, int) {
	j := start
	for j < len(lines) {
		raw := strings.TrimSpace(lines[j])
		if raw == "" {
			break
		}
		if ok, _, _ := splitLabel(raw); ok {
			break
		}
		if k, v, found := strings.Cut(raw, ":"); found {
			SetFinancial(&fin, k, strings.TrimSpace(v))
		}
		j++
	}
	return fin, j
}
