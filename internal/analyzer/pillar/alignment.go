package pillar

// Alignment is the strategic-alignment layer on top of the fit score: the
// fit is penalized for pillar divergence and for the risk classification,
// mapped to a tier and to a recommended route.
type Alignment struct {
	AdjustedScore int
	Level         string
	Route         string
}

// Alignment tiers reuse the risk tier labels.
const (
	AlignmentHigh   = "Alto"
	AlignmentMedium = "Médio"
	AlignmentLow    = "Baixo"
)

// Recommended routes.
const (
	RouteAccelerate = "Acelerar"
	RouteContinue   = "Continuar"
	RouteSafeguards = "Continuar com salvaguardas"
	RoutePausePivot = "Pausar ou pivotar"
)

// Align adjusts the fit score (divergence -15; risk Alto -20, Médio -10),
// labels it (>=70 Alto, >=40 Médio) and picks the route from the fixed
// (risk tier, alignment tier) decision table.
func Align(fitScore int, divergent bool, riskClassification string) Alignment {
	adjusted := fitScore
	if divergent {
		adjusted -= 15
	}
	switch riskClassification {
	case "Alto":
		adjusted -= 20
	case "Médio":
		adjusted -= 10
	}
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 100 {
		adjusted = 100
	}

	level := AlignmentLow
	switch {
	case adjusted >= 70:
		level = AlignmentHigh
	case adjusted >= 40:
		level = AlignmentMedium
	}

	return Alignment{
		AdjustedScore: adjusted,
		Level:         level,
		Route:         route(riskClassification, level),
	}
}

func route(risk, alignment string) string {
	switch risk {
	case "Baixo":
		switch alignment {
		case AlignmentHigh:
			return RouteAccelerate
		case AlignmentMedium:
			return RouteContinue
		default:
			return RouteSafeguards
		}
	case "Médio":
		if alignment == AlignmentHigh {
			return RouteContinue
		}
		return RouteSafeguards
	default: // Alto
		if alignment == AlignmentLow {
			return RoutePausePivot
		}
		return RouteSafeguards
	}
}
