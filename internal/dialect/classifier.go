package dialect

// Classification is the result of scoring the evidence of a file.
type Classification struct {
	Kind            Kind
	Score           int
	TotalScore      int
	Confidence      float64
	RunnerUp        Kind
	RunnerUpScore   int
	ObservedSignals int
}

// Classifier scores evidence and picks a dominant dialect. Thresholds are
// applied by Eligible.
type Classifier struct{}

func (Classifier) Classify(e *Evidence) Classification {
	if e == nil || len(e.hints) == 0 {
		return Classification{Kind: Unknown}
	}

	var scores [kindCount]int
	total := 0
	for _, h := range e.hints {
		if h.Score <= 0 || h.Dialect <= Unknown || h.Dialect >= kindCount {
			continue
		}
		scores[h.Dialect] += h.Score
		total += h.Score
	}

	bestKind, bestScore := Unknown, 0
	runnerKind, runnerScore := Unknown, 0
	for k := Bash; k < kindCount; k++ {
		score := scores[k]
		if score > bestScore {
			runnerKind, runnerScore = bestKind, bestScore
			bestKind, bestScore = k, score
			continue
		}
		if score > runnerScore {
			runnerKind, runnerScore = k, score
		}
	}

	conf := 0.0
	if total > 0 {
		conf = float64(bestScore) / float64(total)
	}
	return Classification{
		Kind:            bestKind,
		Score:           bestScore,
		TotalScore:      total,
		Confidence:      conf,
		RunnerUp:        runnerKind,
		RunnerUpScore:   runnerScore,
		ObservedSignals: len(e.hints),
	}
}

// Eligible reports whether c is strong enough to mention.
func Eligible(c Classification) bool {
	if c.Kind == Unknown {
		return false
	}
	return c.Score >= threshold(c.Kind) && c.Confidence >= 0.6
}

func threshold(k Kind) int {
	switch k {
	case Bash:
		return 6
	case Python, Go:
		return 5
	default:
		return 1 << 30
	}
}
