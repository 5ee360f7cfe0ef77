package scoring

import "AraDetector/internal/domain/models"

// CompositeScore sums the weights of active signals.
func CompositeScore(signals []models.SignalEvaluation) int {
	score := 0
	for _, s := range signals {
		if s.Active {
			score += s.Weight
		}
	}
	return score
}

// alertTiers holds inclusive lower bounds, highest first.
var alertTiers = [...]struct {
	MinScore int
	Level    models.AlertLevel
}{
	{75, models.AlertCritical},
	{55, models.AlertHigh},
	{35, models.AlertMedium},
}

// AlertLevelFor maps a composite score to its alert tier.
func AlertLevelFor(score int) models.AlertLevel {
	for _, t := range alertTiers {
		if score >= t.MinScore {
			return t.Level
		}
	}
	return models.AlertLow
}
