package model

// TokenEstimator approximates token counts for text when a provider does not
// report usage. Isolating the heuristic behind an interface lets a real
// tokenizer replace it without touching pipeline logic.
type TokenEstimator interface {
	Estimate(text string) int
}

// HeuristicEstimator approximates tokens as characters divided by four, the
// conventional rough average for English text.
type HeuristicEstimator struct{}

// Estimate implements TokenEstimator.
func (HeuristicEstimator) Estimate(text string) int { return len(text) / 4 }
