package service

// StatusClassifier decides whether a free-text broker accumulation status means accumulation.
type StatusClassifier interface {
	IsAccumulation(status string) bool
}
