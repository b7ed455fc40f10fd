// Package summary renders the post-refresh dataset summary artifact.
package summary

import "time"

// Entry is one ranked line of the top-GDP list.
type Entry struct {
	Rank int
	Name string
	GDP  float64
}

// Input is the deterministic input used for summary rendering.
type Input struct {
	TotalCountries int
	Top            []Entry
	CompletedAt    time.Time
}

// Renderer writes a summary artifact for a completed refresh cycle.
// Implementations must be safe to fail: the orchestrator logs and continues.
type Renderer interface {
	Render(input Input) error
}
