package config

import "time"

// DomainConfig holds all configurable editor rules and constraints
type DomainConfig struct {
	// Document constraints
	MaxNodesPerDocument int
	MaxTextLength       int
	DefaultRootText     string
	DefaultDocumentName string

	// History
	MaxHistoryDepth int

	// Viewport
	MinScale        float64
	MaxScale        float64
	ZoomStep        float64
	MaxFitScale     float64
	FitPadding      float64
	RecenterAnchorY float64

	// Persistence
	ViewportSaveDebounce time.Duration

	// Listing
	MaxDocumentsPerQuery int
}

// DefaultDomainConfig returns the default editor configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Document constraints
		MaxNodesPerDocument: 10000,
		MaxTextLength:       5000,
		DefaultRootText:     "Central Topic",
		DefaultDocumentName: "Untitled Map",

		// History: snapshots beyond this depth are evicted oldest-first
		MaxHistoryDepth: 50,

		// Viewport: scale is clamped to [MinScale, MaxScale] after every
		// change; fit-to-content never zooms in past MaxFitScale
		MinScale:        0.2,
		MaxScale:        3.0,
		ZoomStep:        0.1,
		MaxFitScale:     2.0,
		FitPadding:      80,
		RecenterAnchorY: 100,

		// Continuous panning coalesces into one write per debounce window
		ViewportSaveDebounce: 800 * time.Millisecond,

		MaxDocumentsPerQuery: 1000,
	}
}
