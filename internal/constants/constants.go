// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Print business rules
const (
	// BleedCm is the tolerance added to each wall dimension to get the print size
	BleedCm = 10.0

	// MinBilledAreaM2 is the minimum area billed for a single print order
	MinBilledAreaM2 = 3.0

	// DefaultPlaceholderCm is the edge length used when a record has neither wall nor print size
	DefaultPlaceholderCm = 100.0
)

// Image quality constants
const (
	// QualityRedPxPerCm is the pixel density below which a print is rejected as too soft
	QualityRedPxPerCm = 10

	// QualityOrangePxPerCm is the pixel density below which a print gets a soft warning
	QualityOrangePxPerCm = 15

	// QualityGreenPxPerCm is the pixel density below which a print is considered good
	QualityGreenPxPerCm = 20

	// RecommendedPxPerCm is used to derive the maximum recommended print size
	RecommendedPxPerCm = 15
)

// Crop constants
const (
	// MinZoom replaces non-positive zoom factors
	MinZoom = 0.01
)

// Rendering constants
const (
	// DefaultRasterDPI is the density of the composited proof image
	DefaultRasterDPI = 150

	// DefaultFetchTimeoutMS bounds a single remote image fetch
	DefaultFetchTimeoutMS = 5000
)
