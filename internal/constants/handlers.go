// Package constants provides shared constants used across the codebase.
package constants

// Handler constants
const (
	// MaxConfigurationBodySize is the maximum accepted configuration payload in bytes (1MB)
	MaxConfigurationBodySize = 1 << 20

	// MaxImageBufferSize caps a single image read or fetch in bytes (200MB)
	MaxImageBufferSize = 200 << 20

	// MaxImagePixels caps the decoded size of a source image (200 megapixels)
	MaxImagePixels = 200_000_000

	// DefaultRenderConcurrency is the default number of proofs rendered in parallel by the CLI
	DefaultRenderConcurrency = 4
)
