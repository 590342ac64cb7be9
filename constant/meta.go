// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Vibe is the canonical application identifier used for filesystem paths and CLI branding.
	Vibe = "vibe"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is the default HTTP User-Agent string used for catalog and media requests.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Origin identifies the player when it asks a media host for analysis access.
	Origin = "vibe://player"
)

// Build metadata, overwritten through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
