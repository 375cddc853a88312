// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Tilawah is the canonical application identifier used for filesystem paths and CLI branding.
	Tilawah = "tilawah"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is sent with every request to the Qur'an API and the audio CDN.
	UserAgent = Tilawah + "/" + Version + " (+https://github.com/tilawah-cli/tilawah)"
)
