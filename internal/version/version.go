package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionContent string

// Commit is the git revision of the build, set via ldflags.
var Commit string

// Get returns the current version, with whitespace trimmed
func Get() string {
	return strings.TrimSpace(versionContent)
}

// Full returns the version plus the build commit when known.
func Full() string {
	if Commit != "" {
		return Get() + " (" + Commit + ")"
	}
	return Get()
}
