//go:build !linux && !windows

package attr

// Only Linux exposes a cheap filesystem-type probe; everywhere else the
// conservative constant applies and the configured override can lower it.
func filesystemLimit(path string) int {
	return defaultLimit
}
