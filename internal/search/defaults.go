package search

// Settings is the process-wide default behavior for filter compilation.
// It is configured once at startup and read-only afterwards; concurrent
// reads from request workers are safe, later writes are not synchronized
// and must not occur.
type Settings struct {
	// CaseSensitive makes string comparisons case-sensitive even when a
	// filter does not request it. The shipped default is insensitive.
	CaseSensitive bool
}

var defaults Settings

// Configure installs the process-wide defaults. Call it from main before
// serving requests.
func Configure(s Settings) {
	defaults = s
}

// CurrentSettings returns the installed defaults.
func CurrentSettings() Settings {
	return defaults
}
