// constants.go
package brew

import "time"

const (
	// DefaultAPIURL is the Homebrew formula API endpoint
	DefaultAPIURL = "https://formulae.brew.sh/api"

	// DefaultTimeout bounds each API request
	DefaultTimeout = 30 * time.Second
)
