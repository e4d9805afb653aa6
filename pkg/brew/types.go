// types.go
package brew

// FormulaInfo contains metadata about a Homebrew formula from the JSON API
type FormulaInfo struct {
	Name         string          `json:"name"`
	FullName     string          `json:"full_name"`
	Tap          string          `json:"tap"`
	Description  string          `json:"desc"`
	Homepage     string          `json:"homepage"`
	License      string          `json:"license"`
	Versions     FormulaVersions `json:"versions"`
	Dependencies []string        `json:"dependencies"`
	Deprecated   bool            `json:"deprecated"`
	Disabled     bool            `json:"disabled"`
}

// FormulaVersions contains version information
type FormulaVersions struct {
	Stable string `json:"stable"`
	Head   string `json:"head"`
	Bottle bool   `json:"bottle"`
}
