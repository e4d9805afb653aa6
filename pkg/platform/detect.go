// pkg/platform/detect.go
package platform

import (
	"fmt"
	"runtime"
)

// Homebrew prefixes per platform
const (
	PrefixARM   = "/opt/homebrew"
	PrefixIntel = "/usr/local"
	PrefixLinux = "/home/linuxbrew/.linuxbrew"
)

// Platform represents the detected system platform
type Platform struct {
	OS   string // linux, darwin
	Arch string // amd64, arm64
}

// Detect detects the current platform
func Detect() *Platform {
	return &Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

// DefaultPrefix returns the prefix Homebrew uses on this platform
func (p *Platform) DefaultPrefix() string {
	switch {
	case p.OS == "darwin" && p.Arch == "arm64":
		return PrefixARM
	case p.OS == "darwin":
		return PrefixIntel
	default:
		return PrefixLinux
	}
}

// Tag returns the bottle-style platform tag (e.g. "arm64_darwin", "x86_64_linux")
func (p *Platform) Tag() string {
	arch := p.Arch
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		if p.OS == "linux" {
			arch = "aarch64"
		}
	}
	return arch + "_" + p.OS
}

// String returns a string representation of the platform
func (p *Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}
