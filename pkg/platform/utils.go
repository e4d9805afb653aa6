// pkg/platform/utils.go
package platform

import (
	"os/exec"
)

// CommandPath returns the absolute path of cmd if it is on PATH
func CommandPath(cmd string) (string, bool) {
	p, err := exec.LookPath(cmd)
	if err != nil {
		return "", false
	}
	return p, true
}
