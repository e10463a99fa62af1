package update

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// OpenInstaller hands the downloaded package to the operating system's
// default opener. Whether the install actually completes is outside the
// workflow's observable boundary.
type OpenInstaller struct{}

var _ Installer = OpenInstaller{}

// Install launches the platform opener for path. The file must exist.
func (OpenInstaller) Install(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("package not found: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch installer: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
