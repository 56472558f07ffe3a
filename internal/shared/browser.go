package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenPath opens a file, directory or URL with the system default handler.
//
// Used to reveal the output directory after a download run. Supports macOS,
// Linux, and Windows platforms.
func OpenPath(target string) error {
	cmd, err := openCommand(getRuntime(), target)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}

	return nil
}

func openCommand(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("explorer", target), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
