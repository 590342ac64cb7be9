// Package open hands a chapter link or file to the desktop's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/vibe-audio/vibe/constant"
)

// Start launches the default handler for target and returns without waiting for it.
func Start(target string) error {
	cmd, err := Command(runtime.GOOS, target)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Command builds the launcher invocation for target on goos.
func Command(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", target), nil
	case constant.Darwin:
		return exec.Command("open", target), nil
	case constant.Linux:
		return exec.Command("xdg-open", target), nil
	case constant.Android:
		return exec.Command("termux-open", target), nil
	default:
		return nil, fmt.Errorf("opening links is not supported on %s", goos)
	}
}
