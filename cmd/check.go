package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/syncwatch/syncwatch/constant"
	"github.com/syncwatch/syncwatch/key"
	"github.com/syncwatch/syncwatch/style"
)

// CheckDependencies exits with installation hints when the mpv executable cannot be found.
func CheckDependencies(executable string) {
	if _, err := exec.LookPath(executable); err != nil {
		fmt.Println(missingDependency(executable, runtime.GOOS))
		os.Exit(1)
	}
}

func missingDependency(executable, goos string) string {
	var installCmd string
	switch goos {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	body := fmt.Sprintf("The player '%s' was not found in your PATH.\nSet %s or pass --socket to attach to a running mpv.",
		executable, style.Fg(style.Purple)(key.MPVExecutable))

	if installCmd != "" {
		body += fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.Cyan).Bold(true).Render(installCmd))
	}

	return style.Box("Error: Missing Dependency", body)
}
