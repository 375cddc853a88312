package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/color"
	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/icon"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/player"
	"github.com/tilawah-cli/tilawah/style"
)

// CheckDependencies exits when the configured backend needs a binary that cannot be found.
// The beep backend decodes in-process and needs nothing.
func CheckDependencies() {
	if !strings.EqualFold(viper.GetString(key.PlayerBackend), player.BackendMpv) {
		return
	}

	bin := viper.GetString(key.PlayerMpvPath)
	if bin == "" {
		bin = "mpv"
	}

	if _, err := exec.LookPath(bin); err != nil {
		printMissingDependencyError(bin)
		os.Exit(1)
	}
}

func installHint() string {
	switch runtime.GOOS {
	case constant.Darwin:
		return "brew install mpv"
	case constant.Linux:
		return "sudo apt install mpv"
	case constant.Windows:
		return "scoop install mpv"
	default:
		return ""
	}
}

func printMissingDependencyError(dep string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.Ember).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.Ember).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("%q was not found in your PATH.", dep)

	var suggestion string
	if hint := installHint(); hint != "" {
		suggestion = fmt.Sprintf("\nInstall it with\n  %s", style.New().Foreground(color.Gold).Bold(true).Render(hint))
	}
	suggestion += fmt.Sprintf("\nor switch to the built-in decoder with %s", style.Bold("--backend "+player.BackendBeep))

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, suggestion)))
}
