package domain

import (
	"fmt"
	"strings"
)

// Shell names accepted by ActivationCommand.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
	ShellCmd        = "cmd"
)

// ActivationCommand returns the command a user runs to activate venvPath
// in the given shell. Activation always happens in the user's shell; a
// child process cannot change its parent's environment.
func ActivationCommand(venvPath, shell string) (string, error) {
	switch strings.ToLower(shell) {
	case ShellBash, ShellZsh, "sh", "":
		return "source " + posixJoin(venvPath, "bin", "activate"), nil
	case ShellFish:
		return "source " + posixJoin(venvPath, "bin", "activate.fish"), nil
	case ShellPowerShell, "pwsh":
		return windowsJoin(venvPath, "Scripts", "Activate.ps1"), nil
	case ShellCmd:
		return windowsJoin(venvPath, "Scripts", "activate.bat"), nil
	default:
		return "", fmt.Errorf("unsupported shell %q", shell)
	}
}

// ActivationInstructions lists activation commands for the shells of a
// platform.
func ActivationInstructions(venvPath string, windows bool) []string {
	shells := []string{ShellBash, ShellFish}
	if windows {
		shells = []string{ShellCmd, ShellPowerShell}
	}
	var out []string
	for _, sh := range shells {
		cmd, err := ActivationCommand(venvPath, sh)
		if err != nil {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", sh, cmd))
	}
	return out
}

func posixJoin(base string, parts ...string) string {
	return strings.TrimRight(strings.ReplaceAll(base, `\`, "/"), "/") + "/" + strings.Join(parts, "/")
}

func windowsJoin(base string, parts ...string) string {
	return strings.TrimRight(strings.ReplaceAll(base, "/", `\`), `\`) + `\` + strings.Join(parts, `\`)
}
