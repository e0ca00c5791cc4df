package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var shells = []string{"bash", "zsh", "fish", "powershell"}

// completionCmd generates shell completions
var completionCmd = &cobra.Command{
	Use:   "completion [shell]",
	Short: "Generate shell completions",
	Long: `Generate shell completion scripts for various shells.

Bash:
  source <(mebel completion bash)

Zsh:
  mebel completion zsh > "${fpath[1]}/_mebel"

Fish:
  mebel completion fish | source

PowerShell:
  mebel completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             shells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return genCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
	},
}

// completionInstallCmd installs shell completions
var completionInstallCmd = &cobra.Command{
	Use:       "install [shell]",
	Short:     "Install shell completions",
	Long:      `Write the completion script to the first usable location for the shell.`,
	ValidArgs: shells,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := installCompletion(cmd.Root(), args[0], os.Getenv("HOME"))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Completion script installed to: %s\n", path)
		return nil
	},
}

func init() {
	completionCmd.AddCommand(completionInstallCmd)
	rootCmd.AddCommand(completionCmd)
}

func genCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletion(w)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell: %s", shell)
}

// completionPaths lists candidate install paths per shell; the last one is
// created when none of the directories exist.
func completionPaths(shell, home string) []string {
	switch shell {
	case "bash":
		return []string{
			"/etc/bash_completion.d/mebel",
			filepath.Join(home, ".local/share/bash-completion/completions/mebel"),
			filepath.Join(home, ".bash_completion.d/mebel"),
		}
	case "zsh":
		return []string{
			"/usr/local/share/zsh/site-functions/_mebel",
			filepath.Join(home, ".zsh/completions/_mebel"),
		}
	case "fish":
		return []string{
			"/usr/share/fish/completions/mebel.fish",
			filepath.Join(home, ".config/fish/completions/mebel.fish"),
		}
	case "powershell":
		return []string{filepath.Join(home, ".config/powershell/mebel.ps1")}
	}
	return nil
}

// installCompletion installs shell completion to the appropriate location
func installCompletion(root *cobra.Command, shell, home string) (string, error) {
	var content bytes.Buffer
	if err := genCompletion(root, shell, &content); err != nil {
		return "", err
	}

	candidates := completionPaths(shell, home)
	path := candidates[len(candidates)-1]
	for _, loc := range candidates {
		if info, err := os.Stat(filepath.Dir(loc)); err == nil && info.IsDir() {
			path = loc
			break
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create completion directory: %w", err)
	}
	if err := os.WriteFile(path, content.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write completion file: %w", err)
	}
	return path, nil
}
