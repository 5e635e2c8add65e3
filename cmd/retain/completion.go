package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for retain.

To load completions:

Bash:
  $ source <(retain completion bash)
  # To load permanently:
  $ retain completion bash > /etc/bash_completion.d/retain

Zsh:
  $ retain completion zsh > "${fpath[1]}/_retain"
  $ compinit

Fish:
  $ retain completion fish | source
  # To load permanently:
  $ retain completion fish > ~/.config/fish/completions/retain.fish

PowerShell:
  PS> retain completion powershell | Out-String | Invoke-Expression
`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletion(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
