package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/portscope/portscope/internal/config"
	"github.com/portscope/portscope/internal/port"
	"github.com/portscope/portscope/internal/process"
	"github.com/portscope/portscope/internal/tui"
)

var (
	// Set via ldflags at build time.
	version = "dev"

	// Global flags.
	jsonOutput bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "portscope",
	Short: "Inspect and free listening ports",
	Long: `portscope shows which processes are listening on which TCP ports,
with their working directory and parent process, and can terminate them
gracefully. Launch without subcommands for interactive TUI mode.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
			}
		}

		cfg, scanner, killer, err := buildStack()
		if err != nil {
			return err
		}

		p := tea.NewProgram(tui.New(scanner, killer, cfg, version), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

// buildStack wires the shared core: config, timed runner, platform
// scanner and killer.
func buildStack() (*config.Config, port.Scanner, process.Killer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	runner := &port.RealCmdRunner{Timeout: cfg.CommandDuration()}
	scanner, err := port.New(runner)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, scanner, process.NewKiller(runner, cfg.GracefulDuration()), nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("portscope %s\n", version))
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	rootCmd.Flags().MarkHidden("generate-completion")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}
