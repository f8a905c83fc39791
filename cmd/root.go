package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimslaev/spaider/pkg/ui"
	"github.com/dimslaev/spaider/pkg/utils"
)

var (
	configPath  string
	projectRoot string
	plainOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spaider",
	Short: "Plan and apply multi-file code changes with an LLM",
	Long: `Spaider turns a natural language request into coordinated edits across
your project. It analyzes the request, finds the relevant files, plans the
changes per file, generates them and applies them to disk.

Available commands:
  code      - Apply changes described by a request
  discover  - Show which files a request would pull in
  symbols   - Print the symbol summary of the project
  version   - Print version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.SetLogRoot(projectRoot)
		if plainOutput {
			ui.SetTheme(ui.PlainTheme())
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.spaider/config.json and ./.spaider/config.{json,yaml})")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "root", "C", ".", "Project root")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "Disable colors and styling")

	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(symbolsCmd)
}
