package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimslaev/spaider/pkg/filesystem"
	"github.com/dimslaev/spaider/pkg/index"
	"github.com/dimslaev/spaider/pkg/ui"
	"github.com/dimslaev/spaider/pkg/utils"
)

var useRegexExtractor bool

var symbolsCmd = &cobra.Command{
	Use:   "symbols [path...]",
	Short: "Print the symbol summary used in intent prompts",
	Long: `Extracts top-level symbols from the given files, or from every project file
when none are given, and prints them the way the intent stage sees them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := filesystem.NewLocal(projectRoot)
		if err != nil {
			return utils.NewFileSystemError("open", projectRoot, err)
		}

		paths := relPaths(fs.Root, args)
		if len(paths) == 0 {
			if paths, err = fs.ListProjectPaths(fs.Root); err != nil {
				return err
			}
		}

		var extractor index.Extractor = index.NewTreeSitterExtractor()
		if useRegexExtractor {
			extractor = index.RegexExtractor{}
		}

		var all []index.FileSymbols
		for _, p := range paths {
			if !extractor.Supports(p) {
				continue
			}
			content, err := fs.ReadFile(p)
			if err != nil {
				ui.Out().Print(ui.Warn(utils.FormatError(utils.NewFileSystemError("read", p, err))) + "\n")
				continue
			}
			all = append(all, index.FileSymbols{File: p, Symbols: extractor.Extract(p, content)})
		}

		summary := index.Summarize(all)
		if summary == "" {
			ui.Out().Print(ui.Muted("(no symbols)") + "\n")
			return nil
		}
		ui.Out().Print(summary)
		return nil
	},
}

func init() {
	symbolsCmd.Flags().BoolVar(&useRegexExtractor, "regex", false, "Use the regex extractor instead of tree-sitter")
}
