package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dimslaev/spaider/pkg/orchestration"
	"github.com/dimslaev/spaider/pkg/ui"
)

var discoverFiles []string

var discoverCmd = &cobra.Command{
	Use:   "discover [request]",
	Short: "Show the intent and the files a request would use",
	Long: `Analyzes the request and runs file discovery without planning or editing.
Useful to check which path hints and search terms the model derives.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(model, true)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		o := orchestration.New(s.client, s.fs, orchestration.OptionsFromConfig(s.cfg), s.logger)
		report, err := o.Discover(ctx, orchestration.Request{
			Prompt:      args[0],
			ProjectRoot: s.fs.Root,
			Files:       relPaths(s.fs.Root, discoverFiles),
		})
		if err != nil {
			printReport(report, err)
			return runError(err)
		}

		out := ui.Out()
		in := report.Intent
		out.Print(ui.Header("Intent") + "\n")
		out.Printf("  edit mode:     %t\n", in.EditMode)
		out.Printf("  description:   %s\n", in.Description)
		out.Printf("  more context:  %t\n", in.NeedsMoreContext)
		out.Printf("  file paths:    %s\n", strings.Join(in.FilePaths, ", "))
		out.Printf("  search terms:  %s\n", strings.Join(in.SearchTerms, ", "))

		out.Print(ui.Header("Discovered files") + "\n")
		if len(report.Discovered) == 0 {
			out.Print(ui.Muted("  (none)") + "\n")
		}
		for _, p := range report.Discovered {
			out.Printf("  %s\n", p)
		}
		s.logger.Logf("discover finished in %s", report.Duration)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringSliceVarP(&discoverFiles, "file", "f", nil, "File to include up front (repeatable)")
	discoverCmd.Flags().StringVarP(&model, "model", "m", "", "Model name to use with the LLM")
}
