package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dimslaev/spaider/pkg/editor"
	"github.com/dimslaev/spaider/pkg/orchestration"
	"github.com/dimslaev/spaider/pkg/prompts"
	"github.com/dimslaev/spaider/pkg/types"
	"github.com/dimslaev/spaider/pkg/ui"
)

var (
	files       []string
	model       string
	skipPrompt  bool
	dryRun      bool
	batch       bool
	parallelism int
	noBackups   bool
)

var codeCmd = &cobra.Command{
	Use:   "code [request]",
	Short: "Plan, generate and apply changes for a request",
	Long: `Runs the full pipeline for a natural language request: intent analysis,
file discovery, planning, generation and application.

Informational requests are answered without touching any file. Edit requests
show the plan and ask for confirmation unless --yes is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request := ""
		if len(args) > 0 {
			request = strings.TrimSpace(args[0])
		}
		if request == "" {
			ui.Out().Print(prompts.InstructionsRequired() + "\n")
			return cmd.Help()
		}

		s, err := newSession(model, skipPrompt)
		if err != nil {
			return err
		}
		s.logger.LogUserInteraction(request)

		if cmd.Flags().Changed("dry-run") {
			s.cfg.DryRun = dryRun
		}
		if cmd.Flags().Changed("batch") {
			s.cfg.BatchGeneration = batch
		}
		if cmd.Flags().Changed("parallel") {
			s.cfg.ApplyParallelism = parallelism
		}
		if noBackups {
			s.cfg.Backups = false
		}

		opts := orchestration.OptionsFromConfig(s.cfg)
		if !skipPrompt {
			opts.Confirm = func(overviews []types.ChangeOverview) bool {
				printPlan(overviews)
				return s.logger.AskForConfirmation(prompts.ConfirmApply(len(overviews)), false, false)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		o := orchestration.New(s.client, s.fs, opts, s.logger)
		report, err := o.Run(ctx, orchestration.Request{
			Prompt:      request,
			ProjectRoot: s.fs.Root,
			Files:       relPaths(s.fs.Root, files),
		})
		printReport(report, err)
		return runError(err)
	},
}

func printPlan(overviews []types.ChangeOverview) {
	out := ui.Out()
	out.Print(ui.Header("Planned changes") + "\n")
	for _, ov := range overviews {
		out.Printf("  %-11s %s\n", ov.Operation, ov.FilePath)
		out.Print(ui.Muted("              "+strings.TrimSpace(ov.Overview)) + "\n")
	}
}

func printReport(report *orchestration.Report, err error) {
	out := ui.Out()
	if report == nil {
		return
	}

	if report.Answer != "" {
		out.Print(ui.RenderMarkdown(report.Answer) + "\n")
	}

	for _, d := range report.Diffs {
		if d.Empty() {
			continue
		}
		out.Print(ui.ColorizeDiff(d.Unified))
	}
	for _, res := range report.Results {
		switch {
		case res.State == editor.StateRejected:
			out.Print(ui.Error(fmt.Sprintf("%s: %v", res.Path, res.Err)) + "\n")
		case res.Warning != "":
			out.Print(ui.Warn(fmt.Sprintf("%s: %s", res.Path, res.Warning)) + "\n")
		}
	}

	if err != nil {
		if report.RawResponse != "" {
			out.Print(ui.Muted("Raw response:\n"+report.RawResponse) + "\n")
		}
		return
	}

	if report.Status == orchestration.StatusNoOp || report.Status == orchestration.StatusCancelled {
		return
	}
	if report.DryRun {
		out.Print(ui.Warn(prompts.DryRunNotice()) + "\n")
	}
	if report.BackupDir != "" {
		out.Print(ui.Muted(prompts.BackupsWritten(report.BackupDir)) + "\n")
	}
	applied, rejected := report.Counts()
	out.Print(ui.Success(prompts.RunFinished(applied, rejected, report.Duration)) + "\n")
}

func init() {
	codeCmd.Flags().StringSliceVarP(&files, "file", "f", nil, "File to include up front (repeatable)")
	codeCmd.Flags().StringVarP(&model, "model", "m", "", "Model name to use with the LLM")
	codeCmd.Flags().BoolVarP(&skipPrompt, "yes", "y", false, "Apply the plan without asking for confirmation")
	codeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate and diff changes without writing files")
	codeCmd.Flags().BoolVar(&batch, "batch", false, "Generate all file changes in a single request")
	codeCmd.Flags().IntVarP(&parallelism, "parallel", "p", 1, "Number of files applied concurrently")
	codeCmd.Flags().BoolVar(&noBackups, "no-backups", false, "Do not back up overwritten files")
}
