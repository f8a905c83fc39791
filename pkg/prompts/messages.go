package prompts

import (
	"fmt"
	"time"
)

// --- Console messages ---

func InstructionsRequired() string {
	return "Instructions are required for the 'code' command. Please provide a description of the changes you want to make."
}

func ConfigLoadFailed(err error) string {
	return fmt.Sprintf("Failed to load config: %v", err)
}

func AnalyzingRequest() string {
	return "Analyzing request..."
}

func DiscoveringFiles() string {
	return "Discovering relevant files..."
}

func DiscoveredFiles(fromPaths, fromTerms int) string {
	return fmt.Sprintf("Found %d file(s) from path hints and %d from search terms", fromPaths, fromTerms)
}

func PlanningChanges() string {
	return "Planning changes..."
}

func NoChangesPlanned() string {
	return "No file changes are needed for this request."
}

func GeneratingChanges(path string) string {
	return fmt.Sprintf("Generating changes for %s...", path)
}

func GeneratingBatch(n int) string {
	return fmt.Sprintf("Generating changes for %d file(s) in one request...", n)
}

func ApplyingChanges(n int) string {
	return fmt.Sprintf("Applying changes to %d file(s)...", n)
}

func ConfirmApply(n int) string {
	return fmt.Sprintf("Apply changes to %d file(s)?", n)
}

func ChangesCancelled() string {
	return "Changes were not applied."
}

func DryRunNotice() string {
	return "Dry run: no files were written."
}

func BackupsWritten(dir string) string {
	return fmt.Sprintf("Backups of overwritten files are in %s", dir)
}

func RunFinished(applied, rejected int, d time.Duration) string {
	return fmt.Sprintf("Done in %s: %d applied, %d rejected", d.Round(time.Millisecond), applied, rejected)
}
