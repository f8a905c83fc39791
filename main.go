package main

import (
	"os"

	"github.com/dimslaev/spaider/cmd"
	"github.com/dimslaev/spaider/pkg/ui"
	"github.com/dimslaev/spaider/pkg/utils"
)

func main() {
	// the logger is created after flag parsing so it lands under --root
	err := cmd.Execute()
	logger := utils.GetLogger(false)
	if err != nil {
		os.Stderr.WriteString(ui.Error(utils.FormatError(err)) + "\n")
		logger.Logf("Application error: %v", err)
	}
	if cerr := logger.Close(); cerr != nil {
		os.Stderr.WriteString("Error closing logger: " + cerr.Error() + "\n")
	}
	if err != nil {
		os.Exit(1)
	}
}
