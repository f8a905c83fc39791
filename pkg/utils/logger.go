package utils

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync" // For thread-safe initialization

	"github.com/dimslaev/spaider/pkg/ui"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFilePath is where the workspace log is written, relative to the project root.
const LogFilePath = ".spaider/workspace.log"

// Logger represents a workspace logger.
type Logger struct {
	logger                 *log.Logger
	closer                 io.Closer
	input                  *bufio.Reader
	userInteractionEnabled bool // Flag to control user interaction
	jsonMode               bool
	correlationID          string
}

var (
	globalLogger *Logger
	once         sync.Once
	logRoot      = "."
)

// SetLogRoot places the workspace log under the project root dir. It must be
// called before the first GetLogger.
func SetLogRoot(dir string) { logRoot = dir }

// LogPath is the workspace log file for the current project root.
func LogPath() string { return filepath.Join(logRoot, filepath.FromSlash(LogFilePath)) }

// GetLogger returns the singleton instance of Logger.
// It initializes the logger with a file handler that rotates logs.
// The skipPrompts parameter determines if user interaction is enabled.
// This value can be overridden on subsequent calls to GetLogger.
func GetLogger(skipPrompts bool) *Logger {
	once.Do(func() {
		globalLogger = newFileLogger(LogPath(), skipPrompts)
	})
	// Always update userInteractionEnabled, allowing it to be overridden
	globalLogger.userInteractionEnabled = !skipPrompts
	return globalLogger
}

// newFileLogger writes to a rotating log file at path. The file is created on
// the first write.
func newFileLogger(path string, skipPrompts bool) *Logger {
	logFile := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	l := NewLogger(logFile, skipPrompts)
	l.closer = logFile
	return l
}

// NewLogger builds a logger writing to w. Environment toggles are honoured
// the same way as for the process-wide logger.
func NewLogger(w io.Writer, skipPrompts bool) *Logger {
	l := &Logger{
		logger:                 log.New(w, "", log.LstdFlags),
		input:                  bufio.NewReader(os.Stdin),
		userInteractionEnabled: !skipPrompts,
	}
	if os.Getenv("SPAIDER_JSON_LOGS") == "1" {
		l.jsonMode = true
	}
	if cid := os.Getenv("SPAIDER_CORRELATION_ID"); cid != "" {
		l.correlationID = cid
	}
	return l
}

// Discard returns a logger that drops everything. Handy for tests and library use.
func Discard() *Logger {
	return NewLogger(io.Discard, true)
}

// SetCorrelationID tags subsequent JSON records with id, typically the pipeline run id.
func (w *Logger) SetCorrelationID(id string) {
	w.correlationID = id
}

// SetInput replaces the reader used for confirmations.
func (w *Logger) SetInput(r io.Reader) {
	w.input = bufio.NewReader(r)
}

// Close closes the logger resources.
func (w *Logger) Close() error {
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

func (w *Logger) writeJSON(level string, fields map[string]any) {
	fields["level"] = level
	fields["cid"] = w.correlationID
	_ = json.NewEncoder(w.logger.Writer()).Encode(fields)
}

// LogUserInteraction logs user interactions that require a response, and prints to stdout.
func (w *Logger) LogUserInteraction(message string) {
	w.logger.Printf("User Interaction: %s", message)
	ui.Out().Print(message + "\n")
}

// LogProcessStep logs the current step of the pipeline and echoes it to the console.
func (w *Logger) LogProcessStep(step string) {
	if w.jsonMode {
		w.writeJSON("info", map[string]any{"step": step})
	} else {
		w.logger.Printf("Process Step: %s", step)
	}
	ui.Out().Print(ui.Step(step) + "\n")
}

// Log logs a general message only to the log file.
func (w *Logger) Log(message string) {
	if w.jsonMode {
		w.writeJSON("info", map[string]any{"msg": message})
		return
	}
	w.logger.Print(message)
}

// Logf logs a formatted general message only to the log file.
func (w *Logger) Logf(format string, v ...interface{}) {
	if w.jsonMode {
		w.Log(fmt.Sprintf(format, v...))
		return
	}
	w.logger.Printf(format, v...)
}

func (w *Logger) LogError(err error) {
	if w.jsonMode {
		w.writeJSON("error", map[string]any{"error": err.Error()})
		return
	}
	w.logger.Printf("Error: %s", err)
}

// AskForConfirmation prompts the user with a message and waits for a 'yes' or 'no' response.
// With interaction disabled it returns defaultResponse, or false when an answer is required.
func (w *Logger) AskForConfirmation(prompt string, defaultResponse bool, required bool) bool {
	if !w.userInteractionEnabled {
		if required {
			w.Log(fmt.Sprintf("User interaction is disabled, but confirmation is required for: '%s'", prompt))
			return false
		}
		w.Log("Skipping user confirmation in non-interactive mode.")
		return defaultResponse
	}
	for {
		w.LogUserInteraction(fmt.Sprintf("%s (yes/no): ", prompt))
		response, err := w.input.ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		switch response {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		}
		if err != nil {
			// EOF without an answer
			return defaultResponse
		}
		w.LogUserInteraction("Invalid input. Please type 'yes' or 'no'.")
	}
}
