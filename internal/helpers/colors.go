package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// statusLine is a colored, prefixed message kind.
type statusLine struct {
	color  *color.Color
	prefix string
}

var (
	successLine  = statusLine{color.New(color.FgGreen, color.Bold), "✅ "}
	errorLine    = statusLine{color.New(color.FgRed, color.Bold), "❌ "}
	warningLine  = statusLine{color.New(color.FgYellow, color.Bold), "⚠️  "}
	infoLine     = statusLine{color.New(color.FgCyan, color.Bold), "ℹ️  "}
	titleLine    = statusLine{color.New(color.FgMagenta, color.Bold), "🎯 "}
	progressLine = statusLine{color.New(color.FgCyan), "📊 "}
)

// Status messages go to stderr so stdout only carries results and can be
// piped into other tools.
var (
	statusOutput io.Writer = color.Error
	resultOutput io.Writer = color.Output
)

// SetOutput redirects status messages and results.
func SetOutput(status, result io.Writer) {
	statusOutput = status
	resultOutput = result
}

func (l statusLine) print(format string, args ...interface{}) {
	l.color.Fprintf(statusOutput, l.prefix+format+"\n", args...)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	successLine.print(format, args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	errorLine.print(format, args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	warningLine.print(format, args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	infoLine.print(format, args...)
}

// PrintTitle prints a title
func PrintTitle(format string, args ...interface{}) {
	titleLine.print(format, args...)
}

// PrintProgress prints a [current/total] progress message
func PrintProgress(current, total int, message string) {
	progressLine.print("[%d/%d] %s", current, total, message)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Fprintln(statusOutput, strings.Repeat("─", 80))
}

// PrintJSON writes data as indented JSON to the result output.
func PrintJSON(data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(resultOutput, string(jsonData))
	return err
}
