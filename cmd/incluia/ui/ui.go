// Package ui provides terminal output helpers for the incluia CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	// Out and ErrOut are where messages go. Tests replace them.
	Out    io.Writer = os.Stdout
	ErrOut io.Writer = os.Stderr

	verboseFlag bool

	successMark = color.New(color.FgGreen).SprintFunc()
	errorMark   = color.New(color.FgRed, color.Bold).SprintFunc()
	warnMark    = color.New(color.FgYellow).SprintFunc()
	infoMark    = color.New(color.FgCyan).SprintFunc()
	heading     = color.New(color.Bold).SprintFunc()
	dim         = color.New(color.Faint).SprintFunc()
)

// InitUI initializes the UI with color and verbose settings.
func InitUI(noColor, verbose bool) {
	verboseFlag = verbose
	if noColor {
		color.NoColor = true
	}
}

// Verbose reports whether verbose output was requested.
func Verbose() bool {
	return verboseFlag
}

// Message displays a plain line.
func Message(format string, args ...interface{}) {
	fmt.Fprintf(Out, format, args...)
	fmt.Fprintln(Out)
}

// Error displays an error message to stderr.
func Error(format string, args ...interface{}) {
	fmt.Fprintf(ErrOut, "%s %s\n", errorMark("✗"), fmt.Sprintf(format, args...))
}

func Success(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", successMark("✓"), fmt.Sprintf(format, args...))
}

func Warning(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", warnMark("⚠"), fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", infoMark("ℹ"), fmt.Sprintf(format, args...))
}

// Detail prints a dimmed line, only in verbose mode.
func Detail(format string, args ...interface{}) {
	if !verboseFlag {
		return
	}
	fmt.Fprintf(Out, "%s\n", dim(fmt.Sprintf(format, args...)))
}

func Newline() {
	fmt.Fprintln(Out)
}

// Section displays a section header.
func Section(title string) {
	fmt.Fprintf(Out, "\n%s\n", heading(title))
	fmt.Fprintf(Out, "%s\n\n", strings.Repeat("=", len([]rune(title))))
}

// Table prints rows as aligned columns.
func Table(rows [][]string) {
	widths := map[int]int{}
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for _, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-len([]rune(cell))+2))
			}
		}
		fmt.Fprintln(Out, strings.TrimRight(sb.String(), " "))
	}
}
