package ui

import (
	"fmt"
	"io"
	"os"
)

// PrintSuccess writes a green checkmark line to w.
func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", SuccessStyle().Render(SymbolSuccess), msg)
}

// PrintWarning writes a warning line to stderr.
func PrintWarning(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", WarningStyle().Render(SymbolWarning), msg)
}

// PrintKeyValue writes an aligned "key: value" line with a muted key.
func PrintKeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s %s\n", MutedStyle().Render(fmt.Sprintf("%-10s", key+":")), value)
}
