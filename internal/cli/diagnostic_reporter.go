package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/restmeta/internal/errors"
)

// DiagnosticReporter renders restmeta errors with their location, context and
// suggestions
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to out
func NewDiagnosticReporter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     out,
	}
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string) {
	color.New(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints every error contained in err
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	reported := r.collect(err)
	title := "Compilation Failed"
	if len(reported) > 1 {
		title = fmt.Sprintf("Compilation Failed (%d errors)", len(reported))
	}

	fmt.Fprintf(r.out, "\nERROR: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("=", len(title)+7))

	for i, e := range reported {
		if len(reported) > 1 {
			fmt.Fprintf(r.out, "[%d/%d] ", i+1, len(reported))
		}
		typed, ok := e.(errors.Error)
		if !ok {
			r.reportBasicError(e)
			continue
		}
		r.reportTypedError(typed)
	}

	if r.verbose {
		fmt.Fprintf(r.out, "Run without --verbose for a shorter report.\n\n")
	} else {
		fmt.Fprintf(r.out, "Run with --verbose for more detail.\n\n")
	}
}

// collect flattens aggregated errors into the individual failures
func (r *DiagnosticReporter) collect(err error) []error {
	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 0 {
		result := make([]error, 0, multi.Count())
		for _, e := range multi.Errors {
			result = append(result, e)
		}
		return result
	}

	var typed errors.Error
	if stderrors.As(err, &typed) {
		return []error{typed}
	}
	return []error{err}
}

func (r *DiagnosticReporter) reportTypedError(err errors.Error) {
	r.printErrorHeader(err.ErrorCode())

	message := err.Error()
	if loc := err.Location(); !loc.IsEmpty() {
		message = strings.TrimPrefix(message, loc.String()+": ")
		fmt.Fprintf(r.out, "Location: %s\n", loc.String())
	}
	fmt.Fprintf(r.out, "Message: %s\n\n", message)

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}

	if r.verbose {
		r.printErrorChain(err.Unwrap())
	}
}

func (r *DiagnosticReporter) reportBasicError(err error) {
	r.printErrorHeader(errors.UnknownErrorCode)
	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
}

func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	label := code.String()
	color.New(color.FgRed, color.Bold).Fprintf(r.out, "Type: %s\n", label)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", len(label)+6))
}

// printContext prints the identifying keys first, then the rest sorted
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	importantKeys := []string{"type", "route", "method", "parameter"}
	printed := make(map[string]bool)

	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), value)
			printed[key] = true
		}
	}

	rest := make([]string, 0, len(context))
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func (r *DiagnosticReporter) formatContextKey(key string) string {
	switch key {
	case "type":
		return "Resource"
	case "config_type":
		return "Setting"
	}

	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")

	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}

	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printErrorChain(cause error) {
	if cause == nil {
		return
	}

	fmt.Fprintf(r.out, "Error Chain:\n")
	for level := 1; cause != nil; level++ {
		fmt.Fprintf(r.out, "   %d. %s\n", level, cause.Error())
		cause = stderrors.Unwrap(cause)
	}
	fmt.Fprintf(r.out, "\n")
}
