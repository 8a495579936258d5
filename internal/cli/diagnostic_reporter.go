package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	weaveerrors "github.com/toyz/weave/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// SetOutput redirects the reporter
func (r *DiagnosticReporter) SetOutput(out io.Writer) {
	r.out = out
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
	for _, suggestion := range suggestions {
		fmt.Fprintf(r.out, "   - %s\n", suggestion)
	}
}

// ReportError provides comprehensive error reporting with user-friendly output. Collected
// errors are reported one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *weaveerrors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		fmt.Fprintf(r.out, "\nERROR: Deployment Failed (%d errors)\n", multi.Count())
		fmt.Fprintf(r.out, "=================================\n")
		for i, e := range multi.Errors {
			fmt.Fprintf(r.out, "\n[%d/%d] ", i+1, multi.Count())
			r.reportWeaveError(e)
		}
		fmt.Fprintf(r.out, "\n")
		return
	}

	fmt.Fprintf(r.out, "\nERROR: Deployment Failed\n")
	fmt.Fprintf(r.out, "========================\n\n")

	var weaveErr weaveerrors.WeaveError
	if stderrors.As(err, &weaveErr) {
		r.reportWeaveError(weaveErr)
	} else {
		r.reportBasicError(err)
	}
	fmt.Fprintf(r.out, "\n")
}

// reportWeaveError reports a WeaveError with full context and suggestions
func (r *DiagnosticReporter) reportWeaveError(err weaveerrors.WeaveError) {
	r.printErrorHeader(err.ErrorCode())

	message := err.Error()
	if base, ok := err.(*weaveerrors.BaseError); ok {
		message = base.Message
		if r.verbose && base.Cause != nil {
			fmt.Fprintf(r.out, "Message: %s\n\n", message)
			fmt.Fprintf(r.out, "Underlying cause: %s\n\n", base.Cause.Error())
			message = ""
		} else if base.Cause != nil {
			message = fmt.Sprintf("%s: %v", base.Message, base.Cause)
		}
	}
	if message != "" {
		fmt.Fprintf(r.out, "Message: %s\n\n", message)
	}

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc.String())
	}

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}

	r.printAdditionalHelp(err.ErrorCode())

	if r.verbose {
		r.printVerboseDebuggingInfo(err)
	}
}

// reportBasicError reports a basic error without rich context
func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())

	errorMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errorMsg, "annotation"):
		fmt.Fprintf(r.out, "This appears to be an annotation-related issue.\n")
		fmt.Fprintf(r.out, "Common solutions:\n")
		fmt.Fprintf(r.out, "  - Check your //weave:: annotation syntax\n")
		fmt.Fprintf(r.out, "  - Verify annotation targets are correct\n\n")
	case strings.Contains(errorMsg, "module"):
		fmt.Fprintf(r.out, "This appears to be a module-related issue.\n")
		fmt.Fprintf(r.out, "Common solutions:\n")
		fmt.Fprintf(r.out, "  - Check your go.mod file\n")
		fmt.Fprintf(r.out, "  - Try specifying -module explicitly\n\n")
	}
}

// printErrorHeader prints a formatted error header based on error code
func (r *DiagnosticReporter) printErrorHeader(code weaveerrors.ErrorCode) {
	var errorTypeStr string

	switch code {
	case weaveerrors.SyntaxErrorCode:
		errorTypeStr = "Annotation Syntax Error"
	case weaveerrors.ValidationErrorCode:
		errorTypeStr = "Validation Error"
	case weaveerrors.RegistrationErrorCode:
		errorTypeStr = "Registration Error"
	case weaveerrors.ConfigurationErrorCode:
		errorTypeStr = "Configuration Error"
	case weaveerrors.FileSystemErrorCode:
		errorTypeStr = "File System Error"
	case weaveerrors.BindingConflictErrorCode:
		errorTypeStr = "Binding Conflict"
	case weaveerrors.FinalClassWithInterceptorsErrorCode:
		errorTypeStr = "Final Component With Interceptors"
	case weaveerrors.NonProxyableConstructorErrorCode:
		errorTypeStr = "Non-Proxyable Constructor"
	case weaveerrors.FinalMethodWithInterceptorsErrorCode:
		errorTypeStr = "Final Method With Interceptors"
	case weaveerrors.UnknownInterceptorErrorCode:
		errorTypeStr = "Unknown Interceptor"
	case weaveerrors.DeploymentErrorCode:
		errorTypeStr = "Deployment Error"
	default:
		errorTypeStr = "Unknown Error"
	}

	fmt.Fprintf(r.out, "Type: %s\n", errorTypeStr)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(errorTypeStr)+6))
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	importantKeys := []string{"component", "member", "method", "constructor", "interceptor", "binding"}
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

// formatContextKey formats context keys to be more readable
func (r *DiagnosticReporter) formatContextKey(key string) string {
	switch key {
	case "component":
		return "Component"
	case "interceptor":
		return "Interceptor"
	case "binding":
		return "Binding"
	default:
		// snake_case to Title Case
		parts := strings.Split(key, "_")
		for i, part := range parts {
			if len(part) > 0 {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
		return strings.Join(parts, " ")
	}
}

// printSuggestions prints actionable suggestions
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

// printAdditionalHelp prints additional help based on error code
func (r *DiagnosticReporter) printAdditionalHelp(code weaveerrors.ErrorCode) {
	switch code {
	case weaveerrors.BindingConflictErrorCode:
		fmt.Fprintf(r.out, "Binding Rules:\n")
		fmt.Fprintf(r.out, "  - A member may declare each binding kind once\n")
		fmt.Fprintf(r.out, "  - A member binding replaces a class binding of the same kind\n\n")

	case weaveerrors.FinalClassWithInterceptorsErrorCode, weaveerrors.FinalMethodWithInterceptorsErrorCode,
		weaveerrors.NonProxyableConstructorErrorCode:
		fmt.Fprintf(r.out, "Proxy Requirements:\n")
		fmt.Fprintf(r.out, "  - Intercepted components and methods must not be marked //weave::final\n")
		fmt.Fprintf(r.out, "  - Intercepted components need an exported constructor\n\n")

	case weaveerrors.SyntaxErrorCode:
		fmt.Fprintf(r.out, "Annotation Syntax Help:\n")
		fmt.Fprintf(r.out, "  - Annotations must start with //weave::\n")
		fmt.Fprintf(r.out, "  - Parameters are written as -Name=value\n\n")
	}

	fmt.Fprintf(r.out, "For more help:\n")
	fmt.Fprintf(r.out, "  - Run with -verbose for more detailed output\n")
}

// printVerboseDebuggingInfo prints additional debugging information in verbose mode
func (r *DiagnosticReporter) printVerboseDebuggingInfo(err weaveerrors.WeaveError) {
	fmt.Fprintf(r.out, "Verbose Debug Information:\n")
	fmt.Fprintf(r.out, "  Error Code: %s (%d)\n", err.ErrorCode(), int(err.ErrorCode()))

	if cause := err.Unwrap(); cause != nil {
		fmt.Fprintf(r.out, "  Error Chain:\n")
		level := 1
		for cause != nil {
			fmt.Fprintf(r.out, "    %d. %s\n", level, cause.Error())
			cause = stderrors.Unwrap(cause)
			level++
		}
	}

	fmt.Fprintf(r.out, "\n")
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(r.out, "[DEBUG] "+format+"\n", args...)
	}
}
