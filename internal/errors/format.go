package errors

import (
	"fmt"
	"strings"
)

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	ne, ok := asNexus(err)
	if !ok {
		ne = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", ne.Message)
	if ne.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", ne.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", ne.Code)

	return sb.String()
}

// FormatForLog flattens an error into slog key/value arguments.
func FormatForLog(err error) []any {
	if err == nil {
		return nil
	}

	ne, ok := asNexus(err)
	if !ok {
		return []any{"error", err.Error()}
	}

	attrs := []any{
		"error_code", ne.Code,
		"error", ne.Message,
		"category", string(ne.Category),
		"severity", string(ne.Severity),
	}
	if ne.Cause != nil {
		attrs = append(attrs, "cause", ne.Cause.Error())
	}
	if ne.Suggestion != "" {
		attrs = append(attrs, "suggestion", ne.Suggestion)
	}
	for k, v := range ne.Details {
		attrs = append(attrs, "detail_"+k, v)
	}
	return attrs
}
