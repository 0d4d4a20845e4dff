package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// coerce pulls the ScoutError out of err, wrapping foreign errors as
// internal ones so formatters always have the full field set to work with.
func coerce(err error) *ScoutError {
	if se := AsScoutError(err); se != nil {
		return se
	}
	return Wrap(ErrCodeInternal, err)
}

// FormatForUser renders err as a short human-readable report.
// With debug set, the underlying cause is included.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}
	se := AsScoutError(err)
	if se == nil {
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", se.Message)
	if se.Suggestion != "" {
		fmt.Fprintf(&b, "\nSuggestion: %s\n", se.Suggestion)
	}
	if debug && se.Cause != nil {
		fmt.Fprintf(&b, "\nCause: %s\n", se.Cause)
	}
	fmt.Fprintf(&b, "\n[%s]", se.Code)
	return b.String()
}

// FormatForCLI renders err in the compact indented form printed to stderr.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	se := coerce(err)

	lines := []string{fmt.Sprintf("Error: %s", se.Message)}
	if se.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  Hint: %s", se.Suggestion))
	}
	lines = append(lines, fmt.Sprintf("  Code: %s", se.Code))
	return strings.Join(lines, "\n") + "\n"
}

// errorPayload is the wire shape FormatJSON marshals.
type errorPayload struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON renders err as a JSON object for machine consumers.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}
	se := coerce(err)

	p := errorPayload{
		Code:       se.Code,
		Message:    se.Message,
		Category:   string(se.Category),
		Severity:   string(se.Severity),
		Details:    se.Details,
		Suggestion: se.Suggestion,
	}
	if se.Cause != nil {
		p.Cause = se.Cause.Error()
	}
	return json.Marshal(p)
}

// FormatForLog flattens err into slog attributes. Detail keys get a
// "detail_" prefix to keep them apart from the fixed fields.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}
	se := AsScoutError(err)
	if se == nil {
		return map[string]any{"error": err.Error()}
	}

	fields := map[string]any{
		"error_code": se.Code,
		"message":    se.Message,
		"category":   string(se.Category),
		"severity":   string(se.Severity),
	}
	if se.Cause != nil {
		fields["cause"] = se.Cause.Error()
	}
	if se.Suggestion != "" {
		fields["suggestion"] = se.Suggestion
	}
	for k, v := range se.Details {
		fields["detail_"+k] = v
	}
	return fields
}
