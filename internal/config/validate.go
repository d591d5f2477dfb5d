package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the configuration is unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the configuration works
	// but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "backend.endpoint"
	Message  string
}

// String formats the issue as "severity: field: message".
func (i ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors()) > 0
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	return vr.filter(SeverityError)
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	return vr.filter(SeverityWarning)
}

func (vr *ValidationResult) filter(sev ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// Err joins every error-severity issue into one error, or returns nil.
func (vr *ValidationResult) Err() error {
	errs := vr.Errors()
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
}

var validGating = map[string]bool{
	"previous": true,
	"chain":    true,
}

var validMountChecks = map[string]bool{
	"before-load": true,
	"after-load":  true,
	"off":         true,
}

// Validate checks the configuration for correctness. meta may be nil when no
// file was loaded; otherwise undecoded keys are reported as warnings.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateEndpoint(vr, "backend.endpoint", cfg.Backend.Endpoint)
	if cfg.Backend.Timeout <= 0 {
		addError(vr, "backend.timeout", "must be positive")
	}
	if cfg.Backend.MaxBodyLogSize < 0 {
		addError(vr, "backend.max_body_log_size", "must not be negative")
	}

	validateEndpoint(vr, "message.endpoint", cfg.Message.Endpoint)
	if cfg.Message.Timeout <= 0 {
		addError(vr, "message.timeout", "must be positive")
	}

	if !validGating[cfg.Progress.Gating] {
		addError(vr, "progress.gating",
			fmt.Sprintf("unrecognized gating %q; must be one of: previous, chain", cfg.Progress.Gating))
	}
	if !validMountChecks[cfg.Progress.MountCheck] {
		addError(vr, "progress.mount_check",
			fmt.Sprintf("unrecognized mount check %q; must be one of: before-load, after-load, off", cfg.Progress.MountCheck))
	}

	if cfg.Serve.Addr == "" {
		addError(vr, "serve.addr", "must not be empty")
	}
	if cfg.Serve.Seed != "" {
		if _, err := os.Stat(cfg.Serve.Seed); err != nil {
			addWarning(vr, "serve.seed", fmt.Sprintf("file %q does not exist", cfg.Serve.Seed))
		}
	}

	validateUnknownKeys(vr, meta)
	return vr
}

func validateEndpoint(vr *ValidationResult, field, raw string) {
	if raw == "" {
		addError(vr, field, "must not be empty")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		addError(vr, field, fmt.Sprintf("%q is not an absolute http(s) URL", raw))
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}
	for _, key := range meta.Undecoded() {
		addWarning(vr, strings.Join(key, "."), "unknown configuration key")
	}
}

func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{Severity: SeverityError, Field: field, Message: message})
}

func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{Severity: SeverityWarning, Field: field, Message: message})
}
