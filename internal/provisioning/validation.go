package provisioning

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase implements the Phase interface for pre-flight validation.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	var errs []string
	for _, ve := range validate(ctx) {
		if ve.IsError() {
			errs = append(errs, ve.Error())
			continue
		}
		ctx.Observer.Event(Event{
			Type:    EventValidationWarning,
			Phase:   vp.Name(),
			Message: ve.Message,
			Fields:  map[string]string{"field": ve.Field},
		})
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// validate runs all validation checks and returns any errors or warnings.
func validate(ctx *Context) []ValidationError {
	var errs []ValidationError
	cfg := ctx.Config

	if err := cfg.Validate(); err != nil {
		errs = append(errs, ValidationError{
			Field:    "config",
			Message:  err.Error(),
			Severity: "error",
		})
		return errs
	}

	if ctx.Facts != nil && !ctx.Facts.Supported() {
		errs = append(errs, ValidationError{
			Field:    "host.distribution",
			Message:  fmt.Sprintf("distribution %q has no package setup procedure; packages must be installed manually", ctx.Facts.Distribution),
			Severity: "warning",
		})
	}

	if len(cfg.DKIM.Domains) > 1 {
		errs = append(errs, ValidationError{
			Field:    "dkim.domains",
			Message:  fmt.Sprintf("key is generated for %s and shared by all %d domains", cfg.DKIM.PrimaryDomain(), len(cfg.DKIM.Domains)),
			Severity: "warning",
		})
	}

	if cfg.Host.IsRemote() && cfg.Host.KnownHostsFile == "" {
		errs = append(errs, ValidationError{
			Field:    "host.known_hosts_file",
			Message:  "host key verification is disabled",
			Severity: "warning",
		})
	}

	if bits := cfg.OpenDKIM.Keygen.Bits; bits != 0 && bits < 2048 {
		errs = append(errs, ValidationError{
			Field:    "opendkim.keygen.bits",
			Message:  fmt.Sprintf("%d-bit keys are considered weak, 2048 is recommended", bits),
			Severity: "warning",
		})
	}

	return errs
}
