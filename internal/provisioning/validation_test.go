package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dkimctl/internal/facts"
)

func TestValidationPhase_Name(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "validation", NewValidationPhase().Name())
}

func TestValidationPhase_Passes(t *testing.T) {
	t.Parallel()
	ctx, observer := newTestContext(t)
	ctx.Facts = facts.FromDistribution("Ubuntu")

	require.NoError(t, NewValidationPhase().Provision(ctx))
	assert.Empty(t, observer.eventsOfType(EventValidationWarning))
}

func TestValidationPhase_InvalidConfig(t *testing.T) {
	t.Parallel()
	ctx, _ := newTestContext(t)
	ctx.Config.DKIM.Selector = ""

	err := NewValidationPhase().Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "[error] config")
}

func TestValidationPhase_Warnings(t *testing.T) {
	t.Parallel()
	ctx, observer := newTestContext(t)
	ctx.Facts = facts.FromDistribution("Alpine")
	ctx.Config.DKIM.Domains = []string{"example.com", "example.org"}
	ctx.Config.OpenDKIM.Keygen.Bits = 1024

	require.NoError(t, NewValidationPhase().Provision(ctx))

	warnings := observer.eventsOfType(EventValidationWarning)
	require.Len(t, warnings, 3)
	assert.Equal(t, "host.distribution", warnings[0].Fields["field"])
	assert.Equal(t, "key is generated for example.com and shared by all 2 domains", warnings[1].Message)
	assert.Equal(t, "opendkim.keygen.bits", warnings[2].Fields["field"])
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	ve := ValidationError{Field: "dkim.selector", Message: "required", Severity: "error"}
	assert.Equal(t, "[error] dkim.selector: required", ve.Error())
	assert.True(t, ve.IsError())
	assert.False(t, ValidationError{Severity: "warning"}.IsError())
}
