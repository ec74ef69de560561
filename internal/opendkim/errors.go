package opendkim

import (
	"errors"

	"github.com/imamik/dkimctl/internal/templates"
)

var (
	// ErrUnsupportedDistribution is returned by Dispatch for a distribution
	// without a package setup procedure. The packages phase treats it as a skip.
	ErrUnsupportedDistribution = errors.New("unsupported distribution")

	// ErrKeyNotGenerated is returned when key generation succeeded but the
	// private key file does not exist afterwards.
	ErrKeyNotGenerated = errors.New("signing key was not generated")

	// ErrMissingVariable is returned when a template references an unset variable.
	ErrMissingVariable = templates.ErrMissingVariable
)
