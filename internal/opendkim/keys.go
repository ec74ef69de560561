package opendkim

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/imamik/dkimctl/internal/config"
	"github.com/imamik/dkimctl/internal/dkimkey"
	"github.com/imamik/dkimctl/internal/host"
	"github.com/imamik/dkimctl/internal/provisioning"
	"github.com/imamik/dkimctl/internal/resource"
)

// KeysPhase generates the signing key unless the private key exists.
type KeysPhase struct{}

// Name implements provisioning.Phase.
func (p *KeysPhase) Name() string { return "keys" }

// Provision implements provisioning.Phase.
func (p *KeysPhase) Provision(ctx *provisioning.Context) error {
	cmd := KeyCommand(ctx.Config, ctx.State)

	status, err := ctx.Ensure(p.Name(), cmd, RestartHandler)
	if errors.Is(err, resource.ErrNotCreated) {
		return fmt.Errorf("%w: %v", ErrKeyNotGenerated, err)
	}
	if err != nil {
		return err
	}

	if status == resource.StatusChanged && !ctx.Check {
		ctx.State.KeyGenerated = true
		if ctx.State.Fingerprint != "" {
			ctx.Observer.Printf("Generated DKIM key %s for %s (%s)", ctx.Config.DKIM.Selector, ctx.Config.DKIM.PrimaryDomain(), ctx.State.Fingerprint)
		}
	}
	return nil
}

// KeyCommand returns the guarded key generation command for cfg. In native
// mode the key is generated in-process and its fingerprint stored in state.
func KeyCommand(cfg *config.Config, state *provisioning.State) *resource.Command {
	selector, domain := cfg.DKIM.Selector, cfg.DKIM.PrimaryDomain()
	keygen := cfg.OpenDKIM.Keygen

	if keygen.Mode == config.KeygenModeNative {
		return &resource.Command{
			Name:    fmt.Sprintf("generate %d-bit key %s for %s", keygen.Bits, selector, domain),
			Creates: config.PrivateKeyPath(selector),
			Run: func(ctx context.Context, h host.Host) error {
				fingerprint, err := writeNativeKey(ctx, h, selector, domain, keygen.Bits)
				if err != nil {
					return err
				}
				state.Fingerprint = fingerprint
				return nil
			},
		}
	}

	argv := []string{cfg.OpenDKIM.GenkeyPath, "-s", selector, "-d", domain, "-D", config.KeysDir}
	if keygen.Bits != 0 {
		argv = append(argv, "-b", strconv.Itoa(keygen.Bits))
	}
	return &resource.Command{Argv: argv, Creates: config.PrivateKeyPath(selector)}
}

// writeNativeKey writes a key pair in the layout opendkim-genkey produces.
// The record file is written first so that the private key, the guard,
// only exists once both files do.
func writeNativeKey(ctx context.Context, h host.Host, selector, domain string, bits int) (string, error) {
	pair, err := dkimkey.Generate(selector, domain, bits)
	if err != nil {
		return "", err
	}
	if err := h.WriteFile(ctx, config.PublicRecordPath(selector), pair.Record, 0o600); err != nil {
		return "", fmt.Errorf("failed to write public record: %w", err)
	}
	if err := h.WriteFile(ctx, config.PrivateKeyPath(selector), pair.PrivateKey, 0o600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}
	return pair.Fingerprint, nil
}

// OwnershipPhase hands the private key to the opendkim user. It does not
// notify the restart handler.
type OwnershipPhase struct{}

// Name implements provisioning.Phase.
func (p *OwnershipPhase) Name() string { return "ownership" }

// Provision implements provisioning.Phase.
func (p *OwnershipPhase) Provision(ctx *provisioning.Context) error {
	_, err := ctx.Ensure(p.Name(), &resource.Ownership{
		Path:  config.PrivateKeyPath(ctx.Config.DKIM.Selector),
		Owner: config.ServiceUser,
		Group: config.ServiceGroup,
	})
	return err
}

// ServicePhase keeps opendkim running and enabled. It runs every time,
// independent of the restart handler.
type ServicePhase struct{}

// Name implements provisioning.Phase.
func (p *ServicePhase) Name() string { return "service" }

// Provision implements provisioning.Phase.
func (p *ServicePhase) Provision(ctx *provisioning.Context) error {
	_, err := ctx.Ensure(p.Name(), &resource.Service{
		Name:    config.ServiceName,
		Running: true,
		Enabled: true,
	})
	return err
}
