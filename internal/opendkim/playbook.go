package opendkim

import (
	"context"

	"github.com/imamik/dkimctl/internal/config"
	"github.com/imamik/dkimctl/internal/facts"
	"github.com/imamik/dkimctl/internal/provisioning"
	"github.com/imamik/dkimctl/internal/resource"
)

// RestartHandler is the deferred action notified by changed files and keys.
const RestartHandler = "restart opendkim"

// DNSPublisher reads and writes TXT records.
// Implemented by internal/platform/cloudflare.Client.
type DNSPublisher interface {
	// LookupTXT returns the content of the TXT record name in domain's zone
	// and whether it exists.
	LookupTXT(ctx context.Context, domain, name string) (string, bool, error)
	// UpsertTXT creates or replaces the TXT record.
	UpsertTXT(ctx context.Context, domain, name, content string) error
}

// ObjectStore holds key backups.
// Implemented by internal/platform/s3.Client.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Playbook assembles the OpenDKIM phases. DNS and Store are optional; their
// phases are included only when set.
type Playbook struct {
	DNS   DNSPublisher
	Store ObjectStore
}

// Phases returns the phases in execution order.
func (p *Playbook) Phases() []provisioning.Phase {
	phases := []provisioning.Phase{
		&FactsPhase{},
		provisioning.NewValidationPhase(),
		&PackagesPhase{},
		&FilesystemPhase{},
		&TrustedHostsPhase{},
		&TemplatesPhase{},
		&KeysPhase{},
		&OwnershipPhase{},
		&ServicePhase{},
		&HandlersPhase{},
	}
	if p.DNS != nil {
		phases = append(phases, &DNSPhase{Publisher: p.DNS})
	}
	if p.Store != nil {
		phases = append(phases, &BackupPhase{Store: p.Store})
	}
	return phases
}

// Run registers the restart handler and converges the host.
func (p *Playbook) Run(ctx *provisioning.Context) error {
	ctx.Handlers.Register(RestartHandler, restartService)
	return provisioning.NewPipeline(p.Phases()...).Run(ctx)
}

func restartService(ctx *provisioning.Context) error {
	return resource.Restart(ctx, ctx.Host, config.ServiceName)
}

// FactsPhase detects the distribution of the host.
type FactsPhase struct{}

// Name implements provisioning.Phase.
func (p *FactsPhase) Name() string { return "facts" }

// Provision implements provisioning.Phase. Facts already on the context
// are kept.
func (p *FactsPhase) Provision(ctx *provisioning.Context) error {
	if ctx.Facts != nil {
		return nil
	}
	f, err := facts.Gather(ctx, ctx.Host, ctx.Config.Host.Distribution)
	if err != nil {
		return err
	}
	ctx.Facts = f
	ctx.Observer.Printf("Detected %s (family %s, version %q) on %s", f.Distribution, f.Family, f.Version, ctx.Host.Name())
	return nil
}

// HandlersPhase flushes notified handlers.
type HandlersPhase struct{}

// Name implements provisioning.Phase.
func (p *HandlersPhase) Name() string { return provisioning.HandlerPhase }

// Provision implements provisioning.Phase.
func (p *HandlersPhase) Provision(ctx *provisioning.Context) error {
	return ctx.Handlers.Flush(ctx)
}
