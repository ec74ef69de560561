package opendkim

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/imamik/dkimctl/internal/config"
	"github.com/imamik/dkimctl/internal/dkimkey"
	"github.com/imamik/dkimctl/internal/host"
	"github.com/imamik/dkimctl/internal/provisioning"
	"github.com/imamik/dkimctl/internal/resource"
)

// TXTRecord asserts the content of a DNS TXT record.
type TXTRecord struct {
	Publisher DNSPublisher
	Domain    string
	Name      string
	Content   string
}

// Kind implements resource.Resource.
func (r *TXTRecord) Kind() string { return "dns" }

// ID implements resource.Resource.
func (r *TXTRecord) ID() string { return r.Name }

// Check implements resource.Resource.
func (r *TXTRecord) Check(ctx context.Context, _ host.Host) (resource.Evaluation, error) {
	current, found, err := r.Publisher.LookupTXT(ctx, r.Domain, r.Name)
	if err != nil {
		return resource.Evaluation{}, fmt.Errorf("failed to look up %s: %w", r.Name, err)
	}
	if !found {
		return resource.Evaluation{NeedsApply: true, Message: "record absent"}, nil
	}
	if current != r.Content {
		return resource.Evaluation{NeedsApply: true, Message: "record content differs"}, nil
	}
	return resource.Evaluation{Message: "record matches"}, nil
}

// Apply implements resource.Resource.
func (r *TXTRecord) Apply(ctx context.Context, _ host.Host) error {
	if err := r.Publisher.UpsertTXT(ctx, r.Domain, r.Name, r.Content); err != nil {
		return fmt.Errorf("failed to publish %s: %w", r.Name, err)
	}
	return nil
}

// RecordContent builds the published TXT content from a record file.
func RecordContent(rec *dkimkey.Record) (string, error) {
	p := rec.Tags()["p"]
	if p == "" {
		return "", fmt.Errorf("record %s has no public key", rec.Name)
	}
	return "v=DKIM1; k=rsa; p=" + p, nil
}

// DNSPhase publishes the public key of the generated signing key as the
// {selector}._domainkey TXT record of every configured domain.
type DNSPhase struct {
	Publisher DNSPublisher
}

// Name implements provisioning.Phase.
func (p *DNSPhase) Name() string { return "dns" }

// Provision implements provisioning.Phase.
func (p *DNSPhase) Provision(ctx *provisioning.Context) error {
	selector := ctx.Config.DKIM.Selector

	data, err := ctx.Host.ReadFile(ctx, config.PublicRecordPath(selector))
	if errors.Is(err, fs.ErrNotExist) && ctx.Check {
		provisioning.LogPhaseSkipped(ctx.Observer, p.Name(), "public key not generated yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read public key record: %w", err)
	}

	rec, err := dkimkey.ParseRecord(data)
	if err != nil {
		return err
	}
	content, err := RecordContent(rec)
	if err != nil {
		return err
	}

	for _, domain := range ctx.Config.DKIM.Domains {
		r := &TXTRecord{
			Publisher: p.Publisher,
			Domain:    domain,
			Name:      dkimkey.RecordName(selector) + "." + domain,
			Content:   content,
		}
		if _, err := ctx.Ensure(p.Name(), r); err != nil {
			return err
		}
	}
	return nil
}
