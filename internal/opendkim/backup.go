package opendkim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/imamik/dkimctl/internal/config"
	"github.com/imamik/dkimctl/internal/host"
	"github.com/imamik/dkimctl/internal/provisioning"
	"github.com/imamik/dkimctl/internal/resource"
)

// ObjectBackup asserts that an object holds the content of a host file.
type ObjectBackup struct {
	Store ObjectStore
	Key   string
	Path  string

	data []byte
}

// Kind implements resource.Resource.
func (b *ObjectBackup) Kind() string { return "backup" }

// ID implements resource.Resource.
func (b *ObjectBackup) ID() string { return b.Key }

// Check implements resource.Resource. A missing source file is drift, so
// that check mode reports the backup of a key that would be generated.
func (b *ObjectBackup) Check(ctx context.Context, h host.Host) (resource.Evaluation, error) {
	data, err := h.ReadFile(ctx, b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return resource.Evaluation{NeedsApply: true, Message: b.Path + " absent"}, nil
	}
	if err != nil {
		return resource.Evaluation{}, err
	}
	b.data = data

	stored, found, err := b.Store.Get(ctx, b.Key)
	if err != nil {
		return resource.Evaluation{}, fmt.Errorf("failed to read backup %s: %w", b.Key, err)
	}
	if !found {
		return resource.Evaluation{NeedsApply: true, Message: "object absent"}, nil
	}
	if !bytes.Equal(stored, data) {
		return resource.Evaluation{NeedsApply: true, Message: "object differs"}, nil
	}
	return resource.Evaluation{Message: "object matches"}, nil
}

// Apply implements resource.Resource.
func (b *ObjectBackup) Apply(ctx context.Context, h host.Host) error {
	if b.data == nil {
		data, err := h.ReadFile(ctx, b.Path)
		if err != nil {
			return err
		}
		b.data = data
	}
	if err := b.Store.Put(ctx, b.Key, b.data); err != nil {
		return fmt.Errorf("failed to upload %s: %w", b.Key, err)
	}
	return nil
}

// BackupKeys returns the object keys for the private key and record of
// selector, under prefix and the key's domain.
func BackupKeys(prefix, domain, selector string) (private, record string) {
	base := path.Join(prefix, domain, selector)
	return base + ".private", base + ".txt"
}

// BackupPhase copies the key pair to object storage.
type BackupPhase struct {
	Store ObjectStore
}

// Name implements provisioning.Phase.
func (p *BackupPhase) Name() string { return "backup" }

// Provision implements provisioning.Phase.
func (p *BackupPhase) Provision(ctx *provisioning.Context) error {
	selector := ctx.Config.DKIM.Selector
	privateKey, recordKey := BackupKeys(ctx.Config.Backup.S3.Prefix, ctx.Config.DKIM.PrimaryDomain(), selector)

	for _, b := range []*ObjectBackup{
		{Store: p.Store, Key: privateKey, Path: config.PrivateKeyPath(selector)},
		{Store: p.Store, Key: recordKey, Path: config.PublicRecordPath(selector)},
	} {
		if _, err := ctx.Ensure(p.Name(), b); err != nil {
			return err
		}
	}
	return nil
}
