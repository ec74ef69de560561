package opendkim

import (
	"github.com/imamik/dkimctl/internal/config"
	"github.com/imamik/dkimctl/internal/provisioning"
	"github.com/imamik/dkimctl/internal/resource"
	"github.com/imamik/dkimctl/internal/templates"
)

// FilesystemPhase ensures the configuration and key directories.
type FilesystemPhase struct{}

// Name implements provisioning.Phase.
func (p *FilesystemPhase) Name() string { return "filesystem" }

// Provision implements provisioning.Phase.
func (p *FilesystemPhase) Provision(ctx *provisioning.Context) error {
	for _, dir := range []string{config.ConfigDir, config.KeysDir} {
		if _, err := ctx.Ensure(p.Name(), &resource.Directory{Path: dir, Mode: 0o755}); err != nil {
			return err
		}
	}
	return nil
}

// TrustedHostsPhase deploys the TrustedHosts list.
type TrustedHostsPhase struct{}

// Name implements provisioning.Phase.
func (p *TrustedHostsPhase) Name() string { return "trusted-hosts" }

// Provision implements provisioning.Phase.
func (p *TrustedHostsPhase) Provision(ctx *provisioning.Context) error {
	f := &resource.File{
		Path:    config.TrustedHostsFile,
		Content: templates.TrustedHosts(ctx.Config.OpenDKIM.TrustedHosts),
		Mode:    resource.DefaultFileMode,
	}
	_, err := ctx.Ensure(p.Name(), f, RestartHandler)
	return err
}

// TemplatesPhase renders opendkim.conf, KeyTable and SigningTable.
type TemplatesPhase struct{}

// Name implements provisioning.Phase.
func (p *TemplatesPhase) Name() string { return "templates" }

// Provision implements provisioning.Phase.
func (p *TemplatesPhase) Provision(ctx *provisioning.Context) error {
	files, err := RenderAll(ctx.Config)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := ctx.Ensure(p.Name(), f, RestartHandler); err != nil {
			return err
		}
	}
	return nil
}

// RenderAll renders every template for cfg as file resources, in order.
func RenderAll(cfg *config.Config) ([]*resource.File, error) {
	vars := templates.VarsFromConfig(cfg)

	var files []*resource.File
	for _, id := range templates.IDs() {
		content, err := templates.Render(id, vars)
		if err != nil {
			return nil, err
		}
		files = append(files, &resource.File{
			Path:    templates.Path(id),
			Content: content,
			Mode:    resource.DefaultFileMode,
		})
	}
	return files, nil
}
