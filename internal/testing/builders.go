package testing

import (
	"slices"

	"github.com/imamik/dkimctl/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a ConfigBuilder for selector "mail" signing
// example.com, with defaults applied.
func NewConfigBuilder() *ConfigBuilder {
	cfg := config.Config{
		DKIM: config.DKIMConfig{
			Selector: "mail",
			Domains:  []string{"example.com"},
		},
	}
	cfg.ApplyDefaults()
	return &ConfigBuilder{cfg: cfg}
}

// WithSelector sets the DKIM selector.
func (b *ConfigBuilder) WithSelector(selector string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.DKIM.Selector = selector
	return nb
}

// WithDomains replaces the signing domains.
func (b *ConfigBuilder) WithDomains(domains ...string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.DKIM.Domains = slices.Clone(domains)
	return nb
}

// WithGenkeyPath sets the key generation tool.
func (b *ConfigBuilder) WithGenkeyPath(path string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.OpenDKIM.GenkeyPath = path
	return nb
}

// WithNativeKeygen generates keys in-process with the given modulus size.
func (b *ConfigBuilder) WithNativeKeygen(bits int) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.OpenDKIM.Keygen = config.KeygenConfig{Mode: config.KeygenModeNative, Bits: bits}
	return nb
}

// WithTrustedHosts appends TrustedHosts entries.
func (b *ConfigBuilder) WithTrustedHosts(hosts ...string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.OpenDKIM.TrustedHosts = append(nb.cfg.OpenDKIM.TrustedHosts, hosts...)
	return nb
}

// WithDistribution overrides distribution detection.
func (b *ConfigBuilder) WithDistribution(distribution string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Host.Distribution = distribution
	return nb
}

// WithCloudflare enables DNS publication for zone.
func (b *ConfigBuilder) WithCloudflare(token, zone string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.DNS.Cloudflare = config.CloudflareConfig{Enabled: true, APIToken: token, Zone: zone}
	return nb
}

// WithS3Backup enables key backup to bucket.
func (b *ConfigBuilder) WithS3Backup(bucket, region string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Backup.S3 = config.S3Config{
		Enabled:   true,
		Bucket:    bucket,
		Region:    region,
		Prefix:    config.DefaultBackupPrefix,
		AccessKey: "test-access",
		SecretKey: "test-secret",
	}
	return nb
}

// Build returns the constructed config.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	return &cfg
}

func (b *ConfigBuilder) clone() *ConfigBuilder {
	cfg := b.cfg
	cfg.DKIM.Domains = slices.Clone(b.cfg.DKIM.Domains)
	cfg.OpenDKIM.TrustedHosts = slices.Clone(b.cfg.OpenDKIM.TrustedHosts)
	return &ConfigBuilder{cfg: cfg}
}
