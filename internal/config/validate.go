package config

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	// selectorPattern matches a DNS label sequence usable as a DKIM selector.
	selectorPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)*$`)

	domainPattern = regexp.MustCompile(`^([A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z]{2,63}$`)
)

// ValidKeygenModes lists accepted values for opendkim.keygen.mode.
var ValidKeygenModes = map[string]bool{
	KeygenModeTool:   true,
	KeygenModeNative: true,
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.validateIdentity(); err != nil {
		return fmt.Errorf("dkim validation failed: %w", err)
	}

	if err := c.validateKeygen(); err != nil {
		return fmt.Errorf("keygen validation failed: %w", err)
	}

	if err := c.validateHost(); err != nil {
		return fmt.Errorf("host validation failed: %w", err)
	}

	if c.DNS.Cloudflare.Enabled && c.DNS.Cloudflare.APIToken == "" {
		return fmt.Errorf("dns validation failed: cloudflare api_token is required (or set %s)", EnvCloudflareToken)
	}

	if err := c.validateBackup(); err != nil {
		return fmt.Errorf("backup validation failed: %w", err)
	}

	return nil
}

func (c *Config) validateIdentity() error {
	if c.DKIM.Selector == "" {
		return fmt.Errorf("selector is required")
	}
	if len(c.DKIM.Selector) > 63 || !selectorPattern.MatchString(c.DKIM.Selector) {
		return fmt.Errorf("invalid selector %q", c.DKIM.Selector)
	}

	if len(c.DKIM.Domains) == 0 {
		return fmt.Errorf("at least one domain is required")
	}

	seen := make(map[string]bool, len(c.DKIM.Domains))
	for _, d := range c.DKIM.Domains {
		if len(d) > 253 || !domainPattern.MatchString(d) {
			return fmt.Errorf("invalid domain %q", d)
		}
		key := strings.ToLower(d)
		if seen[key] {
			return fmt.Errorf("duplicate domain %q", d)
		}
		seen[key] = true
	}

	return nil
}

func (c *Config) validateKeygen() error {
	k := c.OpenDKIM.Keygen
	if !ValidKeygenModes[k.Mode] {
		return fmt.Errorf("invalid mode %q: must be %q or %q", k.Mode, KeygenModeTool, KeygenModeNative)
	}

	if k.Mode == KeygenModeTool && !path.IsAbs(c.OpenDKIM.GenkeyPath) {
		return fmt.Errorf("genkey_path must be absolute, got %q", c.OpenDKIM.GenkeyPath)
	}

	if k.Bits != 0 && (k.Bits < 1024 || k.Bits > 8192) {
		return fmt.Errorf("bits must be between 1024 and 8192, got %d", k.Bits)
	}

	return nil
}

func (c *Config) validateHost() error {
	h := c.Host
	if !h.IsRemote() {
		return nil
	}

	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("invalid port %d", h.Port)
	}
	if h.PrivateKeyPath == "" {
		return fmt.Errorf("private_key_path is required for remote host %s", h.Address)
	}

	return nil
}

func (c *Config) validateBackup() error {
	s3 := c.Backup.S3
	if !s3.Enabled {
		return nil
	}

	if s3.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if s3.Region == "" {
		return fmt.Errorf("s3 region is required")
	}
	if s3.AccessKey == "" || s3.SecretKey == "" {
		return fmt.Errorf("s3 credentials are required (or set %s and %s)", EnvAWSAccessKey, EnvAWSSecretKey)
	}

	return nil
}
