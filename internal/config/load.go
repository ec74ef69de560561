package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is the configuration file looked up when none is given.
const DefaultConfigFilename = "dkimctl.yaml"

// Environment variables consulted for secrets not present in the file.
const (
	EnvCloudflareToken = "CLOUDFLARE_API_TOKEN"
	EnvAWSAccessKey    = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretKey    = "AWS_SECRET_ACCESS_KEY"
)

// LoadFile reads, defaults and validates the configuration at path.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadBytes(data)
}

// LoadBytes parses, defaults and validates configuration data.
func LoadBytes(data []byte) (*Config, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults folds the flat variable names into the nested sections and
// fills unset values.
func (c *Config) ApplyDefaults() {
	if c.DKIM.Selector == "" {
		c.DKIM.Selector = c.LegacySelector
	}
	if len(c.DKIM.Domains) == 0 {
		c.DKIM.Domains = c.LegacyDomains
	}
	if c.OpenDKIM.GenkeyPath == "" {
		c.OpenDKIM.GenkeyPath = c.LegacyGenkeyPath
	}
	c.LegacySelector, c.LegacyDomains, c.LegacyGenkeyPath = "", nil, ""

	if c.OpenDKIM.GenkeyPath == "" {
		c.OpenDKIM.GenkeyPath = DefaultGenkeyPath
	}
	if c.OpenDKIM.Socket == "" {
		c.OpenDKIM.Socket = DefaultSocket
	}
	if c.OpenDKIM.Mode == "" {
		c.OpenDKIM.Mode = DefaultSigningMode
	}
	if c.OpenDKIM.Canonicalization == "" {
		c.OpenDKIM.Canonicalization = DefaultCanonicalization
	}
	if c.OpenDKIM.UMask == "" {
		c.OpenDKIM.UMask = DefaultUMask
	}
	if c.OpenDKIM.Keygen.Mode == "" {
		c.OpenDKIM.Keygen.Mode = KeygenModeTool
	}
	if c.OpenDKIM.Keygen.Mode == KeygenModeNative && c.OpenDKIM.Keygen.Bits == 0 {
		c.OpenDKIM.Keygen.Bits = DefaultNativeKeyBits
	}

	if c.Host.IsRemote() {
		if c.Host.Port == 0 {
			c.Host.Port = DefaultSSHPort
		}
		if c.Host.User == "" {
			c.Host.User = DefaultSSHUser
		}
	}

	if c.Backup.S3.Enabled && c.Backup.S3.Prefix == "" {
		c.Backup.S3.Prefix = DefaultBackupPrefix
	}
}

// ApplyEnv fills secrets that are absent from the file using getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.DNS.Cloudflare.APIToken == "" {
		c.DNS.Cloudflare.APIToken = getenv(EnvCloudflareToken)
	}
	if c.Backup.S3.AccessKey == "" {
		c.Backup.S3.AccessKey = getenv(EnvAWSAccessKey)
	}
	if c.Backup.S3.SecretKey == "" {
		c.Backup.S3.SecretKey = getenv(EnvAWSSecretKey)
	}
}

// FindConfigFile searches the current directory and its parents for
// DefaultConfigFilename.
func FindConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := cwd
	for {
		path := filepath.Join(dir, DefaultConfigFilename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("config file %s not found", DefaultConfigFilename)
}
