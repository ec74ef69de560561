// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/imamik/dkimctl/internal/config"
	"github.com/imamik/dkimctl/internal/host"
	"github.com/imamik/dkimctl/internal/opendkim"
	"github.com/imamik/dkimctl/internal/platform/cloudflare"
	"github.com/imamik/dkimctl/internal/platform/s3"
	"github.com/imamik/dkimctl/internal/platform/ssh"
	"github.com/imamik/dkimctl/internal/ui/recap"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads config from file (for testing injection).
	loadConfigFile = config.LoadFile

	// findConfigFile finds the default config file (for testing injection).
	findConfigFile = config.FindConfigFile

	// newHost opens the target host described by the config.
	newHost = openHost

	// newDNSPublisher creates the Cloudflare record publisher.
	newDNSPublisher = func(cfg *config.Config) opendkim.DNSPublisher {
		var opts []cloudflare.Option
		if cfg.DNS.Cloudflare.Zone != "" {
			opts = append(opts, cloudflare.WithZone(cfg.DNS.Cloudflare.Zone))
		}
		return cloudflare.NewClient(cfg.DNS.Cloudflare.APIToken, opts...)
	}

	// newObjectStore creates the key backup store.
	newObjectStore = openObjectStore

	// readFile reads local files such as the SSH private key.
	readFile = os.ReadFile

	// writeFile writes data to a file (for testing injection).
	writeFile = os.WriteFile

	// mkdirAll creates local directories (for testing injection).
	mkdirAll = os.MkdirAll

	// colorEnabled reports whether stdout takes ANSI styling.
	colorEnabled = func() bool { return recap.ColorEnabled(os.Stdout) }

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// loadConfig loads and validates the configuration.
// If configPath is empty, it looks for dkimctl.yaml in the current directory
// and its parents.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		path, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w", err)
		}
		configPath = path
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openHost returns the local machine, or an SSH host when an address is
// configured.
func openHost(cfg *config.Config) (host.Host, error) {
	if !cfg.Host.IsRemote() {
		return host.NewLocal(), nil
	}

	key, err := readFile(cfg.Host.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key: %w", err)
	}

	client, err := ssh.NewClient(&ssh.Config{
		Host:           cfg.Host.Address,
		Port:           cfg.Host.Port,
		User:           cfg.Host.User,
		PrivateKey:     key,
		KnownHostsFile: cfg.Host.KnownHostsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH client: %w", err)
	}

	return host.NewRemote(client.Address(), client, cfg.Host.Sudo), nil
}

// openObjectStore connects to the backup bucket and checks that it exists.
func openObjectStore(ctx context.Context, cfg *config.Config) (opendkim.ObjectStore, error) {
	s3cfg := cfg.Backup.S3
	client, err := s3.NewClient(ctx, s3.Options{
		Bucket:    s3cfg.Bucket,
		Region:    s3cfg.Region,
		Endpoint:  s3cfg.Endpoint,
		AccessKey: s3cfg.AccessKey,
		SecretKey: s3cfg.SecretKey,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("backup bucket %s does not exist", client.Bucket())
	}
	return client, nil
}
