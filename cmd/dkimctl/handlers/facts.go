package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/dkimctl/internal/facts"
)

// Facts prints the distribution detected on the configured host.
func Facts(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	h, err := newHost(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	f, err := facts.Gather(ctx, h, cfg.Host.Distribution)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "host:         %s\n", h.Name())
	fmt.Fprintf(stdout, "distribution: %s\n", f.Distribution)
	fmt.Fprintf(stdout, "family:       %s\n", f.Family)
	fmt.Fprintf(stdout, "version:      %s\n", f.Version)
	fmt.Fprintf(stdout, "supported:    %t\n", f.Supported())
	return nil
}
