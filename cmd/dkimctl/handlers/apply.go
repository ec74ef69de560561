package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/dkimctl/internal/logging"
	"github.com/imamik/dkimctl/internal/metrics"
	"github.com/imamik/dkimctl/internal/opendkim"
	"github.com/imamik/dkimctl/internal/provisioning"
	"github.com/imamik/dkimctl/internal/ui/recap"
)

// ApplyOptions holds the apply command flags.
type ApplyOptions struct {
	ConfigPath string
	// Check reports drift without changing the host.
	Check bool
	// MetricsFile overrides metrics.textfile from the config.
	MetricsFile string
	Log         logging.Options
}

// Apply converges OpenDKIM on the configured host.
//
// The workflow:
//  1. Loads and validates the configuration
//  2. Opens the target host (local or SSH)
//  3. Connects the optional Cloudflare and S3 integrations
//  4. Runs the playbook and prints the recap
//  5. Writes run metrics when a metrics file is configured
//
// The recap and metrics are written for failed runs too.
func Apply(ctx context.Context, opts ApplyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger := logging.New(stderr, opts.Log)

	h, err := newHost(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	pb := &opendkim.Playbook{}
	if cfg.DNS.Cloudflare.Enabled {
		pb.DNS = newDNSPublisher(cfg)
	}
	if cfg.Backup.S3.Enabled {
		store, err := newObjectStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open backup store: %w", err)
		}
		pb.Store = store
	}

	pctx := provisioning.NewContext(ctx, cfg, h, provisioning.NewLogObserver(logger))
	pctx.Check = opts.Check

	runErr := pb.Run(pctx)

	fmt.Fprint(stdout, recap.Render(h.Name(), pctx.Results, recap.Options{
		Color:   colorEnabled(),
		Check:   opts.Check,
		Verbose: opts.Log.Verbosity > 0,
	}))

	metricsFile := opts.MetricsFile
	if metricsFile == "" {
		metricsFile = cfg.Metrics.Textfile
	}
	if metricsFile != "" {
		rec := metrics.NewRecorder(h.Name())
		rec.Record(pctx.Results, pctx.State, runErr, time.Now())
		if err := rec.WriteTextfile(metricsFile); err != nil {
			logger.Error(err, "Metrics not written", "path", metricsFile)
		}
	}

	if runErr != nil {
		return fmt.Errorf("apply failed on %s: %w", h.Name(), runErr)
	}
	return nil
}
