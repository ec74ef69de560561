package handlers

import (
	"fmt"
	"path/filepath"

	"github.com/imamik/dkimctl/internal/config"
	"github.com/imamik/dkimctl/internal/opendkim"
	"github.com/imamik/dkimctl/internal/resource"
	"github.com/imamik/dkimctl/internal/templates"
)

// Render renders the four managed files for the configuration. Without an
// output directory the files are printed to stdout.
func Render(configPath, outputDir string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	files, err := managedFiles(cfg)
	if err != nil {
		return err
	}

	if outputDir == "" {
		for i, f := range files {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			fmt.Fprintf(stdout, "# ==> %s <==\n%s", f.Path, f.Content)
		}
		return nil
	}

	for _, f := range files {
		target := filepath.Join(outputDir, filepath.FromSlash(f.Path))
		if err := mkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", target, err)
		}
		if err := writeFile(target, f.Content, f.Mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", target)
	}
	return nil
}

// managedFiles returns TrustedHosts followed by the rendered templates.
func managedFiles(cfg *config.Config) ([]*resource.File, error) {
	rendered, err := opendkim.RenderAll(cfg)
	if err != nil {
		return nil, err
	}

	files := []*resource.File{{
		Path:    config.TrustedHostsFile,
		Content: templates.TrustedHosts(cfg.OpenDKIM.TrustedHosts),
		Mode:    resource.DefaultFileMode,
	}}
	return append(files, rendered...), nil
}
