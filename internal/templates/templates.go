// Package templates renders the OpenDKIM configuration files.
//
// Templates are embedded in the binary and executed with sprig's function
// map and missingkey=error, so a variable absent from the input map is a
// rendering error rather than an empty string.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/imamik/dkimctl/internal/config"
)

//go:embed files/*
var filesFS embed.FS

// Template IDs.
const (
	MainConfig   = "opendkim.conf"
	KeyTable     = "KeyTable"
	SigningTable = "SigningTable"
)

// ErrMissingVariable is returned when a template references a variable
// that was not supplied.
var ErrMissingVariable = errors.New("missing template variable")

// ErrUnknownTemplate is returned for an ID without an embedded template.
var ErrUnknownTemplate = errors.New("unknown template")

// Vars holds template variables by name.
type Vars map[string]any

var parsed = template.Must(
	template.New("opendkim").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		ParseFS(filesFS, "files/*.tmpl"),
)

// IDs lists the available template IDs in render order.
func IDs() []string {
	return []string{MainConfig, KeyTable, SigningTable}
}

// Render executes template id with vars.
func Render(id string, vars Vars) ([]byte, error) {
	tmpl := parsed.Lookup(id + ".tmpl")
	if tmpl == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(vars)); err != nil {
		if strings.Contains(err.Error(), "map has no entry for key") {
			return nil, fmt.Errorf("%w: %s: %v", ErrMissingVariable, id, err)
		}
		return nil, fmt.Errorf("failed to render %s: %w", id, err)
	}
	return buf.Bytes(), nil
}

// Path returns the destination of template id on the host.
func Path(id string) string {
	switch id {
	case MainConfig:
		return config.MainConfigFile
	case KeyTable:
		return config.KeyTableFile
	case SigningTable:
		return config.SigningTableFile
	}
	return ""
}

// TrustedHosts returns the TrustedHosts file with extra entries appended
// after the built-in loopback entries. Duplicates are dropped.
func TrustedHosts(extra []string) []byte {
	base, err := filesFS.ReadFile("files/TrustedHosts")
	if err != nil {
		panic(fmt.Sprintf("embedded TrustedHosts missing: %v", err))
	}

	seen := make(map[string]bool)
	for _, line := range strings.Split(string(base), "\n") {
		seen[strings.TrimSpace(line)] = true
	}

	var buf bytes.Buffer
	buf.Write(base)
	for _, h := range extra {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		buf.WriteString(h + "\n")
	}
	return buf.Bytes()
}

// VarsFromConfig builds the variables for every template from cfg.
func VarsFromConfig(cfg *config.Config) Vars {
	return Vars{
		"Selector":         cfg.DKIM.Selector,
		"Domains":          cfg.DKIM.Domains,
		"KeysDir":          config.KeysDir,
		"Socket":           cfg.OpenDKIM.Socket,
		"Mode":             cfg.OpenDKIM.Mode,
		"UMask":            cfg.OpenDKIM.UMask,
		"Syslog":           cfg.OpenDKIM.SyslogEnabled(),
		"Canonicalization": cfg.OpenDKIM.Canonicalization,
		"User":             config.ServiceUser,
		"Group":            config.ServiceGroup,
		"TrustedHostsFile": config.TrustedHostsFile,
		"KeyTableFile":     config.KeyTableFile,
		"SigningTableFile": config.SigningTableFile,
	}
}
