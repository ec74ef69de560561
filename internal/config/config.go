package config

// Config holds the desired state of one OpenDKIM host.
type Config struct {
	DKIM     DKIMConfig     `yaml:"dkim"`
	OpenDKIM OpenDKIMConfig `yaml:"opendkim"`
	Host     HostConfig     `yaml:"host"`
	DNS      DNSConfig      `yaml:"dns"`
	Backup   BackupConfig   `yaml:"backup"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	// Flat variable names, folded into DKIM and OpenDKIM by LoadFile.
	LegacySelector   string   `yaml:"dkim_selector,omitempty"`
	LegacyDomains    []string `yaml:"dkim_domains,omitempty"`
	LegacyGenkeyPath string   `yaml:"opendkim_opendkim_genkey_path,omitempty"`
}

// DKIMConfig is the signing identity.
type DKIMConfig struct {
	Selector string `yaml:"selector"`
	// Domains lists the signing domains. The first entry is the domain the
	// key is generated for.
	Domains []string `yaml:"domains"`
}

// PrimaryDomain returns the domain used for key generation.
func (d DKIMConfig) PrimaryDomain() string {
	if len(d.Domains) == 0 {
		return ""
	}
	return d.Domains[0]
}

// OpenDKIMConfig tunes the rendered opendkim.conf and key generation.
type OpenDKIMConfig struct {
	GenkeyPath       string       `yaml:"genkey_path"`
	Socket           string       `yaml:"socket"`
	Mode             string       `yaml:"mode"`
	Canonicalization string       `yaml:"canonicalization"`
	UMask            string       `yaml:"umask"`
	Syslog           *bool        `yaml:"syslog,omitempty"`
	TrustedHosts     []string     `yaml:"trusted_hosts,omitempty"`
	Keygen           KeygenConfig `yaml:"keygen"`
}

// SyslogEnabled reports whether syslog logging is turned on (default true).
func (o OpenDKIMConfig) SyslogEnabled() bool {
	return o.Syslog == nil || *o.Syslog
}

// KeygenConfig selects how the signing key is produced.
type KeygenConfig struct {
	// Mode is "tool" (run opendkim-genkey on the host) or "native".
	Mode string `yaml:"mode"`
	// Bits is the RSA modulus size. Zero leaves the tool's default.
	Bits int `yaml:"bits,omitempty"`
}

// HostConfig selects the target host. An empty Address means the local machine.
type HostConfig struct {
	Address        string `yaml:"address,omitempty"`
	Port           int    `yaml:"port,omitempty"`
	User           string `yaml:"user,omitempty"`
	PrivateKeyPath string `yaml:"private_key_path,omitempty"`
	// KnownHostsFile enables host key verification. Empty disables it.
	KnownHostsFile string `yaml:"known_hosts_file,omitempty"`
	// Sudo runs every remote command through sudo -n.
	Sudo bool `yaml:"sudo,omitempty"`
	// Distribution overrides the detected OS distribution fact.
	Distribution string `yaml:"distribution,omitempty"`
}

// IsRemote reports whether the run targets a host over SSH.
func (h HostConfig) IsRemote() bool {
	return h.Address != ""
}

// DNSConfig controls publication of the DKIM TXT record.
type DNSConfig struct {
	Cloudflare CloudflareConfig `yaml:"cloudflare"`
}

// CloudflareConfig holds Cloudflare API settings.
type CloudflareConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIToken string `yaml:"api_token,omitempty"`
	// Zone overrides the zone looked up for each domain.
	Zone string `yaml:"zone,omitempty"`
}

// BackupConfig controls key backup to object storage.
type BackupConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config holds S3-compatible object storage settings.
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Bucket    string `yaml:"bucket,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// MetricsConfig controls run metrics export.
type MetricsConfig struct {
	// Textfile is written in the node_exporter textfile collector format.
	Textfile string `yaml:"textfile,omitempty"`
}
