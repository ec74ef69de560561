package config

import "path"

// Managed filesystem locations on the target host.
const (
	ConfigDir        = "/etc/opendkim"
	KeysDir          = "/etc/opendkim/keys"
	MainConfigFile   = "/etc/opendkim.conf"
	TrustedHostsFile = "/etc/opendkim/TrustedHosts"
	KeyTableFile     = "/etc/opendkim/KeyTable"
	SigningTableFile = "/etc/opendkim/SigningTable"
)

// Service identity on the target host.
const (
	ServiceName  = "opendkim"
	ServiceUser  = "opendkim"
	ServiceGroup = "opendkim"
)

// Defaults applied by LoadFile when a value is not set.
const (
	DefaultGenkeyPath       = "/usr/sbin/opendkim-genkey"
	DefaultSocket           = "inet:12301@localhost"
	DefaultSigningMode      = "sv"
	DefaultCanonicalization = "relaxed/simple"
	DefaultUMask            = "002"
	DefaultSSHPort          = 22
	DefaultSSHUser          = "root"
	DefaultNativeKeyBits    = 2048
	DefaultBackupPrefix     = "dkim"
)

// Keygen modes.
const (
	KeygenModeTool   = "tool"
	KeygenModeNative = "native"
)

// PrivateKeyPath returns the path of the private key generated for selector.
// Its existence is the guard for key generation.
func PrivateKeyPath(selector string) string {
	return path.Join(KeysDir, selector+".private")
}

// PublicRecordPath returns the path of the DNS TXT record file that
// accompanies the private key.
func PublicRecordPath(selector string) string {
	return path.Join(KeysDir, selector+".txt")
}
