// Package config defines the configuration model for a dkimctl run.
//
// The [Config] struct carries the DKIM identity (selector and signing
// domains), the key-generation settings, the target host connection, and
// the optional DNS publication and key backup sections. It is loaded from
// a YAML file (see [LoadFile]) and validated before any phase runs.
//
// The flat keys dkim_selector, dkim_domains and opendkim_opendkim_genkey_path
// are accepted alongside the nested form so existing variable files keep
// working.
package config
