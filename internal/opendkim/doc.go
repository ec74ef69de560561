// Package opendkim converges a host into a working OpenDKIM signer.
//
// The Playbook is an ordered list of provisioning phases:
//
//   - facts, validation: detect the distribution and check the configuration
//   - packages: install OpenDKIM with apt or yum, skipped on other systems
//   - filesystem: /etc/opendkim and /etc/opendkim/keys
//   - trusted-hosts, templates: TrustedHosts, opendkim.conf, KeyTable, SigningTable
//   - keys: generate {selector}.private unless it exists
//   - ownership: opendkim:opendkim on the private key
//   - service: opendkim running and enabled
//   - handlers: restart opendkim once if the files or the key changed
//   - dns, backup: optional publication of the record and key backup
//
// Only the trusted-hosts, templates and keys phases notify the restart
// handler. Package installs and ownership changes do not.
package opendkim
