// Package cloudflare provides a minimal Cloudflare API client for
// publishing DKIM TXT records.
package cloudflare
